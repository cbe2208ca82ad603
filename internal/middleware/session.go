package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/codes"

	"github.com/2beens/fitdash/internal/auth"
	"github.com/2beens/fitdash/internal/telemetry/tracing"
)

//go:generate mockgen -source=$GOFILE -destination=session_mocks_test.go -package=middleware_test

type loginChecker interface {
	Session(ctx context.Context, token string) (auth.Session, error)
}

type SessionMiddlewareHandler struct {
	loginChecker        loginChecker
	publicPaths         map[string]bool
	publicPathsPrefixes []string
	loginPath           string
}

func NewSessionMiddlewareHandler(loginChecker loginChecker) *SessionMiddlewareHandler {
	return &SessionMiddlewareHandler{
		loginChecker: loginChecker,
		publicPaths: map[string]bool{
			"/login":    true,
			"/register": true,
			"/logout":   true,
			"/health":   true,
		},
		publicPathsPrefixes: []string{
			"/static/",
		},
		loginPath: "/login",
	}
}

func (h *SessionMiddlewareHandler) pathIsPublic(path string) bool {
	if h.publicPaths[path] {
		return true
	}
	for _, prefix := range h.publicPathsPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// SessionAuth puts the session in the request context, and sends anonymous visitors
// of non public pages to the login page.
func (h *SessionMiddlewareHandler) SessionAuth() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, span := tracing.GlobalTracer.Start(r.Context(), "middleware.session")
			defer span.End()

			token := ""
			if c, err := r.Cookie(auth.SessionCookieName); err == nil {
				token = c.Value
			}

			session, err := h.loginChecker.Session(ctx, token)
			switch {
			case err == nil:
				r = r.WithContext(auth.WithSession(r.Context(), session))
			case errors.Is(err, auth.ErrNotLoggedIn):
			default:
				log.Errorf("[session check] => %s: %s", r.URL.Path, err)
				span.RecordError(err)
			}

			if err != nil && !h.pathIsPublic(r.URL.Path) {
				log.Tracef("[session middleware] not logged in => %s", r.URL.Path)
				span.SetStatus(codes.Error, "not-logged")
				http.Redirect(w, r, h.loginPath, http.StatusSeeOther)
				return
			}

			span.SetStatus(codes.Ok, "ok")
			next.ServeHTTP(w, r)
		})
	}
}
