package web

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/2beens/fitdash/internal/auth"
	"github.com/2beens/fitdash/internal/middleware"
	"github.com/2beens/fitdash/internal/telemetry/metrics"
	"github.com/2beens/fitdash/internal/telemetry/tracing"
	"github.com/2beens/fitdash/internal/users"
)

//go:generate mockgen -source=$GOFILE -destination=auth_handler_mocks_test.go -package=web_test

const minLoginInputLength = 6

type usersService interface {
	Register(ctx context.Context, creds users.Credentials) (users.Feedback, int, error)
	Authenticate(ctx context.Context, username, password string) (*users.User, error)
}

type sessionManager interface {
	Login(ctx context.Context, userID int, createdAt time.Time) (string, error)
	Logout(ctx context.Context, token string) (bool, error)
}

type conversationResetter interface {
	Reset(ctx context.Context, sessionToken string) error
}

type AuthHandler struct {
	users         usersService
	sessions      sessionManager
	conversations conversationResetter
	sessionTTL    time.Duration
	secureCookies bool
}

func NewAuthHandler(
	usersService usersService,
	sessions sessionManager,
	conversations conversationResetter,
	sessionTTL time.Duration,
	secureCookies bool,
) *AuthHandler {
	return &AuthHandler{
		users:         usersService,
		sessions:      sessions,
		conversations: conversations,
		sessionTTL:    sessionTTL,
		secureCookies: secureCookies,
	}
}

// SetupRoutes registers the login, register and logout pages. Form posts are rate limited per client.
func (h *AuthHandler) SetupRoutes(
	router *mux.Router,
	rateLimiter middleware.RequestRateLimiter,
	metricsManager *metrics.Manager,
	allowedPerMin int,
) {
	limit := middleware.RateLimit(rateLimiter, metricsManager, "login", allowedPerMin)

	router.HandleFunc("/login", h.HandleLoginPage).Methods("GET").Name("login-page")
	router.Handle("/login", limit(http.HandlerFunc(h.HandleLogin))).Methods("POST").Name("login")
	router.HandleFunc("/register", h.HandleRegisterPage).Methods("GET").Name("register-page")
	router.Handle("/register", limit(http.HandlerFunc(h.HandleRegister))).Methods("POST").Name("register")
	router.HandleFunc("/logout", h.HandleLogout).Methods("GET").Name("logout")
}

func (h *AuthHandler) HandleLoginPage(w http.ResponseWriter, r *http.Request) {
	data := map[string]any{}
	if r.URL.Query().Get("registered") == "1" {
		data["FlashMessage"] = "Registration successful, you can log in now."
	}
	render(w, r, "login.html", http.StatusOK, data)
}

func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.auth.login")
	defer span.End()

	// a login always ends the previous session
	h.endSession(ctx, w, r)

	username := r.FormValue("input_username")
	password := r.FormValue("input_password")

	loginFailed := func(feedback string) {
		render(w, r, "login.html", http.StatusUnauthorized, map[string]any{
			"Feedback": feedback,
			"Username": username,
		})
	}

	if len(username) < minLoginInputLength {
		loginFailed("Invalid username")
		return
	}
	if len(password) < minLoginInputLength {
		loginFailed("Invalid password")
		return
	}

	user, err := h.users.Authenticate(ctx, username, password)
	switch {
	case errors.Is(err, users.ErrUserNotFound):
		loginFailed("Username not found")
		return
	case errors.Is(err, users.ErrWrongPassword):
		loginFailed("Incorrect password. Please try again.")
		return
	case err != nil:
		log.Errorf("login [%s]: %s", username, err)
		span.RecordError(err)
		apology(w, r, "Logging in failed, please try again later.", http.StatusInternalServerError)
		return
	}

	token, err := h.sessions.Login(ctx, user.ID, time.Now())
	if err != nil {
		log.Errorf("create session for user %d: %s", user.ID, err)
		span.RecordError(err)
		apology(w, r, "Logging in failed, please try again later.", http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.sessionTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})

	log.Debugf("user %d [%s] logged in", user.ID, user.Username)

	if !user.StravaLinked {
		redirect(w, r, "/authorise", nil)
		return
	}
	redirect(w, r, "/", nil)
}

func (h *AuthHandler) HandleRegisterPage(w http.ResponseWriter, r *http.Request) {
	render(w, r, "register.html", http.StatusOK, nil)
}

func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.auth.register")
	defer span.End()

	creds := users.Credentials{
		Email:    strings.TrimSpace(r.FormValue("input_email")),
		Username: strings.TrimSpace(r.FormValue("input_username")),
		Password: r.FormValue("input_password"),
	}

	feedback, userID, err := h.users.Register(ctx, creds)
	if err != nil {
		log.Errorf("register [%s]: %s", creds.Username, err)
		span.RecordError(err)
		apology(w, r, "Registration failed, please try again later.", http.StatusInternalServerError)
		return
	}

	if feedback != users.FeedbackOK {
		render(w, r, "register.html", http.StatusBadRequest, map[string]any{
			"Feedback":     feedback.Message(),
			"FeedbackCode": int(feedback),
			"Email":        creds.Email,
			"Username":     creds.Username,
		})
		return
	}

	log.Debugf("registered user %d [%s]", userID, creds.Username)
	redirect(w, r, "/login", map[string]string{"registered": "1"})
}

func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.auth.logout")
	defer span.End()

	h.endSession(ctx, w, r)
	redirect(w, r, "/login", nil)
}

// endSession drops the session and its coach conversation, and expires the cookie.
// Failures are logged only, the visitor is logged out from the browser side anyway.
func (h *AuthHandler) endSession(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	c, err := r.Cookie(auth.SessionCookieName)
	if err != nil || c.Value == "" {
		return
	}

	if _, err := h.sessions.Logout(ctx, c.Value); err != nil {
		log.Errorf("logout: %s", err)
	}
	if err := h.conversations.Reset(ctx, c.Value); err != nil {
		log.Errorf("reset conversation on logout: %s", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}
