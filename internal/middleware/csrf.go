package middleware

import (
	"context"
	"crypto/subtle"
	"net/http"
	"net/url"

	"github.com/2beens/fitdash/pkg"
)

type csrfCtxKey struct{}

const (
	CSRFCookieName = "fitdash_csrf"
	CSRFFormField  = "_csrf"
	CSRFHeader     = "X-CSRF-Token"
)

// CSRF issues a token cookie and checks it on state changing requests,
// taken from either the X-CSRF-Token header or the _csrf form field.
func CSRF(baseURL string) func(next http.Handler) http.Handler {
	secure := IsSecureBaseURL(baseURL)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := ""
			if c, err := r.Cookie(CSRFCookieName); err == nil {
				token = c.Value
			}
			if token == "" {
				var err error
				token, err = pkg.GenerateRandomString(32)
				if err != nil {
					http.Error(w, "failed to issue csrf token", http.StatusInternalServerError)
					return
				}
				http.SetCookie(w, &http.Cookie{
					Name:     CSRFCookieName,
					Value:    token,
					Path:     "/",
					HttpOnly: true,
					Secure:   secure,
					SameSite: http.SameSiteLaxMode,
				})
			}

			if isStateChanging(r.Method) {
				provided := r.Header.Get(CSRFHeader)
				if provided == "" {
					provided = r.FormValue(CSRFFormField)
				}
				if provided == "" || subtle.ConstantTimeCompare([]byte(provided), []byte(token)) != 1 {
					http.Error(w, "invalid csrf token", http.StatusForbidden)
					return
				}
			}

			ctx := context.WithValue(r.Context(), csrfCtxKey{}, token)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// CSRFTokenFromContext returns the token to embed into forms.
func CSRFTokenFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(csrfCtxKey{}).(string); ok {
		return v
	}
	return ""
}

// IsSecureBaseURL reports whether cookies should be marked Secure for the base URL.
func IsSecureBaseURL(baseURL string) bool {
	base, err := url.Parse(baseURL)
	return err == nil && base.Scheme == "https"
}

func isStateChanging(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	default:
		return false
	}
}
