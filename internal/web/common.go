package web

import (
	"bytes"
	"net/http"
	"net/url"

	log "github.com/sirupsen/logrus"

	"github.com/2beens/fitdash/internal/auth"
	"github.com/2beens/fitdash/internal/middleware"
	"github.com/2beens/fitdash/pkg"
)

// withFlash adds the flash messages, the logged in state and the CSRF token to template data.
func withFlash(r *http.Request, data map[string]any) map[string]any {
	if data == nil {
		data = map[string]any{}
	}
	q := r.URL.Query()
	if status := q.Get("status"); status != "" {
		data["FlashMessage"] = status
	}
	if errMsg := q.Get("error"); errMsg != "" {
		if _, set := data["FlashError"]; !set {
			data["FlashError"] = errMsg
		}
	}
	if csrfToken := middleware.CSRFTokenFromContext(r.Context()); csrfToken != "" {
		data["CSRFToken"] = csrfToken
	}
	if _, ok := auth.SessionFromContext(r.Context()); ok {
		data["LoggedIn"] = true
	}
	return data
}

// redirect sends a 303 to path with the non empty query params.
func redirect(w http.ResponseWriter, r *http.Request, path string, params map[string]string) {
	q := url.Values{}
	for k, v := range params {
		if v != "" {
			q.Set(k, v)
		}
	}
	location := path
	if encoded := q.Encode(); encoded != "" {
		location += "?" + encoded
	}
	http.Redirect(w, r, location, http.StatusSeeOther)
}

// render executes a page template into a buffer, so a failing template never
// leaves a half written page behind.
func render(w http.ResponseWriter, r *http.Request, name string, statusCode int, data map[string]any) {
	tmpl, ok := templates[name]
	if !ok {
		log.Errorf("render: template %q not found", name)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, name, withFlash(r, data)); err != nil {
		log.Errorf("render %q: %s", name, err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytes(w, pkg.ContentType.HTML, buf.Bytes(), statusCode)
}

// apology renders the error page the user sees when something they asked for cannot be done.
func apology(w http.ResponseWriter, r *http.Request, message string, statusCode int) {
	render(w, r, "apology.html", statusCode, map[string]any{
		"Message": message,
		"Code":    statusCode,
		// the message already tells what went wrong
		"FlashError": "",
	})
}

func sessionFromRequest(w http.ResponseWriter, r *http.Request) (auth.Session, bool) {
	session, ok := auth.SessionFromContext(r.Context())
	if !ok {
		// only reachable when the session middleware is not in the chain
		http.Redirect(w, r, "/login", http.StatusSeeOther)
	}
	return session, ok
}
