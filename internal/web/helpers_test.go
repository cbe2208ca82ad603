package web_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"time"

	"github.com/2beens/fitdash/internal/auth"
)

const (
	testUserID       = 7
	testSessionToken = "session-token-of-seven"
)

func withSession(req *http.Request) *http.Request {
	return req.WithContext(auth.WithSession(req.Context(), auth.Session{
		Token:     testSessionToken,
		UserID:    testUserID,
		CreatedAt: time.Now(),
	}))
}

func newFormRequest(target string, form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}
