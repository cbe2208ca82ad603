package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultTTL        = 24 * 7 * time.Hour
	SessionCookieName = "fitdash_session"
	sessionKeyPrefix  = "fitdash-session||"
	tokensSetKey      = "fitdash-sessions"
	tokenLength       = 35
)

var ErrNotLoggedIn = errors.New("not logged in")

type Session struct {
	Token     string
	UserID    int
	CreatedAt time.Time
}

type sessionCtxKey struct{}

func WithSession(ctx context.Context, session Session) context.Context {
	return context.WithValue(ctx, sessionCtxKey{}, session)
}

func SessionFromContext(ctx context.Context) (Session, bool) {
	session, ok := ctx.Value(sessionCtxKey{}).(Session)
	return session, ok
}

// session values are stored as "<user id>|<created at unix>"
func encodeSession(userID int, createdAt time.Time) string {
	return fmt.Sprintf("%d|%d", userID, createdAt.Unix())
}

func decodeSession(val string) (int, time.Time, error) {
	userIDStr, createdAtStr, found := strings.Cut(val, "|")
	if !found {
		return 0, time.Time{}, fmt.Errorf("malformed session value: %q", val)
	}

	userID, err := strconv.Atoi(userIDStr)
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("session user id: %w", err)
	}

	createdAtUnix, err := strconv.ParseInt(createdAtStr, 10, 64)
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("session created at: %w", err)
	}

	return userID, time.Unix(createdAtUnix, 0), nil
}
