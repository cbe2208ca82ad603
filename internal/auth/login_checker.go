package auth

import (
	"context"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/2beens/fitdash/internal/telemetry/tracing"
)

type LoginChecker struct {
	ttl         time.Duration
	redisClient *redis.Client
}

func NewLoginChecker(ttl time.Duration, redisClient *redis.Client) *LoginChecker {
	return &LoginChecker{
		ttl:         ttl,
		redisClient: redisClient,
	}
}

// Session returns the live session behind the token, or ErrNotLoggedIn.
func (c *LoginChecker) Session(ctx context.Context, token string) (_ Session, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "auth.loginChecker.session")
	defer func() {
		if errors.Is(err, ErrNotLoggedIn) {
			tracing.EndSpanWithErrCheck(span, nil)
			return
		}
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if token == "" {
		return Session{}, ErrNotLoggedIn
	}

	cmd := c.redisClient.Get(ctx, sessionKeyPrefix+token)
	if err := cmd.Err(); err != nil {
		if errors.Is(err, redis.Nil) {
			return Session{}, ErrNotLoggedIn
		}
		return Session{}, err
	}

	userID, createdAt, err := decodeSession(cmd.Val())
	if err != nil {
		return Session{}, err
	}

	if time.Since(createdAt) > c.ttl {
		return Session{}, ErrNotLoggedIn
	}

	return Session{
		Token:     token,
		UserID:    userID,
		CreatedAt: createdAt,
	}, nil
}

func (c *LoginChecker) UserID(ctx context.Context, token string) (int, error) {
	session, err := c.Session(ctx, token)
	if err != nil {
		return 0, err
	}
	return session.UserID, nil
}
