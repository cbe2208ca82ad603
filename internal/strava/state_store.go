package strava

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

const (
	DefaultStateTTL     = 10 * time.Minute
	oauthStateKeyPrefix = "fitdash-oauth-state||"
)

// StateStore keeps single use oauth state nonces, each bound to the user that started linking.
type StateStore struct {
	redisClient *redis.Client
	ttl         time.Duration
	// injectable for tests
	NewStateFunc func() string
}

func NewStateStore(redisClient *redis.Client, ttl time.Duration) *StateStore {
	if ttl <= 0 {
		ttl = DefaultStateTTL
	}
	return &StateStore{
		redisClient:  redisClient,
		ttl:          ttl,
		NewStateFunc: uuid.NewString,
	}
}

func (s *StateStore) Issue(ctx context.Context, userID int) (string, error) {
	state := s.NewStateFunc()
	if err := s.redisClient.Set(ctx, oauthStateKeyPrefix+state, userID, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("store oauth state: %w", err)
	}
	return state, nil
}

// Consume returns the user bound to state and invalidates it.
func (s *StateStore) Consume(ctx context.Context, state string) (int, error) {
	if state == "" {
		return 0, ErrUnknownState
	}

	key := oauthStateKeyPrefix + state
	val, err := s.redisClient.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return 0, ErrUnknownState
	}
	if err != nil {
		return 0, fmt.Errorf("get oauth state: %w", err)
	}

	if err := s.redisClient.Del(ctx, key).Err(); err != nil {
		return 0, fmt.Errorf("delete oauth state: %w", err)
	}

	userID, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("parse oauth state user [%s]: %w", val, err)
	}
	return userID, nil
}
