package coach

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const conversationKeyPrefix = "fitdash-chat||"

// ConversationStore keeps one conversation per web session.
type ConversationStore struct {
	redisClient *redis.Client
	ttl         time.Duration
}

func NewConversationStore(redisClient *redis.Client, ttl time.Duration) *ConversationStore {
	return &ConversationStore{
		redisClient: redisClient,
		ttl:         ttl,
	}
}

// Load returns the session's conversation, or a fresh one when there is none yet.
func (s *ConversationStore) Load(ctx context.Context, sessionToken string) (*Conversation, error) {
	cmd := s.redisClient.Get(ctx, conversationKeyPrefix+sessionToken)
	if err := cmd.Err(); err != nil {
		if errors.Is(err, redis.Nil) {
			return NewConversation(), nil
		}
		return nil, fmt.Errorf("get conversation: %w", err)
	}

	conv := &Conversation{}
	if err := json.Unmarshal([]byte(cmd.Val()), conv); err != nil {
		return nil, fmt.Errorf("unmarshal conversation: %w", err)
	}
	if len(conv.Messages) == 0 || conv.Messages[0].Role != RoleSystem {
		conv.Reset()
	}

	return conv, nil
}

func (s *ConversationStore) Save(ctx context.Context, sessionToken string, conv *Conversation) error {
	convBytes, err := json.Marshal(conv)
	if err != nil {
		return fmt.Errorf("marshal conversation: %w", err)
	}

	if err := s.redisClient.Set(ctx, conversationKeyPrefix+sessionToken, convBytes, s.ttl).Err(); err != nil {
		return fmt.Errorf("set conversation: %w", err)
	}
	return nil
}

func (s *ConversationStore) Reset(ctx context.Context, sessionToken string) error {
	if err := s.redisClient.Del(ctx, conversationKeyPrefix+sessionToken).Err(); err != nil {
		return fmt.Errorf("del conversation: %w", err)
	}
	return nil
}
