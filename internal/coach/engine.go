package coach

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/2beens/fitdash/internal/activities"
	"github.com/2beens/fitdash/internal/telemetry/metrics"
	"github.com/2beens/fitdash/internal/telemetry/tracing"
)

//go:generate mockgen -source=$GOFILE -destination=engine_mocks_test.go -package=coach_test

var ErrEmptyQuestion = errors.New("empty question")

type completer interface {
	Complete(ctx context.Context, messages []Message) (string, error)
}

type Engine struct {
	completer      completer
	metricsManager *metrics.Manager
}

func NewEngine(completer completer, metricsManager *metrics.Manager) *Engine {
	return &Engine{
		completer:      completer,
		metricsManager: metricsManager,
	}
}

// Ask sends the history plus a prompt built from the question and the recent activities.
// The conversation only records the exchange when the completion succeeded.
func (e *Engine) Ask(ctx context.Context, conv *Conversation, question string, recent []activities.Activity) (_ string, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "coach.engine.ask")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	question = strings.TrimSpace(question)
	if question == "" {
		return "", ErrEmptyQuestion
	}

	messages := make([]Message, 0, len(conv.Messages)+1)
	messages = append(messages, conv.Messages...)
	messages = append(messages, Message{
		Role:    RoleUser,
		Content: prompt(BuildContext(recent), question),
	})

	answer, err := e.completer.Complete(ctx, messages)
	if err != nil {
		e.count("error")
		return "", fmt.Errorf("chat completion: %w", err)
	}

	conv.append(question, answer)
	e.count("ok")
	return answer, nil
}

func (e *Engine) count(result string) {
	if e.metricsManager != nil {
		e.metricsManager.CounterChatRequests.WithLabelValues(result).Inc()
	}
}
