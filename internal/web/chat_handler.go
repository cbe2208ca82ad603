package web

import (
	"context"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/2beens/fitdash/internal/activities"
	"github.com/2beens/fitdash/internal/coach"
	"github.com/2beens/fitdash/internal/telemetry/tracing"
)

//go:generate mockgen -source=$GOFILE -destination=chat_handler_mocks_test.go -package=web_test

const recentActivitiesForCoach = 10

type conversationStore interface {
	Load(ctx context.Context, sessionToken string) (*coach.Conversation, error)
	Save(ctx context.Context, sessionToken string, conv *coach.Conversation) error
	Reset(ctx context.Context, sessionToken string) error
}

type coachEngine interface {
	Ask(ctx context.Context, conv *coach.Conversation, question string, recent []activities.Activity) (string, error)
}

type recentActivities interface {
	Recent(ctx context.Context, userID, n int) ([]activities.Activity, error)
}

type ChatHandler struct {
	conversations conversationStore
	engine        coachEngine
	activities    recentActivities
}

func NewChatHandler(conversations conversationStore, engine coachEngine, activities recentActivities) *ChatHandler {
	return &ChatHandler{
		conversations: conversations,
		engine:        engine,
		activities:    activities,
	}
}

func (h *ChatHandler) SetupRoutes(router *mux.Router) {
	router.HandleFunc("/chat", h.HandleChatPage).Methods("GET").Name("chat")
	router.HandleFunc("/chat", h.HandleAsk).Methods("POST").Name("chat-ask")
	router.HandleFunc("/chat/reset", h.HandleReset).Methods("POST").Name("chat-reset")
}

func (h *ChatHandler) HandleChatPage(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.chat.page")
	defer span.End()

	session, ok := sessionFromRequest(w, r)
	if !ok {
		return
	}

	conv, err := h.conversations.Load(ctx, session.Token)
	if err != nil {
		log.Errorf("user %d: load conversation: %s", session.UserID, err)
		span.RecordError(err)
		apology(w, r, "Could not load the conversation, please try again later.", http.StatusInternalServerError)
		return
	}

	render(w, r, "chat.html", http.StatusOK, map[string]any{
		"Messages": conv.Exchanges(),
	})
}

func (h *ChatHandler) HandleAsk(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.chat.ask")
	defer span.End()

	session, ok := sessionFromRequest(w, r)
	if !ok {
		return
	}

	conv, err := h.conversations.Load(ctx, session.Token)
	if err != nil {
		log.Errorf("user %d: load conversation: %s", session.UserID, err)
		span.RecordError(err)
		apology(w, r, "Could not load the conversation, please try again later.", http.StatusInternalServerError)
		return
	}

	question := r.FormValue("question")
	chatFailed := func(statusCode int, message string) {
		render(w, r, "chat.html", statusCode, map[string]any{
			"Messages":   conv.Exchanges(),
			"Question":   question,
			"FlashError": message,
		})
	}

	recent, err := h.activities.Recent(ctx, session.UserID, recentActivitiesForCoach)
	if err != nil {
		log.Errorf("user %d: recent activities: %s", session.UserID, err)
		span.RecordError(err)
		chatFailed(http.StatusInternalServerError, "Could not load your activities, please try again later.")
		return
	}

	if _, err := h.engine.Ask(ctx, conv, question, recent); err != nil {
		if errors.Is(err, coach.ErrEmptyQuestion) {
			chatFailed(http.StatusBadRequest, "Please type a question first.")
			return
		}
		log.Errorf("user %d: ask coach: %s", session.UserID, err)
		span.RecordError(err)
		chatFailed(http.StatusBadGateway, "The coach is not available right now, please try again later.")
		return
	}

	if err := h.conversations.Save(ctx, session.Token, conv); err != nil {
		log.Errorf("user %d: save conversation: %s", session.UserID, err)
		span.RecordError(err)
		chatFailed(http.StatusInternalServerError, "Could not store the conversation, please try again later.")
		return
	}

	redirect(w, r, "/chat", nil)
}

func (h *ChatHandler) HandleReset(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.chat.reset")
	defer span.End()

	session, ok := sessionFromRequest(w, r)
	if !ok {
		return
	}

	if err := h.conversations.Reset(ctx, session.Token); err != nil {
		log.Errorf("user %d: reset conversation: %s", session.UserID, err)
		span.RecordError(err)
		apology(w, r, "Could not reset the conversation, please try again later.", http.StatusInternalServerError)
		return
	}

	redirect(w, r, "/chat", nil)
}
