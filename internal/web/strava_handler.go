package web

import (
	"context"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/2beens/fitdash/internal/strava"
	"github.com/2beens/fitdash/internal/telemetry/tracing"
	"github.com/2beens/fitdash/internal/tokens"
)

//go:generate mockgen -source=$GOFILE -destination=strava_handler_mocks_test.go -package=web_test

type oauthClient interface {
	AuthURL(state string) string
	Exchange(ctx context.Context, code string) (strava.Token, error)
	Deauthorize(ctx context.Context, accessKey string) error
}

type oauthStates interface {
	Issue(ctx context.Context, userID int) (string, error)
	Consume(ctx context.Context, state string) (int, error)
}

type tokenStore interface {
	Save(ctx context.Context, userID int, token strava.Token) error
	Resolve(ctx context.Context, userID int) (tokens.Credential, error)
	Clear(ctx context.Context, userID int) error
	Linked(ctx context.Context, userID int) (bool, error)
}

type activityPurger interface {
	DeleteByUser(ctx context.Context, userID int) (int64, error)
}

type statsInvalidator interface {
	Invalidate(userID int)
}

type StravaHandler struct {
	client     oauthClient
	states     oauthStates
	tokens     tokenStore
	activities activityPurger
	cache      statsInvalidator
}

func NewStravaHandler(
	client oauthClient,
	states oauthStates,
	tokens tokenStore,
	activities activityPurger,
	cache statsInvalidator,
) *StravaHandler {
	return &StravaHandler{
		client:     client,
		states:     states,
		tokens:     tokens,
		activities: activities,
		cache:      cache,
	}
}

func (h *StravaHandler) SetupRoutes(router *mux.Router) {
	router.HandleFunc("/authorise", h.HandleAuthorise).Methods("GET").Name("authorise")
	router.HandleFunc("/deauthorise", h.HandleDeauthorise).Methods("POST").Name("deauthorise")
}

// HandleAuthorise shows the link page, and is also the oauth callback target.
func (h *StravaHandler) HandleAuthorise(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.strava.authorise")
	defer span.End()

	session, ok := sessionFromRequest(w, r)
	if !ok {
		return
	}

	query := r.URL.Query()
	if errMsg := query.Get("error"); errMsg != "" {
		log.Debugf("user %d: strava authorisation denied: %s", session.UserID, errMsg)
		apology(w, r, errMsg, http.StatusBadRequest)
		return
	}

	if code := query.Get("code"); code != "" {
		h.completeLink(ctx, w, r, session.UserID, code, query.Get("state"))
		return
	}

	linked, err := h.tokens.Linked(ctx, session.UserID)
	if err != nil {
		log.Errorf("user %d: check strava link: %s", session.UserID, err)
		span.RecordError(err)
		apology(w, r, "Could not load your Strava link, please try again later.", http.StatusInternalServerError)
		return
	}

	data := map[string]any{"Linked": linked}
	if !linked {
		state, err := h.states.Issue(ctx, session.UserID)
		if err != nil {
			log.Errorf("user %d: issue oauth state: %s", session.UserID, err)
			span.RecordError(err)
			apology(w, r, "Could not start the Strava authorisation, please try again later.", http.StatusInternalServerError)
			return
		}
		data["AuthURL"] = h.client.AuthURL(state)
	}

	render(w, r, "authorise.html", http.StatusOK, data)
}

func (h *StravaHandler) completeLink(ctx context.Context, w http.ResponseWriter, r *http.Request, userID int, code, state string) {
	stateUserID, err := h.states.Consume(ctx, state)
	if err != nil {
		if !errors.Is(err, strava.ErrUnknownState) {
			log.Errorf("user %d: consume oauth state: %s", userID, err)
		}
		apology(w, r, "The Strava authorisation expired, please try again.", http.StatusBadRequest)
		return
	}
	if stateUserID != userID {
		log.Warnf("oauth state of user %d used by user %d", stateUserID, userID)
		apology(w, r, "The Strava authorisation expired, please try again.", http.StatusBadRequest)
		return
	}

	token, err := h.client.Exchange(ctx, code)
	if err != nil {
		if errors.Is(err, strava.ErrAuthExpired) {
			apology(w, r, "Strava rejected the authorisation, please try again.", http.StatusBadRequest)
			return
		}
		log.Errorf("user %d: exchange strava code: %s", userID, err)
		apology(w, r, "Strava could not be reached, please try again later.", http.StatusBadGateway)
		return
	}

	if err := h.tokens.Save(ctx, userID, token); err != nil {
		log.Errorf("user %d: save strava tokens: %s", userID, err)
		apology(w, r, "Could not store the Strava authorisation, please try again later.", http.StatusInternalServerError)
		return
	}

	log.Debugf("user %d linked strava", userID)
	redirect(w, r, "/", nil)
}

// HandleDeauthorise revokes the provider access and forgets the tokens and every stored activity.
// Local data is removed even when the provider cannot be reached.
func (h *StravaHandler) HandleDeauthorise(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.strava.deauthorise")
	defer span.End()

	session, ok := sessionFromRequest(w, r)
	if !ok {
		return
	}

	cred, err := h.tokens.Resolve(ctx, session.UserID)
	switch {
	case err == nil:
		if err := h.client.Deauthorize(ctx, cred.AccessKey); err != nil {
			log.Errorf("user %d: strava deauthorize: %s", session.UserID, err)
		}
	case errors.Is(err, strava.ErrAuthExpired):
		// nothing to revoke
	default:
		log.Errorf("user %d: resolve tokens for deauthorize: %s", session.UserID, err)
	}

	if err := h.tokens.Clear(ctx, session.UserID); err != nil {
		log.Errorf("user %d: clear tokens: %s", session.UserID, err)
		span.RecordError(err)
		apology(w, r, "Unlinking Strava failed, please try again later.", http.StatusInternalServerError)
		return
	}

	deleted, err := h.activities.DeleteByUser(ctx, session.UserID)
	if err != nil {
		log.Errorf("user %d: delete activities: %s", session.UserID, err)
		span.RecordError(err)
		apology(w, r, "Unlinking Strava failed, please try again later.", http.StatusInternalServerError)
		return
	}
	h.cache.Invalidate(session.UserID)

	log.Debugf("user %d unlinked strava, %d activities deleted", session.UserID, deleted)
	redirect(w, r, "/authorise", map[string]string{"status": "Strava unlinked, your activities were removed."})
}
