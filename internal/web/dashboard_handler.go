package web

import (
	"context"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/2beens/fitdash/internal/activities"
	"github.com/2beens/fitdash/internal/strava"
	"github.com/2beens/fitdash/internal/telemetry/tracing"
)

//go:generate mockgen -source=$GOFILE -destination=dashboard_handler_mocks_test.go -package=web_test

type activityLister interface {
	List(ctx context.Context, params activities.ListParams) ([]activities.Activity, error)
	Types(ctx context.Context, userID int) ([]string, error)
}

type ingester interface {
	Ingest(ctx context.Context, userID int) (*activities.IngestResult, error)
}

type linkChecker interface {
	Linked(ctx context.Context, userID int) (bool, error)
}

type DashboardHandler struct {
	activities activityLister
	ingester   ingester
	links      linkChecker
}

func NewDashboardHandler(activities activityLister, ingester ingester, links linkChecker) *DashboardHandler {
	return &DashboardHandler{
		activities: activities,
		ingester:   ingester,
		links:      links,
	}
}

func (h *DashboardHandler) SetupRoutes(router *mux.Router) {
	router.HandleFunc("/", h.HandleIndex).Methods("GET").Name("index")
	router.HandleFunc("/", h.HandleRefresh).Methods("POST").Name("refresh")
}

func (h *DashboardHandler) HandleIndex(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.dashboard.index")
	defer span.End()

	session, ok := sessionFromRequest(w, r)
	if !ok {
		return
	}

	linked, err := h.links.Linked(ctx, session.UserID)
	if err != nil {
		log.Errorf("user %d: check strava link: %s", session.UserID, err)
		span.RecordError(err)
		apology(w, r, "Could not load your activities, please try again later.", http.StatusInternalServerError)
		return
	}
	if !linked {
		redirect(w, r, "/authorise", nil)
		return
	}

	h.renderActivities(ctx, w, r, session.UserID, map[string]any{})
}

// HandleRefresh runs an ingestion when asked to, then shows the table like HandleIndex.
func (h *DashboardHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.dashboard.refresh")
	defer span.End()

	session, ok := sessionFromRequest(w, r)
	if !ok {
		return
	}

	data := map[string]any{}
	if r.FormValue("refresh") == "1" {
		result, err := h.ingester.Ingest(ctx, session.UserID)
		switch {
		case errors.Is(err, strava.ErrAuthExpired):
			log.Debugf("user %d: strava authorization expired", session.UserID)
			redirect(w, r, "/authorise", nil)
			return
		case err != nil:
			log.Errorf("user %d: ingest activities: %s", session.UserID, err)
			span.RecordError(err)
			apology(w, r, "Refreshing activities failed, please try again later.", http.StatusInternalServerError)
			return
		}

		data["Result"] = result
		if result.Stop == activities.StopTransportError {
			log.Warnf("user %d: ingestion stopped after %d pages: %s", session.UserID, result.Pages, result.Err)
			data["Warning"] = "Strava could not be reached, only part of your activities may have been refreshed."
		}
	}

	h.renderActivities(ctx, w, r, session.UserID, data)
}

func (h *DashboardHandler) renderActivities(ctx context.Context, w http.ResponseWriter, r *http.Request, userID int, data map[string]any) {
	activityType := r.URL.Query().Get("type")

	list, err := h.activities.List(ctx, activities.ListParams{
		UserID: userID,
		Type:   activityType,
	})
	if err != nil {
		log.Errorf("user %d: list activities: %s", userID, err)
		apology(w, r, "Could not load your activities, please try again later.", http.StatusInternalServerError)
		return
	}

	types, err := h.activities.Types(ctx, userID)
	if err != nil {
		log.Errorf("user %d: list activity types: %s", userID, err)
		apology(w, r, "Could not load your activities, please try again later.", http.StatusInternalServerError)
		return
	}

	data["Activities"] = list
	data["Types"] = types
	data["SelectedType"] = activityType
	render(w, r, "index.html", http.StatusOK, data)
}
