package web

import (
	"context"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/2beens/fitdash/internal/activities"
	"github.com/2beens/fitdash/internal/telemetry/tracing"
	"github.com/2beens/fitdash/pkg"
)

//go:generate mockgen -source=$GOFILE -destination=stats_handler_mocks_test.go -package=web_test

type statsAnalyzer interface {
	YearlyTotals(ctx context.Context, userID int, activityType string) ([]activities.YearTotal, error)
	CumulativeDistances(ctx context.Context, userID int, activityType string) ([]activities.DailyDistance, error)
}

type typesLister interface {
	Types(ctx context.Context, userID int) ([]string, error)
}

type errorResponse struct {
	Error string `json:"error"`
}

type StatsHandler struct {
	analyzer statsAnalyzer
	types    typesLister
}

func NewStatsHandler(analyzer statsAnalyzer, types typesLister) *StatsHandler {
	return &StatsHandler{
		analyzer: analyzer,
		types:    types,
	}
}

func (h *StatsHandler) SetupRoutes(router *mux.Router) {
	router.HandleFunc("/stats", h.HandleStatsPage).Methods("GET").Name("stats")
	router.HandleFunc("/stats/yearly", h.HandleYearly).Methods("GET").Name("stats-yearly")
	router.HandleFunc("/stats/cumulative", h.HandleCumulative).Methods("GET").Name("stats-cumulative")
}

func (h *StatsHandler) HandleStatsPage(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.stats.page")
	defer span.End()

	session, ok := sessionFromRequest(w, r)
	if !ok {
		return
	}

	types, err := h.types.Types(ctx, session.UserID)
	if err != nil {
		log.Errorf("user %d: list activity types: %s", session.UserID, err)
		span.RecordError(err)
		apology(w, r, "Could not load your stats, please try again later.", http.StatusInternalServerError)
		return
	}

	render(w, r, "stats.html", http.StatusOK, map[string]any{
		"Types":        types,
		"SelectedType": r.URL.Query().Get("type"),
	})
}

func (h *StatsHandler) HandleYearly(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.stats.yearly")
	defer span.End()

	session, ok := sessionFromRequest(w, r)
	if !ok {
		return
	}

	totals, err := h.analyzer.YearlyTotals(ctx, session.UserID, r.URL.Query().Get("type"))
	if err != nil {
		log.Errorf("user %d: yearly totals: %s", session.UserID, err)
		span.RecordError(err)
		pkg.SendJsonResponse(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
		return
	}

	pkg.SendJsonResponse(w, http.StatusOK, totals)
}

func (h *StatsHandler) HandleCumulative(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.stats.cumulative")
	defer span.End()

	session, ok := sessionFromRequest(w, r)
	if !ok {
		return
	}

	series, err := h.analyzer.CumulativeDistances(ctx, session.UserID, r.URL.Query().Get("type"))
	switch {
	case errors.Is(err, activities.ErrEmptyDataset):
		pkg.SendJsonResponse(w, http.StatusNotFound, errorResponse{Error: err.Error()})
		return
	case err != nil:
		log.Errorf("user %d: cumulative distances: %s", session.UserID, err)
		span.RecordError(err)
		pkg.SendJsonResponse(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
		return
	}

	pkg.SendJsonResponse(w, http.StatusOK, series)
}
