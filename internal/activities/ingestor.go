package activities

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/time/rate"

	"github.com/2beens/fitdash/internal/strava"
	"github.com/2beens/fitdash/internal/telemetry/metrics"
	"github.com/2beens/fitdash/internal/telemetry/tracing"
	"github.com/2beens/fitdash/internal/tokens"
)

//go:generate mockgen -source=$GOFILE -destination=ingestor_mocks_test.go -package=activities_test

const (
	PageSize        = 200
	DefaultMaxPages = 100
)

type StopReason string

const (
	StopEndOfData      StopReason = "end-of-data"
	StopTransportError StopReason = "transport-error"
	StopPageLimit      StopReason = "page-limit"
)

type activitySource interface {
	ListActivities(ctx context.Context, accessKey string, page, perPage int) ([]strava.Activity, error)
}

type credentialResolver interface {
	Resolve(ctx context.Context, userID int) (tokens.Credential, error)
}

type ingestRepo interface {
	ExistingIDs(ctx context.Context, ids []int64) (map[int64]bool, error)
	Add(ctx context.Context, a Activity) (bool, error)
}

type cacheInvalidator interface {
	Invalidate(userID int)
}

// IngestResult describes how an ingestion run went. Pages already stored are kept
// even when the run stopped on a transport error.
type IngestResult struct {
	Pages    int
	Fetched  int
	Inserted int
	Skipped  int
	Invalid  int
	Stop     StopReason
	// set when Stop is StopTransportError
	Err error
}

type IngestorParams struct {
	Source         activitySource
	Credentials    credentialResolver
	Repo           ingestRepo
	Cache          cacheInvalidator
	MetricsManager *metrics.Manager
	MaxPages       int
	// 0 means PageSize
	PageSize int
	// pages per second, 0 means unlimited
	PageRate float64
}

type Ingestor struct {
	source         activitySource
	credentials    credentialResolver
	repo           ingestRepo
	cache          cacheInvalidator
	metricsManager *metrics.Manager
	maxPages       int
	pageSize       int
	limiter        *rate.Limiter
}

func NewIngestor(params IngestorParams) *Ingestor {
	maxPages := params.MaxPages
	if maxPages <= 0 {
		maxPages = DefaultMaxPages
	}

	pageSize := params.PageSize
	if pageSize <= 0 {
		pageSize = PageSize
	}

	limit := rate.Inf
	if params.PageRate > 0 {
		limit = rate.Limit(params.PageRate)
	}

	return &Ingestor{
		source:         params.Source,
		credentials:    params.Credentials,
		repo:           params.Repo,
		cache:          params.Cache,
		metricsManager: params.MetricsManager,
		maxPages:       maxPages,
		pageSize:       pageSize,
		limiter:        rate.NewLimiter(limit, 1),
	}
}

// Ingest fetches the user's activities page by page and stores the ones not seen before.
// An error is returned only when the user has to re-link the account (strava.ErrAuthExpired),
// the context is done, or storing fails. Provider failures end the run with StopTransportError.
func (i *Ingestor) Ingest(ctx context.Context, userID int) (_ *IngestResult, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "ingestor.activities.ingest")
	span.SetAttributes(attribute.Int("user", userID))
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	start := time.Now()
	result := &IngestResult{}
	defer func() {
		if result.Inserted > 0 && i.cache != nil {
			i.cache.Invalidate(userID)
		}
		if i.metricsManager != nil {
			i.metricsManager.HistIngestDuration.Observe(time.Since(start).Seconds())
			i.metricsManager.CounterIngestedActivities.Add(float64(result.Inserted))
			if result.Stop != "" {
				i.metricsManager.CounterIngestRuns.WithLabelValues(string(result.Stop)).Inc()
			}
		}
	}()

	for page := 1; ; page++ {
		if page > i.maxPages {
			result.Stop = StopPageLimit
			log.Warnf("ingest user %d: stopped at page limit %d", userID, i.maxPages)
			break
		}

		if err := i.limiter.Wait(ctx); err != nil {
			return result, fmt.Errorf("wait for page %d: %w", page, err)
		}

		// resolved for every page, a long run can outlive the access key
		cred, err := i.credentials.Resolve(ctx, userID)
		if err != nil {
			return result, err
		}

		fetched, err := i.source.ListActivities(ctx, cred.AccessKey, page, i.pageSize)
		if err != nil {
			if errors.Is(err, strava.ErrAuthExpired) {
				return result, err
			}
			if ctxErr := ctx.Err(); ctxErr != nil {
				return result, ctxErr
			}
			log.Errorf("ingest user %d: page %d: %s", userID, page, err)
			result.Stop = StopTransportError
			result.Err = err
			break
		}

		result.Pages++
		result.Fetched += len(fetched)
		if len(fetched) == 0 {
			result.Stop = StopEndOfData
			break
		}

		if err := i.store(ctx, userID, fetched, result); err != nil {
			return result, err
		}

		if len(fetched) < i.pageSize {
			result.Stop = StopEndOfData
			break
		}
	}

	log.Debugf(
		"ingest user %d: pages %d, fetched %d, inserted %d, skipped %d, invalid %d, stop %s",
		userID, result.Pages, result.Fetched, result.Inserted, result.Skipped, result.Invalid, result.Stop,
	)

	return result, nil
}

func (i *Ingestor) store(ctx context.Context, userID int, fetched []strava.Activity, result *IngestResult) error {
	ids := make([]int64, 0, len(fetched))
	for _, a := range fetched {
		ids = append(ids, a.ID)
	}

	existing, err := i.repo.ExistingIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("existing ids: %w", err)
	}

	for _, src := range fetched {
		if existing[src.ID] {
			result.Skipped++
			continue
		}

		a, err := FromStrava(userID, src)
		if err != nil {
			log.Warnf("ingest user %d: %s", userID, err)
			result.Invalid++
			continue
		}

		inserted, err := i.repo.Add(ctx, a)
		if err != nil {
			return err
		}
		if inserted {
			result.Inserted++
		} else {
			// stored concurrently, or listed twice
			result.Skipped++
		}
		existing[src.ID] = true
	}

	return nil
}
