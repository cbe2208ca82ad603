package activities

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"

	"github.com/2beens/fitdash/internal/telemetry/tracing"
)

const activityColumns = `
	id, user_id, name, type, distance, moving_time, elapsed_time, total_elevation_gain,
	achievement_count, kudos_count, average_speed, max_speed, average_cadence,
	average_watts, max_watts, weighted_average_watts, kilojoules, device_watts,
	has_heartrate, average_heartrate, max_heartrate, elev_high, elev_low, pr_count,
	suffer_score, start_date_local, date, date_sort, time, distance_f, moving_time_f,
	pace, average_heartrate_sort, max_heartrate_sort, start_lat, start_lng`

type ListParams struct {
	UserID int
	// empty means all types
	Type  string
	Limit int
}

// DistanceEntry is the minimal projection the aggregations work on.
type DistanceEntry struct {
	Day      time.Time
	Distance float64 // meters
}

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

// ExistingIDs returns which of the given ids are already stored.
func (r *Repo) ExistingIDs(ctx context.Context, ids []int64) (_ map[int64]bool, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.activities.existingIDs")
	span.SetAttributes(attribute.Int("ids", len(ids)))
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	existing := make(map[int64]bool)
	if len(ids) == 0 {
		return existing, nil
	}

	rows, err := r.db.Query(ctx, `SELECT id FROM activity WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("rows scan: %w", err)
		}
		existing[id] = true
	}

	return existing, rows.Err()
}

// Add inserts the activity unless one with the same id exists. Reports whether a row was inserted.
func (r *Repo) Add(ctx context.Context, a Activity) (inserted bool, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.activities.add")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	tag, err := r.db.Exec(ctx, `
		INSERT INTO activity (`+activityColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18,
			$19, $20, $21, $22, $23, $24, $25, $26, $27, $28, $29, $30, $31, $32, $33, $34, $35, $36)
		ON CONFLICT (id) DO NOTHING`,
		a.ID, a.UserID, a.Name, a.Type, a.Distance, a.MovingTime, a.ElapsedTime, a.TotalElevationGain,
		a.AchievementCount, a.KudosCount, a.AverageSpeed, a.MaxSpeed, a.AverageCadence,
		a.AverageWatts, a.MaxWatts, a.WeightedAverageWatts, a.Kilojoules, a.DeviceWatts,
		a.HasHeartrate, a.AverageHeartrate, a.MaxHeartrate, a.ElevHigh, a.ElevLow, a.PRCount,
		a.SufferScore, a.StartDateLocal, a.Date, a.DateSort, a.Time, a.DistanceF, a.MovingTimeF,
		a.Pace, a.AverageHeartrateSort, a.MaxHeartrateSort, a.StartLat, a.StartLng,
	)
	if err != nil {
		return false, fmt.Errorf("insert activity %d: %w", a.ID, err)
	}

	return tag.RowsAffected() == 1, nil
}

// List returns the user's activities, most recent first.
func (r *Repo) List(ctx context.Context, params ListParams) (_ []Activity, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.activities.list")
	span.SetAttributes(attribute.Int("user", params.UserID), attribute.String("type", params.Type))
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	limit := params.Limit
	if limit <= 0 {
		limit = 10000
	}

	var activityType *string
	if params.Type != "" {
		activityType = &params.Type
	}

	rows, err := r.db.Query(ctx, `
		SELECT `+activityColumns+`
		FROM activity
		WHERE user_id = $1
			AND ($2::text IS NULL OR type = $2)
		ORDER BY start_date_local DESC, id DESC
		LIMIT $3`,
		params.UserID, activityType, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return rows2activities(rows)
}

// Recent returns the n most recent activities of the user.
func (r *Repo) Recent(ctx context.Context, userID, n int) ([]Activity, error) {
	return r.List(ctx, ListParams{UserID: userID, Limit: n})
}

// DistanceEntries returns day and distance of the user's activities, oldest first.
func (r *Repo) DistanceEntries(ctx context.Context, userID int, activityType string) (_ []DistanceEntry, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.activities.distanceEntries")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	var typeFilter *string
	if activityType != "" {
		typeFilter = &activityType
	}

	rows, err := r.db.Query(ctx, `
		SELECT start_date_local, COALESCE(distance, 0)
		FROM activity
		WHERE user_id = $1
			AND ($2::text IS NULL OR type = $2)
		ORDER BY start_date_local ASC`,
		userID, typeFilter,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]DistanceEntry, 0)
	for rows.Next() {
		var e DistanceEntry
		if err := rows.Scan(&e.Day, &e.Distance); err != nil {
			return nil, fmt.Errorf("rows scan: %w", err)
		}
		e.Day = truncateDay(e.Day)
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

func (r *Repo) DeleteByUser(ctx context.Context, userID int) (deleted int64, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.activities.deleteByUser")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	tag, err := r.db.Exec(ctx, `DELETE FROM activity WHERE user_id = $1`, userID)
	if err != nil {
		return 0, fmt.Errorf("delete activities: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *Repo) Count(ctx context.Context, userID int) (count int, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.activities.count")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	err = r.db.QueryRow(ctx, `SELECT COUNT(*) FROM activity WHERE user_id = $1`, userID).Scan(&count)
	return count, err
}

// Types lists the distinct activity types the user has, alphabetically.
func (r *Repo) Types(ctx context.Context, userID int) (_ []string, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.activities.types")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(ctx, `SELECT DISTINCT type FROM activity WHERE user_id = $1 ORDER BY type`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	types, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, err
	}
	return types, nil
}

func rows2activities(rows pgx.Rows) ([]Activity, error) {
	activities := make([]Activity, 0)
	for rows.Next() {
		var a Activity
		if err := rows.Scan(
			&a.ID, &a.UserID, &a.Name, &a.Type, &a.Distance, &a.MovingTime, &a.ElapsedTime, &a.TotalElevationGain,
			&a.AchievementCount, &a.KudosCount, &a.AverageSpeed, &a.MaxSpeed, &a.AverageCadence,
			&a.AverageWatts, &a.MaxWatts, &a.WeightedAverageWatts, &a.Kilojoules, &a.DeviceWatts,
			&a.HasHeartrate, &a.AverageHeartrate, &a.MaxHeartrate, &a.ElevHigh, &a.ElevLow, &a.PRCount,
			&a.SufferScore, &a.StartDateLocal, &a.Date, &a.DateSort, &a.Time, &a.DistanceF, &a.MovingTimeF,
			&a.Pace, &a.AverageHeartrateSort, &a.MaxHeartrateSort, &a.StartLat, &a.StartLng,
		); err != nil {
			return nil, fmt.Errorf("rows scan: %w", err)
		}
		activities = append(activities, a)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return activities, nil
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
