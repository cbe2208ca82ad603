package activities

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/2beens/fitdash/internal/telemetry/tracing"
)

//go:generate mockgen -source=$GOFILE -destination=analyzer_mocks_test.go -package=activities_test

var ErrEmptyDataset = errors.New("no activities match the filter")

type distanceRepo interface {
	DistanceEntries(ctx context.Context, userID int, activityType string) ([]DistanceEntry, error)
}

type YearTotal struct {
	Year     int     `json:"year"`
	Distance float64 `json:"distance"` // km
}

// DailyDistance is one day of the cumulative series.
type DailyDistance struct {
	Date     string  `json:"date"`      // YYYY-MM-DD
	DateLong string  `json:"date_long"` // DD Mon
	Year     int     `json:"year"`
	Delta    int     `json:"delta"`    // days since January 1st of Year
	Distance float64 `json:"distance"` // km, cumulative within Year
}

type Analyzer struct {
	repo  distanceRepo
	cache *StatsCache
}

// NewAnalyzer creates an analyzer. A nil cache disables caching.
func NewAnalyzer(repo distanceRepo, cache *StatsCache) *Analyzer {
	return &Analyzer{
		repo:  repo,
		cache: cache,
	}
}

func (a *Analyzer) YearlyTotals(ctx context.Context, userID int, activityType string) (_ []YearTotal, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "analyzer.activities.yearlyTotals")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	days, err := a.dailyDistances(ctx, userID, activityType)
	if err != nil {
		return nil, err
	}

	return YearlyTotals(days), nil
}

func (a *Analyzer) CumulativeDistances(ctx context.Context, userID int, activityType string) (_ []DailyDistance, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "analyzer.activities.cumulativeDistances")
	defer func() {
		if errors.Is(err, ErrEmptyDataset) {
			tracing.EndSpanWithErrCheck(span, nil)
			return
		}
		tracing.EndSpanWithErrCheck(span, err)
	}()

	days, err := a.dailyDistances(ctx, userID, activityType)
	if err != nil {
		return nil, err
	}

	series, err := CumulativeSeries(days)
	if err != nil {
		return nil, err
	}

	log.Tracef("cumulative series for user %d [%s]: %d days", userID, activityType, len(series))
	return series, nil
}

// dailyDistances is the shared input of both aggregations, cached per user and filter.
func (a *Analyzer) dailyDistances(ctx context.Context, userID int, activityType string) ([]DistanceEntry, error) {
	if days, ok := a.cache.GetDays(userID, activityType); ok {
		return days, nil
	}

	entries, err := a.repo.DistanceEntries(ctx, userID, activityType)
	if err != nil {
		return nil, fmt.Errorf("distance entries: %w", err)
	}

	days := SumPerDay(entries)
	a.cache.SetDays(userID, activityType, days)
	return days, nil
}

// SumPerDay merges entries of the same calendar day, oldest day first.
func SumPerDay(entries []DistanceEntry) []DistanceEntry {
	perDay := make(map[time.Time]float64, len(entries))
	for _, e := range entries {
		perDay[truncateDay(e.Day)] += e.Distance
	}

	days := make([]DistanceEntry, 0, len(perDay))
	for day, distance := range perDay {
		days = append(days, DistanceEntry{Day: day, Distance: distance})
	}
	sort.Slice(days, func(i, j int) bool {
		return days[i].Day.Before(days[j].Day)
	})
	return days
}

// YearlyTotals sums distances per calendar year, ordered by year.
func YearlyTotals(entries []DistanceEntry) []YearTotal {
	byYear := make(map[int]float64)
	for _, e := range entries {
		byYear[e.Day.Year()] += e.Distance / 1000
	}

	totals := make([]YearTotal, 0, len(byYear))
	for year, distance := range byYear {
		totals = append(totals, YearTotal{Year: year, Distance: distance})
	}
	sort.Slice(totals, func(i, j int) bool {
		return totals[i].Year < totals[j].Year
	})

	return totals
}

// CumulativeSeries builds one row per calendar day between the first and the last entry.
// Days without activities add nothing, and the running total starts over every January 1st.
func CumulativeSeries(entries []DistanceEntry) ([]DailyDistance, error) {
	if len(entries) == 0 {
		return nil, ErrEmptyDataset
	}

	perDay := make(map[time.Time]float64, len(entries))
	minDay, maxDay := truncateDay(entries[0].Day), truncateDay(entries[0].Day)
	for _, e := range entries {
		day := truncateDay(e.Day)
		perDay[day] += e.Distance / 1000
		if day.Before(minDay) {
			minDay = day
		}
		if day.After(maxDay) {
			maxDay = day
		}
	}

	days := int(maxDay.Sub(minDay).Hours()/24) + 1
	series := make([]DailyDistance, 0, days)

	var (
		cumulative  float64
		delta       int
		currentYear = minDay.Year()
	)
	// the first year rarely starts on January 1st
	delta = minDay.YearDay() - 1

	for day := minDay; !day.After(maxDay); day = day.AddDate(0, 0, 1) {
		if day.Year() != currentYear {
			currentYear = day.Year()
			cumulative = 0
			delta = 0
		}

		cumulative += perDay[day]
		series = append(series, DailyDistance{
			Date:     day.Format("2006-01-02"),
			DateLong: day.Format("02 Jan"),
			Year:     currentYear,
			Delta:    delta,
			Distance: cumulative,
		})
		delta++
	}

	return series, nil
}
