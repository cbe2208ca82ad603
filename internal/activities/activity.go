package activities

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/2beens/fitdash/internal/strava"
)

type ActivityType string

const (
	TypeRun            ActivityType = "Run"
	TypeRide           ActivityType = "Ride"
	TypeWalk           ActivityType = "Walk"
	TypeHike           ActivityType = "Hike"
	TypeSwim           ActivityType = "Swim"
	TypeVirtualRide    ActivityType = "VirtualRide"
	TypeWeightTraining ActivityType = "WeightTraining"
)

const (
	NotAvailable = "n/a"

	dateLayout      = "02/01/2006"
	startDateLayout = "2006-01-02T15:04:05"
)

var ErrInvalidActivity = errors.New("invalid activity")

// Activity is a stored workout. Derived fields are computed once, at ingestion.
type Activity struct {
	ID                   int64
	UserID               int
	Name                 string
	Type                 string
	Distance             *float64
	MovingTime           *int
	ElapsedTime          *int
	TotalElevationGain   *float64
	AchievementCount     *int
	KudosCount           *int
	AverageSpeed         *float64
	MaxSpeed             *float64
	AverageCadence       *float64
	AverageWatts         *float64
	MaxWatts             *float64
	WeightedAverageWatts *float64
	Kilojoules           *float64
	DeviceWatts          bool
	HasHeartrate         bool
	AverageHeartrate     *float64
	MaxHeartrate         *float64
	ElevHigh             *float64
	ElevLow              *float64
	PRCount              *int
	SufferScore          *float64
	StartDateLocal       time.Time

	Date                 string
	DateSort             int
	Time                 string
	DistanceF            string
	MovingTimeF          string
	Pace                 string
	AverageHeartrateSort float64
	MaxHeartrateSort     float64
	StartLat             string
	StartLng             string
}

// FromStrava converts a provider activity into a stored one, computing the derived fields.
// Activities without an id or a parseable start date are rejected with ErrInvalidActivity.
func FromStrava(userID int, src strava.Activity) (Activity, error) {
	if src.ID == 0 {
		return Activity{}, fmt.Errorf("%w: missing id", ErrInvalidActivity)
	}

	// the local start date comes with a Z suffix, but it is not UTC
	startRaw := src.StartDateLocal
	if len(startRaw) > len(startDateLayout) {
		startRaw = startRaw[:len(startDateLayout)]
	}
	start, err := time.Parse(startDateLayout, startRaw)
	if err != nil {
		return Activity{}, fmt.Errorf("%w: activity %d start date %q: %s", ErrInvalidActivity, src.ID, src.StartDateLocal, err)
	}

	a := Activity{
		ID:                   src.ID,
		UserID:               userID,
		Name:                 src.Name,
		Type:                 src.Type,
		Distance:             src.Distance,
		MovingTime:           roundedSeconds(src.MovingTime),
		ElapsedTime:          roundedSeconds(src.ElapsedTime),
		TotalElevationGain:   src.TotalElevationGain,
		AchievementCount:     src.AchievementCount,
		KudosCount:           src.KudosCount,
		AverageSpeed:         src.AverageSpeed,
		MaxSpeed:             src.MaxSpeed,
		AverageCadence:       src.AverageCadence,
		AverageWatts:         src.AverageWatts,
		MaxWatts:             src.MaxWatts,
		WeightedAverageWatts: src.WeightedAverageWatts,
		Kilojoules:           src.Kilojoules,
		DeviceWatts:          src.DeviceWatts,
		HasHeartrate:         src.HasHeartrate,
		AverageHeartrate:     src.AverageHeartrate,
		MaxHeartrate:         src.MaxHeartrate,
		ElevHigh:             src.ElevHigh,
		ElevLow:              src.ElevLow,
		PRCount:              src.PRCount,
		SufferScore:          src.SufferScore,
		StartDateLocal:       start,

		Date:        start.Format(dateLayout),
		DateSort:    DateOrdinal(start),
		Time:        start.Format("15:04:05"),
		DistanceF:   FormatDistance(valueOr(src.Distance, 0)),
		MovingTimeF: FormatDuration(valueOr(src.MovingTime, 0)),
		Pace:        FormatPace(src.Type, valueOr(src.AverageSpeed, 0)),
		StartLat:    NotAvailable,
		StartLng:    NotAvailable,
	}

	if src.HasHeartrate {
		a.AverageHeartrateSort = valueOr(src.AverageHeartrate, 0)
		a.MaxHeartrateSort = valueOr(src.MaxHeartrate, 0)
	}

	if len(src.StartLatLng) == 2 {
		a.StartLat = strconv.FormatFloat(src.StartLatLng[0], 'f', -1, 64)
		a.StartLng = strconv.FormatFloat(src.StartLatLng[1], 'f', -1, 64)
	}

	return a, nil
}

// DateOrdinal is the proleptic Gregorian ordinal of the day, 0001-01-01 being day 1.
func DateOrdinal(t time.Time) int {
	y := t.Year() - 1
	return y*365 + y/4 - y/100 + y/400 + t.YearDay()
}

func FormatDistance(meters float64) string {
	return fmt.Sprintf("%.02fkm", meters/1000)
}

// FormatDuration renders total seconds as HH:MM:SS.
func FormatDuration(totalSeconds float64) string {
	if totalSeconds < 0 {
		totalSeconds = 0
	}
	hours := int(math.Floor(totalSeconds / 3600))
	minutes := int(math.Floor((totalSeconds - float64(hours)*3600) / 60))
	seconds := int(math.Round(math.Mod(totalSeconds, 60)))
	if seconds == 60 {
		seconds = 0
		minutes++
	}
	if minutes == 60 {
		minutes = 0
		hours++
	}
	return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
}

// FormatPace renders km/h for rides and minutes per km for everything else.
// A non-positive speed has no per km pace.
func FormatPace(activityType string, averageSpeed float64) string {
	if ActivityType(activityType) == TypeRide {
		return fmt.Sprintf("%.1fkm/h", math.Max(averageSpeed, 0)*3.6)
	}

	if averageSpeed <= 0 {
		return NotAvailable
	}

	secPerKm := 1000 / averageSpeed
	minutes := int(math.Floor(secPerKm / 60))
	seconds := int(math.Round(math.Mod(secPerKm, 60)))
	if seconds == 60 {
		seconds = 0
		minutes++
	}
	return fmt.Sprintf("%02d:%02d/km", minutes, seconds)
}

// DistanceKm is the raw distance normalized to kilometers, 0 when unknown.
func (a Activity) DistanceKm() float64 {
	return valueOr(a.Distance, 0) / 1000
}

func roundedSeconds(v *float64) *int {
	if v == nil {
		return nil
	}
	s := int(math.Round(*v))
	return &s
}

func valueOr[T any](v *T, def T) T {
	if v == nil {
		return def
	}
	return *v
}
