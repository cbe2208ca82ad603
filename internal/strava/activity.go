package strava

// Activity is a single activity as listed by the provider, limited to the fields we keep.
// Optional numeric fields are nil when the provider omits them.
type Activity struct {
	ID                   int64     `json:"id"`
	Name                 string    `json:"name"`
	Distance             *float64  `json:"distance"`
	MovingTime           *float64  `json:"moving_time"`
	ElapsedTime          *float64  `json:"elapsed_time"`
	TotalElevationGain   *float64  `json:"total_elevation_gain"`
	Type                 string    `json:"type"`
	StartDateLocal       string    `json:"start_date_local"`
	AchievementCount     *int      `json:"achievement_count"`
	KudosCount           *int      `json:"kudos_count"`
	StartLatLng          []float64 `json:"start_latlng"`
	AverageSpeed         *float64  `json:"average_speed"`
	MaxSpeed             *float64  `json:"max_speed"`
	AverageCadence       *float64  `json:"average_cadence"`
	AverageWatts         *float64  `json:"average_watts"`
	MaxWatts             *float64  `json:"max_watts"`
	WeightedAverageWatts *float64  `json:"weighted_average_watts"`
	Kilojoules           *float64  `json:"kilojoules"`
	DeviceWatts          bool      `json:"device_watts"`
	HasHeartrate         bool      `json:"has_heartrate"`
	AverageHeartrate     *float64  `json:"average_heartrate"`
	MaxHeartrate         *float64  `json:"max_heartrate"`
	ElevHigh             *float64  `json:"elev_high"`
	ElevLow              *float64  `json:"elev_low"`
	PRCount              *int      `json:"pr_count"`
	SufferScore          *float64  `json:"suffer_score"`
}

// Token is a decrypted credential triple as issued by the provider.
type Token struct {
	AccessKey  string
	RefreshKey string
	// unix seconds
	ExpiresAt int64
}
