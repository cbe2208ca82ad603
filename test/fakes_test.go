package test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/brianvoe/gofakeit/v6"

	"github.com/2beens/fitdash/internal/strava"
)

const (
	testStravaClientID     = "test-client-id"
	testStravaClientSecret = "test-client-secret"
	testAuthCode           = "test-auth-code"
	fakeActivitiesCount    = 250
	fakeCoachAnswer        = "Keep the long run easy this week."
)

// fakeStrava serves the oauth and activity endpoints the service uses.
type fakeStrava struct {
	*httptest.Server

	mu            sync.Mutex
	activities    []strava.Activity
	accessKey     string
	deauthorized  atomic.Int32
	activityPages atomic.Int32
}

func newFakeStrava() *fakeStrava {
	f := &fakeStrava{
		activities: fakeActivities(fakeActivitiesCount),
		accessKey:  "access-1",
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/token", f.handleToken)
	mux.HandleFunc("/oauth/deauthorize", f.handleDeauthorize)
	mux.HandleFunc("/api/v3/athlete/activities", f.handleActivities)
	f.Server = httptest.NewServer(mux)

	return f
}

func fakeActivities(n int) []strava.Activity {
	faker := gofakeit.New(42)
	start := time.Date(2024, time.December, 31, 7, 0, 0, 0, time.UTC)
	types := []string{"Run", "Ride", "Walk"}

	list := make([]strava.Activity, 0, n)
	for i := 0; i < n; i++ {
		distance := faker.Float64Range(2000, 40000)
		movingTime := faker.Float64Range(900, 7200)
		speed := distance / movingTime
		list = append(list, strava.Activity{
			ID:             int64(10_000 + n - i),
			Name:           faker.Sentence(3),
			Type:           types[i%len(types)],
			Distance:       &distance,
			MovingTime:     &movingTime,
			AverageSpeed:   &speed,
			StartDateLocal: start.AddDate(0, 0, -2*i).Format("2006-01-02T15:04:05Z"),
			StartLatLng:    []float64{faker.Latitude(), faker.Longitude()},
		})
	}
	return list
}

func (f *fakeStrava) handleToken(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if r.PostForm.Get("client_id") != testStravaClientID || r.PostForm.Get("client_secret") != testStravaClientSecret {
		http.Error(w, `{"message":"Bad Request"}`, http.StatusBadRequest)
		return
	}

	switch r.PostForm.Get("grant_type") {
	case "authorization_code":
		if r.PostForm.Get("code") != testAuthCode {
			http.Error(w, `{"message":"Bad Request"}`, http.StatusBadRequest)
			return
		}
	case "refresh_token":
	default:
		http.Error(w, `{"message":"Bad Request"}`, http.StatusBadRequest)
		return
	}

	f.mu.Lock()
	accessKey := f.accessKey
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"token_type":    "Bearer",
		"access_token":  accessKey,
		"refresh_token": "refresh-1",
		"expires_at":    time.Now().Add(6 * time.Hour).Unix(),
		"expires_in":    21600,
	})
}

func (f *fakeStrava) handleDeauthorize(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost || r.FormValue("access_token") == "" {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	f.deauthorized.Add(1)
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"access_token":"` + r.FormValue("access_token") + `"}`))
}

func (f *fakeStrava) handleActivities(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	accessKey := f.accessKey
	all := f.activities
	f.mu.Unlock()

	if r.Header.Get("Authorization") != "Bearer "+accessKey {
		http.Error(w, `{"message":"Authorization Error"}`, http.StatusUnauthorized)
		return
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))
	if page < 1 || perPage < 1 {
		http.Error(w, "bad paging", http.StatusBadRequest)
		return
	}
	f.activityPages.Add(1)

	from := (page - 1) * perPage
	to := from + perPage
	if from > len(all) {
		from = len(all)
	}
	if to > len(all) {
		to = len(all)
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(all[from:to])
}

func newFakeOpenAI() *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/chat/completions", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = fmt.Fprintf(w, `{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"created": %d,
			"model": "gpt-3.5-turbo",
			"choices": [{"index": 0, "message": {"role": "assistant", "content": %q}, "finish_reason": "stop"}],
			"usage": {"prompt_tokens": 10, "completion_tokens": 8, "total_tokens": 18}
		}`, time.Now().Unix(), fakeCoachAnswer)
	})
	return httptest.NewServer(mux)
}
