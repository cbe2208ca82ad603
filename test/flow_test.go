package test

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2beens/fitdash/internal/activities"
)

func (s *IntegrationTestSuite) TestLinkIngestStatsChatAndUnlink() {
	t := s.T()
	b := newBrowser(t)

	resp := b.registerAndLogin("flow@example.com", "flowrunner", "Secret123")
	// not linked yet
	assert.Equal(t, "/authorise", resp.Header.Get("Location"))
	userID := s.userID("flowrunner")

	// dashboard sends unlinked users to the link page as well
	resp, _ = b.get("/")
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/authorise", resp.Header.Get("Location"))

	resp, body := b.get("/authorise")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, s.strava.URL+"/oauth/authorize")
	match := authURLStateRegex.FindStringSubmatch(body)
	require.Len(t, match, 2)
	state := match[1]

	// a forged state is refused
	resp, _ = b.get("/authorise?code=" + testAuthCode + "&state=forged")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = b.get("/authorise?code=" + testAuthCode + "&state=" + url.QueryEscape(state))
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))

	// the state is single use
	resp, _ = b.get("/authorise?code=" + testAuthCode + "&state=" + url.QueryEscape(state))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var storedAccessKey string
	require.NoError(t, s.DB.QueryRow(`SELECT access_key FROM app_user WHERE id = $1`, userID).Scan(&storedAccessKey))
	assert.NotEqual(t, "access-1", storedAccessKey, "tokens must be stored encrypted")

	resp, body = b.get("/")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "No activities stored yet")

	// 250 activities come in two pages: a full one and a short one
	resp, body = b.post("/", url.Values{"refresh": {"1"}})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Fetched 250 activities from 2 page(s), 250 new.")
	assert.Equal(t, fakeActivitiesCount, s.countActivities(userID))

	// nothing new the second time
	resp, body = b.post("/", url.Values{"refresh": {"1"}})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "250 activities from 2 page(s), 0 new.")
	assert.Equal(t, fakeActivitiesCount, s.countActivities(userID))

	resp, body = b.get("/?type=Run")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, (fakeActivitiesCount+2)/3, strings.Count(body, "<td>Run</td>"))
	assert.NotContains(t, body, "<td>Ride</td>")

	resp, body = b.get("/stats/yearly?type=Run")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var totals []activities.YearTotal
	require.NoError(t, json.Unmarshal([]byte(body), &totals))
	require.NotEmpty(t, totals)
	assert.Equal(t, 2024, totals[len(totals)-1].Year)

	resp, body = b.get("/stats/cumulative")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var series []activities.DailyDistance
	require.NoError(t, json.Unmarshal([]byte(body), &series))
	require.NotEmpty(t, series)
	last := series[len(series)-1]
	assert.Equal(t, "2024-12-31", last.Date)
	assert.Equal(t, "31 Dec", last.DateLong)
	assert.Equal(t, 365, last.Delta)
	for i := 1; i < len(series); i++ {
		if series[i].Year == series[i-1].Year {
			assert.GreaterOrEqual(t, series[i].Distance, series[i-1].Distance)
		}
	}

	resp, _ = b.get("/stats/cumulative?type=Swim")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = b.post("/chat", url.Values{"question": {"How should I train this week?"}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	resp, body = b.get("/chat")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "How should I train this week?")
	assert.Contains(t, body, fakeCoachAnswer)

	resp, _ = b.post("/chat/reset", nil)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	_, body = b.get("/chat")
	assert.NotContains(t, body, fakeCoachAnswer)

	deauthorizedBefore := s.strava.deauthorized.Load()
	resp, _ = b.post("/deauthorise", nil)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, deauthorizedBefore+1, s.strava.deauthorized.Load())
	assert.Equal(t, 0, s.countActivities(userID))

	var accessKey *string
	require.NoError(t, s.DB.QueryRow(`SELECT access_key FROM app_user WHERE id = $1`, userID).Scan(&accessKey))
	assert.Nil(t, accessKey)

	resp, _ = b.get("/stats/cumulative")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func (s *IntegrationTestSuite) TestRevokedAccessSendsUserToAuthorise() {
	t := s.T()
	b := newBrowser(t)

	b.registerAndLogin("revoked@example.com", "revokedrunner", "Secret123")
	_, body := b.get("/authorise")
	match := authURLStateRegex.FindStringSubmatch(body)
	require.Len(t, match, 2)
	resp, _ := b.get("/authorise?code=" + testAuthCode + "&state=" + url.QueryEscape(match[1]))
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	// the provider stops accepting the stored access key
	s.strava.mu.Lock()
	s.strava.accessKey = "access-2"
	s.strava.mu.Unlock()
	defer func() {
		s.strava.mu.Lock()
		s.strava.accessKey = "access-1"
		s.strava.mu.Unlock()
	}()

	resp, _ = b.post("/", url.Values{"refresh": {"1"}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/authorise", resp.Header.Get("Location"))
	assert.Equal(t, 0, s.countActivities(s.userID("revokedrunner")))
}

func (s *IntegrationTestSuite) TestLoginFeedback() {
	t := s.T()
	b := newBrowser(t)
	b.registerAndLogin("feedback@example.com", "feedbackrunner", "Secret123")

	cases := map[string]struct {
		username string
		password string
		feedback string
	}{
		"short username": {username: "abc", password: "Secret123", feedback: "Invalid username"},
		"short password": {username: "feedbackrunner", password: "abc", feedback: "Invalid password"},
		"unknown user":   {username: "nobodyhere", password: "Secret123", feedback: "Username not found"},
		"wrong password": {username: "feedbackrunner", password: "Secret124", feedback: "Incorrect password. Please try again."},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			resp, body := newBrowser(t).post("/login", url.Values{
				"input_username": {tc.username},
				"input_password": {tc.password},
			})
			assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
			assert.Contains(t, body, tc.feedback)
		})
	}
}

func (s *IntegrationTestSuite) TestRegisterFeedback() {
	t := s.T()
	newBrowser(t).registerAndLogin("taken@example.com", "takenrunner", "Secret123")

	cases := map[string]struct {
		email    string
		username string
		password string
		code     int
	}{
		"invalid email":      {email: "nope", username: "freshrunner", password: "Secret123", code: 1},
		"invalid username":   {email: "fresh@example.com", username: "12345678", password: "Secret123", code: 2},
		"invalid password":   {email: "fresh@example.com", username: "freshrunner", password: "secret", code: 3},
		"duplicate username": {email: "fresh@example.com", username: "takenrunner", password: "Secret123", code: 4},
		"duplicate email":    {email: "taken@example.com", username: "takenrunner", password: "Secret123", code: 5},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			resp, body := newBrowser(t).post("/register", url.Values{
				"input_email":    {tc.email},
				"input_username": {tc.username},
				"input_password": {tc.password},
			})
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.Contains(t, body, `data-code="`+strconv.Itoa(tc.code)+`"`)
		})
	}
}

func (s *IntegrationTestSuite) TestLogout() {
	t := s.T()
	b := newBrowser(t)
	b.registerAndLogin("logout@example.com", "logoutrunner", "Secret123")

	resp, _ := b.get("/authorise")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = b.get("/logout")
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))

	resp, _ = b.get("/authorise")
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))
}
