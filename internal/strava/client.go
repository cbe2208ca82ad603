package strava

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/oauth2"

	"github.com/2beens/fitdash/internal/telemetry/tracing"
)

const (
	DefaultBaseURL        = "https://www.strava.com"
	DefaultRequestTimeout = 30 * time.Second

	activitiesPath   = "/api/v3/athlete/activities"
	authorizePath    = "/oauth/authorize"
	tokenPath        = "/oauth/token"
	deauthorizePath  = "/oauth/deauthorize"
	maxErrorBodySize = 512
)

var DefaultScopes = []string{"read", "activity:read_all"}

type ClientParams struct {
	BaseURL        string
	ClientID       string
	ClientSecret   string
	RedirectURL    string
	Scopes         []string
	HTTPClient     *http.Client
	RequestTimeout time.Duration
}

type Client struct {
	baseURL        string
	oauthConfig    *oauth2.Config
	httpClient     *http.Client
	requestTimeout time.Duration
}

func NewClient(params ClientParams) *Client {
	baseURL := strings.TrimSuffix(params.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	scopes := params.Scopes
	if len(scopes) == 0 {
		scopes = DefaultScopes
	}
	httpClient := params.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	requestTimeout := params.RequestTimeout
	if requestTimeout <= 0 {
		requestTimeout = DefaultRequestTimeout
	}

	return &Client{
		baseURL: baseURL,
		oauthConfig: &oauth2.Config{
			ClientID:     params.ClientID,
			ClientSecret: params.ClientSecret,
			RedirectURL:  params.RedirectURL,
			Endpoint: oauth2.Endpoint{
				AuthURL:   baseURL + authorizePath,
				TokenURL:  baseURL + tokenPath,
				AuthStyle: oauth2.AuthStyleInParams,
			},
			// strava wants a comma separated scope list
			Scopes: []string{strings.Join(scopes, ",")},
		},
		httpClient:     httpClient,
		requestTimeout: requestTimeout,
	}
}

// AuthURL returns the provider authorization page the user is sent to.
func (c *Client) AuthURL(state string) string {
	return c.oauthConfig.AuthCodeURL(state, oauth2.SetAuthURLParam("approval_prompt", "force"))
}

// Exchange trades an authorization code for a credential triple.
func (c *Client) Exchange(ctx context.Context, code string) (_ Token, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "strava.client.exchange")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	ctx, cancel := c.oauthContext(ctx)
	defer cancel()

	tok, err := c.oauthConfig.Exchange(ctx, code)
	if err != nil {
		return Token{}, c.mapOAuthError("exchange code", err)
	}

	return tokenFromOAuth(tok), nil
}

// Refresh obtains a fresh access key. A rejected refresh key results in ErrAuthExpired.
func (c *Client) Refresh(ctx context.Context, refreshKey string) (_ Token, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "strava.client.refresh")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if refreshKey == "" {
		return Token{}, fmt.Errorf("refresh: empty refresh key: %w", ErrAuthExpired)
	}

	ctx, cancel := c.oauthContext(ctx)
	defer cancel()

	tok, err := c.oauthConfig.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshKey}).Token()
	if err != nil {
		return Token{}, c.mapOAuthError("refresh", err)
	}

	refreshed := tokenFromOAuth(tok)
	if refreshed.RefreshKey == "" {
		refreshed.RefreshKey = refreshKey
	}
	return refreshed, nil
}

// ListActivities fetches one page of the athlete's activities, most recent first.
func (c *Client) ListActivities(ctx context.Context, accessKey string, page, perPage int) (_ []Activity, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "strava.client.listActivities")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	ctx, cancel := context.WithTimeout(ctx, c.requestTimeout)
	defer cancel()

	query := url.Values{}
	query.Set("per_page", strconv.Itoa(perPage))
	query.Set("page", strconv.Itoa(page))
	reqURL := c.baseURL + activitiesPath + "?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	defer drainAndClose(resp.Body)

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, fmt.Errorf("list activities page %d: %w", page, ErrAuthExpired)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &TransportError{
			StatusCode: resp.StatusCode,
			Err:        errors.New(readErrorBody(resp.Body)),
		}
	}

	var activities []Activity
	if err := json.NewDecoder(resp.Body).Decode(&activities); err != nil {
		return nil, &TransportError{
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("decode activities: %w", err),
		}
	}

	return activities, nil
}

// Deauthorize revokes the application's access for the given access key.
func (c *Client) Deauthorize(ctx context.Context, accessKey string) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "strava.client.deauthorize")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	ctx, cancel := context.WithTimeout(ctx, c.requestTimeout)
	defer cancel()

	form := url.Values{}
	form.Set("access_token", accessKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+deauthorizePath, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &TransportError{Err: err}
	}
	defer drainAndClose(resp.Body)

	if resp.StatusCode == http.StatusUnauthorized {
		return fmt.Errorf("deauthorize: %w", ErrAuthExpired)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &TransportError{
			StatusCode: resp.StatusCode,
			Err:        errors.New(readErrorBody(resp.Body)),
		}
	}

	return nil
}

func (c *Client) oauthContext(ctx context.Context) (context.Context, context.CancelFunc) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	return context.WithTimeout(ctx, c.requestTimeout)
}

func (c *Client) mapOAuthError(op string, err error) error {
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) && retrieveErr.Response != nil {
		switch retrieveErr.Response.StatusCode {
		case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden:
			log.Debugf("strava %s rejected [%d]: %s", op, retrieveErr.Response.StatusCode, retrieveErr.Body)
			return fmt.Errorf("%s: %w", op, ErrAuthExpired)
		default:
			return &TransportError{StatusCode: retrieveErr.Response.StatusCode, Err: err}
		}
	}
	return &TransportError{Err: fmt.Errorf("%s: %w", op, err)}
}

func tokenFromOAuth(tok *oauth2.Token) Token {
	t := Token{
		AccessKey:  tok.AccessToken,
		RefreshKey: tok.RefreshToken,
	}

	// strava returns the absolute expiry next to expires_in
	switch v := tok.Extra("expires_at").(type) {
	case float64:
		t.ExpiresAt = int64(v)
	case json.Number:
		if n, err := v.Int64(); err == nil {
			t.ExpiresAt = n
		}
	case string:
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			t.ExpiresAt = n
		}
	}
	if t.ExpiresAt == 0 && !tok.Expiry.IsZero() {
		t.ExpiresAt = tok.Expiry.Unix()
	}

	return t
}

func readErrorBody(body io.Reader) string {
	b, err := io.ReadAll(io.LimitReader(body, maxErrorBodySize))
	if err != nil || len(b) == 0 {
		return "empty response body"
	}
	return strings.TrimSpace(string(b))
}

func drainAndClose(body io.ReadCloser) {
	_, _ = io.Copy(io.Discard, body)
	_ = body.Close()
}
