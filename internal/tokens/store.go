package tokens

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/2beens/fitdash/internal/strava"
	"github.com/2beens/fitdash/internal/telemetry/metrics"
	"github.com/2beens/fitdash/internal/telemetry/tracing"
	"github.com/2beens/fitdash/internal/users"
)

//go:generate mockgen -source=$GOFILE -destination=store_mocks_test.go -package=tokens_test

const refreshTimeout = time.Minute

type tokensRepo interface {
	GetTokens(ctx context.Context, userID int) (*users.EncryptedTokens, error)
	SetTokens(ctx context.Context, userID int, tokens users.EncryptedTokens) error
	SwapTokens(ctx context.Context, userID int, prevKeyExpires string, tokens users.EncryptedTokens) (bool, error)
	ClearTokens(ctx context.Context, userID int) error
}

type refresher interface {
	Refresh(ctx context.Context, refreshKey string) (strava.Token, error)
}

type secretStore interface {
	Encrypt(plain string) (string, error)
	Decrypt(encoded string) (string, error)
}

// Credential is a decrypted strava credential triple.
type Credential struct {
	AccessKey  string
	RefreshKey string
	ExpiresAt  time.Time
}

// Expired reports whether the access key can no longer be used at now.
// An expiry equal to now counts as expired.
func (c Credential) Expired(now time.Time) bool {
	return !now.Before(c.ExpiresAt)
}

type Store struct {
	repo           tokensRepo
	refresher      refresher
	secrets        secretStore
	metricsManager *metrics.Manager
	group          singleflight.Group

	// injectable clock, for tests
	NowFunc func() time.Time
}

func NewStore(
	repo tokensRepo,
	refresher refresher,
	secrets secretStore,
	metricsManager *metrics.Manager,
) *Store {
	return &Store{
		repo:           repo,
		refresher:      refresher,
		secrets:        secrets,
		metricsManager: metricsManager,
		NowFunc:        time.Now,
	}
}

// Resolve returns a usable credential for the user, refreshing it first if it has expired.
// Users without linked tokens, or whose refresh key was rejected, get strava.ErrAuthExpired.
func (s *Store) Resolve(ctx context.Context, userID int) (_ Credential, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "tokens.store.resolve")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	stored, cred, err := s.load(ctx, userID)
	if err != nil {
		return Credential{}, err
	}

	if !cred.Expired(s.NowFunc()) {
		return cred, nil
	}

	// concurrent resolves for one user share a single refresh, which must outlive the caller that started it
	res, err, _ := s.group.Do(strconv.Itoa(userID), func() (any, error) {
		refreshCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), refreshTimeout)
		defer cancel()
		return s.refresh(refreshCtx, userID, stored, cred)
	})
	if err != nil {
		return Credential{}, err
	}

	return res.(Credential), nil
}

func (s *Store) refresh(ctx context.Context, userID int, stored *users.EncryptedTokens, cred Credential) (Credential, error) {
	token, err := s.refresher.Refresh(ctx, cred.RefreshKey)
	if err != nil {
		if errors.Is(err, strava.ErrAuthExpired) {
			s.countRefresh("rejected")
			return Credential{}, err
		}
		s.countRefresh("error")
		return Credential{}, fmt.Errorf("refresh tokens: %w", err)
	}

	encrypted, err := s.encrypt(token)
	if err != nil {
		return Credential{}, err
	}

	swapped, err := s.repo.SwapTokens(ctx, userID, stored.KeyExpires, encrypted)
	if err != nil {
		return Credential{}, err
	}

	if !swapped {
		// someone else refreshed first, use what they stored
		s.countRefresh("lost-race")
		log.Debugf("tokens: lost refresh race for user %d, reloading", userID)
		_, winner, err := s.load(ctx, userID)
		return winner, err
	}

	s.countRefresh("ok")
	return credentialFromToken(token), nil
}

// Save stores a freshly exchanged token for the user, replacing whatever was there.
func (s *Store) Save(ctx context.Context, userID int, token strava.Token) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "tokens.store.save")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	encrypted, err := s.encrypt(token)
	if err != nil {
		return err
	}
	return s.repo.SetTokens(ctx, userID, encrypted)
}

func (s *Store) Clear(ctx context.Context, userID int) error {
	return s.repo.ClearTokens(ctx, userID)
}

// Linked reports whether the user has a stored credential, regardless of its expiry.
func (s *Store) Linked(ctx context.Context, userID int) (bool, error) {
	stored, err := s.repo.GetTokens(ctx, userID)
	if err != nil {
		return false, err
	}
	return stored != nil, nil
}

func (s *Store) load(ctx context.Context, userID int) (*users.EncryptedTokens, Credential, error) {
	stored, err := s.repo.GetTokens(ctx, userID)
	if err != nil {
		return nil, Credential{}, fmt.Errorf("load tokens: %w", err)
	}
	if stored == nil {
		return nil, Credential{}, fmt.Errorf("user %d has no linked account: %w", userID, strava.ErrAuthExpired)
	}

	cred, err := s.decrypt(*stored)
	if err != nil {
		return nil, Credential{}, err
	}
	return stored, cred, nil
}

func (s *Store) encrypt(token strava.Token) (users.EncryptedTokens, error) {
	var (
		enc users.EncryptedTokens
		err error
	)
	if enc.AccessKey, err = s.secrets.Encrypt(token.AccessKey); err != nil {
		return users.EncryptedTokens{}, fmt.Errorf("encrypt access key: %w", err)
	}
	if enc.RefreshKey, err = s.secrets.Encrypt(token.RefreshKey); err != nil {
		return users.EncryptedTokens{}, fmt.Errorf("encrypt refresh key: %w", err)
	}
	if enc.KeyExpires, err = s.secrets.Encrypt(strconv.FormatInt(token.ExpiresAt, 10)); err != nil {
		return users.EncryptedTokens{}, fmt.Errorf("encrypt expiry: %w", err)
	}
	return enc, nil
}

func (s *Store) decrypt(stored users.EncryptedTokens) (Credential, error) {
	accessKey, err := s.secrets.Decrypt(stored.AccessKey)
	if err != nil {
		return Credential{}, fmt.Errorf("decrypt access key: %w", err)
	}
	refreshKey, err := s.secrets.Decrypt(stored.RefreshKey)
	if err != nil {
		return Credential{}, fmt.Errorf("decrypt refresh key: %w", err)
	}
	expiresStr, err := s.secrets.Decrypt(stored.KeyExpires)
	if err != nil {
		return Credential{}, fmt.Errorf("decrypt expiry: %w", err)
	}
	expiresAt, err := strconv.ParseInt(expiresStr, 10, 64)
	if err != nil {
		return Credential{}, fmt.Errorf("parse expiry: %w", err)
	}

	return Credential{
		AccessKey:  accessKey,
		RefreshKey: refreshKey,
		ExpiresAt:  time.Unix(expiresAt, 0),
	}, nil
}

func (s *Store) countRefresh(result string) {
	if s.metricsManager != nil {
		s.metricsManager.CounterTokenRefreshes.WithLabelValues(result).Inc()
	}
}

func credentialFromToken(token strava.Token) Credential {
	return Credential{
		AccessKey:  token.AccessKey,
		RefreshKey: token.RefreshKey,
		ExpiresAt:  time.Unix(token.ExpiresAt, 0),
	}
}
