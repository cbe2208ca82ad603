package users

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/2beens/fitdash/internal/telemetry/metrics"
	"github.com/2beens/fitdash/internal/telemetry/tracing"
	"github.com/2beens/fitdash/pkg"
)

//go:generate mockgen -source=$GOFILE -destination=service_mocks_test.go -package=users_test

type usersRepo interface {
	Create(ctx context.Context, username, email, passwordHash string) (int, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	EmailExists(ctx context.Context, email string) (bool, error)
}

type Service struct {
	repo           usersRepo
	metricsManager *metrics.Manager
	// injectable, bcrypt at pkg.PasswordHashCost is slow in tests
	HashPasswordFunc  func(password string) (string, error)
	CheckPasswordFunc func(password, hash string) bool
}

func NewService(repo usersRepo, metricsManager *metrics.Manager) *Service {
	return &Service{
		repo:              repo,
		metricsManager:    metricsManager,
		HashPasswordFunc:  pkg.HashPassword,
		CheckPasswordFunc: pkg.CheckPasswordHash,
	}
}

// Register validates the credentials and creates the user. A non OK feedback means
// the input was rejected and no user was created.
func (s *Service) Register(ctx context.Context, creds Credentials) (_ Feedback, _ int, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.users.register")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	feedback := ValidateCredentials(creds)

	usernameExists, err := s.repo.UsernameExists(ctx, creds.Username)
	if err != nil {
		return FeedbackOK, 0, fmt.Errorf("check username: %w", err)
	}
	if usernameExists {
		feedback = FeedbackDuplicateUsername
	}

	emailExists, err := s.repo.EmailExists(ctx, creds.Email)
	if err != nil {
		return FeedbackOK, 0, fmt.Errorf("check email: %w", err)
	}
	if emailExists {
		feedback = FeedbackDuplicateEmail
	}

	if feedback != FeedbackOK {
		return feedback, 0, nil
	}

	passwordHash, err := s.HashPasswordFunc(creds.Password)
	if err != nil {
		return FeedbackOK, 0, fmt.Errorf("hash password: %w", err)
	}

	id, err := s.repo.Create(ctx, creds.Username, creds.Email, passwordHash)
	switch {
	case errors.Is(err, ErrUsernameTaken):
		// lost a race with a concurrent registration
		return FeedbackDuplicateUsername, 0, nil
	case errors.Is(err, ErrEmailTaken):
		return FeedbackDuplicateEmail, 0, nil
	case err != nil:
		return FeedbackOK, 0, fmt.Errorf("create user: %w", err)
	}

	if s.metricsManager != nil {
		s.metricsManager.CounterRegistrations.Inc()
	}
	log.Debugf("new user registered [%d]: %s", id, creds.Username)

	return FeedbackOK, id, nil
}

func (s *Service) Authenticate(ctx context.Context, username, password string) (_ *User, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.users.authenticate")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	user, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	if !s.CheckPasswordFunc(password, user.PasswordHash) {
		return nil, ErrWrongPassword
	}

	return user, nil
}
