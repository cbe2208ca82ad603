package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/2beens/fitdash/internal/telemetry/tracing"
	"github.com/2beens/fitdash/pkg"
)

const (
	usernameConstraint = "app_user_username_key"
	emailConstraint    = "app_user_email_key"
)

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

func (r *Repo) Create(ctx context.Context, username, email, passwordHash string) (id int, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.users.create")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	err = r.db.QueryRow(ctx, `
		INSERT INTO app_user (username, email, password_hash)
		VALUES ($1, $2, $3)
		RETURNING id`,
		username, email, passwordHash,
	).Scan(&id)
	if err != nil {
		if pkg.IsUniqueViolationError(err) {
			switch pkg.ViolatedConstraint(err) {
			case usernameConstraint:
				return 0, ErrUsernameTaken
			case emailConstraint:
				return 0, ErrEmailTaken
			}
		}
		return 0, fmt.Errorf("insert user: %w", err)
	}

	return id, nil
}

func (r *Repo) GetByID(ctx context.Context, id int) (_ *User, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.users.getByID")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	return r.getOne(ctx, `WHERE id = $1`, id)
}

func (r *Repo) GetByUsername(ctx context.Context, username string) (_ *User, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.users.getByUsername")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	return r.getOne(ctx, `WHERE username = $1`, username)
}

func (r *Repo) getOne(ctx context.Context, where string, arg any) (*User, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, username, email, password_hash, access_key IS NOT NULL, created_at
		FROM app_user `+where, arg)

	var u User
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.StravaLinked, &u.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &u, nil
}

func (r *Repo) UsernameExists(ctx context.Context, username string) (exists bool, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.users.usernameExists")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	err = r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM app_user WHERE username = $1)`, username).Scan(&exists)
	return exists, err
}

func (r *Repo) EmailExists(ctx context.Context, email string) (exists bool, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.users.emailExists")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	err = r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM app_user WHERE email = $1)`, email).Scan(&exists)
	return exists, err
}

// GetTokens returns nil tokens when the user has not linked strava.
func (r *Repo) GetTokens(ctx context.Context, userID int) (_ *EncryptedTokens, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.users.getTokens")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	var accessKey, refreshKey, keyExpires *string
	err = r.db.QueryRow(ctx, `
		SELECT access_key, refresh_key, key_expires FROM app_user WHERE id = $1`,
		userID,
	).Scan(&accessKey, &refreshKey, &keyExpires)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("scan tokens: %w", err)
	}

	if accessKey == nil || refreshKey == nil || keyExpires == nil {
		return nil, nil
	}

	return &EncryptedTokens{
		AccessKey:  *accessKey,
		RefreshKey: *refreshKey,
		KeyExpires: *keyExpires,
	}, nil
}

func (r *Repo) SetTokens(ctx context.Context, userID int, tokens EncryptedTokens) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.users.setTokens")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	tag, err := r.db.Exec(ctx, `
		UPDATE app_user SET access_key = $1, refresh_key = $2, key_expires = $3
		WHERE id = $4`,
		tokens.AccessKey, tokens.RefreshKey, tokens.KeyExpires, userID,
	)
	if err != nil {
		return fmt.Errorf("update tokens: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

// SwapTokens replaces the stored tokens only if the stored expiry still equals prevKeyExpires.
// It reports whether the swap happened.
func (r *Repo) SwapTokens(ctx context.Context, userID int, prevKeyExpires string, tokens EncryptedTokens) (swapped bool, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.users.swapTokens")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	tag, err := r.db.Exec(ctx, `
		UPDATE app_user SET access_key = $1, refresh_key = $2, key_expires = $3
		WHERE id = $4 AND key_expires = $5`,
		tokens.AccessKey, tokens.RefreshKey, tokens.KeyExpires, userID, prevKeyExpires,
	)
	if err != nil {
		return false, fmt.Errorf("swap tokens: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *Repo) ClearTokens(ctx context.Context, userID int) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.users.clearTokens")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	_, err = r.db.Exec(ctx, `
		UPDATE app_user SET access_key = NULL, refresh_key = NULL, key_expires = NULL
		WHERE id = $1`,
		userID,
	)
	if err != nil {
		return fmt.Errorf("clear tokens: %w", err)
	}
	return nil
}
