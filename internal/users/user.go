package users

import (
	"errors"
	"time"
)

var (
	ErrUserNotFound  = errors.New("user not found")
	ErrWrongPassword = errors.New("wrong password")
	ErrUsernameTaken = errors.New("username taken")
	ErrEmailTaken    = errors.New("email taken")
)

type User struct {
	ID           int       `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	StravaLinked bool      `json:"stravaLinked"`
	CreatedAt    time.Time `json:"createdAt"`
}

type Credentials struct {
	Email    string
	Username string
	Password string
}

// EncryptedTokens is the stored, encrypted strava credential triple of a user.
// A user either has all three values or none.
type EncryptedTokens struct {
	AccessKey  string
	RefreshKey string
	KeyExpires string
}
