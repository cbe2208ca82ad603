package users

import (
	"regexp"
	"strings"
	"unicode"
)

// Feedback is the registration outcome shown to the user.
type Feedback int

const (
	FeedbackOK Feedback = iota
	FeedbackInvalidEmail
	FeedbackInvalidUsername
	FeedbackInvalidPassword
	FeedbackDuplicateUsername
	FeedbackDuplicateEmail
)

const (
	minUsernameLength = 6
	minPasswordLength = 6
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9_.+-]+@[a-zA-Z0-9-]+\.[a-zA-Z0-9-.]+$`)
var usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9]+$`)

func (f Feedback) Message() string {
	switch f {
	case FeedbackOK:
		return ""
	case FeedbackInvalidEmail:
		return "Please enter a valid email address."
	case FeedbackInvalidUsername:
		return "Username must be at least 6 characters long and contain only letters and digits, with at least one letter."
	case FeedbackInvalidPassword:
		return "Password must be at least 6 characters long, contain an uppercase letter, a lowercase letter and a digit, and no spaces."
	case FeedbackDuplicateUsername:
		return "That username is already taken."
	case FeedbackDuplicateEmail:
		return "An account with that email already exists."
	default:
		return "Registration failed."
	}
}

// ValidateCredentials checks the format of registration input, returning the first failing check.
func ValidateCredentials(creds Credentials) Feedback {
	if !emailRegex.MatchString(creds.Email) {
		return FeedbackInvalidEmail
	}

	if len(creds.Username) < minUsernameLength ||
		!usernameRegex.MatchString(creds.Username) ||
		!strings.ContainsFunc(creds.Username, isASCIILetter) {
		return FeedbackInvalidUsername
	}

	if !validPassword(creds.Password) {
		return FeedbackInvalidPassword
	}

	return FeedbackOK
}

func validPassword(password string) bool {
	if len(password) < minPasswordLength {
		return false
	}
	if strings.ContainsFunc(password, unicode.IsSpace) {
		return false
	}
	return strings.ContainsFunc(password, unicode.IsUpper) &&
		strings.ContainsFunc(password, unicode.IsLower) &&
		strings.ContainsFunc(password, unicode.IsDigit)
}

func isASCIILetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}
