package domain

import "errors"

var (
	ErrInvalidCredentials     = errors.New("invalid credentials")
	ErrEmailAlreadyRegistered = errors.New("email already registered")
	ErrInvalidEmailFormat     = errors.New("invalid email format")
	ErrInvalidPasswordFormat  = errors.New("password does not meet the complexity requirements")
	ErrAccountNotFound        = errors.New("account not found")
	ErrPhoneNotFound          = errors.New("phone not found")
	ErrNoAccountsFound        = errors.New("no accounts found")
)

// Token errors.
var (
	ErrMalformedToken  = errors.New("malformed token")
	ErrExpiredToken    = errors.New("expired token")
	ErrUnauthenticated = errors.New("authentication required")
)
