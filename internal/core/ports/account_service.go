package ports

import (
	"context"
	"time"
)

// PhoneInput holds a phone supplied at registration.
type PhoneInput struct {
	Number      string
	CityCode    string
	CountryCode string
}

// RegisterInput carries everything needed to create an account.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Phones   []PhoneInput
}

// PhonePatch updates the phone with ID when ID is set, otherwise it adds a
// new phone. Nil fields are left untouched.
type PhonePatch struct {
	ID          *string
	Number      *string
	CityCode    *string
	CountryCode *string
}

// PatchInput is a partial update; nil fields are left untouched.
type PatchInput struct {
	Name     *string
	Email    *string
	Password *string
	Phones   []PhonePatch
}

// PhoneView is the read model of a phone.
type PhoneView struct {
	ID          string
	Number      string
	CityCode    string
	CountryCode string
}

// AccountView is the full read model of an account.
type AccountView struct {
	ID        string
	Name      string
	Email     string
	Created   time.Time
	Modified  time.Time
	LastLogin time.Time
	Token     string
	Active    bool
	Phones    []PhoneView
}

// LoginResult is returned by a successful login.
type LoginResult struct {
	ID        string
	Created   time.Time
	Modified  time.Time
	LastLogin time.Time
	Token     string
	Active    bool
}

// AccountService defines the account use cases.
type AccountService interface {
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	Register(ctx context.Context, input RegisterInput) (*AccountView, error)
	ListAll(ctx context.Context) ([]AccountView, error)
	GetByID(ctx context.Context, id string) (*AccountView, error)
	Delete(ctx context.Context, id string) (*AccountView, error)
	Patch(ctx context.Context, id string, input PatchInput) (*AccountView, error)
}
