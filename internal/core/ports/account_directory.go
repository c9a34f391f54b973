package ports

import (
	"context"

	"github.com/99minutos/account-service/internal/core/domain"
)

// AccountDirectory resolves an email to its current credential state.
// Lookup returns domain.ErrAccountNotFound when the email is unknown.
type AccountDirectory interface {
	Lookup(ctx context.Context, email string) (*domain.Identity, error)
	// Evict drops any cached state for the given emails.
	Evict(ctx context.Context, emails ...string) error
}
