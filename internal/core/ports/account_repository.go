package ports

import (
	"context"

	"github.com/99minutos/account-service/internal/core/domain"
)

// TxFn runs inside a repository transaction. The repository passed in is
// bound to that transaction and must be used for every call made by fn.
type TxFn func(ctx context.Context, repo AccountRepository) error

// AccountRepository defines persistence operations for accounts and their phones.
type AccountRepository interface {
	// InTx runs fn in a single transaction: it commits when fn returns nil and
	// rolls back otherwise. Calling InTx on a repository that is already bound
	// to a transaction runs fn in that same transaction.
	InTx(ctx context.Context, fn TxFn) error

	FindByID(ctx context.Context, id string) (*domain.Account, error)
	FindByEmail(ctx context.Context, email string) (*domain.Account, error)
	List(ctx context.Context) ([]*domain.Account, error)

	// Create inserts the account and its phones, assigning ids to both.
	Create(ctx context.Context, account *domain.Account) error
	// Update persists the account fields and upserts its phones, assigning
	// ids to phones added since the last save.
	Update(ctx context.Context, account *domain.Account) error
	// Delete removes the account's phones and then the account itself.
	Delete(ctx context.Context, id string) error
}
