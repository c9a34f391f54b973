package service

import (
	"context"

	"github.com/99minutos/account-service/internal/core/domain"
	"github.com/99minutos/account-service/internal/core/ports"
)

// RepositoryDirectory resolves identities straight from the account store.
type RepositoryDirectory struct {
	repo ports.AccountRepository
}

var _ ports.AccountDirectory = (*RepositoryDirectory)(nil)

func NewRepositoryDirectory(repo ports.AccountRepository) *RepositoryDirectory {
	return &RepositoryDirectory{repo: repo}
}

func (d *RepositoryDirectory) Lookup(ctx context.Context, email string) (*domain.Identity, error) {
	account, err := d.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	return &domain.Identity{
		Email:             account.Email,
		CredentialVersion: account.PasswordHash,
		Active:            account.Active,
	}, nil
}

// Evict is a no-op: nothing is cached.
func (d *RepositoryDirectory) Evict(context.Context, ...string) error { return nil }
