package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/99minutos/account-service/internal/api/metrics"
	"github.com/99minutos/account-service/internal/core/domain"
	"github.com/99minutos/account-service/internal/core/ports"
)

// emailPattern is the business-rule email check. It is looser than the
// request validator's email tag and is applied regardless of it.
var emailPattern = regexp.MustCompile(`^[A-Za-z0-9+_.-]+@(.+)$`)

func isValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

type accountService struct {
	repo      ports.AccountRepository
	directory ports.AccountDirectory
	tokens    ports.TokenService
	policy    *PasswordPolicy
	hasher    ports.PasswordHasher
	log       zerolog.Logger
	now       func() time.Time
}

// NewAccountService returns an AccountService implementation.
func NewAccountService(
	repo ports.AccountRepository,
	directory ports.AccountDirectory,
	tokens ports.TokenService,
	policy *PasswordPolicy,
	hasher ports.PasswordHasher,
	log zerolog.Logger,
) ports.AccountService {
	return &accountService{
		repo:      repo,
		directory: directory,
		tokens:    tokens,
		policy:    policy,
		hasher:    hasher,
		log:       log,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Login verifies credentials, stamps last_login and issues a fresh token.
// An unknown email and a wrong password fail with the same error.
func (s *accountService) Login(ctx context.Context, email, password string) (*ports.LoginResult, error) {
	var result *ports.LoginResult
	err := s.repo.InTx(ctx, func(ctx context.Context, repo ports.AccountRepository) error {
		account, err := repo.FindByEmail(ctx, email)
		if err != nil {
			if errors.Is(err, domain.ErrAccountNotFound) {
				return domain.ErrInvalidCredentials
			}
			return fmt.Errorf("login: %w", err)
		}
		if !s.hasher.Matches(account.PasswordHash, password) {
			return domain.ErrInvalidCredentials
		}

		account.LastLogin = s.now()
		if err := s.issueToken(account); err != nil {
			return err
		}
		if err := repo.Update(ctx, account); err != nil {
			return fmt.Errorf("login: %w", err)
		}

		result = toLoginResult(account)
		return nil
	})
	s.observe("login", err)
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("account_id", result.ID).Msg("account logged in")
	return result, nil
}

// Register creates an account. Uniqueness is checked before the email format.
func (s *accountService) Register(ctx context.Context, in ports.RegisterInput) (*ports.AccountView, error) {
	var view *ports.AccountView
	err := s.repo.InTx(ctx, func(ctx context.Context, repo ports.AccountRepository) error {
		if err := ensureEmailAvailable(ctx, repo, in.Email, ""); err != nil {
			return err
		}
		if !isValidEmail(in.Email) {
			return domain.ErrInvalidEmailFormat
		}
		if !s.policy.ValidateString(in.Password) {
			return domain.ErrInvalidPasswordFormat
		}

		hash, err := s.hasher.Hash(in.Password)
		if err != nil {
			return err
		}

		now := s.now()
		account := &domain.Account{
			Name:         in.Name,
			Email:        in.Email,
			PasswordHash: hash,
			Created:      now,
			Modified:     now,
			LastLogin:    now,
			Active:       true,
			Phones:       make([]domain.Phone, 0, len(in.Phones)),
		}
		for _, p := range in.Phones {
			account.AddPhone(p.Number, p.CityCode, p.CountryCode)
		}

		if err := repo.Create(ctx, account); err != nil {
			return fmt.Errorf("register: %w", err)
		}
		if err := s.issueToken(account); err != nil {
			return err
		}
		if err := repo.Update(ctx, account); err != nil {
			return fmt.Errorf("register: %w", err)
		}

		view = toAccountView(account)
		return nil
	})
	s.observe("register", err)
	if err != nil {
		return nil, err
	}

	s.evict(ctx, view.Email)
	s.log.Info().Str("account_id", view.ID).Int("phones", len(view.Phones)).Msg("account registered")
	return view, nil
}

// ListAll returns every account. An empty store is reported as
// domain.ErrNoAccountsFound rather than an empty list.
func (s *accountService) ListAll(ctx context.Context) ([]ports.AccountView, error) {
	var views []ports.AccountView
	err := s.repo.InTx(ctx, func(ctx context.Context, repo ports.AccountRepository) error {
		accounts, err := repo.List(ctx)
		if err != nil {
			return fmt.Errorf("list accounts: %w", err)
		}
		if len(accounts) == 0 {
			return domain.ErrNoAccountsFound
		}
		views = make([]ports.AccountView, 0, len(accounts))
		for _, a := range accounts {
			views = append(views, *toAccountView(a))
		}
		return nil
	})
	s.observe("list", err)
	if err != nil {
		return nil, err
	}
	return views, nil
}

func (s *accountService) GetByID(ctx context.Context, id string) (*ports.AccountView, error) {
	var view *ports.AccountView
	err := s.repo.InTx(ctx, func(ctx context.Context, repo ports.AccountRepository) error {
		account, err := findAccount(ctx, repo, id)
		if err != nil {
			return err
		}
		view = toAccountView(account)
		return nil
	})
	s.observe("get", err)
	if err != nil {
		return nil, err
	}
	return view, nil
}

// Delete removes the account and its phones and returns the account as it
// was before deletion.
func (s *accountService) Delete(ctx context.Context, id string) (*ports.AccountView, error) {
	var view *ports.AccountView
	err := s.repo.InTx(ctx, func(ctx context.Context, repo ports.AccountRepository) error {
		account, err := findAccount(ctx, repo, id)
		if err != nil {
			return err
		}
		view = toAccountView(account)
		if err := repo.Delete(ctx, account.ID); err != nil {
			return fmt.Errorf("delete account: %w", err)
		}
		return nil
	})
	s.observe("delete", err)
	if err != nil {
		return nil, err
	}

	s.evict(ctx, view.Email)
	s.log.Info().Str("account_id", view.ID).Msg("account deleted")
	return view, nil
}

// Patch applies only the supplied fields, in order: email, name, password,
// phones. Any failure leaves the stored account untouched.
func (s *accountService) Patch(ctx context.Context, id string, in ports.PatchInput) (*ports.AccountView, error) {
	var (
		view          *ports.AccountView
		previousEmail string
	)
	err := s.repo.InTx(ctx, func(ctx context.Context, repo ports.AccountRepository) error {
		account, err := findAccount(ctx, repo, id)
		if err != nil {
			return err
		}
		previousEmail = account.Email

		if in.Email != nil {
			if !isValidEmail(*in.Email) {
				return domain.ErrInvalidEmailFormat
			}
			if err := ensureEmailAvailable(ctx, repo, *in.Email, account.ID); err != nil {
				return err
			}
			account.Email = *in.Email
		}
		if in.Name != nil {
			account.Name = *in.Name
		}
		if in.Password != nil {
			if !s.policy.Validate(in.Password) {
				return domain.ErrInvalidPasswordFormat
			}
			hash, err := s.hasher.Hash(*in.Password)
			if err != nil {
				return err
			}
			account.PasswordHash = hash
		}
		if err := applyPhonePatches(account, in.Phones); err != nil {
			return err
		}

		account.Modified = s.now()
		if err := repo.Update(ctx, account); err != nil {
			return fmt.Errorf("patch account: %w", err)
		}
		if err := s.issueToken(account); err != nil {
			return err
		}
		if err := repo.Update(ctx, account); err != nil {
			return fmt.Errorf("patch account: %w", err)
		}

		view = toAccountView(account)
		return nil
	})
	s.observe("patch", err)
	if err != nil {
		return nil, err
	}

	s.evict(ctx, previousEmail, view.Email)
	s.log.Info().Str("account_id", view.ID).Msg("account patched")
	return view, nil
}

func applyPhonePatches(account *domain.Account, patches []ports.PhonePatch) error {
	for _, p := range patches {
		if p.ID == nil {
			account.AddPhone(deref(p.Number), deref(p.CityCode), deref(p.CountryCode))
			continue
		}
		phone, ok := account.PhoneByID(*p.ID)
		if !ok {
			return fmt.Errorf("%w: %s", domain.ErrPhoneNotFound, *p.ID)
		}
		if p.Number != nil {
			phone.Number = *p.Number
		}
		if p.CityCode != nil {
			phone.CityCode = *p.CityCode
		}
		if p.CountryCode != nil {
			phone.CountryCode = *p.CountryCode
		}
	}
	return nil
}

// findAccount treats ids that are not UUIDs as unknown accounts.
func findAccount(ctx context.Context, repo ports.AccountRepository, id string) (*domain.Account, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrAccountNotFound, id)
	}
	account, err := repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return nil, fmt.Errorf("%w: %s", domain.ErrAccountNotFound, id)
		}
		return nil, fmt.Errorf("find account: %w", err)
	}
	return account, nil
}

// ensureEmailAvailable fails when email belongs to an account other than ownerID.
func ensureEmailAvailable(ctx context.Context, repo ports.AccountRepository, email, ownerID string) error {
	existing, err := repo.FindByEmail(ctx, email)
	switch {
	case errors.Is(err, domain.ErrAccountNotFound):
		return nil
	case err != nil:
		return fmt.Errorf("check email: %w", err)
	case existing.ID != ownerID:
		return domain.ErrEmailAlreadyRegistered
	}
	return nil
}

func (s *accountService) issueToken(account *domain.Account) error {
	token, err := s.tokens.Issue(account.Email)
	if err != nil {
		return fmt.Errorf("issue token: %w", err)
	}
	account.Token = token
	return nil
}

// evict runs after commit; a failure only leaves a stale cache entry until
// its TTL, so it is logged and not returned.
func (s *accountService) evict(ctx context.Context, emails ...string) {
	if err := s.directory.Evict(ctx, emails...); err != nil {
		s.log.Warn().Err(err).Strs("emails", emails).Msg("directory eviction failed")
	}
}

func (s *accountService) observe(operation string, err error) {
	metrics.AccountOperationsTotal.WithLabelValues(operation, resultLabel(err)).Inc()
}

func resultLabel(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, domain.ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, domain.ErrEmailAlreadyRegistered):
		return "email_already_registered"
	case errors.Is(err, domain.ErrInvalidEmailFormat):
		return "invalid_email_format"
	case errors.Is(err, domain.ErrInvalidPasswordFormat):
		return "invalid_password_format"
	case errors.Is(err, domain.ErrAccountNotFound):
		return "account_not_found"
	case errors.Is(err, domain.ErrPhoneNotFound):
		return "phone_not_found"
	case errors.Is(err, domain.ErrNoAccountsFound):
		return "no_accounts_found"
	default:
		return "error"
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func toLoginResult(a *domain.Account) *ports.LoginResult {
	return &ports.LoginResult{
		ID:        a.ID,
		Created:   a.Created,
		Modified:  a.Modified,
		LastLogin: a.LastLogin,
		Token:     a.Token,
		Active:    a.Active,
	}
}

func toAccountView(a *domain.Account) *ports.AccountView {
	phones := make([]ports.PhoneView, len(a.Phones))
	for i, p := range a.Phones {
		phones[i] = ports.PhoneView{
			ID:          p.ID,
			Number:      p.Number,
			CityCode:    p.CityCode,
			CountryCode: p.CountryCode,
		}
	}
	return &ports.AccountView{
		ID:        a.ID,
		Name:      a.Name,
		Email:     a.Email,
		Created:   a.Created,
		Modified:  a.Modified,
		LastLogin: a.LastLogin,
		Token:     a.Token,
		Active:    a.Active,
		Phones:    phones,
	}
}
