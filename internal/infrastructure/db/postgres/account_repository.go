package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/samber/oops"

	"github.com/99minutos/account-service/internal/core/domain"
	"github.com/99minutos/account-service/internal/core/ports"
)

// querier abstracts query execution for both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// poolIface is the subset of *pgxpool.Pool the repository needs.
type poolIface interface {
	querier
	Begin(ctx context.Context) (pgx.Tx, error)
}

const accountColumns = `id, name, email, password_hash, created, modified, last_login, token, is_active`

// AccountRepository implements ports.AccountRepository on PostgreSQL.
// A repository bound to a transaction has a nil pool.
type AccountRepository struct {
	pool  poolIface
	db    querier
	newID func() string
}

var _ ports.AccountRepository = (*AccountRepository)(nil)

func NewAccountRepository(pool poolIface) *AccountRepository {
	return &AccountRepository{pool: pool, db: pool, newID: uuid.NewString}
}

// InTx begins a transaction and hands fn a repository bound to it. Calls on
// an already transactional repository reuse the open transaction.
func (r *AccountRepository) InTx(ctx context.Context, fn ports.TxFn) error {
	if r.pool == nil {
		return fn(ctx, r)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return oops.Code("TX_BEGIN_FAILED").Wrap(err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback(ctx)
		}
	}()

	if err := fn(ctx, &AccountRepository{db: tx, newID: r.newID}); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return oops.Code("TX_COMMIT_FAILED").Wrap(err)
	}
	committed = true
	return nil
}

func (r *AccountRepository) FindByID(ctx context.Context, id string) (*domain.Account, error) {
	return r.findOne(ctx, "find account by id",
		`SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id)
}

func (r *AccountRepository) FindByEmail(ctx context.Context, email string) (*domain.Account, error) {
	return r.findOne(ctx, "find account by email",
		`SELECT `+accountColumns+` FROM accounts WHERE email = $1`, email)
}

func (r *AccountRepository) findOne(ctx context.Context, operation, query string, arg string) (*domain.Account, error) {
	a, err := scanAccount(r.db.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, oops.Code("ACCOUNT_QUERY_FAILED").With("operation", operation).Wrap(err)
	}

	phones, err := r.queryPhones(ctx,
		`SELECT id, account_id, number, citycode, countrycode FROM phones WHERE account_id = $1 ORDER BY position`, a.ID)
	if err != nil {
		return nil, err
	}
	a.Phones = phones[a.ID]
	if a.Phones == nil {
		a.Phones = []domain.Phone{}
	}
	return a, nil
}

// List returns all accounts ordered by creation time.
func (r *AccountRepository) List(ctx context.Context) ([]*domain.Account, error) {
	rows, err := r.db.Query(ctx, `SELECT `+accountColumns+` FROM accounts ORDER BY created, id`)
	if err != nil {
		return nil, oops.Code("ACCOUNT_QUERY_FAILED").With("operation", "list accounts").Wrap(err)
	}
	defer rows.Close()

	var accounts []*domain.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, oops.Code("ACCOUNT_QUERY_FAILED").With("operation", "scan account row").Wrap(err)
		}
		accounts = append(accounts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("ACCOUNT_QUERY_FAILED").With("operation", "iterate accounts").Wrap(err)
	}
	if len(accounts) == 0 {
		return accounts, nil
	}

	phones, err := r.queryPhones(ctx,
		`SELECT id, account_id, number, citycode, countrycode FROM phones ORDER BY account_id, position`)
	if err != nil {
		return nil, err
	}
	for _, a := range accounts {
		a.Phones = phones[a.ID]
		if a.Phones == nil {
			a.Phones = []domain.Phone{}
		}
	}
	return accounts, nil
}

func (r *AccountRepository) queryPhones(ctx context.Context, query string, args ...any) (map[string][]domain.Phone, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, oops.Code("PHONE_QUERY_FAILED").With("operation", "list phones").Wrap(err)
	}
	defer rows.Close()

	byOwner := make(map[string][]domain.Phone)
	for rows.Next() {
		var p domain.Phone
		if err := rows.Scan(&p.ID, &p.AccountID, &p.Number, &p.CityCode, &p.CountryCode); err != nil {
			return nil, oops.Code("PHONE_QUERY_FAILED").With("operation", "scan phone row").Wrap(err)
		}
		byOwner[p.AccountID] = append(byOwner[p.AccountID], p)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("PHONE_QUERY_FAILED").With("operation", "iterate phones").Wrap(err)
	}
	return byOwner, nil
}

// Create inserts the account and its phones, assigning ids to both.
func (r *AccountRepository) Create(ctx context.Context, a *domain.Account) error {
	a.AssignIDs(r.newID)
	_, err := r.db.Exec(ctx,
		`INSERT INTO accounts (`+accountColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		a.ID, a.Name, a.Email, a.PasswordHash, a.Created, a.Modified, a.LastLogin, a.Token, a.Active)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrEmailAlreadyRegistered
		}
		return oops.Code("ACCOUNT_WRITE_FAILED").With("operation", "insert account").With("account_id", a.ID).Wrap(err)
	}
	return r.upsertPhones(ctx, a)
}

// Update overwrites the account row and upserts every phone; phones without
// an id are inserted with a fresh one.
func (r *AccountRepository) Update(ctx context.Context, a *domain.Account) error {
	a.AssignIDs(r.newID)
	tag, err := r.db.Exec(ctx,
		`UPDATE accounts SET name = $2, email = $3, password_hash = $4, modified = $5, last_login = $6, token = $7, is_active = $8 WHERE id = $1`,
		a.ID, a.Name, a.Email, a.PasswordHash, a.Modified, a.LastLogin, a.Token, a.Active)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrEmailAlreadyRegistered
		}
		return oops.Code("ACCOUNT_WRITE_FAILED").With("operation", "update account").With("account_id", a.ID).Wrap(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAccountNotFound
	}
	return r.upsertPhones(ctx, a)
}

func (r *AccountRepository) upsertPhones(ctx context.Context, a *domain.Account) error {
	for i, p := range a.Phones {
		_, err := r.db.Exec(ctx,
			`INSERT INTO phones (id, account_id, number, citycode, countrycode, position) VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (id) DO UPDATE SET number = EXCLUDED.number, citycode = EXCLUDED.citycode, countrycode = EXCLUDED.countrycode, position = EXCLUDED.position`,
			p.ID, a.ID, p.Number, p.CityCode, p.CountryCode, i)
		if err != nil {
			return oops.Code("PHONE_WRITE_FAILED").With("operation", "upsert phone").With("phone_id", p.ID).Wrap(err)
		}
	}
	return nil
}

// Delete removes the account's phones and then the account.
func (r *AccountRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM phones WHERE account_id = $1`, id); err != nil {
		return oops.Code("PHONE_WRITE_FAILED").With("operation", "delete phones").With("account_id", id).Wrap(err)
	}
	tag, err := r.db.Exec(ctx, `DELETE FROM accounts WHERE id = $1`, id)
	if err != nil {
		return oops.Code("ACCOUNT_WRITE_FAILED").With("operation", "delete account").With("account_id", id).Wrap(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}

func scanAccount(row pgx.Row) (*domain.Account, error) {
	var a domain.Account
	if err := row.Scan(&a.ID, &a.Name, &a.Email, &a.PasswordHash, &a.Created, &a.Modified, &a.LastLogin, &a.Token, &a.Active); err != nil {
		return nil, err
	}
	return &a, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}
