package mongo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/99minutos/account-service/internal/core/domain"
	"github.com/99minutos/account-service/internal/core/ports"
)

const (
	collectionAccounts = "accounts"
	collectionPhones   = "phones"
)

// phoneDoc stores a phone next to its owner's id and its position in the
// owner's list so phones come back in insertion order.
type phoneDoc struct {
	domain.Phone `bson:",inline"`
	Position     int `bson:"position"`
}

// AccountRepository persists accounts in one collection and their phones in
// another. Multi-document writes rely on transactions, so the server must be
// a replica set.
type AccountRepository struct {
	client   *mongo.Client
	accounts *mongo.Collection
	phones   *mongo.Collection
	newID    func() string
}

var _ ports.AccountRepository = (*AccountRepository)(nil)

func NewAccountRepository(db *mongo.Database) *AccountRepository {
	return &AccountRepository{
		client:   db.Client(),
		accounts: db.Collection(collectionAccounts),
		phones:   db.Collection(collectionPhones),
		newID:    uuid.NewString,
	}
}

// EnsureIndexes creates the unique email index and the phone owner index.
func (r *AccountRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.accounts.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("uniq_email"),
	}); err != nil {
		return fmt.Errorf("create email index: %w", err)
	}
	if _, err := r.phones.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "account_id", Value: 1}, {Key: "position", Value: 1}},
		Options: options.Index().SetName("account_position"),
	}); err != nil {
		return fmt.Errorf("create phone index: %w", err)
	}
	return nil
}

// InTx runs fn inside a multi-document transaction. A call made with a
// context that already carries a session joins that transaction.
func (r *AccountRepository) InTx(ctx context.Context, fn ports.TxFn) error {
	if mongo.SessionFromContext(ctx) != nil {
		return fn(ctx, r)
	}

	sess, err := r.client.StartSession()
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc, r)
	})
	return err
}

func (r *AccountRepository) FindByID(ctx context.Context, id string) (*domain.Account, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *AccountRepository) FindByEmail(ctx context.Context, email string) (*domain.Account, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *AccountRepository) findOne(ctx context.Context, filter bson.M) (*domain.Account, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var a domain.Account
	if err := r.accounts.FindOne(ctx, filter).Decode(&a); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, fmt.Errorf("find account: %w", err)
	}

	byOwner, err := r.loadPhones(ctx, a.ID)
	if err != nil {
		return nil, err
	}
	a.Phones = byOwner[a.ID]
	if a.Phones == nil {
		a.Phones = []domain.Phone{}
	}
	return &a, nil
}

// List returns all accounts ordered by creation time.
func (r *AccountRepository) List(ctx context.Context) ([]*domain.Account, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cursor, err := r.accounts.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "created", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer cursor.Close(ctx)

	var accounts []*domain.Account
	if err := cursor.All(ctx, &accounts); err != nil {
		return nil, fmt.Errorf("decode accounts: %w", err)
	}
	if len(accounts) == 0 {
		return accounts, nil
	}

	ids := make([]string, len(accounts))
	for i, a := range accounts {
		ids[i] = a.ID
	}
	byOwner, err := r.loadPhones(ctx, ids...)
	if err != nil {
		return nil, err
	}
	for _, a := range accounts {
		a.Phones = byOwner[a.ID]
		if a.Phones == nil {
			a.Phones = []domain.Phone{}
		}
	}
	return accounts, nil
}

func (r *AccountRepository) loadPhones(ctx context.Context, accountIDs ...string) (map[string][]domain.Phone, error) {
	cursor, err := r.phones.Find(ctx,
		bson.M{"account_id": bson.M{"$in": accountIDs}},
		options.Find().SetSort(bson.D{{Key: "account_id", Value: 1}, {Key: "position", Value: 1}}),
	)
	if err != nil {
		return nil, fmt.Errorf("find phones: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []phoneDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode phones: %w", err)
	}
	return groupPhones(docs), nil
}

// Create inserts the account and its phones, assigning ids to both.
func (r *AccountRepository) Create(ctx context.Context, a *domain.Account) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	a.AssignIDs(r.newID)
	if _, err := r.accounts.InsertOne(ctx, a); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrEmailAlreadyRegistered
		}
		return fmt.Errorf("insert account: %w", err)
	}

	if len(a.Phones) == 0 {
		return nil
	}
	docs := make([]interface{}, len(a.Phones))
	for i, doc := range toPhoneDocs(a.Phones) {
		docs[i] = doc
	}
	if _, err := r.phones.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("insert phones: %w", err)
	}
	return nil
}

// Update replaces the account document and upserts every phone; phones
// without an id are inserted with a fresh one.
func (r *AccountRepository) Update(ctx context.Context, a *domain.Account) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	a.AssignIDs(r.newID)
	res, err := r.accounts.ReplaceOne(ctx, bson.M{"_id": a.ID}, a)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrEmailAlreadyRegistered
		}
		return fmt.Errorf("replace account: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrAccountNotFound
	}

	for _, doc := range toPhoneDocs(a.Phones) {
		if _, err := r.phones.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, options.Replace().SetUpsert(true)); err != nil {
			return fmt.Errorf("upsert phone %s: %w", doc.ID, err)
		}
	}
	return nil
}

// Delete removes the account's phones and then the account.
func (r *AccountRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.phones.DeleteMany(ctx, bson.M{"account_id": id}); err != nil {
		return fmt.Errorf("delete phones: %w", err)
	}
	res, err := r.accounts.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}

func toPhoneDocs(phones []domain.Phone) []phoneDoc {
	docs := make([]phoneDoc, len(phones))
	for i, p := range phones {
		docs[i] = phoneDoc{Phone: p, Position: i}
	}
	return docs
}

func groupPhones(docs []phoneDoc) map[string][]domain.Phone {
	byOwner := make(map[string][]domain.Phone)
	for _, d := range docs {
		byOwner[d.AccountID] = append(byOwner[d.AccountID], d.Phone)
	}
	return byOwner
}
