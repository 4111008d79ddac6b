// Package mongo реализует хранилище учетных записей на MongoDB.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.uber.org/zap"

	"useraccounts/internal/accounts/domain/entities"
	"useraccounts/internal/accounts/ports/repositories"
	"useraccounts/pkg/logger"
)

// CollectionName имя коллекции учетных записей.
const CollectionName = "users"

// CollectionInterface подмножество mongo.Collection, используемое репозиторием.
type CollectionInterface interface {
	FindOne(ctx context.Context, filter any, opts ...options.Lister[options.FindOneOptions]) *mongo.SingleResult
	InsertOne(ctx context.Context, document any, opts ...options.Lister[options.InsertOneOptions]) (*mongo.InsertOneResult, error)
	UpdateOne(ctx context.Context, filter, update any, opts ...options.Lister[options.UpdateOneOptions]) (*mongo.UpdateResult, error)
	CountDocuments(ctx context.Context, filter any, opts ...options.Lister[options.CountOptions]) (int64, error)
}

type accountDocument struct {
	ID           bson.ObjectID `bson:"_id,omitempty"`
	Username     string        `bson:"username"`
	Email        string        `bson:"email"`
	PasswordHash string        `bson:"password"`
	CreatedAt    time.Time     `bson:"createdAt"`
}

func (d *accountDocument) toEntity() *entities.Account {
	return &entities.Account{
		ID:           d.ID.Hex(),
		Username:     d.Username,
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		CreatedAt:    d.CreatedAt.UTC(),
	}
}

// AccountRepository реализует интерфейс repositories.AccountRepository для работы с MongoDB.
type AccountRepository struct {
	coll CollectionInterface
}

// NewAccountRepository создает новый экземпляр репозитория учетных записей.
func NewAccountRepository(coll CollectionInterface) repositories.AccountRepository {
	return &AccountRepository{coll: coll}
}

// EnsureIndexes создает уникальные индексы username и email.
func EnsureIndexes(ctx context.Context, coll *mongo.Collection) error {
	_, err := coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
	})
	if err != nil {
		return fmt.Errorf("error creating account indexes: %w", err)
	}
	return nil
}

// Create создает новую учетную запись.
func (r *AccountRepository) Create(ctx context.Context, account *entities.Account) (*entities.Account, error) {
	log := logger.Log(ctx).With(zap.String("repository", "account"), zap.String("method", "Create"))

	doc := accountDocument{
		Username:     account.Username,
		Email:        account.Email,
		PasswordHash: account.PasswordHash,
		CreatedAt:    account.CreatedAt.UTC(),
	}

	result, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			log.Debug(ctx, "duplicate key on insert", zap.Error(err))
			return nil, fmt.Errorf("error creating account: %w", entities.ErrDuplicateAccount)
		}
		log.Error(ctx, "error creating account", zap.Error(err))
		return nil, fmt.Errorf("error creating account: %w", err)
	}

	if id, ok := result.InsertedID.(bson.ObjectID); ok {
		doc.ID = id
	}

	return doc.toEntity(), nil
}

// FindByUsername находит учетную запись по username.
func (r *AccountRepository) FindByUsername(ctx context.Context, username string) (*entities.Account, error) {
	return r.findOne(ctx, "FindByUsername", bson.D{{Key: "username", Value: username}})
}

// FindByEmail находит учетную запись по email.
func (r *AccountRepository) FindByEmail(ctx context.Context, email string) (*entities.Account, error) {
	return r.findOne(ctx, "FindByEmail", bson.D{{Key: "email", Value: email}})
}

// FindByUsernameOrEmail находит любую запись, совпадающую по username или email.
func (r *AccountRepository) FindByUsernameOrEmail(ctx context.Context, username, email string) (*entities.Account, error) {
	return r.findOne(ctx, "FindByUsernameOrEmail", bson.D{{Key: "$or", Value: bson.A{
		bson.D{{Key: "username", Value: username}},
		bson.D{{Key: "email", Value: email}},
	}}})
}

// UpdatePasswordHash заменяет хэш пароля, если он не менялся с момента чтения.
func (r *AccountRepository) UpdatePasswordHash(ctx context.Context, username, oldHash, newHash string) error {
	log := logger.Log(ctx).With(zap.String("repository", "account"), zap.String("method", "UpdatePasswordHash"))

	filter := bson.D{{Key: "username", Value: username}, {Key: "password", Value: oldHash}}
	update := bson.D{{Key: "$set", Value: bson.D{{Key: "password", Value: newHash}}}}

	result, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		log.Error(ctx, "error updating password hash", zap.Error(err))
		return fmt.Errorf("error updating password hash: %w", err)
	}

	if result.MatchedCount > 0 {
		return nil
	}

	count, err := r.coll.CountDocuments(ctx, bson.D{{Key: "username", Value: username}})
	if err != nil {
		log.Error(ctx, "error checking account existence", zap.Error(err))
		return fmt.Errorf("error checking account existence: %w", err)
	}

	if count == 0 {
		log.Debug(ctx, "account not found for update", zap.String("username", username))
		return entities.ErrAccountNotFound
	}

	log.Debug(ctx, "password hash changed concurrently", zap.String("username", username))
	return entities.ErrConcurrentUpdate
}

func (r *AccountRepository) findOne(ctx context.Context, method string, filter bson.D) (*entities.Account, error) {
	log := logger.Log(ctx).With(zap.String("repository", "account"), zap.String("method", method))

	var doc accountDocument
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			log.Debug(ctx, "account not found", zap.Any("filter", filter))
			return nil, entities.ErrAccountNotFound
		}
		log.Error(ctx, "error finding account", zap.Error(err))
		return nil, fmt.Errorf("error querying account: %w", err)
	}

	return doc.toEntity(), nil
}
