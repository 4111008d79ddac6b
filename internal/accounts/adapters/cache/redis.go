// Package cache содержит кэш результатов поиска учетных записей на Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"useraccounts/internal/accounts/domain/entities"
	"useraccounts/internal/accounts/ports/cache"
	"useraccounts/pkg/logger"
)

// Константы для логирования.
const (
	LogMethodGet        = "get"
	LogMethodVersion    = "version"
	LogMethodSet        = "set"
	LogMethodInvalidate = "invalidate"

	LogSetSkipped = "account changed since version was taken, skipping cache write"

	ErrorFailedToGet        = "failed to get account from redis"
	ErrorFailedToGetVersion = "failed to get account version from redis"
	ErrorFailedToSet        = "failed to set account in redis"
	ErrorFailedToInvalidate = "failed to delete account from redis"
	ErrorFailedToDecode     = "failed to decode cached account"
	ErrorFailedToEncode     = "failed to encode account"
)

const (
	keyByUsername     = "account:username:%s"
	keyByEmail        = "account:email:%s"
	versionByUsername = "account:version:username:%s"
	versionByEmail    = "account:version:email:%s"
)

// DefaultTTL время жизни записи, если в конфигурации не задано иное.
const DefaultTTL = 5 * time.Minute

// setIfVersion пишет запись под обоими ключами, если версия KEYS[1] равна ARGV[1].
// Ключи версий не истекают: их число ограничено числом учетных записей.
var setIfVersion = redis.NewScript(`
local current = redis.call('GET', KEYS[1])
if not current then
	current = '0'
end
if current ~= ARGV[1] then
	return 0
end
redis.call('SET', KEYS[2], ARGV[2], 'PX', ARGV[3])
redis.call('SET', KEYS[3], ARGV[2], 'PX', ARGV[3])
return 1
`)

type cachedAccount struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"passwordHash"`
	CreatedAt    time.Time `json:"createdAt"`
}

// RedisAccountCache реализует интерфейс AccountCache с использованием Redis.
type RedisAccountCache struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewRedisAccountCache создает кэш поверх готового клиента Redis.
func NewRedisAccountCache(client redis.Cmdable, ttl time.Duration) cache.AccountCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisAccountCache{client: client, ttl: ttl}
}

// GetByUsername возвращает запись из кэша по username.
func (c *RedisAccountCache) GetByUsername(ctx context.Context, username string) (*entities.Account, error) {
	return c.get(ctx, fmt.Sprintf(keyByUsername, username))
}

// GetByEmail возвращает запись из кэша по email.
func (c *RedisAccountCache) GetByEmail(ctx context.Context, email string) (*entities.Account, error) {
	return c.get(ctx, fmt.Sprintf(keyByEmail, email))
}

// Version возвращает текущую версию записи, отсутствующая версия равна нулю.
func (c *RedisAccountCache) Version(ctx context.Context, username, email string) (cache.Version, error) {
	key := fmt.Sprintf(versionByUsername, username)
	if username == "" {
		key = fmt.Sprintf(versionByEmail, email)
	}

	value, err := c.client.Get(ctx, key).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return cache.Version{Key: key}, nil
		}
		logger.Log(ctx).Error(ctx, ErrorFailedToGetVersion,
			zap.String("method", LogMethodVersion), zap.String("key", key), zap.Error(err))
		return cache.Version{}, fmt.Errorf("%s: %w", ErrorFailedToGetVersion, err)
	}

	return cache.Version{Key: key, Value: value}, nil
}

// Set сохраняет запись под обоими ключами, если версия не изменилась.
func (c *RedisAccountCache) Set(ctx context.Context, account *entities.Account, version cache.Version) (bool, error) {
	log := logger.Log(ctx).With(zap.String("method", LogMethodSet), zap.String("username", account.Username))

	payload, err := json.Marshal(cachedAccount{
		ID:           account.ID,
		Username:     account.Username,
		Email:        account.Email,
		PasswordHash: account.PasswordHash,
		CreatedAt:    account.CreatedAt,
	})
	if err != nil {
		return false, fmt.Errorf("%s: %w", ErrorFailedToEncode, err)
	}

	stored, err := setIfVersion.Run(ctx, c.client,
		[]string{
			version.Key,
			fmt.Sprintf(keyByUsername, account.Username),
			fmt.Sprintf(keyByEmail, account.Email),
		},
		version.Value,
		payload,
		c.ttl.Milliseconds(),
	).Int()
	if err != nil {
		log.Error(ctx, ErrorFailedToSet, zap.Error(err))
		return false, fmt.Errorf("%s: %w", ErrorFailedToSet, err)
	}
	if stored == 0 {
		log.Debug(ctx, LogSetSkipped, zap.Int64("version", version.Value))
		return false, nil
	}

	return true, nil
}

// Invalidate увеличивает версию записи и удаляет ее под обоими ключами.
func (c *RedisAccountCache) Invalidate(ctx context.Context, account *entities.Account) error {
	log := logger.Log(ctx).With(zap.String("method", LogMethodInvalidate), zap.String("username", account.Username))

	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, fmt.Sprintf(versionByUsername, account.Username))
		pipe.Del(ctx, fmt.Sprintf(keyByUsername, account.Username))
		if account.Email != "" {
			pipe.Incr(ctx, fmt.Sprintf(versionByEmail, account.Email))
			pipe.Del(ctx, fmt.Sprintf(keyByEmail, account.Email))
		}
		return nil
	})
	if err != nil {
		log.Error(ctx, ErrorFailedToInvalidate, zap.Error(err))
		return fmt.Errorf("%s: %w", ErrorFailedToInvalidate, err)
	}

	return nil
}

func (c *RedisAccountCache) get(ctx context.Context, key string) (*entities.Account, error) {
	log := logger.Log(ctx).With(zap.String("method", LogMethodGet), zap.String("key", key))

	value, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		log.Error(ctx, ErrorFailedToGet, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", ErrorFailedToGet, err)
	}

	var cached cachedAccount
	if err := json.Unmarshal(value, &cached); err != nil {
		log.Warn(ctx, ErrorFailedToDecode, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", ErrorFailedToDecode, err)
	}

	return &entities.Account{
		ID:           cached.ID,
		Username:     cached.Username,
		Email:        cached.Email,
		PasswordHash: cached.PasswordHash,
		CreatedAt:    cached.CreatedAt,
	}, nil
}
