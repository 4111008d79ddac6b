package config

import (
	"fmt"
	"time"

	"useraccounts/pkg/db/redis"
)

// RedisConfig представляет конфигурацию кэша поиска на Redis.
type RedisConfig struct {
	Enabled         bool          `yaml:"enabled" env:"ACCOUNTS_REDIS_ENABLED" env-default:"false"`
	Host            string        `yaml:"host" env:"ACCOUNTS_REDIS_HOST" env-default:"localhost"`
	Port            int           `yaml:"port" env:"ACCOUNTS_REDIS_PORT" env-default:"6379"`
	Password        string        `yaml:"password" env:"ACCOUNTS_REDIS_PASSWORD" env-default:""`
	DB              int           `yaml:"db" env:"ACCOUNTS_REDIS_DB" env-default:"0"`
	ConnectTimeout  time.Duration `yaml:"connect_timeout" env:"ACCOUNTS_REDIS_CONNECT_TIMEOUT" env-default:"5s"`
	ReadTimeout     time.Duration `yaml:"read_timeout" env:"ACCOUNTS_REDIS_READ_TIMEOUT" env-default:"3s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env:"ACCOUNTS_REDIS_WRITE_TIMEOUT" env-default:"3s"`
	PoolSize        int           `yaml:"pool_size" env:"ACCOUNTS_REDIS_POOL_SIZE" env-default:"10"`
	MinIdle         int           `yaml:"min_idle" env:"ACCOUNTS_REDIS_MIN_IDLE" env-default:"2"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" env:"ACCOUNTS_REDIS_IDLE_TIMEOUT" env-default:"5m"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime" env:"ACCOUNTS_REDIS_MAX_CONN_LIFETIME" env-default:"1h"`
	TTL             time.Duration `yaml:"ttl" env:"ACCOUNTS_REDIS_TTL" env-default:"5m"`
}

// GetAddress возвращает адрес Redis.
func (c *RedisConfig) GetAddress() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// ClientConfig преобразует настройки в конфигурацию клиента.
func (c *RedisConfig) ClientConfig() *redis.Config {
	return &redis.Config{
		Address:         c.GetAddress(),
		Password:        c.Password,
		DB:              c.DB,
		PoolSize:        c.PoolSize,
		MinIdle:         c.MinIdle,
		ConnectTimeout:  c.ConnectTimeout,
		ReadTimeout:     c.ReadTimeout,
		WriteTimeout:    c.WriteTimeout,
		IdleTimeout:     c.IdleTimeout,
		MaxConnLifetime: c.MaxConnLifetime,
	}
}
