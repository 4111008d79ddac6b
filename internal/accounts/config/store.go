package config

import (
	"errors"
	"fmt"
)

// Поддерживаемые хранилища учетных записей.
const (
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
	DriverSQLite   = "sqlite"
)

// ErrUnknownDriver возвращается для неподдерживаемого хранилища.
var ErrUnknownDriver = errors.New("unknown store driver")

// StoreConfig выбирает хранилище учетных записей.
type StoreConfig struct {
	Driver string `yaml:"driver" env:"ACCOUNTS_STORE_DRIVER" env-default:"postgres"`
}

// Validate проверяет, что драйвер поддерживается.
func (s *StoreConfig) Validate() error {
	switch s.Driver {
	case DriverPostgres, DriverMongo, DriverSQLite:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownDriver, s.Driver)
	}
}
