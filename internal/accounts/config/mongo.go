package config

import "time"

// MongoConfig содержит настройки подключения к MongoDB.
type MongoConfig struct {
	URI            string        `yaml:"uri" env:"ACCOUNTS_MONGO_URI" env-default:"mongodb://localhost:27017"`
	Database       string        `yaml:"database" env:"ACCOUNTS_MONGO_DB" env-default:"accounts"`
	ConnectTimeout time.Duration `yaml:"connect_timeout" env:"ACCOUNTS_MONGO_CONNECT_TIMEOUT" env-default:"10s"`
}
