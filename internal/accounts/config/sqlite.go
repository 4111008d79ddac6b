package config

// SQLiteConfig содержит путь к встроенной базе.
type SQLiteConfig struct {
	Path string `yaml:"path" env:"ACCOUNTS_SQLITE_PATH" env-default:"./data/accounts.db"`
}
