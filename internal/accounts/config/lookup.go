package config

// LookupConfig управляет ответом GET /user.
type LookupConfig struct {
	ExposePasswordHash bool `yaml:"expose_password_hash" env:"ACCOUNTS_LOOKUP_EXPOSE_PASSWORD_HASH" env-default:"false"`
}
