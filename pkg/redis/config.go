package redis

import "time"

type Config struct {
	// ConnectionURL is the URL of the database, e.g. "redis://:password@localhost:6379/0".
	// Empty disables Redis.
	ConnectionURL string `env:"REDIS_URL"`
	// RetryAttempts is the number of attempts to connect to the database.
	RetryAttempts int `env:"REDIS_RETRY_ATTEMPTS" envDefault:"3"`
	// RetryInterval is the pause between connection attempts.
	RetryInterval time.Duration `env:"REDIS_RETRY_INTERVAL" envDefault:"5s"`
	// ConnectTimeout bounds the whole connection procedure.
	ConnectTimeout time.Duration `env:"REDIS_CONNECT_TIMEOUT" envDefault:"30s"`
	// DeadLetterKey is the hash that mirrors dead-letter entries.
	DeadLetterKey string `env:"REDIS_DEAD_LETTER_KEY" envDefault:"taskqueue:dead_letter"`
}

// Enabled reports whether a connection URL was configured.
func (c Config) Enabled() bool {
	return c.ConnectionURL != ""
}
