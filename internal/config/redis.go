package config

import "time"

type RedisConfig struct {
	DB         int
	Url        string
	Password   string
	SessionTTL time.Duration
}

func NewRedisConfig() *RedisConfig {
	return &RedisConfig{
		DB:         getIntEnv("REDIS_DB", 0),
		Url:        getEnv("REDIS_ADDR", ""),
		Password:   getEnv("REDIS_PASSWORD", ""),
		SessionTTL: getSecondsEnv("OTP_SESSION_TTL_SEC", time.Hour),
	}
}

// Enabled reports whether a Redis session ledger was configured
func (c *RedisConfig) Enabled() bool {
	return c.Url != ""
}
