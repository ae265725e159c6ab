package config

import "os"

type AppConfig struct {
	DebugMode    bool
	LogLevel     string
	DaemonConfig *DaemonConfig
	ClientConfig *ClientConfig
	RedisConfig  *RedisConfig
}

func NewSystemConfig() *AppConfig {
	debug := os.Getenv("DEBUG_MODE") == "true"
	level := getEnv("LOG_LEVEL", "info")
	if debug {
		level = "debug"
	}
	return &AppConfig{
		DebugMode:    debug,
		LogLevel:     level,
		DaemonConfig: NewDaemonConfig(),
		ClientConfig: NewClientConfig(),
		RedisConfig:  NewRedisConfig(),
	}
}
