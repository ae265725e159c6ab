package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// DefaultEnvFile is loaded when no --env path is given. A missing default file is not an error.
const DefaultEnvFile = ".env"

// LoadEnvFile loads variables from path into the process environment without
// overriding variables that are already set.
func LoadEnvFile(path string) error {
	explicit := path != ""
	if !explicit {
		path = DefaultEnvFile
	}
	if err := godotenv.Load(path); err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getIntEnv(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func getSecondsEnv(key string, fallback time.Duration) time.Duration {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil || v < 0 {
		return fallback
	}
	return time.Duration(v) * time.Second
}

// getUint32Env falls back on anything that is not a positive value that fits in 32 bits.
func getUint32Env(key string, fallback uint32) uint32 {
	v, err := strconv.ParseUint(os.Getenv(key), 10, 32)
	if err != nil || v == 0 {
		return fallback
	}
	return uint32(v)
}
