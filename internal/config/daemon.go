package config

import (
	"net"
	"strconv"
	"time"

	"gitlab.com/otp-enc.net/internal/tcp/defs"
)

type DaemonConfig struct {
	Host           string
	Port           int
	MaxWorkers     int
	MaxMessageSize uint32
	IOTimeout      time.Duration
	StatusPort     int
	StatsInterval  time.Duration
}

func NewDaemonConfig() *DaemonConfig {
	maxWorkers := getIntEnv("OTP_MAX_WORKERS", defs.DefaultMaxWorkers)
	if maxWorkers <= 0 {
		maxWorkers = defs.DefaultMaxWorkers
	}
	return &DaemonConfig{
		Host:           getEnv("OTP_HOST", defs.DefaultHost),
		Port:           defs.DefaultPort,
		MaxWorkers:     maxWorkers,
		MaxMessageSize: getUint32Env("OTP_MAX_MESSAGE_BYTES", defs.DefaultMaxMessageSize),
		IOTimeout:      getSecondsEnv("OTP_IO_TIMEOUT_SEC", 0),
		StatusPort:     getIntEnv("OTP_STATUS_PORT", 0),
		StatsInterval:  getSecondsEnv("OTP_STATS_INTERVAL_SEC", 0),
	}
}

// Address joins Host and Port
func (c *DaemonConfig) Address() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// StatusEnabled reports whether the status HTTP endpoint should be served
func (c *DaemonConfig) StatusEnabled() bool {
	return c.StatusPort > 0
}

type ClientConfig struct {
	Host           string
	IOTimeout      time.Duration
	MaxMessageSize uint32
}

func NewClientConfig() *ClientConfig {
	return &ClientConfig{
		Host:           getEnv("OTP_HOST", defs.DefaultHost),
		IOTimeout:      getSecondsEnv("OTP_IO_TIMEOUT_SEC", 0),
		MaxMessageSize: getUint32Env("OTP_MAX_MESSAGE_BYTES", defs.DefaultMaxMessageSize),
	}
}
