package logger

import "gitlab.com/otp-enc.net/internal/adapter/logging"

// Logger is the process-wide logger used by the commands before and after wiring.
var Logger = logging.NewZapLogger("info")

// Init replaces the process-wide logger with one at the given level.
func Init(level string) *logging.ZapLogger {
	Logger = logging.NewZapLogger(level)
	return Logger
}
