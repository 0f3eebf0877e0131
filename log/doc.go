// Package log provides a small leveled logging interface for hybridchat.
//
// The Logger interface has four printf-style methods (Debug, Info, Warn,
// Error). Three implementations ship with the package:
//
//   - DefaultLogger: standard library logging with a level filter
//   - GologLogger: a wrapper around github.com/kataras/golog
//   - NoOpLogger: discards everything, useful in tests
//
// # Log Levels
//
// Levels are ordered LogLevelDebug < LogLevelInfo < LogLevelWarn <
// LogLevelError < LogLevelNone. A logger prints messages at or above its
// level; LogLevelNone disables output entirely. ParseLevel converts the
// usual string names ("debug", "info", "warn", "error", "none").
//
// # Example Usage
//
//	// Standard library backend with an INFO filter.
//	logger := log.NewDefaultLogger(log.LogLevelInfo)
//	logger.Info("session started")
//	logger.Debug("not printed at this level")
//
//	// golog backend.
//	logger = log.NewGolog(log.ParseLevel(os.Getenv("LOG_LEVEL")))
//	logger.Warn("rate limit approaching: %d requests", count)
//
// # Package-Level Default
//
// A process-wide default logger backs the package-level Debug, Info, Warn
// and Error functions. SetDefaultLogger swaps the implementation and
// SetLogLevel adjusts its filter; both are safe for concurrent use.
//
// Custom backends only need to implement the four-method Logger interface.
package log
