package log

import (
	"sync/atomic"

	"github.com/lcx/polyproto/config"
)

type Logger interface {
	Debug() *LogEvent
	Info() *LogEvent
	Warn() *LogEvent
	Error() *LogEvent
	Fatal() *LogEvent
}

var _defaultLogger atomic.Pointer[GameLogger]

func init() {
	_defaultLogger.Store(NewLogger(nil))
}

// Default returns the package-level logger.
func Default() *GameLogger {
	return _defaultLogger.Load()
}

// SetDefaultLogger replaces the package-level logger.
func SetDefaultLogger(logger *GameLogger) {
	if logger != nil {
		_defaultLogger.Store(logger)
	}
}

// InitializeWithConfigManager loads the "logger" configuration and installs a
// hot-reloading default logger.
func InitializeWithConfigManager(configManager config.ConfigManager) error {
	if configManager == nil {
		return nil
	}

	logCfg := &LogCfg{}
	if err := configManager.LoadConfig("logger", logCfg); err != nil {
		return err
	}

	SetDefaultLogger(NewLoggerWithConfigManager(logCfg, configManager))
	return nil
}

// Refresh flushes the default logger's appenders.
func Refresh() {
	Default().Refresh()
}

// Debug creates a new debug-level log event using the default logger.
func Debug() *LogEvent {
	return Default().Debug()
}

// Info creates a new info-level log event using the default logger.
func Info() *LogEvent {
	return Default().Info()
}

// Warn creates a new warn-level log event using the default logger.
func Warn() *LogEvent {
	return Default().Warn()
}

// Error creates a new error-level log event using the default logger.
func Error() *LogEvent {
	return Default().Error()
}

// Fatal creates a new fatal-level log event using the default logger.
func Fatal() *LogEvent {
	return Default().Fatal()
}
