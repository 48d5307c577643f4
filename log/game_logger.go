package log

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/lcx/polyproto/config"
	"github.com/rs/zerolog"
)

// LogEvent is a single structured log entry under construction. A nil event
// (level disabled) accepts every field call and discards it.
type LogEvent = zerolog.Event

// GameLogger provides a thread-safe logging interface with configurable appenders.
// Events are encoded by zerolog and fanned out to every appender.
//
// Example usage:
//
//	logger := NewLogger(&LogCfg{LogLevel: "info", ConsoleAppender: true})
//	logger.Info().Str("module", "router").Int("sessions", 42).Msg("router started")
type GameLogger struct {
	configMutex   sync.RWMutex
	zl            zerolog.Logger
	verbose       zerolog.Logger // same outputs, no level filter, for white-listed players
	appenders     []LogAppender
	whiteList     map[string]struct{}
	currentConfig *LogCfg
	configManager config.ConfigManager
}

// NewLogger creates a new GameLogger. If cfg is nil the default configuration
// (console only, info level) is used.
func NewLogger(cfg *LogCfg) *GameLogger {
	if cfg == nil {
		cfg = getDefaultCfg()
	}

	logger := &GameLogger{}
	logger.appenders = buildAppenders(cfg)
	logger.applyConfig(cfg)
	return logger
}

// NewLoggerWithConfigManager creates a GameLogger that follows hot reloads of
// the "logger" configuration.
func NewLoggerWithConfigManager(cfg *LogCfg, configManager config.ConfigManager) *GameLogger {
	logger := NewLogger(cfg)
	logger.configManager = configManager
	if configManager != nil {
		configManager.AddChangeListener(logger)
	}
	return logger
}

func buildAppenders(cfg *LogCfg) []LogAppender {
	var appenders []LogAppender
	if cfg.FileAppender {
		fa, err := NewFileAppender(cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "log: file appender disabled: %v\n", err)
		} else {
			appenders = append(appenders, fa)
		}
	}
	if cfg.ConsoleAppender {
		appenders = append(appenders, NewConsoleAppender())
	}
	return appenders
}

// applyConfig rebuilds the zerolog loggers from the current appenders.
func (x *GameLogger) applyConfig(cfg *LogCfg) {
	x.configMutex.Lock()
	defer x.configMutex.Unlock()
	x.applyConfigLocked(cfg)
}

func (x *GameLogger) applyConfigLocked(cfg *LogCfg) {
	var base zerolog.Logger
	if len(x.appenders) == 0 {
		base = zerolog.Nop()
	} else {
		writers := make([]io.Writer, 0, len(x.appenders))
		for _, a := range x.appenders {
			writers = append(writers, a)
		}
		ctx := zerolog.New(zerolog.MultiLevelWriter(writers...)).With().Timestamp()
		if cfg.EnabledCallerInfo {
			ctx = ctx.Caller()
		}
		base = ctx.Logger()
	}

	whiteList := make(map[string]struct{}, len(cfg.PlayerWhiteList))
	for _, key := range cfg.PlayerWhiteList {
		whiteList[key] = struct{}{}
	}

	x.zl = base.Level(cfg.Level())
	x.verbose = base.Level(TraceLevel)
	x.whiteList = whiteList
	x.currentConfig = cfg
}

// OnConfigChanged implements config.ConfigChangeListener.
func (x *GameLogger) OnConfigChanged(configName string, newConfig, oldConfig config.Config) error {
	if configName != "logger" {
		return nil
	}
	newCfg, ok := newConfig.(*LogCfg)
	if !ok {
		return nil
	}

	x.configMutex.Lock()
	defer x.configMutex.Unlock()

	old := x.currentConfig
	if old == nil || old.LogPath != newCfg.LogPath || old.FileAppender != newCfg.FileAppender ||
		old.ConsoleAppender != newCfg.ConsoleAppender || old.FileSplitMB != newCfg.FileSplitMB {
		closeAppenders(x.appenders)
		x.appenders = buildAppenders(newCfg)
	}
	x.applyConfigLocked(newCfg)
	return nil
}

func closeAppenders(appenders []LogAppender) {
	for _, a := range appenders {
		if c, ok := a.(io.Closer); ok {
			_ = c.Close()
		}
	}
}

// GetCurrentConfig returns the active configuration.
func (x *GameLogger) GetCurrentConfig() *LogCfg {
	x.configMutex.RLock()
	defer x.configMutex.RUnlock()
	return x.currentConfig
}

// AddAppender adds an output destination.
func (x *GameLogger) AddAppender(appender LogAppender) {
	x.configMutex.Lock()
	defer x.configMutex.Unlock()
	x.appenders = append(x.appenders, appender)
	x.applyConfigLocked(x.currentConfig)
}

// GetAppender returns the registered appenders.
func (x *GameLogger) GetAppender() []LogAppender {
	x.configMutex.RLock()
	defer x.configMutex.RUnlock()
	return append([]LogAppender(nil), x.appenders...)
}

// Refresh flushes every appender.
func (x *GameLogger) Refresh() {
	for _, appender := range x.GetAppender() {
		appender.Refresh()
	}
}

// Close flushes and closes file backed appenders.
func (x *GameLogger) Close() {
	x.configMutex.Lock()
	defer x.configMutex.Unlock()
	for _, a := range x.appenders {
		a.Refresh()
	}
	closeAppenders(x.appenders)
	x.appenders = nil
	x.applyConfigLocked(x.currentConfig)
}

func (x *GameLogger) logger() *zerolog.Logger {
	x.configMutex.RLock()
	l := x.zl
	x.configMutex.RUnlock()
	return &l
}

// loggerFor returns the unfiltered logger for white-listed player keys.
func (x *GameLogger) loggerFor(playerKey string) *zerolog.Logger {
	x.configMutex.RLock()
	l := x.zl
	if _, ok := x.whiteList[playerKey]; ok {
		l = x.verbose
	}
	x.configMutex.RUnlock()
	return &l
}

// Debug creates a new debug-level log event.
func (x *GameLogger) Debug() *LogEvent {
	return x.logger().Debug()
}

// Info creates a new info-level log event.
func (x *GameLogger) Info() *LogEvent {
	return x.logger().Info()
}

// Warn creates a new warn-level log event.
func (x *GameLogger) Warn() *LogEvent {
	return x.logger().Warn()
}

// Error creates a new error-level log event.
func (x *GameLogger) Error() *LogEvent {
	return x.logger().Error()
}

// Fatal creates a fatal-level event. Unlike zerolog's Fatal it does not exit;
// shutting down is left to the caller.
func (x *GameLogger) Fatal() *LogEvent {
	return x.logger().WithLevel(FatalLevel)
}
