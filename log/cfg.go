package log

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

// Level is the minimum severity a logger emits.
type Level = zerolog.Level

const (
	TraceLevel = zerolog.TraceLevel
	DebugLevel = zerolog.DebugLevel
	InfoLevel  = zerolog.InfoLevel
	WarnLevel  = zerolog.WarnLevel
	ErrorLevel = zerolog.ErrorLevel
	FatalLevel = zerolog.FatalLevel
)

// LogCfg represents logging configuration for the bridge server.
// It is loaded by the config manager under the name "logger" and supports
// hot reload of the level and the player white list.
type LogCfg struct {
	// LogPath specifies the target log file path for file-based logging.
	LogPath string `mapstructure:"path"`

	// LogLevel is one of trace, debug, info, warn, error, fatal.
	LogLevel string `mapstructure:"level"`

	// FileSplitMB determines the file rotation threshold in megabytes.
	// Zero disables size based rotation.
	FileSplitMB int `mapstructure:"splitmb"`

	// FileAppender enables file-based logging output.
	FileAppender bool `mapstructure:"fileAppender"`

	// ConsoleAppender enables human readable console output on stdout.
	ConsoleAppender bool `mapstructure:"consoleAppender"`

	// EnabledCallerInfo adds the caller file:line to every event.
	EnabledCallerInfo bool `mapstructure:"enabledCallerInfo"`

	// PlayerWhiteList lists player keys whose session loggers bypass level
	// filtering, for targeted debugging of one client in production.
	PlayerWhiteList []string `mapstructure:"playerWhiteList"`

	playerWhiteListSet map[string]struct{}
}

// GetName implements config.Config.
func (cfg *LogCfg) GetName() string {
	return "logger"
}

// Validate implements config.Config.
func (cfg *LogCfg) Validate() error {
	if _, err := ParseLevel(cfg.LogLevel); err != nil {
		return err
	}
	if cfg.FileAppender && cfg.LogPath == "" {
		return fmt.Errorf("log path required when file appender is enabled")
	}
	if cfg.FileSplitMB < 0 {
		return fmt.Errorf("splitmb cannot be negative")
	}
	return nil
}

// Level returns the parsed minimum level, falling back to info.
func (cfg *LogCfg) Level() Level {
	lv, err := ParseLevel(cfg.LogLevel)
	if err != nil {
		return InfoLevel
	}
	return lv
}

// IsInWhiteList checks if a player key exists in the white list.
func (cfg *LogCfg) IsInWhiteList(playerKey string) bool {
	if len(cfg.playerWhiteListSet) == 0 && len(cfg.PlayerWhiteList) != 0 {
		set := make(map[string]struct{}, len(cfg.PlayerWhiteList))
		for _, key := range cfg.PlayerWhiteList {
			set[key] = struct{}{}
		}
		cfg.playerWhiteListSet = set
	}

	_, exists := cfg.playerWhiteListSet[playerKey]
	return exists
}

// ParseLevel converts a level name into a Level. The empty string is info.
func ParseLevel(raw string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "":
		return InfoLevel, nil
	case "trace":
		return TraceLevel, nil
	case "debug":
		return DebugLevel, nil
	case "info":
		return InfoLevel, nil
	case "warn", "warning":
		return WarnLevel, nil
	case "error":
		return ErrorLevel, nil
	case "fatal":
		return FatalLevel, nil
	}
	return InfoLevel, fmt.Errorf("unknown log level %q", raw)
}

var _defaultCfg = &LogCfg{
	LogPath:         "./polyproto.log",
	LogLevel:        "info",
	FileSplitMB:     50,
	ConsoleAppender: true,
}

func getDefaultCfg() *LogCfg {
	return _defaultCfg
}
