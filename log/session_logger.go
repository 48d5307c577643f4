package log

import "github.com/rs/zerolog"

// SessionLogger tags every event with the player key and negotiated protocol
// of one client session. Players on the white list are logged at every level
// regardless of the configured minimum.
type SessionLogger struct {
	base      *GameLogger
	playerKey string
	protocol  int32
}

// NewSessionLogger creates a logger bound to one session. A nil base uses the
// package-level default logger.
func NewSessionLogger(base *GameLogger, playerKey string, protocol int32) *SessionLogger {
	return &SessionLogger{base: base, playerKey: playerKey, protocol: protocol}
}

func (s *SessionLogger) logger() *zerolog.Logger {
	base := s.base
	if base == nil {
		base = Default()
	}
	return base.loggerFor(s.playerKey)
}

func (s *SessionLogger) decorate(e *LogEvent) *LogEvent {
	return e.Str("player", s.playerKey).Int32("protocol", s.protocol)
}

// IgnoreCheckLevel reports whether this session bypasses level filtering.
func (s *SessionLogger) IgnoreCheckLevel() bool {
	base := s.base
	if base == nil {
		base = Default()
	}
	base.configMutex.RLock()
	defer base.configMutex.RUnlock()
	_, ok := base.whiteList[s.playerKey]
	return ok
}

func (s *SessionLogger) Debug() *LogEvent { return s.decorate(s.logger().Debug()) }
func (s *SessionLogger) Info() *LogEvent  { return s.decorate(s.logger().Info()) }
func (s *SessionLogger) Warn() *LogEvent  { return s.decorate(s.logger().Warn()) }
func (s *SessionLogger) Error() *LogEvent { return s.decorate(s.logger().Error()) }
func (s *SessionLogger) Fatal() *LogEvent {
	return s.decorate(s.logger().WithLevel(FatalLevel))
}
