package log

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFileLogger(t *testing.T, level string, whiteList ...string) (*GameLogger, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "logs", "bridge.log")
	logger := NewLogger(&LogCfg{
		LogPath:         path,
		LogLevel:        level,
		FileAppender:    true,
		ConsoleAppender: false,
		PlayerWhiteList: whiteList,
	})
	t.Cleanup(logger.Close)
	return logger, path
}

func readLog(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		raw     string
		want    Level
		wantErr bool
	}{
		{"", InfoLevel, false},
		{"debug", DebugLevel, false},
		{"WARN", WarnLevel, false},
		{"warning", WarnLevel, false},
		{"error", ErrorLevel, false},
		{"verbose", InfoLevel, true},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseLevel(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLogCfgValidate(t *testing.T) {
	assert.NoError(t, (&LogCfg{LogLevel: "info"}).Validate())
	assert.Error(t, (&LogCfg{LogLevel: "loud"}).Validate())
	assert.Error(t, (&LogCfg{LogLevel: "info", FileAppender: true}).Validate())
	assert.Error(t, (&LogCfg{LogLevel: "info", FileSplitMB: -1}).Validate())
}

func TestLogCfgWhiteList(t *testing.T) {
	cfg := &LogCfg{PlayerWhiteList: []string{"alice", "bob"}}
	assert.True(t, cfg.IsInWhiteList("alice"))
	assert.False(t, cfg.IsInWhiteList("carol"))
}

func TestGameLogger_LevelFilter(t *testing.T) {
	logger, path := newFileLogger(t, "warn")

	logger.Info().Str("module", "router").Msg("hidden info")
	logger.Warn().Str("module", "router").Msg("visible warn")
	logger.Refresh()

	content := readLog(t, path)
	assert.NotContains(t, content, "hidden info")
	assert.Contains(t, content, "visible warn")
	assert.Contains(t, content, `"module":"router"`)
}

func TestGameLogger_FatalDoesNotExit(t *testing.T) {
	logger, path := newFileLogger(t, "info")
	logger.Fatal().Msg("fatal but alive")
	logger.Refresh()
	assert.Contains(t, readLog(t, path), "fatal but alive")
}

func TestSessionLogger_Fields(t *testing.T) {
	logger, path := newFileLogger(t, "info")
	sl := NewSessionLogger(logger, "alice", 621)

	sl.Info().Msg("session registered")
	logger.Refresh()

	content := readLog(t, path)
	assert.Contains(t, content, `"player":"alice"`)
	assert.Contains(t, content, `"protocol":621`)
}

func TestSessionLogger_WhiteListBypassesLevel(t *testing.T) {
	logger, path := newFileLogger(t, "error", "alice")

	NewSessionLogger(logger, "alice", 527).Debug().Msg("alice debug")
	NewSessionLogger(logger, "bob", 527).Debug().Msg("bob debug")
	logger.Refresh()

	content := readLog(t, path)
	assert.Contains(t, content, "alice debug")
	assert.NotContains(t, content, "bob debug")
	assert.True(t, NewSessionLogger(logger, "alice", 527).IgnoreCheckLevel())
	assert.False(t, NewSessionLogger(logger, "bob", 527).IgnoreCheckLevel())
}

func TestGameLogger_OnConfigChanged(t *testing.T) {
	logger, path := newFileLogger(t, "error")
	logger.Info().Msg("before reload")

	newCfg := *logger.GetCurrentConfig()
	newCfg.LogLevel = "debug"
	require.NoError(t, logger.OnConfigChanged("logger", &newCfg, logger.GetCurrentConfig()))

	logger.Info().Msg("after reload")
	logger.Refresh()

	content := readLog(t, path)
	assert.NotContains(t, content, "before reload")
	assert.Contains(t, content, "after reload")
	assert.Equal(t, "debug", logger.GetCurrentConfig().LogLevel)

	// other configuration names are ignored
	assert.NoError(t, logger.OnConfigChanged("router", &newCfg, nil))
}

func TestFileAppender_Rotate(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rotate.log")
	fa, err := NewFileAppender(&LogCfg{LogPath: path, FileSplitMB: 1})
	require.NoError(t, err)
	defer fa.Close()

	line := []byte(strings.Repeat("x", 1023) + "\n")
	for i := 0; i < 1100; i++ {
		_, err := fa.Write(line)
		require.NoError(t, err)
	}

	backups, err := filepath.Glob(filepath.Join(dir, "rotate-*.log"))
	require.NoError(t, err)
	assert.NotEmpty(t, backups, "expected a rotated file")

	st, err := os.Stat(path)
	require.NoError(t, err)
	assert.LessOrEqual(t, st.Size(), int64(1<<20))
}

func TestFileAppender_WritesAfterRemovedDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	path := filepath.Join(dir, "bridge.log")
	fa, err := NewFileAppender(&LogCfg{LogPath: path, FileSplitMB: 1})
	require.NoError(t, err)
	defer fa.Close()

	_, err = fa.Write([]byte("first\n"))
	require.NoError(t, err)

	require.NoError(t, os.RemoveAll(dir))
	require.NoError(t, fa.Rotate())
	_, err = fa.Write([]byte("second\n"))
	require.NoError(t, err)
	assert.Contains(t, readLog(t, path), "second")
}

func TestNewFileAppenderEmptyPath(t *testing.T) {
	_, err := NewFileAppender(&LogCfg{})
	assert.Error(t, err)
}

func TestGameLogger_CallerNamesLoggingLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "caller.log")
	logger := NewLogger(&LogCfg{
		LogPath:           path,
		LogLevel:          "info",
		FileAppender:      true,
		EnabledCallerInfo: true,
	})
	t.Cleanup(logger.Close)

	logger.Info().Msg("where am i")
	logger.Refresh()

	content := readLog(t, path)
	assert.Contains(t, content, `"caller":`)
	assert.Contains(t, content, "logger_test.go:")
	assert.NotContains(t, content, "testing.go")
}

func TestDefaultLogger(t *testing.T) {
	old := Default()
	defer SetDefaultLogger(old)

	logger, path := newFileLogger(t, "info")
	SetDefaultLogger(logger)
	Info().Msg("through package level")
	Refresh()
	assert.Contains(t, readLog(t, path), "through package level")

	SetDefaultLogger(nil)
	assert.Same(t, logger, Default())
}
