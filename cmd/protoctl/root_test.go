package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lcx/polyproto/config"
	"github.com/lcx/polyproto/protocol"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestVersionsCmd(t *testing.T) {
	out, err := execute(t, "versions")
	require.NoError(t, err)
	assert.Contains(t, out, "527\t1.19.0")
	assert.Contains(t, out, "589\t1.20.0")
	assert.Contains(t, out, "621\t1.20.40")
	assert.Contains(t, out, "(canonical)")
}

func TestDescribeCmd(t *testing.T) {
	out, err := execute(t, "describe", "621")
	require.NoError(t, err)
	assert.Contains(t, out, "protocol:    621 (1.20.40)")
	assert.Contains(t, out, "cameras")
	assert.Contains(t, out, "chunks:      [37, 41] canonical 40")
	assert.Contains(t, out, "threshold 512")

	_, err = execute(t, "describe", "999")
	assert.ErrorIs(t, err, protocol.ErrUnsupportedProtocol)
	_, err = execute(t, "describe", "abc")
	assert.Error(t, err)
}

func TestDescribePrintsRangeBounds(t *testing.T) {
	d, err := protocol.NewDescriptor(protocol.VersionData{
		Protocol:              10,
		Label:                 "test",
		Packets:               map[string]uint32{"Text": 9},
		Blocks:                protocol.Range{Min: 5, Max: 100},
		Items:                 protocol.Range{Min: 256, Max: 512},
		Entities:              protocol.Range{Min: 1, Max: 50},
		ChunkVersions:         protocol.Range{Min: 30, Max: 32},
		CanonicalChunkVersion: 31,
	})
	require.NoError(t, err)

	var out bytes.Buffer
	describe(&out, d)
	assert.Contains(t, out.String(), "blocks:      [5, 100]\n")
	assert.Contains(t, out.String(), "items:       [256, 512]\n")
	assert.Contains(t, out.String(), "entities:    [1, 50]\n")
}

func TestPacketCmd(t *testing.T) {
	out, err := execute(t, "packet", "527", "Text")
	require.NoError(t, err)
	assert.Equal(t, "9\tText\n", out)

	out, err = execute(t, "packet", "527", "9")
	require.NoError(t, err)
	assert.Equal(t, "9\tText\n", out)

	_, err = execute(t, "packet", "621", "TickSync")
	assert.ErrorIs(t, err, protocol.ErrUnknownPacket)
	_, err = execute(t, "packet", "621", "65000")
	assert.ErrorIs(t, err, protocol.ErrUnknownPacket)
}

func TestTranslateCmd(t *testing.T) {
	out, err := execute(t, "translate", "621", "527", "UpdateAdventureSettings", "-f", "noAttackingPlayers=true", "-f", "autoJump=false")
	require.NoError(t, err)
	assert.Contains(t, out, "outcome:  downgraded")
	assert.Contains(t, out, "AdventureSettings")
	assert.Regexp(t, `"noPvP":\s+true`, out)

	_, err = execute(t, "translate", "621", "527", "RequestNetworkSettings")
	assert.ErrorIs(t, err, protocol.ErrTranslationGap)

	_, err = execute(t, "translate", "621", "527", "Text", "-d", "sideways")
	assert.Error(t, err)
	_, err = execute(t, "translate", "621", "527", "Text", "-f", "novalue")
	assert.Error(t, err)
}

func TestParseFields(t *testing.T) {
	fields, err := parseFields([]string{"a=1", "b=true", "c=hello", "d=a=b"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": 1.0, "b": true, "c": "hello", "d": "a=b"}, fields)

	fields, err = parseFields(nil)
	require.NoError(t, err)
	assert.Nil(t, fields)

	_, err = parseFields([]string{"=x"})
	assert.Error(t, err)
}

func TestBuildBridgeWithDefaults(t *testing.T) {
	cm := config.NewConfigManager()
	cm.SetBasePath(t.TempDir())
	defer cm.Close()

	b, err := buildBridge(cm, "test")
	require.NoError(t, err)
	assert.Nil(t, b.advertiser)
	assert.Equal(t, protocol.ServerProtocol, b.router.CanonicalProtocol())
	assert.Equal(t, []int32{527, 589, 621}, b.registry.SupportedVersions())
}

func TestBuildBridgeFromConfigFiles(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"router.yaml":   "canonicalProtocol: 589\nlimiter: none\npacketFilter: [Text]\n",
		"registry.yaml": "idleTimeoutSec: 60\nreapIntervalSec: 5\nmaxSessions: 10\n",
		"stats.yaml":    "enabled: true\npath: " + filepath.Join(dir, "stats.json") + "\nintervalSec: 30\n",
	}
	for name, body := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}

	cm := config.NewConfigManager()
	cm.SetBasePath(dir)
	defer cm.Close()

	b, err := buildBridge(cm, "test")
	require.NoError(t, err)
	assert.Equal(t, int32(589), b.router.CanonicalProtocol())
	assert.Equal(t, 10, b.registry.Config().MaxSessions)
	require.NoError(t, b.exporter.Flush())
	assert.FileExists(t, filepath.Join(dir, "stats.json"))
}
