package core

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultEngineConfigIsValid(t *testing.T) {
	cfg := DefaultEngineConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, InfoLevel, cfg.Level())
	assert.Equal(t, uint32(2), cfg.Systems.JobWorkers)
}

func TestLoadConfigTOML(t *testing.T) {
	path := writeConfig(t, "anima.toml", `
name = "Testbed"
log_level = "debug"
frames = 12

[systems]
max_texture_count = 8
max_camera_count = 4
job_workers = 3
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "Testbed", cfg.Name)
	assert.Equal(t, DebugLevel, cfg.Level())
	assert.Equal(t, uint64(12), cfg.Frames)
	assert.Equal(t, uint32(8), cfg.Systems.MaxTextureCount)
	assert.Equal(t, uint32(4), cfg.Systems.MaxCameraCount)
	assert.Equal(t, uint32(3), cfg.Systems.JobWorkers)

	// untouched keys keep their defaults
	def := DefaultEngineConfig()
	assert.Equal(t, def.TargetFPS, cfg.TargetFPS)
	assert.Equal(t, def.Systems.MaxRenderObjects, cfg.Systems.MaxRenderObjects)
}

func TestLoadConfigYAML(t *testing.T) {
	path := writeConfig(t, "anima.yml", `
name: Testbed
log_level: warn
target_fps: 30
systems:
  max_view_count: 4
  max_geometry_count: 32
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, WarnLevel, cfg.Level())
	assert.Equal(t, uint32(30), cfg.TargetFPS)
	assert.Equal(t, uint32(4), cfg.Systems.MaxViewCount)
	assert.Equal(t, uint32(32), cfg.Systems.MaxGeometryCount)
}

func TestLoadConfigRejects(t *testing.T) {
	cases := map[string]struct {
		file    string
		content string
	}{
		"unknown toml key": {"a.toml", "nope = 1\n"},
		"unknown yaml key": {"a.yaml", "nope: 1\n"},
		"zero capacity":    {"a.toml", "[systems]\nmax_shader_count = 0\n"},
		"zero workers":     {"a.yaml", "systems:\n  job_workers: 0\n"},
		"bad log level":    {"a.toml", "log_level = \"loud\"\n"},
		"bad extension":    {"a.json", "{}"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tc.file, tc.content))
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}

	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestParseLogLevel(t *testing.T) {
	for _, l := range []LogLevel{DebugLevel, InfoLevel, WarnLevel, ErrorLevel, FatalLevel} {
		parsed, err := ParseLogLevel(l.String())
		require.NoError(t, err)
		assert.Equal(t, l, parsed)
	}

	l, err := ParseLogLevel(" WARNING ")
	require.NoError(t, err)
	assert.Equal(t, WarnLevel, l)

	l, err = ParseLogLevel("")
	require.NoError(t, err)
	assert.Equal(t, InfoLevel, l)

	_, err = ParseLogLevel("verbose")
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestSetLogLevel(t *testing.T) {
	previous := GetLogLevel()
	t.Cleanup(func() { SetLogLevel(previous) })

	SetLogLevel(ErrorLevel)
	assert.Equal(t, ErrorLevel, GetLogLevel())
	SetLogLevel(DebugLevel)
	assert.Equal(t, DebugLevel, GetLogLevel())
}
