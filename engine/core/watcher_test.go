package core

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigWatcherReload(t *testing.T) {
	path := writeConfig(t, "anima.toml", "log_level = \"info\"\n")

	cw, err := NewConfigWatcher(path)
	require.NoError(t, err)
	defer cw.Close()

	// an invalid edit is rejected and never delivered
	require.NoError(t, os.WriteFile(path, []byte("log_level = \"loud\"\n"), 0o644))
	require.NoError(t, os.WriteFile(path, []byte("log_level = \"debug\"\ntarget_fps = 24\n"), 0o644))

	deadline := time.After(5 * time.Second)
	for {
		select {
		case cfg := <-cw.Updates():
			require.NotNil(t, cfg)
			// a write may be observed before its content is complete
			if cfg.Level() != DebugLevel || cfg.TargetFPS != 24 {
				continue
			}
			return
		case <-deadline:
			t.Fatal("no config update received")
		}
	}
}

func TestConfigWatcherClose(t *testing.T) {
	path := writeConfig(t, "anima.yaml", "name: watched\n")

	cw, err := NewConfigWatcher(path)
	require.NoError(t, err)
	require.NoError(t, cw.Close())
	assert.Error(t, cw.Close())

	_, ok := <-cw.Updates()
	assert.False(t, ok, "updates channel is closed on Close")
}
