package systems

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/anima-core/engine/core"
	"github.com/spaghettifunk/anima-core/engine/renderer"
	"github.com/spaghettifunk/anima-core/engine/renderer/commands"
	"github.com/spaghettifunk/anima-core/engine/renderer/metadata"
)

func testLoader(name string) (metadata.Texture, []uint8, error) {
	switch name {
	case "brick", "stone":
		return metadata.Texture{Width: 2, Height: 2, ChannelCount: 4}, make([]uint8, 16), nil
	case "glass":
		return metadata.Texture{Width: 2, Height: 2, ChannelCount: 4, Flags: metadata.TextureFlagHasTransparency}, make([]uint8, 16), nil
	}
	return metadata.Texture{}, nil, core.ErrUnknownResource
}

func testSystemsConfig() core.SystemsConfig {
	return core.SystemsConfig{
		MaxTextureCount:  16,
		MaxShaderCount:   8,
		MaxMaterialCount: 16,
		MaxGeometryCount: 16,
		MaxRenderObjects: 16,
		MaxViewCount:     4,
		MaxCameraCount:   4,
		JobWorkers:       2,
	}
}

func newTestManager(t *testing.T) (*SystemManager, *renderer.HeadlessBackend) {
	t.Helper()
	hb := renderer.NewHeadlessBackend()
	require.NoError(t, hb.Initialize("systems-test"))
	sm, err := NewSystemManager(testSystemsConfig(), hb, testLoader)
	require.NoError(t, err)
	require.NoError(t, sm.Initialize())
	t.Cleanup(func() { _ = sm.jobSystem.Shutdown() })
	return sm, hb
}

func newTestManagerConfig(t *testing.T, edit func(*core.SystemsConfig)) *SystemManager {
	t.Helper()
	cfg := testSystemsConfig()
	edit(&cfg)
	sm, err := NewSystemManager(cfg, renderer.NewHeadlessBackend(), testLoader)
	require.NoError(t, err)
	require.NoError(t, sm.Initialize())
	t.Cleanup(func() { _ = sm.jobSystem.Shutdown() })
	return sm
}

// captureBackend keeps every command the scheduler executes.
type captureBackend struct {
	*renderer.HeadlessBackend
	executed []commands.Command
}

func (c *captureBackend) BeginFrame(frame commands.FrameInfo) error {
	c.executed = c.executed[:0]
	return c.HeadlessBackend.BeginFrame(frame)
}

func (c *captureBackend) Execute(cmd commands.Command) error {
	c.executed = append(c.executed, cmd)
	return c.HeadlessBackend.Execute(cmd)
}

func (c *captureBackend) draws() []commands.DrawMesh {
	var out []commands.DrawMesh
	for _, cmd := range c.executed {
		if d, ok := cmd.(commands.DrawMesh); ok {
			out = append(out, d)
		}
	}
	return out
}

func worldView(name string, pass uint8) *metadata.RenderViewConfig {
	return &metadata.RenderViewConfig{
		Name:           name,
		RenderViewType: metadata.RENDERER_VIEW_KNOWN_TYPE_WORLD,
		PassIndex:      pass,
		Layer:          metadata.ViewLayerWorld,
		Width:          800,
		Height:         600,
		Mask:           1,
	}
}
