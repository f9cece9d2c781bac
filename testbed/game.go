package testbed

import (
	"fmt"

	"github.com/spaghettifunk/anima-core/engine"
	"github.com/spaghettifunk/anima-core/engine/containers"
	"github.com/spaghettifunk/anima-core/engine/core"
	"github.com/spaghettifunk/anima-core/engine/math"
	"github.com/spaghettifunk/anima-core/engine/renderer/metadata"
	"github.com/spaghettifunk/anima-core/engine/resources"
	"github.com/spaghettifunk/anima-core/engine/systems"
)

const (
	worldMask uint32 = 0x1
	uiMask    uint32 = 0x2
)

type TestGame struct {
	*engine.Game
}

type gameState struct {
	DeltaTime float64
	camera    resources.ID[metadata.Camera]
	objects   []containers.Handle[metadata.RenderObject]

	width  uint32
	height uint32
}

func NewTestGame() (*TestGame, error) {
	tg := &TestGame{
		Game: &engine.Game{
			ApplicationConfig: &engine.ApplicationConfig{
				StartWidth:  1280,
				StartHeight: 720,
				Name:        "Anima Game Engine",
				RenderViewConfigs: []*metadata.RenderViewConfig{
					{
						Name:           "world_opaque",
						RenderViewType: metadata.RENDERER_VIEW_KNOWN_TYPE_WORLD,
						PassIndex:      0,
						Layer:          metadata.ViewLayerWorld,
						ClearColour:    math.NewVec4(0.1, 0.1, 0.2, 1),
						Mask:           worldMask,
					},
					{
						Name:           "ui",
						RenderViewType: metadata.RENDERER_VIEW_KNOWN_TYPE_UI,
						PassIndex:      1,
						Mask:           uiMask,
						Fullscreen:     true,
					},
				},
				TextureLoader:   proceduralTexture,
				PreloadTextures: []string{"cobblestone", "paving", "glass"},
			},
			State: &gameState{},
		},
	}
	tg.FnInitialize = tg.Initialize
	tg.FnUpdate = tg.Update
	tg.FnRender = tg.Render
	tg.FnOnResize = tg.OnResize
	tg.FnShutdown = tg.Shutdown
	return tg, nil
}

func (g *TestGame) state() *gameState {
	return g.State.(*gameState)
}

// Initialize builds a small scene: a row of opaque quads receding from the
// camera, a translucent pane in front of them and a fullscreen UI quad.
func (g *TestGame) Initialize() error {
	core.LogInfo("initializing testbed...")
	sm := g.SystemManager
	state := g.state()

	camera, err := sm.CameraSystem().Acquire(metadata.DEFAULT_CAMERA_NAME)
	if err != nil {
		return err
	}
	state.camera = camera

	materials := map[string]metadata.MaterialConfig{
		"cobblestone": {Name: "cobblestone", DiffuseMap: "cobblestone", DiffuseColour: math.NewVec4(1, 1, 1, 1)},
		"paving":      {Name: "paving", DiffuseMap: "paving", DiffuseColour: math.NewVec4(1, 1, 1, 1)},
		"window":      {Name: "window", DiffuseMap: "glass", DiffuseColour: math.NewVec4(1, 1, 1, 0.5)},
		"hud":         {Name: "hud", ShaderName: metadata.BUILTIN_SHADER_NAME_UI, DiffuseColour: math.NewVec4(1, 1, 1, 1)},
	}
	ids := make(map[string]resources.ID[metadata.Material], len(materials))
	for name, config := range materials {
		id, err := sm.MaterialSystem().Acquire(config, true)
		if err != nil {
			return err
		}
		ids[name] = id
	}

	quad, err := sm.GeometrySystem().Create(systems.GeneratePlaneConfig("test_quad", 2, 2, "cobblestone"), true)
	if err != nil {
		return err
	}
	hud, err := sm.GeometrySystem().Create(systems.GeneratePlaneConfig("hud_quad", 2, 0.25, "hud"), true)
	if err != nil {
		return err
	}

	add := func(object metadata.RenderObject) error {
		h, err := sm.RenderObjectSystem().Add(object)
		if err != nil {
			return err
		}
		state.objects = append(state.objects, h)
		return nil
	}
	for i := 0; i < 6; i++ {
		material := ids["cobblestone"]
		if i%2 == 1 {
			material = ids["paving"]
		}
		if err := add(metadata.RenderObject{
			Name:     fmt.Sprintf("quad_%d", i),
			Geometry: quad,
			Material: material,
			Position: math.NewVec3(float32(i)*2.5-6, 0, -float32(i)*4),
			ViewMask: worldMask,
			Visible:  true,
		}); err != nil {
			return err
		}
	}
	if err := add(metadata.RenderObject{
		Name:     "window",
		Geometry: quad,
		Material: ids["window"],
		Position: math.NewVec3(0, 0, 2),
		ViewMask: worldMask,
		Visible:  true,
	}); err != nil {
		return err
	}
	if err := add(metadata.RenderObject{
		Name:     "hud",
		Geometry: hud,
		Material: ids["hud"],
		ViewMask: uiMask,
		Visible:  true,
	}); err != nil {
		return err
	}

	// The render objects now own the geometry and material references.
	if err := sm.GeometrySystem().Release(quad); err != nil {
		return err
	}
	if err := sm.GeometrySystem().Release(hud); err != nil {
		return err
	}
	for _, id := range ids {
		if err := sm.MaterialSystem().ReleaseByID(id); err != nil {
			return err
		}
	}
	core.LogInfo("testbed scene ready with %d render objects", sm.RenderObjectSystem().Len())
	return nil
}

// Update dollies the camera back and forth along Z.
func (g *TestGame) Update(deltaTime float64) error {
	state := g.state()
	state.DeltaTime += deltaTime
	camera, err := g.SystemManager.CameraSystem().Get(state.camera)
	if err != nil {
		return err
	}
	offset := float32(state.DeltaTime) * 2
	for offset > 20 {
		offset -= 20
	}
	camera.Position = math.NewVec3(0, 1, 10+offset)
	return nil
}

func (g *TestGame) Render(frameNumber uint64, deltaTime float64) error {
	if frameNumber%120 == 0 {
		fps, frameMS := core.MetricsFrame()
		core.LogInfo("frame %d: %.1f fps, %.3f ms", frameNumber, fps, frameMS)
	}
	return nil
}

func (g *TestGame) OnResize(width uint32, height uint32) error {
	state := g.state()
	state.width = width
	state.height = height
	return nil
}

func (g *TestGame) Shutdown() error {
	state := g.state()
	for _, h := range state.objects {
		if err := g.SystemManager.RenderObjectSystem().Remove(h); err != nil {
			core.LogWarn("testbed shutdown: %s", err)
		}
	}
	state.objects = nil
	return g.SystemManager.CameraSystem().Release(metadata.DEFAULT_CAMERA_NAME)
}
