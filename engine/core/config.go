package core

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// SystemsConfig sizes the fixed-capacity registries owned by the systems.
type SystemsConfig struct {
	MaxTextureCount  uint32 `toml:"max_texture_count" yaml:"max_texture_count"`
	MaxShaderCount   uint32 `toml:"max_shader_count" yaml:"max_shader_count"`
	MaxMaterialCount uint32 `toml:"max_material_count" yaml:"max_material_count"`
	MaxGeometryCount uint32 `toml:"max_geometry_count" yaml:"max_geometry_count"`
	MaxRenderObjects uint32 `toml:"max_render_objects" yaml:"max_render_objects"`
	MaxViewCount     uint32 `toml:"max_view_count" yaml:"max_view_count"`
	MaxCameraCount   uint32 `toml:"max_camera_count" yaml:"max_camera_count"`
	// Workers used to load assets off the frame loop.
	JobWorkers uint32 `toml:"job_workers" yaml:"job_workers"`
}

type EngineConfig struct {
	// The application name, used as the log prefix.
	Name     string `toml:"name" yaml:"name"`
	LogLevel string `toml:"log_level" yaml:"log_level"`
	// Number of frames to run before stopping. 0 runs until cancelled.
	Frames    uint64        `toml:"frames" yaml:"frames"`
	TargetFPS uint32        `toml:"target_fps" yaml:"target_fps"`
	Systems   SystemsConfig `toml:"systems" yaml:"systems"`
}

func DefaultEngineConfig() *EngineConfig {
	return &EngineConfig{
		Name:      "Anima",
		LogLevel:  InfoLevel.String(),
		Frames:    0,
		TargetFPS: 60,
		Systems: SystemsConfig{
			MaxTextureCount:  1024,
			MaxShaderCount:   64,
			MaxMaterialCount: 1024,
			MaxGeometryCount: 4096,
			MaxRenderObjects: 16384,
			MaxViewCount:     16,
			MaxCameraCount:   64,
			JobWorkers:       2,
		},
	}
}

func (c *EngineConfig) Validate() error {
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		return err
	}
	s := c.Systems
	checks := []struct {
		name  string
		value uint32
	}{
		{"max_texture_count", s.MaxTextureCount},
		{"max_shader_count", s.MaxShaderCount},
		{"max_material_count", s.MaxMaterialCount},
		{"max_geometry_count", s.MaxGeometryCount},
		{"max_render_objects", s.MaxRenderObjects},
		{"max_view_count", s.MaxViewCount},
		{"max_camera_count", s.MaxCameraCount},
		{"job_workers", s.JobWorkers},
	}
	for _, chk := range checks {
		if chk.value == 0 {
			return fmt.Errorf("%w: systems.%s must be > 0", ErrInvalidConfig, chk.name)
		}
	}
	return nil
}

// Level returns the parsed log level, falling back to info.
func (c *EngineConfig) Level() LogLevel {
	l, err := ParseLogLevel(c.LogLevel)
	if err != nil {
		return InfoLevel
	}
	return l
}

// LoadConfig reads a TOML (.toml) or YAML (.yaml, .yml) file on top of the
// defaults and validates the result.
func LoadConfig(path string) (*EngineConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultEngineConfig()
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(cfg); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, path, err)
		}
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, path, err)
		}
	default:
		return nil, fmt.Errorf("%w: unsupported config format %q", ErrInvalidConfig, ext)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
