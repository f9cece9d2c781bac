package metadata

const (
	BUILTIN_SHADER_NAME_WORLD  string = "Shader.Builtin.World"
	BUILTIN_SHADER_NAME_SKYBOX string = "Shader.Builtin.Skybox"
	BUILTIN_SHADER_NAME_UI     string = "Shader.Builtin.UI"
)

type ShaderStage int

const (
	ShaderStageVertex   ShaderStage = 0x1
	ShaderStageFragment ShaderStage = 0x2
)

// Shader describes a compiled program. Compilation happens elsewhere; the
// core only keeps the pipeline the backend created for it.
type Shader struct {
	Name       string
	Stages     []ShaderStage
	StageFiles []string
	Pipeline   PipelineHandle
}
