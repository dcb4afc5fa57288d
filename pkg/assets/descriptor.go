package assets

// Origin tells where a robot descriptor came from.
type Origin int

// Origins
const (
	// OriginPredefined robots resolve from a configured base path.
	OriginPredefined Origin = iota
	// OriginUploaded robots come from a user-provided file set.
	OriginUploaded
)

// RobotDescriptor is a fully resolved robot: the definition content,
// the optional auxiliary-objects content, and captured mesh blobs keyed
// by their path relative to the mesh directory segment.
type RobotDescriptor struct {
	Name       string
	Definition []byte
	Objects    []byte
	Meshes     map[string][]byte
	Origin     Origin
}

// EnvironmentDescriptor names an environment and the locations of its
// scene definition and optional compressed asset bundle (.tar.zst).
type EnvironmentDescriptor struct {
	Name   string `yaml:"name"`
	Scene  string `yaml:"scene"`
	Assets string `yaml:"assets,omitempty"`
}

// UploadFile is one file of an uploaded set. Path keeps the original
// slash-separated relative path.
type UploadFile struct {
	Path string
	Data []byte
}
