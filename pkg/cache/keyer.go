package cache

import "fmt"

// Keyer builds cache keys.
type Keyer interface {
	// TreeKey identifies a finished growth tree.
	TreeKey(opts TreeKeyOpts) string
	// ArtifactKey identifies one rendered output of a tree.
	ArtifactKey(treeKey string, opts ArtifactKeyOpts) string
}

// TreeKeyOpts are the inputs that fully determine a run.
type TreeKeyOpts struct {
	Source     string `json:"source"`
	Seed       uint64 `json:"seed"`
	ParamsHash string `json:"params"` // hash of the remaining growth options
}

// ArtifactKeyOpts are the inputs that determine a rendered artifact.
type ArtifactKeyOpts struct {
	Format      string  `json:"format"`
	Width       int     `json:"width,omitempty"`
	Height      int     `json:"height,omitempty"`
	Background  string  `json:"background,omitempty"`
	Stroke      string  `json:"stroke,omitempty"`
	LineWidth   float64 `json:"line_width,omitempty"`
	Transparent bool    `json:"transparent,omitempty"`
	Fit         bool    `json:"fit,omitempty"`
	Detailed    bool    `json:"detailed,omitempty"`
}

// DefaultKeyer hashes key inputs with SHA-256.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// TreeKey returns "tree:<source>:<hash>".
func (DefaultKeyer) TreeKey(opts TreeKeyOpts) string {
	return hashKey(fmt.Sprintf("tree:%s", opts.Source), opts)
}

// ArtifactKey returns "artifact:<format>:<hash>".
func (DefaultKeyer) ArtifactKey(treeKey string, opts ArtifactKeyOpts) string {
	return hashKey(fmt.Sprintf("artifact:%s", opts.Format), treeKey, opts)
}

var _ Keyer = DefaultKeyer{}
