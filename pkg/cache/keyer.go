package cache

import "fmt"

// Keyer derives cache keys.
type Keyer interface {
	// LinkageKey identifies the linkage of one axis of a matrix.
	LinkageKey(matrixHash string, opts LinkageKeyOpts) string
	// ArtifactKey identifies one rendered output of a figure.
	ArtifactKey(figureHash string, opts ArtifactKeyOpts) string
}

// LinkageKeyOpts are the inputs besides the matrix that determine a linkage.
type LinkageKeyOpts struct {
	Axis   string `json:"axis"`
	Metric string `json:"metric"`
	Method string `json:"method"`
}

// ArtifactKeyOpts are the inputs besides the figure that determine an
// artifact.
type ArtifactKeyOpts struct {
	Format       string   `json:"format"`
	DPI          float64  `json:"dpi,omitempty"`
	Background   string   `json:"background,omitempty"`
	ClusterColor []string `json:"cluster_colors,omitempty"`
	Detailed     bool     `json:"detailed,omitempty"`
}

// DefaultKeyer hashes key inputs with SHA-256.
type DefaultKeyer struct{}

// NewDefaultKeyer returns a DefaultKeyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// LinkageKey implements Keyer.
func (DefaultKeyer) LinkageKey(matrixHash string, opts LinkageKeyOpts) string {
	return hashKey("linkage", matrixHash, opts)
}

// ArtifactKey implements Keyer.
func (DefaultKeyer) ArtifactKey(figureHash string, opts ArtifactKeyOpts) string {
	return hashKey(fmt.Sprintf("artifact:%s", opts.Format), figureHash, opts)
}
