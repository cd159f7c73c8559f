// Package pipeline runs the compose → render pipeline with caching.
//
// The CLI and the HTTP server both go through a [Runner], so they share
// validation, defaults, cache keys and logging.
//
// # Stages
//
//  1. Compose: cluster rows and columns (linkages come from the cache when
//     possible) and lay out the figure.
//  2. Render: produce one artifact per requested format. When every format
//     is cached for the same figure, rendering is skipped.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, x, pipeline.Options{
//	    Compose: compose.Options{NumRowClusters: 3, TopDendrogram: true},
//	    Formats: []string{"svg", "json"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"image/color"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/matzehuels/clustermap/pkg/cache"
	"github.com/matzehuels/clustermap/pkg/compose"
	"github.com/matzehuels/clustermap/pkg/errors"
	"github.com/matzehuels/clustermap/pkg/render"
)

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
	FormatJSON = "json"
	// FormatDOT is the Graphviz source of the row tree.
	FormatDOT = "dot"
	// FormatTree is the row tree rendered by Graphviz as SVG.
	FormatTree = "tree"
	// FormatCSV lists leaf order and cluster ids per row and column.
	FormatCSV = "csv"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:  true,
	FormatPNG:  true,
	FormatPDF:  true,
	FormatJSON: true,
	FormatDOT:  true,
	FormatTree: true,
	FormatCSV:  true,
}

// Extension returns the file name suffix for a format.
func Extension(format string) string {
	if format == FormatTree {
		return ".tree.svg"
	}
	return "." + format
}

// Formats returns the supported formats in a stable order.
func Formats() []string {
	return []string{FormatSVG, FormatPNG, FormatPDF, FormatJSON, FormatDOT, FormatTree, FormatCSV}
}

// Options configures one pipeline run. It decodes from the JSON body of an
// API request.
type Options struct {
	// Compose configures clustering and layout.
	Compose compose.Options `json:"compose"`

	// Formats lists the artifacts to produce. Empty means svg.
	Formats []string `json:"formats,omitempty"`
	// DPI applies to png output. Zero means render.DefaultDPI.
	DPI float64 `json:"dpi,omitempty"`
	// Background is a hex color; empty means transparent.
	Background string `json:"background,omitempty"`
	// ClusterColors overrides the cluster palette with hex colors.
	ClusterColors []string `json:"cluster_colors,omitempty"`
	// Detailed annotates tree output with merge heights.
	Detailed bool `json:"detailed,omitempty"`
	// Refresh recomputes everything and overwrites cached entries.
	Refresh bool `json:"refresh,omitempty"`

	// Logger receives progress messages. Nil uses the runner's logger.
	Logger *log.Logger `json:"-"`

	validated bool
	style     []render.Option
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Figure is the composed figure.
	Figure *compose.Figure
	// FigureHash is the content hash of the figure, used in artifact keys.
	FigureHash string
	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte
	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Rows        int
	Cols        int
	ComposeTime time.Duration
	RenderTime  time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	RowLinkageHit bool // Whether the row linkage came from cache
	ColLinkageHit bool // Whether the column linkage came from cache
	RenderHit     bool // Whether all artifacts came from cache
}

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeUnsupported,
			"invalid format: %q (must be one of: %s)", format, strings.Join(Formats(), ", "))
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateAndSetDefaults checks the options and applies defaults.
// Calling it more than once has no further effect.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if o.DPI < 0 {
		return errors.Validation("dpi must not be negative, got %g", o.DPI)
	}
	if o.DPI == 0 {
		o.DPI = render.DefaultDPI
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}

	o.style = o.style[:0]
	if o.Background != "" {
		c, err := parseColor(o.Background)
		if err != nil {
			return err
		}
		o.style = append(o.style, render.WithBackground(c))
	}
	if len(o.ClusterColors) > 0 {
		colors := make([]color.Color, len(o.ClusterColors))
		for i, hex := range o.ClusterColors {
			c, err := parseColor(hex)
			if err != nil {
				return err
			}
			colors[i] = c
		}
		o.style = append(o.style, render.WithClusterColors(colors...))
	}

	o.validated = true
	return nil
}

// ArtifactKeyOpts returns cache key options for one rendered format.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	opts := cache.ArtifactKeyOpts{
		Format:       format,
		Background:   strings.ToLower(o.Background),
		ClusterColor: o.ClusterColors,
	}
	switch format {
	case FormatPNG:
		opts.DPI = o.DPI
	case FormatDOT, FormatTree:
		opts.Detailed = o.Detailed
	}
	return opts
}

func parseColor(s string) (colorful.Color, error) {
	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return colorful.Color{}, errors.Validation("invalid color %q", s)
	}
	return c, nil
}
