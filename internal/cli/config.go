package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/clustermap/pkg/cluster"
	"github.com/matzehuels/clustermap/pkg/compose"
	"github.com/matzehuels/clustermap/pkg/layout"
	"github.com/matzehuels/clustermap/pkg/pipeline"
)

// fileConfig is the on-disk form of the display options. Every field is
// optional; set fields fill in flags the user did not pass.
type fileConfig struct {
	Metric          string   `toml:"metric" yaml:"metric"`
	Method          string   `toml:"method" yaml:"method"`
	RowClusters     *int     `toml:"row_clusters" yaml:"row_clusters"`
	ColClusters     *int     `toml:"col_clusters" yaml:"col_clusters"`
	TopDendrogram   *bool    `toml:"top_dendrogram" yaml:"top_dendrogram"`
	LeftDendrogram  *bool    `toml:"left_dendrogram" yaml:"left_dendrogram"`
	Colorbar        *bool    `toml:"colorbar" yaml:"colorbar"`
	Histogram       *bool    `toml:"histogram" yaml:"histogram"`
	LabelFontSize   *float64 `toml:"label_font_size" yaml:"label_font_size"`
	XLabelRotation  *float64 `toml:"xlabel_rotation" yaml:"xlabel_rotation"`
	YLabelRotation  *float64 `toml:"ylabel_rotation" yaml:"ylabel_rotation"`
	Colormap        string   `toml:"colormap" yaml:"colormap"`
	VMin            *float64 `toml:"vmin" yaml:"vmin"`
	VMax            *float64 `toml:"vmax" yaml:"vmax"`
	DendrogramRatio *float64 `toml:"dendrogram_ratio" yaml:"dendrogram_ratio"`
	Width           *float64 `toml:"width" yaml:"width"`
	Height          *float64 `toml:"height" yaml:"height"`
	Title           string   `toml:"title" yaml:"title"`
	Formats         []string `toml:"formats" yaml:"formats"`
	DPI             *float64 `toml:"dpi" yaml:"dpi"`
	Background      string   `toml:"background" yaml:"background"`
	ClusterColors   []string `toml:"cluster_colors" yaml:"cluster_colors"`
}

// loadConfig reads a TOML (.toml) or YAML (.yml, .yaml) config file.
func loadConfig(path string) (*fileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg fileConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.Decode(string(data), &cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case ".yml", ".yaml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("unsupported config format %q (use .toml, .yml or .yaml)", filepath.Ext(path))
	}
	return &cfg, nil
}

// figureFlags holds the flags shared by every command that composes a figure.
type figureFlags struct {
	config          string
	metric          string
	method          string
	rowClusters     int
	colClusters     int
	topDendrogram   bool
	leftDendrogram  bool
	colorbar        bool
	histogram       bool
	labelFontSize   float64
	xLabelRotation  float64
	yLabelRotation  float64
	colormap        string
	vmin            float64
	vmax            float64
	dendrogramRatio float64
	width           float64
	height          float64
	title           string
	formats         string
	dpi             float64
	background      string
	clusterColors   []string
}

// newFigureFlags returns the CLI defaults. Unlike the library, the CLI draws
// the column dendrogram unless told otherwise.
func newFigureFlags() *figureFlags {
	return &figureFlags{
		metric:          string(cluster.DefaultMetric),
		method:          string(cluster.DefaultMethod),
		topDendrogram:   true,
		leftDendrogram:  true,
		colorbar:        true,
		labelFontSize:   compose.DefaultLabelFontSize,
		xLabelRotation:  compose.DefaultXLabelRotation,
		colormap:        compose.DefaultColormap,
		dendrogramRatio: layout.DefaultDendrogramRatio,
		width:           layout.DefaultWidth,
		height:          layout.DefaultHeight,
		formats:         pipeline.FormatSVG,
	}
}

// register adds the composition flags to cmd. Output flags are only added
// when withOutput is set.
func (f *figureFlags) register(cmd *cobra.Command, withOutput bool) {
	fl := cmd.Flags()
	fl.StringVar(&f.config, "config", "", "config file with display options (.toml, .yml, .yaml)")
	fl.StringVar(&f.metric, "metric", f.metric, "distance metric: "+strings.Join(cluster.Metrics(), ", "))
	fl.StringVar(&f.method, "method", f.method, "linkage method: "+strings.Join(cluster.Methods(), ", "))
	fl.IntVarP(&f.rowClusters, "row-clusters", "k", 0, "number of row clusters to color (0 = none)")
	fl.IntVar(&f.colClusters, "col-clusters", 0, "number of column clusters to color (0 = none)")
	fl.BoolVar(&f.topDendrogram, "top-dendrogram", f.topDendrogram, "cluster columns and draw their dendrogram")
	fl.BoolVar(&f.leftDendrogram, "left-dendrogram", f.leftDendrogram, "draw the row dendrogram")
	fl.BoolVar(&f.colorbar, "colorbar", f.colorbar, "draw the colorbar")
	fl.BoolVar(&f.histogram, "histogram", false, "overlay a value histogram on the colorbar")
	fl.Float64Var(&f.labelFontSize, "label-size", f.labelFontSize, "tick label font size in points")
	fl.Float64Var(&f.xLabelRotation, "xlabel-rotation", f.xLabelRotation, "column label rotation in degrees")
	fl.Float64Var(&f.yLabelRotation, "ylabel-rotation", 0, "row label rotation in degrees")
	fl.StringVar(&f.colormap, "colormap", f.colormap, "color scale: "+strings.Join(compose.Colormaps(), ", "))
	fl.Float64Var(&f.vmin, "vmin", 0, "lower end of the color scale (default: data minimum)")
	fl.Float64Var(&f.vmax, "vmax", 0, "upper end of the color scale (default: data maximum)")
	fl.Float64Var(&f.dendrogramRatio, "dendrogram-ratio", f.dendrogramRatio, "share of the figure given to each dendrogram")
	fl.Float64Var(&f.width, "width", f.width, "figure width in points")
	fl.Float64Var(&f.height, "height", f.height, "figure height in points")
	fl.StringVar(&f.title, "title", "", "figure title")
	if withOutput {
		fl.StringVarP(&f.formats, "format", "f", f.formats, "output format(s), comma-separated: "+strings.Join(pipeline.Formats(), ", "))
		fl.Float64Var(&f.dpi, "dpi", 0, "PNG resolution (default 144)")
		fl.StringVar(&f.background, "background", "", "background color as hex (default transparent)")
		fl.StringSliceVar(&f.clusterColors, "cluster-colors", nil, "cluster colors as hex, comma-separated")
	}
}

// options builds pipeline options from flags, filling unset flags from the
// config file when one was given.
func (f *figureFlags) options(cmd *cobra.Command) (pipeline.Options, error) {
	if f.config != "" {
		cfg, err := loadConfig(f.config)
		if err != nil {
			return pipeline.Options{}, err
		}
		f.merge(cmd, cfg)
	}

	copts := compose.Options{
		Metric:             cluster.Metric(f.metric),
		Method:             cluster.Method(f.method),
		NumRowClusters:     f.rowClusters,
		NumColClusters:     f.colClusters,
		TopDendrogram:      f.topDendrogram,
		HideLeftDendrogram: !f.leftDendrogram,
		HideColorbar:       !f.colorbar,
		Histogram:          f.histogram,
		LabelFontSize:      f.labelFontSize,
		XLabelRotation:     compose.Float(f.xLabelRotation),
		YLabelRotation:     f.yLabelRotation,
		Colormap:           f.colormap,
		DendrogramRatio:    f.dendrogramRatio,
		Width:              f.width,
		Height:             f.height,
		Title:              f.title,
	}
	if changed(cmd, "vmin") {
		copts.VMin = compose.Float(f.vmin)
	}
	if changed(cmd, "vmax") {
		copts.VMax = compose.Float(f.vmax)
	}

	return pipeline.Options{
		Compose:       copts,
		Formats:       parseFormats(f.formats),
		DPI:           f.dpi,
		Background:    f.background,
		ClusterColors: f.clusterColors,
	}, nil
}

// merge copies config values into flags the user did not set explicitly.
func (f *figureFlags) merge(cmd *cobra.Command, cfg *fileConfig) {
	setString := func(name string, dst *string, v string) {
		if v != "" && !changed(cmd, name) {
			*dst = v
		}
	}
	setInt := func(name string, dst *int, v *int) {
		if v != nil && !changed(cmd, name) {
			*dst = *v
		}
	}
	setBool := func(name string, dst *bool, v *bool) {
		if v != nil && !changed(cmd, name) {
			*dst = *v
		}
	}
	setFloat := func(name string, dst *float64, v *float64) {
		if v != nil && !changed(cmd, name) {
			*dst = *v
		}
	}

	setString("metric", &f.metric, cfg.Metric)
	setString("method", &f.method, cfg.Method)
	setInt("row-clusters", &f.rowClusters, cfg.RowClusters)
	setInt("col-clusters", &f.colClusters, cfg.ColClusters)
	setBool("top-dendrogram", &f.topDendrogram, cfg.TopDendrogram)
	setBool("left-dendrogram", &f.leftDendrogram, cfg.LeftDendrogram)
	setBool("colorbar", &f.colorbar, cfg.Colorbar)
	setBool("histogram", &f.histogram, cfg.Histogram)
	setFloat("label-size", &f.labelFontSize, cfg.LabelFontSize)
	setFloat("xlabel-rotation", &f.xLabelRotation, cfg.XLabelRotation)
	setFloat("ylabel-rotation", &f.yLabelRotation, cfg.YLabelRotation)
	setString("colormap", &f.colormap, cfg.Colormap)
	setFloat("dendrogram-ratio", &f.dendrogramRatio, cfg.DendrogramRatio)
	setFloat("width", &f.width, cfg.Width)
	setFloat("height", &f.height, cfg.Height)
	setString("title", &f.title, cfg.Title)
	setFloat("dpi", &f.dpi, cfg.DPI)
	setString("background", &f.background, cfg.Background)
	if len(cfg.Formats) > 0 && !changed(cmd, "format") {
		f.formats = strings.Join(cfg.Formats, ",")
	}
	if len(cfg.ClusterColors) > 0 && !changed(cmd, "cluster-colors") {
		f.clusterColors = cfg.ClusterColors
	}

	// vmin and vmax only apply when marked as changed.
	if cfg.VMin != nil && !changed(cmd, "vmin") {
		_ = cmd.Flags().Set("vmin", fmt.Sprint(*cfg.VMin))
	}
	if cfg.VMax != nil && !changed(cmd, "vmax") {
		_ = cmd.Flags().Set("vmax", fmt.Sprint(*cfg.VMax))
	}
}

func changed(cmd *cobra.Command, name string) bool {
	fl := cmd.Flags().Lookup(name)
	return fl != nil && fl.Changed
}
