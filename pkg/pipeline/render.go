package pipeline

import (
	"bytes"
	"context"
	"fmt"

	"github.com/matzehuels/clustermap/pkg/compose"
	clio "github.com/matzehuels/clustermap/pkg/io"
	"github.com/matzehuels/clustermap/pkg/render"
	"github.com/matzehuels/clustermap/pkg/render/tree"
)

// Render generates output artifacts in the requested formats.
func Render(ctx context.Context, f *compose.Figure, opts Options) (map[string][]byte, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		data, err := RenderFormat(ctx, f, format, opts)
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}

// RenderFormat renders a single format. opts must already be validated.
func RenderFormat(ctx context.Context, f *compose.Figure, format string, opts Options) ([]byte, error) {
	switch format {
	case FormatSVG:
		return render.RenderSVG(f, opts.style...)
	case FormatPNG:
		return render.RenderPNG(f, render.WithDPI(opts.DPI), render.WithPNGOptions(opts.style...))
	case FormatPDF:
		return render.RenderPDF(f, opts.style...)
	case FormatJSON:
		return render.RenderJSON(f, render.WithJSONData(), render.WithJSONLinkage())
	case FormatDOT:
		return []byte(rowTreeDOT(f, opts)), nil
	case FormatTree:
		return tree.RenderSVG(ctx, rowTreeDOT(f, opts))
	case FormatCSV:
		var buf bytes.Buffer
		if err := clio.WriteClusters(f, &buf); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}
	return nil, ValidateFormat(format)
}

func rowTreeDOT(f *compose.Figure, opts Options) string {
	rows := f.Rows
	// Axis labels are in display order; the tree wants them by original index.
	labels := make([]string, len(rows.Labels))
	for pos, idx := range rows.Leaves {
		labels[idx] = rows.Labels[pos]
	}
	return tree.ToDOT(rows.Linkage, labels, tree.Options{
		Detailed: opts.Detailed,
		Cut:      rows.Cut,
	})
}
