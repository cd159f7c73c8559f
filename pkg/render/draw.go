package render

import (
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/matzehuels/clustermap/pkg/cluster"
	"github.com/matzehuels/clustermap/pkg/compose"
	"github.com/matzehuels/clustermap/pkg/errors"
	"github.com/matzehuels/clustermap/pkg/layout"
)

const (
	labelGap   = 2 // points between a region edge and its labels
	tickLength = 3
	// headroom above the root link so it does not touch the region edge.
	headroom = 1.05
)

// orientation of a dendrogram: where its root points.
type orientation int

const (
	rootLeft orientation = iota // row dendrogram, leaves on the right
	rootTop                     // column dendrogram, leaves at the bottom
)

// Draw paints f onto c, scaled to fill it.
func Draw(c draw.Canvas, f *compose.Figure, opts ...Option) error {
	if f == nil || f.Heatmap == nil || f.Data == nil {
		return errors.New(errors.ErrCodeInvalidInput, "figure is not composed")
	}
	r := newRenderer(opts)

	if r.background != nil {
		c.FillPolygon(r.background, rectPoints(c.Rectangle))
	}

	for _, region := range f.Regions() {
		if region.Hidden {
			continue
		}
		box := area(c, region.Bounds)
		switch region.Name {
		case compose.RegionLeftDendrogram:
			r.drawDendrogram(c, box, f.Rows, rootLeft, region.LineWidth)
		case compose.RegionTopDendrogram:
			r.drawDendrogram(c, box, f.Cols, rootTop, region.LineWidth)
		case compose.RegionHeatmap:
			if err := r.drawHeatmap(c, box, f); err != nil {
				return err
			}
		case compose.RegionColorbar:
			if err := r.drawColorbar(c, box, f); err != nil {
				return err
			}
		}
		if region.Frame {
			c.StrokeLines(draw.LineStyle{Color: r.textColor, Width: vg.Points(region.LineWidth)}, closed(rectPoints(box)))
		}
		if region.Title != "" {
			sty := r.textStyle(f.LabelFontSize*1.25, 0, text.XCenter, text.YBottom)
			c.FillText(sty, vg.Point{X: (box.Min.X + box.Max.X) / 2, Y: box.Max.Y + labelGap}, region.Title)
		}
	}

	if f.Title != "" && f.Grid.HasTitle {
		box := area(c, f.Grid.Title)
		sty := r.textStyle(compose.DefaultTitleFontSize, 0, text.XCenter, text.YCenter)
		c.FillText(sty, vg.Point{X: (box.Min.X + box.Max.X) / 2, Y: (box.Min.Y + box.Max.Y) / 2}, f.Title)
	}
	return nil
}

func (r renderer) drawHeatmap(c draw.Canvas, box vg.Rectangle, f *compose.Figure) error {
	rows, cols := f.Dims()
	cw := (box.Max.X - box.Min.X) / vg.Length(cols)
	ch := (box.Max.Y - box.Min.Y) / vg.Length(rows)
	cm := f.Scale.ColorMap()

	for p := 0; p < rows; p++ {
		y0 := box.Min.Y + vg.Length(p)*ch
		for q := 0; q < cols; q++ {
			clr, err := cm.At(f.Scale.Clamp(f.Value(p, q)))
			if err != nil {
				return err
			}
			x0 := box.Min.X + vg.Length(q)*cw
			c.FillPolygon(clr, rectPoints(vg.Rectangle{
				Min: vg.Point{X: x0, Y: y0},
				Max: vg.Point{X: x0 + cw, Y: y0 + ch},
			}))
		}
	}

	if f.LabelFontSize <= 0 {
		return nil
	}
	rowStyle := r.textStyle(f.LabelFontSize, f.YLabelRotation, text.XLeft, text.YCenter)
	for p, label := range f.Rows.Labels {
		y := box.Min.Y + (vg.Length(p)+0.5)*ch
		c.FillText(rowStyle, vg.Point{X: box.Max.X + labelGap, Y: y}, label)
	}
	colStyle := r.textStyle(f.LabelFontSize, f.XLabelRotation, columnAlign(f.XLabelRotation), text.YTop)
	for q, label := range f.Cols.Labels {
		x := box.Min.X + (vg.Length(q)+0.5)*cw
		c.FillText(colStyle, vg.Point{X: x, Y: box.Min.Y - labelGap}, label)
	}
	return nil
}

// columnAlign anchors rotated column labels at the end nearest their tick.
func columnAlign(rotation float64) text.XAlignment {
	switch {
	case rotation < 0:
		return text.XLeft
	case rotation > 0:
		return text.XRight
	}
	return text.XCenter
}

func (r renderer) drawDendrogram(c draw.Canvas, box vg.Rectangle, axis compose.Axis, o orientation, width float64) {
	if axis.Dendrogram == nil {
		return
	}
	k := 0
	if axis.Cut != nil {
		k = axis.Cut.K
	}
	for _, link := range axis.Dendrogram.Segments {
		sty := draw.LineStyle{Color: r.clusterColor(link.Cluster, k), Width: vg.Points(width)}
		c.StrokeLines(sty, linkPoints(box, *axis.Dendrogram, link, o))
	}
}

// linkPoints maps a link from leaf/height units into the region.
func linkPoints(box vg.Rectangle, d cluster.Dendrogram, link cluster.Segment, o orientation) []vg.Point {
	n := float64(len(d.Leaves))
	top := d.MaxHeight * headroom
	if top == 0 {
		top = 1
	}
	w, h := box.Max.X-box.Min.X, box.Max.Y-box.Min.Y
	pts := make([]vg.Point, 4)
	for i := range pts {
		along := link.X[i] / n
		up := link.Y[i] / top
		switch o {
		case rootLeft:
			pts[i] = vg.Point{X: box.Max.X - vg.Length(up)*w, Y: box.Min.Y + vg.Length(along)*h}
		case rootTop:
			pts[i] = vg.Point{X: box.Min.X + vg.Length(along)*w, Y: box.Min.Y + vg.Length(up)*h}
		}
	}
	return pts
}

func (r renderer) drawColorbar(c draw.Canvas, box vg.Rectangle, f *compose.Figure) error {
	s := f.Scale
	cm := s.ColorMap()
	lo, hi := cm.Min(), cm.Max()
	n := r.gradientSteps
	h := box.Max.Y - box.Min.Y
	for i := 0; i < n; i++ {
		v := lo + (float64(i)+0.5)/float64(n)*(hi-lo)
		clr, err := cm.At(s.Clamp(v))
		if err != nil {
			return err
		}
		c.FillPolygon(clr, rectPoints(vg.Rectangle{
			Min: vg.Point{X: box.Min.X, Y: box.Min.Y + h*vg.Length(i)/vg.Length(n)},
			Max: vg.Point{X: box.Max.X, Y: box.Min.Y + h*vg.Length(i+1)/vg.Length(n)},
		}))
	}

	tickStyle := draw.LineStyle{Color: r.textColor, Width: vg.Points(0.5)}
	labelStyle := r.textStyle(f.LabelFontSize, 0, text.XLeft, text.YCenter)
	for _, t := range s.Ticks {
		if t.Value < lo || t.Value > hi {
			continue
		}
		y := box.Min.Y + vg.Length(s.Normalize(t.Value))*h
		c.StrokeLine2(tickStyle, box.Max.X, y, box.Max.X+tickLength, y)
		if f.LabelFontSize > 0 {
			c.FillText(labelStyle, vg.Point{X: box.Max.X + tickLength + labelGap, Y: y}, t.Label)
		}
	}

	if f.Histogram != nil {
		r.drawHistogram(c, box, f)
	}
	return nil
}

// drawHistogram overlays the value distribution as a step curve: bin counts
// grow to the right, bins run bottom to top.
func (r renderer) drawHistogram(c draw.Canvas, box vg.Rectangle, f *compose.Figure) {
	hist := f.Histogram
	if len(hist.Counts) == 0 {
		return
	}
	w, h := box.Max.X-box.Min.X, box.Max.Y-box.Min.Y
	e0, eN := hist.Edges[0], hist.Edges[len(hist.Edges)-1]
	edgeY := func(i int) vg.Length {
		return box.Min.Y + vg.Length((hist.Edges[i]-e0)/(eN-e0))*h
	}

	counts := hist.Normalized()
	pts := make([]vg.Point, 0, 2*len(counts))
	for i, cnt := range counts {
		x := box.Min.X + vg.Length(cnt)*w
		pts = append(pts, vg.Point{X: x, Y: edgeY(i)}, vg.Point{X: x, Y: edgeY(i + 1)})
	}
	c.StrokeLines(draw.LineStyle{Color: color.NRGBA{A: 0x80}, Width: vg.Points(1)}, pts)

	if f.LabelFontSize <= 0 {
		return
	}
	y := box.Min.Y - labelGap
	sty := r.textStyle(f.LabelFontSize, 0, text.XCenter, text.YTop)
	c.FillText(sty, vg.Point{X: box.Min.X, Y: y}, "0")
	c.FillText(sty, vg.Point{X: box.Max.X, Y: y}, hist.MaxLabel())
	line := vg.Points(f.LabelFontSize * 1.2)
	mid := (box.Min.X + box.Max.X) / 2
	c.FillText(sty, vg.Point{X: mid, Y: y - line}, "Histogram")
	c.FillText(sty, vg.Point{X: mid, Y: y - 2*line}, "(% count)")
}

func (r renderer) textStyle(size, rotation float64, x text.XAlignment, y text.YAlignment) text.Style {
	fnt := plot.DefaultFont
	fnt.Size = vg.Points(size)
	return text.Style{
		Color:    r.textColor,
		Font:     fnt,
		Rotation: rotation * math.Pi / 180,
		XAlign:   x,
		YAlign:   y,
		Handler:  plot.DefaultTextHandler,
	}
}

// area converts a fractional rect into canvas coordinates.
func area(c draw.Canvas, r layout.Rect) vg.Rectangle {
	w := c.Max.X - c.Min.X
	h := c.Max.Y - c.Min.Y
	return vg.Rectangle{
		Min: vg.Point{X: c.Min.X + vg.Length(r.Left)*w, Y: c.Min.Y + vg.Length(r.Bottom)*h},
		Max: vg.Point{X: c.Min.X + vg.Length(r.Right)*w, Y: c.Min.Y + vg.Length(r.Top)*h},
	}
}

func rectPoints(r vg.Rectangle) []vg.Point {
	return []vg.Point{
		{X: r.Min.X, Y: r.Min.Y},
		{X: r.Max.X, Y: r.Min.Y},
		{X: r.Max.X, Y: r.Max.Y},
		{X: r.Min.X, Y: r.Max.Y},
	}
}

func closed(pts []vg.Point) []vg.Point {
	return append(pts, pts[0])
}
