package layout

// Rect is an axis-aligned region of the figure. Coordinates are fractions of
// the figure size with the origin at the bottom-left corner.
type Rect struct {
	Left   float64 `json:"left"`
	Bottom float64 `json:"bottom"`
	Right  float64 `json:"right"`
	Top    float64 `json:"top"`
}

// Width returns the horizontal span of the rect.
func (r Rect) Width() float64 { return r.Right - r.Left }

// Height returns the vertical span of the rect.
func (r Rect) Height() float64 { return r.Top - r.Bottom }

// CenterX returns the horizontal center point of the rect.
func (r Rect) CenterX() float64 { return (r.Left + r.Right) / 2 }

// CenterY returns the vertical center point of the rect.
func (r Rect) CenterY() float64 { return (r.Bottom + r.Top) / 2 }

// Empty reports whether the rect has no area.
func (r Rect) Empty() bool { return r.Width() <= 0 || r.Height() <= 0 }

// Overlaps reports whether r and o share interior area. Touching edges do not
// count as overlap.
func (r Rect) Overlaps(o Rect) bool {
	if r.Empty() || o.Empty() {
		return false
	}
	return r.Left < o.Right-eps && o.Left < r.Right-eps &&
		r.Bottom < o.Top-eps && o.Bottom < r.Top-eps
}

// Within reports whether r lies inside o.
func (r Rect) Within(o Rect) bool {
	return r.Left >= o.Left-eps && r.Right <= o.Right+eps &&
		r.Bottom >= o.Bottom-eps && r.Top <= o.Top+eps
}

// Scale converts the fractional rect into absolute units for a figure of the
// given size.
func (r Rect) Scale(w, h float64) Rect {
	return Rect{Left: r.Left * w, Bottom: r.Bottom * h, Right: r.Right * w, Top: r.Top * h}
}

// Unit is the whole figure.
var Unit = Rect{Left: 0, Bottom: 0, Right: 1, Top: 1}
