package domain

// Size is a width/height pair in device pixels (or terminal cells,
// depending on the host).
type Size struct {
	// Width is the horizontal extent.
	Width float64

	// Height is the vertical extent.
	Height float64
}

// IsZero reports whether the size has no usable area.
func (s Size) IsZero() bool {
	return s.Width <= 0 || s.Height <= 0
}

// Scaled returns the size multiplied by the given zoom factor.
func (s Size) Scaled(zoom float64) Size {
	return Size{Width: s.Width * zoom, Height: s.Height * zoom}
}

// PixelPoint is a point in viewport pixels.
type PixelPoint struct {
	X float64
	Y float64
}

// PixelRect is an axis-aligned rectangle in viewport pixels.
type PixelRect struct {
	Left   float64
	Top    float64
	Right  float64
	Bottom float64
}

// PageBox is the on-screen box of a rendered page, relative to the
// viewport origin.
type PageBox struct {
	Left   float64
	Top    float64
	Width  float64
	Height float64
}

// IsZero reports whether the box has no usable area. A zero box means
// the page is not yet renderable and callers must retry later.
func (b PageBox) IsZero() bool {
	return b.Width <= 0 || b.Height <= 0
}

// Size returns the box dimensions.
func (b PageBox) Size() Size {
	return Size{Width: b.Width, Height: b.Height}
}

// VerticalCenter returns the viewport-relative vertical midpoint.
func (b PageBox) VerticalCenter() float64 {
	return b.Top + b.Height/2
}

// NormalizedPoint is a position in [0,1]² relative to a page's
// intrinsic size, independent of zoom.
type NormalizedPoint struct {
	X float64
	Y float64
}

// NormalizedBox is a rectangle in [0,1] page-relative units.
type NormalizedBox struct {
	Left   float64
	Top    float64
	Right  float64
	Bottom float64
	Width  float64
	Height float64
}

// ToNormalized converts a viewport pixel point into page-relative
// normalized coordinates. Each axis is clamped to [0,1], so points
// outside the page are clipped to its edge. Returns false when the
// page box has no area yet.
func ToNormalized(p PixelPoint, box PageBox) (NormalizedPoint, bool) {
	if box.IsZero() {
		return NormalizedPoint{}, false
	}
	return NormalizedPoint{
		X: clamp01((p.X - box.Left) / box.Width),
		Y: clamp01((p.Y - box.Top) / box.Height),
	}, true
}

// ToPixel converts a normalized page-relative point back into viewport
// pixels using the page's current on-screen box. Returns false when
// the page box has no area yet.
func ToPixel(n NormalizedPoint, box PageBox) (PixelPoint, bool) {
	if box.IsZero() {
		return PixelPoint{}, false
	}
	return PixelPoint{
		X: box.Left + n.X*box.Width,
		Y: box.Top + n.Y*box.Height,
	}, true
}

// NormalizeRect converts a viewport pixel rectangle into a normalized
// box relative to the given page box. Components are clamped to [0,1],
// so a selection that overflows the page is recorded clipped to it.
func NormalizeRect(r PixelRect, box PageBox) (NormalizedBox, bool) {
	tl, ok := ToNormalized(PixelPoint{X: r.Left, Y: r.Top}, box)
	if !ok {
		return NormalizedBox{}, false
	}
	br, ok := ToNormalized(PixelPoint{X: r.Right, Y: r.Bottom}, box)
	if !ok {
		return NormalizedBox{}, false
	}
	return NormalizedBox{
		Left:   tl.X,
		Top:    tl.Y,
		Right:  br.X,
		Bottom: br.Y,
		Width:  br.X - tl.X,
		Height: br.Y - tl.Y,
	}, true
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
