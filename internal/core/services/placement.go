package services

import "github.com/custodia-labs/papyr/internal/core/domain"

const (
	// panelPadding is the minimum distance kept between the panel and
	// the viewport edges.
	panelPadding = 16

	// panelScrollbarAllowance is reserved for a vertical scrollbar
	// when centering horizontally.
	panelScrollbarAllowance = 17

	// panelGap separates the panel from its anchor when flipped to
	// the opposite side.
	panelGap = 10
)

// PlacePanel computes a collision-avoiding position for a floating
// panel anchored to a viewport point. The panel's measured size is
// only known post-paint, so placement must be re-run once measured
// and again whenever the anchor or the content size changes.
func PlacePanel(req domain.PanelRequest, viewport domain.Size) domain.PlacedPanel {
	anchor := req.Anchor
	panel := req.Panel

	x := anchor.X
	if anchor.X+panel.Width > viewport.Width-panelPadding {
		if anchor.X-panel.Width > panelPadding {
			// Doesn't fit to the right but fits to the left.
			x = anchor.X - panel.Width - panelGap
		} else {
			// Fits neither side: center horizontally.
			x = (viewport.Width - panel.Width - panelScrollbarAllowance) / 2
			if x < panelPadding {
				x = panelPadding
			}
		}
	} else if anchor.X < panelPadding {
		x = panelPadding
	}

	y := anchor.Y
	var maxHeight float64
	if anchor.Y+panel.Height > viewport.Height-panelPadding {
		spaceAbove := anchor.Y - panelPadding
		spaceBelow := viewport.Height - anchor.Y - panelPadding
		switch {
		case spaceAbove > spaceBelow && spaceAbove >= panel.Height:
			y = anchor.Y - panel.Height - panelGap
		case spaceAbove < panel.Height && spaceBelow < panel.Height:
			// Fits in neither direction: pin to the top and cap the
			// panel height to the padded viewport.
			y = panelPadding
			maxHeight = viewport.Height - 2*panelPadding
		default:
			y = viewport.Height - panel.Height - panelPadding
		}
	} else if anchor.Y < panelPadding {
		y = panelPadding
	}

	return domain.PlacedPanel{X: x, Y: y, MaxHeight: maxHeight}
}
