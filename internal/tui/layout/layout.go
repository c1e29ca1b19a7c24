// Package layout computes the dashboard's breakpoint tier and the pixel
// widths that follow from it: how much of the terminal the grid gets versus
// the context panel, and how many fixed-width cards fit across the grid.
package layout

// Tier is a terminal-width breakpoint the dashboard's split and grid
// column count are computed from.
type Tier int

const (
	TierNarrow Tier = iota
	TierNormal
	TierWide
	TierUltrawide
)

// Width thresholds a Tier begins at.
const (
	NormalThreshold    = 120
	WideThreshold      = 200
	UltrawideThreshold = 240
)

// TierForWidth classifies a terminal width into its Tier.
func TierForWidth(width int) Tier {
	switch {
	case width < NormalThreshold:
		return TierNarrow
	case width < WideThreshold:
		return TierNormal
	case width < UltrawideThreshold:
		return TierWide
	default:
		return TierUltrawide
	}
}

// PanelMinWidth is the terminal width below which the context panel
// collapses entirely and the grid takes the full width; it coincides with
// the Narrow/Normal boundary since a panel narrower than that renders
// nothing legible anyway.
const PanelMinWidth = NormalThreshold

// PanelFraction and GridFraction are the panel/grid split described for
// the normal-and-above tiers: panel 35%, grid 65%.
const (
	PanelFraction = 35
	GridFraction  = 65
)

// SplitProportions returns the (panelWidth, gridWidth) for a total
// available width, reserving Gap columns for the seam between them. Below
// PanelMinWidth the panel collapses to 0 and the grid takes the whole
// width, per the breakpoint tier system's narrow-tier behavior.
func SplitProportions(total int) (panelWidth, gridWidth int) {
	if total < PanelMinWidth {
		return 0, total
	}
	avail := total - Gap
	if avail < 0 {
		avail = 0
	}
	panelWidth = avail * PanelFraction / 100
	gridWidth = avail - panelWidth
	return panelWidth, gridWidth
}

// CardWidth is a grid card's fixed interior width (border and padding
// included), and Gap the space left between adjacent cards and between
// the panel and the grid.
const (
	CardWidth = 28
	Gap       = 2
)

// Columns returns how many CardWidth-wide cards fit across gridWidth,
// floor((gridWidth-Gap)/(CardWidth+Gap)), never fewer than one so a
// single card always has somewhere to render even in a narrow grid.
func Columns(gridWidth int) int {
	cols := (gridWidth - Gap) / (CardWidth + Gap)
	if cols < 1 {
		return 1
	}
	return cols
}
