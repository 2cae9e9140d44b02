package models

import "time"

// -----------------------------------------------------------------------------
// Chart ranges
// -----------------------------------------------------------------------------

// MRange selects the chart window. Range1D is the only range on which live
// ticks are overlaid; every coarser range renders the historical series alone.
type MRange string

const (
	Range1D MRange = "1D"
	Range1W MRange = "1W"
	Range1M MRange = "1M"
	Range6M MRange = "6M"
	Range1Y MRange = "1Y"
)

// -----------------------------------------------------------------------------

// IsIntraday reports whether the range is the finest granularity.
func (r MRange) IsIntraday() bool {
	return r == Range1D
}

// -----------------------------------------------------------------------------

// TradingDays returns how many daily bars the range spans. Zero means the
// range is not daily-based.
func (r MRange) TradingDays() int {
	switch r {
	case Range1W:
		return 5
	case Range1M:
		return 21
	case Range6M:
		return 126
	case Range1Y:
		return 252
	default:
		return 0
	}
}

// -----------------------------------------------------------------------------
// Renderable output
// -----------------------------------------------------------------------------

// MRenderPoint is one sample of the dual-colored line. Exactly one of Above
// and Below is set for a regular point; an interpolated crossover point sets
// both to the reference value so the two segments connect seamlessly.
type MRenderPoint struct {
	Timestamp    time.Time `json:"timestamp"`
	Above        *float64  `json:"above,omitempty"`
	Below        *float64  `json:"below,omitempty"`
	Interpolated bool      `json:"interpolated,omitempty"`
}

// -----------------------------------------------------------------------------

// MVolumeBar carries the plotted volume value. Display is sqrt-compressed on
// the intraday range; Raw is always the true figure for tooltips.
type MVolumeBar struct {
	Timestamp time.Time `json:"timestamp"`
	Display   float64   `json:"display"`
	Raw       float64   `json:"raw"`
}

// -----------------------------------------------------------------------------

// MTimeWindow is the x-axis domain for the intraday view.
type MTimeWindow struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// -----------------------------------------------------------------------------

// MRenderSeries is everything a chart needs to draw one ticker/range pair.
// Reference and PercentChange are nil when every fallback in the reference
// chain came up empty; the chart then renders without baseline coloring.
type MRenderSeries struct {
	Ticker        string         `json:"ticker"`
	Range         MRange         `json:"range"`
	Points        []MRenderPoint `json:"points"`
	Volume        []MVolumeBar   `json:"volume"`
	Reference     *float64       `json:"reference,omitempty"`
	PercentChange *float64       `json:"percent_change,omitempty"`
	Window        *MTimeWindow   `json:"window,omitempty"`
	Live          bool           `json:"live"`
}
