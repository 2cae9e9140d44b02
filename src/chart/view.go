package chart

import (
	"sync"

	"market-pulse/src/models"
)

// -----------------------------------------------------------------------------
// View
//
// Holds the render state for one ticker/range pair. Range switches are racy
// by nature: the fetch for the old range may still be in flight when the user
// switches again, so every load is tagged with the generation it started
// under and a stale completion is discarded instead of clobbering the newer
// baseline.
// -----------------------------------------------------------------------------

type View struct {
	Ticker    string
	AssetType string

	mu           sync.Mutex
	rng          models.MRange
	baseline     []models.MSeriesPoint
	endpointPrev *float64
	lastTick     *models.MTick
	live         bool
	generation   uint64
	loaded       bool
}

// -----------------------------------------------------------------------------

func NewView(ticker, assetType string, rng models.MRange) *View {
	return &View{
		Ticker:    ticker,
		AssetType: assetType,
		rng:       rng,
	}
}

// -----------------------------------------------------------------------------

// Range returns the currently selected range.
func (v *View) Range() models.MRange {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.rng
}

// -----------------------------------------------------------------------------

// BeginLoad registers intent to fetch a baseline and returns the generation
// token the eventual CompleteLoad must present.
func (v *View) BeginLoad() uint64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.generation
}

// -----------------------------------------------------------------------------

// SetRange switches the view to a new range. The old baseline is dropped and
// the generation advances, orphaning any in-flight load.
func (v *View) SetRange(rng models.MRange) uint64 {
	v.mu.Lock()
	defer v.mu.Unlock()

	if rng == v.rng {
		return v.generation
	}

	v.rng = rng
	v.generation++
	v.baseline = nil
	v.endpointPrev = nil
	v.lastTick = nil
	v.live = false
	v.loaded = false
	return v.generation
}

// -----------------------------------------------------------------------------

// CompleteLoad installs a fetched baseline if the view is still on the
// generation the fetch started under. Returns false for a stale completion.
func (v *View) CompleteLoad(token uint64, points []models.MSeriesPoint, endpointPrev *float64) bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	if token != v.generation {
		return false
	}

	v.baseline = points
	v.endpointPrev = endpointPrev
	v.loaded = true

	// A tick that arrived while the baseline was loading still applies.
	if v.lastTick != nil && v.rng.IsIntraday() {
		v.baseline = Reconcile(v.baseline, *v.lastTick, v.rng)
	}
	return true
}

// -----------------------------------------------------------------------------

// ApplyTick overlays a live tick. Only the intraday range takes live data;
// coarser ranges render history alone.
func (v *View) ApplyTick(tick models.MTick) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if tick.Ticker != v.Ticker || !v.rng.IsIntraday() {
		return
	}

	v.lastTick = &tick
	v.live = true
	if v.loaded {
		v.baseline = Reconcile(v.baseline, tick, v.rng)
	}
}

// -----------------------------------------------------------------------------

// Render produces the drawable series for the current state.
func (v *View) Render() models.MRenderSeries {
	v.mu.Lock()
	defer v.mu.Unlock()

	series := models.MRenderSeries{
		Ticker: v.Ticker,
		Range:  v.rng,
		Live:   v.live,
	}
	if len(v.baseline) == 0 {
		return series
	}

	reference := ResolveReference(v.endpointPrev, v.baseline, v.lastTick)
	current := v.baseline[len(v.baseline)-1].Price

	series.Points = SplitAtReference(v.baseline, reference)
	series.Volume = VolumeBars(v.baseline, v.rng)
	series.Reference = reference
	series.PercentChange = PercentChange(current, reference)

	if v.rng.IsIntraday() {
		series.Window = TimeWindow(v.baseline, v.AssetType, v.Ticker)
	}
	return series
}

// -----------------------------------------------------------------------------

// DailyBarsToPoints converts warehouse rows to series points for the daily
// ranges, trimmed to the most recent `days` bars.
func DailyBarsToPoints(bars []models.MDailyBar, days int) []models.MSeriesPoint {
	if days > 0 && len(bars) > days {
		bars = bars[len(bars)-days:]
	}

	out := make([]models.MSeriesPoint, 0, len(bars))
	for _, b := range bars {
		date, err := b.Date()
		if err != nil {
			continue
		}
		out = append(out, models.MSeriesPoint{
			Timestamp: date,
			Price:     b.Close,
			Volume:    b.TotalVolume,
			PrevClose: b.PrevClose,
		})
	}
	return out
}
