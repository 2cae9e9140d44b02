package chart

import "market-pulse/src/models"

// -----------------------------------------------------------------------------

// ResolveReference picks the baseline price used for coloring and the percent
// change. The fallback chain, strongest source first:
//
//  1. the previous close the history endpoint reported for the series
//  2. a previous close embedded in one of the series points
//  3. the previous close carried by the live tick
//  4. the first point's own price
//
// Every source exhausted means no reference: the chart renders uncolored
// rather than colored against a fabricated baseline.
func ResolveReference(endpointPrev *float64, baseline []models.MSeriesPoint, tick *models.MTick) *float64 {
	if endpointPrev != nil && *endpointPrev > 0 {
		v := *endpointPrev
		return &v
	}

	for _, p := range baseline {
		if p.PrevClose != nil && *p.PrevClose > 0 {
			v := *p.PrevClose
			return &v
		}
	}

	if tick != nil && tick.PrevClose > 0 {
		v := tick.PrevClose
		return &v
	}

	if len(baseline) > 0 && baseline[0].Price > 0 {
		v := baseline[0].Price
		return &v
	}

	return nil
}

// -----------------------------------------------------------------------------

// PercentChange computes the percent move of current against the reference.
// Nil reference (or a degenerate zero) yields nil, never a fake 0%.
func PercentChange(current float64, reference *float64) *float64 {
	if reference == nil || *reference == 0 {
		return nil
	}
	v := (current - *reference) / *reference * 100.0
	return &v
}
