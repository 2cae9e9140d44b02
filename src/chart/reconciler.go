package chart

import (
	"time"

	"market-pulse/src/models"
)

// -----------------------------------------------------------------------------
// Series Reconciliation
//
// Merges one live tick into an immutable baseline series. The returned slice
// is always freshly allocated; callers can hold the baseline across renders
// without defensive copies.
// -----------------------------------------------------------------------------

// bucketFor returns the merge granularity for a range: minutes intraday,
// calendar days otherwise.
func bucketFor(rng models.MRange) time.Duration {
	if rng.IsIntraday() {
		return time.Minute
	}
	return 24 * time.Hour
}

// -----------------------------------------------------------------------------

// Reconcile merges a tick into the baseline. Rules, per tick against the
// newest baseline point:
//   - empty baseline: the tick becomes the sole (live) point
//   - same bucket: the tick replaces the newest point in place; the old
//     point's volume is kept when the tick carries none
//   - newer bucket: the tick appends as a new live point
//   - older bucket: the tick is stale, the baseline passes through unchanged
//
// The result never grows by more than one point per call.
func Reconcile(baseline []models.MSeriesPoint, tick models.MTick, rng models.MRange) []models.MSeriesPoint {
	ts, err := tick.Time()
	if err != nil {
		return baseline
	}

	bucket := bucketFor(rng)
	point := models.MSeriesPoint{
		Timestamp: ts.Truncate(bucket),
		Price:     tick.Price,
		Volume:    tick.Volume,
		IsLive:    true,
	}
	if tick.PrevClose > 0 {
		prev := tick.PrevClose
		point.PrevClose = &prev
	}

	if len(baseline) == 0 {
		return []models.MSeriesPoint{point}
	}

	last := baseline[len(baseline)-1]
	lastBucket := last.Timestamp.Truncate(bucket)

	switch {
	case point.Timestamp.Before(lastBucket):
		return baseline

	case point.Timestamp.Equal(lastBucket):
		if point.Volume == 0 {
			point.Volume = last.Volume
		}
		if point.PrevClose == nil {
			point.PrevClose = last.PrevClose
		}
		out := make([]models.MSeriesPoint, len(baseline))
		copy(out, baseline)
		out[len(out)-1] = point
		return out

	default:
		out := make([]models.MSeriesPoint, len(baseline), len(baseline)+1)
		copy(out, baseline)
		return append(out, point)
	}
}
