package chart

import (
	"math"
	"time"

	"market-pulse/src/models"
)

// -----------------------------------------------------------------------------
// Render Transform
//
// Turns a reconciled series into the dual-colored line and volume bars the
// chart draws directly.
// -----------------------------------------------------------------------------

// SplitAtReference projects each point onto the above/below side of the
// reference line. Where two consecutive points straddle the line, a synthetic
// crossover point is inserted at the linear interpolation of the crossing
// instant, carried on BOTH sides so neither colored segment shows a gap.
// A nil reference puts the whole series on the "above" side; rendering it
// uncolored is the renderer's concern then.
func SplitAtReference(points []models.MSeriesPoint, reference *float64) []models.MRenderPoint {
	if len(points) == 0 {
		return nil
	}

	if reference == nil {
		out := make([]models.MRenderPoint, len(points))
		for i, p := range points {
			price := p.Price
			out[i] = models.MRenderPoint{Timestamp: p.Timestamp, Above: &price}
		}
		return out
	}

	ref := *reference
	out := make([]models.MRenderPoint, 0, len(points)+4)

	for i, p := range points {
		if i > 0 {
			prev := points[i-1]
			if crosses(prev.Price, p.Price, ref) {
				out = append(out, crossoverPoint(prev, p, ref))
			}
		}
		out = append(out, sidedPoint(p, ref))
	}
	return out
}

// -----------------------------------------------------------------------------

// crosses reports whether the segment p0->p1 passes strictly through ref.
func crosses(p0, p1, ref float64) bool {
	return (p0 < ref && p1 > ref) || (p0 > ref && p1 < ref)
}

// -----------------------------------------------------------------------------

// crossoverPoint interpolates the instant the price crossed the reference.
func crossoverPoint(p0, p1 models.MSeriesPoint, ref float64) models.MRenderPoint {
	frac := (ref - p0.Price) / (p1.Price - p0.Price)
	dt := p1.Timestamp.Sub(p0.Timestamp)
	ts := p0.Timestamp.Add(time.Duration(frac * float64(dt)))

	above := ref
	below := ref
	return models.MRenderPoint{
		Timestamp:    ts,
		Above:        &above,
		Below:        &below,
		Interpolated: true,
	}
}

// -----------------------------------------------------------------------------

func sidedPoint(p models.MSeriesPoint, ref float64) models.MRenderPoint {
	price := p.Price
	rp := models.MRenderPoint{Timestamp: p.Timestamp}
	if price >= ref {
		rp.Above = &price
	} else {
		rp.Below = &price
	}
	return rp
}

// -----------------------------------------------------------------------------
// Volume
// -----------------------------------------------------------------------------

// VolumeBars builds the plotted volume series. On the intraday range the
// display value is sqrt-compressed so one opening-auction spike does not
// flatten the rest of the session; Raw always keeps the true figure.
func VolumeBars(points []models.MSeriesPoint, rng models.MRange) []models.MVolumeBar {
	if len(points) == 0 {
		return nil
	}

	out := make([]models.MVolumeBar, len(points))
	for i, p := range points {
		display := p.Volume
		if rng.IsIntraday() && p.Volume > 0 {
			display = math.Sqrt(p.Volume)
		}
		out[i] = models.MVolumeBar{
			Timestamp: p.Timestamp,
			Display:   display,
			Raw:       p.Volume,
		}
	}
	return out
}

// -----------------------------------------------------------------------------

// DisplayVolume inverts a compressed display value back to the raw figure,
// for tooltips that only have the plotted value at hand.
func DisplayVolume(display float64, rng models.MRange) float64 {
	if rng.IsIntraday() {
		return display * display
	}
	return display
}
