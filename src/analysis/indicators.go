package analysis

import "math"

// -----------------------------------------------------------------------------
// Daily indicator columns
//
// Each function returns a slice aligned to the input closes, with nil while
// the indicator is still warming up. The warehouse seeding path computes
// these once per ticker; live views never recompute them.
// -----------------------------------------------------------------------------

// SMA computes the simple moving average over the given period.
func SMA(closes []float64, period int) []*float64 {
	out := make([]*float64, len(closes))
	if period <= 0 || len(closes) < period {
		return out
	}

	sum := 0.0
	for i, c := range closes {
		sum += c
		if i >= period {
			sum -= closes[i-period]
		}
		if i >= period-1 {
			v := sum / float64(period)
			out[i] = &v
		}
	}
	return out
}

// -----------------------------------------------------------------------------

// RSI computes the Wilder-smoothed relative strength index.
func RSI(closes []float64, period int) []*float64 {
	out := make([]*float64, len(closes))
	if period <= 0 || len(closes) < period+1 {
		return out
	}

	var avgGain, avgLoss float64
	for i := 1; i <= period; i++ {
		change := closes[i] - closes[i-1]
		if change > 0 {
			avgGain += change
		} else {
			avgLoss -= change
		}
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)
	out[period] = rsiValue(avgGain, avgLoss)

	for i := period + 1; i < len(closes); i++ {
		change := closes[i] - closes[i-1]
		gain, loss := 0.0, 0.0
		if change > 0 {
			gain = change
		} else {
			loss = -change
		}
		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
		out[i] = rsiValue(avgGain, avgLoss)
	}
	return out
}

func rsiValue(avgGain, avgLoss float64) *float64 {
	v := 100.0
	if avgLoss > 0 {
		rs := avgGain / avgLoss
		v = 100.0 - 100.0/(1.0+rs)
	}
	return &v
}

// -----------------------------------------------------------------------------

// Bollinger computes the period-SMA band with k standard deviations.
func Bollinger(closes []float64, period int, k float64) (upper, middle, lower []*float64) {
	middle = SMA(closes, period)
	upper = make([]*float64, len(closes))
	lower = make([]*float64, len(closes))

	for i := range closes {
		if middle[i] == nil {
			continue
		}
		mean := *middle[i]
		variance := 0.0
		for j := i - period + 1; j <= i; j++ {
			d := closes[j] - mean
			variance += d * d
		}
		std := math.Sqrt(variance / float64(period))

		u := mean + k*std
		l := mean - k*std
		upper[i] = &u
		lower[i] = &l
	}
	return upper, middle, lower
}

// -----------------------------------------------------------------------------

// ema computes the exponential moving average; valid from index period-1,
// earlier entries hold zero and must be treated as warm-up.
func ema(closes []float64, period int) []float64 {
	out := make([]float64, len(closes))
	if len(closes) < period {
		return out
	}

	sum := 0.0
	for i := 0; i < period; i++ {
		sum += closes[i]
	}
	out[period-1] = sum / float64(period)

	k := 2.0 / float64(period+1)
	for i := period; i < len(closes); i++ {
		out[i] = (closes[i]-out[i-1])*k + out[i-1]
	}
	return out
}

// -----------------------------------------------------------------------------

// MACD computes the 12/26 line, its 9-period signal and the histogram.
func MACD(closes []float64) (line, signal, hist []*float64) {
	line = make([]*float64, len(closes))
	signal = make([]*float64, len(closes))
	hist = make([]*float64, len(closes))

	const fast, slow, smooth = 12, 26, 9
	if len(closes) < slow {
		return line, signal, hist
	}

	emaFast := ema(closes, fast)
	emaSlow := ema(closes, slow)

	raw := make([]float64, 0, len(closes)-slow+1)
	for i := slow - 1; i < len(closes); i++ {
		v := emaFast[i] - emaSlow[i]
		raw = append(raw, v)
		line[i] = &raw[len(raw)-1]
	}

	sig := ema(raw, smooth)
	for i := smooth - 1; i < len(raw); i++ {
		idx := i + slow - 1
		s := sig[i]
		h := raw[i] - s
		signal[idx] = &s
		hist[idx] = &h
	}
	return line, signal, hist
}
