package dsp

// Peak is a local maximum in the time-frequency plane.
type Peak struct {
	Time int // frame index (STFT column)
	Freq int // frequency bin index
}

// Peaks finds every cell that equals the maximum of its PxP neighborhood
// and exceeds AmpMin. Ties within a neighborhood are all reported; ordering
// is unspecified.
func Peaks(magnitude [][]float64) []Peak {
	numBins := len(magnitude)
	if numBins == 0 {
		return nil
	}
	numFrames := len(magnitude[0])
	if numFrames == 0 {
		return nil
	}

	half := NeighborhoodSize / 2
	var peaks []Peak

	for f := 0; f < numBins; f++ {
		for t := 0; t < numFrames; t++ {
			val := magnitude[f][t]
			if val <= AmpMin {
				continue
			}
			if isNeighborhoodMax(magnitude, f, t, half) {
				peaks = append(peaks, Peak{Time: t, Freq: f})
			}
		}
	}

	return peaks
}

func isNeighborhoodMax(magnitude [][]float64, f, t, half int) bool {
	numBins := len(magnitude)
	numFrames := len(magnitude[0])
	val := magnitude[f][t]

	for df := -half; df < NeighborhoodSize-half; df++ {
		nf := f + df
		if nf < 0 || nf >= numBins {
			continue
		}
		for dt := -half; dt < NeighborhoodSize-half; dt++ {
			nt := t + dt
			if nt < 0 || nt >= numFrames {
				continue
			}
			if magnitude[nf][nt] > val {
				return false
			}
		}
	}
	return true
}
