package dsp

import "math"

// Frozen wire-contract constants: changing any of these invalidates every
// previously stored landmark.
const (
	WindowSize = 4096 // N_FFT
	HopSize    = 512  // H
	NeighborhoodSize = 20 // P
	AmpMin           = 10.0
	FanValue         = 15
	MinDeltaT        = 0
	MaxDeltaT        = 200
)

// Spectrogram computes the magnitude STFT of samples with centered frames
// and reflect-padding at the boundaries. Samples are expected to already be
// at the target sample rate, so no anti-aliasing decimation happens here.
//
// The result M is addressed M[f][t], f in [0, WindowSize/2], t in
// [0, floor(len(samples)/HopSize)].
func Spectrogram(samples []float64) [][]float64 {
	padded := reflectPad(samples, WindowSize/2)
	window := hannWindow(WindowSize)

	numFrames := 1 + len(samples)/HopSize
	numBins := WindowSize/2 + 1

	magnitude := make([][]float64, numBins)
	for f := range magnitude {
		magnitude[f] = make([]float64, numFrames)
	}

	frame := make([]float64, WindowSize)
	for t := 0; t < numFrames; t++ {
		start := t * HopSize
		end := start + WindowSize
		if end > len(padded) {
			// Final frame may run past the padded buffer for very
			// short inputs; zero-fill the remainder.
			copy(frame, padded[start:])
			for i := len(padded) - start; i < WindowSize; i++ {
				frame[i] = 0
			}
		} else {
			copy(frame, padded[start:end])
		}

		windowed := make([]float64, WindowSize)
		for i, v := range frame {
			windowed[i] = v * window[i]
		}

		spectrum := FFT(windowed)
		for f := 0; f < numBins; f++ {
			magnitude[f][t] = complexAbs(spectrum[f])
		}
	}

	return magnitude
}

func complexAbs(c complex128) float64 {
	return math.Hypot(real(c), imag(c))
}

// hannWindow returns a Hann window of the given size.
func hannWindow(n int) []float64 {
	w := make([]float64, n)
	for i := range w {
		w[i] = 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(n-1))
	}
	return w
}

// reflectPad pads samples on both sides by pad elements using reflection
// (mirroring around the boundary sample, excluding the boundary itself),
// the STFT "center" convention.
func reflectPad(samples []float64, pad int) []float64 {
	n := len(samples)
	out := make([]float64, n+2*pad)

	for i := 0; i < pad; i++ {
		srcIdx := pad - i
		if srcIdx >= n {
			srcIdx = n - 1
		}
		out[i] = samples[srcIdx]
	}

	copy(out[pad:pad+n], samples)

	for i := 0; i < pad; i++ {
		srcIdx := n - 2 - i
		if srcIdx < 0 {
			srcIdx = 0
		}
		out[pad+n+i] = samples[srcIdx]
	}

	return out
}
