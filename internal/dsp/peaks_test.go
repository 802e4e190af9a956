package dsp

import "testing"

func flatMagnitude(bins, frames int, value float64) [][]float64 {
	m := make([][]float64, bins)
	for f := range m {
		m[f] = make([]float64, frames)
		for t := range m[f] {
			m[f][t] = value
		}
	}
	return m
}

func TestPeaks_BelowAmpMinIsNeverAPeak(t *testing.T) {
	m := flatMagnitude(50, 50, AmpMin-1)
	peaks := Peaks(m)
	if len(peaks) != 0 {
		t.Errorf("expected no peaks below AmpMin, got %d", len(peaks))
	}
}

func TestPeaks_SingleSpikeIsDetected(t *testing.T) {
	m := flatMagnitude(50, 50, 0)
	m[25][25] = AmpMin + 100

	peaks := Peaks(m)
	if len(peaks) != 1 {
		t.Fatalf("expected exactly one peak, got %d", len(peaks))
	}
	if peaks[0].Freq != 25 || peaks[0].Time != 25 {
		t.Errorf("expected peak at (freq=25, time=25), got (freq=%d, time=%d)", peaks[0].Freq, peaks[0].Time)
	}
}

func TestPeaks_TiesAreAllReported(t *testing.T) {
	m := flatMagnitude(50, 50, 0)
	m[10][10] = AmpMin + 50
	m[10][11] = AmpMin + 50 // adjacent equal maxima, both within each other's neighborhood

	peaks := Peaks(m)
	if len(peaks) != 2 {
		t.Errorf("expected ties within a neighborhood to both be reported, got %d peaks", len(peaks))
	}
}

func TestPeaks_EmptyMagnitude(t *testing.T) {
	if peaks := Peaks(nil); peaks != nil {
		t.Errorf("expected nil peaks for nil magnitude, got %v", peaks)
	}
	if peaks := Peaks([][]float64{}); peaks != nil {
		t.Errorf("expected nil peaks for empty magnitude, got %v", peaks)
	}
}
