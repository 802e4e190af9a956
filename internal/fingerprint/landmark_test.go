package fingerprint

import (
	"testing"

	"github.com/shazoom/fingerprint/internal/dsp"
)

func TestGenerate_DigestLengthAndWindow(t *testing.T) {
	peaks := []dsp.Peak{
		{Time: 0, Freq: 100},
		{Time: 5, Freq: 200},
		{Time: 50, Freq: 300},
		{Time: 201, Freq: 400}, // outside the anchor's window from Time 0
	}

	landmarks := Generate(peaks)
	if len(landmarks) == 0 {
		t.Fatal("expected at least one landmark")
	}
	// Six pairs, of which only (0, 201) falls outside the window.
	if len(landmarks) != 5 {
		t.Errorf("expected 5 in-window landmarks, got %d", len(landmarks))
	}

	for _, lm := range landmarks {
		if len(lm.Digest) != DigestLength {
			t.Errorf("digest %q has length %d, want %d", lm.Digest, len(lm.Digest), DigestLength)
		}
	}
}

func TestGenerate_RejectsOutOfWindowDeltas(t *testing.T) {
	peaks := []dsp.Peak{
		{Time: 0, Freq: 100},
		{Time: 201, Freq: 200}, // delta 201 > MaxDeltaT (200)
	}

	landmarks := Generate(peaks)
	if len(landmarks) != 0 {
		t.Errorf("expected no landmarks for an out-of-window pair, got %d", len(landmarks))
	}
}

func TestGenerate_AcceptsZeroDelta(t *testing.T) {
	peaks := []dsp.Peak{
		{Time: 10, Freq: 100},
		{Time: 10, Freq: 200}, // delta 0 is within [MinDeltaT, MaxDeltaT] == [0, 200], so it IS accepted
	}

	landmarks := Generate(peaks)
	if len(landmarks) != 1 {
		t.Errorf("expected exactly one landmark for a same-frame pair at delta 0, got %d", len(landmarks))
	}
}

func TestGenerate_FanOutBound(t *testing.T) {
	peaks := make([]dsp.Peak, 0, 40)
	for t := 0; t < 40; t++ {
		peaks = append(peaks, dsp.Peak{Time: t, Freq: 100 + t})
	}

	landmarks := Generate(peaks)

	anchorCount := make(map[int]int)
	for _, lm := range landmarks {
		anchorCount[lm.AnchorTime]++
	}
	for anchor, count := range anchorCount {
		if count > dsp.FanValue {
			t.Errorf("anchor at time %d produced %d landmarks, exceeding fan-out bound %d", anchor, count, dsp.FanValue)
		}
	}
}

func TestGenerate_Deterministic(t *testing.T) {
	peaks := []dsp.Peak{
		{Time: 3, Freq: 50},
		{Time: 1, Freq: 20},
		{Time: 40, Freq: 90},
		{Time: 2, Freq: 35},
	}

	first := Generate(append([]dsp.Peak(nil), peaks...))
	second := Generate(append([]dsp.Peak(nil), peaks...))

	firstSet := make(map[Landmark]struct{})
	for _, lm := range first {
		firstSet[lm] = struct{}{}
	}
	if len(firstSet) != len(second) {
		t.Fatalf("expected identical landmark sets across runs, got %d vs %d", len(firstSet), len(second))
	}
	for _, lm := range second {
		if _, ok := firstSet[lm]; !ok {
			t.Errorf("landmark %+v present in second run but not first", lm)
		}
	}
}

func TestGenerate_EmptyPeaks(t *testing.T) {
	if landmarks := Generate(nil); landmarks != nil {
		t.Errorf("expected nil landmarks for nil peaks, got %v", landmarks)
	}
}

func TestHashTriple_Deterministic(t *testing.T) {
	a := hashTriple(100, 200, 50)
	b := hashTriple(100, 200, 50)
	if a != b {
		t.Errorf("expected identical digests for identical inputs, got %q vs %q", a, b)
	}

	c := hashTriple(100, 200, 51)
	if a == c {
		t.Errorf("expected different digests for different deltas")
	}
}
