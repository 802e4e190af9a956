// Package fingerprint turns spectral peaks into combinatorial hashes:
// pairing each peak with a bounded fan of successors into landmarks, each
// reduced to a short hex digest suitable for exact-match lookup.
package fingerprint

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"sort"

	"github.com/shazoom/fingerprint/internal/dsp"
)

// DigestLength is the fixed width of a landmark digest.
const DigestLength = 20

// Landmark is a (digest, anchor-time) pair.
type Landmark struct {
	Digest     string
	AnchorTime int
}

// Generate pairs each peak with up to dsp.FanValue successors within the
// dsp.MinDeltaT..dsp.MaxDeltaT window, producing a de-duplicated set of
// landmarks. Peaks are sorted in place by time (stable) before pairing.
func Generate(peaks []dsp.Peak) []Landmark {
	sort.SliceStable(peaks, func(i, j int) bool {
		return peaks[i].Time < peaks[j].Time
	})

	seen := make(map[Landmark]struct{})
	var out []Landmark

	for i, anchor := range peaks {
		maxJ := i + dsp.FanValue
		for j := i + 1; j <= maxJ && j < len(peaks); j++ {
			target := peaks[j]
			delta := target.Time - anchor.Time
			if delta < dsp.MinDeltaT || delta > dsp.MaxDeltaT {
				continue
			}

			digest := hashTriple(anchor.Freq, target.Freq, delta)
			lm := Landmark{Digest: digest, AnchorTime: anchor.Time}
			if _, ok := seen[lm]; ok {
				continue
			}
			seen[lm] = struct{}{}
			out = append(out, lm)
		}
	}

	return out
}

// hashTriple computes the wire digest for a (f1, f2, delta) triple: SHA-1
// over the UTF-8 bytes of "f1|f2|delta", hex-encoded, truncated to
// DigestLength characters.
func hashTriple(f1, f2, delta int) string {
	input := fmt.Sprintf("%d|%d|%d", f1, f2, delta)
	sum := sha1.Sum([]byte(input))
	return hex.EncodeToString(sum[:])[:DigestLength]
}
