// Package match selects the best-matching track for a query's landmarks by
// looking them up against the fingerprint store and histogramming the
// resulting time offsets: a true match produces a sharp spike at one
// offset, while chance collisions scatter across many.
package match

import (
	"context"

	"github.com/shazoom/fingerprint/internal/fingerprint"
)

// BatchSize bounds how many distinct digests are sent to the store per
// lookup call.
const BatchSize = 1000

// DefaultMinMatchCount is the minimum number of matched landmarks (offset
// deltas, aligned or not) a track needs to be considered a match.
const DefaultMinMatchCount = 5

// Row is one (digest, track, anchor, title, artist) tuple returned by the
// store for a batch of digests.
type Row struct {
	Digest   string
	TrackID  string
	DBAnchor int
	Title    string
	Artist   string
}

// Lookup resolves a batch of digests against the fingerprint store.
type Lookup func(ctx context.Context, digests []string) ([]Row, error)

// Match is the result of a successful identification.
type Match struct {
	TrackID          string
	Title            string
	Artist           string
	Confidence       float64
	AlignedMatches   int
	TotalQueryHashes int
}

type trackAccumulator struct {
	title      string
	artist     string
	deltas     []int
	firstIndex int
}

// Identify runs the matcher over a query's landmarks. It returns (nil, nil)
// on no-match; it never returns an error of its own — only the lookup
// function can fail.
func Identify(ctx context.Context, queryLandmarks []fingerprint.Landmark, lookup Lookup, minMatchCount int) (*Match, error) {
	if len(queryLandmarks) == 0 {
		return nil, nil
	}
	if minMatchCount <= 0 {
		minMatchCount = DefaultMinMatchCount
	}

	queryAnchor := make(map[string]int, len(queryLandmarks))
	var digests []string
	for _, lm := range queryLandmarks {
		if _, ok := queryAnchor[lm.Digest]; ok {
			continue
		}
		queryAnchor[lm.Digest] = lm.AnchorTime
		digests = append(digests, lm.Digest)
	}

	tracks := make(map[string]*trackAccumulator)
	var trackOrder []string

	for start := 0; start < len(digests); start += BatchSize {
		end := start + BatchSize
		if end > len(digests) {
			end = len(digests)
		}

		rows, err := lookup(ctx, digests[start:end])
		if err != nil {
			return nil, err
		}

		for _, row := range rows {
			anchor, ok := queryAnchor[row.Digest]
			if !ok {
				continue
			}
			delta := row.DBAnchor - anchor

			acc, ok := tracks[row.TrackID]
			if !ok {
				acc = &trackAccumulator{
					title:      row.Title,
					artist:     row.Artist,
					firstIndex: len(trackOrder),
				}
				tracks[row.TrackID] = acc
				trackOrder = append(trackOrder, row.TrackID)
			}
			acc.deltas = append(acc.deltas, delta)
		}
	}

	var best *Match
	var bestConfidence float64
	var bestFirstIndex = -1

	for _, trackID := range trackOrder {
		acc := tracks[trackID]
		if len(acc.deltas) < minMatchCount {
			continue
		}

		aligned := modalCount(acc.deltas)
		confidence := float64(aligned) / float64(len(queryLandmarks))

		if best == nil || confidence > bestConfidence ||
			(confidence == bestConfidence && acc.firstIndex < bestFirstIndex) {
			best = &Match{
				TrackID:          trackID,
				Title:            acc.title,
				Artist:           acc.artist,
				Confidence:       confidence,
				AlignedMatches:   aligned,
				TotalQueryHashes: len(queryLandmarks),
			}
			bestConfidence = confidence
			bestFirstIndex = acc.firstIndex
		}
	}

	return best, nil
}

// modalCount returns the size of the largest group of equal values in
// deltas, breaking ties by whichever value occurred first.
func modalCount(deltas []int) int {
	counts := make(map[int]int)
	firstIndex := make(map[int]int)

	for i, d := range deltas {
		counts[d]++
		if _, ok := firstIndex[d]; !ok {
			firstIndex[d] = i
		}
	}

	bestCount := 0
	bestFirst := -1
	for d, c := range counts {
		if c > bestCount || (c == bestCount && firstIndex[d] < bestFirst) {
			bestCount = c
			bestFirst = firstIndex[d]
		}
	}

	return bestCount
}
