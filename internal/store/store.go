// Package store holds tracks and their landmarks, with bulk insert,
// batched hash lookup, and metadata/stats queries.
package store

import (
	"context"
	"errors"

	"github.com/shazoom/fingerprint/internal/fingerprint"
	"github.com/shazoom/fingerprint/internal/match"
)

// ErrConflict is returned by CreateTrack when a track with the given
// content hash already exists — callers treat this as idempotent success.
var ErrConflict = errors.New("track already exists")

// ErrUnavailable wraps a transient store failure.
var ErrUnavailable = errors.New("fingerprint store unavailable")

// Track is a registered recording.
type Track struct {
	ID          string
	Title       string
	Artist      string
	ContentHash string
	Indexed     bool
}

// Stats summarizes the catalog for GET /api/stats.
type Stats struct {
	TotalSongs                 int
	TotalFingerprints          int64
	AverageFingerprintsPerSong float64
}

// Store is the fingerprint store's full interface: bulk insert, batched
// lookup by hash, track creation, the indexed flag, and stats. Tracks are
// not read back, updated or deleted through it.
type Store interface {
	// CreateTrack registers a track for contentHash if one does not already
	// exist. It returns the existing track and ErrConflict if contentHash
	// is already registered.
	CreateTrack(ctx context.Context, contentHash, title, artist string) (Track, error)

	// InsertLandmarks bulk-inserts a track's landmarks in batches, each
	// batch its own transaction.
	InsertLandmarks(ctx context.Context, trackID string, landmarks []fingerprint.Landmark) error

	// SetIndexed flips a track's indexed flag in its own final
	// transaction, only ever called after every landmark batch has
	// committed.
	SetIndexed(ctx context.Context, trackID string) error

	// LookupDigests resolves a batch of digests to (digest, track, anchor,
	// title, artist) rows, satisfying match.Lookup. The matcher itself is
	// responsible for batching into groups of match.BatchSize; this
	// method answers a single batch.
	LookupDigests(ctx context.Context, digests []string) ([]match.Row, error)

	// Stats reports catalog-wide counts for GET /api/stats.
	Stats(ctx context.Context) (Stats, error)

	Close() error
}

// Lookup adapts a Store to the match.Lookup function signature.
func Lookup(s Store) match.Lookup {
	return func(ctx context.Context, digests []string) ([]match.Row, error) {
		return s.LookupDigests(ctx, digests)
	}
}
