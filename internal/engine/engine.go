package engine

import (
	"context"
	"crypto/sha256"
	"encoding/hex"

	"github.com/shazoom/fingerprint/internal/audio"
	"github.com/shazoom/fingerprint/internal/dsp"
	"github.com/shazoom/fingerprint/internal/fingerprint"
	"github.com/shazoom/fingerprint/internal/logging"
	"github.com/shazoom/fingerprint/internal/match"
	"github.com/shazoom/fingerprint/internal/store"
)

// Engine is the recognition service's façade: Ingest and Recognize are its
// only two operations, both built from the same decode -> spectrogram ->
// peaks -> landmarks pipeline.
type Engine struct {
	store         store.Store
	minMatchCount int
}

// New builds an Engine over a fingerprint store. minMatchCount is the
// matcher's per-track matched-hash threshold; callers pass 0 to take the
// matcher's own default.
func New(s store.Store, minMatchCount int) *Engine {
	return &Engine{store: s, minMatchCount: minMatchCount}
}

// IngestResult reports the content hash (the POST /ingest response's
// file_hash) and the id of the created or existing track.
type IngestResult struct {
	FileHash string
	TrackID  string
}

// Ingest registers a track. content_hash = SHA-256(bytes); a collision with
// an existing track is treated as idempotent success — the existing
// track's hash is returned and the pipeline is not re-run.
func (e *Engine) Ingest(ctx context.Context, data []byte, title, artist string) (IngestResult, error) {
	hash := contentHash(data)

	track, err := e.store.CreateTrack(ctx, hash, title, artist)
	if err != nil {
		if IsStoreConflict(err) {
			return IngestResult{FileHash: hash, TrackID: track.ID}, nil
		}
		return IngestResult{}, wrapInternal("create track", err)
	}

	landmarks, err := fingerprintBytes(data)
	if err != nil {
		if IsDecodeError(err) {
			// Track row stays indexed=false; re-ingest is safe by
			// content_hash idempotence.
			logging.Get().ErrorContext(ctx, "ingest decode failed", "error", logging.Wrap(err), "track_id", track.ID)
			return IngestResult{}, err
		}
		return IngestResult{}, wrapInternal("fingerprint audio", err)
	}

	if err := e.store.InsertLandmarks(ctx, track.ID, landmarks); err != nil {
		return IngestResult{}, wrapInternal("insert landmarks", err)
	}

	if err := e.store.SetIndexed(ctx, track.ID); err != nil {
		return IngestResult{}, wrapInternal("set indexed", err)
	}

	return IngestResult{FileHash: hash, TrackID: track.ID}, nil
}

// Recognize runs the pipeline on an unknown clip and reports the best
// match, or no-match. Decode/DSP failures propagate as no-match with a
// logged error, not as a hard error — a clip that fails to decode is
// indistinguishable from one that simply isn't in the catalog.
func (e *Engine) Recognize(ctx context.Context, data []byte) (*match.Match, error) {
	landmarks, err := fingerprintBytes(data)
	if err != nil {
		if IsDecodeError(err) {
			logging.Get().ErrorContext(ctx, "recognize decode failed", "error", logging.Wrap(err))
			return nil, nil
		}
		return nil, wrapInternal("fingerprint audio", err)
	}

	result, err := match.Identify(ctx, landmarks, store.Lookup(e.store), e.minMatchCount)
	if err != nil {
		return nil, wrapInternal("identify", err)
	}
	return result, nil
}

// Stats reports catalog-wide counts for GET /api/stats.
func (e *Engine) Stats(ctx context.Context) (store.Stats, error) {
	s, err := e.store.Stats(ctx)
	if err != nil {
		return store.Stats{}, wrapInternal("stats", err)
	}
	return s, nil
}

// fingerprintBytes runs the shared decode -> spectrogram -> peaks ->
// landmarks pipeline used by both Ingest and Recognize.
func fingerprintBytes(data []byte) ([]fingerprint.Landmark, error) {
	samples, err := audio.Decode(data)
	if err != nil {
		return nil, err
	}

	magnitude := dsp.Spectrogram(samples)
	peaks := dsp.Peaks(magnitude)
	return fingerprint.Generate(peaks), nil
}

func contentHash(data []byte) string {
	return ContentHash(data)
}

// ContentHash computes the SHA-256 hex digest used as both the ingest
// idempotence key and the POST /ingest response's file_hash. Exported so
// the API layer can report it back to the caller before the background
// ingest job runs.
func ContentHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
