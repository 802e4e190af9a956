// Package engine orchestrates decode -> spectrogram -> peaks -> landmarks
// for ingest, and the same pipeline plus matcher lookup for recognize.
package engine

import (
	"errors"
	"fmt"

	"github.com/shazoom/fingerprint/internal/audio"
	"github.com/shazoom/fingerprint/internal/store"
)

// Error kinds. HTTP handlers map these to status codes with
// errors.Is/errors.As rather than bespoke error-code constants.
var (
	// ErrInvalidInput covers wrong content-type or missing form fields,
	// surfaced as HTTP 400.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInternal covers anything else, surfaced as HTTP 500.
	ErrInternal = errors.New("internal error")
)

// IsDecodeError reports whether err is a decode failure — both recognize
// and ingest treat it as no-match / aborted-ingest rather than a store
// failure.
func IsDecodeError(err error) bool {
	var decodeErr *audio.DecodeError
	return errors.As(err, &decodeErr) || errors.Is(err, audio.ErrEmptyAudio)
}

// IsStoreUnavailable reports whether err originated from a transient store
// failure.
func IsStoreUnavailable(err error) bool {
	return errors.Is(err, store.ErrUnavailable)
}

// IsStoreConflict reports whether err is a content_hash collision, which
// callers treat as idempotent success.
func IsStoreConflict(err error) bool {
	return errors.Is(err, store.ErrConflict)
}

func wrapInternal(op string, err error) error {
	return fmt.Errorf("%s: %w: %v", op, ErrInternal, err)
}
