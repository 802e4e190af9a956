package engine

import (
	"context"
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shazoom/fingerprint/internal/fingerprint"
	"github.com/shazoom/fingerprint/internal/match"
	"github.com/shazoom/fingerprint/internal/store"
)

// fakeStore is an in-memory store.Store used to exercise the engine façade
// without a real Postgres instance.
type fakeStore struct {
	tracks     map[string]store.Track // keyed by content hash
	nextID     int
	landmarks  map[string][]fingerprint.Landmark // keyed by track id
}

func newFakeStore() *fakeStore {
	return &fakeStore{tracks: make(map[string]store.Track), landmarks: make(map[string][]fingerprint.Landmark)}
}

func (f *fakeStore) CreateTrack(ctx context.Context, contentHash, title, artist string) (store.Track, error) {
	if existing, ok := f.tracks[contentHash]; ok {
		return existing, store.ErrConflict
	}
	f.nextID++
	id := string(rune('0' + f.nextID))
	track := store.Track{ID: id, Title: title, Artist: artist, ContentHash: contentHash}
	f.tracks[contentHash] = track
	return track, nil
}

func (f *fakeStore) InsertLandmarks(ctx context.Context, trackID string, landmarks []fingerprint.Landmark) error {
	f.landmarks[trackID] = append(f.landmarks[trackID], landmarks...)
	return nil
}

func (f *fakeStore) SetIndexed(ctx context.Context, trackID string) error {
	for hash, t := range f.tracks {
		if t.ID == trackID {
			t.Indexed = true
			f.tracks[hash] = t
		}
	}
	return nil
}

func (f *fakeStore) LookupDigests(ctx context.Context, digests []string) ([]match.Row, error) {
	want := make(map[string]bool, len(digests))
	for _, d := range digests {
		want[d] = true
	}

	var rows []match.Row
	for trackID, landmarks := range f.landmarks {
		var title, artist string
		for hash, t := range f.tracks {
			if t.ID == trackID {
				title, artist = t.Title, t.Artist
				_ = hash
			}
		}
		for _, lm := range landmarks {
			if want[lm.Digest] {
				rows = append(rows, match.Row{Digest: lm.Digest, TrackID: trackID, DBAnchor: lm.AnchorTime, Title: title, Artist: artist})
			}
		}
	}
	return rows, nil
}

func (f *fakeStore) Stats(ctx context.Context) (store.Stats, error) {
	var stats store.Stats
	for _, t := range f.tracks {
		if t.Indexed {
			stats.TotalSongs++
		}
	}
	for _, lms := range f.landmarks {
		stats.TotalFingerprints += int64(len(lms))
	}
	if stats.TotalSongs > 0 {
		stats.AverageFingerprintsPerSong = float64(stats.TotalFingerprints) / float64(stats.TotalSongs)
	}
	return stats, nil
}

func (f *fakeStore) Close() error { return nil }

// sineWAV builds a minimal mono 16-bit PCM WAV at 22050 Hz containing a
// pure tone, enough signal for the pipeline to produce landmarks.
func sineWAV(seconds float64, freq float64) []byte {
	sampleRate := 22050
	n := int(float64(sampleRate) * seconds)
	samples := make([]int16, n)
	for i := range samples {
		samples[i] = int16(12000 * math.Sin(2*math.Pi*freq*float64(i)/float64(sampleRate)))
	}

	var buf []byte
	dataSize := len(samples) * 2
	byteRate := sampleRate * 2

	write := func(v any) {
		switch x := v.(type) {
		case string:
			buf = append(buf, []byte(x)...)
		case uint32:
			b := make([]byte, 4)
			binary.LittleEndian.PutUint32(b, x)
			buf = append(buf, b...)
		case uint16:
			b := make([]byte, 2)
			binary.LittleEndian.PutUint16(b, x)
			buf = append(buf, b...)
		}
	}

	write("RIFF")
	write(uint32(36 + dataSize))
	write("WAVE")
	write("fmt ")
	write(uint32(16))
	write(uint16(1))
	write(uint16(1))
	write(uint32(sampleRate))
	write(uint32(byteRate))
	write(uint16(2))
	write(uint16(16))
	write("data")
	write(uint32(dataSize))
	for _, s := range samples {
		write(uint16(s))
	}
	return buf
}

func TestIngest_IsIdempotentOnContentHash(t *testing.T) {
	s := newFakeStore()
	e := New(s, 5)
	audio := sineWAV(3, 440)

	first, err := e.Ingest(context.Background(), audio, "sweep", "lab")
	require.NoError(t, err)

	second, err := e.Ingest(context.Background(), audio, "different title", "different artist")
	require.NoError(t, err)

	assert.Equal(t, first.FileHash, second.FileHash, "expected identical file_hash across duplicate ingests")
	assert.Len(t, s.tracks, 1, "expected exactly one track after duplicate ingest")
}

func TestRecognize_SelfRecognition(t *testing.T) {
	s := newFakeStore()
	e := New(s, 5)
	audio := sineWAV(5, 440)

	_, err := e.Ingest(context.Background(), audio, "sweep", "lab")
	require.NoError(t, err)

	result, err := e.Recognize(context.Background(), audio)
	require.NoError(t, err)
	require.NotNil(t, result, "expected self-recognition to find a match")
	assert.Equal(t, "sweep", result.Title)
	assert.Equal(t, "lab", result.Artist)
	assert.Greater(t, result.Confidence, 0.1)
}

func TestRecognize_UnknownAudioIsNoMatch(t *testing.T) {
	s := newFakeStore()
	e := New(s, 5)

	_, err := e.Ingest(context.Background(), sineWAV(5, 440), "sweep", "lab")
	require.NoError(t, err)

	result, err := e.Recognize(context.Background(), sineWAV(5, 9000))
	require.NoError(t, err)
	assert.Nil(t, result, "expected no match for unrelated audio")
}

func TestRecognize_DecodeErrorIsNoMatchNotHardError(t *testing.T) {
	s := newFakeStore()
	e := New(s, 5)

	result, err := e.Recognize(context.Background(), []byte("not audio"))
	require.NoError(t, err, "expected decode failure to surface as no-match, not a hard error")
	assert.Nil(t, result)
}
