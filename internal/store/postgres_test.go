package store

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/shazoom/fingerprint/internal/fingerprint"
)

// testDSN requires a live database, reachable via env var rather than a
// mock; the test is skipped when it isn't configured.
func testDSN(t *testing.T) string {
	dsn := os.Getenv("FINGERPRINT_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("FINGERPRINT_TEST_DATABASE_URL not set, skipping Postgres integration test")
	}
	return dsn
}

func TestPostgres_CreateTrackIsIdempotentOnContentHash(t *testing.T) {
	ctx := context.Background()
	db, err := NewPostgres(ctx, testDSN(t))
	require.NoError(t, err)
	defer db.Close()

	contentHash := "integration-test-hash-1"
	first, err := db.CreateTrack(ctx, contentHash, "Bargad", "Arpit Bala")
	require.NoError(t, err)

	_, err = db.CreateTrack(ctx, contentHash, "different title", "different artist")
	require.ErrorIs(t, err, ErrConflict)

	existing, found, err := db.trackByContentHash(ctx, contentHash)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, first.ID, existing.ID)
}

func TestPostgres_InsertAndLookupLandmarks(t *testing.T) {
	ctx := context.Background()
	db, err := NewPostgres(ctx, testDSN(t))
	require.NoError(t, err)
	defer db.Close()

	track, err := db.CreateTrack(ctx, "integration-test-hash-2", "Bargad", "Arpit Bala")
	require.NoError(t, err)

	landmarks := []fingerprint.Landmark{
		{Digest: "abcdef0123456789abcd", AnchorTime: 100},
		{Digest: "0123456789abcdefabcd", AnchorTime: 200},
	}
	require.NoError(t, db.InsertLandmarks(ctx, track.ID, landmarks))
	require.NoError(t, db.SetIndexed(ctx, track.ID))

	rows, err := db.LookupDigests(ctx, []string{"abcdef0123456789abcd", "nonexistentdigest0000"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, track.ID, rows[0].TrackID)
	require.Equal(t, 100, rows[0].DBAnchor)
}
