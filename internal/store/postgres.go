package store

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"github.com/lib/pq"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/shazoom/fingerprint/internal/fingerprint"
	"github.com/shazoom/fingerprint/internal/match"
)

// insertBatchSize caps how many landmark rows go into a single multi-row
// INSERT.
const insertBatchSize = 5000

// Postgres is a Store backed by PostgreSQL via database/sql and pgx/v5's
// stdlib driver.
type Postgres struct {
	db *sql.DB
}

// NewPostgres opens a connection, verifies it, and ensures the schema
// exists.
func NewPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening postgres connection: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	if err := createTables(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Postgres{db: db}, nil
}

func createTables(ctx context.Context, db *sql.DB) error {
	const createTracks = `
	CREATE TABLE IF NOT EXISTS tracks (
		id           BIGSERIAL PRIMARY KEY,
		title        TEXT NOT NULL,
		artist       TEXT NOT NULL DEFAULT '',
		album        TEXT,
		duration     DOUBLE PRECISION,
		indexed      BOOLEAN NOT NULL DEFAULT FALSE,
		content_hash TEXT NOT NULL UNIQUE,
		created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at   TIMESTAMPTZ NOT NULL DEFAULT now()
	);`

	const createLandmarks = `
	CREATE TABLE IF NOT EXISTS landmarks (
		id          BIGSERIAL PRIMARY KEY,
		digest      TEXT NOT NULL,
		track_id    BIGINT NOT NULL REFERENCES tracks(id) ON DELETE CASCADE,
		anchor_time INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_landmarks_digest_track ON landmarks (digest, track_id);
	`

	if _, err := db.ExecContext(ctx, createTracks); err != nil {
		return fmt.Errorf("creating tracks table: %w", err)
	}
	if _, err := db.ExecContext(ctx, createLandmarks); err != nil {
		return fmt.Errorf("creating landmarks table: %w", err)
	}
	return nil
}

func (p *Postgres) Close() error {
	return p.db.Close()
}

// CreateTrack registers a track, or returns the existing one with
// ErrConflict on a content_hash collision.
func (p *Postgres) CreateTrack(ctx context.Context, contentHash, title, artist string) (Track, error) {
	var id int64
	err := p.db.QueryRowContext(ctx, `
		INSERT INTO tracks (title, artist, content_hash)
		VALUES ($1, $2, $3)
		RETURNING id
	`, title, artist, contentHash).Scan(&id)

	if err == nil {
		return Track{ID: strconv.FormatInt(id, 10), Title: title, Artist: artist, ContentHash: contentHash}, nil
	}

	if isUniqueViolation(err) {
		existing, found, lookupErr := p.trackByContentHash(ctx, contentHash)
		if lookupErr != nil {
			return Track{}, lookupErr
		}
		if found {
			return existing, ErrConflict
		}
	}

	return Track{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
}

func (p *Postgres) trackByContentHash(ctx context.Context, contentHash string) (Track, bool, error) {
	var t Track
	var id int64
	err := p.db.QueryRowContext(ctx, `
		SELECT id, title, artist, content_hash, indexed FROM tracks WHERE content_hash = $1
	`, contentHash).Scan(&id, &t.Title, &t.Artist, &t.ContentHash, &t.Indexed)
	if err == sql.ErrNoRows {
		return Track{}, false, nil
	}
	if err != nil {
		return Track{}, false, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	t.ID = strconv.FormatInt(id, 10)
	return t, true, nil
}

func isUniqueViolation(err error) bool {
	return strings.Contains(err.Error(), "duplicate key") || strings.Contains(err.Error(), "unique constraint")
}

// InsertLandmarks bulk-inserts landmarks for trackID in fixed-size batches,
// each its own transaction.
func (p *Postgres) InsertLandmarks(ctx context.Context, trackID string, landmarks []fingerprint.Landmark) error {
	if len(landmarks) == 0 {
		return nil
	}

	id, err := strconv.ParseInt(trackID, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid track id %q: %w", trackID, err)
	}

	for start := 0; start < len(landmarks); start += insertBatchSize {
		end := start + insertBatchSize
		if end > len(landmarks) {
			end = len(landmarks)
		}
		if err := p.insertBatch(ctx, id, landmarks[start:end]); err != nil {
			return err
		}
	}
	return nil
}

func (p *Postgres) insertBatch(ctx context.Context, trackID int64, batch []fingerprint.Landmark) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer tx.Rollback()

	valueStrings := make([]string, 0, len(batch))
	valueArgs := make([]any, 0, len(batch)*3)
	paramIndex := 1

	for _, lm := range batch {
		valueStrings = append(valueStrings, fmt.Sprintf("($%d, $%d, $%d)", paramIndex, paramIndex+1, paramIndex+2))
		valueArgs = append(valueArgs, lm.Digest, trackID, lm.AnchorTime)
		paramIndex += 3
	}

	query := fmt.Sprintf(`INSERT INTO landmarks (digest, track_id, anchor_time) VALUES %s`, strings.Join(valueStrings, ","))
	if _, err := tx.ExecContext(ctx, query, valueArgs...); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// SetIndexed flips indexed=true in its own transaction.
func (p *Postgres) SetIndexed(ctx context.Context, trackID string) error {
	_, err := p.db.ExecContext(ctx, `UPDATE tracks SET indexed = TRUE, updated_at = now() WHERE id = $1`, trackID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// LookupDigests resolves a batch of digests against the landmarks of
// indexed tracks only, using pq.Array for the ANY($1) form.
func (p *Postgres) LookupDigests(ctx context.Context, digests []string) ([]match.Row, error) {
	if len(digests) == 0 {
		return nil, nil
	}

	rows, err := p.db.QueryContext(ctx, `
		SELECT l.digest, l.track_id, l.anchor_time, t.title, t.artist
		FROM landmarks l
		JOIN tracks t ON t.id = l.track_id
		WHERE l.digest = ANY($1) AND t.indexed = TRUE
	`, pq.Array(digests))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer rows.Close()

	var out []match.Row
	for rows.Next() {
		var r match.Row
		var trackID int64
		if err := rows.Scan(&r.Digest, &trackID, &r.DBAnchor, &r.Title, &r.Artist); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		r.TrackID = strconv.FormatInt(trackID, 10)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return out, nil
}

// Stats reports catalog-wide counts for GET /api/stats.
func (p *Postgres) Stats(ctx context.Context) (Stats, error) {
	var s Stats
	err := p.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tracks WHERE indexed = TRUE`).Scan(&s.TotalSongs)
	if err != nil {
		return Stats{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	err = p.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM landmarks`).Scan(&s.TotalFingerprints)
	if err != nil {
		return Stats{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	if s.TotalSongs > 0 {
		s.AverageFingerprintsPerSong = float64(s.TotalFingerprints) / float64(s.TotalSongs)
	}
	return s, nil
}
