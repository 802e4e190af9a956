// Package api exposes the recognition service over HTTP, built with gin.
package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/shazoom/fingerprint/internal/engine"
	"github.com/shazoom/fingerprint/internal/logging"
	"github.com/shazoom/fingerprint/internal/worker"
)

// Server holds the dependencies the route handlers need.
type Server struct {
	engine *engine.Engine
	pool   *worker.Pool
}

// New builds a Server over an engine and a background worker pool for
// ingest dispatch.
func New(e *engine.Engine, pool *worker.Pool) *Server {
	return &Server{engine: e, pool: pool}
}

// Router builds the gin engine with every route under /api.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())

	group := r.Group("/api")
	group.POST("/ingest", s.handleIngest)
	group.POST("/recognize", s.handleRecognize)
	group.GET("/stats", s.handleStats)
	group.GET("/health", s.handleHealth)

	return r
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		logging.Get().Info("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
		)
	}
}

// readAudioFile extracts and validates the uploaded "file" field, requiring
// its declared Content-Type to begin with "audio/".
func readAudioFile(c *gin.Context) ([]byte, error) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return nil, fmt.Errorf("%w: missing file field: %v", engine.ErrInvalidInput, err)
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "audio/") {
		return nil, engine.ErrInvalidInput
	}

	f, err := fileHeader.Open()
	if err != nil {
		return nil, fmt.Errorf("open uploaded file: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read uploaded file: %w", err)
	}
	return data, nil
}

func (s *Server) handleIngest(c *gin.Context) {
	data, err := readAudioFile(c)
	if err != nil {
		respondUploadError(c, err)
		return
	}

	title := c.PostForm("title")
	artist := c.PostForm("artist")
	if title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title is required"})
		return
	}

	hash := engine.ContentHash(data)

	err = s.pool.Submit(func(ctx context.Context) {
		if _, err := s.engine.Ingest(ctx, data, title, artist); err != nil {
			logging.Get().ErrorContext(ctx, "background ingest failed", "error", logging.Wrap(err), "file_hash", hash)
		}
	})
	if errors.Is(err, worker.ErrQueueFull) {
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "ingest queue full, retry later"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   "ingest accepted",
		"status":    "processing",
		"file_hash": hash,
	})
}

func (s *Server) handleRecognize(c *gin.Context) {
	data, err := readAudioFile(c)
	if err != nil {
		respondUploadError(c, err)
		return
	}

	result, err := s.engine.Recognize(c.Request.Context(), data)
	if err != nil {
		logging.Get().ErrorContext(c.Request.Context(), "recognize failed", "error", logging.Wrap(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	if result == nil {
		c.JSON(http.StatusOK, gin.H{"match_found": false})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"match_found": true,
		"song": gin.H{
			"title":           result.Title,
			"artist":          result.Artist,
			"confidence":      result.Confidence,
			"aligned_matches": result.AlignedMatches,
		},
	})
}

func (s *Server) handleStats(c *gin.Context) {
	stats, err := s.engine.Stats(c.Request.Context())
	if err != nil {
		logging.Get().ErrorContext(c.Request.Context(), "stats failed", "error", logging.Wrap(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"total_songs":                   stats.TotalSongs,
		"total_fingerprints":            stats.TotalFingerprints,
		"average_fingerprints_per_song": stats.AverageFingerprintsPerSong,
	})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

func respondUploadError(c *gin.Context, err error) {
	if errors.Is(err, engine.ErrInvalidInput) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file field with an audio/* content-type is required"})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read upload"})
}
