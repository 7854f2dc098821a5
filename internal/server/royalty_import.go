package server

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"

	ingestdomain "github.com/smallbiznis/royaltyflow/internal/ingest/domain"
	royaltydomain "github.com/smallbiznis/royaltyflow/internal/royalty/domain"
)

type importRequest struct {
	Year    int    `json:"year"`
	Quarter int    `json:"quarter"`
	Payload string `json:"payload"`

	BatchSize      int  `json:"batch_size,omitempty"`
	MaxConcurrency int  `json:"max_concurrency,omitempty"`
	RetryAttempts  *int `json:"retry_attempts,omitempty"`
	RetryDelayMs   int  `json:"retry_delay_ms,omitempty"`
}

func (s *Server) ImportRoyalties(c *gin.Context) {
	artistID, err := snowflake.ParseString(strings.TrimSpace(c.Param("artist_id")))
	if err != nil || artistID == 0 {
		AbortWithError(c, newValidationError("artist_id", "invalid_artist_id", "invalid artist id"))
		return
	}

	var req importRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	// Request tuning wins, then the configured defaults, then the stock ones.
	batch := ingestdomain.BatchConfig{
		BatchSize:      req.BatchSize,
		MaxConcurrency: req.MaxConcurrency,
		RetryDelay:     time.Duration(req.RetryDelayMs) * time.Millisecond,
	}
	if batch.BatchSize == 0 {
		batch.BatchSize = s.cfg.Ingest.BatchSize
	}
	if batch.MaxConcurrency == 0 {
		batch.MaxConcurrency = s.cfg.Ingest.MaxConcurrency
	}
	if batch.RetryDelay == 0 {
		batch.RetryDelay = time.Duration(s.cfg.Ingest.RetryDelayMs) * time.Millisecond
	}
	if req.RetryAttempts != nil {
		batch.RetryAttempts = *req.RetryAttempts
	} else {
		batch.RetryAttempts = s.cfg.Ingest.RetryAttempts
	}

	res, err := s.ingestSvc.ImportFile(c.Request.Context(), ingestdomain.ImportRequest{
		ArtistID: artistID,
		Year:     req.Year,
		Quarter:  req.Quarter,
		Payload:  req.Payload,
		Batch:    batch,
	})
	if err != nil && !errors.Is(err, ingestdomain.ErrNoValidRows) {
		AbortWithError(c, err)
		return
	}

	status := http.StatusOK
	if !res.Success {
		status = http.StatusUnprocessableEntity
	}
	c.JSON(status, gin.H{"result": importResponse(res)})
}

func (s *Server) ListRoyaltySummaries(c *gin.Context) {
	artistID, err := snowflake.ParseString(strings.TrimSpace(c.Param("artist_id")))
	if err != nil || artistID == 0 {
		AbortWithError(c, newValidationError("artist_id", "invalid_artist_id", "invalid artist id"))
		return
	}

	var query struct {
		Year    int `form:"year"`
		Quarter int `form:"quarter"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.royaltySvc.ListSummaries(c.Request.Context(), royaltydomain.ListSummariesRequest{
		ArtistID: artistID,
		Year:     query.Year,
		Quarter:  query.Quarter,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func importResponse(res *ingestdomain.ProcessingResult) gin.H {
	return gin.H{
		"success":         res.Success,
		"rows_processed":  res.RowsProcessed,
		"valid_rows":      res.ValidRows,
		"invalid_rows":    res.InvalidRows,
		"inserted":        res.Inserted,
		"failed":          res.Failed,
		"tracks_created":  res.TracksCreated,
		"tracks_matched":  res.TracksMatched,
		"duration_ms":     res.Duration.Milliseconds(),
		"rows_per_second": res.RowsPerSecond,
		"rejection_file":  res.RejectionFile,
	}
}
