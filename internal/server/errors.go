package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	catalogdomain "github.com/smallbiznis/royaltyflow/internal/catalog/domain"
	ingestdomain "github.com/smallbiznis/royaltyflow/internal/ingest/domain"
	royaltydomain "github.com/smallbiznis/royaltyflow/internal/royalty/domain"
)

// apiError is the wire shape of every error response.
type apiError struct {
	Status  int    `json:"-"`
	Field   string `json:"field,omitempty"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *apiError) Error() string { return e.Code + ": " + e.Message }

func newValidationError(field, code, message string) *apiError {
	return &apiError{Status: http.StatusUnprocessableEntity, Field: field, Code: code, Message: message}
}

func invalidRequestError() *apiError {
	return &apiError{Status: http.StatusBadRequest, Code: "invalid_request", Message: "request body could not be read"}
}

// AbortWithError maps domain errors onto HTTP responses.
func AbortWithError(c *gin.Context, err error) {
	var api *apiError
	if errors.As(err, &api) {
		c.AbortWithStatusJSON(api.Status, gin.H{"error": api})
		return
	}

	status := http.StatusInternalServerError
	code := "internal_error"
	switch {
	case errors.Is(err, ingestdomain.ErrInvalidArtist),
		errors.Is(err, ingestdomain.ErrInvalidYear),
		errors.Is(err, ingestdomain.ErrInvalidQuarter),
		errors.Is(err, ingestdomain.ErrEmptyPayload),
		errors.Is(err, royaltydomain.ErrInvalidArtist),
		errors.Is(err, royaltydomain.ErrInvalidYear),
		errors.Is(err, royaltydomain.ErrInvalidQuarter),
		errors.Is(err, catalogdomain.ErrInvalidArtist):
		status = http.StatusUnprocessableEntity
		code = err.Error()
	case errors.Is(err, ingestdomain.ErrNoValidRows):
		status = http.StatusUnprocessableEntity
		code = ingestdomain.ErrNoValidRows.Error()
	}

	c.AbortWithStatusJSON(status, gin.H{"error": gin.H{"code": code, "message": err.Error()}})
}
