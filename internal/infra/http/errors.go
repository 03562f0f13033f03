package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"complyd/internal/bootstrap/logging"
	"complyd/internal/domain"
	"complyd/internal/errs"
)

type errorBody struct {
	Category string `json:"category"`
	Message  string `json:"message"`
}

// writeError translates the domain error taxonomy onto HTTP statuses.
// Unclassified errors are treated as dependency failures and never expose
// their message.
func writeError(c *gin.Context, err error) {
	category := domain.CategoryOf(err)
	status := statusFor(category)
	var message string
	var de *domain.Error
	if errors.As(err, &de) {
		message = de.Message
	} else {
		logging.Error(c.Request.Context(), "request failed", slog.Any("err", errs.Loggable(err)))
		message = "a dependency is currently unavailable"
	}
	c.JSON(status, gin.H{"error": errorBody{Category: string(category), Message: message}})
}

func writeErrorCode(c *gin.Context, status int, category, message string) {
	c.JSON(status, gin.H{"error": errorBody{Category: category, Message: message}})
}

func statusFor(category domain.ErrorCategory) int {
	switch category {
	case domain.CategoryValidation:
		return http.StatusBadRequest
	case domain.CategoryNotFound:
		return http.StatusNotFound
	case domain.CategoryPrecondition:
		return http.StatusUnprocessableEntity
	case domain.CategoryAuthorization:
		return http.StatusForbidden
	case domain.CategoryConflict:
		return http.StatusConflict
	default:
		return http.StatusBadGateway
	}
}
