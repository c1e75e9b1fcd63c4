// Package middleware holds the gin middleware for the read-only API.
package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	apperrors "github.com/SDWZORO/GiveAwayBot/internal/common/errors"
	"github.com/SDWZORO/GiveAwayBot/internal/common/logger"
	"github.com/gin-gonic/gin"
)

// ErrorResponse is the envelope every failed request returns.
type ErrorResponse struct {
	Success   bool                `json:"success"`
	Error     *apperrors.AppError `json:"error"`
	Timestamp time.Time           `json:"timestamp"`
	RequestID string              `json:"request_id"`
	Path      string              `json:"path,omitempty"`
}

// Recovery converts panics into INTERNAL_ERROR responses.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logger.Error().
			Str("request_id", c.GetString("request_id")).
			Str("path", c.Request.URL.Path).
			Str("panic", fmt.Sprintf("%v", recovered)).
			Str("stack", string(debug.Stack())).
			Msg("Panic recovered")

		appErr := apperrors.New(apperrors.ErrCodeInternal, "Internal server error")
		SendError(c, appErr)
	})
}

// SendError writes an AppError with the HTTP status its code maps to.
func SendError(c *gin.Context, appErr *apperrors.AppError) {
	c.AbortWithStatusJSON(statusFor(appErr.Code), ErrorResponse{
		Success:   false,
		Error:     appErr,
		Timestamp: time.Now().UTC(),
		RequestID: c.GetString("request_id"),
		Path:      c.Request.URL.Path,
	})
}

func statusFor(code apperrors.ErrorCode) int {
	switch code {
	case apperrors.ErrCodeValidation:
		return http.StatusBadRequest
	case apperrors.ErrCodeGiveawayNotFound, apperrors.ErrCodeNotParticipant:
		return http.StatusNotFound
	case apperrors.ErrCodeUserBanned, apperrors.ErrCodeSubscriptionRequired:
		return http.StatusForbidden
	case apperrors.ErrCodeAlreadyJoined:
		return http.StatusConflict
	case apperrors.ErrCodeCooldownActive:
		return http.StatusTooManyRequests
	case apperrors.ErrCodeGiveawayEnded, apperrors.ErrCodeGiveawayNotActive:
		return http.StatusGone
	default:
		return http.StatusInternalServerError
	}
}
