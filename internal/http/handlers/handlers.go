package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/nagarik-sewa/backend/internal/service"
	"github.com/nagarik-sewa/backend/internal/store"
)

type Handler struct {
	Visits    *service.VisitService
	Analytics *service.AnalyticsService
	Dir       service.Directory
	Store     store.VisitStore
	Validator *validator.Validate
	Logger    zerolog.Logger
	AdminKey  string
}

func (h *Handler) Healthz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()
	if err := h.Store.Ping(ctx); err != nil {
		writeError(c, http.StatusServiceUnavailable, "STORE_UNAVAILABLE", "Visit store unavailable", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func writeError(c *gin.Context, status int, code string, message string, details any) {
	c.JSON(status, gin.H{
		"error": gin.H{
			"code":    code,
			"message": message,
			"details": details,
		},
	})
}

// writeServiceError maps the domain error taxonomy onto HTTP codes.
func (h *Handler) writeServiceError(c *gin.Context, err error) {
	var (
		validationErr *service.ValidationError
		notFoundErr   *service.NotFoundError
		stateErr      *service.StateTransitionError
		conflictErr   *service.ConflictError
	)
	switch {
	case errors.As(err, &validationErr):
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", validationErr.Error(), nil)
	case errors.As(err, &notFoundErr):
		writeError(c, http.StatusNotFound, "NOT_FOUND", notFoundErr.Error(), nil)
	case errors.As(err, &stateErr):
		writeError(c, http.StatusConflict, "INVALID_STATE_TRANSITION", stateErr.Error(), nil)
	case errors.As(err, &conflictErr):
		writeError(c, http.StatusConflict, "CONCURRENCY_CONFLICT", conflictErr.Error(), nil)
	default:
		h.Logger.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
		writeError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal error", nil)
	}
}
