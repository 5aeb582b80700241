package domain

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/FACorreiaa/swipetrip/internal/app/middleware"
	"github.com/FACorreiaa/swipetrip/internal/app/models"
)

type BaseHandler struct {
	Logger *zap.Logger
}

func NewBaseHandler(logger *zap.Logger) *BaseHandler {
	return &BaseHandler{Logger: logger}
}

// StatusFor maps a service error to the HTTP status returned to clients.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrValidation),
		errors.Is(err, models.ErrConflict),
		errors.Is(err, models.ErrAlreadyMember):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, models.ErrForbidden),
		errors.Is(err, models.ErrNotMember):
		return http.StatusForbidden
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// RespondError writes {"message": ...} for err. Unexpected errors are logged
// and hidden behind a generic message.
func (h *BaseHandler) RespondError(c *gin.Context, err error) {
	status := StatusFor(err)
	if status == http.StatusInternalServerError {
		h.Logger.Error("Request failed",
			zap.String("path", c.FullPath()),
			zap.String("method", c.Request.Method),
			zap.Error(err))
		c.JSON(status, gin.H{"message": "internal server error"})
		return
	}

	h.Logger.Debug("Request rejected",
		zap.String("path", c.FullPath()),
		zap.Int("status", status),
		zap.Error(err))
	c.JSON(status, gin.H{"message": err.Error()})
}

// BindJSON decodes the body into dst and answers 400 on failure.
func (h *BaseHandler) BindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		h.RespondError(c, fmt.Errorf("%w: %s", models.ErrValidation, err.Error()))
		return false
	}
	return true
}

// IDParam parses a positive integer path parameter.
func (h *BaseHandler) IDParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		h.RespondError(c, fmt.Errorf("%w: invalid %s %q", models.ErrValidation, name, c.Param(name)))
		return 0, false
	}
	return id, true
}

// CurrentUserID returns the authenticated user set by the auth middleware.
func (h *BaseHandler) CurrentUserID(c *gin.Context) (int64, bool) {
	id, ok := middleware.UserIDFromContext(c)
	if !ok {
		h.RespondError(c, models.ErrUnauthenticated)
		return 0, false
	}
	return id, true
}

// ActingUser resolves the user a request acts for. A zero claimed id means
// the authenticated user; any other id must match it.
func (h *BaseHandler) ActingUser(c *gin.Context, claimed int64) (int64, bool) {
	current, ok := h.CurrentUserID(c)
	if !ok {
		return 0, false
	}
	if claimed != 0 && claimed != current {
		h.RespondError(c, fmt.Errorf("%w: cannot act for user %d", models.ErrForbidden, claimed))
		return 0, false
	}
	return current, true
}

// SelfParam reads a user id path parameter that must be the authenticated
// user.
func (h *BaseHandler) SelfParam(c *gin.Context, name string) (int64, bool) {
	id, ok := h.IDParam(c, name)
	if !ok {
		return 0, false
	}
	return h.ActingUser(c, id)
}
