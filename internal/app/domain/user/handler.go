package user

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/FACorreiaa/swipetrip/internal/app/domain"
	"github.com/FACorreiaa/swipetrip/internal/app/models"
)

type Handler struct {
	*domain.BaseHandler
	service UserService
}

func NewHandler(service UserService, logger *zap.Logger) *Handler {
	return &Handler{
		BaseHandler: domain.NewBaseHandler(logger),
		service:     service,
	}
}

// Get handles GET /api/users/:userId. Other users only see the public
// profile.
func (h *Handler) Get(c *gin.Context) {
	userID, ok := h.IDParam(c, "userId")
	if !ok {
		return
	}
	current, ok := h.CurrentUserID(c)
	if !ok {
		return
	}

	u, err := h.service.GetUser(c.Request.Context(), userID)
	if err != nil {
		h.RespondError(c, err)
		return
	}
	if current != userID {
		c.JSON(http.StatusOK, u.Profile())
		return
	}
	c.JSON(http.StatusOK, u)
}

// Update handles PATCH /api/users/:userId.
func (h *Handler) Update(c *gin.Context) {
	userID, ok := h.SelfParam(c, "userId")
	if !ok {
		return
	}
	var req models.UpdateUserRequest
	if !h.BindJSON(c, &req) {
		return
	}

	u, err := h.service.UpdateUserProfile(c.Request.Context(), userID, req)
	if err != nil {
		h.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}
