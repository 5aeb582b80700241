package buddies

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/FACorreiaa/swipetrip/internal/app/domain"
	"github.com/FACorreiaa/swipetrip/internal/app/models"
)

type BuddiesHandler struct {
	*domain.BaseHandler
	service BuddiesService
}

func NewBuddiesHandler(service BuddiesService, logger *zap.Logger) *BuddiesHandler {
	return &BuddiesHandler{
		BaseHandler: domain.NewBaseHandler(logger),
		service:     service,
	}
}

// List handles GET /api/users/:userId/buddies.
func (h *BuddiesHandler) List(c *gin.Context) {
	userID, ok := h.SelfParam(c, "userId")
	if !ok {
		return
	}

	matches, err := h.service.ListBuddies(c.Request.Context(), userID)
	if err != nil {
		h.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, matches)
}

// UpdateStatus handles PATCH /api/buddies/:id/status.
func (h *BuddiesHandler) UpdateStatus(c *gin.Context) {
	buddyID, ok := h.IDParam(c, "id")
	if !ok {
		return
	}
	var req models.UpdateBuddyStatusRequest
	if !h.BindJSON(c, &req) {
		return
	}
	actorID, ok := h.ActingUser(c, req.UserID)
	if !ok {
		return
	}

	updated, err := h.service.UpdateStatus(c.Request.Context(), buddyID, actorID, req.Status)
	if err != nil {
		h.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}
