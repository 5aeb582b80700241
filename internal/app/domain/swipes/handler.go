package swipes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/FACorreiaa/swipetrip/internal/app/domain"
	"github.com/FACorreiaa/swipetrip/internal/app/models"
)

type SwipesHandler struct {
	*domain.BaseHandler
	service SwipesService
}

func NewSwipesHandler(service SwipesService, logger *zap.Logger) *SwipesHandler {
	return &SwipesHandler{
		BaseHandler: domain.NewBaseHandler(logger),
		service:     service,
	}
}

// Create handles POST /api/swipes.
func (h *SwipesHandler) Create(c *gin.Context) {
	var req models.SwipeRequest
	if !h.BindJSON(c, &req) {
		return
	}
	userID, ok := h.ActingUser(c, req.UserID)
	if !ok {
		return
	}

	result, err := h.service.Record(c.Request.Context(), userID, req.DestinationID, *req.Liked)
	if err != nil {
		h.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

// Likes handles GET /api/users/:userId/likes.
func (h *SwipesHandler) Likes(c *gin.Context) {
	userID, ok := h.SelfParam(c, "userId")
	if !ok {
		return
	}

	likes, err := h.service.LikedDestinations(c.Request.Context(), userID)
	if err != nil {
		h.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, likes)
}
