package destinations

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/FACorreiaa/swipetrip/internal/app/domain"
)

type DestinationsHandler struct {
	*domain.BaseHandler
	service DestinationsService
}

func NewDestinationsHandler(service DestinationsService, logger *zap.Logger) *DestinationsHandler {
	return &DestinationsHandler{
		BaseHandler: domain.NewBaseHandler(logger),
		service:     service,
	}
}

// List is public, but excludeSwipedBy is only accepted for the caller's own
// id.
func (h *DestinationsHandler) List(c *gin.Context) {
	filter, err := ParseFilter(c.Request.URL.Query())
	if err != nil {
		h.RespondError(c, err)
		return
	}
	if filter.ExcludeSwipedBy != 0 {
		if _, ok := h.ActingUser(c, filter.ExcludeSwipedBy); !ok {
			return
		}
	}

	list, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *DestinationsHandler) Get(c *gin.Context) {
	id, ok := h.IDParam(c, "id")
	if !ok {
		return
	}
	d, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		h.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

func (h *DestinationsHandler) Details(c *gin.Context) {
	id, ok := h.IDParam(c, "id")
	if !ok {
		return
	}
	detail, err := h.service.Details(c.Request.Context(), id)
	if err != nil {
		h.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

func (h *DestinationsHandler) Hotels(c *gin.Context) {
	id, ok := h.IDParam(c, "id")
	if !ok {
		return
	}
	hotels, err := h.service.Hotels(c.Request.Context(), id)
	if err != nil {
		h.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, hotels)
}

func (h *DestinationsHandler) Highlights(c *gin.Context) {
	id, ok := h.IDParam(c, "id")
	if !ok {
		return
	}
	highlights, err := h.service.Highlights(c.Request.Context(), id)
	if err != nil {
		h.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, highlights)
}
