package auth

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/FACorreiaa/swipetrip/internal/app/domain"
	"github.com/FACorreiaa/swipetrip/internal/app/middleware"
	"github.com/FACorreiaa/swipetrip/internal/app/models"
)

type AuthHandler struct {
	*domain.BaseHandler
	service    AuthService
	instanceID string
}

// NewAuthHandler opens sessions tagged with instanceID so that a cookie from an
// earlier run is not accepted.
func NewAuthHandler(service AuthService, instanceID string, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		BaseHandler: domain.NewBaseHandler(logger),
		service:     service,
		instanceID:  instanceID,
	}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if !h.BindJSON(c, &req) {
		return
	}

	resp, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		h.RespondError(c, err)
		return
	}

	if err := h.openSession(c, resp.User.ID); err != nil {
		h.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if !h.BindJSON(c, &req) {
		return
	}

	resp, err := h.service.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		h.RespondError(c, err)
		return
	}

	if err := h.openSession(c, resp.User.ID); err != nil {
		h.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *AuthHandler) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	session.Options(sessions.Options{Path: "/", MaxAge: -1})
	if err := session.Save(); err != nil {
		h.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}

	user, err := h.service.GetUser(c.Request.Context(), userID)
	if err != nil {
		h.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *AuthHandler) openSession(c *gin.Context, userID int64) error {
	session := sessions.Default(c)
	session.Set(middleware.SessionUserKey, userID)
	session.Set(middleware.SessionInstanceKey, h.instanceID)
	return session.Save()
}
