package groups

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/FACorreiaa/swipetrip/internal/app/domain"
	"github.com/FACorreiaa/swipetrip/internal/app/models"
)

type GroupsHandler struct {
	*domain.BaseHandler
	service GroupsService
}

func NewGroupsHandler(service GroupsService, logger *zap.Logger) *GroupsHandler {
	return &GroupsHandler{
		BaseHandler: domain.NewBaseHandler(logger),
		service:     service,
	}
}

// Create handles POST /api/groups.
func (h *GroupsHandler) Create(c *gin.Context) {
	var req models.CreateGroupRequest
	if !h.BindJSON(c, &req) {
		return
	}
	creatorID, ok := h.ActingUser(c, req.CreatorID)
	if !ok {
		return
	}

	group, err := h.service.CreateGroup(c.Request.Context(), req.Name, creatorID, req.VoteEndTime)
	if err != nil {
		h.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, group)
}

func (h *GroupsHandler) Get(c *gin.Context) {
	groupID, ok := h.IDParam(c, "id")
	if !ok {
		return
	}
	group, err := h.service.GetGroup(c.Request.Context(), groupID)
	if err != nil {
		h.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, group)
}

// ListForUser handles GET /api/users/:userId/groups.
func (h *GroupsHandler) ListForUser(c *gin.Context) {
	userID, ok := h.SelfParam(c, "userId")
	if !ok {
		return
	}
	groups, err := h.service.ListUserGroups(c.Request.Context(), userID)
	if err != nil {
		h.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, groups)
}

func (h *GroupsHandler) Members(c *gin.Context) {
	groupID, ok := h.IDParam(c, "id")
	if !ok {
		return
	}
	members, err := h.service.ListMembers(c.Request.Context(), groupID)
	if err != nil {
		h.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, members)
}

// AddMember handles POST /api/groups/:id/members. The body names the user to
// add; the authenticated user is the one adding.
func (h *GroupsHandler) AddMember(c *gin.Context) {
	groupID, ok := h.IDParam(c, "id")
	if !ok {
		return
	}
	var req models.AddMemberRequest
	if !h.BindJSON(c, &req) {
		return
	}
	actorID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}

	member, err := h.service.AddMember(c.Request.Context(), groupID, actorID, req.UserID)
	if err != nil {
		h.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, member)
}

// Vote handles POST /api/groups/:id/votes.
func (h *GroupsHandler) Vote(c *gin.Context) {
	groupID, ok := h.IDParam(c, "id")
	if !ok {
		return
	}
	var req models.GroupVoteRequest
	if !h.BindJSON(c, &req) {
		return
	}
	userID, ok := h.ActingUser(c, req.UserID)
	if !ok {
		return
	}

	vote, err := h.service.CastVote(c.Request.Context(), groupID, userID, req.DestinationID, *req.Liked)
	if err != nil {
		h.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, vote)
}

// Tally handles GET /api/groups/:id/votes.
func (h *GroupsHandler) Tally(c *gin.Context) {
	groupID, ok := h.IDParam(c, "id")
	if !ok {
		return
	}
	results, err := h.service.Tally(c.Request.Context(), groupID)
	if err != nil {
		h.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, results)
}
