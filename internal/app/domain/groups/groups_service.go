// Package groups implements crew voting: groups of users, their membership,
// per-destination votes and the ranked tally.
package groups

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/FACorreiaa/swipetrip/internal/app/models"
	"github.com/FACorreiaa/swipetrip/internal/app/observability/metrics"
	"github.com/FACorreiaa/swipetrip/internal/app/relay"
)

type Repository interface {
	GetUser(id int64) (*models.User, error)
	GetDestination(id int64) (*models.Destination, error)
	CreateGroupWithCreator(name string, creatorID int64, voteEndTime *time.Time) (*models.Group, *models.GroupMember, error)
	GetGroup(id int64) (*models.Group, error)
	ListGroups(keep func(models.Group) bool) []models.Group
	AddGroupMemberIfAbsent(groupID, userID int64) (*models.GroupMember, bool, error)
	IsGroupMember(groupID, userID int64) bool
	ListGroupMembers(keep func(models.GroupMember) bool) []models.GroupMember
	UpsertGroupVote(groupID, userID, destinationID int64, liked bool) (*models.GroupVote, bool, error)
	ListGroupVotes(keep func(models.GroupVote) bool) []models.GroupVote
}

var _ GroupsService = (*GroupsServiceImpl)(nil)

type GroupsService interface {
	CreateGroup(ctx context.Context, name string, creatorID int64, voteEndTime *time.Time) (*models.GroupView, error)
	GetGroup(ctx context.Context, groupID int64) (*models.GroupView, error)
	ListUserGroups(ctx context.Context, userID int64) ([]models.GroupView, error)
	ListMembers(ctx context.Context, groupID int64) ([]models.GroupMemberView, error)
	AddMember(ctx context.Context, groupID, actorID, userID int64) (*models.GroupMember, error)
	CastVote(ctx context.Context, groupID, userID, destinationID int64, liked bool) (*models.GroupVote, error)
	Tally(ctx context.Context, groupID int64) ([]models.VoteResult, error)
}

type GroupsServiceImpl struct {
	logger    *zap.Logger
	repo      Repository
	publisher relay.Publisher
	now       func() time.Time
}

func NewGroupsService(repo Repository, publisher relay.Publisher, logger *zap.Logger) *GroupsServiceImpl {
	return &GroupsServiceImpl{
		logger:    logger,
		repo:      repo,
		publisher: publisher,
		now:       time.Now,
	}
}

func (s *GroupsServiceImpl) view(g models.Group) models.GroupView {
	return models.GroupView{Group: g, VotingOpen: g.VotingOpen(s.now())}
}

// CreateGroup creates a group with the creator as its first member.
func (s *GroupsServiceImpl) CreateGroup(ctx context.Context, name string, creatorID int64, voteEndTime *time.Time) (*models.GroupView, error) {
	_, span := otel.Tracer("GroupsService").Start(ctx, "CreateGroup", trace.WithAttributes(
		attribute.String("group.name", name),
		attribute.Int64("creator.id", creatorID),
	))
	defer span.End()

	l := s.logger.With(zap.String("method", "CreateGroup"), zap.Int64("creatorID", creatorID))

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: group name is required", models.ErrValidation)
	}

	group, _, err := s.repo.CreateGroupWithCreator(name, creatorID, voteEndTime)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to create group")
		return nil, fmt.Errorf("error creating group: %w", err)
	}

	l.Info("Group created", zap.Int64("groupID", group.ID), zap.String("name", group.Name))
	span.SetStatus(codes.Ok, "Group created")
	v := s.view(*group)
	return &v, nil
}

func (s *GroupsServiceImpl) GetGroup(ctx context.Context, groupID int64) (*models.GroupView, error) {
	_, span := otel.Tracer("GroupsService").Start(ctx, "GetGroup", trace.WithAttributes(
		attribute.Int64("group.id", groupID),
	))
	defer span.End()

	group, err := s.repo.GetGroup(groupID)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("error fetching group: %w", err)
	}
	v := s.view(*group)
	return &v, nil
}

// ListUserGroups returns the groups the user created followed by the groups
// they joined, each ordered by id.
func (s *GroupsServiceImpl) ListUserGroups(ctx context.Context, userID int64) ([]models.GroupView, error) {
	_, span := otel.Tracer("GroupsService").Start(ctx, "ListUserGroups", trace.WithAttributes(
		attribute.Int64("user.id", userID),
	))
	defer span.End()

	if _, err := s.repo.GetUser(userID); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("error listing groups: %w", err)
	}

	joined := make(map[int64]bool)
	for _, m := range s.repo.ListGroupMembers(func(m models.GroupMember) bool { return m.UserID == userID }) {
		joined[m.GroupID] = true
	}

	created := s.repo.ListGroups(func(g models.Group) bool { return g.CreatorID == userID })
	others := s.repo.ListGroups(func(g models.Group) bool { return g.CreatorID != userID && joined[g.ID] })

	out := make([]models.GroupView, 0, len(created)+len(others))
	for _, g := range created {
		out = append(out, s.view(g))
	}
	for _, g := range others {
		out = append(out, s.view(g))
	}
	span.SetAttributes(attribute.Int("groups", len(out)))
	return out, nil
}

// ListMembers returns the members of a group with their public profile data,
// in join order.
func (s *GroupsServiceImpl) ListMembers(ctx context.Context, groupID int64) ([]models.GroupMemberView, error) {
	_, span := otel.Tracer("GroupsService").Start(ctx, "ListMembers", trace.WithAttributes(
		attribute.Int64("group.id", groupID),
	))
	defer span.End()

	if _, err := s.repo.GetGroup(groupID); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("error listing members: %w", err)
	}

	members := s.repo.ListGroupMembers(func(m models.GroupMember) bool { return m.GroupID == groupID })
	out := make([]models.GroupMemberView, 0, len(members))
	for _, m := range members {
		v := models.GroupMemberView{GroupMember: m}
		if u, err := s.repo.GetUser(m.UserID); err == nil {
			v.Username = u.Username
			v.ProfileImage = u.ProfileImage
		}
		out = append(out, v)
	}
	return out, nil
}

// AddMember adds userID to the group on behalf of actorID, who must already
// be a member.
func (s *GroupsServiceImpl) AddMember(ctx context.Context, groupID, actorID, userID int64) (*models.GroupMember, error) {
	_, span := otel.Tracer("GroupsService").Start(ctx, "AddMember", trace.WithAttributes(
		attribute.Int64("group.id", groupID),
		attribute.Int64("actor.id", actorID),
		attribute.Int64("user.id", userID),
	))
	defer span.End()

	l := s.logger.With(zap.String("method", "AddMember"),
		zap.Int64("groupID", groupID), zap.Int64("actorID", actorID), zap.Int64("userID", userID))

	if _, err := s.repo.GetGroup(groupID); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("error adding member: %w", err)
	}
	if _, err := s.repo.GetUser(userID); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("error adding member: %w", err)
	}
	if !s.repo.IsGroupMember(groupID, actorID) {
		span.SetStatus(codes.Error, "Actor is not a member")
		return nil, fmt.Errorf("%w: user %d cannot add members to group %d", models.ErrNotMember, actorID, groupID)
	}

	member, created, err := s.repo.AddGroupMemberIfAbsent(groupID, userID)
	if err != nil {
		l.Error("Failed to add member", zap.Error(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to add member")
		return nil, fmt.Errorf("error adding member: %w", err)
	}
	if !created {
		return nil, fmt.Errorf("%w: user %d is already in group %d", models.ErrAlreadyMember, userID, groupID)
	}

	recipients := s.memberIDs(groupID, actorID)
	delivered := s.publisher.PublishMany(recipients, relay.Event{
		Type:    relay.KindNewGroupMember,
		Payload: relay.GroupMemberPayload{GroupID: groupID, UserID: userID, AddedBy: actorID},
	})

	l.Info("Member added", zap.Int("notified", delivered), zap.Int("recipients", len(recipients)))
	span.SetStatus(codes.Ok, "Member added")
	return member, nil
}

// CastVote records the member's vote on a destination, replacing an earlier
// vote on the same destination. Votes after the window end are accepted.
func (s *GroupsServiceImpl) CastVote(ctx context.Context, groupID, userID, destinationID int64, liked bool) (*models.GroupVote, error) {
	ctx, span := otel.Tracer("GroupsService").Start(ctx, "CastVote", trace.WithAttributes(
		attribute.Int64("group.id", groupID),
		attribute.Int64("user.id", userID),
		attribute.Int64("destination.id", destinationID),
		attribute.Bool("liked", liked),
	))
	defer span.End()

	l := s.logger.With(zap.String("method", "CastVote"),
		zap.Int64("groupID", groupID), zap.Int64("userID", userID), zap.Int64("destinationID", destinationID))

	if _, err := s.repo.GetGroup(groupID); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("error casting vote: %w", err)
	}
	if !s.repo.IsGroupMember(groupID, userID) {
		span.SetStatus(codes.Error, "Voter is not a member")
		return nil, fmt.Errorf("%w: user %d cannot vote in group %d", models.ErrNotMember, userID, groupID)
	}
	if _, err := s.repo.GetDestination(destinationID); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("error casting vote: %w", err)
	}

	vote, created, err := s.repo.UpsertGroupVote(groupID, userID, destinationID, liked)
	if err != nil {
		l.Error("Failed to store vote", zap.Error(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to store vote")
		return nil, fmt.Errorf("error casting vote: %w", err)
	}
	metrics.Get().GroupVotesTotal.Add(ctx, 1, metric.WithAttributes(attribute.Bool("liked", liked)))

	s.publisher.PublishMany(s.memberIDs(groupID, userID), relay.Event{
		Type: relay.KindNewGroupVote,
		Payload: relay.GroupVotePayload{
			GroupID:       groupID,
			UserID:        userID,
			DestinationID: destinationID,
			Liked:         liked,
		},
	})

	l.Info("Vote cast", zap.Bool("liked", liked), zap.Bool("new", created))
	span.SetStatus(codes.Ok, "Vote cast")
	return vote, nil
}

// Tally ranks every destination with at least one vote in the group by the
// share of likes, then by vote count, then by destination id.
func (s *GroupsServiceImpl) Tally(ctx context.Context, groupID int64) ([]models.VoteResult, error) {
	_, span := otel.Tracer("GroupsService").Start(ctx, "Tally", trace.WithAttributes(
		attribute.Int64("group.id", groupID),
	))
	defer span.End()

	if _, err := s.repo.GetGroup(groupID); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("error tallying votes: %w", err)
	}

	type counts struct{ likes, total int }
	byDest := make(map[int64]*counts)
	for _, v := range s.repo.ListGroupVotes(func(v models.GroupVote) bool { return v.GroupID == groupID }) {
		c, ok := byDest[v.DestinationID]
		if !ok {
			c = &counts{}
			byDest[v.DestinationID] = c
		}
		c.total++
		if v.Liked {
			c.likes++
		}
	}

	results := make([]models.VoteResult, 0, len(byDest))
	for destID, c := range byDest {
		r := models.VoteResult{
			Destination: models.DestinationSummary{ID: destID},
			Likes:       c.likes,
			Total:       c.total,
			Percentage:  percentage(c.likes, c.total),
		}
		if d, err := s.repo.GetDestination(destID); err == nil {
			r.Destination = d.Summary()
		}
		results = append(results, r)
	}
	sortResults(results)

	span.SetAttributes(attribute.Int("destinations", len(results)))
	return results, nil
}

func percentage(likes, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(100 * float64(likes) / float64(total)))
}

func sortResults(results []models.VoteResult) {
	sort.Slice(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.Percentage != b.Percentage {
			return a.Percentage > b.Percentage
		}
		if a.Total != b.Total {
			return a.Total > b.Total
		}
		return a.Destination.ID < b.Destination.ID
	})
}

// memberIDs lists the members of a group except skip.
func (s *GroupsServiceImpl) memberIDs(groupID, skip int64) []int64 {
	members := s.repo.ListGroupMembers(func(m models.GroupMember) bool {
		return m.GroupID == groupID && m.UserID != skip
	})
	ids := make([]int64, 0, len(members))
	for _, m := range members {
		ids = append(ids, m.UserID)
	}
	return ids
}
