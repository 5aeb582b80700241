// Package buddies is the matching engine: it pairs users who liked the same
// destination and manages the lifecycle of those matches.
package buddies

import (
	"context"
	"fmt"
	"sort"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/FACorreiaa/swipetrip/internal/app/models"
	"github.com/FACorreiaa/swipetrip/internal/app/observability/metrics"
	"github.com/FACorreiaa/swipetrip/internal/app/relay"
)

type Repository interface {
	GetUser(id int64) (*models.User, error)
	GetDestination(id int64) (*models.Destination, error)
	ListSwipes(keep func(models.Swipe) bool) []models.Swipe
	CreateTravelBuddyIfAbsent(userOne, userTwo, destinationID int64) (*models.TravelBuddy, bool, error)
	GetTravelBuddy(id int64) (*models.TravelBuddy, error)
	ListTravelBuddies(keep func(models.TravelBuddy) bool) []models.TravelBuddy
	UpdateTravelBuddyStatus(id int64, status models.BuddyStatus) (*models.TravelBuddy, error)
}

var _ BuddiesService = (*BuddiesServiceImpl)(nil)

type BuddiesService interface {
	MatchOnLike(ctx context.Context, swipe models.Swipe) ([]models.TravelBuddy, error)
	ListBuddies(ctx context.Context, userID int64) ([]models.TravelBuddyMatch, error)
	UpdateStatus(ctx context.Context, buddyID, actorID int64, status models.BuddyStatus) (*models.TravelBuddy, error)
}

type BuddiesServiceImpl struct {
	logger    *zap.Logger
	repo      Repository
	publisher relay.Publisher
}

func NewBuddiesService(repo Repository, publisher relay.Publisher, logger *zap.Logger) *BuddiesServiceImpl {
	return &BuddiesServiceImpl{logger: logger, repo: repo, publisher: publisher}
}

// MatchOnLike creates a pending match between the swiping user and every other
// user who liked the same destination, unless the pair already has one. It
// returns the matches created by this call.
func (s *BuddiesServiceImpl) MatchOnLike(ctx context.Context, swipe models.Swipe) ([]models.TravelBuddy, error) {
	ctx, span := otel.Tracer("BuddiesService").Start(ctx, "MatchOnLike", trace.WithAttributes(
		attribute.Int64("user.id", swipe.UserID),
		attribute.Int64("destination.id", swipe.DestinationID),
		attribute.Bool("liked", swipe.Liked),
	))
	defer span.End()

	created := []models.TravelBuddy{}
	if !swipe.Liked {
		return created, nil
	}

	l := s.logger.With(zap.String("method", "MatchOnLike"),
		zap.Int64("userID", swipe.UserID), zap.Int64("destinationID", swipe.DestinationID))

	coLikers := s.repo.ListSwipes(func(sw models.Swipe) bool {
		return sw.DestinationID == swipe.DestinationID && sw.Liked && sw.UserID != swipe.UserID
	})
	for _, other := range coLikers {
		buddy, isNew, err := s.repo.CreateTravelBuddyIfAbsent(swipe.UserID, other.UserID, swipe.DestinationID)
		if err != nil {
			l.Error("Failed to create match", zap.Int64("otherUserID", other.UserID), zap.Error(err))
			span.RecordError(err)
			span.SetStatus(codes.Error, "Failed to create match")
			return created, fmt.Errorf("error creating match: %w", err)
		}
		if !isNew {
			continue
		}
		created = append(created, *buddy)

		s.publisher.Publish(other.UserID, relay.Event{
			Type: relay.KindNewMatch,
			Payload: relay.NewMatchPayload{
				Match:         *buddy,
				MatchedUserID: swipe.UserID,
				DestinationID: swipe.DestinationID,
			},
		})
	}

	if len(created) > 0 {
		metrics.Get().MatchesCreatedTotal.Add(ctx, int64(len(created)))
		l.Info("Matches created", zap.Int("count", len(created)))
	}
	span.SetAttributes(attribute.Int("matches.created", len(created)))
	span.SetStatus(codes.Ok, "Matching done")
	return created, nil
}

// ListBuddies resolves every match of userID from the user's point of view,
// oldest first.
func (s *BuddiesServiceImpl) ListBuddies(ctx context.Context, userID int64) ([]models.TravelBuddyMatch, error) {
	_, span := otel.Tracer("BuddiesService").Start(ctx, "ListBuddies", trace.WithAttributes(
		attribute.Int64("user.id", userID),
	))
	defer span.End()

	l := s.logger.With(zap.String("method", "ListBuddies"), zap.Int64("userID", userID))

	if _, err := s.repo.GetUser(userID); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("error listing buddies: %w", err)
	}

	buddies := s.repo.ListTravelBuddies(func(b models.TravelBuddy) bool { return b.Involves(userID) })
	sort.SliceStable(buddies, func(i, j int) bool {
		if !buddies[i].CreatedAt.Equal(buddies[j].CreatedAt) {
			return buddies[i].CreatedAt.Before(buddies[j].CreatedAt)
		}
		return buddies[i].ID < buddies[j].ID
	})

	out := make([]models.TravelBuddyMatch, 0, len(buddies))
	for _, b := range buddies {
		match := models.TravelBuddyMatch{
			ID:            b.ID,
			UserID:        userID,
			MatchedUserID: b.Other(userID),
			DestinationID: b.DestinationID,
			Status:        b.Status,
			CreatedAt:     b.CreatedAt,
		}
		if other, err := s.repo.GetUser(match.MatchedUserID); err == nil {
			match.MatchedUsername = other.Username
			match.MatchedProfileImage = other.ProfileImage
		} else {
			l.Warn("Matched user missing", zap.Int64("matchedUserID", match.MatchedUserID))
		}
		if d, err := s.repo.GetDestination(b.DestinationID); err == nil {
			match.DestinationName = d.Name
		}
		out = append(out, match)
	}

	l.Debug("Listed buddies", zap.Int("count", len(out)))
	span.SetStatus(codes.Ok, "Buddies listed")
	return out, nil
}

// UpdateStatus lets a participant accept or reject a match. The other
// participant is notified.
func (s *BuddiesServiceImpl) UpdateStatus(ctx context.Context, buddyID, actorID int64, status models.BuddyStatus) (*models.TravelBuddy, error) {
	_, span := otel.Tracer("BuddiesService").Start(ctx, "UpdateStatus", trace.WithAttributes(
		attribute.Int64("buddy.id", buddyID),
		attribute.Int64("actor.id", actorID),
		attribute.String("status", string(status)),
	))
	defer span.End()

	l := s.logger.With(zap.String("method", "UpdateStatus"),
		zap.Int64("buddyID", buddyID), zap.Int64("actorID", actorID), zap.String("status", string(status)))
	l.Debug("Updating match status")

	if status != models.BuddyStatusAccepted && status != models.BuddyStatusRejected {
		return nil, fmt.Errorf("%w: status must be accepted or rejected, got %q", models.ErrValidation, status)
	}

	buddy, err := s.repo.GetTravelBuddy(buddyID)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("error updating match: %w", err)
	}
	if !buddy.Involves(actorID) {
		span.SetStatus(codes.Error, "Actor is not part of the match")
		return nil, fmt.Errorf("%w: user %d is not part of match %d", models.ErrForbidden, actorID, buddyID)
	}

	updated, err := s.repo.UpdateTravelBuddyStatus(buddyID, status)
	if err != nil {
		l.Error("Failed to update match", zap.Error(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to update match")
		return nil, fmt.Errorf("error updating match: %w", err)
	}

	s.publisher.Publish(updated.Other(actorID), relay.Event{
		Type: relay.KindBuddyStatusUpdate,
		Payload: relay.BuddyStatusPayload{
			BuddyID: updated.ID,
			Status:  updated.Status,
			ActorID: actorID,
		},
	})

	l.Info("Match status updated")
	span.SetStatus(codes.Ok, "Match status updated")
	return updated, nil
}
