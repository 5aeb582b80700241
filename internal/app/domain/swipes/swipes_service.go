package swipes

import (
	"context"
	"fmt"
	"sort"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/FACorreiaa/swipetrip/internal/app/models"
	"github.com/FACorreiaa/swipetrip/internal/app/observability/metrics"
)

type Repository interface {
	GetUser(id int64) (*models.User, error)
	GetDestination(id int64) (*models.Destination, error)
	UpsertSwipe(userID, destinationID int64, liked bool) (*models.Swipe, bool, error)
	ListSwipes(keep func(models.Swipe) bool) []models.Swipe
}

// Matcher turns a recorded swipe into buddy matches.
type Matcher interface {
	MatchOnLike(ctx context.Context, swipe models.Swipe) ([]models.TravelBuddy, error)
}

var _ SwipesService = (*SwipesServiceImpl)(nil)

type SwipesService interface {
	Record(ctx context.Context, userID, destinationID int64, liked bool) (*models.SwipeResult, error)
	LikedDestinations(ctx context.Context, userID int64) ([]models.LikedDestination, error)
}

type SwipesServiceImpl struct {
	logger  *zap.Logger
	repo    Repository
	matcher Matcher
}

func NewSwipesService(repo Repository, matcher Matcher, logger *zap.Logger) *SwipesServiceImpl {
	return &SwipesServiceImpl{logger: logger, repo: repo, matcher: matcher}
}

// Record stores the swipe, replacing an earlier one by the same user on the
// same destination, and runs matching for likes.
func (s *SwipesServiceImpl) Record(ctx context.Context, userID, destinationID int64, liked bool) (*models.SwipeResult, error) {
	ctx, span := otel.Tracer("SwipesService").Start(ctx, "Record", trace.WithAttributes(
		attribute.Int64("user.id", userID),
		attribute.Int64("destination.id", destinationID),
		attribute.Bool("liked", liked),
	))
	defer span.End()

	l := s.logger.With(zap.String("method", "Record"),
		zap.Int64("userID", userID), zap.Int64("destinationID", destinationID))

	if _, err := s.repo.GetUser(userID); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("error recording swipe: %w", err)
	}
	if _, err := s.repo.GetDestination(destinationID); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("error recording swipe: %w", err)
	}

	swipe, created, err := s.repo.UpsertSwipe(userID, destinationID, liked)
	if err != nil {
		l.Error("Failed to store swipe", zap.Error(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to store swipe")
		return nil, fmt.Errorf("error recording swipe: %w", err)
	}
	metrics.Get().SwipesTotal.Add(ctx, 1, metric.WithAttributes(attribute.Bool("liked", liked)))

	matches, err := s.matcher.MatchOnLike(ctx, *swipe)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Matching failed")
		return nil, fmt.Errorf("error matching swipe: %w", err)
	}

	l.Info("Swipe recorded", zap.Bool("liked", liked), zap.Bool("new", created), zap.Int("matches", len(matches)))
	span.SetStatus(codes.Ok, "Swipe recorded")
	return &models.SwipeResult{Swipe: swipe, Matches: matches}, nil
}

// LikedDestinations returns the destinations the user currently likes, most
// recently liked first.
func (s *SwipesServiceImpl) LikedDestinations(ctx context.Context, userID int64) ([]models.LikedDestination, error) {
	_, span := otel.Tracer("SwipesService").Start(ctx, "LikedDestinations", trace.WithAttributes(
		attribute.Int64("user.id", userID),
	))
	defer span.End()

	if _, err := s.repo.GetUser(userID); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("error listing likes: %w", err)
	}

	liked := s.repo.ListSwipes(func(sw models.Swipe) bool { return sw.UserID == userID && sw.Liked })
	sort.SliceStable(liked, func(i, j int) bool {
		if !liked[i].CreatedAt.Equal(liked[j].CreatedAt) {
			return liked[i].CreatedAt.After(liked[j].CreatedAt)
		}
		return liked[i].ID > liked[j].ID
	})

	out := make([]models.LikedDestination, 0, len(liked))
	for _, sw := range liked {
		d, err := s.repo.GetDestination(sw.DestinationID)
		if err != nil {
			s.logger.Warn("Liked destination missing",
				zap.Int64("userID", userID), zap.Int64("destinationID", sw.DestinationID))
			continue
		}
		out = append(out, models.LikedDestination{Destination: *d, SavedAt: sw.CreatedAt})
	}

	span.SetAttributes(attribute.Int("likes", len(out)))
	return out, nil
}
