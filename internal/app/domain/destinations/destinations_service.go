package destinations

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/FACorreiaa/swipetrip/internal/app/models"
	"github.com/FACorreiaa/swipetrip/internal/pkg/cache"
)

type Repository interface {
	GetDestination(id int64) (*models.Destination, error)
	ListDestinations(keep func(models.Destination) bool) []models.Destination
	GetDestinationDetail(destinationID int64) (*models.DestinationDetail, error)
	ListSwipes(keep func(models.Swipe) bool) []models.Swipe
}

var _ DestinationsService = (*DestinationsServiceImpl)(nil)

type DestinationsService interface {
	List(ctx context.Context, filter models.DestinationFilter) ([]models.Destination, error)
	Get(ctx context.Context, id int64) (*models.Destination, error)
	Details(ctx context.Context, id int64) (*models.DestinationDetail, error)
	Hotels(ctx context.Context, id int64) ([]models.HotelOption, error)
	Highlights(ctx context.Context, id int64) ([]models.Highlight, error)
}

type DestinationsServiceImpl struct {
	logger *zap.Logger
	repo   Repository
	cache  *cache.UnifiedCache[[]models.Destination]
}

func NewDestinationsService(repo Repository, c *cache.UnifiedCache[[]models.Destination], logger *zap.Logger) *DestinationsServiceImpl {
	return &DestinationsServiceImpl{logger: logger, repo: repo, cache: c}
}

// List returns the destinations matching filter, ordered by id.
func (s *DestinationsServiceImpl) List(ctx context.Context, filter models.DestinationFilter) ([]models.Destination, error) {
	_, span := otel.Tracer("DestinationsService").Start(ctx, "List", trace.WithAttributes(
		attribute.String("region", string(filter.Region)),
		attribute.Int("categories", len(filter.Categories)),
		attribute.Int64("exclude_swiped_by", filter.ExcludeSwipedBy),
	))
	defer span.End()

	l := s.logger.With(zap.String("method", "List"))

	levels, categories, region := cacheParts(filter)
	key, err := cache.NewCacheKeyBuilder().
		Add("priceLevel", levels).
		Add("categories", categories).
		Add("region", region).
		Build()
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	base, hit := s.cache.Get(key)
	span.SetAttributes(attribute.Bool("cache.hit", hit))
	if !hit {
		base = s.repo.ListDestinations(func(d models.Destination) bool { return matches(filter, d) })
		s.cache.Set(key, base)
	}

	if filter.ExcludeSwipedBy == 0 {
		l.Debug("Listed destinations", zap.Int("count", len(base)), zap.Bool("cache_hit", hit))
		return base, nil
	}

	swiped := make(map[int64]bool)
	for _, sw := range s.repo.ListSwipes(func(sw models.Swipe) bool { return sw.UserID == filter.ExcludeSwipedBy }) {
		swiped[sw.DestinationID] = true
	}
	out := make([]models.Destination, 0, len(base))
	for _, d := range base {
		if !swiped[d.ID] {
			out = append(out, d)
		}
	}

	l.Debug("Listed destinations", zap.Int("count", len(out)), zap.Int("swiped", len(swiped)), zap.Bool("cache_hit", hit))
	span.SetStatus(codes.Ok, "Destinations listed")
	return out, nil
}

func (s *DestinationsServiceImpl) Get(ctx context.Context, id int64) (*models.Destination, error) {
	_, span := otel.Tracer("DestinationsService").Start(ctx, "Get", trace.WithAttributes(
		attribute.Int64("destination.id", id),
	))
	defer span.End()

	d, err := s.repo.GetDestination(id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Destination not found")
		return nil, fmt.Errorf("error fetching destination: %w", err)
	}
	return d, nil
}

func (s *DestinationsServiceImpl) Details(ctx context.Context, id int64) (*models.DestinationDetail, error) {
	ctx, span := otel.Tracer("DestinationsService").Start(ctx, "Details", trace.WithAttributes(
		attribute.Int64("destination.id", id),
	))
	defer span.End()

	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	detail, err := s.repo.GetDestinationDetail(id)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("error fetching destination details: %w", err)
	}
	return detail, nil
}

// Hotels returns the hotel options of a destination. A destination without
// details has no hotels.
func (s *DestinationsServiceImpl) Hotels(ctx context.Context, id int64) ([]models.HotelOption, error) {
	detail, err := s.optionalDetail(ctx, id)
	if err != nil {
		return nil, err
	}
	if detail == nil || detail.HotelOptions == nil {
		return []models.HotelOption{}, nil
	}
	return detail.HotelOptions, nil
}

func (s *DestinationsServiceImpl) Highlights(ctx context.Context, id int64) ([]models.Highlight, error) {
	detail, err := s.optionalDetail(ctx, id)
	if err != nil {
		return nil, err
	}
	if detail == nil || detail.Highlights == nil {
		return []models.Highlight{}, nil
	}
	return detail.Highlights, nil
}

func (s *DestinationsServiceImpl) optionalDetail(ctx context.Context, id int64) (*models.DestinationDetail, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	detail, err := s.repo.GetDestinationDetail(id)
	if errors.Is(err, models.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error fetching destination details: %w", err)
	}
	return detail, nil
}
