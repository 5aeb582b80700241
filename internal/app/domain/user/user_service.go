package user

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/FACorreiaa/swipetrip/internal/app/models"
)

const maxBioLength = 500

type UserRepo interface {
	GetUser(id int64) (*models.User, error)
	UpdateUser(u models.User) (*models.User, error)
}

// Ensure implementation satisfies the interface
var _ UserService = (*ServiceUserImpl)(nil)

// UserService defines the business logic contract for user operations.
type UserService interface {
	GetUser(ctx context.Context, userID int64) (*models.User, error)
	UpdateUserProfile(ctx context.Context, userID int64, req models.UpdateUserRequest) (*models.User, error)
}

// ServiceUserImpl provides the implementation for UserService.
type ServiceUserImpl struct {
	logger *zap.Logger
	repo   UserRepo
}

// NewUserService creates a new user service instance.
func NewUserService(repo UserRepo, logger *zap.Logger) *ServiceUserImpl {
	return &ServiceUserImpl{
		logger: logger,
		repo:   repo,
	}
}

func (s *ServiceUserImpl) GetUser(ctx context.Context, userID int64) (*models.User, error) {
	_, span := otel.Tracer("UserService").Start(ctx, "GetUser", trace.WithAttributes(
		attribute.Int64("user.id", userID),
	))
	defer span.End()

	u, err := s.repo.GetUser(userID)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("error fetching user: %w", err)
	}
	return u, nil
}

// UpdateUserProfile applies the fields present in req. Absent fields are left
// unchanged; an empty string clears a field.
func (s *ServiceUserImpl) UpdateUserProfile(ctx context.Context, userID int64, req models.UpdateUserRequest) (*models.User, error) {
	_, span := otel.Tracer("UserService").Start(ctx, "UpdateUserProfile", trace.WithAttributes(
		attribute.Int64("user.id", userID),
	))
	defer span.End()

	l := s.logger.With(zap.String("method", "UpdateUserProfile"), zap.Int64("userID", userID))
	l.Debug("Updating user profile")

	u, err := s.repo.GetUser(userID)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("error updating user profile: %w", err)
	}

	if req.Bio != nil {
		bio := strings.TrimSpace(*req.Bio)
		if utf8.RuneCountInString(bio) > maxBioLength {
			return nil, fmt.Errorf("%w: bio must be at most %d characters", models.ErrValidation, maxBioLength)
		}
		u.Bio = bio
	}
	if req.ProfileImage != nil {
		u.ProfileImage = strings.TrimSpace(*req.ProfileImage)
	}

	updated, err := s.repo.UpdateUser(*u)
	if err != nil {
		l.Error("Failed to update user profile", zap.Error(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to update user profile")
		return nil, fmt.Errorf("error updating user profile: %w", err)
	}

	l.Info("User profile updated successfully")
	span.SetStatus(codes.Ok, "User profile updated")
	return updated, nil
}
