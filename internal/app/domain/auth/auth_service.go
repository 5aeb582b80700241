package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/FACorreiaa/swipetrip/internal/app/models"
)

// Repository is the user storage the auth service needs.
type Repository interface {
	CreateUser(u models.User) (*models.User, error)
	GetUser(id int64) (*models.User, error)
	GetUserByUsername(username string) (*models.User, error)
}

// Ensure implementation satisfies the interface
var _ AuthService = (*AuthServiceImpl)(nil)

type AuthService interface {
	Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error)
	Login(ctx context.Context, username, password string) (*models.AuthResponse, error)
	GetUser(ctx context.Context, userID int64) (*models.User, error)
}

type AuthServiceImpl struct {
	logger *zap.Logger
	repo   Repository
	tokens *TokenService
}

func NewAuthService(repo Repository, tokens *TokenService, logger *zap.Logger) *AuthServiceImpl {
	return &AuthServiceImpl{logger: logger, repo: repo, tokens: tokens}
}

func (s *AuthServiceImpl) Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error) {
	_, span := otel.Tracer("AuthService").Start(ctx, "Register", trace.WithAttributes(
		attribute.String("username", req.Username),
	))
	defer span.End()

	l := s.logger.With(zap.String("method", "Register"), zap.String("username", req.Username))
	l.Debug("Attempting registration")

	username := strings.TrimSpace(req.Username)
	email := strings.TrimSpace(req.Email)
	if username == "" || email == "" || req.Password == "" {
		return nil, fmt.Errorf("%w: username, email and password are required", models.ErrValidation)
	}

	hashed, err := HashPassword(req.Password)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to hash password")
		return nil, err
	}

	user, err := s.repo.CreateUser(models.User{
		Username:     username,
		Email:        email,
		Password:     hashed,
		Bio:          req.Bio,
		ProfileImage: req.ProfileImage,
	})
	if err != nil {
		l.Warn("Failed to create user", zap.Error(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to create user")
		return nil, fmt.Errorf("error registering user: %w", err)
	}

	token, err := s.tokens.GenerateToken(user)
	if err != nil {
		l.Error("Failed to generate token", zap.Int64("userID", user.ID), zap.Error(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to generate token")
		return nil, err
	}

	l.Info("User registered", zap.Int64("userID", user.ID))
	span.SetStatus(codes.Ok, "User registered")
	return &models.AuthResponse{User: user, Token: token}, nil
}

// Login checks the credentials. Unknown users and wrong passwords produce the
// same error.
func (s *AuthServiceImpl) Login(ctx context.Context, username, password string) (*models.AuthResponse, error) {
	_, span := otel.Tracer("AuthService").Start(ctx, "Login", trace.WithAttributes(
		attribute.String("username", username),
	))
	defer span.End()

	l := s.logger.With(zap.String("method", "Login"), zap.String("username", username))
	l.Debug("Attempting login")

	user, err := s.repo.GetUserByUsername(strings.TrimSpace(username))
	if err != nil {
		if !errors.Is(err, models.ErrNotFound) {
			span.RecordError(err)
			return nil, fmt.Errorf("error loading user: %w", err)
		}
		l.Warn("Unknown username")
		span.SetStatus(codes.Error, "Invalid credentials")
		return nil, fmt.Errorf("invalid credentials: %w", models.ErrUnauthenticated)
	}

	if !CheckPassword(user.Password, password) {
		l.Warn("Password comparison failed", zap.Int64("userID", user.ID))
		span.SetStatus(codes.Error, "Invalid credentials")
		return nil, fmt.Errorf("invalid credentials: %w", models.ErrUnauthenticated)
	}

	token, err := s.tokens.GenerateToken(user)
	if err != nil {
		l.Error("Failed to generate token", zap.Int64("userID", user.ID), zap.Error(err))
		span.RecordError(err)
		return nil, err
	}

	l.Info("Login successful", zap.Int64("userID", user.ID))
	span.SetStatus(codes.Ok, "Login successful")
	return &models.AuthResponse{User: user, Token: token}, nil
}

func (s *AuthServiceImpl) GetUser(ctx context.Context, userID int64) (*models.User, error) {
	_, span := otel.Tracer("AuthService").Start(ctx, "GetUser", trace.WithAttributes(
		attribute.Int64("user.id", userID),
	))
	defer span.End()

	user, err := s.repo.GetUser(userID)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("error fetching user: %w", err)
	}
	return user, nil
}
