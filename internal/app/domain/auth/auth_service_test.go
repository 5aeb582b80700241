package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/FACorreiaa/swipetrip/internal/app/models"
	"github.com/FACorreiaa/swipetrip/internal/pkg/config"
)

// MockAuthRepo is a mock implementation of Repository
type MockAuthRepo struct {
	mock.Mock
}

func (m *MockAuthRepo) CreateUser(u models.User) (*models.User, error) {
	args := m.Called(u)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockAuthRepo) GetUser(id int64) (*models.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockAuthRepo) GetUserByUsername(username string) (*models.User, error) {
	args := m.Called(username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

var testJWT = config.JWTConfig{
	SecretKey:      "test-secret-key-with-at-least-32-chars",
	AccessTokenTTL: time.Hour,
	Issuer:         "swipetrip-test",
}

func testTokens() *TokenService {
	return NewTokenService(testJWT, "boot-1")
}

func TestRegister(t *testing.T) {
	ctx := context.Background()
	req := models.RegisterRequest{Username: "ana", Email: "ana@example.com", Password: "secret123", Bio: "hi"}

	tests := []struct {
		name      string
		setupMock func(*MockAuthRepo)
		wantErr   error
	}{
		{
			name: "Success",
			setupMock: func(repo *MockAuthRepo) {
				repo.On("CreateUser", mock.MatchedBy(func(u models.User) bool {
					return u.Username == "ana" && u.Bio == "hi" && CheckPassword(u.Password, "secret123")
				})).Return(&models.User{ID: 1, Username: "ana", Email: "ana@example.com"}, nil).Once()
			},
		},
		{
			name: "Duplicate username",
			setupMock: func(repo *MockAuthRepo) {
				repo.On("CreateUser", mock.Anything).Return(nil, models.ErrConflict).Once()
			},
			wantErr: models.ErrConflict,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			repo := new(MockAuthRepo)
			tc.setupMock(repo)
			tokens := testTokens()
			service := NewAuthService(repo, tokens, zap.NewNop())

			resp, err := service.Register(ctx, req)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				assert.Nil(t, resp)
			} else {
				require.NoError(t, err)
				assert.Equal(t, int64(1), resp.User.ID)
				claims, err := tokens.ValidateToken(resp.Token)
				require.NoError(t, err)
				assert.Equal(t, int64(1), claims.UserID)
				assert.Equal(t, "boot-1", claims.Instance)
			}
			repo.AssertExpectations(t)
		})
	}
}

func TestRegisterRequiresFields(t *testing.T) {
	repo := new(MockAuthRepo)
	service := NewAuthService(repo, testTokens(), zap.NewNop())

	_, err := service.Register(context.Background(), models.RegisterRequest{Username: "  ", Email: "x@example.com", Password: "secret123"})
	assert.ErrorIs(t, err, models.ErrValidation)
	repo.AssertNotCalled(t, "CreateUser", mock.Anything)
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	hashed, err := HashPassword("secret123")
	require.NoError(t, err)
	stored := &models.User{ID: 4, Username: "ana", Password: hashed}

	tests := []struct {
		name      string
		password  string
		setupMock func(*MockAuthRepo)
		wantErr   error
	}{
		{
			name:     "Success",
			password: "secret123",
			setupMock: func(repo *MockAuthRepo) {
				repo.On("GetUserByUsername", "ana").Return(stored, nil).Once()
			},
		},
		{
			name:     "Wrong password",
			password: "nope",
			setupMock: func(repo *MockAuthRepo) {
				repo.On("GetUserByUsername", "ana").Return(stored, nil).Once()
			},
			wantErr: models.ErrUnauthenticated,
		},
		{
			name:     "Unknown user",
			password: "secret123",
			setupMock: func(repo *MockAuthRepo) {
				repo.On("GetUserByUsername", "ana").Return(nil, models.ErrNotFound).Once()
			},
			wantErr: models.ErrUnauthenticated,
		},
		{
			name:     "Repository failure",
			password: "secret123",
			setupMock: func(repo *MockAuthRepo) {
				repo.On("GetUserByUsername", "ana").Return(nil, errors.New("boom")).Once()
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			repo := new(MockAuthRepo)
			tc.setupMock(repo)
			service := NewAuthService(repo, testTokens(), zap.NewNop())

			resp, err := service.Login(ctx, "ana", tc.password)
			switch {
			case tc.wantErr != nil:
				assert.ErrorIs(t, err, tc.wantErr)
			case tc.name == "Repository failure":
				assert.Error(t, err)
				assert.NotErrorIs(t, err, models.ErrUnauthenticated)
			default:
				require.NoError(t, err)
				assert.Equal(t, int64(4), resp.User.ID)
				assert.NotEmpty(t, resp.Token)
			}
			repo.AssertExpectations(t)
		})
	}
}

func TestTokenService(t *testing.T) {
	tokens := testTokens()
	token, err := tokens.GenerateToken(&models.User{ID: 9, Username: "zoe"})
	require.NoError(t, err)

	claims, err := tokens.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, int64(9), claims.UserID)
	assert.Equal(t, "zoe", claims.Username)

	t.Run("wrong secret", func(t *testing.T) {
		other := NewTokenService(config.JWTConfig{SecretKey: "another-secret-key-with-32-characters", AccessTokenTTL: time.Hour, Issuer: "swipetrip-test"}, "boot-1")
		_, err := other.ValidateToken(token)
		assert.ErrorIs(t, err, models.ErrUnauthenticated)
	})

	t.Run("expired", func(t *testing.T) {
		expired := testTokens()
		expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
		old, err := expired.GenerateToken(&models.User{ID: 9})
		require.NoError(t, err)
		_, err = tokens.ValidateToken(old)
		assert.ErrorIs(t, err, models.ErrUnauthenticated)
	})

	t.Run("issued by another instance", func(t *testing.T) {
		restarted := NewTokenService(testJWT, "boot-2")
		_, err := restarted.ValidateToken(token)
		assert.ErrorIs(t, err, models.ErrUnauthenticated)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := tokens.ValidateToken("not-a-jwt")
		assert.ErrorIs(t, err, models.ErrUnauthenticated)
	})
}

func TestIdentity(t *testing.T) {
	tokens := testTokens()
	zoe := &models.User{ID: 9, Username: "zoe"}
	token, err := tokens.GenerateToken(zoe)
	require.NoError(t, err)

	tests := []struct {
		name    string
		stored  *models.User
		repoErr error
		wantID  int64
		wantErr error
	}{
		{name: "live user", stored: zoe, wantID: 9},
		{name: "user gone", repoErr: models.ErrNotFound, wantErr: models.ErrUnauthenticated},
		{name: "id reused by another user", stored: &models.User{ID: 9, Username: "mallory"}, wantErr: models.ErrUnauthenticated},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			repo := new(MockAuthRepo)
			repo.On("GetUser", int64(9)).Return(tc.stored, tc.repoErr)
			identity := NewIdentity(tokens, repo)

			id, err := identity.UserFromToken(token)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantID, id)
		})
	}

	t.Run("session from this instance", func(t *testing.T) {
		repo := new(MockAuthRepo)
		repo.On("GetUser", int64(9)).Return(zoe, nil)
		id, err := NewIdentity(tokens, repo).UserFromSession(9, "boot-1")
		require.NoError(t, err)
		assert.Equal(t, int64(9), id)
	})

	t.Run("session from an earlier instance", func(t *testing.T) {
		repo := new(MockAuthRepo)
		_, err := NewIdentity(tokens, repo).UserFromSession(9, "boot-0")
		assert.ErrorIs(t, err, models.ErrUnauthenticated)
		repo.AssertNotCalled(t, "GetUser", mock.Anything)
	})
}
