package auth

import (
	"errors"
	"fmt"

	"github.com/FACorreiaa/swipetrip/internal/app/models"
)

// UserGetter is the lookup Identity needs to confirm a credential still names
// a live account.
type UserGetter interface {
	GetUser(id int64) (*models.User, error)
}

// Identity resolves request credentials to a user of the running instance.
type Identity struct {
	tokens *TokenService
	users  UserGetter
}

func NewIdentity(tokens *TokenService, users UserGetter) *Identity {
	return &Identity{tokens: tokens, users: users}
}

// UserFromToken validates the token and checks that its user exists under the
// same username.
func (i *Identity) UserFromToken(token string) (int64, error) {
	claims, err := i.tokens.ValidateToken(token)
	if err != nil {
		return 0, err
	}
	user, err := i.lookup(claims.UserID)
	if err != nil {
		return 0, err
	}
	if user.Username != claims.Username {
		return 0, fmt.Errorf("%w: token does not match user %d", models.ErrUnauthenticated, claims.UserID)
	}
	return user.ID, nil
}

// UserFromSession accepts a session written by this instance for a user that
// still exists.
func (i *Identity) UserFromSession(userID int64, instance string) (int64, error) {
	if userID <= 0 || instance != i.tokens.InstanceID() {
		return 0, fmt.Errorf("%w: stale session", models.ErrUnauthenticated)
	}
	user, err := i.lookup(userID)
	if err != nil {
		return 0, err
	}
	return user.ID, nil
}

func (i *Identity) lookup(userID int64) (*models.User, error) {
	user, err := i.users.GetUser(userID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, fmt.Errorf("%w: unknown user %d", models.ErrUnauthenticated, userID)
		}
		return nil, err
	}
	return user, nil
}
