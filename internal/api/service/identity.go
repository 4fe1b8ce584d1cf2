package service

import (
	"context"
	"ctchen222/Task-Tracker/internal/api/models"
	"ctchen222/Task-Tracker/internal/api/repository"
	"ctchen222/Task-Tracker/internal/auth"
	"errors"
)

// IdentityLookup resolves login identifiers and token subjects to users.
type IdentityLookup struct {
	users repository.UserRepository
}

// NewIdentityLookup creates an IdentityLookup over users.
func NewIdentityLookup(users repository.UserRepository) *IdentityLookup {
	return &IdentityLookup{users: users}
}

// FindByIdentifier looks the user up by email when identifier is a valid
// email address and by username otherwise. Only one field is ever queried.
func (l *IdentityLookup) FindByIdentifier(ctx context.Context, identifier string) (*models.User, error) {
	var (
		user *models.User
		err  error
	)
	switch auth.ClassifyIdentifier(identifier) {
	case auth.IdentifierEmail:
		user, err = l.users.GetUserByEmail(ctx, identifier)
	default:
		user, err = l.users.GetUserByUsername(ctx, identifier)
	}
	return user, lookupError(err)
}

// FindByID looks the user up by primary key.
func (l *IdentityLookup) FindByID(ctx context.Context, id int64) (*models.User, error) {
	user, err := l.users.GetUserByID(ctx, id)
	return user, lookupError(err)
}

func lookupError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return ErrNotFound
	default:
		return internal("user lookup", err)
	}
}
