package repository

import (
	"context"
	"ctchen222/Task-Tracker/internal/api/models"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var tracer = otel.Tracer("api.repository")

//go:generate mockgen -source=user_repository.go -destination=mocks/user_repository.go -package=mocks

// UserRepository defines the interface for user data operations.
type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
}

type sqlUserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new SQL-backed UserRepository.
func NewUserRepository(db *sqlx.DB) UserRepository {
	return &sqlUserRepository{db: db}
}

const userColumns = `id, username, email, password_hash`

// CreateUser inserts user and fills in its generated id.
// A username or email that is already taken yields ErrDuplicate.
func (r *sqlUserRepository) CreateUser(ctx context.Context, user *models.User) error {
	ctx, span := tracer.Start(ctx, "UserRepository.CreateUser")
	defer span.End()

	query := r.db.Rebind(`INSERT INTO users (username, email, password_hash) VALUES (?, ?, ?) RETURNING id`)
	err := r.db.QueryRowxContext(ctx, query, user.Username, user.Email, user.PasswordHash).Scan(&user.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		span.RecordError(err)
		return fmt.Errorf("failed to create user: %w", err)
	}

	span.SetAttributes(attribute.Int64("user.id", user.ID))
	return nil
}

// GetUserByUsername retrieves a user from the database by their username.
func (r *sqlUserRepository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	ctx, span := tracer.Start(ctx, "UserRepository.GetUserByUsername")
	defer span.End()

	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE username = ?`, username)
}

// GetUserByEmail retrieves a user from the database by their email.
func (r *sqlUserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	ctx, span := tracer.Start(ctx, "UserRepository.GetUserByEmail")
	defer span.End()

	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email)
}

// GetUserByID retrieves a user from the database by id.
func (r *sqlUserRepository) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	ctx, span := tracer.Start(ctx, "UserRepository.GetUserByID", traceUserID(id))
	defer span.End()

	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
}

func (r *sqlUserRepository) getOne(ctx context.Context, query string, arg any) (*models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, r.db.Rebind(query), arg)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}
