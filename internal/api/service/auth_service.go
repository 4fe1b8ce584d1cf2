package service

import (
	"context"
	"ctchen222/Task-Tracker/internal/api/models"
	"ctchen222/Task-Tracker/internal/api/repository"
	"ctchen222/Task-Tracker/internal/auth"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// TokenTypeBearer is the token_type returned alongside access tokens.
const TokenTypeBearer = "bearer"

// AuthService defines registration, login and request authentication.
type AuthService interface {
	Register(ctx context.Context, req *models.RegisterRequest) (*models.UserResponse, error)
	Authenticate(ctx context.Context, identifier, password string) (*models.User, error)
	Login(ctx context.Context, req *models.LoginRequest) (*models.TokenResponse, error)
	ResolveSession(ctx context.Context, token string) (*models.User, error)
}

type authService struct {
	users    repository.UserRepository
	identity *IdentityLookup
	hasher   *auth.Hasher
	tokens   *auth.TokenService
}

// NewAuthService creates a new AuthService.
func NewAuthService(users repository.UserRepository, hasher *auth.Hasher, tokens *auth.TokenService) AuthService {
	return &authService{
		users:    users,
		identity: NewIdentityLookup(users),
		hasher:   hasher,
		tokens:   tokens,
	}
}

// Register hashes the password and stores the new user. Uniqueness of username
// and email is left to the database so that concurrent registrations cannot race.
func (s *authService) Register(ctx context.Context, req *models.RegisterRequest) (*models.UserResponse, error) {
	ctx, span := tracer.Start(ctx, "AuthService.Register")
	defer span.End()

	hash, err := s.hasher.HashPassword(req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrPasswordTooLong) {
			return nil, ErrInvalidInput
		}
		span.SetStatus(codes.Error, "hash failed")
		return nil, internal("hash password", err)
	}

	user := &models.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			count(ctx, serviceCounters.registrations, "outcome", "conflict")
			return nil, ErrConflict
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "create user failed")
		return nil, internal("create user", err)
	}

	count(ctx, serviceCounters.registrations, "outcome", "created")
	span.SetAttributes(attribute.Int64("user.id", user.ID))
	slog.InfoContext(ctx, "User registered", "user.id", user.ID)

	return &models.UserResponse{Username: user.Username, Email: user.Email}, nil
}

// Authenticate returns the user identified by identifier if password matches.
// An unknown identifier and a wrong password produce the same ErrUnauthorized.
func (s *authService) Authenticate(ctx context.Context, identifier, password string) (*models.User, error) {
	ctx, span := tracer.Start(ctx, "AuthService.Authenticate")
	defer span.End()

	user, err := s.identity.FindByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			s.hasher.CheckPasswordAgainstNothing(password)
			return nil, ErrUnauthorized
		}
		span.RecordError(err)
		return nil, err
	}

	if !s.hasher.CheckPassword(password, user.PasswordHash) {
		return nil, ErrUnauthorized
	}
	return user, nil
}

// Login authenticates the credentials and issues an access token.
func (s *authService) Login(ctx context.Context, req *models.LoginRequest) (*models.TokenResponse, error) {
	ctx, span := tracer.Start(ctx, "AuthService.Login")
	defer span.End()

	user, err := s.Authenticate(ctx, req.Username, req.Password)
	if err != nil {
		if errors.Is(err, ErrUnauthorized) {
			count(ctx, serviceCounters.loginAttempts, "outcome", "rejected")
		}
		return nil, err
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		span.RecordError(err)
		return nil, internal("issue token", err)
	}

	count(ctx, serviceCounters.loginAttempts, "outcome", "accepted")
	return &models.TokenResponse{AccessToken: token, TokenType: TokenTypeBearer}, nil
}

// ResolveSession returns the user a bearer token was issued to.
// Invalid or expired tokens and tokens of unknown users yield ErrUnauthorized.
func (s *authService) ResolveSession(ctx context.Context, token string) (*models.User, error) {
	ctx, span := tracer.Start(ctx, "AuthService.ResolveSession")
	defer span.End()

	claims, err := s.tokens.Verify(token)
	if err != nil {
		return nil, ErrUnauthorized
	}

	user, err := s.identity.FindByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrUnauthorized
		}
		span.RecordError(err)
		return nil, err
	}

	span.SetAttributes(attribute.Int64("user.id", user.ID))
	return user, nil
}
