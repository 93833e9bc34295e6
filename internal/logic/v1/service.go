package v1

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/imaginify/backend/internal/core/domain"
	"github.com/imaginify/backend/middleware"
)

// UserService implements the user-sync business rules.
// It depends on the repository interface (injected via constructor) and
// MUST NOT access the database or the driver directly.
type UserService struct {
	users domain.UserRepository
}

// NewUserService creates a new UserService with the given repository.
func NewUserService(users domain.UserRepository) *UserService {
	return &UserService{users: users}
}

// CreateUser mirrors a provider creation event into the store. The
// operation is idempotent: a record already present under the same
// provider id or email is returned unchanged, so redelivered creation
// events are harmless.
func (s *UserService) CreateUser(ctx context.Context, params domain.CreateUserParams) (*domain.User, error) {
	ctx, span := middleware.StartSpan(ctx, "users.create", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.String("user.external_id", params.ClerkID),
	))
	defer span.End()

	user, err := s.users.Create(ctx, params)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("create user %q: %w: %w", params.ClerkID, err, ErrPersistence)
	}
	if user == nil {
		span.SetAttributes(attribute.Bool("user.created", false))
		return nil, fmt.Errorf("create user %q: no record returned: %w", params.ClerkID, ErrPersistence)
	}

	span.SetAttributes(attribute.Bool("user.created", true))
	span.AddEvent("user.synced")

	return user, nil
}

// GetUserByID returns the user with the given provider id.
func (s *UserService) GetUserByID(ctx context.Context, clerkID string) (*domain.User, error) {
	ctx, span := middleware.StartSpan(ctx, "users.get", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.String("user.external_id", clerkID),
	))
	defer span.End()

	user, err := s.users.GetByExternalID(ctx, clerkID)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("query user %q: %w", clerkID, err)
	}
	if user == nil {
		span.SetAttributes(attribute.Bool("user.found", false))
		return nil, fmt.Errorf("lookup user %q: %w", clerkID, ErrUserNotFound)
	}

	span.SetAttributes(attribute.Bool("user.found", true))
	return user, nil
}

// UpdateUser overwrites the user's profile fields from an update event.
func (s *UserService) UpdateUser(ctx context.Context, clerkID string, params domain.UpdateUserParams) (*domain.User, error) {
	ctx, span := middleware.StartSpan(ctx, "users.update", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.String("user.external_id", clerkID),
	))
	defer span.End()

	user, err := s.users.Update(ctx, clerkID, params)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("update user %q: %w", clerkID, err)
	}
	if user == nil {
		span.SetAttributes(attribute.Bool("user.found", false))
		return nil, fmt.Errorf("update user %q: %w", clerkID, ErrUserNotFound)
	}

	span.AddEvent("user.synced")
	return user, nil
}

// DeleteUser removes the user record and returns its last contents.
func (s *UserService) DeleteUser(ctx context.Context, clerkID string) (*domain.User, error) {
	ctx, span := middleware.StartSpan(ctx, "users.delete", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.String("user.external_id", clerkID),
	))
	defer span.End()

	user, err := s.users.Delete(ctx, clerkID)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("delete user %q: %w", clerkID, err)
	}
	if user == nil {
		span.SetAttributes(attribute.Bool("user.found", false))
		return nil, fmt.Errorf("delete user %q: %w", clerkID, ErrUserNotFound)
	}

	span.AddEvent("user.removed")
	return user, nil
}

// AdjustCredits applies a billing delta to the user's credit balance.
// The increment is a single atomic operation in the store; concurrent
// adjustments never lose updates.
func (s *UserService) AdjustCredits(ctx context.Context, clerkID string, delta int64) (*domain.User, error) {
	ctx, span := middleware.StartSpan(ctx, "users.adjust_credits", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.String("user.external_id", clerkID),
		attribute.Int64("credits.delta", delta),
	))
	defer span.End()

	user, err := s.users.AdjustCredits(ctx, clerkID, delta)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("adjust credits for user %q: %w", clerkID, err)
	}
	if user == nil {
		span.SetAttributes(attribute.Bool("user.found", false))
		return nil, fmt.Errorf("adjust credits for user %q: %w", clerkID, ErrUserNotFound)
	}

	span.SetAttributes(attribute.Int64("credits.balance", user.CreditBalance))
	return user, nil
}
