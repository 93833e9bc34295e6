package domain

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// DefaultPhotoURL is used when the identity provider supplies no avatar.
const DefaultPhotoURL = "https://example.com/default-avatar.png"

// User is the canonical identity record mirrored from the auth provider.
// ClerkID and Email are each unique across the collection.
type User struct {
	ID            bson.ObjectID `bson:"_id,omitempty" json:"id"`
	ClerkID       string        `bson:"clerk_id" json:"clerkId"`
	Email         string        `bson:"email" json:"email"`
	Username      string        `bson:"username" json:"username"`
	FirstName     string        `bson:"first_name" json:"firstName"`
	LastName      string        `bson:"last_name" json:"lastName"`
	Photo         string        `bson:"photo" json:"photo"`
	CreditBalance int64         `bson:"credit_balance" json:"creditBalance"`
	CreatedAt     time.Time     `bson:"created_at" json:"createdAt"`
	UpdatedAt     time.Time     `bson:"updated_at" json:"updatedAt"`
}

// CreateUserParams carries the fields for a new user record.
type CreateUserParams struct {
	ClerkID   string
	Email     string
	Username  string
	FirstName string
	LastName  string
	Photo     string
}

// UpdateUserParams is a full overwrite of the mutable profile fields.
// Empty strings are written as-is: an update event that omits a field
// clears it, matching the provider's full-snapshot event semantics.
type UpdateUserParams struct {
	Username  string
	FirstName string
	LastName  string
	Photo     string
}

// UserRepository defines the data-access contract for user records.
// Implementations live in internal/core/repository.
// The Logic layer depends on this interface only — never on the driver.
type UserRepository interface {
	// Create inserts a new user, unless a record with the same clerk_id
	// or email already exists, in which case that record is returned
	// unchanged. Creation is therefore idempotent under at-least-once
	// delivery of creation events.
	Create(ctx context.Context, params CreateUserParams) (*User, error)

	// GetByExternalID returns the user matching the given provider id.
	// Returns (nil, nil) when no user is found; database errors are
	// returned as errors, never conflated with absence.
	GetByExternalID(ctx context.Context, clerkID string) (*User, error)

	// Update overwrites the profile fields of the matching user and
	// returns the updated record. Returns (nil, nil) when absent.
	Update(ctx context.Context, clerkID string, params UpdateUserParams) (*User, error)

	// Delete removes the matching user and returns the deleted record.
	// Returns (nil, nil) when absent.
	Delete(ctx context.Context, clerkID string) (*User, error)

	// AdjustCredits atomically increments the credit balance by delta
	// (which may be negative) and returns the updated record.
	// Returns (nil, nil) when absent.
	AdjustCredits(ctx context.Context, clerkID string, delta int64) (*User, error)
}
