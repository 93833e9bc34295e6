package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	database "github.com/imaginify/backend/internal/core"
	"github.com/imaginify/backend/internal/core/domain"
)

const userCollection = "users"

// MongoUserRepository implements domain.UserRepository on the shared
// MongoDB gateway. Every operation ensures the gateway connection is
// established before touching the collection.
type MongoUserRepository struct {
	gateway *database.Gateway
}

// NewUserRepository creates a new MongoUserRepository.
func NewUserRepository(gateway *database.Gateway) *MongoUserRepository {
	return &MongoUserRepository{gateway: gateway}
}

func (r *MongoUserRepository) collection(ctx context.Context) (*mongo.Collection, error) {
	db, err := r.gateway.Connect(ctx)
	if err != nil {
		return nil, err
	}
	return db.Collection(userCollection), nil
}

// EnsureIndexes creates the unique indexes backing the one-user-per-id
// and one-user-per-email invariants. Safe to call repeatedly.
func (r *MongoUserRepository) EnsureIndexes(ctx context.Context) error {
	coll, err := r.collection(ctx)
	if err != nil {
		return err
	}
	_, err = coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "clerk_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	})
	return err
}

// Create inserts a new user unless one already exists with the same
// clerk_id or email; the existing record is then returned unchanged.
func (r *MongoUserRepository) Create(ctx context.Context, params domain.CreateUserParams) (*domain.User, error) {
	coll, err := r.collection(ctx)
	if err != nil {
		return nil, err
	}

	filter := bson.M{"$or": []bson.M{
		{"clerk_id": params.ClerkID},
		{"email": params.Email},
	}}

	var existing domain.User
	err = coll.FindOne(ctx, filter).Decode(&existing)
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, err
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:        bson.NewObjectID(),
		ClerkID:   params.ClerkID,
		Email:     params.Email,
		Username:  params.Username,
		FirstName: params.FirstName,
		LastName:  params.LastName,
		Photo:     params.Photo,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if _, err := coll.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			// Lost a race with a concurrent create of the same user;
			// return the winner, keeping creation idempotent.
			var winner domain.User
			if ferr := coll.FindOne(ctx, filter).Decode(&winner); ferr == nil {
				return &winner, nil
			}
		}
		return nil, err
	}

	return user, nil
}

// GetByExternalID returns the user matching the given provider id.
// Returns (nil, nil) when no user is found.
func (r *MongoUserRepository) GetByExternalID(ctx context.Context, clerkID string) (*domain.User, error) {
	coll, err := r.collection(ctx)
	if err != nil {
		return nil, err
	}

	var user domain.User
	err = coll.FindOne(ctx, bson.M{"clerk_id": clerkID}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}

	return &user, nil
}

// Update overwrites the profile fields of the matching user and returns
// the updated record. Returns (nil, nil) when absent.
func (r *MongoUserRepository) Update(ctx context.Context, clerkID string, params domain.UpdateUserParams) (*domain.User, error) {
	coll, err := r.collection(ctx)
	if err != nil {
		return nil, err
	}

	update := bson.M{"$set": bson.M{
		"username":   params.Username,
		"first_name": params.FirstName,
		"last_name":  params.LastName,
		"photo":      params.Photo,
		"updated_at": time.Now().UTC(),
	}}

	var user domain.User
	err = coll.FindOneAndUpdate(ctx, bson.M{"clerk_id": clerkID}, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}

	return &user, nil
}

// Delete removes the matching user and returns the deleted record.
// Two-step: the record is located by clerk_id and deleted by its _id so
// the caller gets the deleted document's contents back.
// Returns (nil, nil) when absent.
func (r *MongoUserRepository) Delete(ctx context.Context, clerkID string) (*domain.User, error) {
	coll, err := r.collection(ctx)
	if err != nil {
		return nil, err
	}

	var target domain.User
	err = coll.FindOne(ctx, bson.M{"clerk_id": clerkID}).Decode(&target)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}

	var deleted domain.User
	err = coll.FindOneAndDelete(ctx, bson.M{"_id": target.ID}).Decode(&deleted)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}

	return &deleted, nil
}

// AdjustCredits atomically increments the credit balance by delta using a
// single $inc, never read-modify-write, so concurrent adjustments cannot
// lose updates. Returns (nil, nil) when absent.
func (r *MongoUserRepository) AdjustCredits(ctx context.Context, clerkID string, delta int64) (*domain.User, error) {
	coll, err := r.collection(ctx)
	if err != nil {
		return nil, err
	}

	update := bson.M{
		"$inc": bson.M{"credit_balance": delta},
		"$set": bson.M{"updated_at": time.Now().UTC()},
	}

	var user domain.User
	err = coll.FindOneAndUpdate(ctx, bson.M{"clerk_id": clerkID}, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}

	return &user, nil
}
