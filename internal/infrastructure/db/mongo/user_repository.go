package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/recordhub/records-system/internal/core/domain"
)

type UserRepository struct {
	collection[domain.User]
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{collection[domain.User]{
		col:    db.Collection(ColUsers),
		idOf:   func(u *domain.User) *string { return &u.ID },
		search: []string{"firstName", "lastName", "email"},
	}}
}

// Create inserts the user. A taken email yields domain.ErrUserExists.
func (r *UserRepository) Create(ctx context.Context, u *domain.User) error {
	err := r.collection.Create(ctx, u)
	if mongo.IsDuplicateKeyError(err) {
		return domain.ErrUserExists
	}
	return err
}

func (r *UserRepository) Update(ctx context.Context, u *domain.User) error {
	err := r.collection.Update(ctx, u)
	if mongo.IsDuplicateKeyError(err) {
		return domain.ErrUserExists
	}
	return err
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, bson.D{{Key: "email", Value: email}})
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id, hash string) error {
	return r.updateOne(ctx, id, nil, bson.D{{Key: "$set", Value: bson.D{
		{Key: "password", Value: hash},
		{Key: "updatedAt", Value: time.Now().UTC()},
	}}})
}

func (r *UserRepository) TouchLastLogin(ctx context.Context, id string, at time.Time) error {
	return r.updateOne(ctx, id, nil, bson.D{{Key: "$set", Value: bson.D{{Key: "lastLogin", Value: at.UTC()}}}})
}

func (r *UserRepository) RecentLogins(ctx context.Context, excludeID string, limit int) ([]*domain.User, error) {
	filter := bson.D{
		{Key: "_id", Value: bson.D{{Key: "$ne", Value: excludeID}}},
		{Key: "lastLogin", Value: bson.D{{Key: "$ne", Value: nil}}},
	}
	opts := options.Find().SetSort(bson.D{{Key: "lastLogin", Value: -1}}).SetLimit(int64(limit))
	users, err := r.findMany(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("recent logins: %w", err)
	}
	return users, nil
}
