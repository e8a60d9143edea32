package repository

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/myfirstshop/fragrance-api/internal/domain"
	"github.com/myfirstshop/fragrance-api/pkg/database"
)

const userCollection = "users"

type mongoUserRepository struct {
	db *database.MongoDB
}

// NewUserRepository creates a MongoDB-backed user repository
func NewUserRepository(db *database.MongoDB) UserRepository {
	return &mongoUserRepository{db: db}
}

func (r *mongoUserRepository) collection(ctx context.Context) (*mongo.Collection, error) {
	return r.db.Collection(ctx, userCollection)
}

func (r *mongoUserRepository) Create(ctx context.Context, user *domain.User) error {
	coll, err := r.collection(ctx)
	if err != nil {
		return fmt.Errorf("failed to get collection: %w", err)
	}

	if _, err := coll.InsertOne(ctx, user); err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *mongoUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	coll, err := r.collection(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get collection: %w", err)
	}

	var user domain.User
	err = coll.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return &user, nil
}

func (r *mongoUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	coll, err := r.collection(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to get collection: %w", err)
	}

	count, err := coll.CountDocuments(ctx, bson.M{"email": email}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to count users by email: %w", err)
	}
	return count > 0, nil
}

// EnsureIndexes creates the unique email index. Safe to call on every startup.
func (r *mongoUserRepository) EnsureIndexes(ctx context.Context) error {
	coll, err := r.collection(ctx)
	if err != nil {
		return fmt.Errorf("failed to get collection: %w", err)
	}

	_, err = coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create email index: %w", err)
	}
	return nil
}
