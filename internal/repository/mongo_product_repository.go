package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/myfirstshop/fragrance-api/internal/domain"
	"github.com/myfirstshop/fragrance-api/pkg/database"
)

const productCollection = "products"

type mongoProductRepository struct {
	db *database.MongoDB
}

// NewProductRepository creates a MongoDB-backed product repository
func NewProductRepository(db *database.MongoDB) ProductRepository {
	return &mongoProductRepository{db: db}
}

func (r *mongoProductRepository) collection(ctx context.Context) (*mongo.Collection, error) {
	return r.db.Collection(ctx, productCollection)
}

func (r *mongoProductRepository) Create(ctx context.Context, product *domain.Product) error {
	coll, err := r.collection(ctx)
	if err != nil {
		return fmt.Errorf("failed to get collection: %w", err)
	}

	if _, err := coll.InsertOne(ctx, product); err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

func (r *mongoProductRepository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	coll, err := r.collection(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get collection: %w", err)
	}

	var product domain.Product
	err = coll.FindOne(ctx, bson.M{"_id": id}).Decode(&product)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return &product, nil
}

func (r *mongoProductRepository) List(ctx context.Context) ([]*domain.Product, error) {
	coll, err := r.collection(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get collection: %w", err)
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer cursor.Close(ctx)

	products := make([]*domain.Product, 0)
	if err := cursor.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("failed to decode products: %w", err)
	}
	return products, nil
}

func (r *mongoProductRepository) UpdateByID(ctx context.Context, id string, update *ProductUpdate) (*domain.Product, error) {
	coll, err := r.collection(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get collection: %w", err)
	}

	set := bson.M{"updated_at": time.Now()}
	if update.Name != nil {
		set["name"] = *update.Name
	}
	if update.Description != nil {
		set["description"] = *update.Description
	}
	if update.Price != nil {
		set["price"] = *update.Price
	}
	if update.Category != nil {
		set["category"] = *update.Category
	}
	if update.Stock != nil {
		set["stock"] = *update.Stock
	}
	if update.Image != nil {
		set["image"] = *update.Image
	}
	if update.IsPromotion != nil {
		set["is_promotion"] = *update.IsPromotion
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var product domain.Product
	err = coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&product)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	return &product, nil
}

func (r *mongoProductRepository) DeleteByID(ctx context.Context, id string) (bool, error) {
	coll, err := r.collection(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to get collection: %w", err)
	}

	res, err := coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, fmt.Errorf("failed to delete product: %w", err)
	}
	return res.DeletedCount > 0, nil
}
