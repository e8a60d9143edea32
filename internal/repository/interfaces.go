package repository

import (
	"context"

	"github.com/myfirstshop/fragrance-api/internal/domain"
)

// UserRepository defines user data access operations
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	EnsureIndexes(ctx context.Context) error
}

// ProductUpdate lists the product fields a partial update may set.
// Nil fields are left untouched.
type ProductUpdate struct {
	Name        *string
	Description *string
	Price       *float64
	Category    *string
	Stock       *int
	Image       *string
	IsPromotion *bool
}

// ProductRepository defines product data access operations
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	List(ctx context.Context) ([]*domain.Product, error)
	UpdateByID(ctx context.Context, id string, update *ProductUpdate) (*domain.Product, error)
	DeleteByID(ctx context.Context, id string) (bool, error)
}
