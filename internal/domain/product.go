package domain

import (
	"time"
)

// Product represents a catalog entry
type Product struct {
	ID          string    `json:"id" bson:"_id"`
	Name        string    `json:"name" bson:"name"`
	Description string    `json:"description" bson:"description"`
	Price       float64   `json:"price" bson:"price"`
	Category    string    `json:"category" bson:"category"`
	Stock       int       `json:"stock" bson:"stock"`
	Image       string    `json:"image" bson:"image"` // object storage URL, empty when none uploaded
	IsPromotion bool      `json:"isPromotion" bson:"is_promotion"`
	CreatedAt   time.Time `json:"createdAt" bson:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" bson:"updated_at"`
}
