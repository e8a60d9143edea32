package dto

import (
	"encoding/json"
	"fmt"
)

// FlexBool accepts both JSON booleans and the string "true"/"false" so
// multipart form clients and JSON clients share one request shape.
type FlexBool bool

// UnmarshalJSON implements json.Unmarshaler
func (f *FlexBool) UnmarshalJSON(data []byte) error {
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*f = FlexBool(b)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = FlexBool(s == "true")
		return nil
	}

	return fmt.Errorf("invalid boolean value: %s", string(data))
}

// Bool returns the underlying bool
func (f FlexBool) Bool() bool {
	return bool(f)
}

// ParseFlexBool coerces a form value: only the literal "true" is true
func ParseFlexBool(s string) FlexBool {
	return FlexBool(s == "true")
}

// ImageUpload carries a decoded image file from a multipart request
type ImageUpload struct {
	Data        []byte
	ContentType string
}

// CreateProductRequest represents product creation request.
// Price and Stock are pointers so that an explicit zero can be told
// apart from a missing field.
type CreateProductRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       *float64 `json:"price"`
	Category    string   `json:"category"`
	Stock       *int     `json:"stock"`
	IsPromotion FlexBool `json:"isPromotion"`

	Image *ImageUpload `json:"-"`
}

// Validate checks required fields and value ranges
func (r *CreateProductRequest) Validate() (bool, string) {
	if r.Name == "" || r.Description == "" || r.Category == "" || r.Price == nil || r.Stock == nil {
		return false, "Name, description, price, category and stock are required"
	}
	if *r.Price < 0 {
		return false, "Price must not be negative"
	}
	if *r.Stock < 0 {
		return false, "Stock must not be negative"
	}
	return true, ""
}

// UpdateProductRequest represents a partial product update. Only the
// fields present in the request are applied.
type UpdateProductRequest struct {
	Name        *string   `json:"name"`
	Description *string   `json:"description"`
	Price       *float64  `json:"price"`
	Category    *string   `json:"category"`
	Stock       *int      `json:"stock"`
	IsPromotion *FlexBool `json:"isPromotion"`

	Image *ImageUpload `json:"-"`
}

// Validate checks value ranges on the fields that are present
func (r *UpdateProductRequest) Validate() (bool, string) {
	if r.Price != nil && *r.Price < 0 {
		return false, "Price must not be negative"
	}
	if r.Stock != nil && *r.Stock < 0 {
		return false, "Stock must not be negative"
	}
	return true, ""
}

// HasChanges reports whether any updatable field is present
func (r *UpdateProductRequest) HasChanges() bool {
	return r.Name != nil || r.Description != nil || r.Price != nil ||
		r.Category != nil || r.Stock != nil || r.IsPromotion != nil || r.Image != nil
}
