package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/myfirstshop/fragrance-api/internal/domain"
	"github.com/myfirstshop/fragrance-api/internal/dto"
	"github.com/myfirstshop/fragrance-api/internal/repository"
	"github.com/myfirstshop/fragrance-api/pkg/storage"
	"github.com/myfirstshop/fragrance-api/pkg/telemetry"
)

var ErrProductNotFound = errors.New("product not found")

// ProductService defines the interface for catalog operations
type ProductService interface {
	// Create adds a new product, uploading its image when present
	Create(ctx context.Context, req *dto.CreateProductRequest) (*domain.Product, error)
	// Get retrieves a product by ID
	Get(ctx context.Context, id string) (*domain.Product, error)
	// List retrieves all products, newest first
	List(ctx context.Context) ([]*domain.Product, error)
	// Update applies a partial update to a product
	Update(ctx context.Context, id string, req *dto.UpdateProductRequest) (*domain.Product, error)
	// Delete removes a product by ID
	Delete(ctx context.Context, id string) error
}

// productService implements ProductService
type productService struct {
	productRepo  repository.ProductRepository
	uploader     storage.Uploader
	uploadFolder string
}

// NewProductService creates a new ProductService
func NewProductService(productRepo repository.ProductRepository, uploader storage.Uploader, uploadFolder string) ProductService {
	if uploadFolder == "" {
		uploadFolder = "products"
	}
	return &productService{
		productRepo:  productRepo,
		uploader:     uploader,
		uploadFolder: uploadFolder,
	}
}

// Create adds a new product. An upload failure aborts the create so a
// product is never stored pointing at an image that does not exist.
func (s *productService) Create(ctx context.Context, req *dto.CreateProductRequest) (*domain.Product, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.product.create")
	defer span.End()

	imageURL := ""
	if req.Image != nil {
		url, err := s.uploader.Upload(ctx, req.Image.Data, s.uploadFolder, req.Image.ContentType)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "Failed to upload image")
			return nil, fmt.Errorf("failed to upload product image: %w", err)
		}
		imageURL = url
	}

	now := time.Now()
	product := &domain.Product{
		ID:          uuid.New().String(),
		Name:        req.Name,
		Description: req.Description,
		Price:       *req.Price,
		Category:    req.Category,
		Stock:       *req.Stock,
		Image:       imageURL,
		IsPromotion: req.IsPromotion.Bool(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to create product")
		return nil, err
	}

	span.SetAttributes(attribute.String("product_id", product.ID))
	span.SetStatus(codes.Ok, "")
	return product, nil
}

// Get retrieves a product by ID
func (s *productService) Get(ctx context.Context, id string) (*domain.Product, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.product.get")
	defer span.End()
	span.SetAttributes(attribute.String("product_id", id))

	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to get product")
		return nil, err
	}
	if product == nil {
		span.SetStatus(codes.Error, "Product not found")
		return nil, ErrProductNotFound
	}

	span.SetStatus(codes.Ok, "")
	return product, nil
}

// List retrieves all products, newest first
func (s *productService) List(ctx context.Context) ([]*domain.Product, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.product.list")
	defer span.End()

	products, err := s.productRepo.List(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to list products")
		return nil, err
	}

	span.SetAttributes(attribute.Int("count", len(products)))
	span.SetStatus(codes.Ok, "")
	return products, nil
}

// Update applies a partial update. Only fields present in the request
// are changed; a new image replaces the stored URL.
func (s *productService) Update(ctx context.Context, id string, req *dto.UpdateProductRequest) (*domain.Product, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.product.update")
	defer span.End()
	span.SetAttributes(attribute.String("product_id", id))

	update := &repository.ProductUpdate{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Category:    req.Category,
		Stock:       req.Stock,
	}
	if req.IsPromotion != nil {
		isPromotion := req.IsPromotion.Bool()
		update.IsPromotion = &isPromotion
	}

	if req.Image != nil {
		url, err := s.uploader.Upload(ctx, req.Image.Data, s.uploadFolder, req.Image.ContentType)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "Failed to upload image")
			return nil, fmt.Errorf("failed to upload product image: %w", err)
		}
		update.Image = &url
	}

	product, err := s.productRepo.UpdateByID(ctx, id, update)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to update product")
		return nil, err
	}
	if product == nil {
		span.SetStatus(codes.Error, "Product not found")
		return nil, ErrProductNotFound
	}

	span.SetStatus(codes.Ok, "")
	return product, nil
}

// Delete removes a product by ID
func (s *productService) Delete(ctx context.Context, id string) error {
	ctx, span := telemetry.StartSpan(ctx, "service.product.delete")
	defer span.End()
	span.SetAttributes(attribute.String("product_id", id))

	deleted, err := s.productRepo.DeleteByID(ctx, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to delete product")
		return err
	}
	if !deleted {
		span.SetStatus(codes.Error, "Product not found")
		return ErrProductNotFound
	}

	span.SetStatus(codes.Ok, "")
	return nil
}
