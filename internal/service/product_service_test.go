package service

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/myfirstshop/fragrance-api/internal/domain"
	"github.com/myfirstshop/fragrance-api/internal/dto"
	"github.com/myfirstshop/fragrance-api/internal/repository"
	"github.com/myfirstshop/fragrance-api/pkg/telemetry"
)

// mockProductRepository is a mock implementation of repository.ProductRepository
type mockProductRepository struct {
	products    map[string]*domain.Product
	createError error
}

func newMockProductRepository() *mockProductRepository {
	return &mockProductRepository{products: make(map[string]*domain.Product)}
}

func (r *mockProductRepository) Create(ctx context.Context, product *domain.Product) error {
	if r.createError != nil {
		return r.createError
	}
	r.products[product.ID] = product
	return nil
}

func (r *mockProductRepository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	return r.products[id], nil
}

func (r *mockProductRepository) List(ctx context.Context) ([]*domain.Product, error) {
	products := make([]*domain.Product, 0, len(r.products))
	for _, p := range r.products {
		products = append(products, p)
	}
	sort.Slice(products, func(i, j int) bool {
		return products[i].CreatedAt.After(products[j].CreatedAt)
	})
	return products, nil
}

func (r *mockProductRepository) UpdateByID(ctx context.Context, id string, update *repository.ProductUpdate) (*domain.Product, error) {
	product, ok := r.products[id]
	if !ok {
		return nil, nil
	}
	if update.Name != nil {
		product.Name = *update.Name
	}
	if update.Description != nil {
		product.Description = *update.Description
	}
	if update.Price != nil {
		product.Price = *update.Price
	}
	if update.Category != nil {
		product.Category = *update.Category
	}
	if update.Stock != nil {
		product.Stock = *update.Stock
	}
	if update.Image != nil {
		product.Image = *update.Image
	}
	if update.IsPromotion != nil {
		product.IsPromotion = *update.IsPromotion
	}
	product.UpdatedAt = time.Now()
	return product, nil
}

func (r *mockProductRepository) DeleteByID(ctx context.Context, id string) (bool, error) {
	if _, ok := r.products[id]; !ok {
		return false, nil
	}
	delete(r.products, id)
	return true, nil
}

// mockUploader is a mock implementation of storage.Uploader
type mockUploader struct {
	uploads     int
	lastFolder  string
	uploadError error
}

func (u *mockUploader) Upload(ctx context.Context, data []byte, folder, contentType string) (string, error) {
	if u.uploadError != nil {
		return "", u.uploadError
	}
	u.uploads++
	u.lastFolder = folder
	return "https://cdn.example.com/" + folder + "/image.jpg", nil
}

func createRequest() *dto.CreateProductRequest {
	price := 1290.0
	stock := 25
	return &dto.CreateProductRequest{
		Name:        "Amber Noir",
		Description: "Warm amber eau de parfum, 50ml",
		Price:       &price,
		Category:    "perfume",
		Stock:       &stock,
	}
}

func TestProductService_Create(t *testing.T) {
	t.Run("without image", func(t *testing.T) {
		repo := newMockProductRepository()
		uploader := &mockUploader{}
		svc := NewProductService(repo, uploader, "products")

		product, err := svc.Create(context.Background(), createRequest())
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		if product.ID == "" {
			t.Error("Create() product ID is empty")
		}
		if product.Image != "" {
			t.Errorf("Create() Image = %v, want empty", product.Image)
		}
		if uploader.uploads != 0 {
			t.Errorf("Create() uploads = %d, want 0", uploader.uploads)
		}
		if repo.products[product.ID] == nil {
			t.Error("Create() did not store the product")
		}
	})

	t.Run("with image", func(t *testing.T) {
		repo := newMockProductRepository()
		uploader := &mockUploader{}
		svc := NewProductService(repo, uploader, "products")

		req := createRequest()
		req.Image = &dto.ImageUpload{Data: []byte("jpeg-bytes"), ContentType: "image/jpeg"}

		product, err := svc.Create(context.Background(), req)
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		if product.Image == "" {
			t.Error("Create() Image is empty, want uploaded URL")
		}
		if uploader.uploads != 1 {
			t.Errorf("Create() uploads = %d, want 1", uploader.uploads)
		}
		if uploader.lastFolder != "products" {
			t.Errorf("Create() upload folder = %v, want products", uploader.lastFolder)
		}
	})

	t.Run("upload failure aborts create", func(t *testing.T) {
		repo := newMockProductRepository()
		uploader := &mockUploader{uploadError: errors.New("bucket unavailable")}
		svc := NewProductService(repo, uploader, "products")

		req := createRequest()
		req.Image = &dto.ImageUpload{Data: []byte("jpeg-bytes"), ContentType: "image/jpeg"}

		_, err := svc.Create(context.Background(), req)
		if err == nil {
			t.Fatal("Create() error = nil, want upload error")
		}
		if len(repo.products) != 0 {
			t.Error("Create() stored a product despite upload failure")
		}
	})
}

func TestProductService_Get(t *testing.T) {
	repo := newMockProductRepository()
	svc := NewProductService(repo, &mockUploader{}, "products")

	stored := &domain.Product{ID: "p1", Name: "Citrus Bloom"}
	repo.products[stored.ID] = stored

	t.Run("found", func(t *testing.T) {
		product, err := svc.Get(context.Background(), "p1")
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if product.Name != stored.Name {
			t.Errorf("Get() Name = %v, want %v", product.Name, stored.Name)
		}
	})

	t.Run("not found", func(t *testing.T) {
		_, err := svc.Get(context.Background(), "missing")
		if err != ErrProductNotFound {
			t.Errorf("Get() error = %v, want %v", err, ErrProductNotFound)
		}
	})
}

func TestProductService_List(t *testing.T) {
	repo := newMockProductRepository()
	svc := NewProductService(repo, &mockUploader{}, "products")

	now := time.Now()
	repo.products["old"] = &domain.Product{ID: "old", CreatedAt: now.Add(-time.Hour)}
	repo.products["new"] = &domain.Product{ID: "new", CreatedAt: now}

	products, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(products) != 2 {
		t.Fatalf("List() returned %d products, want 2", len(products))
	}
	if products[0].ID != "new" {
		t.Errorf("List() first product = %v, want newest", products[0].ID)
	}
}

func TestProductService_Update(t *testing.T) {
	t.Run("partial update leaves other fields", func(t *testing.T) {
		repo := newMockProductRepository()
		svc := NewProductService(repo, &mockUploader{}, "products")

		repo.products["p1"] = &domain.Product{
			ID:          "p1",
			Name:        "Amber Noir",
			Description: "Warm amber eau de parfum",
			Price:       1290,
			Category:    "perfume",
			Stock:       25,
		}

		newPrice := 990.0
		promo := dto.FlexBool(true)
		req := &dto.UpdateProductRequest{Price: &newPrice, IsPromotion: &promo}

		product, err := svc.Update(context.Background(), "p1", req)
		if err != nil {
			t.Fatalf("Update() error = %v", err)
		}
		if product.Price != newPrice {
			t.Errorf("Update() Price = %v, want %v", product.Price, newPrice)
		}
		if !product.IsPromotion {
			t.Error("Update() IsPromotion = false, want true")
		}
		if product.Name != "Amber Noir" {
			t.Errorf("Update() changed Name to %v", product.Name)
		}
		if product.Stock != 25 {
			t.Errorf("Update() changed Stock to %v", product.Stock)
		}
	})

	t.Run("new image replaces URL", func(t *testing.T) {
		repo := newMockProductRepository()
		uploader := &mockUploader{}
		svc := NewProductService(repo, uploader, "products")

		repo.products["p1"] = &domain.Product{ID: "p1", Image: "https://cdn.example.com/old.jpg"}

		req := &dto.UpdateProductRequest{
			Image: &dto.ImageUpload{Data: []byte("jpeg-bytes"), ContentType: "image/jpeg"},
		}

		product, err := svc.Update(context.Background(), "p1", req)
		if err != nil {
			t.Fatalf("Update() error = %v", err)
		}
		if product.Image == "https://cdn.example.com/old.jpg" {
			t.Error("Update() kept the old image URL")
		}
		if uploader.uploads != 1 {
			t.Errorf("Update() uploads = %d, want 1", uploader.uploads)
		}
	})

	t.Run("not found", func(t *testing.T) {
		repo := newMockProductRepository()
		svc := NewProductService(repo, &mockUploader{}, "products")

		name := "Renamed"
		_, err := svc.Update(context.Background(), "missing", &dto.UpdateProductRequest{Name: &name})
		if err != ErrProductNotFound {
			t.Errorf("Update() error = %v, want %v", err, ErrProductNotFound)
		}
	})
}

func TestProductService_SpansRecorded(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder)))
	if _, err := telemetry.Init(context.Background(), nil); err != nil {
		t.Fatalf("telemetry.Init() error = %v", err)
	}

	repo := newMockProductRepository()
	svc := NewProductService(repo, &mockUploader{}, "products")

	if _, err := svc.Create(context.Background(), createRequest()); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if _, err := svc.Get(context.Background(), "missing"); err != ErrProductNotFound {
		t.Fatalf("Get() error = %v, want %v", err, ErrProductNotFound)
	}

	statuses := make(map[string]codes.Code)
	for _, span := range recorder.Ended() {
		statuses[span.Name()] = span.Status().Code
	}

	if code, ok := statuses["service.product.create"]; !ok {
		t.Error("no span recorded for create")
	} else if code != codes.Ok {
		t.Errorf("create span status = %v, want %v", code, codes.Ok)
	}

	if code, ok := statuses["service.product.get"]; !ok {
		t.Error("no span recorded for get")
	} else if code != codes.Error {
		t.Errorf("get span status = %v, want %v", code, codes.Error)
	}
}

func TestProductService_Delete(t *testing.T) {
	repo := newMockProductRepository()
	svc := NewProductService(repo, &mockUploader{}, "products")

	repo.products["p1"] = &domain.Product{ID: "p1"}

	t.Run("found", func(t *testing.T) {
		if err := svc.Delete(context.Background(), "p1"); err != nil {
			t.Fatalf("Delete() error = %v", err)
		}
		if _, ok := repo.products["p1"]; ok {
			t.Error("Delete() left the product in place")
		}
	})

	t.Run("not found", func(t *testing.T) {
		err := svc.Delete(context.Background(), "missing")
		if err != ErrProductNotFound {
			t.Errorf("Delete() error = %v, want %v", err, ErrProductNotFound)
		}
	})
}
