package di

import (
	"github.com/myfirstshop/fragrance-api/internal/handler"
	"github.com/myfirstshop/fragrance-api/internal/repository"
	"github.com/myfirstshop/fragrance-api/internal/service"
	"github.com/myfirstshop/fragrance-api/pkg/database"
	"github.com/myfirstshop/fragrance-api/pkg/storage"
)

// Container holds all dependencies for the API
type Container struct {
	// Infrastructure
	DB       *database.MongoDB
	Uploader storage.Uploader

	// Repositories
	UserRepo    repository.UserRepository
	ProductRepo repository.ProductRepository

	// Services
	AuthService    service.AuthService
	ProductService service.ProductService

	// Handlers
	HealthHandler  *handler.HealthHandler
	AuthHandler    *handler.AuthHandler
	ProductHandler *handler.ProductHandler
}

// ContainerConfig contains configuration for building the container
type ContainerConfig struct {
	DB            *database.MongoDB
	Uploader      storage.Uploader
	ServiceConfig *service.AuthServiceConfig
	UploadFolder  string
}

// NewContainer creates a new dependency injection container
func NewContainer(cfg *ContainerConfig) *Container {
	c := &Container{
		DB:       cfg.DB,
		Uploader: cfg.Uploader,
	}

	// Initialize repositories
	c.UserRepo = repository.NewUserRepository(c.DB)
	c.ProductRepo = repository.NewProductRepository(c.DB)

	// Initialize services
	c.AuthService = service.NewAuthService(c.UserRepo, cfg.ServiceConfig)
	c.ProductService = service.NewProductService(c.ProductRepo, c.Uploader, cfg.UploadFolder)

	// Initialize handlers
	c.HealthHandler = handler.NewHealthHandler(c.DB)
	c.AuthHandler = handler.NewAuthHandler(c.AuthService)
	c.ProductHandler = handler.NewProductHandler(c.ProductService)

	return c
}
