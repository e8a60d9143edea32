package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/myfirstshop/fragrance-api/internal/dto"
	"github.com/myfirstshop/fragrance-api/internal/service"
	"github.com/myfirstshop/fragrance-api/pkg/response"
)

// ProductHandler handles catalog HTTP requests
type ProductHandler struct {
	productService service.ProductService
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(productService service.ProductService) *ProductHandler {
	return &ProductHandler{
		productService: productService,
	}
}

// List handles GET /api/products - lists all products, newest first
func (h *ProductHandler) List(c *gin.Context) {
	products, err := h.productService.List(c.Request.Context())
	if err != nil {
		response.InternalError(c, "Failed to list products", err)
		return
	}

	response.OK(c, "Products retrieved", products)
}

// Get handles GET /api/products/:id - retrieves a single product
func (h *ProductHandler) Get(c *gin.Context) {
	id := c.Param("id")

	product, err := h.productService.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			response.NotFound(c, "Product not found")
			return
		}
		response.InternalError(c, "Failed to get product", err)
		return
	}

	response.OK(c, "Product retrieved", product)
}

// Create handles POST /api/admin/products - creates a product.
// Accepts JSON or multipart/form-data; the image file only travels in
// the multipart form.
func (h *ProductHandler) Create(c *gin.Context) {
	var req dto.CreateProductRequest

	if isMultipart(c) {
		parsed, err := parseCreateForm(c)
		if err != nil {
			response.BadRequest(c, err.Error())
			return
		}
		req = *parsed
	} else {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, "Invalid request body")
			return
		}
	}

	if valid, msg := req.Validate(); !valid {
		response.BadRequest(c, msg)
		return
	}

	product, err := h.productService.Create(c.Request.Context(), &req)
	if err != nil {
		response.InternalError(c, "Failed to create product", err)
		return
	}

	response.Created(c, "Product created", product)
}

// Update handles PUT /api/admin/products/:id - partially updates a product
func (h *ProductHandler) Update(c *gin.Context) {
	id := c.Param("id")

	var req dto.UpdateProductRequest

	if isMultipart(c) {
		parsed, err := parseUpdateForm(c)
		if err != nil {
			response.BadRequest(c, err.Error())
			return
		}
		req = *parsed
	} else {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, "Invalid request body")
			return
		}
	}

	if valid, msg := req.Validate(); !valid {
		response.BadRequest(c, msg)
		return
	}

	product, err := h.productService.Update(c.Request.Context(), id, &req)
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			response.NotFound(c, "Product not found")
			return
		}
		response.InternalError(c, "Failed to update product", err)
		return
	}

	response.OK(c, "Product updated", product)
}

// Delete handles DELETE /api/admin/products/:id - removes a product
func (h *ProductHandler) Delete(c *gin.Context) {
	id := c.Param("id")

	if err := h.productService.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			response.NotFound(c, "Product not found")
			return
		}
		response.InternalError(c, "Failed to delete product", err)
		return
	}

	response.OK(c, "Product deleted", gin.H{"id": id})
}

func isMultipart(c *gin.Context) bool {
	return strings.HasPrefix(c.ContentType(), "multipart/form-data")
}

func parseCreateForm(c *gin.Context) (*dto.CreateProductRequest, error) {
	req := &dto.CreateProductRequest{
		Name:        c.PostForm("name"),
		Description: c.PostForm("description"),
		Category:    c.PostForm("category"),
	}

	if v, ok := c.GetPostForm("price"); ok {
		price, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid price: %s", v)
		}
		req.Price = &price
	}
	if v, ok := c.GetPostForm("stock"); ok {
		stock, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid stock: %s", v)
		}
		req.Stock = &stock
	}
	if v, ok := c.GetPostForm("isPromotion"); ok {
		req.IsPromotion = dto.ParseFlexBool(v)
	}

	image, err := readImageFile(c)
	if err != nil {
		return nil, err
	}
	req.Image = image

	return req, nil
}

func parseUpdateForm(c *gin.Context) (*dto.UpdateProductRequest, error) {
	req := &dto.UpdateProductRequest{}

	if v, ok := c.GetPostForm("name"); ok {
		req.Name = &v
	}
	if v, ok := c.GetPostForm("description"); ok {
		req.Description = &v
	}
	if v, ok := c.GetPostForm("category"); ok {
		req.Category = &v
	}
	if v, ok := c.GetPostForm("price"); ok {
		price, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid price: %s", v)
		}
		req.Price = &price
	}
	if v, ok := c.GetPostForm("stock"); ok {
		stock, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid stock: %s", v)
		}
		req.Stock = &stock
	}
	if v, ok := c.GetPostForm("isPromotion"); ok {
		promo := dto.ParseFlexBool(v)
		req.IsPromotion = &promo
	}

	image, err := readImageFile(c)
	if err != nil {
		return nil, err
	}
	req.Image = image

	return req, nil
}

// readImageFile reads the optional "image" part of a multipart form
func readImageFile(c *gin.Context) (*dto.ImageUpload, error) {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
		return nil, fmt.Errorf("invalid image upload")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, fmt.Errorf("invalid image upload")
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("invalid image upload")
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}

	return &dto.ImageUpload{
		Data:        data,
		ContentType: contentType,
	}, nil
}
