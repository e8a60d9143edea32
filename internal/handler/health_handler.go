package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/myfirstshop/fragrance-api/pkg/database"
	"github.com/myfirstshop/fragrance-api/pkg/response"
)

// HealthHandler handles liveness and readiness requests
type HealthHandler struct {
	db *database.MongoDB
}

// NewHealthHandler creates a new HealthHandler
func NewHealthHandler(db *database.MongoDB) *HealthHandler {
	return &HealthHandler{db: db}
}

// Root handles GET / - the storefront greeting
func (h *HealthHandler) Root(c *gin.Context) {
	response.OK(c, "Fragrance shop API is running", nil)
}

// Ready handles GET /ready - verifies the database connection
func (h *HealthHandler) Ready(c *gin.Context) {
	if err := h.db.HealthCheck(c.Request.Context()); err != nil {
		response.InternalError(c, "Database unavailable", err)
		return
	}
	response.OK(c, "Ready", nil)
}
