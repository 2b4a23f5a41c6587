package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// HealthHandler handles health check endpoints
type HealthHandler struct {
	books func() int
}

// NewHealthHandler creates a new health handler.
// books reports the searchable catalog size; nil omits it.
func NewHealthHandler(books func() int) *HealthHandler {
	return &HealthHandler{books: books}
}

// Health returns the health status of the service
func (h *HealthHandler) Health(c *gin.Context) {
	body := gin.H{"status": "ok"}
	if h.books != nil {
		body["books"] = h.books()
	}
	c.JSON(http.StatusOK, body)
}
