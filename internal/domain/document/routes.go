package document

import "github.com/gin-gonic/gin"

// RegisterRoutes registers document routes under the admin-protected group.
func RegisterRoutes(r *gin.RouterGroup, h *Handler) {
	docs := r.Group("/applications/:id/documents")
	{
		docs.GET("", h.List)
		docs.POST("/:slot", h.Upload)
		docs.DELETE("/:slot", h.Delete)
	}
}
