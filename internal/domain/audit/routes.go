package audit

import "github.com/gin-gonic/gin"

// RegisterRoutes registers the audit trail under the admin-protected group.
func RegisterRoutes(r *gin.RouterGroup, h *Handler) {
	r.GET("/audit", h.List)
}

// RegisterFeed registers the live feed on an unprotected group: the handler
// authenticates via the token query param because websockets cannot send an
// Authorization header.
func RegisterFeed(r *gin.RouterGroup, feed *FeedHandler) {
	r.GET("/audit/feed", feed.Handle)
}
