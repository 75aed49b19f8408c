package storage

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// DownloadHandler redeems a timed access token and streams the object.
// This is the endpoint the DiskStore's issued URLs point at.
func DownloadHandler(store *DiskStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		absPath, err := store.Redeem(c.Param("token"))
		if err != nil {
			switch {
			case errors.Is(err, ErrExpiredAccess):
				c.JSON(http.StatusGone, gin.H{"success": false, "error": "access credential expired"})
			default:
				c.JSON(http.StatusForbidden, gin.H{"success": false, "error": "invalid access credential"})
			}
			return
		}
		c.File(absPath)
	}
}
