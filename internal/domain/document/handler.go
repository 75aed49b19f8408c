package document

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"passportdesk/internal/domain/application"
	"passportdesk/internal/domain/audit"
	"passportdesk/internal/pkg/response"
)

// Handler serves the per-application document operations of the admin console.
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// List godoc
// @Summary List document slots for an application
// @Tags Documents
// @Produce json
// @Security BearerAuth
// @Param id path int true "Application ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404,500 {object} map[string]interface{}
// @Router /applications/{id}/documents [get]
func (h *Handler) List(c *gin.Context) {
	appID, ok := appIDParam(c)
	if !ok {
		return
	}
	statuses, err := h.service.List(c.Request.Context(), appID)
	if err != nil {
		if errors.Is(err, application.ErrNotFound) {
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "application not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, "LIST_FAILED", "failed to list documents")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"documents": statuses})
}

// Upload godoc
// @Summary Upload a document into a slot
// @Tags Documents
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path int true "Application ID"
// @Param slot path string true "Document slot"
// @Param file formData file true "Document file (jpeg/png/gif/pdf, max 10 MiB)"
// @Success 201 {object} map[string]interface{}
// @Failure 400,404,413,502 {object} map[string]interface{}
// @Router /applications/{id}/documents/{slot} [post]
func (h *Handler) Upload(c *gin.Context) {
	appID, ok := appIDParam(c)
	if !ok {
		return
	}
	slot, ok := slotParam(c)
	if !ok {
		return
	}
	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.Error(c, http.StatusBadRequest, "NO_FILE", "no file provided")
		return
	}

	url, err := h.service.Upload(c.Request.Context(), actorFrom(c), appID, slot, fileHeader)
	if err != nil {
		h.respondUploadError(c, slot, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"slot": slot, "url": url})
}

// Delete godoc
// @Summary Delete the document stored in a slot
// @Tags Documents
// @Produce json
// @Security BearerAuth
// @Param id path int true "Application ID"
// @Param slot path string true "Document slot"
// @Success 200 {object} map[string]interface{}
// @Failure 400,404,500,502 {object} map[string]interface{}
// @Router /applications/{id}/documents/{slot} [delete]
func (h *Handler) Delete(c *gin.Context) {
	appID, ok := appIDParam(c)
	if !ok {
		return
	}
	slot, ok := slotParam(c)
	if !ok {
		return
	}

	err := h.service.Delete(c.Request.Context(), actorFrom(c), appID, slot)
	if err != nil {
		var storageErr *StorageError
		var dangling *DanglingPointerError
		switch {
		case errors.Is(err, application.ErrNotFound):
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "application not found")
		case errors.Is(err, ErrNotFound):
			response.ErrorWithDetails(c, http.StatusNotFound, "DOCUMENT_NOT_FOUND",
				"no managed document in this slot", gin.H{"slot": slot})
		case errors.As(err, &dangling):
			response.ErrorWithDetails(c, http.StatusInternalServerError, "POINTER_DANGLING",
				"document removed but pointer not cleared; operator attention required",
				gin.H{"slot": slot, "path": dangling.Path})
		case errors.As(err, &storageErr):
			response.ErrorWithDetails(c, http.StatusBadGateway, "STORAGE_ERROR",
				storageErr.Error(), gin.H{"slot": slot})
		default:
			response.Error(c, http.StatusInternalServerError, "DELETE_FAILED", "delete failed")
		}
		return
	}
	response.Success(c, http.StatusOK, gin.H{"slot": slot, "deleted": true})
}

func (h *Handler) respondUploadError(c *gin.Context, slot application.Slot, err error) {
	var valErr *ValidationError
	var storageErr *StorageError
	switch {
	case errors.Is(err, application.ErrNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "application not found")
	case errors.Is(err, ErrEmptyFile):
		response.ErrorWithDetails(c, http.StatusBadRequest, "EMPTY_FILE",
			err.Error(), gin.H{"slot": slot})
	case errors.As(err, &valErr):
		status := http.StatusBadRequest
		if valErr.Constraint == "max_size" {
			status = http.StatusRequestEntityTooLarge
		}
		response.ErrorWithDetails(c, status, "VALIDATION_ERROR", valErr.Error(), gin.H{
			"slot":       slot,
			"constraint": valErr.Constraint,
			"observed":   valErr.Observed,
			"allowed":    valErr.Allowed,
		})
	case errors.As(err, &storageErr):
		response.ErrorWithDetails(c, http.StatusBadGateway, "STORAGE_ERROR",
			storageErr.Error(), gin.H{"slot": slot})
	default:
		response.Error(c, http.StatusInternalServerError, "UPLOAD_FAILED", "upload failed")
	}
}

func appIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "invalid application ID")
		return 0, false
	}
	return id, true
}

func slotParam(c *gin.Context) (application.Slot, bool) {
	slot, ok := application.ParseSlot(c.Param("slot"))
	if !ok {
		response.Error(c, http.StatusBadRequest, "INVALID_SLOT", "unknown document slot")
		return "", false
	}
	return slot, true
}

// actorFrom reads the identity the auth middleware resolved from the token.
func actorFrom(c *gin.Context) audit.Actor {
	return audit.Actor{
		ID:        c.GetInt64("actor_id"),
		Name:      c.GetString("actor_name"),
		Admin:     c.GetBool("is_admin"),
		IP:        c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	}
}
