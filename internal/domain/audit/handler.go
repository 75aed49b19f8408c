package audit

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"passportdesk/internal/pkg/response"
)

// Handler serves the audit trail to the admin console.
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// entryDTO is the read-side shape: details come back structured when they
// parse, or as the raw string when they do not.
type entryDTO struct {
	ID        string    `json:"id"`
	ActorID   int64     `json:"actor_id"`
	ActorName string    `json:"actor_name"`
	Action    string    `json:"action"`
	SubjectID string    `json:"subject_id,omitempty"`
	Details   any       `json:"details,omitempty"`
	IsAdmin   bool      `json:"is_admin"`
	IPAddress string    `json:"ip_address,omitempty"`
	UserAgent string    `json:"user_agent,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func toDTO(l Log) entryDTO {
	return entryDTO{
		ID:        l.ID,
		ActorID:   l.ActorID,
		ActorName: l.ActorName,
		Action:    l.Action,
		SubjectID: l.SubjectID,
		Details:   ParseDetails(l.Details),
		IsAdmin:   l.IsAdmin,
		IPAddress: l.IPAddress,
		UserAgent: l.UserAgent,
		CreatedAt: l.CreatedAt,
	}
}

// List godoc
// @Summary List audit entries with filters and pagination
// @Tags Audit
// @Produce json
// @Security BearerAuth
// @Param range query string false "all|today|yesterday|this-week|this-month"
// @Param actor query string false "all|admin|staff"
// @Param category query string false "all|login|review|status|document|settings"
// @Param q query string false "free-text search"
// @Param page query int false "page (1-based)"
// @Param page_size query int false "page size"
// @Success 200 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /audit [get]
func (h *Handler) List(c *gin.Context) {
	f := Filters{
		DateRange: c.DefaultQuery("range", RangeAll),
		ActorKind: c.DefaultQuery("actor", ActorAll),
		Category:  c.DefaultQuery("category", CategoryAll),
		Search:    c.Query("q"),
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", strconv.Itoa(DefaultPageSize)))

	res, err := h.service.Query(c.Request.Context(), f, page, pageSize)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "AUDIT_QUERY_FAILED", "failed to load audit trail")
		return
	}

	entries := make([]entryDTO, 0, len(res.Records))
	for _, rec := range res.Records {
		entries = append(entries, toDTO(rec))
	}
	response.Success(c, http.StatusOK, gin.H{
		"entries":       entries,
		"total":         res.Total,
		"page":          res.Page,
		"page_size":     res.PageSize,
		"authoritative": res.Authoritative,
	})
}
