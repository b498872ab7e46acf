package entries

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"lorevault/internal/sync"
	"lorevault/pkg/models"
)

type Handler struct {
	Repo *Repo
	Hub  *sync.Hub // optional; nil disables change broadcasts
}

func NewHandler(repo *Repo, hub *sync.Hub) *Handler {
	return &Handler{Repo: repo, Hub: hub}
}

// RegisterRoutes wires the entry routes. Reads are public; writes go through
// the provided admin middleware.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, requireAdmin gin.HandlerFunc) {
	rg.GET("", h.list)               // GET /api/entries
	rg.GET("/:id", h.getByID)        // GET /api/entries/:id
	rg.POST("", requireAdmin, h.create)
	rg.PUT("/:id", requireAdmin, h.update)
	rg.DELETE("/:id", requireAdmin, h.remove)
}

func (h *Handler) list(c *gin.Context) {
	items, err := h.Repo.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	if items == nil {
		items = []models.EntryDB{}
	}
	c.JSON(http.StatusOK, items)
}

func (h *Handler) getByID(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	e, err := h.Repo.GetByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "get failed"})
		return
	}
	if e == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.JSON(http.StatusOK, e)
}

type entryReq struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	URL      string `json:"url"`
	Edition  string `json:"edition"`
}

func (r entryReq) validate() string {
	if strings.TrimSpace(r.Name) == "" {
		return "name required"
	}
	if strings.TrimSpace(r.Category) == "" {
		return "category required"
	}
	if !strings.HasPrefix(r.URL, "https://") {
		return "url must be canonical https"
	}
	return ""
}

func (r entryReq) model() models.Entry {
	return models.Entry{
		Name:     strings.TrimSpace(r.Name),
		Category: strings.TrimSpace(r.Category),
		URL:      strings.TrimSpace(r.URL),
		Edition:  models.Edition(strings.TrimSpace(r.Edition)),
	}
}

func (h *Handler) create(c *gin.Context) {
	var req entryReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if msg := req.validate(); msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}

	// url is the identity key; reject duplicates up front
	if existing, _ := h.Repo.GetByURL(c.Request.Context(), req.model().URL); existing != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "url already exists"})
		return
	}

	e, err := h.Repo.Create(c.Request.Context(), req.model())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		return
	}

	h.broadcast(sync.EntryCreated, e.URL)
	c.JSON(http.StatusCreated, e)
}

func (h *Handler) update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req entryReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if msg := req.validate(); msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}

	e, err := h.Repo.Update(c.Request.Context(), id, req.model())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	if e == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	h.broadcast(sync.EntryUpdated, e.URL)
	c.JSON(http.StatusOK, e)
}

func (h *Handler) remove(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	e, err := h.Repo.GetByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "get failed"})
		return
	}
	if e == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	deleted, err := h.Repo.Delete(c.Request.Context(), id)
	if err != nil || !deleted {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}

	h.broadcast(sync.EntryDeleted, e.URL)
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

func (h *Handler) broadcast(eventType, url string) {
	if h.Hub == nil {
		return
	}
	h.Hub.BroadcastJSON(sync.NewEntryEvent(eventType, url))
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}
