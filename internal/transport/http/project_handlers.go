package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/trinetra/chatsim-server/internal/catalog"
)

// ProjectHandlers serves the read-only project catalog.
type ProjectHandlers struct {
	catalog *catalog.Catalog
	log     *zerolog.Logger
}

// NewProjectHandlers creates project handlers.
func NewProjectHandlers(c *catalog.Catalog, logger *zerolog.Logger) *ProjectHandlers {
	return &ProjectHandlers{catalog: c, log: logger}
}

// ProjectListResponse is the body of GET /api/projects.
type ProjectListResponse struct {
	Projects   []catalog.Project `json:"projects"`
	Categories []string          `json:"categories"`
}

// List returns projects, optionally filtered.
// GET /api/projects?category=&featured=true
func (h *ProjectHandlers) List(c *gin.Context) {
	filter := catalog.Filter{Category: c.Query("category")}
	if raw := c.Query("featured"); raw != "" {
		featured, err := strconv.ParseBool(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "featured must be a boolean"})
			return
		}
		filter.FeaturedOnly = featured
	}

	c.JSON(http.StatusOK, ProjectListResponse{
		Projects:   h.catalog.List(filter),
		Categories: h.catalog.Categories(),
	})
}

// Get returns one project.
// GET /api/projects/:id
func (h *ProjectHandlers) Get(c *gin.Context) {
	p, err := h.catalog.Get(c.Param("id"))
	if err != nil {
		if errors.Is(err, catalog.ErrProjectNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "project not found"})
			return
		}
		h.log.Error().Err(err).Msg("get project")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}
	c.JSON(http.StatusOK, p)
}
