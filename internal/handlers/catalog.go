package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/volunteerhub/backend/internal/services"
	"github.com/volunteerhub/backend/pkg/response"
)

// CatalogHandler serves search and the public reference data.
type CatalogHandler struct {
	searchService    *services.SearchService
	referenceService *services.ReferenceService
}

func NewCatalogHandler(searchService *services.SearchService, referenceService *services.ReferenceService) *CatalogHandler {
	return &CatalogHandler{
		searchService:    searchService,
		referenceService: referenceService,
	}
}

// Search looks up approved NGOs, published events and articles
// GET /api/search?q=
func (h *CatalogHandler) Search(c *gin.Context) {
	result, err := h.searchService.Search(c.Query("q"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// GET /api/cities
func (h *CatalogHandler) Cities(c *gin.Context) {
	cities, err := h.referenceService.Cities(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, cities)
}

// GET /api/categories
func (h *CatalogHandler) Categories(c *gin.Context) {
	categories, err := h.referenceService.Categories(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, categories)
}

// Map returns coordinates of NGOs and upcoming events
// GET /api/map?city=
func (h *CatalogHandler) Map(c *gin.Context) {
	data, err := h.referenceService.MapData(c.Query("city"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, data)
}
