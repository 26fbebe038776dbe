package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/volunteerhub/backend/internal/middleware"
	"github.com/volunteerhub/backend/internal/services"
	"github.com/volunteerhub/backend/pkg/response"
)

type ArticleHandler struct {
	articleService *services.ArticleService
}

func NewArticleHandler(articleService *services.ArticleService) *ArticleHandler {
	return &ArticleHandler{articleService: articleService}
}

// List returns knowledge base articles, newest first
// GET /api/articles
func (h *ArticleHandler) List(c *gin.Context) {
	var req services.ArticleListRequest
	if !bindQuery(c, &req) {
		return
	}

	articles, err := h.articleService.List(&req, middleware.OptionalPrincipal(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, articles)
}

// GetBySlug
// GET /api/articles/:slug
func (h *ArticleHandler) GetBySlug(c *gin.Context) {
	article, err := h.articleService.GetBySlug(c.Param("slug"), middleware.OptionalPrincipal(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, article)
}

// Create
// POST /api/articles
func (h *ArticleHandler) Create(c *gin.Context) {
	var req services.CreateArticleRequest
	if !bindJSON(c, &req) {
		return
	}

	article, err := h.articleService.Create(&req, middleware.CurrentPrincipal(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, article)
}

// Delete
// DELETE /api/articles/:id
func (h *ArticleHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.articleService.Delete(id, middleware.CurrentPrincipal(c)); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"message": "article deleted successfully"})
}
