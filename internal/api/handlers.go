package api

import (
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/romangod6/kb-nav/internal/models"
	"github.com/romangod6/kb-nav/internal/navigation"
	"github.com/romangod6/kb-nav/internal/storage"
	"github.com/romangod6/kb-nav/internal/utils"
)

type Handler struct {
	store  storage.Store
	policy navigation.OrderPolicy
	logger *utils.Logger
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type PaginationResponse struct {
	Data       interface{} `json:"data"`
	Page       int         `json:"page"`
	Limit      int         `json:"limit"`
	TotalCount int         `json:"total_count,omitempty"`
}

// NeighborsResponse carries the links for one article page. A null
// previous or next means the link is omitted.
type NeighborsResponse struct {
	Article  *models.ArticleLink `json:"article"`
	Previous *models.ArticleLink `json:"previous"`
	Next     *models.ArticleLink `json:"next"`
}

type TrailResponse struct {
	Category *models.Category    `json:"category"`
	Entries  []NeighborsResponse `json:"entries"`
}

func NewHandler(store storage.Store, policy navigation.OrderPolicy, logger *utils.Logger) *Handler {
	return &Handler{store: store, policy: policy, logger: logger}
}

func (h *Handler) ListArticles(c *gin.Context) {
	page, limit := getPaginationParams(c)
	offset := (page - 1) * limit

	articles, err := h.store.ListArticles(c.Request.Context(), limit, offset)
	if err != nil {
		h.logger.LogError("Failed to list articles: %v", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to fetch articles"})
		return
	}

	c.JSON(http.StatusOK, PaginationResponse{
		Data:  nonNil(articles),
		Page:  page,
		Limit: limit,
	})
}

func (h *Handler) GetArticle(c *gin.Context) {
	article, ok := h.loadArticle(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, article)
}

func (h *Handler) SearchArticles(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Search query is required"})
		return
	}

	page, limit := getPaginationParams(c)
	offset := (page - 1) * limit

	articles, err := h.store.SearchArticles(c.Request.Context(), query, limit, offset)
	if err != nil {
		h.logger.LogError("Failed to search articles for %q: %v", query, err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to search articles"})
		return
	}

	c.JSON(http.StatusOK, PaginationResponse{
		Data:  nonNil(articles),
		Page:  page,
		Limit: limit,
	})
}

// GetNeighbors resolves the previous and next article in the same category
// as the requested one.
func (h *Handler) GetNeighbors(c *gin.Context) {
	current, ok := h.loadArticle(c)
	if !ok {
		return
	}

	scope, ok := h.newScope(c)
	if !ok {
		return
	}

	n := scope.Neighbors(current)
	h.logger.LogDebug("Neighbors of %s: previous=%v next=%v", current.ID, n.Previous != nil, n.Next != nil)

	c.JSON(http.StatusOK, NeighborsResponse{
		Article:  current.Link(),
		Previous: n.Previous.Link(),
		Next:     n.Next.Link(),
	})
}

func (h *Handler) ListCategories(c *gin.Context) {
	categories, err := h.store.ListCategories(c.Request.Context())
	if err != nil {
		h.logger.LogError("Failed to list categories: %v", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to fetch categories"})
		return
	}

	if categories == nil {
		categories = []*models.Category{}
	}

	c.JSON(http.StatusOK, categories)
}

func (h *Handler) GetCategory(c *gin.Context) {
	category, ok := h.loadCategory(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, category)
}

func (h *Handler) GetArticlesByCategory(c *gin.Context) {
	categoryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid category ID"})
		return
	}

	page, limit := getPaginationParams(c)
	offset := (page - 1) * limit

	articles, err := h.store.GetArticlesByCategory(c.Request.Context(), categoryID, limit, offset)
	if err != nil {
		h.logger.LogError("Failed to list articles of category %s: %v", categoryID, err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to fetch articles"})
		return
	}

	c.JSON(http.StatusOK, PaginationResponse{
		Data:  nonNil(articles),
		Page:  page,
		Limit: limit,
	})
}

// GetCategoryTrail lists every article of a category in date order with its
// neighbours, all resolved against one scope.
func (h *Handler) GetCategoryTrail(c *gin.Context) {
	category, ok := h.loadCategory(c)
	if !ok {
		return
	}

	scope, ok := h.newScope(c)
	if !ok {
		return
	}

	entries := []NeighborsResponse{}
	for _, a := range scope.InCategory(category.ID) {
		n := scope.Neighbors(a)
		entries = append(entries, NeighborsResponse{
			Article:  a.Link(),
			Previous: n.Previous.Link(),
			Next:     n.Next.Link(),
		})
	}

	c.JSON(http.StatusOK, TrailResponse{
		Category: category,
		Entries:  entries,
	})
}

func (h *Handler) loadArticle(c *gin.Context) (*models.Article, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid article ID"})
		return nil, false
	}

	article, err := h.store.GetArticle(c.Request.Context(), id)
	if err != nil {
		h.logger.LogError("Failed to fetch article %s: %v", id, err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to fetch article"})
		return nil, false
	}

	if article == nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Article not found"})
		return nil, false
	}

	return article, true
}

func (h *Handler) loadCategory(c *gin.Context) (*models.Category, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid category ID"})
		return nil, false
	}

	category, err := h.store.GetCategory(c.Request.Context(), id)
	if err != nil {
		h.logger.LogError("Failed to fetch category %s: %v", id, err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to fetch category"})
		return nil, false
	}

	if category == nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Category not found"})
		return nil, false
	}

	return category, true
}

// newScope loads the full collection for one request.
func (h *Handler) newScope(c *gin.Context) (*navigation.Scope, bool) {
	all, err := h.store.ListArticlesByDate(c.Request.Context())
	if err != nil {
		h.logger.LogError("Failed to load article collection: %v", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to fetch articles"})
		return nil, false
	}

	scope, err := navigation.NewScope(all, h.policy)
	if errors.Is(err, navigation.ErrUnordered) {
		h.logger.LogError("Article collection rejected: %v", err)
		c.JSON(http.StatusConflict, ErrorResponse{Error: "Article collection is not in publication order"})
		return nil, false
	}
	if err != nil {
		h.logger.LogError("Failed to build navigation scope: %v", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to resolve navigation"})
		return nil, false
	}

	return scope, true
}

// Utility functions
func getPaginationParams(c *gin.Context) (page, limit int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "10"))

	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}
	// keep (page-1)*limit from overflowing
	if page > math.MaxInt/limit {
		page = math.MaxInt / limit
	}

	return page, limit
}

func nonNil(articles []*models.Article) []*models.Article {
	if articles == nil {
		return []*models.Article{}
	}
	return articles
}
