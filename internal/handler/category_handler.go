package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"hoainiem-portal/internal/response"
	"hoainiem-portal/internal/service"
)

// CategoryHandler serves the navigation and listing pages
type CategoryHandler struct {
	categoryService service.CategoryService
	metadataService service.MetadataService
	feedService     service.FeedService
	logger          *zap.Logger
}

func NewCategoryHandler(categoryService service.CategoryService, metadataService service.MetadataService, feedService service.FeedService, logger *zap.Logger) *CategoryHandler {
	return &CategoryHandler{
		categoryService: categoryService,
		metadataService: metadataService,
		feedService:     feedService,
		logger:          logger,
	}
}

// Menu godoc
// @Summary      Category menu
// @Description  Returns the navigation tree, top-level entries in menu order
// @Tags         categories
// @Produce      json
// @Success      200 {object} response.SuccessResponse{data=[]domain.MenuNode}
// @Failure      502 {object} response.ErrorResponse
// @Router       /categories/menu [get]
func (h *CategoryHandler) Menu(c *gin.Context) {
	menu, err := h.categoryService.Menu(c.Request.Context())
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, menu)
}

// Sidebar godoc
// @Summary      Sidebar categories
// @Tags         categories
// @Produce      json
// @Success      200 {object} response.SuccessResponse{data=[]domain.SidebarCategory}
// @Failure      502 {object} response.ErrorResponse
// @Router       /categories/sidebar [get]
func (h *CategoryHandler) Sidebar(c *gin.Context) {
	sidebar, err := h.categoryService.Sidebar(c.Request.Context())
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, sidebar)
}

// CategoryPosts godoc
// @Summary      Category listing
// @Description  Returns one page of posts of a category
// @Tags         categories
// @Produce      json
// @Param        slug path string true "Category slug"
// @Param        page query int false "Page number, defaults to 1"
// @Success      200 {object} response.SuccessResponse{data=domain.CategoryPage}
// @Failure      400 {object} response.ErrorResponse "Invalid page"
// @Failure      404 {object} response.ErrorResponse
// @Router       /categories/{slug}/posts [get]
func (h *CategoryHandler) CategoryPosts(c *gin.Context) {
	page := 1
	if raw := c.Query("page"); raw != "" {
		p, err := strconv.Atoi(raw)
		if err != nil {
			response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid page")
			return
		}
		page = p
	}

	result, err := h.feedService.CategoryPage(c.Request.Context(), c.Param("slug"), page)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, result)
}

// Latest godoc
// @Summary      Latest posts
// @Tags         posts
// @Produce      json
// @Success      200 {object} response.SuccessResponse{data=[]domain.PostSummary}
// @Failure      502 {object} response.ErrorResponse
// @Router       /posts/latest [get]
func (h *CategoryHandler) Latest(c *gin.Context) {
	posts, err := h.feedService.Latest(c.Request.Context())
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, posts)
}

// Metadata godoc
// @Summary      Site metadata
// @Description  Returns page metadata. The favicon carries a cache busting query.
// @Tags         metadata
// @Produce      json
// @Param        topic query string false "Page topic"
// @Success      200 {object} response.SuccessResponse{data=domain.SiteMetadata}
// @Failure      502 {object} response.ErrorResponse
// @Router       /metadata [get]
func (h *CategoryHandler) Metadata(c *gin.Context) {
	meta, err := h.metadataService.Site(c.Request.Context(), c.Query("topic"))
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, meta)
}
