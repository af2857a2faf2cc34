package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"hoainiem-portal/internal/domain"
	"hoainiem-portal/internal/dto"
	"hoainiem-portal/internal/response"
	"hoainiem-portal/internal/service"
)

type FeedHandler struct {
	feedService service.FeedService
	logger      *zap.Logger
}

func NewFeedHandler(feedService service.FeedService, logger *zap.Logger) *FeedHandler {
	return &FeedHandler{
		feedService: feedService,
		logger:      logger,
	}
}

// Open godoc
// @Summary      Open an article feed
// @Description  Loads the article and its related posts. Later articles are loaded with /feeds/{feedId}/next.
// @Tags         feeds
// @Accept       json
// @Produce      json
// @Param        request body dto.OpenFeedRequest true "Article slug"
// @Success      201 {object} response.SuccessResponse{data=dto.FeedResponse}
// @Failure      400 {object} response.ErrorResponse
// @Failure      404 {object} response.ErrorResponse "Article not found"
// @Router       /feeds [post]
func (h *FeedHandler) Open(c *gin.Context) {
	var req dto.OpenFeedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid request body")
		return
	}

	feed, err := h.feedService.Open(c.Request.Context(), req.Slug)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	state := feed.State()
	var first *domain.PostDetail
	if len(state.Articles) > 0 {
		first = &state.Articles[0]
	}
	response.SendSuccess(c, http.StatusCreated, newFeedResponse(feed.ID, state, first))
}

// Next godoc
// @Summary      Load the next article of a feed
// @Tags         feeds
// @Produce      json
// @Param        feedId path string true "Feed ID"
// @Success      200 {object} response.SuccessResponse{data=dto.FeedResponse}
// @Failure      404 {object} response.ErrorResponse "Unknown feed, missing article or no more articles"
// @Failure      409 {object} response.ErrorResponse "A load is in flight"
// @Router       /feeds/{feedId}/next [post]
func (h *FeedHandler) Next(c *gin.Context) {
	feed, err := h.feedService.Feed(c.Param("feedId"))
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	article, err := feed.LoadNext(c.Request.Context())
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, newFeedResponse(feed.ID, feed.State(), &article))
}

// Close godoc
// @Summary      Close a feed
// @Tags         feeds
// @Param        feedId path string true "Feed ID"
// @Success      204 "Closed"
// @Router       /feeds/{feedId} [delete]
func (h *FeedHandler) Close(c *gin.Context) {
	h.feedService.Close(c.Param("feedId"))
	c.Status(http.StatusNoContent)
}

func newFeedResponse(id string, state service.FeedState, article *domain.PostDetail) dto.FeedResponse {
	related := state.Related
	if related == nil {
		related = []domain.RelatedPost{}
	}
	return dto.FeedResponse{
		FeedID:   id,
		Page:     state.Page,
		HasMore:  state.HasMore,
		Article:  article,
		Related:  related,
		Articles: len(state.Articles),
	}
}
