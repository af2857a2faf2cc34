package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"hoainiem-portal/internal/client"
	"hoainiem-portal/internal/domain"
	"hoainiem-portal/internal/dto"
	"hoainiem-portal/internal/service"
)

func setupFeedRouter(posts client.PostClient) *gin.Engine {
	h := NewFeedHandler(service.NewFeedService(posts, zap.NewNop()), zap.NewNop())
	r := gin.New()
	r.POST("/feeds", h.Open)
	r.POST("/feeds/:feedId/next", h.Next)
	r.DELETE("/feeds/:feedId", h.Close)
	return r
}

func TestFeedHandler_OpenAndNext(t *testing.T) {
	posts := &MockPostClient{
		DetailFunc: func(ctx context.Context, slug string) (*client.PostDetailResult, error) {
			d := domain.PostDetail{EncodedTitle: slug, Title: slug}
			if slug == "gia-vang" {
				d.RelatedPosts = []domain.RelatedPost{{EncodedTitle: "ty-gia"}}
			}
			return &client.PostDetailResult{Code: 200, Detail: d}, nil
		},
	}
	r := setupFeedRouter(posts)

	w := performJSON(r, http.MethodPost, "/feeds", dto.OpenFeedRequest{Slug: "gia-vang"})
	require.Equal(t, http.StatusCreated, w.Code)
	var opened dto.FeedResponse
	decodeData(t, w, &opened)
	require.NotEmpty(t, opened.FeedID)
	assert.Equal(t, 1, opened.Page)
	assert.True(t, opened.HasMore)
	require.NotNil(t, opened.Article)
	assert.Equal(t, "gia-vang", opened.Article.EncodedTitle)
	assert.Len(t, opened.Related, 1)

	w = performJSON(r, http.MethodPost, "/feeds/"+opened.FeedID+"/next", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var next dto.FeedResponse
	decodeData(t, w, &next)
	assert.Equal(t, "ty-gia", next.Article.EncodedTitle)
	assert.Equal(t, 2, next.Page)
	assert.False(t, next.HasMore)
	assert.Equal(t, 2, next.Articles)

	w = performJSON(r, http.MethodPost, "/feeds/"+opened.FeedID+"/next", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = performJSON(r, http.MethodDelete, "/feeds/"+opened.FeedID, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = performJSON(r, http.MethodPost, "/feeds/"+opened.FeedID+"/next", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestFeedHandler_OpenErrors(t *testing.T) {
	r := setupFeedRouter(&MockPostClient{})

	w := performJSON(r, http.MethodPost, "/feeds", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code, "slug is required")

	w = performJSON(r, http.MethodPost, "/feeds", dto.OpenFeedRequest{Slug: "missing"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}
