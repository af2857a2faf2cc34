package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"hoainiem-portal/internal/domain"
)

// PostDetailResult is the body of GET /post-detail/{slug}. Only Code 200
// carries an article.
type PostDetailResult struct {
	Code   int
	Detail domain.PostDetail
}

// PostClient calls the article endpoints
type PostClient interface {
	Detail(ctx context.Context, slug string) (*PostDetailResult, error)
	CategoryPosts(ctx context.Context, slug string, page int) (*domain.CategoryPage, error)
	Latest(ctx context.Context) ([]domain.PostSummary, error)
	NewsDetail(ctx context.Context, token, userID string) (*domain.NewsDraft, error)
	UpdateNews(ctx context.Context, token, userID string, form domain.NewsForm, image *Upload) (string, error)
}

type postClient struct {
	api *APIClient
}

// NewPostClient creates a PostClient
func NewPostClient(api *APIClient) PostClient {
	return &postClient{api: api}
}

func (c *postClient) Detail(ctx context.Context, slug string) (*PostDetailResult, error) {
	var out envelope[domain.PostDetail]
	path := "/post-detail/" + url.PathEscape(slug)
	if err := c.api.Do(ctx, Request{Method: http.MethodGet, Path: path}, &out); err != nil {
		return nil, err
	}
	return &PostDetailResult{Code: out.Code, Detail: out.Data}, nil
}

func (c *postClient) CategoryPosts(ctx context.Context, slug string, page int) (*domain.CategoryPage, error) {
	var out envelope[domain.CategoryPage]
	req := Request{
		Method: http.MethodGet,
		Path:   fmt.Sprintf("/categories/%s/posts", url.PathEscape(slug)),
		Query:  url.Values{"page": []string{strconv.Itoa(page)}},
	}
	if err := c.api.Do(ctx, req, &out); err != nil {
		return nil, err
	}
	out.Data.Slug = slug
	return &out.Data, nil
}

func (c *postClient) Latest(ctx context.Context) ([]domain.PostSummary, error) {
	var out envelope[[]domain.PostSummary]
	if err := c.api.Do(ctx, Request{Method: http.MethodGet, Path: "/latest-post"}, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

func (c *postClient) NewsDetail(ctx context.Context, token, userID string) (*domain.NewsDraft, error) {
	var out envelope[domain.NewsDraft]
	path := "/news/detail/" + url.PathEscape(userID)
	if err := c.api.Do(ctx, Request{Method: http.MethodGet, Path: path, Token: token}, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

// UpdateNews posts the form as multipart. With an image the file is sent in the
// "image" part; without one the form's Image value (an uploaded URL) is sent as
// "image_url".
func (c *postClient) UpdateNews(ctx context.Context, token, userID string, form domain.NewsForm, image *Upload) (string, error) {
	fields := map[string]string{
		"category":     form.Category,
		"release_date": form.ReleaseDate,
		"title":        form.Title,
		"short_title":  form.ShortTitle,
		"description":  form.Description,
		"tags":         form.Tags,
	}
	if image == nil && form.Image != "" {
		fields["image_url"] = form.Image
	}

	var out struct {
		Message string `json:"message"`
	}
	req := Request{
		Method: http.MethodPost,
		Path:   "/news/update/" + url.PathEscape(userID),
		Form:   &MultipartForm{Fields: fields, FileField: "image", File: image},
		Token:  token,
	}
	if err := c.api.Do(ctx, req, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}
