package client

import (
	"context"
	"net/http"
	"net/url"

	"hoainiem-portal/internal/domain"
)

// CategoryClient calls the navigation endpoints
type CategoryClient interface {
	Menu(ctx context.Context) ([]domain.MenuItem, error)
	Sidebar(ctx context.Context) ([]domain.SidebarCategory, error)
}

type categoryClient struct {
	api *APIClient
}

// NewCategoryClient creates a CategoryClient
func NewCategoryClient(api *APIClient) CategoryClient {
	return &categoryClient{api: api}
}

func (c *categoryClient) Menu(ctx context.Context) ([]domain.MenuItem, error) {
	var out []domain.MenuItem
	if err := c.api.Do(ctx, Request{Method: http.MethodGet, Path: "/category-list"}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *categoryClient) Sidebar(ctx context.Context) ([]domain.SidebarCategory, error) {
	var out []domain.SidebarCategory
	if err := c.api.Do(ctx, Request{Method: http.MethodGet, Path: "/sidebar-categories"}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// MetadataClient calls GET /metadata
type MetadataClient interface {
	// Site returns site metadata, or the metadata of topic when non-empty
	Site(ctx context.Context, topic string) (*domain.SiteMetadata, error)
}

type metadataClient struct {
	api *APIClient
}

// NewMetadataClient creates a MetadataClient
func NewMetadataClient(api *APIClient) MetadataClient {
	return &metadataClient{api: api}
}

func (c *metadataClient) Site(ctx context.Context, topic string) (*domain.SiteMetadata, error) {
	req := Request{Method: http.MethodGet, Path: "/metadata"}
	if topic != "" {
		req.Query = url.Values{"topic": []string{topic}}
	}
	var out envelope[domain.SiteMetadata]
	if err := c.api.Do(ctx, req, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}
