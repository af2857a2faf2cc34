package service

import (
	"context"
	"time"

	"hoainiem-portal/internal/cache"
	"hoainiem-portal/internal/client"
	"hoainiem-portal/internal/domain"
)

// MetadataService serves site and topic metadata
type MetadataService interface {
	// Site returns the metadata of topic, or of the site when topic is empty.
	// The favicon carries a cache-buster.
	Site(ctx context.Context, topic string) (domain.SiteMetadata, error)
}

type metadataServiceImpl struct {
	api   client.MetadataClient
	store *cache.Store[domain.SiteMetadata]
	now   func() time.Time
}

// NewMetadataService creates a new MetadataService
func NewMetadataService(api client.MetadataClient, store *cache.Store[domain.SiteMetadata]) MetadataService {
	return &metadataServiceImpl{api: api, store: store, now: time.Now}
}

func (s *metadataServiceImpl) Site(ctx context.Context, topic string) (domain.SiteMetadata, error) {
	meta, err := s.store.Get(ctx, cache.Key("/metadata", topic), func(ctx context.Context) (domain.SiteMetadata, error) {
		m, err := s.api.Site(ctx, topic)
		if err != nil {
			return domain.SiteMetadata{}, err
		}
		return *m, nil
	})
	if err != nil {
		return domain.SiteMetadata{}, err
	}
	meta.Favicon = meta.FaviconURL(s.now())
	return meta, nil
}
