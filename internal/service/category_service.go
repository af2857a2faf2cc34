package service

import (
	"context"

	"go.uber.org/zap"

	"hoainiem-portal/internal/cache"
	"hoainiem-portal/internal/client"
	"hoainiem-portal/internal/domain"
)

const (
	menuCacheKey    = "/category-list"
	sidebarCacheKey = "/sidebar-categories"
)

// CategoryService serves the navigation menu and the sidebar categories
type CategoryService interface {
	Menu(ctx context.Context) ([]domain.MenuNode, error)
	Sidebar(ctx context.Context) ([]domain.SidebarCategory, error)
}

type categoryServiceImpl struct {
	api     client.CategoryClient
	menu    *cache.Store[[]domain.MenuNode]
	sidebar *cache.Store[[]domain.SidebarCategory]
	logger  *zap.Logger
}

// NewCategoryService creates a new CategoryService
func NewCategoryService(api client.CategoryClient, menu *cache.Store[[]domain.MenuNode], sidebar *cache.Store[[]domain.SidebarCategory], logger *zap.Logger) CategoryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &categoryServiceImpl{api: api, menu: menu, sidebar: sidebar, logger: logger}
}

// Menu returns the two-level menu tree, built once per fetch
func (s *categoryServiceImpl) Menu(ctx context.Context) ([]domain.MenuNode, error) {
	return s.menu.Get(ctx, menuCacheKey, func(ctx context.Context) ([]domain.MenuNode, error) {
		items, err := s.api.Menu(ctx)
		if err != nil {
			s.logger.Error("Failed to fetch category menu", zap.Error(err))
			return nil, err
		}
		return domain.BuildMenu(items), nil
	})
}

func (s *categoryServiceImpl) Sidebar(ctx context.Context) ([]domain.SidebarCategory, error) {
	return s.sidebar.Get(ctx, sidebarCacheKey, func(ctx context.Context) ([]domain.SidebarCategory, error) {
		categories, err := s.api.Sidebar(ctx)
		if err != nil {
			s.logger.Error("Failed to fetch sidebar categories", zap.Error(err))
			return nil, err
		}
		return categories, nil
	})
}
