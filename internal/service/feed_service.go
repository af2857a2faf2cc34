package service

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"hoainiem-portal/internal/client"
	"hoainiem-portal/internal/domain"
)

// FeedService opens article feeds and lists posts
type FeedService interface {
	// Open loads the article of slug and starts a feed over its related posts
	Open(ctx context.Context, slug string) (*ArticleFeed, error)
	Feed(id string) (*ArticleFeed, error)
	Close(id string)
	// Sweep closes the feeds not used for idle and returns how many
	Sweep(idle time.Duration) int
	CategoryPage(ctx context.Context, slug string, page int) (*domain.CategoryPage, error)
	Latest(ctx context.Context) ([]domain.PostSummary, error)
}

type feedServiceImpl struct {
	posts  client.PostClient
	logger *zap.Logger
	now    func() time.Time

	mu    sync.RWMutex
	feeds map[string]*ArticleFeed
}

// NewFeedService creates a new FeedService
func NewFeedService(posts client.PostClient, logger *zap.Logger) FeedService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &feedServiceImpl{
		posts:  posts,
		logger: logger,
		now:    time.Now,
		feeds:  make(map[string]*ArticleFeed),
	}
}

func (s *feedServiceImpl) Open(ctx context.Context, slug string) (*ArticleFeed, error) {
	feed := &ArticleFeed{
		ID:     uuid.New().String(),
		posts:  s.posts,
		logger: s.logger,
	}
	if _, err := feed.fetch(ctx, slug); err != nil {
		return nil, err
	}
	feed.used.Store(s.now().UnixNano())

	s.mu.Lock()
	s.feeds[feed.ID] = feed
	s.mu.Unlock()
	return feed, nil
}

func (s *feedServiceImpl) Feed(id string) (*ArticleFeed, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	feed, ok := s.feeds[id]
	if !ok {
		return nil, ErrFeedNotFound
	}
	feed.used.Store(s.now().UnixNano())
	return feed, nil
}

func (s *feedServiceImpl) Close(id string) {
	s.mu.Lock()
	delete(s.feeds, id)
	s.mu.Unlock()
}

func (s *feedServiceImpl) Sweep(idle time.Duration) int {
	cutoff := s.now().Add(-idle).UnixNano()

	s.mu.Lock()
	defer s.mu.Unlock()
	closed := 0
	for id, feed := range s.feeds {
		if feed.used.Load() < cutoff {
			delete(s.feeds, id)
			closed++
		}
	}
	return closed
}

func (s *feedServiceImpl) CategoryPage(ctx context.Context, slug string, page int) (*domain.CategoryPage, error) {
	if page < 1 {
		page = 1
	}
	return s.posts.CategoryPosts(ctx, slug, page)
}

func (s *feedServiceImpl) Latest(ctx context.Context) ([]domain.PostSummary, error) {
	return s.posts.Latest(ctx)
}

// ArticleFeed is an infinite article reader: the first article's related
// posts are loaded one by one as the reader reaches the end.
type ArticleFeed struct {
	ID string

	posts  client.PostClient
	logger *zap.Logger
	// used is the unix nano time of the last lookup
	used atomic.Int64

	mu       sync.Mutex
	loading  bool
	page     int
	articles []domain.PostDetail
	related  []domain.RelatedPost
}

// FeedState is a copy of a feed's progress
type FeedState struct {
	Page     int
	HasMore  bool
	Articles []domain.PostDetail
	Related  []domain.RelatedPost
}

// State returns a copy of the feed's progress
func (f *ArticleFeed) State() FeedState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return FeedState{
		Page:     f.page,
		HasMore:  f.hasMoreLocked(),
		Articles: append([]domain.PostDetail(nil), f.articles...),
		Related:  append([]domain.RelatedPost(nil), f.related...),
	}
}

func (f *ArticleFeed) hasMoreLocked() bool {
	return f.page < len(f.related)+1
}

// LoadNext loads the related post at the current page. It returns
// ErrFeedExhausted once every related post is loaded and ErrFeedBusy while
// another load runs.
func (f *ArticleFeed) LoadNext(ctx context.Context) (domain.PostDetail, error) {
	return f.fetch(ctx, "")
}

// fetch loads slug, or the next related post when slug is empty
func (f *ArticleFeed) fetch(ctx context.Context, slug string) (domain.PostDetail, error) {
	f.mu.Lock()
	if f.loading {
		f.mu.Unlock()
		return domain.PostDetail{}, ErrFeedBusy
	}
	if slug == "" {
		if f.page == 0 || !f.hasMoreLocked() {
			f.mu.Unlock()
			return domain.PostDetail{}, ErrFeedExhausted
		}
		slug = f.related[f.page-1].EncodedTitle
	}
	f.loading = true
	f.mu.Unlock()

	res, err := f.posts.Detail(ctx, slug)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.loading = false

	if err != nil {
		f.logger.Error("Failed to load article", zap.String("slug", slug), zap.Error(err))
		return domain.PostDetail{}, err
	}
	if res.Code != http.StatusOK {
		f.logger.Warn("Article unavailable", zap.String("slug", slug), zap.Int("code", res.Code))
		return domain.PostDetail{}, ErrArticleNotFound
	}

	if f.page == 0 {
		f.related = append([]domain.RelatedPost(nil), res.Detail.RelatedPosts...)
	}
	f.articles = append(f.articles, res.Detail)
	f.page++
	return res.Detail, nil
}
