package service

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"hoainiem-portal/internal/auth"
	"hoainiem-portal/internal/client"
	"hoainiem-portal/internal/domain"
	"hoainiem-portal/internal/repository"
	"hoainiem-portal/internal/validation"
)

// MockCommentClient is a mock implementation of client.CommentClient
type MockCommentClient struct {
	ListFunc   func(ctx context.Context, token string, postID int64) (*client.CommentList, error)
	CreateFunc func(ctx context.Context, token string, postID int64, content string) (*domain.Comment, error)
	ReplyFunc  func(ctx context.Context, token string, commentID int64, content string) (*domain.Comment, error)
	LikeFunc   func(ctx context.Context, token string, commentID int64) (*client.LikeResult, error)

	listCalls   int32
	createCalls int32
	replyCalls  int32
	likeCalls   int32
}

func (m *MockCommentClient) List(ctx context.Context, token string, postID int64) (*client.CommentList, error) {
	atomic.AddInt32(&m.listCalls, 1)
	if m.ListFunc != nil {
		return m.ListFunc(ctx, token, postID)
	}
	return &client.CommentList{}, nil
}

func (m *MockCommentClient) Create(ctx context.Context, token string, postID int64, content string) (*domain.Comment, error) {
	atomic.AddInt32(&m.createCalls, 1)
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, token, postID, content)
	}
	c := domain.NewTopLevelComment(100, "Tester", content)
	return &c, nil
}

func (m *MockCommentClient) Reply(ctx context.Context, token string, commentID int64, content string) (*domain.Comment, error) {
	atomic.AddInt32(&m.replyCalls, 1)
	if m.ReplyFunc != nil {
		return m.ReplyFunc(ctx, token, commentID, content)
	}
	r := domain.NewReply(200, commentID, "Tester", content)
	return &r, nil
}

func (m *MockCommentClient) Like(ctx context.Context, token string, commentID int64) (*client.LikeResult, error) {
	atomic.AddInt32(&m.likeCalls, 1)
	if m.LikeFunc != nil {
		return m.LikeFunc(ctx, token, commentID)
	}
	return &client.LikeResult{TotalLikes: 1, IsLikedByUser: true}, nil
}

func (m *MockCommentClient) calls() (list, create, reply, like int) {
	return int(atomic.LoadInt32(&m.listCalls)), int(atomic.LoadInt32(&m.createCalls)),
		int(atomic.LoadInt32(&m.replyCalls)), int(atomic.LoadInt32(&m.likeCalls))
}

// MockAuthClient is a mock implementation of client.AuthClient
type MockAuthClient struct {
	LoginFunc          func(ctx context.Context, req domain.LoginRequest) (*client.LoginResult, error)
	RegisterFunc       func(ctx context.Context, form domain.RegisterForm) (string, error)
	ForgotPasswordFunc func(ctx context.Context, email string) (string, error)
	DetailsFunc        func(ctx context.Context, token string) (bool, error)

	forgotCalls  int32
	detailsCalls int32
}

func (m *MockAuthClient) Login(ctx context.Context, req domain.LoginRequest) (*client.LoginResult, error) {
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, req)
	}
	return &client.LoginResult{AccessToken: "token"}, nil
}

func (m *MockAuthClient) Register(ctx context.Context, form domain.RegisterForm) (string, error) {
	if m.RegisterFunc != nil {
		return m.RegisterFunc(ctx, form)
	}
	return "ok", nil
}

func (m *MockAuthClient) ForgotPassword(ctx context.Context, email string) (string, error) {
	atomic.AddInt32(&m.forgotCalls, 1)
	if m.ForgotPasswordFunc != nil {
		return m.ForgotPasswordFunc(ctx, email)
	}
	return "sent", nil
}

func (m *MockAuthClient) Details(ctx context.Context, token string) (bool, error) {
	atomic.AddInt32(&m.detailsCalls, 1)
	if m.DetailsFunc != nil {
		return m.DetailsFunc(ctx, token)
	}
	return true, nil
}

// MockPostClient is a mock implementation of client.PostClient
type MockPostClient struct {
	DetailFunc        func(ctx context.Context, slug string) (*client.PostDetailResult, error)
	CategoryPostsFunc func(ctx context.Context, slug string, page int) (*domain.CategoryPage, error)
	LatestFunc        func(ctx context.Context) ([]domain.PostSummary, error)
	NewsDetailFunc    func(ctx context.Context, token, userID string) (*domain.NewsDraft, error)
	UpdateNewsFunc    func(ctx context.Context, token, userID string, form domain.NewsForm, image *client.Upload) (string, error)
}

func (m *MockPostClient) Detail(ctx context.Context, slug string) (*client.PostDetailResult, error) {
	if m.DetailFunc != nil {
		return m.DetailFunc(ctx, slug)
	}
	return &client.PostDetailResult{Code: 200, Detail: domain.PostDetail{EncodedTitle: slug}}, nil
}

func (m *MockPostClient) CategoryPosts(ctx context.Context, slug string, page int) (*domain.CategoryPage, error) {
	if m.CategoryPostsFunc != nil {
		return m.CategoryPostsFunc(ctx, slug, page)
	}
	return &domain.CategoryPage{Slug: slug, CurrentPage: page}, nil
}

func (m *MockPostClient) Latest(ctx context.Context) ([]domain.PostSummary, error) {
	if m.LatestFunc != nil {
		return m.LatestFunc(ctx)
	}
	return nil, nil
}

func (m *MockPostClient) NewsDetail(ctx context.Context, token, userID string) (*domain.NewsDraft, error) {
	if m.NewsDetailFunc != nil {
		return m.NewsDetailFunc(ctx, token, userID)
	}
	return &domain.NewsDraft{}, nil
}

func (m *MockPostClient) UpdateNews(ctx context.Context, token, userID string, form domain.NewsForm, image *client.Upload) (string, error) {
	if m.UpdateNewsFunc != nil {
		return m.UpdateNewsFunc(ctx, token, userID, form, image)
	}
	return "ok", nil
}

// MockProfileClient is a mock implementation of client.ProfileClient
type MockProfileClient struct {
	UpdateFunc func(ctx context.Context, token, userID string, form domain.ProfileForm, image *client.Upload) (string, error)
}

func (m *MockProfileClient) Update(ctx context.Context, token, userID string, form domain.ProfileForm, image *client.Upload) (string, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, token, userID, form, image)
	}
	return "ok", nil
}

// MockCategoryClient is a mock implementation of client.CategoryClient
type MockCategoryClient struct {
	MenuFunc    func(ctx context.Context) ([]domain.MenuItem, error)
	SidebarFunc func(ctx context.Context) ([]domain.SidebarCategory, error)

	menuCalls int32
}

func (m *MockCategoryClient) Menu(ctx context.Context) ([]domain.MenuItem, error) {
	atomic.AddInt32(&m.menuCalls, 1)
	if m.MenuFunc != nil {
		return m.MenuFunc(ctx)
	}
	return nil, nil
}

func (m *MockCategoryClient) Sidebar(ctx context.Context) ([]domain.SidebarCategory, error) {
	if m.SidebarFunc != nil {
		return m.SidebarFunc(ctx)
	}
	return nil, nil
}

// MockMetadataClient is a mock implementation of client.MetadataClient
type MockMetadataClient struct {
	SiteFunc func(ctx context.Context, topic string) (*domain.SiteMetadata, error)
}

func (m *MockMetadataClient) Site(ctx context.Context, topic string) (*domain.SiteMetadata, error) {
	if m.SiteFunc != nil {
		return m.SiteFunc(ctx, topic)
	}
	return &domain.SiteMetadata{}, nil
}

var (
	_ client.CommentClient  = (*MockCommentClient)(nil)
	_ client.AuthClient     = (*MockAuthClient)(nil)
	_ client.PostClient     = (*MockPostClient)(nil)
	_ client.ProfileClient  = (*MockProfileClient)(nil)
	_ client.CategoryClient = (*MockCategoryClient)(nil)
	_ client.MetadataClient = (*MockMetadataClient)(nil)
)

// newTokenStore returns an in-memory token store, signed in when token is non-empty
func newTokenStore(t *testing.T, token, userID string) (auth.TokenStore, repository.KeyValueStore) {
	t.Helper()
	kv := repository.NewMemoryKeyValueStore()
	tokens := auth.NewTokenStore(kv, nil)
	if token != "" {
		require.NoError(t, tokens.Set(context.Background(), token, userID))
	}
	return tokens, kv
}

func newValidator(t *testing.T) *validation.Validator {
	t.Helper()
	v, err := validation.New("vi")
	require.NoError(t, err)
	return v
}
