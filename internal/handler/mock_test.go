package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"hoainiem-portal/internal/client"
	"hoainiem-portal/internal/domain"
	"hoainiem-portal/internal/response"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// MockAuthService is a mock implementation of service.AuthService
type MockAuthService struct {
	LoginFunc          func(ctx context.Context, req domain.LoginRequest) (domain.Session, error)
	RegisterFunc       func(ctx context.Context, form domain.RegisterForm) (string, error)
	ForgotPasswordFunc func(ctx context.Context, email string) (string, error)
	CheckStatusFunc    func(ctx context.Context) (bool, error)
	LogoutFunc         func(ctx context.Context) error
	CurrentSessionFunc func(ctx context.Context) (domain.Session, error)
}

func (m *MockAuthService) Login(ctx context.Context, req domain.LoginRequest) (domain.Session, error) {
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, req)
	}
	return domain.Session{Token: "tok"}, nil
}

func (m *MockAuthService) Register(ctx context.Context, form domain.RegisterForm) (string, error) {
	if m.RegisterFunc != nil {
		return m.RegisterFunc(ctx, form)
	}
	return "ok", nil
}

func (m *MockAuthService) ForgotPassword(ctx context.Context, email string) (string, error) {
	if m.ForgotPasswordFunc != nil {
		return m.ForgotPasswordFunc(ctx, email)
	}
	return "sent", nil
}

func (m *MockAuthService) CheckStatus(ctx context.Context) (bool, error) {
	if m.CheckStatusFunc != nil {
		return m.CheckStatusFunc(ctx)
	}
	return false, nil
}

func (m *MockAuthService) Logout(ctx context.Context) error {
	if m.LogoutFunc != nil {
		return m.LogoutFunc(ctx)
	}
	return nil
}

func (m *MockAuthService) CurrentSession(ctx context.Context) (domain.Session, error) {
	if m.CurrentSessionFunc != nil {
		return m.CurrentSessionFunc(ctx)
	}
	return domain.Session{}, nil
}

// MockCategoryService is a mock implementation of service.CategoryService
type MockCategoryService struct {
	MenuFunc    func(ctx context.Context) ([]domain.MenuNode, error)
	SidebarFunc func(ctx context.Context) ([]domain.SidebarCategory, error)
}

func (m *MockCategoryService) Menu(ctx context.Context) ([]domain.MenuNode, error) {
	if m.MenuFunc != nil {
		return m.MenuFunc(ctx)
	}
	return nil, nil
}

func (m *MockCategoryService) Sidebar(ctx context.Context) ([]domain.SidebarCategory, error) {
	if m.SidebarFunc != nil {
		return m.SidebarFunc(ctx)
	}
	return nil, nil
}

// MockMetadataService is a mock implementation of service.MetadataService
type MockMetadataService struct {
	SiteFunc func(ctx context.Context, topic string) (domain.SiteMetadata, error)
}

func (m *MockMetadataService) Site(ctx context.Context, topic string) (domain.SiteMetadata, error) {
	if m.SiteFunc != nil {
		return m.SiteFunc(ctx, topic)
	}
	return domain.SiteMetadata{}, nil
}

// MockPostService is a mock implementation of service.PostService
type MockPostService struct {
	DraftFunc  func(ctx context.Context) (*domain.NewsDraft, error)
	SubmitFunc func(ctx context.Context, form domain.NewsForm, image *client.Upload) (string, error)
}

func (m *MockPostService) Draft(ctx context.Context) (*domain.NewsDraft, error) {
	if m.DraftFunc != nil {
		return m.DraftFunc(ctx)
	}
	return &domain.NewsDraft{}, nil
}

func (m *MockPostService) Submit(ctx context.Context, form domain.NewsForm, image *client.Upload) (string, error) {
	if m.SubmitFunc != nil {
		return m.SubmitFunc(ctx, form, image)
	}
	return "saved", nil
}

// MockProfileService is a mock implementation of service.ProfileService
type MockProfileService struct {
	UpdateFunc func(ctx context.Context, form domain.ProfileForm, image *client.Upload) (string, error)
}

func (m *MockProfileService) Update(ctx context.Context, form domain.ProfileForm, image *client.Upload) (string, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, form, image)
	}
	return "updated", nil
}

// MockPostClient is a mock implementation of client.PostClient
type MockPostClient struct {
	DetailFunc        func(ctx context.Context, slug string) (*client.PostDetailResult, error)
	CategoryPostsFunc func(ctx context.Context, slug string, page int) (*domain.CategoryPage, error)
}

func (m *MockPostClient) Detail(ctx context.Context, slug string) (*client.PostDetailResult, error) {
	if m.DetailFunc != nil {
		return m.DetailFunc(ctx, slug)
	}
	return &client.PostDetailResult{Code: 404}, nil
}

func (m *MockPostClient) CategoryPosts(ctx context.Context, slug string, page int) (*domain.CategoryPage, error) {
	if m.CategoryPostsFunc != nil {
		return m.CategoryPostsFunc(ctx, slug, page)
	}
	return &domain.CategoryPage{Slug: slug, CurrentPage: page}, nil
}

func (m *MockPostClient) Latest(ctx context.Context) ([]domain.PostSummary, error) {
	return nil, nil
}

func (m *MockPostClient) NewsDetail(ctx context.Context, token, userID string) (*domain.NewsDraft, error) {
	return &domain.NewsDraft{}, nil
}

func (m *MockPostClient) UpdateNews(ctx context.Context, token, userID string, form domain.NewsForm, image *client.Upload) (string, error) {
	return "", nil
}

// MockCommentClient is a mock implementation of client.CommentClient
type MockCommentClient struct {
	ListFunc   func(ctx context.Context, token string, postID int64) (*client.CommentList, error)
	CreateFunc func(ctx context.Context, token string, postID int64, content string) (*domain.Comment, error)
	ReplyFunc  func(ctx context.Context, token string, commentID int64, content string) (*domain.Comment, error)
	LikeFunc   func(ctx context.Context, token string, commentID int64) (*client.LikeResult, error)
}

func (m *MockCommentClient) List(ctx context.Context, token string, postID int64) (*client.CommentList, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, token, postID)
	}
	return &client.CommentList{}, nil
}

func (m *MockCommentClient) Create(ctx context.Context, token string, postID int64, content string) (*domain.Comment, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, token, postID, content)
	}
	c := domain.NewTopLevelComment(100, "Tester", content)
	return &c, nil
}

func (m *MockCommentClient) Reply(ctx context.Context, token string, commentID int64, content string) (*domain.Comment, error) {
	if m.ReplyFunc != nil {
		return m.ReplyFunc(ctx, token, commentID, content)
	}
	r := domain.NewReply(200, commentID, "Tester", content)
	return &r, nil
}

func (m *MockCommentClient) Like(ctx context.Context, token string, commentID int64) (*client.LikeResult, error) {
	if m.LikeFunc != nil {
		return m.LikeFunc(ctx, token, commentID)
	}
	return &client.LikeResult{TotalLikes: 1, IsLikedByUser: true}, nil
}

func performJSON(r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) response.ErrorResponse {
	t.Helper()
	var resp response.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

// decodeData unmarshals the data member of a success envelope into out
func decodeData(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	var resp struct {
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NoError(t, json.Unmarshal(resp.Data, out))
}
