package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"hoainiem-portal/internal/domain"
)

func newTestAPI(t *testing.T, handler http.Handler) *APIClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	api, err := NewAPIClient(srv.URL+"/", 0, zap.NewNop(), nil)
	require.NoError(t, err)
	return api
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func TestAPIClient_Headers(t *testing.T) {
	var got http.Header
	api := newTestAPI(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		writeJSON(w, http.StatusOK, map[string]interface{}{"total_comments": 0, "comments": []interface{}{}})
	}))

	_, err := NewCommentClient(api).List(context.Background(), "tok", 5)
	require.NoError(t, err)

	assert.Equal(t, "Bearer tok", got.Get("Authorization"))
	assert.Equal(t, "application/json", got.Get("Accept"))
	assert.NotEmpty(t, got.Get("X-Request-ID"))
	assert.Empty(t, got.Get("X-CSRF-TOKEN"))
}

func TestAPIClient_NoTokenNoAuthorizationHeader(t *testing.T) {
	var auth string
	api := newTestAPI(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		writeJSON(w, http.StatusOK, []interface{}{})
	}))

	_, err := NewCategoryClient(api).Menu(context.Background())
	require.NoError(t, err)
	assert.Empty(t, auth)
}

func TestAPIClient_ErrorEnvelope(t *testing.T) {
	api := newTestAPI(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
			"message": "The given data was invalid.",
			"data":    "Email không tồn tại",
		})
	}))

	_, err := NewCommentClient(api).Create(context.Background(), "tok", 1, "hi")
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnprocessableEntity, apiErr.StatusCode)
	assert.Equal(t, "The given data was invalid.", apiErr.Message)
	assert.Equal(t, "Email không tồn tại", apiErr.UserMessage())
	assert.Equal(t, http.StatusUnprocessableEntity, StatusCode(err))
}

func TestAPIError_UserMessageFallsBackToMessage(t *testing.T) {
	apiErr := newAPIError(http.StatusBadRequest, []byte(`{"message":"bad","data":{"email":["taken"]}}`))
	assert.Equal(t, "bad", apiErr.UserMessage())

	apiErr = newAPIError(http.StatusBadGateway, []byte(`<html>`))
	assert.Equal(t, http.StatusText(http.StatusBadGateway), apiErr.Message)

	assert.Equal(t, 0, StatusCode(errors.New("plain")))
}

func TestAPIClient_CSRFTokenFetchedOnceAndReset(t *testing.T) {
	var (
		csrfCalls  int32
		loginCalls int32
	)
	mux := http.NewServeMux()
	mux.HandleFunc("/csrf-token", func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&csrfCalls, 1)
		http.SetCookie(w, &http.Cookie{Name: "XSRF-SESSION", Value: "s", Path: "/"})
		if n == 1 {
			writeJSON(w, http.StatusOK, map[string]string{"csrf_token": "first"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"csrfToken": "second"})
	})
	mux.HandleFunc("/login", func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&loginCalls, 1)
		_, err := r.Cookie("XSRF-SESSION")
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"message": "no session cookie"})
			return
		}
		switch n {
		case 1:
			assert.Equal(t, "first", r.Header.Get("X-CSRF-TOKEN"))
			writeJSON(w, http.StatusOK, map[string]interface{}{"access_token": "jwt", "user_id": 12})
		case 2:
			writeJSON(w, 419, map[string]string{"message": "CSRF token mismatch."})
		default:
			assert.Equal(t, "second", r.Header.Get("X-CSRF-TOKEN"))
			writeJSON(w, http.StatusOK, map[string]interface{}{"access_token": "jwt2", "user_id": "13"})
		}
	})
	api := newTestAPI(t, mux)
	auth := NewAuthClient(api)
	ctx := context.Background()
	req := domain.LoginRequest{Email: "a@b.vn", Password: "secret"}

	res, err := auth.Login(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, "jwt", res.AccessToken)
	assert.Equal(t, FlexibleID("12"), res.UserID)

	_, err = auth.Login(ctx, req)
	assert.Equal(t, 419, StatusCode(err))
	assert.Equal(t, int32(1), atomic.LoadInt32(&csrfCalls), "token reused until a mismatch")

	res, err = auth.Login(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, FlexibleID("13"), res.UserID)
	assert.Equal(t, int32(2), atomic.LoadInt32(&csrfCalls))
}

func TestAPIClient_MissingCSRFToken(t *testing.T) {
	api := newTestAPI(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{})
	}))

	_, err := NewAuthClient(api).ForgotPassword(context.Background(), "a@b.vn")
	assert.ErrorIs(t, err, ErrNoCSRFToken)
}

func TestCommentClient_Bodies(t *testing.T) {
	var bodies = map[string]string{}
	api := newTestAPI(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		bodies[r.URL.Path] = string(b)
		switch r.URL.Path {
		case "/comments/3/like":
			writeJSON(w, http.StatusOK, map[string]interface{}{"total_likes": 4, "isLikedByUser": true})
		default:
			writeJSON(w, http.StatusOK, map[string]interface{}{"id": 9, "content": "x", "user": map[string]string{"full_name": "An"}})
		}
	}))
	c := NewCommentClient(api)
	ctx := context.Background()

	created, err := c.Create(ctx, "tok", 1, "hello")
	require.NoError(t, err)
	assert.Equal(t, int64(9), created.ID)
	assert.Equal(t, "An", created.AuthorName())
	assert.JSONEq(t, `{"id":1,"content":"hello"}`, bodies["/comments"])

	_, err = c.Reply(ctx, "tok", 3, "re")
	require.NoError(t, err)
	assert.JSONEq(t, `{"content":"re"}`, bodies["/comments/3/reply"])

	like, err := c.Like(ctx, "tok", 3)
	require.NoError(t, err)
	assert.Equal(t, 4, like.TotalLikes)
	assert.True(t, like.IsLikedByUser)
}

func TestPostClient_DetailAndCategoryPage(t *testing.T) {
	api := newTestAPI(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/post-detail/"):
			writeJSON(w, http.StatusOK, map[string]interface{}{
				"code": 200,
				"data": map[string]interface{}{
					"id":          1,
					"title":       "T",
					"relatedPost": []map[string]string{{"encode_titl": "next-slug"}},
				},
			})
		case r.URL.Path == "/categories/the-thao/posts":
			assert.Equal(t, "2", r.URL.Query().Get("page"))
			writeJSON(w, http.StatusOK, map[string]interface{}{
				"data": map[string]interface{}{"current_page": 2, "last_page": 3, "data": []map[string]interface{}{{"id": 5}}},
			})
		default:
			http.NotFound(w, r)
		}
	}))
	c := NewPostClient(api)
	ctx := context.Background()

	detail, err := c.Detail(ctx, "first-slug")
	require.NoError(t, err)
	assert.Equal(t, 200, detail.Code)
	require.Len(t, detail.Detail.RelatedPosts, 1)
	assert.Equal(t, "next-slug", detail.Detail.RelatedPosts[0].EncodedTitle)

	page, err := c.CategoryPosts(ctx, "the-thao", 2)
	require.NoError(t, err)
	assert.Equal(t, "the-thao", page.Slug)
	assert.True(t, page.HasMore())
	assert.Len(t, page.Posts, 1)
}

func TestPostClient_UpdateNewsMultipart(t *testing.T) {
	api := newTestAPI(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/news/update/12", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "Tin", r.FormValue("title"))
		assert.Equal(t, "2025-01-02", r.FormValue("release_date"))

		f, hdr, err := r.FormFile("image")
		require.NoError(t, err)
		defer f.Close()
		data, _ := io.ReadAll(f)
		assert.Equal(t, "cover.png", hdr.Filename)
		assert.Equal(t, "png-bytes", string(data))

		writeJSON(w, http.StatusOK, map[string]string{"message": "Cập nhật thành công"})
	}))

	form := domain.NewsForm{
		Category: "1", ReleaseDate: "2025-01-02", Title: "Tin", ShortTitle: "t",
		Description: "d", Image: "cover.png", Tags: "a,b",
	}
	msg, err := NewPostClient(api).UpdateNews(context.Background(), "tok", "12", form,
		&Upload{FileName: "cover.png", ContentType: "image/png", Body: strings.NewReader("png-bytes")})
	require.NoError(t, err)
	assert.Equal(t, "Cập nhật thành công", msg)
}

func TestProfileClient_SendsUploadedURLWithoutFile(t *testing.T) {
	api := newTestAPI(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "https://cdn/x.png", r.FormValue("profile_image_url"))
		_, _, err := r.FormFile("profile_image")
		assert.Error(t, err)
		writeJSON(w, http.StatusOK, map[string]string{"message": "ok"})
	}))

	form := domain.ProfileForm{Email: "a@b.vn", ProfileImage: "https://cdn/x.png"}
	_, err := NewProfileClient(api).Update(context.Background(), "tok", "7", form, nil)
	require.NoError(t, err)
}

func TestMetadataClient_Topic(t *testing.T) {
	api := newTestAPI(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "bong-da", r.URL.Query().Get("topic"))
		writeJSON(w, http.StatusOK, map[string]interface{}{"data": map[string]string{"title": "Bóng đá", "favicon": "/f.ico"}})
	}))

	meta, err := NewMetadataClient(api).Site(context.Background(), "bong-da")
	require.NoError(t, err)
	assert.Equal(t, "Bóng đá", meta.Title)
}

func TestFlexibleID(t *testing.T) {
	tests := []struct {
		in   string
		want FlexibleID
	}{
		{`12`, "12"},
		{`"abc"`, "abc"},
		{`null`, ""},
		{`1.5`, "1.5"},
	}
	for _, tt := range tests {
		var id FlexibleID
		require.NoError(t, json.Unmarshal([]byte(tt.in), &id))
		assert.Equal(t, tt.want, id)
	}
}
