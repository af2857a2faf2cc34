package client

import (
	"context"
	"fmt"
	"net/http"

	"hoainiem-portal/internal/domain"
)

// CommentList is the body of GET /posts/{id}/comments
type CommentList struct {
	TotalComments int              `json:"total_comments"`
	Comments      []domain.Comment `json:"comments"`
}

// LikeResult is the body of POST /comments/{id}/like
type LikeResult struct {
	TotalLikes    int  `json:"total_likes"`
	IsLikedByUser bool `json:"isLikedByUser"`
}

// CommentClient calls the comment endpoints. Every call needs a bearer token.
type CommentClient interface {
	List(ctx context.Context, token string, postID int64) (*CommentList, error)
	Create(ctx context.Context, token string, postID int64, content string) (*domain.Comment, error)
	Reply(ctx context.Context, token string, commentID int64, content string) (*domain.Comment, error)
	Like(ctx context.Context, token string, commentID int64) (*LikeResult, error)
}

type commentClient struct {
	api *APIClient
}

// NewCommentClient creates a CommentClient
func NewCommentClient(api *APIClient) CommentClient {
	return &commentClient{api: api}
}

// CommentsPath is the platform path of a post's comment list
func CommentsPath(postID int64) string {
	return fmt.Sprintf("/posts/%d/comments", postID)
}

func (c *commentClient) List(ctx context.Context, token string, postID int64) (*CommentList, error) {
	var out CommentList
	if err := c.api.Do(ctx, Request{Method: http.MethodGet, Path: CommentsPath(postID), Token: token}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *commentClient) Create(ctx context.Context, token string, postID int64, content string) (*domain.Comment, error) {
	body := struct {
		ID      int64  `json:"id"`
		Content string `json:"content"`
	}{ID: postID, Content: content}

	var out domain.Comment
	if err := c.api.Do(ctx, Request{Method: http.MethodPost, Path: "/comments", Body: body, Token: token}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *commentClient) Reply(ctx context.Context, token string, commentID int64, content string) (*domain.Comment, error) {
	body := struct {
		Content string `json:"content"`
	}{Content: content}

	var out domain.Comment
	path := fmt.Sprintf("/comments/%d/reply", commentID)
	if err := c.api.Do(ctx, Request{Method: http.MethodPost, Path: path, Body: body, Token: token}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *commentClient) Like(ctx context.Context, token string, commentID int64) (*LikeResult, error) {
	var out LikeResult
	path := fmt.Sprintf("/comments/%d/like", commentID)
	if err := c.api.Do(ctx, Request{Method: http.MethodPost, Path: path, Body: struct{}{}, Token: token}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
