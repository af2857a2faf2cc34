package dto

import "hoainiem-portal/internal/domain"

// AddCommentRequest represents the request to add a top-level comment
// @Description Blank or whitespace-only content is accepted and ignored
type AddCommentRequest struct {
	Content string `json:"content" example:"Bài viết hay quá"`
}

// ReplyDraftRequest represents the request to store the reply draft of a comment
type ReplyDraftRequest struct {
	Text string `json:"text" example:"Cảm ơn bạn"`
}

// LikeRequest represents the request to toggle a like
// @Description parentId is required when isReply is true
type LikeRequest struct {
	IsReply  bool  `json:"isReply" example:"false"`
	ParentID int64 `json:"parentId,omitempty" example:"5"`
}

// ReplyResponse represents a reply in a thread view
type ReplyResponse struct {
	CommentID   int64  `json:"commentId" example:"7"`
	ParentID    int64  `json:"parentId" example:"5"`
	Author      string `json:"author" example:"Nguyễn Văn An"`
	Content     string `json:"content"`
	CreatedAt   string `json:"createdAt" example:"2 phút trước"`
	Likes       int    `json:"likes" example:"3"`
	LikedByUser bool   `json:"likedByUser"`
}

// CommentResponse represents a top-level comment in a thread view, with its
// reply box state
type CommentResponse struct {
	CommentID      int64           `json:"commentId" example:"5"`
	Author         string          `json:"author" example:"Nguyễn Văn An"`
	Content        string          `json:"content"`
	CreatedAt      string          `json:"createdAt" example:"1 giờ trước"`
	Likes          int             `json:"likes" example:"10"`
	LikedByUser    bool            `json:"likedByUser"`
	ShowReplyInput bool            `json:"showReplyInput"`
	ReplyText      string          `json:"replyText"`
	Replies        []ReplyResponse `json:"replies"`
}

// ThreadResponse represents the comment thread of a post
type ThreadResponse struct {
	PostID   int64             `json:"postId" example:"42"`
	Total    int               `json:"total" example:"12"`
	Comments []CommentResponse `json:"comments"`
}

// NewThreadResponse converts a thread snapshot to its view
func NewThreadResponse(t domain.Thread) ThreadResponse {
	resp := ThreadResponse{
		PostID:   t.PostID,
		Total:    t.Total,
		Comments: make([]CommentResponse, 0, len(t.Comments)),
	}
	for _, e := range t.Comments {
		c := CommentResponse{
			CommentID:      e.ID,
			Author:         e.AuthorName(),
			Content:        e.Content,
			CreatedAt:      e.CreatedAtHuman,
			Likes:          e.Likes,
			LikedByUser:    e.LikedByUser,
			ShowReplyInput: e.ReplyBoxOpen,
			ReplyText:      e.Draft,
			Replies:        make([]ReplyResponse, 0, len(e.Replies)),
		}
		for _, r := range e.Replies {
			c.Replies = append(c.Replies, ReplyResponse{
				CommentID:   r.ID,
				ParentID:    e.ID,
				Author:      r.AuthorName(),
				Content:     r.Content,
				CreatedAt:   r.CreatedAtHuman,
				Likes:       r.Likes,
				LikedByUser: r.LikedByUser,
			})
		}
		resp.Comments = append(resp.Comments, c)
	}
	return resp
}
