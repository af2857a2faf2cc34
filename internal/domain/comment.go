package domain

import (
	"errors"
	"strings"
)

var (
	// ErrNestedReply is returned when a reply is attached to another reply
	ErrNestedReply = errors.New("replies cannot have replies")
	// ErrCommentNotFound is returned when a thread has no comment with the given id
	ErrCommentNotFound = errors.New("comment not found in thread")
)

// CommentKind tells top-level comments and replies apart
type CommentKind int

const (
	TopLevel CommentKind = iota
	Reply
)

func (k CommentKind) String() string {
	if k == Reply {
		return "reply"
	}
	return "top_level"
}

// Author is the display identity attached to a comment
type Author struct {
	FullName string `json:"full_name"`
}

// Comment is a comment as exchanged with the platform API.
// A comment with a ParentID is a Reply and never carries Replies of its own.
type Comment struct {
	ID             int64     `json:"id"`
	User           Author    `json:"user"`
	Content        string    `json:"content"`
	CreatedAtHuman string    `json:"created_at_human"`
	Likes          int       `json:"likes"`
	LikedByUser    bool      `json:"isLikedByUser"`
	ParentID       *int64    `json:"parent_id,omitempty"`
	Replies        []Comment `json:"replies,omitempty"`
}

// NewTopLevelComment builds a comment with no parent
func NewTopLevelComment(id int64, author, content string) Comment {
	return Comment{ID: id, User: Author{FullName: author}, Content: content}
}

// NewReply builds a reply to parentID
func NewReply(id, parentID int64, author, content string) Comment {
	pid := parentID
	return Comment{ID: id, User: Author{FullName: author}, Content: content, ParentID: &pid}
}

// Kind reports whether c is a top-level comment or a reply.
// A zero parent id is treated as no parent, matching the platform API.
func (c Comment) Kind() CommentKind {
	if c.ParentID != nil && *c.ParentID != 0 {
		return Reply
	}
	return TopLevel
}

// AuthorName returns the display name of the comment author
func (c Comment) AuthorName() string {
	return c.User.FullName
}

// AppendReply returns a copy of c with r attached as its last reply
func (c Comment) AppendReply(r Comment) (Comment, error) {
	if c.Kind() == Reply {
		return Comment{}, ErrNestedReply
	}
	pid := c.ID
	r.ParentID = &pid
	r.Replies = nil

	out := c.clone()
	out.Replies = append(out.Replies, r)
	return out, nil
}

func (c Comment) clone() Comment {
	out := c
	if c.ParentID != nil {
		pid := *c.ParentID
		out.ParentID = &pid
	}
	if c.Replies != nil {
		out.Replies = make([]Comment, len(c.Replies))
		for i, r := range c.Replies {
			out.Replies[i] = r.clone()
		}
	}
	return out
}

// IsBlank reports whether text has no visible characters
func IsBlank(text string) bool {
	return strings.TrimSpace(text) == ""
}
