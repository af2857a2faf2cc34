package dto

import "hoainiem-portal/internal/domain"

// OpenFeedRequest represents the request to open an article feed
type OpenFeedRequest struct {
	Slug string `json:"slug" binding:"required" example:"gia-vang-hom-nay"`
}

// FeedResponse represents the state of an article feed after a load
type FeedResponse struct {
	FeedID   string               `json:"feedId" example:"f47ac10b-58cc-4372-a567-0e02b2c3d479"`
	Page     int                  `json:"page" example:"1"`
	HasMore  bool                 `json:"hasMore" example:"true"`
	Article  *domain.PostDetail   `json:"article,omitempty"`
	Related  []domain.RelatedPost `json:"related"`
	Articles int                  `json:"articles" example:"1"`
}
