package dto

// LoginResponse represents a successful login. SessionID is sent back as
// "Authorization: Bearer <sessionId>" or through the portal_session cookie.
type LoginResponse struct {
	SessionID     string `json:"sessionId,omitempty" example:"0b6f7f3e-2c1d-4a8e-9f1a-5d2c3b4a6e7f"`
	UserID        string `json:"userId,omitempty" example:"12"`
	Authenticated bool   `json:"authenticated" example:"true"`
}

// AuthStatusResponse represents the authentication status of the stored session
type AuthStatusResponse struct {
	Authenticated bool   `json:"authenticated" example:"true"`
	UserID        string `json:"userId,omitempty" example:"12"`
	ExpiresAt     string `json:"expiresAt,omitempty" example:"2026-01-01T00:00:00Z"`
}

// MessageResponse carries a human readable message from the platform
type MessageResponse struct {
	Message string `json:"message" example:"Vui lòng kiểm tra email của bạn"`
}
