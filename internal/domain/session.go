package domain

import (
	"time"

	"gorm.io/datatypes"
)

// Session is the locally stored authentication state
type Session struct {
	Token     string     `json:"-"`
	UserID    string     `json:"userId,omitempty"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
}

// Authenticated reports whether a bearer token is present
func (s Session) Authenticated() bool {
	return s.Token != ""
}

// Expired reports whether the token carries an expiry that has passed
func (s Session) Expired(now time.Time) bool {
	return s.ExpiresAt != nil && !now.Before(*s.ExpiresAt)
}

// KeyValueEntry is a row of the database backed client state store
type KeyValueEntry struct {
	Key       string         `gorm:"type:varchar(191);primaryKey" json:"key"`
	Value     datatypes.JSON `gorm:"not null" json:"value"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// TableName specifies the table name for KeyValueEntry
func (KeyValueEntry) TableName() string {
	return "portal_sessions"
}
