package model

import "time"

// Profile holds public user details.
type Profile struct {
	ID        string    `json:"id" yaml:"id"`
	UserID    string    `json:"user_id" yaml:"user_id"`
	FullName  string    `json:"full_name" yaml:"full_name"`
	Phone     string    `json:"phone,omitempty" yaml:"phone,omitempty"`
	AvatarURL string    `json:"avatar_url,omitempty" yaml:"avatar_url,omitempty"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
	UpdatedAt time.Time `json:"updated_at" yaml:"updated_at"`
}

// MatchStatus tracks the owner's decision on a suggested pairing.
type MatchStatus string

const (
	MatchPending   MatchStatus = "pending"
	MatchConfirmed MatchStatus = "confirmed"
	MatchRejected  MatchStatus = "rejected"
)

// Valid reports whether s is a known match status.
func (s MatchStatus) Valid() bool {
	switch s {
	case MatchPending, MatchConfirmed, MatchRejected:
		return true
	}
	return false
}

// Match pairs a lost item with a found item.
type Match struct {
	ID              string      `json:"id" yaml:"id"`
	LostItemID      string      `json:"lost_item_id" yaml:"lost_item_id"`
	FoundItemID     string      `json:"found_item_id" yaml:"found_item_id"`
	LostItemUserID  string      `json:"lost_item_user_id" yaml:"lost_item_user_id"`
	FoundItemUserID string      `json:"found_item_user_id" yaml:"found_item_user_id"`
	Status          MatchStatus `json:"status" yaml:"status"`
	SimilarityScore int         `json:"similarity_score" yaml:"similarity_score"`
	CreatedAt       time.Time   `json:"created_at" yaml:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at" yaml:"updated_at"`
}

// Involves reports whether userID owns either side of the match.
func (m Match) Involves(userID string) bool {
	return m.LostItemUserID == userID || m.FoundItemUserID == userID
}

// Message is a direct message between two users, optionally about an item.
type Message struct {
	ID         string    `json:"id" yaml:"id"`
	SenderID   string    `json:"sender_id" yaml:"sender_id"`
	ReceiverID string    `json:"receiver_id" yaml:"receiver_id"`
	ItemID     string    `json:"item_id,omitempty" yaml:"item_id,omitempty"`
	Content    string    `json:"content" yaml:"content"`
	IsRead     bool      `json:"is_read" yaml:"is_read"`
	CreatedAt  time.Time `json:"created_at" yaml:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" yaml:"updated_at"`
}
