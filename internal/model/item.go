package model

import "time"

// Status of a listing.
type Status string

const (
	StatusLost  Status = "lost"
	StatusFound Status = "found"
)

// Valid reports whether s is a known listing status.
func (s Status) Valid() bool {
	return s == StatusLost || s == StatusFound
}

// Categories offered by the report forms.
var Categories = []string{
	"Electronics",
	"Jewelry",
	"Clothing",
	"Bags & Wallets",
	"Keys",
	"Documents",
	"Sports Equipment",
	"Toys",
	"Books",
	"Other",
}

// IsCategory reports whether c is one of Categories (exact match).
func IsCategory(c string) bool {
	for _, k := range Categories {
		if k == c {
			return true
		}
	}
	return false
}

// Item is a lost or found listing.
type Item struct {
	ID            string    `json:"id" yaml:"id"`
	UserID        string    `json:"user_id" yaml:"user_id"`
	Title         string    `json:"title" yaml:"title"`
	Description   string    `json:"description" yaml:"description"`
	Category      string    `json:"category" yaml:"category"`
	Status        Status    `json:"status" yaml:"status"`
	Location      string    `json:"location" yaml:"location"`
	DateLostFound string    `json:"date_lost_found" yaml:"date_lost_found"` // YYYY-MM-DD
	ContactInfo   string    `json:"contact_info" yaml:"contact_info"`
	ImageURL      string    `json:"image_url,omitempty" yaml:"image_url,omitempty"`
	IsResolved    bool      `json:"is_resolved" yaml:"is_resolved"`
	CreatedAt     time.Time `json:"created_at" yaml:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" yaml:"updated_at"`
}

// ScoredItem decorates an item with per-request ranking data. Never persisted.
type ScoredItem struct {
	Item
	SimilarityScore int      `json:"similarity_score"`
	DistanceKm      *float64 `json:"distance_km,omitempty"`
	StrongMatch     bool     `json:"strong_match,omitempty"`
}
