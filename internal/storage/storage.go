package storage

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"lostfound/internal/model"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("storage: not found")

// ItemRepository persists listings.
type ItemRepository interface {
	ListItems(ctx context.Context, f ItemFilter) ([]model.Item, error)
	GetItem(ctx context.Context, id string) (model.Item, error)
	CreateItem(ctx context.Context, it model.Item) (model.Item, error)
	UpdateItem(ctx context.Context, id string, u ItemUpdate) (model.Item, error)
}

// ProfileRepository persists user profiles keyed by user ID.
type ProfileRepository interface {
	GetProfile(ctx context.Context, userID string) (model.Profile, error)
	UpsertProfile(ctx context.Context, p model.Profile) (model.Profile, error)
}

// MatchRepository persists lost/found pairings.
type MatchRepository interface {
	ListMatches(ctx context.Context, f MatchFilter) ([]model.Match, error)
	GetMatch(ctx context.Context, id string) (model.Match, error)
	CreateMatch(ctx context.Context, m model.Match) (model.Match, error)
	UpdateMatchStatus(ctx context.Context, id string, status model.MatchStatus) (model.Match, error)
	CountMatches(ctx context.Context, f MatchFilter) (int, error)
}

// MessageRepository persists direct messages.
type MessageRepository interface {
	ListMessages(ctx context.Context, f MessageFilter) ([]model.Message, error)
	CreateMessage(ctx context.Context, m model.Message) (model.Message, error)
	// MarkRead flags every unread message matching f as read and returns how many changed.
	MarkRead(ctx context.Context, f MessageFilter) (int, error)
	CountMessages(ctx context.Context, f MessageFilter) (int, error)
}

// Repository is the full persistence surface used by the services.
type Repository interface {
	ItemRepository
	ProfileRepository
	MatchRepository
	MessageRepository
	Close() error
}

// ItemFilter selects items. Zero fields do not filter. Results are newest first.
type ItemFilter struct {
	UserID       string
	Status       model.Status
	Category     string
	Resolved     *bool
	CreatedAfter time.Time
	// Text matches title, description, location or category, case-insensitively.
	Text  string
	Limit int
}

// Match reports whether it passes every non-zero field of f.
func (f ItemFilter) Match(it model.Item) bool {
	if f.UserID != "" && it.UserID != f.UserID {
		return false
	}
	if f.Status != "" && it.Status != f.Status {
		return false
	}
	if f.Category != "" && it.Category != f.Category {
		return false
	}
	if f.Resolved != nil && it.IsResolved != *f.Resolved {
		return false
	}
	if !f.CreatedAfter.IsZero() && it.CreatedAt.Before(f.CreatedAfter) {
		return false
	}
	if f.Text != "" {
		q := strings.ToLower(f.Text)
		if !strings.Contains(strings.ToLower(it.Title), q) &&
			!strings.Contains(strings.ToLower(it.Description), q) &&
			!strings.Contains(strings.ToLower(it.Location), q) &&
			!strings.Contains(strings.ToLower(it.Category), q) {
			return false
		}
	}
	return true
}

// Apply filters, orders newest first and limits items.
func (f ItemFilter) Apply(items []model.Item) []model.Item {
	out := make([]model.Item, 0, len(items))
	for _, it := range items {
		if f.Match(it) {
			out = append(out, it)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out
}

// Bool returns a pointer to b, for filter fields.
func Bool(b bool) *bool { return &b }

// ItemUpdate holds the fields to change on an item. Nil fields are left alone.
type ItemUpdate struct {
	Title         *string `json:"title,omitempty"`
	Description   *string `json:"description,omitempty"`
	Category      *string `json:"category,omitempty"`
	Location      *string `json:"location,omitempty"`
	DateLostFound *string `json:"date_lost_found,omitempty"`
	ContactInfo   *string `json:"contact_info,omitempty"`
	ImageURL      *string `json:"image_url,omitempty"`
	IsResolved    *bool   `json:"is_resolved,omitempty"`
}

// ApplyTo copies the set fields of u onto it and bumps UpdatedAt.
func (u ItemUpdate) ApplyTo(it *model.Item, now time.Time) {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&it.Title, u.Title)
	set(&it.Description, u.Description)
	set(&it.Category, u.Category)
	set(&it.Location, u.Location)
	set(&it.DateLostFound, u.DateLostFound)
	set(&it.ContactInfo, u.ContactInfo)
	set(&it.ImageURL, u.ImageURL)
	if u.IsResolved != nil {
		it.IsResolved = *u.IsResolved
	}
	it.UpdatedAt = now
}

// MatchFilter selects matches. Results are newest first.
type MatchFilter struct {
	UserID      string // owner of either side
	Status      model.MatchStatus
	LostItemID  string
	FoundItemID string
}

// Match reports whether m passes every non-zero field of f.
func (f MatchFilter) Match(m model.Match) bool {
	if f.UserID != "" && !m.Involves(f.UserID) {
		return false
	}
	if f.Status != "" && m.Status != f.Status {
		return false
	}
	if f.LostItemID != "" && m.LostItemID != f.LostItemID {
		return false
	}
	if f.FoundItemID != "" && m.FoundItemID != f.FoundItemID {
		return false
	}
	return true
}

// Apply filters and orders matches newest first.
func (f MatchFilter) Apply(ms []model.Match) []model.Match {
	out := make([]model.Match, 0, len(ms))
	for _, m := range ms {
		if f.Match(m) {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// MessageFilter selects messages.
type MessageFilter struct {
	ID         string
	UserID     string // sender or receiver
	PeerID     string // with UserID: only the conversation between the two
	SenderID   string
	ReceiverID string
	UnreadOnly bool
	// OldestFirst orders a thread chronologically; default is newest first.
	OldestFirst bool
}

// Match reports whether m passes every non-zero field of f.
func (f MessageFilter) Match(m model.Message) bool {
	if f.ID != "" && m.ID != f.ID {
		return false
	}
	if f.UserID != "" {
		if f.PeerID != "" {
			a := m.SenderID == f.UserID && m.ReceiverID == f.PeerID
			b := m.SenderID == f.PeerID && m.ReceiverID == f.UserID
			if !a && !b {
				return false
			}
		} else if m.SenderID != f.UserID && m.ReceiverID != f.UserID {
			return false
		}
	}
	if f.SenderID != "" && m.SenderID != f.SenderID {
		return false
	}
	if f.ReceiverID != "" && m.ReceiverID != f.ReceiverID {
		return false
	}
	if f.UnreadOnly && m.IsRead {
		return false
	}
	return true
}

// Apply filters and orders messages.
func (f MessageFilter) Apply(ms []model.Message) []model.Message {
	out := make([]model.Message, 0, len(ms))
	for _, m := range ms {
		if f.Match(m) {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if f.OldestFirst {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// newID returns a fresh record ID with a readable prefix, e.g. "item-<uuid>".
func newID(prefix string) string {
	return prefix + "-" + uuid.NewString()
}

// stamp fills ID and timestamps left empty by the caller.
func stamp(id *string, created, updated *time.Time, prefix string, now time.Time) {
	if *id == "" {
		*id = newID(prefix)
	}
	if created.IsZero() {
		*created = now
	}
	if updated.IsZero() {
		*updated = *created
	}
}
