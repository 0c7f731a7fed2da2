package storage

import (
	"context"
	"fmt"
	"sync"
	"time"

	"lostfound/internal/model"
)

// MemoryStore keeps every record in process memory. Records are stored in
// insertion order so equal timestamps list deterministically.
type MemoryStore struct {
	mu       sync.RWMutex
	items    []model.Item
	profiles map[string]model.Profile
	matches  []model.Match
	messages []model.Message
	now      func() time.Time
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		profiles: map[string]model.Profile{},
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// WithClock replaces the time source used for UpdatedAt stamps.
func (s *MemoryStore) WithClock(now func() time.Time) *MemoryStore {
	s.now = now
	return s
}

func (s *MemoryStore) Close() error { return nil }

func (s *MemoryStore) ListItems(ctx context.Context, f ItemFilter) ([]model.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return f.Apply(s.items), nil
}

func (s *MemoryStore) GetItem(ctx context.Context, id string) (model.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, it := range s.items {
		if it.ID == id {
			return it, nil
		}
	}
	return model.Item{}, fmt.Errorf("item %s: %w", id, ErrNotFound)
}

func (s *MemoryStore) CreateItem(ctx context.Context, it model.Item) (model.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stamp(&it.ID, &it.CreatedAt, &it.UpdatedAt, "item", s.now())
	s.items = append(s.items, it)
	return it, nil
}

func (s *MemoryStore) UpdateItem(ctx context.Context, id string, u ItemUpdate) (model.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.items[i].ID == id {
			u.ApplyTo(&s.items[i], s.now())
			return s.items[i], nil
		}
	}
	return model.Item{}, fmt.Errorf("item %s: %w", id, ErrNotFound)
}

func (s *MemoryStore) GetProfile(ctx context.Context, userID string) (model.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.profiles[userID]
	if !ok {
		return model.Profile{}, fmt.Errorf("profile %s: %w", userID, ErrNotFound)
	}
	return p, nil
}

func (s *MemoryStore) UpsertProfile(ctx context.Context, p model.Profile) (model.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	if old, ok := s.profiles[p.UserID]; ok {
		p.ID = old.ID
		p.CreatedAt = old.CreatedAt
		p.UpdatedAt = now
	}
	stamp(&p.ID, &p.CreatedAt, &p.UpdatedAt, "profile", now)
	s.profiles[p.UserID] = p
	return p, nil
}

func (s *MemoryStore) ListMatches(ctx context.Context, f MatchFilter) ([]model.Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return f.Apply(s.matches), nil
}

func (s *MemoryStore) GetMatch(ctx context.Context, id string) (model.Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, m := range s.matches {
		if m.ID == id {
			return m, nil
		}
	}
	return model.Match{}, fmt.Errorf("match %s: %w", id, ErrNotFound)
}

func (s *MemoryStore) CreateMatch(ctx context.Context, m model.Match) (model.Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stamp(&m.ID, &m.CreatedAt, &m.UpdatedAt, "match", s.now())
	if m.Status == "" {
		m.Status = model.MatchPending
	}
	s.matches = append(s.matches, m)
	return m, nil
}

func (s *MemoryStore) UpdateMatchStatus(ctx context.Context, id string, status model.MatchStatus) (model.Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.matches {
		if s.matches[i].ID == id {
			s.matches[i].Status = status
			s.matches[i].UpdatedAt = s.now()
			return s.matches[i], nil
		}
	}
	return model.Match{}, fmt.Errorf("match %s: %w", id, ErrNotFound)
}

func (s *MemoryStore) CountMatches(ctx context.Context, f MatchFilter) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, m := range s.matches {
		if f.Match(m) {
			n++
		}
	}
	return n, nil
}

func (s *MemoryStore) ListMessages(ctx context.Context, f MessageFilter) ([]model.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return f.Apply(s.messages), nil
}

func (s *MemoryStore) CreateMessage(ctx context.Context, m model.Message) (model.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stamp(&m.ID, &m.CreatedAt, &m.UpdatedAt, "message", s.now())
	s.messages = append(s.messages, m)
	return m, nil
}

func (s *MemoryStore) MarkRead(ctx context.Context, f MessageFilter) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f.UnreadOnly = true
	n := 0
	now := s.now()
	for i := range s.messages {
		if f.Match(s.messages[i]) {
			s.messages[i].IsRead = true
			s.messages[i].UpdatedAt = now
			n++
		}
	}
	return n, nil
}

func (s *MemoryStore) CountMessages(ctx context.Context, f MessageFilter) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, m := range s.messages {
		if f.Match(m) {
			n++
		}
	}
	return n, nil
}
