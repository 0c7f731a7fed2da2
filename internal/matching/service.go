package matching

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"lostfound/internal/ai"
	"lostfound/internal/model"
	"lostfound/internal/scoring"
	"lostfound/internal/storage"
)

var (
	// ErrForbidden is returned when a user acts on a record they are not a party to.
	ErrForbidden = errors.New("matching: forbidden")
	// ErrNotPending is returned when deciding a match that was already decided.
	ErrNotPending = errors.New("matching: match is not pending")
)

// Options tune suggestions. A nil Threshold and zero values elsewhere fall
// back to defaults.
type Options struct {
	Threshold     *int
	TopN          int
	ReportedScore int
}

type Service struct {
	repo      storage.Repository
	notifier  ai.Notifier
	opts      Options
	threshold int
	now       func() time.Time

	// pairMu serialises the lookup and insert in createMatchOnce.
	pairMu sync.Mutex
}

func New(repo storage.Repository, notifier ai.Notifier, opts Options) *Service {
	threshold := scoring.DefaultThreshold
	if opts.Threshold != nil {
		threshold = *opts.Threshold
	}
	if opts.TopN == 0 {
		opts.TopN = scoring.DefaultTopN
	}
	if opts.ReportedScore == 0 {
		opts.ReportedScore = 95
	}
	if notifier == nil {
		notifier = ai.Template{}
	}
	return &Service{repo: repo, notifier: notifier, opts: opts, threshold: threshold, now: time.Now}
}

// WithClock overrides the time source used for recency scoring.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) ReportLost(ctx context.Context, userID string, in ItemInput) (model.Item, error) {
	if err := in.Validate(); err != nil {
		return model.Item{}, err
	}
	it, err := s.repo.CreateItem(ctx, in.item(userID, model.StatusLost))
	if err != nil {
		return model.Item{}, fmt.Errorf("create lost item: %w", err)
	}
	slog.Info("matching: lost item reported", "item", it.ID, "user", userID)
	return it, nil
}

// ReportFound creates a found item. When referenceID names another user's
// unresolved lost item, it also records a pending match and tells the owner.
// The returned match is nil when none was recorded; failures after the item
// is stored are logged, not returned.
func (s *Service) ReportFound(ctx context.Context, userID string, in ItemInput, referenceID string) (model.Item, *model.Match, error) {
	if err := in.Validate(); err != nil {
		return model.Item{}, nil, err
	}
	found, err := s.repo.CreateItem(ctx, in.item(userID, model.StatusFound))
	if err != nil {
		return model.Item{}, nil, fmt.Errorf("create found item: %w", err)
	}
	slog.Info("matching: found item reported", "item", found.ID, "user", userID, "reference", referenceID)
	if referenceID == "" {
		return found, nil, nil
	}

	lost, err := s.repo.GetItem(ctx, referenceID)
	if err != nil {
		slog.Warn("matching: reference lookup failed", "reference", referenceID, "err", err)
		return found, nil, nil
	}
	if lost.Status != model.StatusLost || lost.IsResolved || lost.UserID == userID {
		slog.Warn("matching: reference is not an open lost item of another user", "reference", referenceID)
		return found, nil, nil
	}

	m, created, err := s.createMatchOnce(ctx, model.Match{
		LostItemID:      lost.ID,
		FoundItemID:     found.ID,
		LostItemUserID:  lost.UserID,
		FoundItemUserID: userID,
		Status:          model.MatchPending,
		SimilarityScore: s.opts.ReportedScore,
	})
	if err != nil {
		slog.Error("matching: create reported match", "lost", lost.ID, "found", found.ID, "err", err)
		return found, nil, nil
	}
	if !created {
		// the scanner recorded this pair first and already notified the owner
		return found, &m, nil
	}
	if _, err := s.repo.CreateMessage(ctx, model.Message{
		SenderID:   userID,
		ReceiverID: lost.UserID,
		ItemID:     lost.ID,
		Content:    ai.ReportedMessage(lost.Title),
	}); err != nil {
		slog.Error("matching: notify lost item owner", "user", lost.UserID, "err", err)
	}
	return found, &m, nil
}

// UpdateItem changes an item owned by userID.
func (s *Service) UpdateItem(ctx context.Context, userID, itemID string, u storage.ItemUpdate) (model.Item, error) {
	u = trimUpdate(u)
	if err := validateUpdate(u); err != nil {
		return model.Item{}, err
	}
	it, err := s.repo.GetItem(ctx, itemID)
	if err != nil {
		return model.Item{}, err
	}
	if it.UserID != userID {
		return model.Item{}, ErrForbidden
	}
	return s.repo.UpdateItem(ctx, itemID, u)
}

// ListForUser returns the matches on either side of which userID sits,
// newest first. An empty status lists all.
func (s *Service) ListForUser(ctx context.Context, userID string, status model.MatchStatus) ([]model.Match, error) {
	if status != "" && !status.Valid() {
		return nil, &ValidationError{Fields: map[string]string{"status": "unknown match status"}}
	}
	return s.repo.ListMatches(ctx, storage.MatchFilter{UserID: userID, Status: status})
}

// Decide confirms or rejects a pending match on behalf of one of its parties.
func (s *Service) Decide(ctx context.Context, userID, matchID string, status model.MatchStatus) (model.Match, error) {
	if status != model.MatchConfirmed && status != model.MatchRejected {
		return model.Match{}, &ValidationError{Fields: map[string]string{"status": "must be confirmed or rejected"}}
	}
	m, err := s.repo.GetMatch(ctx, matchID)
	if err != nil {
		return model.Match{}, err
	}
	if !m.Involves(userID) {
		return model.Match{}, ErrForbidden
	}
	if m.Status != model.MatchPending {
		return model.Match{}, ErrNotPending
	}
	m, err = s.repo.UpdateMatchStatus(ctx, matchID, status)
	if err != nil {
		return model.Match{}, err
	}
	slog.Info("matching: match decided", "match", matchID, "user", userID, "status", status)
	return m, nil
}

func (s *Service) PendingCount(ctx context.Context, userID string) (int, error) {
	return s.repo.CountMatches(ctx, storage.MatchFilter{UserID: userID, Status: model.MatchPending})
}

// Suggest ranks other users' unresolved found items against the lost item's
// title and returns the smart matches.
func (s *Service) Suggest(ctx context.Context, lost model.Item) ([]model.ScoredItem, error) {
	found, err := s.repo.ListItems(ctx, storage.ItemFilter{Status: model.StatusFound, Resolved: storage.Bool(false)})
	if err != nil {
		return nil, fmt.Errorf("list found items: %w", err)
	}
	candidates := make([]model.Item, 0, len(found))
	for _, it := range found {
		if it.UserID != lost.UserID {
			candidates = append(candidates, it)
		}
	}
	scored := scoring.Annotate(candidates, lost.Title, s.now())
	return scoring.SmartMatches(scored, s.threshold, s.opts.TopN), nil
}

// SuggestFor is Suggest for a stored lost item.
func (s *Service) SuggestFor(ctx context.Context, itemID string) ([]model.ScoredItem, error) {
	it, err := s.repo.GetItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if it.Status != model.StatusLost {
		return nil, &ValidationError{Fields: map[string]string{"item": "suggestions are only offered for lost items"}}
	}
	return s.Suggest(ctx, it)
}

// Scan records a pending match for every suggestion not yet recorded for its
// pair, and notifies the lost item's owner. It returns how many were created.
func (s *Service) Scan(ctx context.Context) (int, error) {
	lost, err := s.repo.ListItems(ctx, storage.ItemFilter{Status: model.StatusLost, Resolved: storage.Bool(false)})
	if err != nil {
		return 0, fmt.Errorf("list lost items: %w", err)
	}
	created := 0
	for _, l := range lost {
		if err := ctx.Err(); err != nil {
			return created, err
		}
		suggestions, err := s.Suggest(ctx, l)
		if err != nil {
			return created, err
		}
		for _, f := range suggestions {
			ok, err := s.record(ctx, l, f)
			if err != nil {
				return created, err
			}
			if ok {
				created++
			}
		}
	}
	return created, nil
}

// createMatchOnce stores m unless its lost/found pair is already recorded,
// in which case the existing match is returned with created false.
func (s *Service) createMatchOnce(ctx context.Context, m model.Match) (model.Match, bool, error) {
	s.pairMu.Lock()
	defer s.pairMu.Unlock()
	existing, err := s.repo.ListMatches(ctx, storage.MatchFilter{LostItemID: m.LostItemID, FoundItemID: m.FoundItemID})
	if err != nil {
		return model.Match{}, false, err
	}
	if len(existing) > 0 {
		return existing[0], false, nil
	}
	m, err = s.repo.CreateMatch(ctx, m)
	if err != nil {
		return model.Match{}, false, err
	}
	return m, true, nil
}

func (s *Service) record(ctx context.Context, lost model.Item, found model.ScoredItem) (bool, error) {
	_, created, err := s.createMatchOnce(ctx, model.Match{
		LostItemID:      lost.ID,
		FoundItemID:     found.ID,
		LostItemUserID:  lost.UserID,
		FoundItemUserID: found.UserID,
		Status:          model.MatchPending,
		SimilarityScore: found.SimilarityScore,
	})
	if err != nil {
		return false, fmt.Errorf("create match: %w", err)
	}
	if !created {
		return false, nil
	}
	text, err := s.notifier.MatchMessage(ctx, lost, found.Item)
	if err != nil {
		slog.Warn("matching: compose notification", "lost", lost.ID, "err", err)
		text = ai.ReportedMessage(lost.Title)
	}
	if _, err := s.repo.CreateMessage(ctx, model.Message{
		SenderID:   found.UserID,
		ReceiverID: lost.UserID,
		ItemID:     lost.ID,
		Content:    text,
	}); err != nil {
		slog.Error("matching: notify lost item owner", "user", lost.UserID, "err", err)
	}
	slog.Info("matching: suggestion recorded", "lost", lost.ID, "found", found.ID, "score", found.SimilarityScore)
	return true, nil
}
