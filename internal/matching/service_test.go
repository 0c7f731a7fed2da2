package matching

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"lostfound/internal/ai"
	"lostfound/internal/model"
	"lostfound/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2024, 1, 20, 12, 0, 0, 0, time.UTC)

func input(title, category string) ItemInput {
	return ItemInput{
		Title:         title,
		Description:   "details about the " + title,
		Category:      category,
		Location:      "Central Park, NYC",
		DateLostFound: "2024-01-19",
		ContactInfo:   "someone@example.com",
	}
}

func newService(repo storage.Repository) *Service {
	return New(repo, ai.Template{}, Options{}).WithClock(func() time.Time { return now })
}

func TestValidate(t *testing.T) {
	err := ItemInput{Title: "  ", Category: "Spaceships"}.Validate()
	var v *ValidationError
	require.True(t, errors.As(err, &v))
	assert.Equal(t, "required", v.Fields["title"])
	assert.Equal(t, "unknown category", v.Fields["category"])
	for _, f := range []string{"description", "location", "date_lost_found", "contact_info"} {
		assert.Contains(t, v.Fields, f)
	}
	assert.NoError(t, input("Keys", "Keys").Validate())
}

func TestReportLost(t *testing.T) {
	repo := storage.NewMemoryStore()
	s := newService(repo)
	in := input("  Blue Umbrella ", "Other")
	it, err := s.ReportLost(context.Background(), "user-1", in)
	require.NoError(t, err)
	assert.Equal(t, "Blue Umbrella", it.Title)
	assert.Equal(t, model.StatusLost, it.Status)
	assert.Equal(t, "user-1", it.UserID)
	assert.False(t, it.IsResolved)

	_, err = s.ReportLost(context.Background(), "user-1", ItemInput{})
	var v *ValidationError
	assert.True(t, errors.As(err, &v))
}

func TestReportFoundWithReference(t *testing.T) {
	ctx := context.Background()
	repo := storage.NewMemoryStore()
	s := newService(repo)
	lost, err := s.ReportLost(ctx, "user-1", input("iPhone 13 Pro", "Electronics"))
	require.NoError(t, err)

	found, m, err := s.ReportFound(ctx, "user-2", input("Phone", "Electronics"), lost.ID)
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, model.StatusFound, found.Status)
	assert.Equal(t, lost.ID, m.LostItemID)
	assert.Equal(t, found.ID, m.FoundItemID)
	assert.Equal(t, "user-1", m.LostItemUserID)
	assert.Equal(t, "user-2", m.FoundItemUserID)
	assert.Equal(t, 95, m.SimilarityScore)
	assert.Equal(t, model.MatchPending, m.Status)

	msgs, err := repo.ListMessages(ctx, storage.MessageFilter{ReceiverID: "user-1"})
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "user-2", msgs[0].SenderID)
	assert.Equal(t, lost.ID, msgs[0].ItemID)
	assert.Equal(t, "Hi! I think I found your iPhone 13 Pro. I've reported it as a found item. Please check if this matches what you lost.", msgs[0].Content)
	assert.False(t, msgs[0].IsRead)
}

func TestReportFoundIgnoresBadReference(t *testing.T) {
	ctx := context.Background()
	repo := storage.NewMemoryStore()
	s := newService(repo)
	own, err := s.ReportLost(ctx, "user-2", input("Scarf", "Clothing"))
	require.NoError(t, err)
	other, _, err := s.ReportFound(ctx, "user-3", input("Hat", "Clothing"), "")
	require.NoError(t, err)

	for name, ref := range map[string]string{"missing": "nope", "own item": own.ID, "found item": other.ID} {
		t.Run(name, func(t *testing.T) {
			it, m, err := s.ReportFound(ctx, "user-2", input("Scarf", "Clothing"), ref)
			require.NoError(t, err)
			assert.NotEmpty(t, it.ID)
			assert.Nil(t, m)
		})
	}
	n, err := repo.CountMatches(ctx, storage.MatchFilter{})
	require.NoError(t, err)
	assert.Zero(t, n)
}

type failingMatches struct {
	*storage.MemoryStore
}

func (failingMatches) CreateMatch(ctx context.Context, m model.Match) (model.Match, error) {
	return model.Match{}, errors.New("disk full")
}

func TestReportFoundKeepsItemWhenMatchFails(t *testing.T) {
	ctx := context.Background()
	repo := failingMatches{storage.NewMemoryStore()}
	s := newService(repo)
	lost, err := s.ReportLost(ctx, "user-1", input("Ring", "Jewelry"))
	require.NoError(t, err)

	found, m, err := s.ReportFound(ctx, "user-2", input("Ring", "Jewelry"), lost.ID)
	require.NoError(t, err)
	assert.Nil(t, m)
	_, err = repo.GetItem(ctx, found.ID)
	assert.NoError(t, err)
}

func TestDecide(t *testing.T) {
	ctx := context.Background()
	repo := storage.NewMemoryStore()
	s := newService(repo)
	m, err := repo.CreateMatch(ctx, model.Match{LostItemID: "l", FoundItemID: "f", LostItemUserID: "user-1", FoundItemUserID: "user-2"})
	require.NoError(t, err)

	_, err = s.Decide(ctx, "user-3", m.ID, model.MatchConfirmed)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = s.Decide(ctx, "user-1", m.ID, model.MatchPending)
	var v *ValidationError
	assert.True(t, errors.As(err, &v))

	_, err = s.Decide(ctx, "user-1", "missing", model.MatchConfirmed)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	n, err := s.PendingCount(ctx, "user-2")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := s.Decide(ctx, "user-2", m.ID, model.MatchConfirmed)
	require.NoError(t, err)
	assert.Equal(t, model.MatchConfirmed, got.Status)

	_, err = s.Decide(ctx, "user-1", m.ID, model.MatchRejected)
	assert.ErrorIs(t, err, ErrNotPending)

	n, err = s.PendingCount(ctx, "user-2")
	require.NoError(t, err)
	assert.Zero(t, n)

	confirmed, err := s.ListForUser(ctx, "user-1", model.MatchConfirmed)
	require.NoError(t, err)
	assert.Len(t, confirmed, 1)
}

func TestUpdateItem(t *testing.T) {
	ctx := context.Background()
	repo := storage.NewMemoryStore()
	s := newService(repo)
	it, err := s.ReportLost(ctx, "user-1", input("Keys", "Keys"))
	require.NoError(t, err)

	_, err = s.UpdateItem(ctx, "user-2", it.ID, storage.ItemUpdate{IsResolved: storage.Bool(true)})
	assert.ErrorIs(t, err, ErrForbidden)

	empty := " "
	_, err = s.UpdateItem(ctx, "user-1", it.ID, storage.ItemUpdate{Title: &empty})
	var v *ValidationError
	assert.True(t, errors.As(err, &v))

	category, title := "  Electronics  ", " Car keys\t"
	got, err := s.UpdateItem(ctx, "user-1", it.ID, storage.ItemUpdate{Category: &category, Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "Electronics", got.Category)
	assert.Equal(t, "Car keys", got.Title)
	listed, err := repo.ListItems(ctx, storage.ItemFilter{Category: "Electronics"})
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, it.ID, listed[0].ID)

	got, err = s.UpdateItem(ctx, "user-1", it.ID, storage.ItemUpdate{IsResolved: storage.Bool(true)})
	require.NoError(t, err)
	assert.True(t, got.IsResolved)
}

func seedPair(t *testing.T, repo storage.Repository) (model.Item, model.Item) {
	t.Helper()
	ctx := context.Background()
	lost, err := repo.CreateItem(ctx, model.Item{UserID: "user-1", Title: "Black Wallet", Description: "leather",
		Category: "Bags & Wallets", Status: model.StatusLost, CreatedAt: now.Add(-48 * time.Hour)})
	require.NoError(t, err)
	found, err := repo.CreateItem(ctx, model.Item{UserID: "user-2", Title: "Found black wallet", Description: "on a bench",
		Category: "Bags & Wallets", Status: model.StatusFound, CreatedAt: now.Add(-time.Hour)})
	require.NoError(t, err)
	_, err = repo.CreateItem(ctx, model.Item{UserID: "user-3", Title: "Bicycle", Description: "red",
		Category: "Sports Equipment", Status: model.StatusFound, CreatedAt: now.Add(-time.Hour)})
	require.NoError(t, err)
	_, err = repo.CreateItem(ctx, model.Item{UserID: "user-1", Title: "Black wallet", Description: "mine, found it myself",
		Category: "Bags & Wallets", Status: model.StatusFound, CreatedAt: now.Add(-time.Hour)})
	require.NoError(t, err)
	return lost, found
}

func TestSuggest(t *testing.T) {
	repo := storage.NewMemoryStore()
	s := newService(repo)
	lost, found := seedPair(t, repo)

	got, err := s.Suggest(context.Background(), lost)
	require.NoError(t, err)
	require.Len(t, got, 1, "own found items and weak scores are skipped")
	assert.Equal(t, found.ID, got[0].ID)
	assert.Equal(t, 100, got[0].SimilarityScore)

	_, err = s.SuggestFor(context.Background(), found.ID)
	var v *ValidationError
	assert.True(t, errors.As(err, &v))
}

func TestSuggestWithZeroThreshold(t *testing.T) {
	repo := storage.NewMemoryStore()
	zero := 0
	s := New(repo, ai.Template{}, Options{Threshold: &zero}).WithClock(func() time.Time { return now })
	lost, found := seedPair(t, repo)

	got, err := s.Suggest(context.Background(), lost)
	require.NoError(t, err)
	require.Len(t, got, 2, "a recent unrelated item scores above zero")
	assert.Equal(t, found.ID, got[0].ID)
	assert.Equal(t, "Bicycle", got[1].Title)
	assert.Equal(t, 10, got[1].SimilarityScore)
}

type recordingNotifier struct{ calls atomic.Int32 }

func (n *recordingNotifier) MatchMessage(ctx context.Context, lost, found model.Item) (string, error) {
	n.calls.Add(1)
	return "maybe " + found.Title + " is yours", nil
}

func TestScanRecordsOnce(t *testing.T) {
	ctx := context.Background()
	repo := storage.NewMemoryStore()
	notifier := &recordingNotifier{}
	s := New(repo, notifier, Options{}).WithClock(func() time.Time { return now })
	lost, found := seedPair(t, repo)

	n, err := s.Scan(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = s.Scan(ctx)
	require.NoError(t, err)
	assert.Zero(t, n, "pair already recorded")
	assert.EqualValues(t, 1, notifier.calls.Load())

	ms, err := repo.ListMatches(ctx, storage.MatchFilter{LostItemID: lost.ID})
	require.NoError(t, err)
	require.Len(t, ms, 1)
	assert.Equal(t, found.ID, ms[0].FoundItemID)
	assert.Equal(t, 100, ms[0].SimilarityScore)

	msgs, err := repo.ListMessages(ctx, storage.MessageFilter{ReceiverID: "user-1"})
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "maybe Found black wallet is yours", msgs[0].Content)
	assert.Equal(t, "user-2", msgs[0].SenderID)
}

func TestConcurrentScansRecordPairOnce(t *testing.T) {
	ctx := context.Background()
	repo := storage.NewMemoryStore()
	notifier := &recordingNotifier{}
	s := New(repo, notifier, Options{}).WithClock(func() time.Time { return now })
	lost, _ := seedPair(t, repo)

	var (
		wg    sync.WaitGroup
		total atomic.Int32
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			n, err := s.Scan(ctx)
			assert.NoError(t, err)
			total.Add(int32(n))
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 1, total.Load())
	assert.EqualValues(t, 1, notifier.calls.Load())
	ms, err := repo.ListMatches(ctx, storage.MatchFilter{LostItemID: lost.ID})
	require.NoError(t, err)
	assert.Len(t, ms, 1)
}

func TestScanSkipsReportedPair(t *testing.T) {
	ctx := context.Background()
	repo := storage.NewMemoryStore()
	s := newService(repo)
	lost, err := s.ReportLost(ctx, "user-1", input("Black wallet", "Bags & Wallets"))
	require.NoError(t, err)

	found, m, err := s.ReportFound(ctx, "user-2", input("Black wallet", "Bags & Wallets"), lost.ID)
	require.NoError(t, err)
	require.NotNil(t, m)

	n, err := s.Scan(ctx)
	require.NoError(t, err)
	assert.Zero(t, n, "reported pair is not suggested again")

	ms, err := repo.ListMatches(ctx, storage.MatchFilter{LostItemID: lost.ID, FoundItemID: found.ID})
	require.NoError(t, err)
	require.Len(t, ms, 1)
	assert.Equal(t, m.ID, ms[0].ID)
}
