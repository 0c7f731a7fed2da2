package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"lostfound/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)

// runRepositoryTests exercises the behaviour every backend must share.
func runRepositoryTests(t *testing.T, open func(t *testing.T) Repository) {
	t.Run("items", func(t *testing.T) {
		ctx := context.Background()
		r := open(t)
		old, err := r.CreateItem(ctx, model.Item{UserID: "u1", Title: "Black Wallet", Category: "Bags & Wallets",
			Status: model.StatusLost, Location: "Central Park", CreatedAt: t0})
		require.NoError(t, err)
		assert.NotEmpty(t, old.ID)
		assert.Equal(t, t0, old.UpdatedAt.UTC())

		newer, err := r.CreateItem(ctx, model.Item{UserID: "u2", Title: "Keys", Category: "Keys",
			Status: model.StatusFound, Location: "Union Station", CreatedAt: t0.Add(time.Hour)})
		require.NoError(t, err)

		all, err := r.ListItems(ctx, ItemFilter{})
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.Equal(t, newer.ID, all[0].ID, "newest first")

		found, err := r.ListItems(ctx, ItemFilter{Status: model.StatusFound})
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, newer.ID, found[0].ID)

		byText, err := r.ListItems(ctx, ItemFilter{Text: "central"})
		require.NoError(t, err)
		require.Len(t, byText, 1)
		assert.Equal(t, old.ID, byText[0].ID)

		limited, err := r.ListItems(ctx, ItemFilter{Limit: 1})
		require.NoError(t, err)
		assert.Len(t, limited, 1)

		title := "Brown Wallet"
		up, err := r.UpdateItem(ctx, old.ID, ItemUpdate{Title: &title, IsResolved: Bool(true)})
		require.NoError(t, err)
		assert.Equal(t, "Brown Wallet", up.Title)
		assert.True(t, up.IsResolved)
		assert.Equal(t, "Central Park", up.Location)

		unresolved, err := r.ListItems(ctx, ItemFilter{Resolved: Bool(false)})
		require.NoError(t, err)
		require.Len(t, unresolved, 1)
		assert.Equal(t, newer.ID, unresolved[0].ID)

		got, err := r.GetItem(ctx, old.ID)
		require.NoError(t, err)
		assert.Equal(t, "Brown Wallet", got.Title)

		_, err = r.GetItem(ctx, "missing")
		assert.True(t, errors.Is(err, ErrNotFound))
		_, err = r.UpdateItem(ctx, "missing", ItemUpdate{})
		assert.True(t, errors.Is(err, ErrNotFound))
	})

	t.Run("profiles", func(t *testing.T) {
		ctx := context.Background()
		r := open(t)
		_, err := r.GetProfile(ctx, "u1")
		assert.True(t, errors.Is(err, ErrNotFound))

		p, err := r.UpsertProfile(ctx, model.Profile{UserID: "u1", FullName: "John Doe"})
		require.NoError(t, err)
		assert.NotEmpty(t, p.ID)

		p2, err := r.UpsertProfile(ctx, model.Profile{UserID: "u1", FullName: "John Q. Doe", Phone: "555"})
		require.NoError(t, err)
		assert.Equal(t, p.ID, p2.ID, "upsert keeps identity")

		got, err := r.GetProfile(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, "John Q. Doe", got.FullName)
		assert.Equal(t, "555", got.Phone)
	})

	t.Run("matches", func(t *testing.T) {
		ctx := context.Background()
		r := open(t)
		m, err := r.CreateMatch(ctx, model.Match{LostItemID: "l1", FoundItemID: "f1",
			LostItemUserID: "u1", FoundItemUserID: "u2", SimilarityScore: 85, CreatedAt: t0})
		require.NoError(t, err)
		assert.Equal(t, model.MatchPending, m.Status)

		_, err = r.CreateMatch(ctx, model.Match{LostItemID: "l2", FoundItemID: "f2",
			LostItemUserID: "u3", FoundItemUserID: "u2", Status: model.MatchRejected, CreatedAt: t0.Add(time.Minute)})
		require.NoError(t, err)

		mine, err := r.ListMatches(ctx, MatchFilter{UserID: "u1"})
		require.NoError(t, err)
		require.Len(t, mine, 1)
		assert.Equal(t, m.ID, mine[0].ID)

		n, err := r.CountMatches(ctx, MatchFilter{UserID: "u2", Status: model.MatchPending})
		require.NoError(t, err)
		assert.Equal(t, 1, n)

		pair, err := r.ListMatches(ctx, MatchFilter{LostItemID: "l1", FoundItemID: "f1"})
		require.NoError(t, err)
		assert.Len(t, pair, 1)

		up, err := r.UpdateMatchStatus(ctx, m.ID, model.MatchConfirmed)
		require.NoError(t, err)
		assert.Equal(t, model.MatchConfirmed, up.Status)

		got, err := r.GetMatch(ctx, m.ID)
		require.NoError(t, err)
		assert.Equal(t, model.MatchConfirmed, got.Status)

		_, err = r.UpdateMatchStatus(ctx, "missing", model.MatchConfirmed)
		assert.True(t, errors.Is(err, ErrNotFound))
	})

	t.Run("messages", func(t *testing.T) {
		ctx := context.Background()
		r := open(t)
		first, err := r.CreateMessage(ctx, model.Message{SenderID: "u2", ReceiverID: "u1", Content: "found it?", CreatedAt: t0})
		require.NoError(t, err)
		_, err = r.CreateMessage(ctx, model.Message{SenderID: "u1", ReceiverID: "u2", Content: "yes!", CreatedAt: t0.Add(time.Minute)})
		require.NoError(t, err)
		_, err = r.CreateMessage(ctx, model.Message{SenderID: "u3", ReceiverID: "u1", Content: "hello", CreatedAt: t0.Add(2 * time.Minute)})
		require.NoError(t, err)

		inbox, err := r.ListMessages(ctx, MessageFilter{UserID: "u1"})
		require.NoError(t, err)
		require.Len(t, inbox, 3)
		assert.Equal(t, "hello", inbox[0].Content)

		thread, err := r.ListMessages(ctx, MessageFilter{UserID: "u1", PeerID: "u2", OldestFirst: true})
		require.NoError(t, err)
		require.Len(t, thread, 2)
		assert.Equal(t, first.ID, thread[0].ID)

		unread, err := r.CountMessages(ctx, MessageFilter{ReceiverID: "u1", UnreadOnly: true})
		require.NoError(t, err)
		assert.Equal(t, 2, unread)

		n, err := r.MarkRead(ctx, MessageFilter{SenderID: "u2", ReceiverID: "u1"})
		require.NoError(t, err)
		assert.Equal(t, 1, n)

		n, err = r.MarkRead(ctx, MessageFilter{SenderID: "u2", ReceiverID: "u1"})
		require.NoError(t, err)
		assert.Equal(t, 0, n, "already read")

		unread, err = r.CountMessages(ctx, MessageFilter{ReceiverID: "u1", UnreadOnly: true})
		require.NoError(t, err)
		assert.Equal(t, 1, unread)
	})
}

func TestMemoryStore(t *testing.T) {
	runRepositoryTests(t, func(t *testing.T) Repository { return NewMemoryStore() })
}

func TestItemFilterLimitAfterSort(t *testing.T) {
	items := []model.Item{
		{ID: "a", CreatedAt: t0},
		{ID: "b", CreatedAt: t0.Add(2 * time.Hour)},
		{ID: "c", CreatedAt: t0.Add(time.Hour)},
	}
	got := ItemFilter{Limit: 2}.Apply(items)
	require.Len(t, got, 2)
	assert.Equal(t, "b", got[0].ID)
	assert.Equal(t, "c", got[1].ID)
}

func TestItemFilterCreatedAfter(t *testing.T) {
	items := []model.Item{{ID: "a", CreatedAt: t0}, {ID: "b", CreatedAt: t0.Add(-time.Hour)}}
	got := ItemFilter{CreatedAfter: t0}.Apply(items)
	require.Len(t, got, 1)
	assert.Equal(t, "a", got[0].ID)
}

func TestItemUpdateApplyTo(t *testing.T) {
	it := model.Item{Title: "a", Location: "x"}
	loc := "y"
	ItemUpdate{Location: &loc}.ApplyTo(&it, t0)
	assert.Equal(t, "a", it.Title)
	assert.Equal(t, "y", it.Location)
	assert.Equal(t, t0, it.UpdatedAt)
}
