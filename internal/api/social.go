package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"lostfound/internal/matching"
	"lostfound/internal/model"
	"lostfound/internal/storage"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) listMatches(w http.ResponseWriter, r *http.Request) {
	ms, err := h.matching.ListForUser(r.Context(), userID(r), model.MatchStatus(r.URL.Query().Get("status")))
	if err != nil {
		fail(w, r, err)
		return
	}
	ok(w, ms)
}

func (h *Handler) decide(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Status model.MatchStatus `json:"status"`
	}
	if err := decode(r, &body); err != nil {
		fail(w, r, err)
		return
	}
	m, err := h.matching.Decide(r.Context(), userID(r), chi.URLParam(r, "id"), body.Status)
	if err != nil {
		fail(w, r, err)
		return
	}
	ok(w, m)
}

func (h *Handler) inbox(w http.ResponseWriter, r *http.Request) {
	ms, err := h.messaging.Inbox(r.Context(), userID(r))
	if err != nil {
		fail(w, r, err)
		return
	}
	ok(w, ms)
}

func (h *Handler) send(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ReceiverID string `json:"receiver_id"`
		ItemID     string `json:"item_id"`
		Content    string `json:"content"`
	}
	if err := decode(r, &body); err != nil {
		fail(w, r, err)
		return
	}
	m, err := h.messaging.Send(r.Context(), userID(r), body.ReceiverID, body.ItemID, body.Content)
	if err != nil {
		fail(w, r, err)
		return
	}
	created(w, m)
}

func (h *Handler) thread(w http.ResponseWriter, r *http.Request) {
	ms, err := h.messaging.Thread(r.Context(), userID(r), chi.URLParam(r, "userID"))
	if err != nil {
		fail(w, r, err)
		return
	}
	ok(w, ms)
}

func (h *Handler) markRead(w http.ResponseWriter, r *http.Request) {
	if err := h.messaging.MarkRead(r.Context(), userID(r), chi.URLParam(r, "id")); err != nil {
		fail(w, r, err)
		return
	}
	ok(w, map[string]bool{"read": true})
}

func (h *Handler) getProfile(w http.ResponseWriter, r *http.Request) {
	p, err := h.repo.GetProfile(r.Context(), userID(r))
	if err != nil {
		fail(w, r, err)
		return
	}
	ok(w, p)
}

func (h *Handler) putProfile(w http.ResponseWriter, r *http.Request) {
	var body struct {
		FullName  string `json:"full_name"`
		Phone     string `json:"phone"`
		AvatarURL string `json:"avatar_url"`
	}
	if err := decode(r, &body); err != nil {
		fail(w, r, err)
		return
	}
	if strings.TrimSpace(body.FullName) == "" {
		fail(w, r, &matching.ValidationError{Fields: map[string]string{"full_name": "required"}})
		return
	}
	p, err := h.repo.UpsertProfile(r.Context(), model.Profile{
		UserID:    userID(r),
		FullName:  strings.TrimSpace(body.FullName),
		Phone:     strings.TrimSpace(body.Phone),
		AvatarURL: strings.TrimSpace(body.AvatarURL),
	})
	if err != nil {
		fail(w, r, err)
		return
	}
	ok(w, p)
}

// Dashboard is the signed-in landing page summary.
type Dashboard struct {
	Profile        *model.Profile `json:"profile"`
	Items          []model.Item   `json:"items"`
	OpenItems      int            `json:"open_items"`
	PendingMatches int            `json:"pending_matches"`
	UnreadMessages int            `json:"unread_messages"`
}

func (h *Handler) dashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	uid := userID(r)
	var d Dashboard

	p, err := h.repo.GetProfile(ctx, uid)
	switch {
	case err == nil:
		d.Profile = &p
	case !errors.Is(err, storage.ErrNotFound):
		fail(w, r, err)
		return
	}
	if d.Items, err = h.repo.ListItems(ctx, storage.ItemFilter{UserID: uid}); err != nil {
		fail(w, r, err)
		return
	}
	open, err := h.repo.ListItems(ctx, storage.ItemFilter{Resolved: storage.Bool(false)})
	if err != nil {
		fail(w, r, err)
		return
	}
	d.OpenItems = len(open)
	if d.PendingMatches, err = h.matching.PendingCount(ctx, uid); err != nil {
		fail(w, r, fmt.Errorf("pending matches: %w", err))
		return
	}
	if d.UnreadMessages, err = h.messaging.UnreadCount(ctx, uid); err != nil {
		fail(w, r, fmt.Errorf("unread messages: %w", err))
		return
	}
	ok(w, d)
}
