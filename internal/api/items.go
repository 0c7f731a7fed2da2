package api

import (
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"

	"lostfound/internal/geo"
	"lostfound/internal/matching"
	"lostfound/internal/model"
	"lostfound/internal/search"
	"lostfound/internal/storage"

	"github.com/go-chi/chi/v5"
)

const maxListLimit = 200

func (h *Handler) listItems(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := storage.ItemFilter{
		UserID:   q.Get("user_id"),
		Status:   model.Status(q.Get("status")),
		Category: q.Get("category"),
		Limit:    50,
	}
	if f.Status != "" && !f.Status.Valid() {
		fail(w, r, fmt.Errorf("%w: unknown status %q", errBadRequest, f.Status))
		return
	}
	if v := q.Get("resolved"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			fail(w, r, fmt.Errorf("%w: resolved: %v", errBadRequest, err))
			return
		}
		f.Resolved = &b
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > maxListLimit {
			fail(w, r, fmt.Errorf("%w: limit must be 1..%d", errBadRequest, maxListLimit))
			return
		}
		f.Limit = n
	}
	items, err := h.repo.ListItems(r.Context(), f)
	if err != nil {
		fail(w, r, err)
		return
	}
	ok(w, items)
}

func (h *Handler) getItem(w http.ResponseWriter, r *http.Request) {
	it, err := h.repo.GetItem(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		fail(w, r, err)
		return
	}
	ok(w, it)
}

func (h *Handler) suggestions(w http.ResponseWriter, r *http.Request) {
	items, err := h.matching.SuggestFor(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		fail(w, r, err)
		return
	}
	ok(w, items)
}

func (h *Handler) reportLost(w http.ResponseWriter, r *http.Request) {
	var in matching.ItemInput
	if err := decode(r, &in); err != nil {
		fail(w, r, err)
		return
	}
	it, err := h.matching.ReportLost(r.Context(), userID(r), in)
	if err != nil {
		fail(w, r, err)
		return
	}
	created(w, it)
}

type foundReport struct {
	Item  model.Item   `json:"item"`
	Match *model.Match `json:"match,omitempty"`
}

func (h *Handler) reportFound(w http.ResponseWriter, r *http.Request) {
	var in matching.ItemInput
	if err := decode(r, &in); err != nil {
		fail(w, r, err)
		return
	}
	it, m, err := h.matching.ReportFound(r.Context(), userID(r), in, r.URL.Query().Get("reference"))
	if err != nil {
		fail(w, r, err)
		return
	}
	created(w, foundReport{Item: it, Match: m})
}

func (h *Handler) updateItem(w http.ResponseWriter, r *http.Request) {
	var u storage.ItemUpdate
	if err := decode(r, &u); err != nil {
		fail(w, r, err)
		return
	}
	it, err := h.matching.UpdateItem(r.Context(), userID(r), chi.URLParam(r, "id"), u)
	if err != nil {
		fail(w, r, err)
		return
	}
	ok(w, it)
}

func (h *Handler) searchItems(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := search.Request{
		Query:     q.Get("q"),
		Category:  q.Get("category"),
		Status:    model.Status(q.Get("status")),
		TimeRange: q.Get("time_range"),
	}
	loc, err := parsePoint(q.Get("lat"), q.Get("lng"))
	if err != nil {
		fail(w, r, err)
		return
	}
	req.UserLocation = loc
	resp, err := h.search.Search(r.Context(), req)
	if err != nil {
		fail(w, r, err)
		return
	}
	ok(w, resp)
}

// parsePoint reads an optional lat/lng pair; both or neither must be set.
func parsePoint(lat, lng string) (*geo.Point, error) {
	lat, lng = strings.TrimSpace(lat), strings.TrimSpace(lng)
	if lat == "" && lng == "" {
		return nil, nil
	}
	if lat == "" || lng == "" {
		return nil, fmt.Errorf("%w: lat and lng go together", errBadRequest)
	}
	la, err := strconv.ParseFloat(lat, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: lat: %v", errBadRequest, err)
	}
	ln, err := strconv.ParseFloat(lng, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: lng: %v", errBadRequest, err)
	}
	if !finite(la) || !finite(ln) {
		return nil, fmt.Errorf("%w: lat and lng must be finite numbers", errBadRequest)
	}
	return &geo.Point{Lat: la, Lng: ln}, nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
