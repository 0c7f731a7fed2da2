package search

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"lostfound/internal/geo"
	"lostfound/internal/model"
	"lostfound/internal/scoring"
	"lostfound/internal/storage"
)

// Time range filters accepted by Request.TimeRange.
const (
	RangeAll   = ""
	RangeToday = "today"
	RangeWeek  = "week"
	RangeMonth = "month"
)

// ErrBadRequest is wrapped by errors for filters the service does not understand.
var ErrBadRequest = errors.New("search: bad request")

// Request describes one search. Zero fields do not filter.
type Request struct {
	Query        string
	Category     string
	Status       model.Status
	TimeRange    string
	UserLocation *geo.Point
}

// Response carries the three views the search page renders.
type Response struct {
	// Results are every match in repository order (newest first), scored.
	Results []model.ScoredItem `json:"results"`
	// SmartMatches are the best-scoring results, highest first.
	SmartMatches []model.ScoredItem `json:"smart_matches"`
	// Nearby are results within the radius of the user, closest first.
	Nearby []model.ScoredItem `json:"nearby"`
}

// Options tune ranking. A nil Threshold and zero values elsewhere fall back
// to the package defaults.
type Options struct {
	Threshold *int
	TopN      int
	RadiusKm  float64
	Limit     int
}

type Service struct {
	items     storage.ItemRepository
	resolver  geo.Resolver
	opts      Options
	threshold int
	now       func() time.Time
}

func New(items storage.ItemRepository, resolver geo.Resolver, opts Options) *Service {
	threshold := scoring.DefaultThreshold
	if opts.Threshold != nil {
		threshold = *opts.Threshold
	}
	if opts.TopN == 0 {
		opts.TopN = scoring.DefaultTopN
	}
	if opts.RadiusKm == 0 {
		opts.RadiusKm = 10
	}
	if opts.Limit == 0 {
		opts.Limit = 50
	}
	if resolver == nil {
		resolver = geo.NewCityTable()
	}
	return &Service{items: items, resolver: resolver, opts: opts, threshold: threshold, now: time.Now}
}

// WithClock overrides the time source used for recency and time ranges.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Since returns the earliest creation time admitted by timeRange, or the
// zero time for no bound.
func Since(timeRange string, now time.Time) (time.Time, error) {
	switch strings.ToLower(strings.TrimSpace(timeRange)) {
	case RangeAll, "all":
		return time.Time{}, nil
	case RangeToday:
		y, m, d := now.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, now.Location()), nil
	case RangeWeek:
		return now.AddDate(0, 0, -7), nil
	case RangeMonth:
		return now.AddDate(0, -1, 0), nil
	}
	return time.Time{}, fmt.Errorf("%w: unknown time range %q", ErrBadRequest, timeRange)
}

func (s *Service) Search(ctx context.Context, req Request) (Response, error) {
	now := s.now()
	since, err := Since(req.TimeRange, now)
	if err != nil {
		return Response{}, err
	}
	if req.Status != "" && !req.Status.Valid() {
		return Response{}, fmt.Errorf("%w: unknown status %q", ErrBadRequest, req.Status)
	}
	category := req.Category
	if strings.EqualFold(category, "all") {
		category = ""
	}
	query := strings.TrimSpace(req.Query)

	items, err := s.items.ListItems(ctx, storage.ItemFilter{
		Status:       req.Status,
		Category:     category,
		Resolved:     storage.Bool(false),
		CreatedAfter: since,
		Text:         query,
		Limit:        s.opts.Limit,
	})
	if err != nil {
		return Response{}, fmt.Errorf("list items: %w", err)
	}

	results := scoring.Annotate(items, query, now)
	if req.UserLocation != nil {
		for i := range results {
			p, _ := s.resolver.Resolve(results[i].Location)
			d := geo.DistanceBetween(req.UserLocation, p)
			if math.IsInf(d, 0) || math.IsNaN(d) {
				continue
			}
			results[i].DistanceKm = &d
		}
	}

	return Response{
		Results:      results,
		SmartMatches: scoring.SmartMatches(results, s.threshold, s.opts.TopN),
		Nearby:       Nearby(results, s.opts.RadiusKm),
	}, nil
}

// Nearby returns the items with a known distance below radiusKm, closest first.
func Nearby(items []model.ScoredItem, radiusKm float64) []model.ScoredItem {
	out := make([]model.ScoredItem, 0)
	for _, it := range items {
		if it.DistanceKm != nil && *it.DistanceKm < radiusKm && !math.IsNaN(*it.DistanceKm) {
			out = append(out, it)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return *out[i].DistanceKm < *out[j].DistanceKm
	})
	return out
}
