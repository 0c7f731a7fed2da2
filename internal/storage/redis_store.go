package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"lostfound/internal/model"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps records as JSON strings, indexed per kind by a sorted set
// scored on creation time.
type RedisStore struct {
	rdb *redis.Client
	now func() time.Time
}

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb, now: func() time.Time { return time.Now().UTC() }}
}

const (
	kindItem    = "item"
	kindMatch   = "match"
	kindMessage = "message"
)

func recordKey(kind, id string) string {
	return fmt.Sprintf("lostfound:%s:%s", kind, id)
}

func indexKey(kind string) string {
	return fmt.Sprintf("lostfound:index:%s", kind)
}

func profileKey(userID string) string {
	return fmt.Sprintf("lostfound:profile:%s", userID)
}

func (s *RedisStore) Close() error {
	return s.rdb.Close()
}

// Stats counts the indexed records of each kind.
func (s *RedisStore) Stats(ctx context.Context) (map[string]int64, error) {
	kinds := []string{kindItem, kindMatch, kindMessage}
	cmds := make([]*redis.IntCmd, len(kinds))
	if _, err := s.rdb.Pipelined(ctx, func(p redis.Pipeliner) error {
		for i, k := range kinds {
			cmds[i] = p.ZCard(ctx, indexKey(k))
		}
		return nil
	}); err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(kinds))
	for i, k := range kinds {
		out[k] = cmds[i].Val()
	}
	return out, nil
}

// put stores v under kind/id and (re)indexes it by created.
func (s *RedisStore) put(ctx context.Context, kind, id string, created time.Time, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = s.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Set(ctx, recordKey(kind, id), b, 0)
		p.ZAdd(ctx, indexKey(kind), redis.Z{Score: float64(created.UnixMilli()), Member: id})
		return nil
	})
	return err
}

func (s *RedisStore) get(ctx context.Context, kind, id string, v any) error {
	b, err := s.rdb.Get(ctx, recordKey(kind, id)).Bytes()
	if err == redis.Nil {
		return fmt.Errorf("%s %s: %w", kind, id, ErrNotFound)
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(b, v)
}

// scan decodes every record of kind in insertion (creation) order.
func scan[T any](ctx context.Context, rdb *redis.Client, kind string) ([]T, error) {
	ids, err := rdb.ZRange(ctx, indexKey(kind), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = recordKey(kind, id)
	}
	vals, err := rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(vals))
	for i, v := range vals {
		str, ok := v.(string)
		if !ok {
			// index entry without a record
			continue
		}
		var rec T
		if err := json.Unmarshal([]byte(str), &rec); err != nil {
			return nil, fmt.Errorf("decode %s %s: %w", kind, ids[i], err)
		}
		out = append(out, rec)
	}
	return out, nil
}

func (s *RedisStore) ListItems(ctx context.Context, f ItemFilter) ([]model.Item, error) {
	items, err := scan[model.Item](ctx, s.rdb, kindItem)
	if err != nil {
		return nil, err
	}
	return f.Apply(items), nil
}

func (s *RedisStore) GetItem(ctx context.Context, id string) (model.Item, error) {
	var it model.Item
	err := s.get(ctx, kindItem, id, &it)
	return it, err
}

func (s *RedisStore) CreateItem(ctx context.Context, it model.Item) (model.Item, error) {
	stamp(&it.ID, &it.CreatedAt, &it.UpdatedAt, kindItem, s.now())
	if err := s.put(ctx, kindItem, it.ID, it.CreatedAt, it); err != nil {
		return model.Item{}, err
	}
	return it, nil
}

func (s *RedisStore) UpdateItem(ctx context.Context, id string, u ItemUpdate) (model.Item, error) {
	it, err := s.GetItem(ctx, id)
	if err != nil {
		return model.Item{}, err
	}
	u.ApplyTo(&it, s.now())
	if err := s.put(ctx, kindItem, it.ID, it.CreatedAt, it); err != nil {
		return model.Item{}, err
	}
	return it, nil
}

func (s *RedisStore) GetProfile(ctx context.Context, userID string) (model.Profile, error) {
	var p model.Profile
	b, err := s.rdb.Get(ctx, profileKey(userID)).Bytes()
	if err == redis.Nil {
		return p, fmt.Errorf("profile %s: %w", userID, ErrNotFound)
	}
	if err != nil {
		return p, err
	}
	err = json.Unmarshal(b, &p)
	return p, err
}

func (s *RedisStore) UpsertProfile(ctx context.Context, p model.Profile) (model.Profile, error) {
	now := s.now()
	old, err := s.GetProfile(ctx, p.UserID)
	switch {
	case err == nil:
		p.ID = old.ID
		p.CreatedAt = old.CreatedAt
		p.UpdatedAt = now
	case !errors.Is(err, ErrNotFound):
		return model.Profile{}, err
	}
	stamp(&p.ID, &p.CreatedAt, &p.UpdatedAt, "profile", now)
	b, err := json.Marshal(p)
	if err != nil {
		return model.Profile{}, err
	}
	if err := s.rdb.Set(ctx, profileKey(p.UserID), b, 0).Err(); err != nil {
		return model.Profile{}, err
	}
	return p, nil
}

func (s *RedisStore) ListMatches(ctx context.Context, f MatchFilter) ([]model.Match, error) {
	ms, err := scan[model.Match](ctx, s.rdb, kindMatch)
	if err != nil {
		return nil, err
	}
	return f.Apply(ms), nil
}

func (s *RedisStore) GetMatch(ctx context.Context, id string) (model.Match, error) {
	var m model.Match
	err := s.get(ctx, kindMatch, id, &m)
	return m, err
}

func (s *RedisStore) CreateMatch(ctx context.Context, m model.Match) (model.Match, error) {
	stamp(&m.ID, &m.CreatedAt, &m.UpdatedAt, kindMatch, s.now())
	if m.Status == "" {
		m.Status = model.MatchPending
	}
	if err := s.put(ctx, kindMatch, m.ID, m.CreatedAt, m); err != nil {
		return model.Match{}, err
	}
	return m, nil
}

func (s *RedisStore) UpdateMatchStatus(ctx context.Context, id string, status model.MatchStatus) (model.Match, error) {
	m, err := s.GetMatch(ctx, id)
	if err != nil {
		return model.Match{}, err
	}
	m.Status = status
	m.UpdatedAt = s.now()
	if err := s.put(ctx, kindMatch, m.ID, m.CreatedAt, m); err != nil {
		return model.Match{}, err
	}
	return m, nil
}

func (s *RedisStore) CountMatches(ctx context.Context, f MatchFilter) (int, error) {
	ms, err := s.ListMatches(ctx, f)
	return len(ms), err
}

func (s *RedisStore) ListMessages(ctx context.Context, f MessageFilter) ([]model.Message, error) {
	ms, err := scan[model.Message](ctx, s.rdb, kindMessage)
	if err != nil {
		return nil, err
	}
	return f.Apply(ms), nil
}

func (s *RedisStore) CreateMessage(ctx context.Context, m model.Message) (model.Message, error) {
	stamp(&m.ID, &m.CreatedAt, &m.UpdatedAt, kindMessage, s.now())
	if err := s.put(ctx, kindMessage, m.ID, m.CreatedAt, m); err != nil {
		return model.Message{}, err
	}
	return m, nil
}

func (s *RedisStore) MarkRead(ctx context.Context, f MessageFilter) (int, error) {
	f.UnreadOnly = true
	ms, err := s.ListMessages(ctx, f)
	if err != nil {
		return 0, err
	}
	now := s.now()
	for _, m := range ms {
		m.IsRead = true
		m.UpdatedAt = now
		if err := s.put(ctx, kindMessage, m.ID, m.CreatedAt, m); err != nil {
			return 0, err
		}
	}
	return len(ms), nil
}

func (s *RedisStore) CountMessages(ctx context.Context, f MessageFilter) (int, error) {
	ms, err := s.ListMessages(ctx, f)
	return len(ms), err
}
