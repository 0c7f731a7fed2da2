package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"lostfound/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Schema creates the tables used by PostgresStore. Safe to run repeatedly.
const Schema = `
CREATE TABLE IF NOT EXISTS items (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	title TEXT NOT NULL,
	description TEXT NOT NULL,
	category TEXT NOT NULL,
	status TEXT NOT NULL CHECK (status IN ('lost', 'found')),
	location TEXT NOT NULL,
	date_lost_found TEXT NOT NULL,
	contact_info TEXT NOT NULL,
	image_url TEXT NOT NULL DEFAULT '',
	is_resolved BOOLEAN NOT NULL DEFAULT FALSE,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS items_created_at_idx ON items (created_at DESC);

CREATE TABLE IF NOT EXISTS profiles (
	id TEXT NOT NULL,
	user_id TEXT PRIMARY KEY,
	full_name TEXT NOT NULL,
	phone TEXT NOT NULL DEFAULT '',
	avatar_url TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS matches (
	id TEXT PRIMARY KEY,
	lost_item_id TEXT NOT NULL,
	found_item_id TEXT NOT NULL,
	lost_item_user_id TEXT NOT NULL,
	found_item_user_id TEXT NOT NULL,
	status TEXT NOT NULL,
	similarity_score INTEGER NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS messages (
	id TEXT PRIMARY KEY,
	sender_id TEXT NOT NULL,
	receiver_id TEXT NOT NULL,
	item_id TEXT NOT NULL DEFAULT '',
	content TEXT NOT NULL,
	is_read BOOLEAN NOT NULL DEFAULT FALSE,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);
`

type PostgresStore struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

// NewPostgresStore connects to dbURL. Call Migrate before first use on a new database.
func NewPostgresStore(ctx context.Context, dbURL string) (*PostgresStore, error) {
	// SQLAlchemy-style scheme
	if strings.HasPrefix(dbURL, "postgresql+psycopg:") {
		dbURL = "postgres:" + strings.TrimPrefix(dbURL, "postgresql+psycopg:")
	}
	config, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, err
	}
	return &PostgresStore{pool: pool, now: func() time.Time { return time.Now().UTC() }}, nil
}

// Migrate applies Schema.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, Schema)
	return err
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

// where accumulates numbered placeholders.
type where struct {
	conds []string
	args  []any
}

func (w *where) add(cond string, arg any) {
	w.args = append(w.args, arg)
	w.conds = append(w.conds, strings.ReplaceAll(cond, "?", fmt.Sprintf("$%d", len(w.args))))
}

func (w *where) String() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, " AND ")
}

const itemColumns = `id, user_id, title, description, category, status, location,
	date_lost_found, contact_info, image_url, is_resolved, created_at, updated_at`

// itemQuery renders f as a parameterised SELECT.
func itemQuery(f ItemFilter) (string, []any) {
	var w where
	if f.UserID != "" {
		w.add("user_id = ?", f.UserID)
	}
	if f.Status != "" {
		w.add("status = ?", string(f.Status))
	}
	if f.Category != "" {
		w.add("category = ?", f.Category)
	}
	if f.Resolved != nil {
		w.add("is_resolved = ?", *f.Resolved)
	}
	if !f.CreatedAfter.IsZero() {
		w.add("created_at >= ?", f.CreatedAfter)
	}
	if f.Text != "" {
		w.add("(title ILIKE ? OR description ILIKE ? OR location ILIKE ? OR category ILIKE ?)",
			"%"+escapeLike(f.Text)+"%")
	}
	q := "SELECT " + itemColumns + " FROM items" + w.String() + " ORDER BY created_at DESC"
	if f.Limit > 0 {
		w.args = append(w.args, f.Limit)
		q += fmt.Sprintf(" LIMIT $%d", len(w.args))
	}
	return q, w.args
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func scanItem(row pgx.Row) (model.Item, error) {
	var it model.Item
	var status string
	err := row.Scan(&it.ID, &it.UserID, &it.Title, &it.Description, &it.Category, &status,
		&it.Location, &it.DateLostFound, &it.ContactInfo, &it.ImageURL, &it.IsResolved,
		&it.CreatedAt, &it.UpdatedAt)
	it.Status = model.Status(status)
	return it, err
}

func notFound(err error, kind, id string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s %s: %w", kind, id, ErrNotFound)
	}
	return err
}

func (s *PostgresStore) ListItems(ctx context.Context, f ItemFilter) ([]model.Item, error) {
	q, args := itemQuery(f)
	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func (s *PostgresStore) GetItem(ctx context.Context, id string) (model.Item, error) {
	row := s.pool.QueryRow(ctx, "SELECT "+itemColumns+" FROM items WHERE id = $1", id)
	it, err := scanItem(row)
	if err != nil {
		return model.Item{}, notFound(err, "item", id)
	}
	return it, nil
}

func (s *PostgresStore) CreateItem(ctx context.Context, it model.Item) (model.Item, error) {
	stamp(&it.ID, &it.CreatedAt, &it.UpdatedAt, kindItem, s.now())
	_, err := s.pool.Exec(ctx, `INSERT INTO items (`+itemColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		it.ID, it.UserID, it.Title, it.Description, it.Category, string(it.Status), it.Location,
		it.DateLostFound, it.ContactInfo, it.ImageURL, it.IsResolved, it.CreatedAt, it.UpdatedAt)
	if err != nil {
		return model.Item{}, err
	}
	return it, nil
}

func (s *PostgresStore) UpdateItem(ctx context.Context, id string, u ItemUpdate) (model.Item, error) {
	it, err := s.GetItem(ctx, id)
	if err != nil {
		return model.Item{}, err
	}
	u.ApplyTo(&it, s.now())
	_, err = s.pool.Exec(ctx, `UPDATE items SET title = $2, description = $3, category = $4,
		location = $5, date_lost_found = $6, contact_info = $7, image_url = $8,
		is_resolved = $9, updated_at = $10 WHERE id = $1`,
		it.ID, it.Title, it.Description, it.Category, it.Location, it.DateLostFound,
		it.ContactInfo, it.ImageURL, it.IsResolved, it.UpdatedAt)
	if err != nil {
		return model.Item{}, err
	}
	return it, nil
}

func (s *PostgresStore) GetProfile(ctx context.Context, userID string) (model.Profile, error) {
	var p model.Profile
	err := s.pool.QueryRow(ctx, `SELECT id, user_id, full_name, phone, avatar_url, created_at, updated_at
		FROM profiles WHERE user_id = $1`, userID).
		Scan(&p.ID, &p.UserID, &p.FullName, &p.Phone, &p.AvatarURL, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return model.Profile{}, notFound(err, "profile", userID)
	}
	return p, nil
}

func (s *PostgresStore) UpsertProfile(ctx context.Context, p model.Profile) (model.Profile, error) {
	stamp(&p.ID, &p.CreatedAt, &p.UpdatedAt, "profile", s.now())
	err := s.pool.QueryRow(ctx, `INSERT INTO profiles (id, user_id, full_name, phone, avatar_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id) DO UPDATE SET full_name = EXCLUDED.full_name, phone = EXCLUDED.phone,
			avatar_url = EXCLUDED.avatar_url, updated_at = $8
		RETURNING id, created_at, updated_at`,
		p.ID, p.UserID, p.FullName, p.Phone, p.AvatarURL, p.CreatedAt, p.UpdatedAt, s.now()).
		Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return model.Profile{}, err
	}
	return p, nil
}

const matchColumns = `id, lost_item_id, found_item_id, lost_item_user_id, found_item_user_id,
	status, similarity_score, created_at, updated_at`

func matchQuery(f MatchFilter) (string, []any) {
	var w where
	if f.UserID != "" {
		w.add("(lost_item_user_id = ? OR found_item_user_id = ?)", f.UserID)
	}
	if f.Status != "" {
		w.add("status = ?", string(f.Status))
	}
	if f.LostItemID != "" {
		w.add("lost_item_id = ?", f.LostItemID)
	}
	if f.FoundItemID != "" {
		w.add("found_item_id = ?", f.FoundItemID)
	}
	return "SELECT " + matchColumns + " FROM matches" + w.String() + " ORDER BY created_at DESC", w.args
}

func scanMatch(row pgx.Row) (model.Match, error) {
	var m model.Match
	var status string
	err := row.Scan(&m.ID, &m.LostItemID, &m.FoundItemID, &m.LostItemUserID, &m.FoundItemUserID,
		&status, &m.SimilarityScore, &m.CreatedAt, &m.UpdatedAt)
	m.Status = model.MatchStatus(status)
	return m, err
}

func (s *PostgresStore) ListMatches(ctx context.Context, f MatchFilter) ([]model.Match, error) {
	q, args := matchQuery(f)
	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Match
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *PostgresStore) GetMatch(ctx context.Context, id string) (model.Match, error) {
	m, err := scanMatch(s.pool.QueryRow(ctx, "SELECT "+matchColumns+" FROM matches WHERE id = $1", id))
	if err != nil {
		return model.Match{}, notFound(err, "match", id)
	}
	return m, nil
}

func (s *PostgresStore) CreateMatch(ctx context.Context, m model.Match) (model.Match, error) {
	stamp(&m.ID, &m.CreatedAt, &m.UpdatedAt, kindMatch, s.now())
	if m.Status == "" {
		m.Status = model.MatchPending
	}
	_, err := s.pool.Exec(ctx, `INSERT INTO matches (`+matchColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		m.ID, m.LostItemID, m.FoundItemID, m.LostItemUserID, m.FoundItemUserID,
		string(m.Status), m.SimilarityScore, m.CreatedAt, m.UpdatedAt)
	if err != nil {
		return model.Match{}, err
	}
	return m, nil
}

func (s *PostgresStore) UpdateMatchStatus(ctx context.Context, id string, status model.MatchStatus) (model.Match, error) {
	m, err := scanMatch(s.pool.QueryRow(ctx, `UPDATE matches SET status = $2, updated_at = $3
		WHERE id = $1 RETURNING `+matchColumns, id, string(status), s.now()))
	if err != nil {
		return model.Match{}, notFound(err, "match", id)
	}
	return m, nil
}

func (s *PostgresStore) CountMatches(ctx context.Context, f MatchFilter) (int, error) {
	q, args := matchQuery(f)
	var n int
	err := s.pool.QueryRow(ctx, "SELECT count(*) FROM ("+q+") AS m", args...).Scan(&n)
	return n, err
}

const messageColumns = `id, sender_id, receiver_id, item_id, content, is_read, created_at, updated_at`

func messageWhere(f MessageFilter) *where {
	w := &where{}
	if f.ID != "" {
		w.add("id = ?", f.ID)
	}
	if f.UserID != "" {
		if f.PeerID != "" {
			w.args = append(w.args, f.UserID, f.PeerID)
			u, p := len(w.args)-1, len(w.args)
			w.conds = append(w.conds, fmt.Sprintf(
				"((sender_id = $%d AND receiver_id = $%d) OR (sender_id = $%d AND receiver_id = $%d))", u, p, p, u))
		} else {
			w.add("(sender_id = ? OR receiver_id = ?)", f.UserID)
		}
	}
	if f.SenderID != "" {
		w.add("sender_id = ?", f.SenderID)
	}
	if f.ReceiverID != "" {
		w.add("receiver_id = ?", f.ReceiverID)
	}
	if f.UnreadOnly {
		w.conds = append(w.conds, "NOT is_read")
	}
	return w
}

func messageQuery(f MessageFilter) (string, []any) {
	w := messageWhere(f)
	order := " ORDER BY created_at DESC"
	if f.OldestFirst {
		order = " ORDER BY created_at ASC"
	}
	return "SELECT " + messageColumns + " FROM messages" + w.String() + order, w.args
}

func (s *PostgresStore) ListMessages(ctx context.Context, f MessageFilter) ([]model.Message, error) {
	q, args := messageQuery(f)
	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Message
	for rows.Next() {
		var m model.Message
		if err := rows.Scan(&m.ID, &m.SenderID, &m.ReceiverID, &m.ItemID, &m.Content,
			&m.IsRead, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *PostgresStore) CreateMessage(ctx context.Context, m model.Message) (model.Message, error) {
	stamp(&m.ID, &m.CreatedAt, &m.UpdatedAt, kindMessage, s.now())
	_, err := s.pool.Exec(ctx, `INSERT INTO messages (`+messageColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		m.ID, m.SenderID, m.ReceiverID, m.ItemID, m.Content, m.IsRead, m.CreatedAt, m.UpdatedAt)
	if err != nil {
		return model.Message{}, err
	}
	return m, nil
}

func (s *PostgresStore) MarkRead(ctx context.Context, f MessageFilter) (int, error) {
	f.UnreadOnly = true
	w := messageWhere(f)
	w.args = append(w.args, s.now())
	q := fmt.Sprintf("UPDATE messages SET is_read = TRUE, updated_at = $%d%s", len(w.args), w.String())
	tag, err := s.pool.Exec(ctx, q, w.args...)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

func (s *PostgresStore) CountMessages(ctx context.Context, f MessageFilter) (int, error) {
	w := messageWhere(f)
	var n int
	err := s.pool.QueryRow(ctx, "SELECT count(*) FROM messages"+w.String(), w.args...).Scan(&n)
	return n, err
}
