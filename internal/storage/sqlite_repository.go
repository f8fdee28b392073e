package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"hash/fnv"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const sqliteTimeLayout = time.RFC3339Nano

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(db *sql.DB) (*SQLiteRepository, error) {
	if db == nil {
		return nil, errors.New("storage: nil db")
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	return &SQLiteRepository{db: db}, nil
}

func OpenSQLite(path string) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	repo, err := NewSQLiteRepository(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

func (r *SQLiteRepository) DB() *sql.DB { return r.db }

func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

// UpsertItem writes the item row and replaces its child placements in one
// transaction, so readers never see a half-updated container.
func (r *SQLiteRepository) UpsertItem(ctx context.Context, in Item, children []ChildLink) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO items (id, name, kind, duration_ms, priority, sort_type, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			kind = excluded.kind,
			duration_ms = excluded.duration_ms,
			priority = excluded.priority,
			sort_type = excluded.sort_type`,
		in.ID, in.Name, in.Kind, in.DurationMS, in.Priority, in.SortType, mustTime(in.CreatedAt),
	); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM item_children WHERE parent_id = ?`, in.ID); err != nil {
		return err
	}
	for _, ch := range children {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO item_children (relationship_id, parent_id, child_id, offset_ms, complete)
			VALUES (?, ?, ?, ?, ?)`,
			ch.RelationshipID, in.ID, ch.ChildID, nullInt64(ch.OffsetMS), boolInt(ch.Complete),
		); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (r *SQLiteRepository) GetItem(ctx context.Context, id string) (Item, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, kind, duration_ms, priority, sort_type, created_at
		FROM items WHERE id = ?`, id)
	item, err := scanItem(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Item{}, ErrNotFound
		}
		return Item{}, err
	}
	return item, nil
}

func (r *SQLiteRepository) DeleteItem(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

func (r *SQLiteRepository) ListItems(ctx context.Context, filter ItemListFilter) ([]Item, error) {
	query := `SELECT id, name, kind, duration_ms, priority, sort_type, created_at FROM items`
	args := make([]any, 0, 3)
	if filter.Kind != "" {
		query += ` WHERE kind = ?`
		args = append(args, filter.Kind)
	}
	query += ` ORDER BY id ASC`
	query += applyPagination(&args, filter.Limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Item, 0)
	for rows.Next() {
		item, scanErr := scanItem(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) ListChildren(ctx context.Context, parentID string) ([]ChildLink, error) {
	return r.queryChildren(ctx, `
		SELECT relationship_id, parent_id, child_id, offset_ms, complete
		FROM item_children WHERE parent_id = ? ORDER BY offset_ms ASC, relationship_id ASC`, parentID)
}

func (r *SQLiteRepository) ListAllChildren(ctx context.Context) ([]ChildLink, error) {
	return r.queryChildren(ctx, `
		SELECT relationship_id, parent_id, child_id, offset_ms, complete
		FROM item_children ORDER BY parent_id ASC, offset_ms ASC, relationship_id ASC`)
}

func (r *SQLiteRepository) queryChildren(ctx context.Context, query string, args ...any) ([]ChildLink, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]ChildLink, 0)
	for rows.Next() {
		link, scanErr := scanChildLink(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		out = append(out, link)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) UpdateItemPriority(ctx context.Context, id string, priority int) error {
	res, err := r.db.ExecContext(ctx, `UPDATE items SET priority = ? WHERE id = ?`, priority, id)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

func (r *SQLiteRepository) CreateEntry(ctx context.Context, in CalendarEntry) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO base_calendar_entries (id, item_id, start_ms)
		VALUES (?, ?, ?)`,
		in.ID, in.ItemID, in.StartMS,
	)
	return err
}

func (r *SQLiteRepository) GetEntry(ctx context.Context, id string) (CalendarEntry, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, item_id, start_ms FROM base_calendar_entries WHERE id = ?`, id)
	var out CalendarEntry
	if err := row.Scan(&out.ID, &out.ItemID, &out.StartMS); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return CalendarEntry{}, ErrNotFound
		}
		return CalendarEntry{}, err
	}
	return out, nil
}

func (r *SQLiteRepository) UpdateEntry(ctx context.Context, in CalendarEntry) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE base_calendar_entries SET item_id = ?, start_ms = ? WHERE id = ?`,
		in.ItemID, in.StartMS, in.ID,
	)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

func (r *SQLiteRepository) DeleteEntry(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM base_calendar_entries WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

func (r *SQLiteRepository) ListEntries(ctx context.Context, filter EntryListFilter) ([]CalendarEntry, error) {
	query := `SELECT id, item_id, start_ms FROM base_calendar_entries`
	args := make([]any, 0, 3)
	if filter.ItemID != "" {
		query += ` WHERE item_id = ?`
		args = append(args, filter.ItemID)
	}
	query += ` ORDER BY start_ms ASC, id ASC`
	query += applyPagination(&args, filter.Limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]CalendarEntry, 0)
	for rows.Next() {
		var entry CalendarEntry
		if scanErr := rows.Scan(&entry.ID, &entry.ItemID, &entry.StartMS); scanErr != nil {
			return nil, scanErr
		}
		out = append(out, entry)
	}
	return out, rows.Err()
}

// ListOverlappingEntries returns every entry whose [start, start+duration)
// intersects [startMS, endMS), joined with the item fields the conflict
// detector needs.
func (r *SQLiteRepository) ListOverlappingEntries(ctx context.Context, startMS, endMS int64) ([]RootSpan, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT e.id, e.item_id, e.start_ms, e.start_ms + i.duration_ms, i.priority, i.name, i.kind, i.duration_ms
		FROM base_calendar_entries e
		JOIN items i ON i.id = e.item_id
		WHERE e.start_ms < ? AND e.start_ms + i.duration_ms > ?
		ORDER BY e.start_ms ASC, e.id ASC`,
		endMS, startMS,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]RootSpan, 0)
	for rows.Next() {
		var span RootSpan
		var name, kind string
		var durationMS int64
		if scanErr := rows.Scan(&span.EntryID, &span.ItemID, &span.StartMS, &span.EndMS, &span.Priority, &name, &kind, &durationMS); scanErr != nil {
			return nil, scanErr
		}
		span.TemplateHash = templateHash(name, kind, durationMS)
		out = append(out, span)
	}
	return out, rows.Err()
}

// templateHash fingerprints the reusable item definition so callers can tell
// occurrences of the same template apart from coincidentally-equal intervals.
func templateHash(name, kind string, durationMS int64) string {
	h := fnv.New64a()
	_, _ = h.Write([]byte(name))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte(kind))
	_, _ = h.Write([]byte{0})
	fmt.Fprintf(h, "%d", durationMS)
	return fmt.Sprintf("%016x", h.Sum64())
}

func nullInt64(v *int64) any {
	if v == nil {
		return nil
	}
	return *v
}

func mustTime(v time.Time) string {
	return v.UTC().Format(sqliteTimeLayout)
}

func parseRequiredTime(v string) (time.Time, error) {
	return time.Parse(sqliteTimeLayout, v)
}

func boolInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

func applyPagination(args *[]any, limit, offset int) string {
	clause := ""
	if limit > 0 {
		clause += " LIMIT ?"
		*args = append(*args, limit)
	}
	if offset > 0 {
		clause += " OFFSET ?"
		*args = append(*args, offset)
	}
	return clause
}

type scanner interface {
	Scan(dest ...any) error
}

func scanItem(s scanner) (Item, error) {
	var out Item
	var created string
	if err := s.Scan(&out.ID, &out.Name, &out.Kind, &out.DurationMS, &out.Priority, &out.SortType, &created); err != nil {
		return Item{}, err
	}
	createdAt, err := parseRequiredTime(created)
	if err != nil {
		return Item{}, err
	}
	out.CreatedAt = createdAt
	return out, nil
}

func scanChildLink(s scanner) (ChildLink, error) {
	var out ChildLink
	var offset sql.NullInt64
	var complete int
	if err := s.Scan(&out.RelationshipID, &out.ParentID, &out.ChildID, &offset, &complete); err != nil {
		return ChildLink{}, err
	}
	if offset.Valid {
		v := offset.Int64
		out.OffsetMS = &v
	}
	out.Complete = complete == 1
	return out, nil
}

func checkRowsAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
