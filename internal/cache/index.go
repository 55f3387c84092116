package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// index wraps the cache_files table.
type index struct {
	db *sql.DB
}

type fileRow struct {
	name      string
	path      string
	binary    bool
	size      int64
	fetchedAt time.Time
}

func (ix *index) upsert(ctx context.Context, kind string, id int64, name, path string, binary bool, size int64) error {
	_, err := ix.db.ExecContext(ctx, `
		INSERT INTO cache_files (kind, object_id, name, path, binary, size, fetched_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (kind, object_id, name) DO UPDATE SET
			path = excluded.path,
			binary = excluded.binary,
			size = excluded.size,
			fetched_at = excluded.fetched_at`,
		kind, id, name, path, binary, size, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("index %s/%d/%s: %w", kind, id, name, err)
	}
	return nil
}

func (ix *index) file(ctx context.Context, kind string, id int64, name string) (*fileRow, error) {
	row := ix.db.QueryRowContext(ctx, `
		SELECT name, path, binary, size, fetched_at FROM cache_files
		WHERE kind = ? AND object_id = ? AND name = ?`, kind, id, name)

	fr, err := scanFileRow(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lookup %s/%d/%s: %w", kind, id, name, err)
	}
	return fr, nil
}

func (ix *index) files(ctx context.Context, kind string, id int64) ([]fileRow, error) {
	rows, err := ix.db.QueryContext(ctx, `
		SELECT name, path, binary, size, fetched_at FROM cache_files
		WHERE kind = ? AND object_id = ? ORDER BY name`, kind, id)
	if err != nil {
		return nil, fmt.Errorf("list %s/%d: %w", kind, id, err)
	}
	defer rows.Close()

	var out []fileRow
	for rows.Next() {
		fr, err := scanFileRow(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, *fr)
	}
	return out, rows.Err()
}

func scanFileRow(scan func(...any) error) (*fileRow, error) {
	var fr fileRow
	var fetchedAt string
	if err := scan(&fr.name, &fr.path, &fr.binary, &fr.size, &fetchedAt); err != nil {
		return nil, err
	}
	fr.fetchedAt, _ = time.Parse(time.RFC3339, fetchedAt)
	return &fr, nil
}

// Object summarizes one cached object for listings.
type Object struct {
	Kind      string
	ID        int64
	Files     int
	Size      int64
	FetchedAt time.Time
}

// List returns every cached object, oldest fetch first.
func (s *Store) List(ctx context.Context) ([]Object, error) {
	rows, err := s.idx.db.QueryContext(ctx, `
		SELECT kind, object_id, COUNT(*), SUM(size), MAX(fetched_at)
		FROM cache_files GROUP BY kind, object_id ORDER BY MAX(fetched_at)`)
	if err != nil {
		return nil, fmt.Errorf("list cache: %w", err)
	}
	defer rows.Close()

	var out []Object
	for rows.Next() {
		var o Object
		var fetchedAt string
		if err := rows.Scan(&o.Kind, &o.ID, &o.Files, &o.Size, &fetchedAt); err != nil {
			return nil, err
		}
		o.FetchedAt, _ = time.Parse(time.RFC3339, fetchedAt)
		out = append(out, o)
	}
	return out, rows.Err()
}

// Clear removes cached objects and their index rows. An empty kind clears
// everything; id < 0 clears every object of the kind. Returns the number
// of objects removed.
func (s *Store) Clear(ctx context.Context, kind string, id int64) (int, error) {
	objects, err := s.List(ctx)
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, o := range objects {
		if kind != "" && o.Kind != kind {
			continue
		}
		if id >= 0 && o.ID != id {
			continue
		}

		dir := s.objectDir(o.Kind, o.ID)
		if ok, _ := s.fs.Exists(ctx, dir); ok {
			if err := s.fs.Delete(ctx, dir); err != nil {
				return removed, fmt.Errorf("delete %s: %w", dir, err)
			}
		}
		if _, err := s.idx.db.ExecContext(ctx,
			"DELETE FROM cache_files WHERE kind = ? AND object_id = ?", o.Kind, o.ID); err != nil {
			return removed, fmt.Errorf("unindex %s %d: %w", o.Kind, o.ID, err)
		}
		removed++
	}
	return removed, nil
}
