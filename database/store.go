package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"quadtree-index/models"

	"github.com/lib/pq"
)

var (
	ErrNotFound       = errors.New("point set not found")
	ErrDuplicateEntry = errors.New("duplicate entry id in point set")
)

// Store persists point sets in Postgres
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Save creates or replaces a point set and all its entries in one transaction.
func (s *Store) Save(ctx context.Context, ps *models.PointSet) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO point_sets (name, min_x, min_y, max_x, max_y, max_entries, min_cell_size)
         VALUES ($1, $2, $3, $4, $5, $6, $7)
         ON CONFLICT (name) DO UPDATE SET min_x=$2, min_y=$3, max_x=$4, max_y=$5, max_entries=$6, min_cell_size=$7, updated_at=now()`,
		ps.Name, ps.Bounds.Min.X, ps.Bounds.Min.Y, ps.Bounds.Max.X, ps.Bounds.Max.Y, ps.MaxEntries, ps.MinCellSize,
	)
	if err != nil {
		return fmt.Errorf("saving point set %q: %w", ps.Name, err)
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM entries WHERE set_name=$1`, ps.Name); err != nil {
		return fmt.Errorf("clearing entries of %q: %w", ps.Name, err)
	}

	if len(ps.Entries) > 0 {
		ids := make([]int64, len(ps.Entries))
		xs := make([]float64, len(ps.Entries))
		ys := make([]float64, len(ps.Entries))
		for i, e := range ps.Entries {
			ids[i], xs[i], ys[i] = e.ID, e.X, e.Y
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO entries (set_name, id, x, y)
             SELECT $1, u.id, u.x, u.y FROM unnest($2::bigint[], $3::float8[], $4::float8[]) AS u(id, x, y)`,
			ps.Name, pq.Array(ids), pq.Array(xs), pq.Array(ys),
		)
		if err != nil {
			var pgErr *pq.Error
			if errors.As(err, &pgErr) && pgErr.Code == "23505" {
				return fmt.Errorf("saving entries of %q: %w", ps.Name, ErrDuplicateEntry)
			}
			return fmt.Errorf("saving entries of %q: %w", ps.Name, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Load fetches a point set with its entries ordered by id.
func (s *Store) Load(ctx context.Context, name string) (*models.PointSet, error) {
	ps := models.PointSet{Name: name}
	err := s.db.QueryRowContext(ctx,
		`SELECT min_x, min_y, max_x, max_y, max_entries, min_cell_size FROM point_sets WHERE name=$1`,
		name,
	).Scan(
		&ps.Bounds.Min.X,
		&ps.Bounds.Min.Y,
		&ps.Bounds.Max.X,
		&ps.Bounds.Max.Y,
		&ps.MaxEntries,
		&ps.MinCellSize,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("loading point set %q: %w", name, err)
	}

	rows, err := s.db.QueryContext(ctx, `SELECT id, x, y FROM entries WHERE set_name=$1 ORDER BY id`, name)
	if err != nil {
		return nil, fmt.Errorf("loading entries of %q: %w", name, err)
	}
	defer rows.Close()
	for rows.Next() {
		var e models.Entry
		if err := rows.Scan(&e.ID, &e.X, &e.Y); err != nil {
			return nil, fmt.Errorf("scanning entry of %q: %w", name, err)
		}
		ps.Entries = append(ps.Entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("loading entries of %q: %w", name, err)
	}
	return &ps, nil
}

// Delete drops a point set; entries go with it through the foreign key.
func (s *Store) Delete(ctx context.Context, name string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM point_sets WHERE name=$1`, name)
	if err != nil {
		return fmt.Errorf("deleting point set %q: %w", name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting point set %q: %w", name, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) Names(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM point_sets ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("listing point sets: %w", err)
	}
	defer rows.Close()
	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}
