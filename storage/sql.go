package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/awantoch/flowviz/model"
	"github.com/google/uuid"
)

const rendersSchema = `
CREATE TABLE IF NOT EXISTS renders (
	id TEXT PRIMARY KEY,
	name TEXT,
	label TEXT,
	notation TEXT,
	diagram TEXT,
	step_count INTEGER,
	url TEXT,
	created_at BIGINT
);
`

// sqlStore holds the queries shared by the SQL backends. Queries are
// written with ? placeholders and rebound for drivers that number them.
type sqlStore struct {
	db       *sql.DB
	numbered bool
}

func (s *sqlStore) q(query string) string {
	if !s.numbered {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (s *sqlStore) SaveRender(ctx context.Context, r *model.Render) error {
	_, err := s.db.ExecContext(ctx, s.q(`
INSERT INTO renders (id, name, label, notation, diagram, step_count, url, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET name=excluded.name, label=excluded.label, notation=excluded.notation, diagram=excluded.diagram, step_count=excluded.step_count, url=excluded.url, created_at=excluded.created_at
`), r.ID.String(), r.Name, r.Label, r.Notation, r.Diagram, r.StepCount, r.URL, r.CreatedAt.UnixMilli())
	return err
}

func (s *sqlStore) GetRender(ctx context.Context, id uuid.UUID) (*model.Render, error) {
	row := s.db.QueryRowContext(ctx, s.q(`SELECT id, name, label, notation, diagram, step_count, url, created_at FROM renders WHERE id=?`), id.String())
	r, err := scanRender(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return r, err
}

func (s *sqlStore) ListRenders(ctx context.Context) ([]*model.Render, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, label, notation, diagram, step_count, url, created_at FROM renders ORDER BY created_at DESC, id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []*model.Render{}
	for rows.Next() {
		r, err := scanRender(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *sqlStore) DeleteRender(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, s.q(`DELETE FROM renders WHERE id=?`), id.String())
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *sqlStore) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRender(sc scanner) (*model.Render, error) {
	var (
		r         model.Render
		id        string
		url       sql.NullString
		createdAt int64
	)
	if err := sc.Scan(&id, &r.Name, &r.Label, &r.Notation, &r.Diagram, &r.StepCount, &url, &createdAt); err != nil {
		return nil, err
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid render id %q: %w", id, err)
	}
	r.ID = parsed
	r.URL = url.String
	r.CreatedAt = time.UnixMilli(createdAt).UTC()
	return &r, nil
}
