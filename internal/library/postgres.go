package library

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/five82/shelf/internal/shelf"
)

const defaultQueryTimeout = 5 * time.Second

// Postgres is a Repository backed by a pgx connection pool.
type Postgres struct {
	db      *pgxpool.Pool
	timeout time.Duration
}

// NewPostgres wraps an open pool. A zero timeout uses five seconds per query.
func NewPostgres(db *pgxpool.Pool, timeout time.Duration) *Postgres {
	if timeout <= 0 {
		timeout = defaultQueryTimeout
	}
	return &Postgres{db: db, timeout: timeout}
}

func (p *Postgres) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, p.timeout)
}

// Migrate creates the books table when it does not exist.
func (p *Postgres) Migrate(ctx context.Context) error {
	const ddl = `
		CREATE TABLE IF NOT EXISTS shelf_books (
			id         INTEGER PRIMARY KEY,
			title      TEXT NOT NULL,
			author     TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`

	timeoutCtx, cancel := p.withTimeout(ctx)
	defer cancel()
	if _, err := p.db.Exec(timeoutCtx, ddl); err != nil {
		return fmt.Errorf("migrate shelf_books: %w", err)
	}
	return nil
}

// NextID returns one past the highest stored id, or 0 for an empty table.
func (p *Postgres) NextID(ctx context.Context) (int, error) {
	const query = `SELECT COALESCE(MAX(id) + 1, 0) FROM shelf_books`

	timeoutCtx, cancel := p.withTimeout(ctx)
	defer cancel()
	var next int
	if err := p.db.QueryRow(timeoutCtx, query).Scan(&next); err != nil {
		return 0, fmt.Errorf("query next id: %w", err)
	}
	return next, nil
}

// Insert stores book under its id.
func (p *Postgres) Insert(ctx context.Context, book shelf.BookResource) error {
	const sql = `INSERT INTO shelf_books (id, title, author) VALUES ($1, $2, $3)`

	timeoutCtx, cancel := p.withTimeout(ctx)
	defer cancel()
	if _, err := p.db.Exec(timeoutCtx, sql, book.ID, book.Title, book.Author); err != nil {
		return fmt.Errorf("insert book %d: %w", book.ID, err)
	}
	return nil
}

// List returns every book in insertion order.
func (p *Postgres) List(ctx context.Context) ([]shelf.BookResource, error) {
	const query = `SELECT id, title, author FROM shelf_books ORDER BY created_at, id`

	timeoutCtx, cancel := p.withTimeout(ctx)
	defer cancel()
	rows, err := p.db.Query(timeoutCtx, query)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	defer rows.Close()

	var out []shelf.BookResource
	for rows.Next() {
		var b shelf.BookResource
		if err := rows.Scan(&b.ID, &b.Title, &b.Author); err != nil {
			return nil, fmt.Errorf("scan book: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}
