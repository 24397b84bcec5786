package journal

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/duskvale/duskvale/internal/cast"
)

// Schema is the SQL DDL for the journal_entries table. Execute it via
// [PostgresStore.Migrate] or apply it manually during deployment.
const Schema = `
CREATE TABLE IF NOT EXISTS journal_entries (
    id         BIGSERIAL PRIMARY KEY,
    day        INT NOT NULL,
    character  TEXT NOT NULL,
    clue       TEXT NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

// DB is the database interface used by [PostgresStore]. Both *pgxpool.Pool
// and *pgx.Conn satisfy this interface.
type DB interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PostgresStore is a [Store] backed by a PostgreSQL database, for
// deployments where the journal must survive host loss.
type PostgresStore struct {
	db DB
}

// Compile-time interface check.
var _ Store = (*PostgresStore)(nil)

// NewPostgresStore creates a [PostgresStore] using the given connection or
// pool. Call [PostgresStore.Migrate] before issuing queries.
func NewPostgresStore(db DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Migrate executes the [Schema] DDL, creating the journal_entries table if
// it does not already exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("journal: migrate: %w", err)
	}
	return nil
}

// Append implements [Store.Append].
func (s *PostgresStore) Append(ctx context.Context, e Entry) error {
	const query = `INSERT INTO journal_entries (day, character, clue) VALUES ($1, $2, $3)`
	if _, err := s.db.Exec(ctx, query, e.Day, string(e.Character), e.Clue); err != nil {
		return fmt.Errorf("journal: append: %w", err)
	}
	return nil
}

// ReadAll implements [Store.ReadAll]. Rows come back in insertion order and
// are rendered into the same line format the file store uses.
func (s *PostgresStore) ReadAll(ctx context.Context) ([]string, error) {
	const query = `SELECT day, character, clue FROM journal_entries ORDER BY id`
	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("journal: read all: %w", err)
	}
	defer rows.Close()

	var lines []string
	for rows.Next() {
		var e Entry
		var character string
		if err := rows.Scan(&e.Day, &character, &e.Clue); err != nil {
			return nil, fmt.Errorf("journal: scan: %w", err)
		}
		e.Character = cast.Character(character)
		lines = append(lines, e.Line())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("journal: iterate: %w", err)
	}
	if lines == nil {
		lines = []string{}
	}
	return lines, nil
}

// Clear implements [Store.Clear].
func (s *PostgresStore) Clear(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, `DELETE FROM journal_entries`); err != nil {
		return fmt.Errorf("journal: clear: %w", err)
	}
	return nil
}
