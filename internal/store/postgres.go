package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kopaska88/pengaduan-jokerbola/internal/domain"
)

// column names in append order, mirroring domain.HeaderRow.
var complaintColumns = []string{
	"created_at",
	"ticket_id",
	"category",
	"reporter_name",
	"account_ref",
	"complaint",
	"evidence",
	"contact_handle",
	"contact_user_id",
	"contact_method",
	"chat_name",
	"status",
}

// PostgresStore persists complaint rows in a single text-column table.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore wraps an existing pool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// EnsureSchema creates the complaints table when absent.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	cols := make([]string, 0, len(complaintColumns))
	for _, c := range complaintColumns {
		cols = append(cols, c+" TEXT NOT NULL DEFAULT ''")
	}
	query := fmt.Sprintf(
		`CREATE TABLE IF NOT EXISTS complaints (id BIGSERIAL PRIMARY KEY, %s)`,
		strings.Join(cols, ", "))
	_, err := s.pool.Exec(ctx, query)
	return err
}

// AppendRecord inserts one row. Short rows are padded, long rows
// truncated, so positional callers never fail the insert.
func (s *PostgresStore) AppendRecord(ctx context.Context, row []string) error {
	values := make([]any, len(complaintColumns))
	placeholders := make([]string, len(complaintColumns))
	for i := range complaintColumns {
		if i < len(row) {
			values[i] = row[i]
		} else {
			values[i] = ""
		}
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}
	query := fmt.Sprintf(`INSERT INTO complaints (%s) VALUES (%s)`,
		strings.Join(complaintColumns, ", "), strings.Join(placeholders, ", "))
	_, err := s.pool.Exec(ctx, query, values...)
	return err
}

// ReadAllRecords returns the canonical header row followed by every
// stored row in insert order.
func (s *PostgresStore) ReadAllRecords(ctx context.Context) ([][]string, error) {
	query := fmt.Sprintf(`SELECT %s FROM complaints ORDER BY id`,
		strings.Join(complaintColumns, ", "))
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := [][]string{append([]string(nil), domain.HeaderRow...)}
	for rows.Next() {
		cells := make([]string, len(complaintColumns))
		dest := make([]any, len(cells))
		for i := range cells {
			dest[i] = &cells[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		result = append(result, cells)
	}
	return result, rows.Err()
}

// Ping verifies connectivity for the readiness probe.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}
