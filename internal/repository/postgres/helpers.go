package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// syncSequence moves a table's id sequence past its largest id. It runs
// after inserts with caller-supplied ids, otherwise the next generated id
// would collide with a seeded row.
func syncSequence(ctx context.Context, pool *pgxpool.Pool, table string) error {
	query := fmt.Sprintf(
		`SELECT setval(pg_get_serial_sequence('%[1]s', 'id'), GREATEST((SELECT MAX(id) FROM %[1]s), 1))`,
		table,
	)
	if _, err := pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("sync %s sequence: %w", table, err)
	}
	return nil
}

func exists(ctx context.Context, pool *pgxpool.Pool, query string, args ...any) (bool, error) {
	var ok bool
	if err := pool.QueryRow(ctx, query, args...).Scan(&ok); err != nil {
		return false, fmt.Errorf("exists query: %w", err)
	}
	return ok, nil
}
