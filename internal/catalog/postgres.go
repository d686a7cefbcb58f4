package catalog

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"regexp"

	"resource-workers/internal/common/errors"
)

var tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// PostgresSource reads the most recently published guide document from a
// table shaped like:
//
//	CREATE TABLE resource_guides (
//	    id         SERIAL PRIMARY KEY,
//	    document   JSONB NOT NULL,
//	    published  BOOLEAN NOT NULL DEFAULT TRUE,
//	    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
//	);
type PostgresSource struct {
	db    *sql.DB
	table string
	query string
}

func NewPostgresSource(db *sql.DB, table string) (*PostgresSource, error) {
	if !tableNamePattern.MatchString(table) {
		return nil, fmt.Errorf("invalid catalog table name %q", table)
	}
	return &PostgresSource{
		db:    db,
		table: table,
		query: fmt.Sprintf(`SELECT document FROM %s WHERE published = $1 ORDER BY updated_at DESC LIMIT 1`, table),
	}, nil
}

func (s *PostgresSource) Name() string {
	return "postgres"
}

func (s *PostgresSource) Fetch(ctx context.Context) ([]byte, error) {
	var document []byte
	err := s.db.QueryRowContext(ctx, s.query, true).Scan(&document)
	switch {
	case stderrors.Is(err, sql.ErrNoRows):
		return nil, errors.NewCatalogNotFoundError(s.Name(), fmt.Sprintf("table: %s", s.table))
	case err != nil && (stderrors.Is(err, context.DeadlineExceeded) || stderrors.Is(ctx.Err(), context.DeadlineExceeded)):
		return nil, errors.NewQueryTimeoutError("load_catalog")
	case err != nil:
		return nil, errors.NewQueryExecutionFailedError("load_catalog", err)
	}
	return document, nil
}
