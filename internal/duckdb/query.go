package duckdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// TypeCount is the number of stored questions of one type in a source.
type TypeCount struct {
	Path      string
	Type      string
	Questions int
}

// CatalogTotals summarises the whole catalog.
type CatalogTotals struct {
	Sources   int
	Questions int
	Answers   int
}

// TypeCounts lists question counts per source and type, ordered by path.
func TypeCounts(ctx context.Context, db *sql.DB) ([]TypeCount, error) {
	if db == nil {
		return nil, errors.New("duckdb: db is nil")
	}
	rows, err := db.QueryContext(ctx, `SELECT path, type, questions FROM v_type_counts ORDER BY path, type`)
	if err != nil {
		return nil, fmt.Errorf("query type counts: %w", err)
	}
	defer rows.Close()
	var counts []TypeCount
	for rows.Next() {
		var count TypeCount
		if err := rows.Scan(&count.Path, &count.Type, &count.Questions); err != nil {
			return nil, fmt.Errorf("scan type count: %w", err)
		}
		counts = append(counts, count)
	}
	return counts, rows.Err()
}

// Totals counts the rows of every catalog table.
func Totals(ctx context.Context, db *sql.DB) (CatalogTotals, error) {
	if db == nil {
		return CatalogTotals{}, errors.New("duckdb: db is nil")
	}
	var totals CatalogTotals
	err := db.QueryRowContext(ctx, `SELECT
	  (SELECT count(*) FROM sources),
	  (SELECT count(*) FROM questions),
	  (SELECT count(*) FROM answers)`,
	).Scan(&totals.Sources, &totals.Questions, &totals.Answers)
	if err != nil {
		return CatalogTotals{}, fmt.Errorf("query totals: %w", err)
	}
	return totals, nil
}
