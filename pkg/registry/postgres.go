// pkg/registry/postgres.go
package registry

import (
	"context"
	"database/sql"
	"fmt"
)

const (
	columnsQuery = `SELECT table_name, column_name, is_primary_key
		FROM query_column_registry
		ORDER BY table_name, column_name`
	termsQuery = `SELECT table_name, term, column_name
		FROM query_business_terms
		ORDER BY table_name, term`
)

// LoadPostgres builds a Registry from the query_column_registry and
// query_business_terms tables.
func LoadPostgres(ctx context.Context, db *sql.DB) (*Registry, error) {
	specs := map[string]*TableSpec{}
	var order []string
	spec := func(name string) *TableSpec {
		s, ok := specs[name]
		if !ok {
			s = &TableSpec{Name: name, BusinessTerms: map[string]string{}}
			specs[name] = s
			order = append(order, name)
		}
		return s
	}

	rows, err := db.QueryContext(ctx, columnsQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to query column registry: %w", err)
	}
	for rows.Next() {
		var tableName, column string
		var primary bool
		if err := rows.Scan(&tableName, &column, &primary); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan column registry: %w", err)
		}
		s := spec(tableName)
		s.Columns = append(s.Columns, column)
		if primary {
			s.PrimaryKey = column
		}
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("failed to read column registry: %w", err)
	}
	rows.Close()

	termRows, err := db.QueryContext(ctx, termsQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to query business terms: %w", err)
	}
	defer termRows.Close()
	for termRows.Next() {
		var tableName, term, column string
		if err := termRows.Scan(&tableName, &term, &column); err != nil {
			return nil, fmt.Errorf("failed to scan business terms: %w", err)
		}
		spec(tableName).BusinessTerms[term] = column
	}
	if err := termRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read business terms: %w", err)
	}

	s := Schema{Version: "postgres"}
	for _, name := range order {
		s.Tables = append(s.Tables, *specs[name])
	}
	return New(s)
}
