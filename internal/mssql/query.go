package mssql

import (
	"context"
	"errors"
	"log/slog"

	mssqldb "github.com/microsoft/go-mssqldb"
)

type Result struct {
	Columns []string         `json:"columns"`
	Rows    []map[string]any `json:"rows"`
}

// Execute runs one SQL command on the session and buffers the full result
// set, one map per row keyed by column name. A transport error evicts the
// session from its pool; a server-side SQL error keeps it. Both are returned
// to the caller untouched.
func (s *Session) Execute(ctx context.Context, query string) (*Result, error) {
	slog.Info("executing statement", "server", s.server, "sql", query)
	res, err := s.query(ctx, query)
	if err != nil {
		if !isServerError(err) {
			s.pool.Evict(s.key)
		}
		return nil, err
	}
	return res, nil
}

func (s *Session) query(ctx context.Context, query string) (*Result, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	types, _ := rows.ColumnTypes()

	result := Result{
		Columns: columns,
		Rows:    make([]map[string]any, 0),
	}
	for rows.Next() {
		values := make([]any, len(columns))
		for i := range values {
			values[i] = &values[i]
		}
		if err := rows.Scan(values...); err != nil {
			return nil, err
		}
		row := make(map[string]any, len(columns))
		for i, column := range columns {
			var typeName string
			if i < len(types) {
				typeName = types[i].DatabaseTypeName()
			}
			row[column] = convertValue(values[i], typeName)
		}
		result.Rows = append(result.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &result, nil
}

// isServerError reports whether the server processed the command and answered
// with a SQL error. Those leave the session logged in.
func isServerError(err error) bool {
	var sqlErr mssqldb.Error
	return errors.As(err, &sqlErr)
}

// convertValue turns byte slices carrying textual or exact-numeric data into
// strings. Binary data passes through.
func convertValue(v any, typeName string) any {
	b, ok := v.([]byte)
	if !ok {
		return v
	}
	switch typeName {
	case "CHAR", "VARCHAR", "NCHAR", "NVARCHAR", "TEXT", "NTEXT", "XML",
		"DECIMAL", "NUMERIC", "MONEY", "SMALLMONEY":
		return string(b)
	default:
		return b
	}
}
