package plugins

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// ---------------------------------------------------------------------------
// SQLite helpers exposed to JavaScript hooks
// ---------------------------------------------------------------------------

// sqliteQuery runs a read query and returns the rows as an array of
// arrays, column order preserved. Blob bytes are returned as a string.
func sqliteQuery(path, query string) ([]interface{}, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	rows, err := db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("reading columns: %w", err)
	}

	var out []interface{}
	for rows.Next() {
		raw := make([]interface{}, len(cols))
		ptrs := make([]interface{}, len(cols))
		for i := range raw {
			ptrs[i] = &raw[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		row := make([]interface{}, len(cols))
		for i, cell := range raw {
			switch x := cell.(type) {
			case nil:
				row[i] = nil
			case int64:
				row[i] = float64(x)
			case float64:
				row[i] = x
			case string:
				row[i] = x
			case []byte:
				row[i] = string(x)
			default:
				row[i] = fmt.Sprintf("%v", x)
			}
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating rows: %w", err)
	}
	return out, nil
}

// sqliteExec runs a statement and returns the affected row count.
func sqliteExec(path, statement string) (float64, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return 0, fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	res, err := db.Exec(statement)
	if err != nil {
		return 0, fmt.Errorf("exec failed: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, nil
	}
	return float64(affected), nil
}
