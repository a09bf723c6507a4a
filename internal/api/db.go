package api

import (
	"context"
	"database/sql"

	"github.com/danielgtaylor/huma/v2"
)

// DBHandler exposes the analytics sidecar: the points table mirrored
// from the loaded collection plus ad-hoc SQL.
type DBHandler struct {
	db *sql.DB
}

// NewDBHandler creates a new database handler.
func NewDBHandler(db *sql.DB) *DBHandler {
	return &DBHandler{db: db}
}

// RegisterRoutes registers database routes with Huma.
func (h *DBHandler) RegisterRoutes(api huma.API) {
	huma.Get(api, "/api/v1/tables", h.ListTables, huma.OperationTags("analytics"))
	huma.Post(api, "/api/v1/query", h.Query, huma.OperationTags("analytics"))
	huma.Get(api, "/api/v1/points/summary", h.Summary, huma.OperationTags("analytics"))
}

// TablesOutput is the response for listing tables.
type TablesOutput struct {
	Body struct {
		Tables []string `json:"tables" doc:"List of table names"`
	}
}

// ListTables returns all DuckDB tables.
func (h *DBHandler) ListTables(ctx context.Context, input *struct{}) (*TablesOutput, error) {
	if h.db == nil {
		return nil, huma.Error503ServiceUnavailable("Database not available")
	}

	rows, err := h.db.QueryContext(ctx, "SHOW TABLES")
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to list tables", err)
	}
	defer rows.Close()

	tables := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err == nil {
			tables = append(tables, name)
		}
	}

	out := &TablesOutput{}
	out.Body.Tables = tables
	return out, nil
}

// QueryInput is the input for SQL queries.
type QueryInput struct {
	Body struct {
		Query string `json:"query" required:"true" doc:"SQL query to execute"`
	}
}

// QueryOutput is the response for SQL queries.
type QueryOutput struct {
	Body struct {
		Columns []string         `json:"columns" doc:"Column names"`
		Rows    []map[string]any `json:"rows" doc:"Query results"`
		Count   int              `json:"count" doc:"Number of rows returned"`
	}
}

// Query executes a SQL query against DuckDB.
func (h *DBHandler) Query(ctx context.Context, input *QueryInput) (*QueryOutput, error) {
	if h.db == nil {
		return nil, huma.Error503ServiceUnavailable("Database not available")
	}

	rows, err := h.db.QueryContext(ctx, input.Body.Query)
	if err != nil {
		return nil, huma.Error400BadRequest("Query failed: " + err.Error())
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to get columns", err)
	}

	results := []map[string]any{}
	for rows.Next() {
		values := make([]any, len(columns))
		valuePtrs := make([]any, len(columns))
		for i := range values {
			valuePtrs[i] = &values[i]
		}

		if err := rows.Scan(valuePtrs...); err != nil {
			continue
		}

		row := make(map[string]any)
		for i, col := range columns {
			row[col] = values[i]
		}
		results = append(results, row)
	}

	out := &QueryOutput{}
	out.Body.Columns = columns
	out.Body.Rows = results
	out.Body.Count = len(results)
	return out, nil
}

// HostCount is one row of the points summary.
type HostCount struct {
	IP    string `json:"ip" doc:"IP address"`
	Count int    `json:"count" doc:"Number of observations"`
}

// SummaryOutput is the response for the points summary.
type SummaryOutput struct {
	Body struct {
		Total int         `json:"total" doc:"Total points in the table"`
		Top   []HostCount `json:"top" doc:"Most frequent IPs, descending"`
	}
}

// Summary returns aggregate counts over the mirrored points table.
func (h *DBHandler) Summary(ctx context.Context, input *struct{}) (*SummaryOutput, error) {
	if h.db == nil {
		return nil, huma.Error503ServiceUnavailable("Database not available")
	}

	out := &SummaryOutput{}
	out.Body.Top = []HostCount{}

	if err := h.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM points").Scan(&out.Body.Total); err != nil {
		return nil, huma.Error500InternalServerError("Failed to count points", err)
	}

	rows, err := h.db.QueryContext(ctx,
		"SELECT ip, COUNT(*) AS n FROM points GROUP BY ip ORDER BY n DESC, ip LIMIT 10")
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to summarize points", err)
	}
	defer rows.Close()

	for rows.Next() {
		var hc HostCount
		if err := rows.Scan(&hc.IP, &hc.Count); err == nil {
			out.Body.Top = append(out.Body.Top, hc)
		}
	}

	return out, nil
}
