package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type QueryInput struct {
	ConnectionString string `json:"connection_string,omitempty" jsonschema:"Full connection string overriding any configured connection.,example=Server=localhost;Database=master"`
	ConnectionName   string `json:"connection_name,omitempty" jsonschema:"Name of a configured connection.,example=crm_app"`
	// The SELECT statement to be executed.
	Query string `json:"query" jsonschema:"The SELECT statement to be executed.,example=SELECT name FROM sys.tables"`
	// Optional row cap when the query has no TOP clause.
	Limit int `json:"limit,omitempty" jsonschema:"Maximum rows to return when the query has no TOP clause.,example=50"`
}

type QueryOutput struct {
	Columns  []string         `json:"columns"`
	Rows     []map[string]any `json:"rows"`
	RowCount int              `json:"row_count"`
}

func (s *Server) query(ctx context.Context, req *mcp.CallToolRequest, input QueryInput) (result *mcp.CallToolResult, output QueryOutput, err error) {
	if err = validateReadOnly(input.Query); err != nil {
		return
	}
	limit := input.Limit
	if limit <= 0 {
		limit = s.cfg.MaxRows
	}
	res, err := s.client.Execute(ctx, input.ConnectionString, input.ConnectionName, ensureRowLimit(input.Query, limit))
	if err != nil {
		return
	}
	output.Columns = res.Columns
	output.Rows = res.Rows
	output.RowCount = len(res.Rows)
	return
}
