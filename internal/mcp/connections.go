package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/litesql/mssql-mcp/internal/mssql"
)

type ConnectionsInput struct{}

// ConnectionSummary exposes the routable parts of a configured connection.
// Credentials never leave the process.
type ConnectionSummary struct {
	Name     string `json:"name"`
	Server   string `json:"server,omitempty"`
	Database string `json:"database,omitempty"`
}

type ConnectionsOutput struct {
	Connections []ConnectionSummary `json:"connections"`
	HasDefault  bool                `json:"has_default"`
}

func (s *Server) connections(ctx context.Context, req *mcp.CallToolRequest, input ConnectionsInput) (result *mcp.CallToolResult, output ConnectionsOutput, err error) {
	named := s.client.NamedConnections()
	output.Connections = make([]ConnectionSummary, 0, len(named))
	for _, nc := range named {
		cfg := mssql.ParseConnectionString(nc.ConnectionString, mssql.WindowsCredentials{})
		output.Connections = append(output.Connections, ConnectionSummary{
			Name:     nc.Name,
			Server:   cfg.Server,
			Database: cfg.Database,
		})
	}
	output.HasDefault = s.client.HasDefault()
	return
}

type TestConnectionInput struct {
	ConnectionString string `json:"connection_string,omitempty" jsonschema:"Full connection string overriding any configured connection.,example=Server=localhost;Database=master"`
	ConnectionName   string `json:"connection_name,omitempty" jsonschema:"Name of a configured connection.,example=crm_app"`
}

type TestConnectionOutput struct {
	Version  string `json:"version"`
	Database string `json:"database"`
}

const testConnectionQuery = "SELECT @@VERSION AS version, DB_NAME() AS current_database"

func (s *Server) testConnection(ctx context.Context, req *mcp.CallToolRequest, input TestConnectionInput) (result *mcp.CallToolResult, output TestConnectionOutput, err error) {
	res, err := s.client.Execute(ctx, input.ConnectionString, input.ConnectionName, testConnectionQuery)
	if err != nil {
		return
	}
	if len(res.Rows) > 0 {
		output.Version, _ = res.Rows[0]["version"].(string)
		output.Database, _ = res.Rows[0]["current_database"].(string)
	}
	return
}
