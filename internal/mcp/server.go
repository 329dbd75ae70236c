package mcp

import (
	"context"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/litesql/mssql-mcp/internal/mssql"
)

// Client is the connection surface the tools consume.
type Client interface {
	Execute(ctx context.Context, connectionString, connectionName, query string) (*mssql.Result, error)
	NamedConnections() []mssql.NamedConnection
	HasDefault() bool
}

type Config struct {
	Version string
	MaxRows int
}

type Server struct {
	client Client
	cfg    Config
	mcp    *mcp.Server
}

func NewServer(client Client, cfg Config) *Server {
	if cfg.MaxRows <= 0 {
		cfg.MaxRows = 100
	}
	s := &Server{client: client, cfg: cfg}
	s.mcp = mcp.NewServer(&mcp.Implementation{Name: "mssql-mcp", Version: cfg.Version}, nil)
	s.register()
	return s
}

func (s *Server) register() {
	readOnly := &mcp.ToolAnnotations{ReadOnlyHint: true}
	mcp.AddTool(s.mcp, &mcp.Tool{Name: "query", Description: "execute a read-only SQL query", Annotations: readOnly}, s.query)
	mcp.AddTool(s.mcp, &mcp.Tool{Name: "connections", Description: "list configured named connections", Annotations: readOnly}, s.connections)
	mcp.AddTool(s.mcp, &mcp.Tool{Name: "test_connection", Description: "test a connection and report the server version", Annotations: readOnly}, s.testConnection)
	mcp.AddTool(s.mcp, &mcp.Tool{Name: "databases", Description: "list user databases", Annotations: readOnly}, s.databases)
	mcp.AddTool(s.mcp, &mcp.Tool{Name: "tables", Description: "list tables with row counts", Annotations: readOnly}, s.tables)
	mcp.AddTool(s.mcp, &mcp.Tool{Name: "table_schema", Description: "describe the columns of a table", Annotations: readOnly}, s.tableSchema)
	mcp.AddTool(s.mcp, &mcp.Tool{Name: "views", Description: "list views", Annotations: readOnly}, s.views)
	mcp.AddTool(s.mcp, &mcp.Tool{Name: "view_definition", Description: "show the definition of a view", Annotations: readOnly}, s.viewDefinition)
	mcp.AddTool(s.mcp, &mcp.Tool{Name: "procedures", Description: "list stored procedures", Annotations: readOnly}, s.procedures)
	mcp.AddTool(s.mcp, &mcp.Tool{Name: "procedure_definition", Description: "show the definition of a stored procedure", Annotations: readOnly}, s.procedureDefinition)
	mcp.AddTool(s.mcp, &mcp.Tool{Name: "functions", Description: "list user defined functions", Annotations: readOnly}, s.functions)
	mcp.AddTool(s.mcp, &mcp.Tool{Name: "indexes", Description: "list the indexes of a table", Annotations: readOnly}, s.indexes)
	mcp.AddTool(s.mcp, &mcp.Tool{Name: "server_info", Description: "show server version and edition", Annotations: readOnly}, s.serverInfo)
}

func (s *Server) Run(ctx context.Context) error {
	return s.mcp.Run(ctx, &mcp.StdioTransport{})
}

func (s *Server) HTTPHandler() *mcp.StreamableHTTPHandler {
	return mcp.NewStreamableHTTPHandler(func(r *http.Request) *mcp.Server {
		return s.mcp
	}, nil)
}
