package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type DatabasesInput struct {
	ConnectionString string `json:"connection_string,omitempty" jsonschema:"Full connection string overriding any configured connection.,example=Server=localhost;Database=master"`
	ConnectionName   string `json:"connection_name,omitempty" jsonschema:"Name of a configured connection.,example=crm_app"`
}

type DatabasesOutput struct {
	Databases []string `json:"databases" jsonschema:"The list of user database names.,example=[\"crm\", \"hr\"]"`
}

const databasesQuery = "SELECT name FROM sys.databases WHERE database_id > 4 ORDER BY name"

func (s *Server) databases(ctx context.Context, req *mcp.CallToolRequest, input DatabasesInput) (result *mcp.CallToolResult, output DatabasesOutput, err error) {
	res, err := s.client.Execute(ctx, input.ConnectionString, input.ConnectionName, databasesQuery)
	if err != nil {
		return
	}
	output.Databases = make([]string, 0, len(res.Rows))
	for _, row := range res.Rows {
		if name, ok := row["name"].(string); ok {
			output.Databases = append(output.Databases, name)
		}
	}
	return
}

type TablesInput struct {
	ConnectionString string `json:"connection_string,omitempty" jsonschema:"Full connection string overriding any configured connection.,example=Server=localhost;Database=master"`
	ConnectionName   string `json:"connection_name,omitempty" jsonschema:"Name of a configured connection.,example=crm_app"`
	Schema           string `json:"schema,omitempty" jsonschema:"Only list tables in this schema.,example=dbo"`
}

type TablesOutput struct {
	Tables []map[string]any `json:"tables"`
}

const tablesQuery = `SELECT s.name AS [schema], t.name AS [table], SUM(p.rows) AS [rows]
FROM sys.tables t
JOIN sys.schemas s ON s.schema_id = t.schema_id
JOIN sys.partitions p ON p.object_id = t.object_id AND p.index_id IN (0, 1)
%s
GROUP BY s.name, t.name
ORDER BY s.name, t.name`

func (s *Server) tables(ctx context.Context, req *mcp.CallToolRequest, input TablesInput) (result *mcp.CallToolResult, output TablesOutput, err error) {
	var filter string
	if input.Schema != "" {
		if err = validateIdentifier(input.Schema); err != nil {
			return
		}
		filter = fmt.Sprintf("WHERE s.name = N'%s'", escapeLiteral(input.Schema))
	}
	res, err := s.client.Execute(ctx, input.ConnectionString, input.ConnectionName, fmt.Sprintf(tablesQuery, filter))
	if err != nil {
		return
	}
	output.Tables = res.Rows
	return
}

type TableSchemaInput struct {
	ConnectionString string `json:"connection_string,omitempty" jsonschema:"Full connection string overriding any configured connection.,example=Server=localhost;Database=master"`
	ConnectionName   string `json:"connection_name,omitempty" jsonschema:"Name of a configured connection.,example=crm_app"`
	Schema           string `json:"schema,omitempty" jsonschema:"Schema of the table, dbo when omitted.,example=dbo"`
	Table            string `json:"table" jsonschema:"Name of the table.,example=users"`
}

type TableSchemaOutput struct {
	Columns []map[string]any `json:"columns"`
}

const tableSchemaQuery = `SELECT c.name AS [column],
	ty.name AS [type],
	c.max_length,
	c.precision,
	c.scale,
	c.is_nullable,
	c.is_identity,
	CASE WHEN pk.column_id IS NULL THEN CAST(0 AS bit) ELSE CAST(1 AS bit) END AS is_primary_key,
	dc.definition AS [default]
FROM sys.columns c
JOIN sys.types ty ON ty.user_type_id = c.user_type_id
LEFT JOIN sys.default_constraints dc ON dc.object_id = c.default_object_id
LEFT JOIN (
	SELECT ic.object_id, ic.column_id
	FROM sys.index_columns ic
	JOIN sys.indexes i ON i.object_id = ic.object_id AND i.index_id = ic.index_id
	WHERE i.is_primary_key = 1
) pk ON pk.object_id = c.object_id AND pk.column_id = c.column_id
WHERE c.object_id = OBJECT_ID(N'%s')
ORDER BY c.column_id`

func (s *Server) tableSchema(ctx context.Context, req *mcp.CallToolRequest, input TableSchemaInput) (result *mcp.CallToolResult, output TableSchemaOutput, err error) {
	name, err := qualifiedName(input.Schema, input.Table)
	if err != nil {
		return
	}
	res, err := s.client.Execute(ctx, input.ConnectionString, input.ConnectionName, fmt.Sprintf(tableSchemaQuery, name))
	if err != nil {
		return
	}
	output.Columns = res.Rows
	return
}

type ViewsInput struct {
	ConnectionString string `json:"connection_string,omitempty" jsonschema:"Full connection string overriding any configured connection.,example=Server=localhost;Database=master"`
	ConnectionName   string `json:"connection_name,omitempty" jsonschema:"Name of a configured connection.,example=crm_app"`
}

type ViewsOutput struct {
	Views []map[string]any `json:"views"`
}

const viewsQuery = `SELECT s.name AS [schema], v.name AS [view]
FROM sys.views v
JOIN sys.schemas s ON s.schema_id = v.schema_id
ORDER BY s.name, v.name`

func (s *Server) views(ctx context.Context, req *mcp.CallToolRequest, input ViewsInput) (result *mcp.CallToolResult, output ViewsOutput, err error) {
	res, err := s.client.Execute(ctx, input.ConnectionString, input.ConnectionName, viewsQuery)
	if err != nil {
		return
	}
	output.Views = res.Rows
	return
}

type DefinitionInput struct {
	ConnectionString string `json:"connection_string,omitempty" jsonschema:"Full connection string overriding any configured connection.,example=Server=localhost;Database=master"`
	ConnectionName   string `json:"connection_name,omitempty" jsonschema:"Name of a configured connection.,example=crm_app"`
	Schema           string `json:"schema,omitempty" jsonschema:"Schema of the object, dbo when omitted.,example=dbo"`
	Name             string `json:"name" jsonschema:"Name of the object.,example=active_users"`
}

type DefinitionOutput struct {
	Definition string `json:"definition"`
}

const definitionQuery = "SELECT OBJECT_DEFINITION(OBJECT_ID(N'%s')) AS definition"

func (s *Server) viewDefinition(ctx context.Context, req *mcp.CallToolRequest, input DefinitionInput) (result *mcp.CallToolResult, output DefinitionOutput, err error) {
	return s.objectDefinition(ctx, input)
}

func (s *Server) procedureDefinition(ctx context.Context, req *mcp.CallToolRequest, input DefinitionInput) (result *mcp.CallToolResult, output DefinitionOutput, err error) {
	return s.objectDefinition(ctx, input)
}

func (s *Server) objectDefinition(ctx context.Context, input DefinitionInput) (result *mcp.CallToolResult, output DefinitionOutput, err error) {
	name, err := qualifiedName(input.Schema, input.Name)
	if err != nil {
		return
	}
	res, err := s.client.Execute(ctx, input.ConnectionString, input.ConnectionName, fmt.Sprintf(definitionQuery, name))
	if err != nil {
		return
	}
	if len(res.Rows) == 0 || res.Rows[0]["definition"] == nil {
		err = fmt.Errorf("no definition found for %s", name)
		return
	}
	output.Definition, _ = res.Rows[0]["definition"].(string)
	return
}

type ProceduresInput struct {
	ConnectionString string `json:"connection_string,omitempty" jsonschema:"Full connection string overriding any configured connection.,example=Server=localhost;Database=master"`
	ConnectionName   string `json:"connection_name,omitempty" jsonschema:"Name of a configured connection.,example=crm_app"`
}

type ProceduresOutput struct {
	Procedures []map[string]any `json:"procedures"`
}

const proceduresQuery = `SELECT s.name AS [schema], p.name AS [procedure], p.create_date, p.modify_date
FROM sys.procedures p
JOIN sys.schemas s ON s.schema_id = p.schema_id
ORDER BY s.name, p.name`

func (s *Server) procedures(ctx context.Context, req *mcp.CallToolRequest, input ProceduresInput) (result *mcp.CallToolResult, output ProceduresOutput, err error) {
	res, err := s.client.Execute(ctx, input.ConnectionString, input.ConnectionName, proceduresQuery)
	if err != nil {
		return
	}
	output.Procedures = res.Rows
	return
}

type FunctionsInput struct {
	ConnectionString string `json:"connection_string,omitempty" jsonschema:"Full connection string overriding any configured connection.,example=Server=localhost;Database=master"`
	ConnectionName   string `json:"connection_name,omitempty" jsonschema:"Name of a configured connection.,example=crm_app"`
}

type FunctionsOutput struct {
	Functions []map[string]any `json:"functions"`
}

const functionsQuery = `SELECT s.name AS [schema], o.name AS [function], o.type_desc, o.create_date
FROM sys.objects o
JOIN sys.schemas s ON s.schema_id = o.schema_id
WHERE o.type IN ('FN', 'IF', 'TF', 'AF')
ORDER BY s.name, o.name`

func (s *Server) functions(ctx context.Context, req *mcp.CallToolRequest, input FunctionsInput) (result *mcp.CallToolResult, output FunctionsOutput, err error) {
	res, err := s.client.Execute(ctx, input.ConnectionString, input.ConnectionName, functionsQuery)
	if err != nil {
		return
	}
	output.Functions = res.Rows
	return
}

type IndexesInput struct {
	ConnectionString string `json:"connection_string,omitempty" jsonschema:"Full connection string overriding any configured connection.,example=Server=localhost;Database=master"`
	ConnectionName   string `json:"connection_name,omitempty" jsonschema:"Name of a configured connection.,example=crm_app"`
	Schema           string `json:"schema,omitempty" jsonschema:"Schema of the table, dbo when omitted.,example=dbo"`
	Table            string `json:"table" jsonschema:"Name of the table.,example=users"`
}

type IndexesOutput struct {
	Indexes []map[string]any `json:"indexes"`
}

const indexesQuery = `SELECT i.name AS [index], i.type_desc, i.is_unique, i.is_primary_key,
	STRING_AGG(c.name, ', ') WITHIN GROUP (ORDER BY ic.key_ordinal) AS key_columns
FROM sys.indexes i
JOIN sys.index_columns ic ON ic.object_id = i.object_id AND ic.index_id = i.index_id AND ic.is_included_column = 0
JOIN sys.columns c ON c.object_id = ic.object_id AND c.column_id = ic.column_id
WHERE i.object_id = OBJECT_ID(N'%s') AND i.type > 0
GROUP BY i.name, i.type_desc, i.is_unique, i.is_primary_key
ORDER BY i.name`

func (s *Server) indexes(ctx context.Context, req *mcp.CallToolRequest, input IndexesInput) (result *mcp.CallToolResult, output IndexesOutput, err error) {
	name, err := qualifiedName(input.Schema, input.Table)
	if err != nil {
		return
	}
	res, err := s.client.Execute(ctx, input.ConnectionString, input.ConnectionName, fmt.Sprintf(indexesQuery, name))
	if err != nil {
		return
	}
	output.Indexes = res.Rows
	return
}

type ServerInfoInput struct {
	ConnectionString string `json:"connection_string,omitempty" jsonschema:"Full connection string overriding any configured connection.,example=Server=localhost;Database=master"`
	ConnectionName   string `json:"connection_name,omitempty" jsonschema:"Name of a configured connection.,example=crm_app"`
}

type ServerInfoOutput struct {
	Info map[string]any `json:"info"`
}

const serverInfoQuery = `SELECT @@VERSION AS version,
	CONVERT(nvarchar(128), SERVERPROPERTY('Edition')) AS edition,
	CONVERT(nvarchar(128), SERVERPROPERTY('ProductVersion')) AS product_version,
	CONVERT(nvarchar(128), SERVERPROPERTY('ProductLevel')) AS product_level,
	CONVERT(nvarchar(128), SERVERPROPERTY('MachineName')) AS machine_name,
	DB_NAME() AS current_database`

func (s *Server) serverInfo(ctx context.Context, req *mcp.CallToolRequest, input ServerInfoInput) (result *mcp.CallToolResult, output ServerInfoOutput, err error) {
	res, err := s.client.Execute(ctx, input.ConnectionString, input.ConnectionName, serverInfoQuery)
	if err != nil {
		return
	}
	if len(res.Rows) > 0 {
		output.Info = res.Rows[0]
	}
	return
}

// qualifiedName validates both parts and renders a bracket-quoted
// schema.object pair suitable for OBJECT_ID. Schema defaults to dbo.
func qualifiedName(schema, object string) (string, error) {
	if schema == "" {
		schema = "dbo"
	}
	if err := validateIdentifier(schema); err != nil {
		return "", err
	}
	if err := validateIdentifier(object); err != nil {
		return "", err
	}
	return quoteName(schema) + "." + quoteName(object), nil
}
