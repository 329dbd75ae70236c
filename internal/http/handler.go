package http

import (
	"encoding/json"
	"net/http"

	"github.com/litesql/mssql-mcp/internal/mssql"
)

// ConnectionLister is the slice of the client surface the HTTP endpoints use.
type ConnectionLister interface {
	NamedConnections() []mssql.NamedConnection
	HasDefault() bool
}

type connectionSummary struct {
	Name     string `json:"name"`
	Server   string `json:"server,omitempty"`
	Database string `json:"database,omitempty"`
}

func HealthzHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"status": "ok",
	})
}

// ConnectionsHandler reports the configured connection names with their
// server and database. Connection strings stay inside the process.
func ConnectionsHandler(lister ConnectionLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		named := lister.NamedConnections()
		summaries := make([]connectionSummary, 0, len(named))
		for _, nc := range named {
			cfg := mssql.ParseConnectionString(nc.ConnectionString, mssql.WindowsCredentials{})
			summaries = append(summaries, connectionSummary{
				Name:     nc.Name,
				Server:   cfg.Server,
				Database: cfg.Database,
			})
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"connections": summaries,
			"has_default": lister.HasDefault(),
		})
	}
}
