package http_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	httpapi "github.com/litesql/mssql-mcp/internal/http"
	"github.com/litesql/mssql-mcp/internal/mssql"
)

type fakeLister struct {
	named      []mssql.NamedConnection
	hasDefault bool
}

func (f fakeLister) NamedConnections() []mssql.NamedConnection { return f.named }

func (f fakeLister) HasDefault() bool { return f.hasDefault }

func TestHealthzHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	httpapi.HealthzHandler(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("expected status ok, got %q", body["status"])
	}
}

func TestConnectionsHandler(t *testing.T) {
	lister := fakeLister{
		named: []mssql.NamedConnection{
			{Name: "crm_app", ConnectionString: "Server=crmhost,1433;Database=crm;User Id=svc;Password=hunter2"},
			{Name: "hr_system", ConnectionString: "Server=hrhost;Integrated Security=SSPI"},
		},
		hasDefault: true,
	}
	rec := httptest.NewRecorder()
	httpapi.ConnectionsHandler(lister)(rec, httptest.NewRequest(http.MethodGet, "/connections", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	var body struct {
		Connections []struct {
			Name     string `json:"name"`
			Server   string `json:"server"`
			Database string `json:"database"`
		} `json:"connections"`
		HasDefault bool `json:"has_default"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !body.HasDefault {
		t.Error("expected has_default true")
	}
	if len(body.Connections) != 2 {
		t.Fatalf("expected 2 connections, got %d", len(body.Connections))
	}
	if body.Connections[0].Name != "crm_app" || body.Connections[0].Server != "crmhost,1433" || body.Connections[0].Database != "crm" {
		t.Errorf("unexpected first connection: %+v", body.Connections[0])
	}
	if strings.Contains(rec.Body.String(), "hunter2") {
		t.Error("response leaked a password")
	}
}
