package mssql_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/litesql/mssql-mcp/internal/mssql"
)

func TestResolve(t *testing.T) {
	r := mssql.NewResolver(mssql.Settings{
		DefaultConnectionString: "Server=default",
		Connections: map[string]string{
			"crm_app":   "Server=crm",
			"hr_system": "Server=hr",
		},
	})

	type testCase struct {
		connectionString string
		connectionName   string
		want             string
		wantErr          bool
	}

	tt := map[string]testCase{
		"explicit wins over name and default": {
			connectionString: "Server=explicit",
			connectionName:   "crm_app",
			want:             "Server=explicit",
		},
		"named connection": {
			connectionName: "crm_app",
			want:           "Server=crm",
		},
		"unknown name": {
			connectionName: "billing",
			wantErr:        true,
		},
		"case must match the stored alias": {
			connectionName: "CRM_APP",
			wantErr:        true,
		},
		"default when nothing selected": {
			want: "Server=default",
		},
	}

	for name, tc := range tt {
		t.Run(name, func(t *testing.T) {
			got, err := r.Resolve(tc.connectionString, tc.connectionName)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %q", got)
				}
				var resErr *mssql.ResolutionError
				if !errors.As(err, &resErr) {
					t.Fatalf("expected ResolutionError, got %T: %v", err, err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if got != tc.want {
				t.Errorf("want %q got %q", tc.want, got)
			}
		})
	}
}

func TestResolveUnknownNameListsAliases(t *testing.T) {
	r := mssql.NewResolver(mssql.Settings{
		Connections: map[string]string{"crm_app": "x", "hr_system": "y"},
	})
	_, err := r.Resolve("", "billing")
	if err == nil {
		t.Fatal("expected error")
	}
	for _, alias := range []string{"crm_app", "hr_system"} {
		if !strings.Contains(err.Error(), alias) {
			t.Errorf("error %q does not mention %q", err, alias)
		}
	}
}

func TestResolveNothingAvailable(t *testing.T) {
	_, err := mssql.NewResolver(mssql.Settings{}).Resolve("", "")
	var resErr *mssql.ResolutionError
	if !errors.As(err, &resErr) {
		t.Fatalf("expected ResolutionError, got %v", err)
	}
}

func TestNamedSorted(t *testing.T) {
	r := mssql.NewResolver(mssql.Settings{
		Connections: map[string]string{"beta": "2", "alpha": "1"},
	})
	named := r.Named()
	if len(named) != 2 || named[0].Name != "alpha" || named[1].Name != "beta" {
		t.Errorf("unexpected list: %+v", named)
	}
	if named[0].ConnectionString != "1" {
		t.Errorf("unexpected connection string: %+v", named[0])
	}
}

func TestHasDefault(t *testing.T) {
	if mssql.NewResolver(mssql.Settings{}).HasDefault() {
		t.Error("expected no default")
	}
	if !mssql.NewResolver(mssql.Settings{DefaultConnectionString: "Server=s"}).HasDefault() {
		t.Error("expected a default")
	}
}
