package mssql_test

import (
	"reflect"
	"testing"

	"github.com/litesql/mssql-mcp/internal/mssql"
)

func TestLoadSettingsConnectionPrefix(t *testing.T) {
	settings := mssql.LoadSettings([]string{
		"CONNECTION_CRM_APP=Server=crm;Database=crm",
		"CONNECTION_HR_SYSTEM=Server=hr",
		"PATH=/usr/bin",
	})
	want := map[string]string{
		"crm_app":   "Server=crm;Database=crm",
		"hr_system": "Server=hr",
	}
	if !reflect.DeepEqual(settings.Connections, want) {
		t.Errorf("want %v got %v", want, settings.Connections)
	}
}

func TestLoadSettingsPrefixWinsOverBlobs(t *testing.T) {
	settings := mssql.LoadSettings([]string{
		`CONNECTIONS={"billing":"Server=billing"}`,
		"CONNECTION_CRM=Server=crm",
	})
	want := map[string]string{"crm": "Server=crm"}
	if !reflect.DeepEqual(settings.Connections, want) {
		t.Errorf("want %v got %v", want, settings.Connections)
	}
}

func TestLoadSettingsConnectionsBlob(t *testing.T) {
	settings := mssql.LoadSettings([]string{
		`CONNECTIONS={"Billing":"Server=billing","CRM":"Server=crm"}`,
	})
	want := map[string]string{
		"billing": "Server=billing",
		"crm":     "Server=crm",
	}
	if !reflect.DeepEqual(settings.Connections, want) {
		t.Errorf("want %v got %v", want, settings.Connections)
	}
}

func TestLoadSettingsMalformedConnectionsFallsThrough(t *testing.T) {
	settings := mssql.LoadSettings([]string{
		"CONNECTIONS={not json",
		`MSSQL_CONNECTIONS={"legacy":"Server=legacy"}`,
	})
	want := map[string]string{"legacy": "Server=legacy"}
	if !reflect.DeepEqual(settings.Connections, want) {
		t.Errorf("want %v got %v", want, settings.Connections)
	}
}

func TestLoadSettingsCredentialPrecedence(t *testing.T) {
	settings := mssql.LoadSettings([]string{
		"WINDOWS_USERNAME=u",
		`WINDOWS_CREDENTIALS={"username":"blob","password":"blobpw"}`,
	})
	want := mssql.WindowsCredentials{Username: strptr("u")}
	if !reflect.DeepEqual(settings.Credentials, want) {
		t.Errorf("want %+v got %+v", want, settings.Credentials)
	}
}

func TestLoadSettingsCredentialBlob(t *testing.T) {
	settings := mssql.LoadSettings([]string{
		`WINDOWS_CREDENTIALS={"username":"u","password":"p","domain":"CORP"}`,
	})
	want := mssql.WindowsCredentials{
		Username: strptr("u"),
		Password: strptr("p"),
		Domain:   strptr("CORP"),
	}
	if !reflect.DeepEqual(settings.Credentials, want) {
		t.Errorf("want %+v got %+v", want, settings.Credentials)
	}
}

func TestLoadSettingsMalformedCredentialBlob(t *testing.T) {
	settings := mssql.LoadSettings([]string{
		"WINDOWS_CREDENTIALS={broken",
		`MSSQL_WINDOWS_CREDENTIALS={"username":"legacy"}`,
	})
	// the malformed canonical blob consumes its tier, no fallthrough
	if !reflect.DeepEqual(settings.Credentials, mssql.WindowsCredentials{}) {
		t.Errorf("want empty credentials, got %+v", settings.Credentials)
	}
}

func TestLoadSettingsLegacyCredentialVars(t *testing.T) {
	settings := mssql.LoadSettings([]string{
		"MSSQL_USERNAME=u",
		"MSSQL_DOMAIN=CORP",
	})
	want := mssql.WindowsCredentials{
		Username: strptr("u"),
		Domain:   strptr("CORP"),
	}
	if !reflect.DeepEqual(settings.Credentials, want) {
		t.Errorf("want %+v got %+v", want, settings.Credentials)
	}
}

func TestLoadSettingsDefaultConnectionString(t *testing.T) {
	settings := mssql.LoadSettings([]string{
		"MSSQL_CONNECTION_STRING=Server=default;Database=apps",
	})
	if settings.DefaultConnectionString != "Server=default;Database=apps" {
		t.Errorf("unexpected default: %q", settings.DefaultConnectionString)
	}
}

func TestLoadSettingsEmptyValuesAreUnset(t *testing.T) {
	settings := mssql.LoadSettings([]string{
		"WINDOWS_USERNAME=",
		`WINDOWS_CREDENTIALS={"username":"u"}`,
	})
	want := mssql.WindowsCredentials{Username: strptr("u")}
	if !reflect.DeepEqual(settings.Credentials, want) {
		t.Errorf("want %+v got %+v", want, settings.Credentials)
	}
}
