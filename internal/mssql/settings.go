package mssql

import (
	"encoding/json"
	"log/slog"
	"strings"
)

const connectionPrefix = "CONNECTION_"

// Settings is the process-wide configuration snapshot: default connection
// string, named connections and Windows credentials. Built once at startup,
// immutable afterwards.
type Settings struct {
	DefaultConnectionString string
	Connections             map[string]string
	Credentials             WindowsCredentials
}

// LoadSettings composes Settings from an environment snapshot as returned by
// os.Environ. Variables set to an empty value count as unset. Malformed JSON
// sources are logged and never fatal.
func LoadSettings(environ []string) Settings {
	env := make(map[string]string, len(environ))
	for _, kv := range environ {
		if k, v, ok := strings.Cut(kv, "="); ok {
			env[k] = v
		}
	}
	return Settings{
		DefaultConnectionString: env["MSSQL_CONNECTION_STRING"],
		Connections:             loadConnections(env),
		Credentials:             loadCredentials(env),
	}
}

// loadCredentials walks the credential sources in precedence order. The first
// tier with any variable set wins outright; a blob that fails to parse leaves
// the credentials empty rather than falling through.
func loadCredentials(env map[string]string) WindowsCredentials {
	if creds, ok := credentialVars(env, "WINDOWS_USERNAME", "WINDOWS_PASSWORD", "WINDOWS_DOMAIN"); ok {
		return creds
	}
	for _, key := range []string{"WINDOWS_CREDENTIALS", "MSSQL_WINDOWS_CREDENTIALS"} {
		if blob := env[key]; blob != "" {
			return credentialBlob(key, blob)
		}
	}
	creds, _ := credentialVars(env, "MSSQL_USERNAME", "MSSQL_PASSWORD", "MSSQL_DOMAIN")
	return creds
}

func credentialVars(env map[string]string, userKey, passKey, domainKey string) (WindowsCredentials, bool) {
	var creds WindowsCredentials
	var found bool
	if v := env[userKey]; v != "" {
		creds.Username = &v
		found = true
	}
	if v := env[passKey]; v != "" {
		creds.Password = &v
		found = true
	}
	if v := env[domainKey]; v != "" {
		creds.Domain = &v
		found = true
	}
	return creds, found
}

func credentialBlob(key, blob string) WindowsCredentials {
	var parsed struct {
		Username *string `json:"username"`
		Password *string `json:"password"`
		Domain   *string `json:"domain"`
	}
	if err := json.Unmarshal([]byte(blob), &parsed); err != nil {
		slog.Warn("ignoring malformed credentials", "var", key, "error", err)
		return WindowsCredentials{}
	}
	return WindowsCredentials{
		Username: parsed.Username,
		Password: parsed.Password,
		Domain:   parsed.Domain,
	}
}

// loadConnections walks the named-connection sources in precedence order:
// CONNECTION_* variables win outright, then the CONNECTIONS JSON object, then
// the legacy MSSQL_CONNECTIONS one. A source that fails to parse or parses
// empty falls through to the next. Aliases are lowercased.
func loadConnections(env map[string]string) map[string]string {
	conns := make(map[string]string)
	for key, value := range env {
		name, ok := strings.CutPrefix(key, connectionPrefix)
		if !ok || name == "" || value == "" {
			continue
		}
		conns[strings.ToLower(name)] = value
	}
	if len(conns) > 0 {
		return conns
	}
	for _, key := range []string{"CONNECTIONS", "MSSQL_CONNECTIONS"} {
		blob := env[key]
		if blob == "" {
			continue
		}
		var parsed map[string]string
		if err := json.Unmarshal([]byte(blob), &parsed); err != nil {
			slog.Warn("ignoring malformed named connections", "var", key, "error", err)
			continue
		}
		for name, value := range parsed {
			if name == "" || value == "" {
				continue
			}
			conns[strings.ToLower(name)] = value
		}
		if len(conns) > 0 {
			return conns
		}
	}
	return conns
}
