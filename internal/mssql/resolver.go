package mssql

import (
	"fmt"
	"slices"
	"strings"
)

type NamedConnection struct {
	Name             string `json:"name"`
	ConnectionString string `json:"connectionString"`
}

// ResolutionError reports a call that could not be resolved to a connection
// string. Known lists the aliases configured at startup.
type ResolutionError struct {
	Name  string
	Known []string
}

func (e *ResolutionError) Error() string {
	if e.Name == "" {
		return "no connection available: pass a connection string or a connection name, or configure a default connection"
	}
	if len(e.Known) == 0 {
		return fmt.Sprintf("named connection %q not found: no named connections are configured", e.Name)
	}
	return fmt.Sprintf("named connection %q not found: known connections are %s", e.Name, strings.Join(e.Known, ", "))
}

// Resolver turns a per-call selector into one definitive connection string:
// explicit string first, then named connection, then the default.
type Resolver struct {
	defaultConnection string
	connections       map[string]string
	credentials       WindowsCredentials
}

func NewResolver(settings Settings) *Resolver {
	return &Resolver{
		defaultConnection: settings.DefaultConnectionString,
		connections:       settings.Connections,
		credentials:       settings.Credentials,
	}
}

func (r *Resolver) Resolve(connectionString, connectionName string) (string, error) {
	if connectionString != "" {
		return connectionString, nil
	}
	if connectionName != "" {
		cs, ok := r.connections[connectionName]
		if !ok {
			return "", &ResolutionError{Name: connectionName, Known: r.aliases()}
		}
		return cs, nil
	}
	if r.defaultConnection != "" {
		return r.defaultConnection, nil
	}
	return "", &ResolutionError{Known: r.aliases()}
}

func (r *Resolver) Named() []NamedConnection {
	list := make([]NamedConnection, 0, len(r.connections))
	for _, name := range r.aliases() {
		list = append(list, NamedConnection{Name: name, ConnectionString: r.connections[name]})
	}
	return list
}

func (r *Resolver) HasDefault() bool {
	return r.defaultConnection != ""
}

func (r *Resolver) Credentials() WindowsCredentials {
	return r.credentials
}

func (r *Resolver) aliases() []string {
	names := make([]string, 0, len(r.connections))
	for name := range r.connections {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
