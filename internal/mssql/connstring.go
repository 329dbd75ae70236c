package mssql

import (
	"fmt"
	"strconv"
	"strings"
)

type AuthMode int

const (
	AuthDefault AuthMode = iota
	AuthNTLM
)

// WindowsCredentials holds the process-wide credential set for NTLM
// authentication. Nil fields are absent, not empty strings.
type WindowsCredentials struct {
	Username *string
	Password *string
	Domain   *string
}

func (c WindowsCredentials) Empty() bool {
	return c.Username == nil && c.Password == nil
}

// Config is the driver-level form of one raw connection string. Built fresh
// on every parse, never stored.
type Config struct {
	Server                 string // verbatim, including \instance and ,port suffixes
	Database               string
	Auth                   AuthMode
	User                   *string
	Password               *string
	Domain                 *string
	Encrypt                bool
	TrustServerCertificate bool
}

// ParseConnectionString translates a semicolon-separated key=value string
// into a Config. Keys are case-insensitive, unrecognized keys are ignored.
// When the string selects integrated security, any embedded user/password is
// discarded and creds is injected instead; an empty credential set leaves
// user and password absent so the driver authenticates as the current
// process identity.
func ParseConnectionString(raw string, creds WindowsCredentials) Config {
	cfg := Config{
		Encrypt:                true,
		TrustServerCertificate: true,
	}
	var user, password string
	var hasUser, hasPassword bool
	for _, fragment := range strings.Split(raw, ";") {
		key, value, ok := strings.Cut(fragment, "=")
		if !ok {
			continue
		}
		key = strings.ToLower(strings.TrimSpace(key))
		value = strings.TrimSpace(value)
		switch key {
		case "server", "data source", "address", "addr":
			cfg.Server = value
		case "database", "initial catalog":
			cfg.Database = value
		case "user id", "uid", "user":
			user = value
			hasUser = true
		case "password", "pwd":
			password = value
			hasPassword = true
		case "integrated security":
			switch strings.ToLower(value) {
			case "true", "sspi":
				cfg.Auth = AuthNTLM
			}
		case "encrypt":
			if b, err := strconv.ParseBool(strings.ToLower(value)); err == nil {
				cfg.Encrypt = b
			}
		case "trustservercertificate":
			if b, err := strconv.ParseBool(strings.ToLower(value)); err == nil {
				cfg.TrustServerCertificate = b
			}
		}
	}

	if cfg.Auth == AuthNTLM {
		if !creds.Empty() {
			cfg.User = creds.Username
			cfg.Password = creds.Password
			cfg.Domain = creds.Domain
		}
		return cfg
	}
	if hasUser {
		cfg.User = &user
	}
	if hasPassword {
		cfg.Password = &password
	}
	return cfg
}

// DSN renders the connection string consumed by sql.Open("sqlserver", ...).
func (c Config) DSN() string {
	parts := make([]string, 0, 8)
	host, port := splitServerPort(c.Server)
	parts = append(parts, "server="+host)
	if port != "" {
		parts = append(parts, "port="+port)
	}
	if c.Database != "" {
		parts = append(parts, "database="+c.Database)
	}
	switch c.Auth {
	case AuthNTLM:
		if c.User != nil {
			user := *c.User
			if c.Domain != nil {
				user = *c.Domain + `\` + user
			}
			parts = append(parts, "authenticator=ntlm", "user id="+user)
			if c.Password != nil {
				parts = append(parts, "password="+*c.Password)
			}
		} else {
			parts = append(parts, "integrated security=SSPI")
		}
	default:
		if c.User != nil {
			parts = append(parts, "user id="+*c.User)
		}
		if c.Password != nil {
			parts = append(parts, "password="+*c.Password)
		}
	}
	parts = append(parts,
		fmt.Sprintf("encrypt=%t", c.Encrypt),
		fmt.Sprintf("trustservercertificate=%t", c.TrustServerCertificate))
	return strings.Join(parts, ";")
}

// splitServerPort detaches a trailing ,port suffix; the driver takes the port
// as a separate parameter. A \instance suffix stays with the host.
func splitServerPort(server string) (host, port string) {
	i := strings.LastIndexByte(server, ',')
	if i < 0 {
		return server, ""
	}
	p := strings.TrimSpace(server[i+1:])
	if p == "" {
		return server, ""
	}
	for _, r := range p {
		if r < '0' || r > '9' {
			return server, ""
		}
	}
	return strings.TrimSpace(server[:i]), p
}
