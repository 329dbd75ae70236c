package mssql

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"

	_ "github.com/microsoft/go-mssqldb"                     // sqlserver driver
	_ "github.com/microsoft/go-mssqldb/integratedauth/ntlm" // authenticator=ntlm
	"golang.org/x/sync/singleflight"
)

// Session owns one live, logged-in connection, keyed by the raw resolved
// connection string that created it.
type Session struct {
	key    string
	server string
	db     *sql.DB
	pool   *Pool
}

func (s *Session) Key() string { return s.key }

// Pool caches at most one Session per distinct raw connection string.
// Sessions are created lazily on first use, evicted on connection errors and
// never expired by time or idleness.
type Pool struct {
	credentials WindowsCredentials
	open        func(ctx context.Context, cfg Config) (*sql.DB, error)
	group       singleflight.Group

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewPool(credentials WindowsCredentials) *Pool {
	return &Pool{
		credentials: credentials,
		open:        openDatabase,
		sessions:    make(map[string]*Session),
	}
}

func openDatabase(ctx context.Context, cfg Config) (*sql.DB, error) {
	db, err := sql.Open("sqlserver", cfg.DSN())
	if err != nil {
		return nil, err
	}
	db.SetConnMaxIdleTime(0)
	db.SetConnMaxLifetime(0)
	// the ping is the login handshake
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// Acquire returns the session cached under raw, opening and caching a new one
// on a miss. Concurrent cold acquisitions for the same key share one login
// attempt. A failed login is never cached.
func (p *Pool) Acquire(ctx context.Context, raw string) (*Session, error) {
	p.mu.Lock()
	s, ok := p.sessions[raw]
	p.mu.Unlock()
	if ok {
		return s, nil
	}

	v, err, _ := p.group.Do(raw, func() (any, error) {
		p.mu.Lock()
		s, ok := p.sessions[raw]
		p.mu.Unlock()
		if ok {
			return s, nil
		}
		cfg := ParseConnectionString(raw, p.credentials)
		db, err := p.open(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to %q: %w", cfg.Server, err)
		}
		s = &Session{key: raw, server: cfg.Server, db: db, pool: p}
		p.mu.Lock()
		p.sessions[raw] = s
		p.mu.Unlock()
		slog.Info("session established", "server", cfg.Server, "database", cfg.Database)
		return s, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Session), nil
}

// Evict drops and closes the session cached under key so the next acquisition
// performs a fresh login.
func (p *Pool) Evict(key string) {
	p.mu.Lock()
	s, ok := p.sessions[key]
	delete(p.sessions, key)
	p.mu.Unlock()
	if ok {
		s.db.Close()
		slog.Warn("session evicted", "server", s.server)
	}
}

// CloseAll closes every cached session. Shutdown hook.
func (p *Pool) CloseAll() {
	p.mu.Lock()
	sessions := p.sessions
	p.sessions = make(map[string]*Session)
	p.mu.Unlock()
	for _, s := range sessions {
		if err := s.db.Close(); err != nil {
			slog.Error("failed to close session", "server", s.server, "error", err)
		}
	}
}
