package mssql

import "context"

// Client bundles the resolver and the session pool behind the surface the
// tool layer consumes.
type Client struct {
	resolver *Resolver
	pool     *Pool
}

func NewClient(settings Settings) *Client {
	resolver := NewResolver(settings)
	return &Client{
		resolver: resolver,
		pool:     NewPool(resolver.Credentials()),
	}
}

func (c *Client) ResolveConnectionString(connectionString, connectionName string) (string, error) {
	return c.resolver.Resolve(connectionString, connectionName)
}

func (c *Client) Acquire(ctx context.Context, connectionString, connectionName string) (*Session, error) {
	raw, err := c.resolver.Resolve(connectionString, connectionName)
	if err != nil {
		return nil, err
	}
	return c.pool.Acquire(ctx, raw)
}

func (c *Client) Execute(ctx context.Context, connectionString, connectionName, query string) (*Result, error) {
	session, err := c.Acquire(ctx, connectionString, connectionName)
	if err != nil {
		return nil, err
	}
	return session.Execute(ctx, query)
}

func (c *Client) NamedConnections() []NamedConnection {
	return c.resolver.Named()
}

func (c *Client) HasDefault() bool {
	return c.resolver.HasDefault()
}

func (c *Client) CloseAll() {
	c.pool.CloseAll()
}
