package remote

import (
	"context"
	"errors"
	"fmt"

	"content-hub/internal/domain"
	"content-hub/internal/logger"
	"content-hub/internal/providers"
)

// Backend runs one table query against the hosted store.
type Backend interface {
	Select(ctx context.Context, table domain.EntityType, opts domain.QueryOptions) ([]domain.Record, error)
	Close()
}

// Client is the remote leaf. It only exists when Validate passed.
type Client struct {
	backend Backend
	log     *logger.Logger
}

// New validates cfg and picks a backend: direct Postgres when a database URL
// is configured, the REST surface otherwise.
func New(cfg Config, log *logger.Logger) (*Client, error) {
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	var (
		b   Backend
		err error
	)
	if cfg.UsesDatabase() {
		b, err = NewPostgres(cfg)
	} else {
		b = NewPostgREST(cfg)
	}
	if err != nil {
		return nil, err
	}
	return NewWithBackend(b, log), nil
}

func NewWithBackend(b Backend, log *logger.Logger) *Client {
	return &Client{backend: b, log: log.With("source", domain.SourceSupabase)}
}

func (c *Client) Name() domain.Source { return domain.SourceSupabase }

func (c *Client) Fetch(ctx context.Context, entity domain.EntityType, opts domain.QueryOptions) providers.Result {
	rows, err := c.backend.Select(ctx, entity, opts)
	if err != nil {
		kind := providers.KindQueryFailed
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			kind = providers.KindCanceled
		}
		c.log.Error("remote query failed", "table", entity, "error", err)
		return providers.Empty(domain.SourceSupabase, kind, fmt.Errorf("select %s: %w", entity, err))
	}
	return providers.Ok(domain.SourceSupabase, providers.Tag(domain.SourceSupabase, rows))
}

func (c *Client) Close() { c.backend.Close() }

// remoteAppFields are the columns an appId filter is matched against.
var remoteAppFields = []string{"appId", "app", "subdomain"}
