package discovery

import (
	"context"

	"content-hub/internal/discovery"
	"content-hub/internal/domain"
	"content-hub/internal/providers"
	"content-hub/internal/query"
)

var appFields = []string{"appId", "app", "subdomain", domain.FieldDiscoveredFrom}

// Leaf serves the records of one completed scan.
type Leaf struct {
	result *discovery.Result
}

func New(result *discovery.Result) *Leaf {
	if result == nil {
		result = discovery.EmptyResult()
	}
	return &Leaf{result: result}
}

func (l *Leaf) Name() domain.Source { return domain.SourceDiscovered }

func (l *Leaf) Metadata() discovery.Metadata { return l.result.Metadata }

func (l *Leaf) Fetch(ctx context.Context, entity domain.EntityType, opts domain.QueryOptions) providers.Result {
	if err := ctx.Err(); err != nil {
		return providers.Empty(domain.SourceDiscovered, providers.KindCanceled, err)
	}
	tagged := providers.Tag(domain.SourceDiscovered, l.result.Bundle.Get(entity))
	return providers.Ok(domain.SourceDiscovered, query.Apply(tagged, opts, appFields))
}
