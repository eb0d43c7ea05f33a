// Package content merges the remote store, the static content file and the
// discovery scan into one deduplicated view of each entity type.
package content

import (
	"context"
	"slices"
	"strings"

	"content-hub/internal/concurrency"
	"content-hub/internal/discovery"
	"content-hub/internal/domain"
	"content-hub/internal/logger"
	"content-hub/internal/providers"
	discleaf "content-hub/internal/providers/discovery"
	"content-hub/internal/providers/remote"
	"content-hub/internal/providers/static"
	"content-hub/internal/query"
)

// Options is everything New needs. Relative paths should already be
// resolved; see config.Resolve.
type Options struct {
	Remote             remote.Config
	StaticContentPaths []string
	Discovery          discovery.Scanner
}

// Provider is safe for concurrent use. Leaves are fixed at construction and
// re-queried on every call.
type Provider struct {
	log    *logger.Logger
	leaves []providers.ContentProvider

	remote       *remote.Client
	remoteReason string
	meta         discovery.Metadata
}

// New builds the three leaves. A remote store that is unconfigured,
// placeholder or suspended is logged once and left out. The discovery scan
// runs here, once.
func New(ctx context.Context, opts Options, log *logger.Logger) *Provider {
	var leaves []providers.ContentProvider

	rc, err := remote.New(opts.Remote, log)
	reason := ""
	if err != nil {
		reason = err.Error()
		log.Info("remote store disabled", "reason", reason)
	} else {
		leaves = append(leaves, rc)
	}

	st := static.New(opts.StaticContentPaths, log)
	if path := st.Path(); path != "" {
		log.Info("static content file", "path", path)
	} else {
		log.Warn("no static content file", "candidates", st.Candidates())
	}
	leaves = append(leaves, st)

	scan := opts.Discovery.Scan(ctx, log)
	leaves = append(leaves, discleaf.New(scan))

	p := NewWithLeaves(log, scan.Metadata, leaves...)
	p.remote = rc
	p.remoteReason = reason
	return p
}

// NewWithLeaves wires arbitrary leaves. They are ordered by source priority
// (supabase, local, discovered, then anything else) keeping the given order
// among equals.
func NewWithLeaves(log *logger.Logger, meta discovery.Metadata, leaves ...providers.ContentProvider) *Provider {
	sorted := slices.Clone(leaves)
	slices.SortStableFunc(sorted, func(a, b providers.ContentProvider) int {
		return priority(a.Name()) - priority(b.Name())
	})
	if meta.Sources == nil {
		meta.Sources = []discovery.AppSource{}
	}
	return &Provider{log: log, leaves: sorted, meta: meta}
}

func priority(s domain.Source) int {
	switch s {
	case domain.SourceSupabase:
		return 0
	case domain.SourceLocal:
		return 1
	case domain.SourceDiscovered:
		return 2
	}
	return 3
}

// Close releases the remote store connection, if any.
func (p *Provider) Close() {
	if p.remote != nil {
		p.remote.Close()
	}
}

// List fetches entity from every leaf concurrently, merges in priority
// order and applies the post-merge pass. The only error is ctx's.
func (p *Provider) List(ctx context.Context, entity domain.EntityType, opts domain.QueryOptions) ([]domain.Record, error) {
	opts.AppID = strings.TrimSpace(opts.AppID)
	sets, err := p.fetchAll(ctx, entity, leafOptions(opts))
	if err != nil {
		return nil, err
	}
	return finish(Merge(sets...), opts), nil
}

// leafOptions is what each leaf is asked for. Leaves match an app filter
// against any app field, which is wider than the resolved appId finish
// keeps, so a leaf-side limit could be spent on records finish drops.
func leafOptions(opts domain.QueryOptions) domain.QueryOptions {
	if opts.AppID != "" {
		opts.Limit = 0
	}
	return opts
}

func (p *Provider) Courses(ctx context.Context, opts domain.QueryOptions) ([]domain.Record, error) {
	return p.List(ctx, domain.Courses, opts)
}

func (p *Provider) Modules(ctx context.Context, opts domain.QueryOptions) ([]domain.Record, error) {
	return p.List(ctx, domain.Modules, opts)
}

func (p *Provider) Lessons(ctx context.Context, opts domain.QueryOptions) ([]domain.Record, error) {
	return p.List(ctx, domain.Lessons, opts)
}

func (p *Provider) Profiles(ctx context.Context, opts domain.QueryOptions) ([]domain.Record, error) {
	return p.List(ctx, domain.Profiles, opts)
}

func (p *Provider) Questions(ctx context.Context, opts domain.QueryOptions) ([]domain.Record, error) {
	return p.List(ctx, domain.Questions, opts)
}

// fetchAll returns one record set per leaf, in leaf order. A failed leaf
// contributes an empty set.
func (p *Provider) fetchAll(ctx context.Context, entity domain.EntityType, opts domain.QueryOptions) ([][]domain.Record, error) {
	results, _ := concurrency.ProcessParallel(ctx, p.leaves, concurrency.ParallelOptions{MaxWorkers: len(p.leaves)},
		func(ctx context.Context, _ int, leaf providers.ContentProvider) (providers.Result, error) {
			return leaf.Fetch(ctx, entity, opts), nil
		})
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sets := make([][]domain.Record, len(results))
	for i, res := range results {
		if !res.OK() {
			p.log.Debug("source treated as empty",
				"source", p.leaves[i].Name(),
				"entity", entity,
				"kind", res.Err.Kind,
				"error", res.Err.Err,
			)
			sets[i] = nil
			continue
		}
		sets[i] = res.Records
	}
	return sets, nil
}

// Merge concatenates sets in priority order keeping the first record seen
// for each ID. Records without an ID are always kept.
func Merge(sets ...[]domain.Record) []domain.Record {
	n := 0
	for _, s := range sets {
		n += len(s)
	}
	out := make([]domain.Record, 0, n)
	seen := make(map[string]struct{}, n)
	for _, s := range sets {
		for _, r := range s {
			id := r.ID()
			if id == "" {
				out = append(out, r)
				continue
			}
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, r)
		}
	}
	return out
}

// finish narrows an app filter to the resolved appId, then re-sorts and
// truncates the merged set since each leaf only ordered and limited its own.
func finish(records []domain.Record, opts domain.QueryOptions) []domain.Record {
	if opts.AppID != "" {
		kept := make([]domain.Record, 0, len(records))
		for _, r := range records {
			if domain.ResolveAppID(r) == opts.AppID {
				kept = append(kept, r)
			}
		}
		records = kept
	}
	if opts.Order != nil && opts.Order.Field != "" {
		query.Sort(records, *opts.Order)
	}
	if opts.Limit > 0 && len(records) > opts.Limit {
		records = records[:opts.Limit]
	}
	return records
}
