package content

import (
	"context"
	"sort"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"content-hub/internal/domain"
)

// EntityCounts holds one number per entity type.
type EntityCounts struct {
	Courses   int `json:"courses"`
	Modules   int `json:"modules"`
	Lessons   int `json:"lessons"`
	Profiles  int `json:"profiles"`
	Questions int `json:"questions"`
}

func (c *EntityCounts) Add(e domain.EntityType, n int) {
	switch e {
	case domain.Courses:
		c.Courses += n
	case domain.Modules:
		c.Modules += n
	case domain.Lessons:
		c.Lessons += n
	case domain.Profiles:
		c.Profiles += n
	case domain.Questions:
		c.Questions += n
	}
}

type Stats struct {
	Totals      EntityCounts                                `json:"totals"`
	Sources     map[domain.EntityType]map[domain.Source]int `json:"sources"`
	Apps        map[string]EntityCounts                     `json:"apps"`
	GeneratedAt time.Time                                   `json:"generatedAt"`
}

// statsEntities are fetched by Stats. Questions are left out.
var statsEntities = []domain.EntityType{domain.Courses, domain.Modules, domain.Lessons, domain.Profiles}

// fetchMany runs List for each entity concurrently.
func (p *Provider) fetchMany(ctx context.Context, entities []domain.EntityType, opts domain.QueryOptions) ([][]domain.Record, error) {
	out := make([][]domain.Record, len(entities))
	g, gctx := errgroup.WithContext(ctx)
	for i, e := range entities {
		i, e := i, e
		g.Go(func() error {
			records, err := p.List(gctx, e, opts)
			if err != nil {
				return err
			}
			out[i] = records
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Stats counts courses, modules, lessons and profiles overall, per source
// and per app. An app is counted for a record when any of its app fields
// names it.
func (p *Provider) Stats(ctx context.Context) (*Stats, error) {
	sets, err := p.fetchMany(ctx, statsEntities, domain.QueryOptions{})
	if err != nil {
		return nil, err
	}

	s := &Stats{
		Sources:     make(map[domain.EntityType]map[domain.Source]int, len(statsEntities)),
		Apps:        map[string]EntityCounts{},
		GeneratedAt: time.Now().UTC(),
	}
	apps := map[string]struct{}{}
	for i, e := range statsEntities {
		s.Totals.Add(e, len(sets[i]))
		bySource := map[domain.Source]int{}
		for _, r := range sets[i] {
			bySource[r.Source()]++
			if app := domain.ResolveAppID(r); app != domain.UnknownApp {
				apps[app] = struct{}{}
			}
		}
		s.Sources[e] = bySource
	}

	for app := range apps {
		var c EntityCounts
		for i, e := range statsEntities {
			for _, r := range sets[i] {
				if domain.MatchesApp(r, app) {
					c.Add(e, 1)
				}
			}
		}
		s.Apps[app] = c
	}
	return s, nil
}

// AppContent is every entity filtered to one app, with counts.
type AppContent struct {
	AppID string `json:"appId"`
	domain.Bundle
	Stats EntityCounts `json:"stats"`
}

func (p *Provider) AppContent(ctx context.Context, appID string) (*AppContent, error) {
	sets, err := p.fetchMany(ctx, domain.AllEntities, domain.QueryOptions{AppID: appID})
	if err != nil {
		return nil, err
	}
	ac := &AppContent{AppID: appID}
	for i, e := range domain.AllEntities {
		ac.Bundle.Set(e, sets[i])
		ac.Stats.Add(e, len(sets[i]))
	}
	return ac, nil
}

// AppSummary describes one app seen in the content.
type AppSummary struct {
	ID     string       `json:"id"`
	Name   string       `json:"name"`
	Counts EntityCounts `json:"counts"`
}

var appEntities = []domain.EntityType{domain.Courses, domain.Modules, domain.Lessons}

// AllApps lists the distinct resolved appIds across courses, modules and
// lessons, sorted by ID. Records without an app are not listed.
func (p *Provider) AllApps(ctx context.Context) ([]AppSummary, error) {
	sets, err := p.fetchMany(ctx, appEntities, domain.QueryOptions{})
	if err != nil {
		return nil, err
	}

	counts := map[string]*EntityCounts{}
	for i, e := range appEntities {
		for _, r := range sets[i] {
			app := domain.ResolveAppID(r)
			if app == domain.UnknownApp {
				continue
			}
			c, ok := counts[app]
			if !ok {
				c = &EntityCounts{}
				counts[app] = c
			}
			c.Add(e, 1)
		}
	}

	out := make([]AppSummary, 0, len(counts))
	for id, c := range counts {
		out = append(out, AppSummary{ID: id, Name: AppName(id), Counts: *c})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// AppName turns "learn-machine-learning" into "Machine Learning".
func AppName(appID string) string {
	words := strings.Fields(strings.ReplaceAll(strings.TrimPrefix(appID, "learn-"), "-", " "))
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	return strings.Join(words, " ")
}
