package content

import (
	"context"
	"sort"
	"strings"

	"github.com/google/go-cmp/cmp"

	"content-hub/internal/domain"
	"content-hub/internal/query"
)

// Conflict is one ID supplied by more than one leaf. Winner is the source
// the merge kept; Fields lists the fields where a shadowed copy disagrees.
type Conflict struct {
	ID       string          `json:"id"`
	Winner   domain.Source   `json:"winner"`
	Shadowed []domain.Source `json:"shadowed"`
	Fields   []string        `json:"fields"`
}

// Conflicts reports every ID of entity that more than one leaf returned,
// in merge order.
func (p *Provider) Conflicts(ctx context.Context, entity domain.EntityType) ([]Conflict, error) {
	sets, err := p.fetchAll(ctx, entity, domain.QueryOptions{})
	if err != nil {
		return nil, err
	}

	type seen struct {
		winner domain.Record
		idx    int
	}
	first := map[string]*seen{}
	var out []Conflict
	for _, set := range sets {
		for _, r := range set {
			id := r.ID()
			if id == "" {
				continue
			}
			s, ok := first[id]
			if !ok {
				first[id] = &seen{winner: r, idx: -1}
				continue
			}
			if r.Source() == s.winner.Source() {
				continue
			}
			if s.idx < 0 {
				s.idx = len(out)
				out = append(out, Conflict{ID: id, Winner: s.winner.Source(), Fields: []string{}})
			}
			c := &out[s.idx]
			c.Shadowed = append(c.Shadowed, r.Source())
			c.Fields = mergeFields(c.Fields, diffFields(s.winner, r))
		}
	}
	if out == nil {
		out = []Conflict{}
	}
	return out, nil
}

// diffFields lists the fields both records carry with different values.
// Provenance fields and fields missing on either side are ignored.
func diffFields(winner, other domain.Record) []string {
	var out []string
	for k, wv := range winner {
		if strings.HasPrefix(k, "_") {
			continue
		}
		ov, ok := other[k]
		if !ok || ov == nil || wv == nil {
			continue
		}
		if !sameValue(wv, ov) {
			out = append(out, k)
		}
	}
	return out
}

func sameValue(a, b any) bool {
	as, aok := a.(string)
	bs, bok := b.(string)
	if aok && bok {
		return norm(as) == norm(bs)
	}
	switch a.(type) {
	case []any, map[string]any:
		return cmp.Equal(a, b)
	}
	return query.Equal(a, b)
}

func norm(s string) string {
	return strings.TrimSpace(strings.ToLower(s))
}

func mergeFields(have, add []string) []string {
	for _, f := range add {
		found := false
		for _, h := range have {
			if h == f {
				found = true
				break
			}
		}
		if !found {
			have = append(have, f)
		}
	}
	sort.Strings(have)
	return have
}
