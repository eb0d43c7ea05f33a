// Package query applies the store's filter/order/limit semantics to records
// already held in memory.
package query

import (
	"cmp"
	"slices"
	"strconv"
	"strings"

	"content-hub/internal/domain"
)

// Apply filters by equality, then by appId against appFields, then sorts and
// truncates. The input slice is not modified.
func Apply(records []domain.Record, opts domain.QueryOptions, appFields []string) []domain.Record {
	filters := opts.ActiveFilters()
	out := make([]domain.Record, 0, len(records))
	for _, r := range records {
		if !matchFilters(r, filters) {
			continue
		}
		if opts.AppID != "" && !domain.MatchesAnyField(r, opts.AppID, appFields) {
			continue
		}
		out = append(out, r)
	}
	if opts.Order != nil && opts.Order.Field != "" {
		Sort(out, *opts.Order)
	}
	if opts.Limit > 0 && len(out) > opts.Limit {
		out = out[:opts.Limit]
	}
	return out
}

func matchFilters(r domain.Record, filters map[string]any) bool {
	for k, want := range filters {
		if !Equal(r[k], want) {
			return false
		}
	}
	return true
}

// Equal compares decoded JSON values. Numbers compare numerically; values of
// different kinds fall back to their string form, so true matches "true".
func Equal(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if fa, ok := toFloat(a); ok {
		if fb, ok := toFloat(b); ok {
			return fa == fb
		}
	}
	return domain.Stringify(a) == domain.Stringify(b)
}

// Sort is a stable sort on one field. Ascending puts missing values last,
// descending puts them first.
func Sort(records []domain.Record, o domain.Order) {
	slices.SortStableFunc(records, func(x, y domain.Record) int {
		c := compareNullsLast(x[o.Field], y[o.Field])
		if !o.Ascending {
			c = -c
		}
		return c
	})
}

func compareNullsLast(a, b any) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	}
	if fa, ok := toFloat(a); ok {
		if fb, ok := toFloat(b); ok {
			return cmp.Compare(fa, fb)
		}
	}
	if ba, ok := a.(bool); ok {
		if bb, ok := b.(bool); ok {
			return cmp.Compare(boolInt(ba), boolInt(bb))
		}
	}
	return strings.Compare(domain.Stringify(a), domain.Stringify(b))
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func toFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	}
	return 0, false
}

// ParseValue turns a command-line or query-string filter value into the JSON
// type it most likely stands for.
func ParseValue(s string) any {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "true":
		return true
	case "false":
		return false
	case "null":
		return nil
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}
