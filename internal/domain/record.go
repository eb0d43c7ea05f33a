package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Source is the provenance tag stamped on every record by the leaf that produced it.
type Source string

const (
	SourceSupabase   Source = "supabase"
	SourceLocal      Source = "local"
	SourceDiscovered Source = "discovered"
)

// Record field names with special meaning across sources.
const (
	FieldID             = "id"
	FieldSource         = "_source"
	FieldDiscoveredFrom = "_discoveredFrom"
	FieldDiscoveredFile = "_discoveredFile"
)

// UnknownApp is returned by ResolveAppID when no app field is set.
const UnknownApp = "unknown"

// AppIDFields is the ordered list consulted by ResolveAppID. The first
// non-empty string wins.
var AppIDFields = []string{"appId", "app", "subdomain", FieldDiscoveredFrom}

// Record is one flat content row as produced by a leaf. Values keep their
// decoded JSON types (string, float64, bool, nil, []any, map[string]any).
//
// Records are treated as immutable once a leaf returns them: use With or
// Clone to derive a modified copy.
type Record map[string]any

// ID returns the string form of the id field, or "" if the record has none.
func (r Record) ID() string {
	return stringify(r[FieldID])
}

// Source returns the provenance tag.
func (r Record) Source() Source {
	s, _ := r[FieldSource].(string)
	return Source(s)
}

// String returns the field as a trimmed string ("" when missing or nil).
func (r Record) String(key string) string {
	return strings.TrimSpace(stringify(r[key]))
}

func (r Record) Clone() Record {
	out := make(Record, len(r)+2)
	for k, v := range r {
		out[k] = v
	}
	return out
}

// With returns a copy of r with key set to value.
func (r Record) With(key string, value any) Record {
	out := r.Clone()
	out[key] = value
	return out
}

// ResolveAppID walks AppIDFields in order and returns the first non-empty
// string value, or UnknownApp.
func ResolveAppID(r Record) string {
	for _, f := range AppIDFields {
		if s, ok := r[f].(string); ok {
			if s = strings.TrimSpace(s); s != "" {
				return s
			}
		}
	}
	return UnknownApp
}

// MatchesApp reports whether any of the app-identifying fields equals appID.
// Unlike ResolveAppID this is a membership check: a record carrying both
// appId "a" and app "b" matches both.
func MatchesApp(r Record, appID string) bool {
	return MatchesAnyField(r, appID, AppIDFields)
}

// MatchesAnyField reports whether any of fields holds the string appID.
// Both sides are trimmed, as in ResolveAppID.
func MatchesAnyField(r Record, appID string, fields []string) bool {
	appID = strings.TrimSpace(appID)
	if appID == "" {
		return false
	}
	for _, f := range fields {
		if s, ok := r[f].(string); ok && strings.TrimSpace(s) == appID {
			return true
		}
	}
	return false
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		if t == math.Trunc(t) && math.Abs(t) < 1e15 {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}

// Stringify renders a decoded JSON scalar the way record IDs are rendered.
func Stringify(v any) string { return stringify(v) }
