package devutil

import (
	"encoding/json"

	"content-hub/internal/domain"
)

// pick toma cualquier struct/map, lo pasa a map[string]any vía JSON,
// y devuelve solo las keys pedidas. Records skip the JSON round trip.
func pick(v any, keys ...string) map[string]any {
	var m map[string]any
	switch t := v.(type) {
	case domain.Record:
		m = t
	case map[string]any:
		m = t
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return map[string]any{}
		}
		if err := json.Unmarshal(b, &m); err != nil {
			return map[string]any{}
		}
	}

	out := make(map[string]any, len(keys))
	for _, k := range keys {
		if val, ok := m[k]; ok {
			out[k] = val
		}
	}
	return out
}

func Pick(v any, keys ...string) map[string]any {
	return pick(v, keys...)
}

// PickRecords projects every record onto keys. With no keys the records are
// returned as they are.
func PickRecords(records []domain.Record, keys ...string) []map[string]any {
	out := make([]map[string]any, 0, len(records))
	for _, r := range records {
		if len(keys) == 0 {
			out = append(out, r)
			continue
		}
		out = append(out, pick(r, keys...))
	}
	return out
}
