// Package contentfile decodes content documents written as JSON or YAML into
// JSON-typed values.
package contentfile

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"content-hub/internal/domain"
)

var ErrUnsupported = errors.New("unsupported content file extension")

// Supported reports whether name has an extension Decode understands.
func Supported(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json", ".yaml", ".yml":
		return true
	}
	return false
}

// Decode parses raw according to name's extension. YAML documents are
// round-tripped through JSON so numbers become float64 and maps
// map[string]any, the same as a JSON document.
func Decode(name string, raw []byte) (any, error) {
	var v any
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json":
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, fmt.Errorf("decode %s: %w", name, err)
		}
		return v, nil
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(raw, &v); err != nil {
			return nil, fmt.Errorf("decode %s: %w", name, err)
		}
		b, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("decode %s: yaml to json: %w", name, err)
		}
		v = nil
		if err := json.Unmarshal(b, &v); err != nil {
			return nil, fmt.Errorf("decode %s: %w", name, err)
		}
		return v, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupported, name)
}

// DecodeBundle parses a whole content document. Entity keys holding
// something other than an array of objects are an error; non-object array
// members are dropped.
func DecodeBundle(name string, raw []byte) (*domain.Bundle, error) {
	v, err := Decode(name, raw)
	if err != nil {
		return nil, err
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("decode %s: top level is not an object", name)
	}
	b := &domain.Bundle{}
	for _, e := range domain.AllEntities {
		val, present := obj[string(e)]
		if !present || val == nil {
			continue
		}
		records, ok := Records(val)
		if !ok {
			return nil, fmt.Errorf("decode %s: %q is not an array", name, e)
		}
		b.Set(e, records)
	}
	return b, nil
}

// Records converts a decoded array into records, skipping non-objects.
func Records(v any) ([]domain.Record, bool) {
	arr, ok := v.([]any)
	if !ok {
		return nil, false
	}
	out := make([]domain.Record, 0, len(arr))
	for _, item := range arr {
		if m, ok := item.(map[string]any); ok {
			out = append(out, domain.Record(m))
		}
	}
	return out, true
}
