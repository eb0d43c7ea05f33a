package domain

// AllSentinel is the filter value the admin UI sends for "no filter".
const AllSentinel = "all"

// Order sorts results by a single field.
type Order struct {
	Field     string `json:"field"`
	Ascending bool   `json:"ascending"`
}

// QueryOptions is the options bag accepted by every leaf and by the
// orchestrator list calls.
type QueryOptions struct {
	AppID   string         `json:"appId,omitempty"`
	Filters map[string]any `json:"filters,omitempty"`
	Order   *Order         `json:"order,omitempty"`
	Limit   int            `json:"limit,omitempty"`
}

// IsSkippedFilterValue reports whether a filter value means "don't filter".
func IsSkippedFilterValue(v any) bool {
	if v == nil {
		return true
	}
	s, ok := v.(string)
	return ok && s == AllSentinel
}

// ActiveFilters returns the filters that actually constrain results.
func (o QueryOptions) ActiveFilters() map[string]any {
	out := make(map[string]any, len(o.Filters))
	for k, v := range o.Filters {
		if k == "" || IsSkippedFilterValue(v) {
			continue
		}
		out[k] = v
	}
	return out
}
