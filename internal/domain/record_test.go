package domain

import "testing"

func TestResolveAppID(t *testing.T) {
	testCases := []struct {
		name     string
		record   Record
		expected string
	}{
		{"appId wins", Record{"appId": "learn-ai", "app": "x", "subdomain": "y", "_discoveredFrom": "z"}, "learn-ai"},
		{"app before subdomain", Record{"app": "learn-go", "subdomain": "y"}, "learn-go"},
		{"subdomain before discovered", Record{"subdomain": "learn-ml", "_discoveredFrom": "z"}, "learn-ml"},
		{"discovered last", Record{"_discoveredFrom": "learn-rust"}, "learn-rust"},
		{"empty strings skipped", Record{"appId": "  ", "app": "learn-go"}, "learn-go"},
		{"non-strings skipped", Record{"appId": float64(3), "subdomain": "learn-ml"}, "learn-ml"},
		{"nothing set", Record{"id": "1"}, UnknownApp},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ResolveAppID(tc.record); got != tc.expected {
				t.Errorf("ResolveAppID(%v) = %q, want %q", tc.record, got, tc.expected)
			}
		})
	}
}

func TestMatchesApp(t *testing.T) {
	r := Record{"appId": "a", "app": "b"}
	if !MatchesApp(r, "a") || !MatchesApp(r, "b") {
		t.Error("Expected membership match on every app field")
	}
	if MatchesApp(r, "c") {
		t.Error("Expected no match for an absent app")
	}

	padded := Record{"appId": " learn-ai "}
	if got := ResolveAppID(padded); got != "learn-ai" || !MatchesApp(padded, got) {
		t.Errorf("Expected padded appId to resolve and match as %q, got %q", "learn-ai", got)
	}
	if MatchesApp(Record{"appId": "  "}, "") {
		t.Error("Expected blank appId to match nothing")
	}
}

func TestRecordID(t *testing.T) {
	testCases := []struct {
		input    any
		expected string
	}{
		{"c1", "c1"},
		{float64(42), "42"},
		{float64(1.5), "1.5"},
		{nil, ""},
		{true, "true"},
	}

	for _, tc := range testCases {
		r := Record{"id": tc.input}
		if got := r.ID(); got != tc.expected {
			t.Errorf("Record{id:%v}.ID() = %q, want %q", tc.input, got, tc.expected)
		}
	}
}

func TestWithDoesNotMutate(t *testing.T) {
	orig := Record{"id": "1"}
	tagged := orig.With(FieldSource, string(SourceLocal))

	if _, ok := orig[FieldSource]; ok {
		t.Error("Expected original record to stay untagged")
	}
	if tagged.Source() != SourceLocal {
		t.Errorf("Expected tagged source 'local', got %q", tagged.Source())
	}
}

func TestParseEntityType(t *testing.T) {
	for _, in := range []string{"courses", "Course", " lesson "} {
		if _, err := ParseEntityType(in); err != nil {
			t.Errorf("ParseEntityType(%q) returned error: %v", in, err)
		}
	}
	if _, err := ParseEntityType("users"); err == nil {
		t.Error("Expected error for unknown entity type")
	}
}

func TestActiveFilters(t *testing.T) {
	opts := QueryOptions{Filters: map[string]any{"status": "published", "category": "all", "tier": nil}}
	active := opts.ActiveFilters()
	if len(active) != 1 || active["status"] != "published" {
		t.Errorf("Unexpected active filters %v", active)
	}
}
