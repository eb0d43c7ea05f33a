package query

import (
	"testing"

	"content-hub/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var localAppFields = []string{"appId", "_discoveredFrom", "app"}

func ids(records []domain.Record) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.ID())
	}
	return out
}

func TestApplyFilters(t *testing.T) {
	records := []domain.Record{
		{"id": "1", "status": "published", "free": true},
		{"id": "2", "status": "draft", "free": true},
		{"id": "3", "status": "published", "free": false},
	}

	t.Run("equality", func(t *testing.T) {
		got := Apply(records, domain.QueryOptions{Filters: map[string]any{"status": "published"}}, localAppFields)
		assert.Equal(t, []string{"1", "3"}, ids(got))
	})

	t.Run("all sentinel and nil are skipped", func(t *testing.T) {
		got := Apply(records, domain.QueryOptions{Filters: map[string]any{"status": "all", "free": nil}}, localAppFields)
		assert.Len(t, got, 3)
	})

	t.Run("string value matches bool field", func(t *testing.T) {
		got := Apply(records, domain.QueryOptions{Filters: map[string]any{"free": "true"}}, localAppFields)
		assert.Equal(t, []string{"1", "2"}, ids(got))
	})
}

func TestApplyAppID(t *testing.T) {
	records := []domain.Record{
		{"id": "1", "appId": "learn-ai"},
		{"id": "2", "_discoveredFrom": "learn-ai"},
		{"id": "3", "app": "learn-ai"},
		{"id": "4", "subdomain": "learn-ai"},
		{"id": "5", "appId": "learn-go"},
	}

	got := Apply(records, domain.QueryOptions{AppID: "learn-ai"}, localAppFields)
	assert.Equal(t, []string{"1", "2", "3"}, ids(got), "subdomain is not an app field for local records")
}

func TestApplyOrderAndLimit(t *testing.T) {
	records := []domain.Record{
		{"id": "a", "order": float64(2)},
		{"id": "b"},
		{"id": "c", "order": float64(1)},
		{"id": "d", "order": float64(3)},
	}

	asc := Apply(records, domain.QueryOptions{Order: &domain.Order{Field: "order", Ascending: true}}, nil)
	assert.Equal(t, []string{"c", "a", "d", "b"}, ids(asc), "nulls last when ascending")

	desc := Apply(records, domain.QueryOptions{Order: &domain.Order{Field: "order"}}, nil)
	assert.Equal(t, []string{"b", "d", "a", "c"}, ids(desc), "nulls first when descending")

	limited := Apply(records, domain.QueryOptions{Order: &domain.Order{Field: "order", Ascending: true}, Limit: 2}, nil)
	assert.Equal(t, []string{"c", "a"}, ids(limited))

	require.Equal(t, "a", records[0].ID(), "input must not be reordered")
}

func TestEqual(t *testing.T) {
	assert.True(t, Equal(float64(1), 1))
	assert.True(t, Equal(float64(1), "1"))
	assert.True(t, Equal(true, "true"))
	assert.False(t, Equal(nil, ""))
	assert.True(t, Equal(nil, nil))
	assert.False(t, Equal("a", "b"))
}

func TestParseValue(t *testing.T) {
	assert.Equal(t, true, ParseValue("TRUE"))
	assert.Equal(t, float64(3), ParseValue("3"))
	assert.Nil(t, ParseValue("null"))
	assert.Equal(t, "learn-ai", ParseValue(" learn-ai "))
}
