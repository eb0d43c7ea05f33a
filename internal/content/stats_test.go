package content

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"content-hub/internal/domain"
)

func statsProvider() *Provider {
	remote := &fakeLeaf{name: domain.SourceSupabase, bundle: domain.Bundle{
		Courses: []domain.Record{
			{"id": "c1", "appId": "learn-ai"},
			{"id": "c2", "appId": "learn-go", "subdomain": "learn-ai"},
		},
		Profiles: []domain.Record{{"id": "p1"}},
	}}
	local := &fakeLeaf{name: domain.SourceLocal, bundle: domain.Bundle{
		Courses:   []domain.Record{{"id": "c1", "appId": "other"}, {"id": "c3", "app": "learn-ai"}},
		Modules:   []domain.Record{{"id": "m1", "appId": "learn-ai"}},
		Questions: []domain.Record{{"id": "q1", "appId": "learn-ai"}},
	}}
	found := &fakeLeaf{name: domain.SourceDiscovered, bundle: domain.Bundle{
		Lessons: []domain.Record{
			{"id": "l1", domain.FieldDiscoveredFrom: "learn-data-science"},
			{"id": "l2", domain.FieldDiscoveredFrom: "learn-ai"},
		},
	}}
	return newProvider(remote, local, found)
}

func TestStats(t *testing.T) {
	p := statsProvider()

	s, err := p.Stats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, EntityCounts{Courses: 3, Modules: 1, Lessons: 2, Profiles: 1}, s.Totals)
	assert.Equal(t, map[domain.Source]int{domain.SourceSupabase: 2, domain.SourceLocal: 1}, s.Sources[domain.Courses])
	assert.Equal(t, map[domain.Source]int{domain.SourceDiscovered: 2}, s.Sources[domain.Lessons])

	// c2 resolves to learn-go but also names learn-ai in subdomain
	assert.Equal(t, EntityCounts{Courses: 3, Modules: 1, Lessons: 1}, s.Apps["learn-ai"])
	assert.Equal(t, EntityCounts{Courses: 1}, s.Apps["learn-go"])
	assert.Equal(t, EntityCounts{Lessons: 1}, s.Apps["learn-data-science"])
	assert.NotContains(t, s.Apps, domain.UnknownApp)
	assert.NotContains(t, s.Apps, "other", "shadowed record must not count")
}

func TestStatsIdempotent(t *testing.T) {
	p := statsProvider()

	a, err := p.Stats(context.Background())
	require.NoError(t, err)
	b, err := p.Stats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, a.Totals, b.Totals)
	assert.Equal(t, a.Sources, b.Sources)
	assert.Equal(t, a.Apps, b.Apps)
}

func TestAppContent(t *testing.T) {
	p := statsProvider()

	ac, err := p.AppContent(context.Background(), "learn-ai")
	require.NoError(t, err)

	assert.Equal(t, "learn-ai", ac.AppID)
	assert.Equal(t, EntityCounts{Courses: 2, Modules: 1, Lessons: 1, Questions: 1}, ac.Stats)
	require.Len(t, ac.Courses, 2)
	assert.Equal(t, "c1", ac.Courses[0].ID())
	assert.Equal(t, domain.SourceSupabase, ac.Courses[0].Source())
	assert.Equal(t, "c3", ac.Courses[1].ID())
}

func TestAllApps(t *testing.T) {
	p := statsProvider()

	apps, err := p.AllApps(context.Background())
	require.NoError(t, err)

	want := []AppSummary{
		{ID: "learn-ai", Name: "Ai", Counts: EntityCounts{Courses: 2, Modules: 1, Lessons: 1}},
		{ID: "learn-data-science", Name: "Data Science", Counts: EntityCounts{Lessons: 1}},
		{ID: "learn-go", Name: "Go", Counts: EntityCounts{Courses: 1}},
	}
	assert.Equal(t, want, apps)
}

func TestAppName(t *testing.T) {
	testCases := map[string]string{
		"learn-machine-learning": "Machine Learning",
		"learn-ai":               "Ai",
		"admin":                  "Admin",
		"learn--go":              "Go",
		"my-learn-app":           "My Learn App",
		"":                       "",
	}
	for in, want := range testCases {
		assert.Equal(t, want, AppName(in), in)
	}
}

func TestConflicts(t *testing.T) {
	p := newProvider(
		leaf(domain.SourceSupabase,
			domain.Record{"id": "c1", "title": "Intro", "price": float64(10), "tags": []any{"a"}},
			domain.Record{"id": "c2", "title": "Solo"},
		),
		leaf(domain.SourceLocal,
			domain.Record{"id": "c1", "title": " intro ", "price": "12", "tags": []any{"b"}, "extra": true},
			domain.Record{"id": "c3"},
		),
		leaf(domain.SourceDiscovered,
			domain.Record{"id": "c1", "title": "Other", domain.FieldDiscoveredFrom: "learn-ai"},
			domain.Record{"id": "c3"},
		),
	)

	got, err := p.Conflicts(context.Background(), domain.Courses)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, Conflict{
		ID:       "c1",
		Winner:   domain.SourceSupabase,
		Shadowed: []domain.Source{domain.SourceLocal, domain.SourceDiscovered},
		Fields:   []string{"price", "tags", "title"},
	}, got[0])
	assert.Equal(t, Conflict{
		ID:       "c3",
		Winner:   domain.SourceLocal,
		Shadowed: []domain.Source{domain.SourceDiscovered},
		Fields:   []string{},
	}, got[1])
}
