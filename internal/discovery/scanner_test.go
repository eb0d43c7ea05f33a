package discovery

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"content-hub/internal/domain"
	"content-hub/internal/logger"
)

func write(t *testing.T, root, rel, body string) {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
}

func fixture(t *testing.T) string {
	root := t.TempDir()
	write(t, root, "learn-ai/data/content.json", `{"courses":[{"id":"c1","title":"AI"}],"lessons":[{"id":"l1"},{"id":"l2"}]}`)
	write(t, root, "learn-ai/src/quiz.yaml", "- id: q1\n  prompt: What?\n- 42\n")
	write(t, root, "learn-ai/package.json", `{"courses":[{"id":"nope"}]}`)
	write(t, root, "learn-ai/tsconfig.json", `{"modules":[{"id":"nope"}]}`)
	write(t, root, "learn-ai/node_modules/x/courses.json", `[{"id":"nope"}]`)
	write(t, root, "learn-ai/.next/courses.json", `[{"id":"nope"}]`)
	write(t, root, "learn-ai/settings.json", `{"theme":"dark"}`)
	write(t, root, "learn-go/modules.json", `{"modules":[{"id":"m1"}]}`)
	write(t, root, "learn-go/broken.json", `{`)
	write(t, root, "learn-go/profile.json", `{"profile":[{"id":"p1"}]}`)
	write(t, root, ".hidden-app/courses.json", `[{"id":"nope"}]`)
	write(t, root, "README.md", "# apps")
	return root
}

func ids(records []domain.Record) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.ID())
	}
	return out
}

func TestScanCollectsRecognizedShapes(t *testing.T) {
	root := fixture(t)
	res := Scanner{Roots: []string{root}}.Scan(context.Background(), logger.Nop())

	assert.Equal(t, []string{"c1"}, ids(res.Bundle.Courses))
	assert.Equal(t, []string{"l1", "l2"}, ids(res.Bundle.Lessons))
	assert.Equal(t, []string{"q1"}, ids(res.Bundle.Questions))
	assert.Equal(t, []string{"m1"}, ids(res.Bundle.Modules))
	assert.Equal(t, []string{"p1"}, ids(res.Bundle.Profiles))

	c := res.Bundle.Courses[0]
	assert.Equal(t, "learn-ai", c[domain.FieldDiscoveredFrom])
	assert.Equal(t, "data/content.json", c[domain.FieldDiscoveredFile])
	assert.Equal(t, "learn-ai", domain.ResolveAppID(c))

	require.Len(t, res.Metadata.Sources, 2)
	assert.Equal(t, "learn-ai", res.Metadata.Sources[0].App)
	assert.Equal(t, 2, res.Metadata.Sources[0].FileCount)
	assert.Equal(t, []string{"data/content.json", "src/quiz.yaml"}, res.Metadata.Sources[0].Files)
	assert.Equal(t, "learn-go", res.Metadata.Sources[1].App)
	assert.Equal(t, 2, res.Metadata.Sources[1].FileCount)
	assert.Equal(t, 4, res.Metadata.TotalFilesFound)

	require.Len(t, res.Metadata.Errors, 1, "broken.json is reported")
	assert.Contains(t, res.Metadata.Errors[0], "broken.json")
}

func TestScanMissingRootDegrades(t *testing.T) {
	res := Scanner{Roots: []string{filepath.Join(t.TempDir(), "missing")}}.Scan(context.Background(), logger.Nop())

	assert.Equal(t, 0, res.Bundle.Len())
	assert.Equal(t, 0, res.Metadata.TotalFilesFound)
	assert.Empty(t, res.Metadata.Sources)
	assert.Len(t, res.Metadata.Errors, 1)
}

func TestScanNoRoots(t *testing.T) {
	res := Scanner{}.Scan(context.Background(), logger.Nop())
	assert.Equal(t, 0, res.Bundle.Len())
	assert.NotNil(t, res.Metadata.Sources)
}

func TestScanPatternAndExclude(t *testing.T) {
	root := fixture(t)

	res := Scanner{Roots: []string{root}, AppPattern: "learn-*", Exclude: []string{"learn-go"}}.
		Scan(context.Background(), logger.Nop())
	require.Len(t, res.Metadata.Sources, 1)
	assert.Equal(t, "learn-ai", res.Metadata.Sources[0].App)
	assert.Empty(t, res.Bundle.Modules)

	res = Scanner{Roots: []string{root}, AppPattern: "["}.Scan(context.Background(), logger.Nop())
	assert.Empty(t, res.Metadata.Sources)
	assert.NotEmpty(t, res.Metadata.Errors)
}

func TestScanMaxDepthAndSize(t *testing.T) {
	root := t.TempDir()
	write(t, root, "app/a/b/c/courses.json", `[{"id":"deep"}]`)
	write(t, root, "app/lessons.json", `[{"id":"big","body":"xxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxx"}]`)

	res := Scanner{Roots: []string{root}, MaxDepth: 3}.Scan(context.Background(), logger.Nop())
	assert.Empty(t, res.Bundle.Courses)

	res = Scanner{Roots: []string{root}, MaxFileSize: 20}.Scan(context.Background(), logger.Nop())
	assert.Equal(t, []string{"deep"}, ids(res.Bundle.Courses))
	assert.Empty(t, res.Bundle.Lessons)
}

func TestScanCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res := Scanner{Roots: []string{fixture(t)}}.Scan(ctx, logger.Nop())
	assert.Equal(t, 0, res.Bundle.Len())
}

func TestMetadataJSONShape(t *testing.T) {
	root := fixture(t)
	res := Scanner{Roots: []string{root}}.Scan(context.Background(), logger.Nop())

	raw, err := json.Marshal(res.Metadata)
	require.NoError(t, err)
	var m map[string]any
	require.NoError(t, json.Unmarshal(raw, &m))

	assert.Contains(t, m, "sources")
	assert.Contains(t, m, "totalFilesFound")
	src := m["sources"].([]any)[0].(map[string]any)
	assert.Equal(t, "learn-ai", src["app"])
	assert.Equal(t, float64(2), src["fileCount"])

	assert.Equal(t, []string{filepath.Join(root, "learn-ai"), filepath.Join(root, "learn-go")}, res.Metadata.LocalDirs())
}

func TestClassify(t *testing.T) {
	testCases := []struct {
		name   string
		file   string
		doc    any
		ok     bool
		entity domain.EntityType
		count  int
	}{
		{"alias array", "lessons.json", []any{map[string]any{"id": "a"}, "x"}, true, domain.Lessons, 1},
		{"singular alias", "course.json", []any{map[string]any{"id": "a"}}, true, domain.Courses, 1},
		{"quizzes", "dir/Quizzes.yml", []any{map[string]any{"id": "a"}}, true, domain.Questions, 1},
		{"array without alias", "items.json", []any{map[string]any{"id": "a"}}, false, "", 0},
		{"bundle", "content.json", map[string]any{"profiles": []any{map[string]any{"id": "a"}}}, true, domain.Profiles, 1},
		{"alias object", "quiz.json", map[string]any{"quiz": []any{map[string]any{"id": "a"}}}, true, domain.Questions, 1},
		{"entity key not array", "content.json", map[string]any{"courses": "x"}, false, "", 0},
		{"scalar", "courses.json", "x", false, "", 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			b, ok := classify(tc.file, tc.doc)
			require.Equal(t, tc.ok, ok)
			if ok {
				assert.Len(t, b.Get(tc.entity), tc.count)
			}
		})
	}
}
