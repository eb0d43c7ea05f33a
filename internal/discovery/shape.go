package discovery

import (
	"path"
	"strings"

	"content-hub/internal/contentfile"
	"content-hub/internal/domain"
)

// entityAliases maps a file's base name to the entity it holds.
var entityAliases = map[string]domain.EntityType{
	"course":    domain.Courses,
	"courses":   domain.Courses,
	"module":    domain.Modules,
	"modules":   domain.Modules,
	"lesson":    domain.Lessons,
	"lessons":   domain.Lessons,
	"profile":   domain.Profiles,
	"profiles":  domain.Profiles,
	"question":  domain.Questions,
	"questions": domain.Questions,
	"quiz":      domain.Questions,
	"quizzes":   domain.Questions,
}

var skipDirs = map[string]bool{
	"node_modules": true,
	".git":         true,
	".next":        true,
	"dist":         true,
	"build":        true,
	"out":          true,
	"coverage":     true,
	".vercel":      true,
	".turbo":       true,
}

// candidateFile reports whether a file name is worth decoding.
func candidateFile(name string) bool {
	lower := strings.ToLower(name)
	if strings.HasPrefix(lower, "package") || strings.HasPrefix(lower, "tsconfig") {
		return false
	}
	return contentfile.Supported(lower)
}

func baseName(name string) string {
	b := strings.ToLower(path.Base(strings.ReplaceAll(name, "\\", "/")))
	return strings.TrimSuffix(b, path.Ext(b))
}

// classify turns a decoded document into a bundle. ok is false when the
// document has no recognized shape.
func classify(name string, v any) (b *domain.Bundle, ok bool) {
	base := baseName(name)
	alias, isAlias := entityAliases[base]

	switch doc := v.(type) {
	case []any:
		if !isAlias {
			return nil, false
		}
		records, _ := contentfile.Records(doc)
		b = &domain.Bundle{}
		b.Set(alias, records)
		return b, true

	case map[string]any:
		b = &domain.Bundle{}
		for _, e := range domain.AllEntities {
			if records, isArr := contentfile.Records(doc[string(e)]); isArr {
				b.Set(e, records)
				ok = true
			}
		}
		if ok {
			return b, true
		}
		if isAlias {
			if records, isArr := contentfile.Records(doc[base]); isArr {
				b.Set(alias, records)
				return b, true
			}
		}
	}
	return nil, false
}

// SkipDir reports whether a directory is never searched for content.
func SkipDir(name string) bool {
	return skipDirs[name] || strings.HasPrefix(name, ".")
}
