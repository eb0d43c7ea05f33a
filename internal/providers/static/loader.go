package static

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"content-hub/internal/contentfile"
	"content-hub/internal/domain"
	"content-hub/internal/logger"
	"content-hub/internal/providers"
	"content-hub/internal/query"
)

// appFields are the fields an appId filter is matched against for bundled
// content. subdomain is included so every record whose resolved appId is
// the requested one reaches the orchestrator, which narrows further.
var appFields = []string{"appId", domain.FieldDiscoveredFrom, "app", "subdomain"}

var ErrNoContentFile = errors.New("no static content file found")

// Loader reads the bundled content document. The file is re-read on every
// Fetch; only the candidate list is fixed at construction.
type Loader struct {
	candidates []string
	log        *logger.Logger
}

// New resolves candidates to absolute paths once.
func New(candidates []string, log *logger.Logger) *Loader {
	abs := make([]string, 0, len(candidates))
	for _, c := range candidates {
		if c == "" {
			continue
		}
		if p, err := filepath.Abs(c); err == nil {
			c = p
		}
		abs = append(abs, c)
	}
	return &Loader{candidates: abs, log: log.With("source", domain.SourceLocal)}
}

func (l *Loader) Name() domain.Source { return domain.SourceLocal }

// Path returns the first existing candidate, or "".
func (l *Loader) Path() string {
	for _, c := range l.candidates {
		if fi, err := os.Stat(c); err == nil && !fi.IsDir() {
			return c
		}
	}
	return ""
}

func (l *Loader) Candidates() []string { return append([]string(nil), l.candidates...) }

// Load reads and decodes the current content document.
func (l *Loader) Load() (*domain.Bundle, error) {
	path := l.Path()
	if path == "" {
		return nil, fmt.Errorf("%w (tried %v)", ErrNoContentFile, l.candidates)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return contentfile.DecodeBundle(path, raw)
}

func (l *Loader) Fetch(ctx context.Context, entity domain.EntityType, opts domain.QueryOptions) providers.Result {
	if err := ctx.Err(); err != nil {
		return providers.Empty(domain.SourceLocal, providers.KindCanceled, err)
	}

	b, err := l.Load()
	if err != nil {
		if errors.Is(err, ErrNoContentFile) || errors.Is(err, fs.ErrNotExist) {
			l.log.Warn("static content unavailable", "error", err)
			return providers.Empty(domain.SourceLocal, providers.KindNotFound, err)
		}
		l.log.Error("static content unreadable", "error", err)
		return providers.Empty(domain.SourceLocal, providers.KindMalformed, err)
	}

	tagged := providers.Tag(domain.SourceLocal, b.Get(entity))
	return providers.Ok(domain.SourceLocal, query.Apply(tagged, opts, appFields))
}
