// Package discovery walks sibling application directories for content files
// and collects their records as one more content source.
package discovery

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"strings"
	"time"

	"content-hub/internal/concurrency"
	"content-hub/internal/contentfile"
	"content-hub/internal/domain"
	"content-hub/internal/logger"
	"content-hub/internal/sftpclient"
)

const (
	DefaultMaxDepth    = 6
	DefaultMaxFileSize = 5 << 20
	DefaultWorkers     = 4
)

// Scanner configures one discovery pass. Each root is a directory whose
// immediate non-hidden subdirectories are apps.
type Scanner struct {
	Roots       []string
	AppPattern  string
	Exclude     []string
	MaxDepth    int
	MaxFileSize int64
	Workers     int

	// SFTP supplies credentials for sftp:// roots.
	SFTP sftpclient.Config
}

type AppSource struct {
	App       string   `json:"app"`
	Root      string   `json:"root"`
	FileCount int      `json:"fileCount"`
	Files     []string `json:"files"`
}

type Metadata struct {
	Sources         []AppSource `json:"sources"`
	TotalFilesFound int         `json:"totalFilesFound"`
	ScannedAt       time.Time   `json:"scannedAt"`
	Errors          []string    `json:"errors,omitempty"`
}

// LocalDirs lists the app directories that live on the local filesystem.
func (m Metadata) LocalDirs() []string {
	var out []string
	for _, s := range m.Sources {
		if isRemoteRoot(s.Root) {
			continue
		}
		out = append(out, filepath.Join(s.Root, s.App))
	}
	return out
}

// Result is everything one scan produced.
type Result struct {
	Bundle   domain.Bundle
	Metadata Metadata
}

// EmptyResult is what a scan with no roots yields.
func EmptyResult() *Result {
	return &Result{Metadata: Metadata{Sources: []AppSource{}, ScannedAt: time.Now().UTC()}}
}

type appJob struct {
	fsys FS
	root string // as configured, for metadata
	dir  string // root directory inside fsys
	app  string
}

type appScan struct {
	source AppSource
	bundle domain.Bundle
	errs   []string
}

func (s Scanner) withDefaults() Scanner {
	if s.AppPattern == "" {
		s.AppPattern = "*"
	}
	if s.MaxDepth <= 0 {
		s.MaxDepth = DefaultMaxDepth
	}
	if s.MaxFileSize <= 0 {
		s.MaxFileSize = DefaultMaxFileSize
	}
	if s.Workers <= 0 {
		s.Workers = DefaultWorkers
	}
	return s
}

// Scan never fails: unreadable roots, directories and files are logged,
// recorded in Metadata.Errors and skipped.
func (s Scanner) Scan(ctx context.Context, log *logger.Logger) *Result {
	s = s.withDefaults()
	res := EmptyResult()

	if _, err := path.Match(s.AppPattern, ""); err != nil {
		msg := fmt.Sprintf("app pattern %q: %v", s.AppPattern, err)
		log.Warn("discovery disabled", "error", msg)
		res.Metadata.Errors = append(res.Metadata.Errors, msg)
		return res
	}

	var jobs []appJob
	var conns []*sftpclient.Conn
	defer func() {
		for _, c := range conns {
			_ = c.Close()
		}
	}()

	for _, root := range s.Roots {
		fsys, dir, conn, err := s.open(ctx, root)
		if err != nil {
			res.Metadata.Errors = append(res.Metadata.Errors, err.Error())
			log.Warn("discovery root unavailable", "root", root, "error", err)
			continue
		}
		if conn != nil {
			conns = append(conns, conn)
		}
		apps, err := s.listApps(fsys, dir)
		if err != nil {
			res.Metadata.Errors = append(res.Metadata.Errors, fmt.Sprintf("%s: %v", root, err))
			log.Warn("discovery root unreadable", "root", root, "error", err)
			continue
		}
		for _, app := range apps {
			jobs = append(jobs, appJob{fsys: fsys, root: root, dir: dir, app: app})
		}
	}

	scans, _ := concurrency.ProcessParallel(ctx, jobs, concurrency.ParallelOptions{MaxWorkers: s.Workers},
		func(ctx context.Context, _ int, job appJob) (appScan, error) {
			return s.scanApp(ctx, job), nil
		})

	for _, sc := range scans {
		// jobs never started because ctx ended come back zero-valued
		if sc.source.App == "" {
			continue
		}
		for _, msg := range sc.errs {
			log.Warn("discovery skipped file", "app", sc.source.App, "error", msg)
		}
		res.Metadata.Errors = append(res.Metadata.Errors, sc.errs...)
		res.Metadata.Sources = append(res.Metadata.Sources, sc.source)
		res.Metadata.TotalFilesFound += sc.source.FileCount
		for _, e := range domain.AllEntities {
			res.Bundle.Append(e, sc.bundle.Get(e)...)
		}
	}

	log.Info("discovery finished",
		"apps", len(res.Metadata.Sources),
		"files", res.Metadata.TotalFilesFound,
		"records", res.Bundle.Len(),
	)
	return res
}

func isRemoteRoot(root string) bool {
	return strings.HasPrefix(root, "sftp://")
}

func (s Scanner) open(ctx context.Context, root string) (FS, string, *sftpclient.Conn, error) {
	if !isRemoteRoot(root) {
		return localFS{}, root, nil, nil
	}
	cfg, dir, err := sftpclient.ParseURL(root, s.SFTP)
	if err != nil {
		return nil, "", nil, err
	}
	conn, err := sftpclient.Dial(ctx, cfg)
	if err != nil {
		return nil, "", nil, err
	}
	return remoteFS{conn: conn}, dir, conn, nil
}

func (s Scanner) listApps(fsys FS, dir string) ([]string, error) {
	entries, err := fsys.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var apps []string
	for _, e := range entries {
		name := e.Name()
		if !e.IsDir() || SkipDir(name) {
			continue
		}
		if ok, _ := path.Match(s.AppPattern, name); !ok {
			continue
		}
		if s.excluded(name) {
			continue
		}
		apps = append(apps, name)
	}
	return apps, nil
}

func (s Scanner) excluded(name string) bool {
	for _, pat := range s.Exclude {
		if pat == name {
			return true
		}
		if ok, _ := path.Match(pat, name); ok {
			return true
		}
	}
	return false
}

func (s Scanner) scanApp(ctx context.Context, job appJob) appScan {
	out := appScan{source: AppSource{App: job.app, Root: job.root, Files: []string{}}}
	appDir := job.fsys.Join(job.dir, job.app)
	s.walk(ctx, job, appDir, "", 0, &out)
	return out
}

// walk descends depth-first in ReadDir order. rel is slash-separated and
// relative to the app directory.
func (s Scanner) walk(ctx context.Context, job appJob, dir, rel string, depth int, out *appScan) {
	if ctx.Err() != nil {
		return
	}
	entries, err := job.fsys.ReadDir(dir)
	if err != nil {
		out.errs = append(out.errs, fmt.Sprintf("%s/%s: %v", job.app, rel, err))
		return
	}
	for _, e := range entries {
		name := e.Name()
		childRel := name
		if rel != "" {
			childRel = rel + "/" + name
		}
		if e.IsDir() {
			if SkipDir(name) || depth+1 >= s.MaxDepth {
				continue
			}
			s.walk(ctx, job, job.fsys.Join(dir, name), childRel, depth+1, out)
			continue
		}
		if !candidateFile(name) {
			continue
		}
		if info, err := e.Info(); err == nil && info.Size() > s.MaxFileSize {
			continue
		}
		s.readFile(job, job.fsys.Join(dir, name), childRel, out)
	}
}

func (s Scanner) readFile(job appJob, full, rel string, out *appScan) {
	raw, err := job.fsys.ReadFile(full)
	if err != nil {
		out.errs = append(out.errs, fmt.Sprintf("%s/%s: %v", job.app, rel, err))
		return
	}
	v, err := contentfile.Decode(rel, raw)
	if err != nil {
		out.errs = append(out.errs, fmt.Sprintf("%s/%s: %v", job.app, rel, err))
		return
	}
	b, ok := classify(rel, v)
	if !ok {
		return
	}

	out.source.FileCount++
	out.source.Files = append(out.source.Files, rel)
	for _, e := range domain.AllEntities {
		for _, r := range b.Get(e) {
			out.bundle.Append(e, r.With(domain.FieldDiscoveredFrom, job.app).With(domain.FieldDiscoveredFile, rel))
		}
	}
}
