package export

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"content-hub/internal/concurrency"
	"content-hub/internal/content"
	"content-hub/internal/domain"
	"content-hub/internal/sftpclient"
)

const (
	SnapshotFile   = "content.json"
	CoursesCSVFile = "courses.csv"
)

// Source is the part of content.Provider a snapshot reads from.
type Source interface {
	List(ctx context.Context, entity domain.EntityType, opts domain.QueryOptions) ([]domain.Record, error)
	SourceStatus() content.SourceStatus
}

type Meta struct {
	ID          string               `json:"id"`
	GeneratedAt time.Time            `json:"generatedAt"`
	Status      content.SourceStatus `json:"status"`
}

// Snapshot is the merged content in the static document shape, so it can
// be served back as a static content file.
type Snapshot struct {
	domain.Bundle
	Meta Meta `json:"meta"`
}

// Build fetches every entity concurrently.
func Build(ctx context.Context, src Source) (*Snapshot, error) {
	sets := make([][]domain.Record, len(domain.AllEntities))
	g, gctx := errgroup.WithContext(ctx)
	for i, e := range domain.AllEntities {
		i, e := i, e
		g.Go(func() error {
			records, err := src.List(gctx, e, domain.QueryOptions{})
			if err != nil {
				return fmt.Errorf("export %s: %w", e, err)
			}
			sets[i] = records
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	s := &Snapshot{Meta: Meta{
		ID:          uuid.NewString(),
		GeneratedAt: time.Now().UTC(),
		Status:      src.SourceStatus(),
	}}
	for i, e := range domain.AllEntities {
		records := sets[i]
		if records == nil {
			records = []domain.Record{}
		}
		s.Bundle.Set(e, records)
	}
	return s, nil
}

func WriteSnapshot(w io.Writer, s *Snapshot) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}

// WriteFiles writes the snapshot and the courses CSV into outDir and
// returns their paths.
func WriteFiles(outDir string, s *Snapshot) ([]string, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, err
	}

	snapPath := filepath.Join(outDir, SnapshotFile)
	if err := writeFile(snapPath, func(w io.Writer) error { return WriteSnapshot(w, s) }); err != nil {
		return nil, err
	}

	courses := make([]domain.Course, 0, len(s.Courses))
	for _, r := range s.Courses {
		courses = append(courses, domain.CourseFromRecord(r))
	}
	csvPath := filepath.Join(outDir, CoursesCSVFile)
	if err := writeFile(csvPath, func(w io.Writer) error { return WriteCoursesCSV(w, courses, content.AppName) }); err != nil {
		return nil, err
	}
	return []string{snapPath, csvPath}, nil
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

// Upload copies each file to the configured SFTP directory under its base
// name. Files are sent over separate connections, at most two at a time.
func Upload(ctx context.Context, cfg sftpclient.Config, paths []string) error {
	errs := concurrency.ForEach(ctx, paths, concurrency.ParallelOptions{MaxWorkers: 2},
		func(ctx context.Context, _ int, p string) error {
			if err := sftpclient.UploadFile(ctx, cfg, p, filepath.Base(p)); err != nil {
				return fmt.Errorf("upload %s: %w", p, err)
			}
			return nil
		})
	if err := errors.Join(errs...); err != nil {
		return err
	}
	return ctx.Err()
}
