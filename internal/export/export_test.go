package export

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"

	"content-hub/internal/content"
	"content-hub/internal/contentfile"
	"content-hub/internal/domain"
	"content-hub/internal/sftpclient"
)

type stubSource struct {
	bundle domain.Bundle
	err    error
}

func (s stubSource) List(_ context.Context, e domain.EntityType, _ domain.QueryOptions) ([]domain.Record, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.bundle.Get(e), nil
}

func (stubSource) SourceStatus() content.SourceStatus {
	return content.SourceStatus{Local: true, Mode: content.ModeLocalOnly}
}

func TestWriteCoursesCSV(t *testing.T) {
	courses := []domain.Course{
		{ID: "c1", Title: "Intro\nto AI", Slug: "intro-ai", Category: "ai", Paid: true, Status: "published", AppID: "learn-ai", Source: domain.SourceSupabase},
		{ID: "c2", Title: "Misc, stuff", AppID: domain.UnknownApp, Source: domain.SourceLocal},
	}

	var buf bytes.Buffer
	if err := WriteCoursesCSV(&buf, courses, content.AppName); err != nil {
		t.Fatalf("WriteCoursesCSV() error = %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\r\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d: %q", len(lines), buf.String())
	}
	if lines[0] != "COURSE_ID,COURSE_TITLE,COURSE_SLUG,COURSE_DESCRIPTION,CATEGORY,PAID,STATUS,APP_ID,APP_NAME,SOURCE" {
		t.Errorf("header is incorrect: %q", lines[0])
	}
	if lines[1] != "c1,Intro to AI,intro-ai,,ai,true,published,learn-ai,Ai,supabase" {
		t.Errorf("first row is incorrect: %q", lines[1])
	}
	if lines[2] != `c2,"Misc, stuff",,,,false,draft,unknown,,local` {
		t.Errorf("second row is incorrect: %q", lines[2])
	}
}

func TestBuildAndWriteFiles(t *testing.T) {
	src := stubSource{bundle: domain.Bundle{
		Courses: []domain.Record{{"id": "c1", "title": "AI", "appId": "learn-ai", domain.FieldSource: "supabase"}},
		Lessons: []domain.Record{{"id": "l1"}},
	}}

	snap, err := Build(context.Background(), src)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if _, err := uuid.Parse(snap.Meta.ID); err != nil {
		t.Errorf("meta id %q is not a uuid: %v", snap.Meta.ID, err)
	}
	if snap.Meta.Status.Mode != content.ModeLocalOnly {
		t.Errorf("meta status mode = %q", snap.Meta.Status.Mode)
	}
	if snap.Modules == nil {
		t.Error("empty entities must encode as [] not null")
	}

	dir := filepath.Join(t.TempDir(), "out")
	paths, err := WriteFiles(dir, snap)
	if err != nil {
		t.Fatalf("WriteFiles() error = %v", err)
	}
	if len(paths) != 2 {
		t.Fatalf("expected 2 files, got %v", paths)
	}

	raw, err := os.ReadFile(filepath.Join(dir, SnapshotFile))
	if err != nil {
		t.Fatal(err)
	}

	// the snapshot must load as a static content file
	b, err := contentfile.DecodeBundle(SnapshotFile, raw)
	if err != nil {
		t.Fatalf("snapshot does not decode as a content file: %v", err)
	}
	if len(b.Courses) != 1 || b.Courses[0].ID() != "c1" || len(b.Lessons) != 1 {
		t.Errorf("unexpected bundle %+v", b)
	}

	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		t.Fatal(err)
	}
	meta, ok := doc["meta"].(map[string]any)
	if !ok || meta["id"] != snap.Meta.ID {
		t.Errorf("meta missing or wrong: %v", doc["meta"])
	}

	csvRaw, err := os.ReadFile(filepath.Join(dir, CoursesCSVFile))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(csvRaw), "c1,AI,,,,false,draft,learn-ai,Ai,supabase") {
		t.Errorf("courses csv is incorrect: %q", csvRaw)
	}
}

func TestBuildPropagatesContextError(t *testing.T) {
	_, err := Build(context.Background(), stubSource{err: context.Canceled})
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestUploadValidation(t *testing.T) {
	err := Upload(context.Background(), sftpclient.Config{}, []string{"content.json"})
	if err == nil || !strings.Contains(err.Error(), "content.json") {
		t.Errorf("expected wrapped credentials error, got %v", err)
	}
}
