package providers

import (
	"context"
	"fmt"

	"content-hub/internal/domain"
)

// ContentProvider is one leaf data source. Fetch never returns a Go error:
// failures come back as a Result carrying a LeafError and no records.
type ContentProvider interface {
	Name() domain.Source
	Fetch(ctx context.Context, entity domain.EntityType, opts domain.QueryOptions) Result
}

type ErrorKind string

const (
	KindNotConfigured ErrorKind = "not_configured"
	KindNotFound      ErrorKind = "not_found"
	KindMalformed     ErrorKind = "malformed"
	KindQueryFailed   ErrorKind = "query_failed"
	KindCanceled      ErrorKind = "canceled"
)

// LeafError says why a leaf produced nothing.
type LeafError struct {
	Source domain.Source
	Kind   ErrorKind
	Err    error
}

func (e *LeafError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Source, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Source, e.Kind, e.Err)
}

func (e *LeafError) Unwrap() error { return e.Err }

// Result is what a leaf hands back for one entity fetch.
type Result struct {
	Source  domain.Source
	Records []domain.Record
	Err     *LeafError
}

func (r Result) OK() bool { return r.Err == nil }

// Ok wraps records fetched successfully.
func Ok(source domain.Source, records []domain.Record) Result {
	return Result{Source: source, Records: records}
}

// Empty builds a failed result.
func Empty(source domain.Source, kind ErrorKind, err error) Result {
	return Result{Source: source, Err: &LeafError{Source: source, Kind: kind, Err: err}}
}

// Tag returns copies of records stamped with the provenance tag.
func Tag(source domain.Source, records []domain.Record) []domain.Record {
	out := make([]domain.Record, 0, len(records))
	for _, r := range records {
		if r == nil {
			continue
		}
		out = append(out, r.With(domain.FieldSource, string(source)))
	}
	return out
}
