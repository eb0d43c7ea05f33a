package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"content-hub/internal/domain"
)

// Postgres queries the store's database directly. Rows come back through
// row_to_json so column drift between apps needs no Go-side schema.
type Postgres struct {
	pool   *pgxpool.Pool
	schema string
}

// NewPostgres parses the DSN and creates a lazy pool; no connection is made
// until the first query.
func NewPostgres(cfg Config) (*Postgres, error) {
	pcfg, err := pgxpool.ParseConfig(strings.TrimSpace(cfg.DatabaseURL))
	if err != nil {
		return nil, fmt.Errorf("postgres: parse database url: %w", err)
	}
	if cfg.Timeout > 0 {
		pcfg.ConnConfig.ConnectTimeout = cfg.Timeout
	}
	pool, err := pgxpool.NewWithConfig(context.Background(), pcfg)
	if err != nil {
		return nil, fmt.Errorf("postgres: create pool: %w", err)
	}
	return &Postgres{pool: pool, schema: cfg.Schema}, nil
}

func (p *Postgres) Select(ctx context.Context, table domain.EntityType, opts domain.QueryOptions) ([]domain.Record, error) {
	sql, args, err := buildSelect(p.schema, table, opts)
	if err != nil {
		return nil, err
	}

	rows, err := p.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: query %s: %w", table, err)
	}
	defer rows.Close()

	var out []domain.Record
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("postgres: scan %s: %w", table, err)
		}
		var rec domain.Record
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			return nil, fmt.Errorf("postgres: decode %s row: %w", table, err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: rows %s: %w", table, err)
	}
	return out, nil
}

func (p *Postgres) Close() { p.pool.Close() }

// buildSelect renders the query for one table. Identifiers are quoted,
// values are always bound parameters compared as text.
func buildSelect(schema string, table domain.EntityType, opts domain.QueryOptions) (string, []any, error) {
	if !slices.Contains(domain.AllEntities, table) {
		return "", nil, fmt.Errorf("postgres: unknown table %q", table)
	}

	ident := pgx.Identifier{string(table)}
	if schema != "" {
		ident = pgx.Identifier{schema, string(table)}
	}

	var (
		b     strings.Builder
		args  []any
		where []string
	)
	b.WriteString("SELECT row_to_json(t)::text FROM ")
	b.WriteString(ident.Sanitize())
	b.WriteString(" AS t")

	if opts.AppID != "" {
		args = append(args, strings.TrimSpace(opts.AppID))
		n := "$" + strconv.Itoa(len(args))
		ors := make([]string, 0, len(remoteAppFields))
		for _, f := range remoteAppFields {
			ors = append(ors, "btrim(t."+pgx.Identifier{f}.Sanitize()+"::text) = "+n)
		}
		where = append(where, "("+strings.Join(ors, " OR ")+")")
	}

	filters := opts.ActiveFilters()
	fields := make([]string, 0, len(filters))
	for f := range filters {
		fields = append(fields, f)
	}
	slices.Sort(fields)
	for _, f := range fields {
		args = append(args, domain.Stringify(filters[f]))
		where = append(where, "t."+pgx.Identifier{f}.Sanitize()+"::text = $"+strconv.Itoa(len(args)))
	}

	if len(where) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(where, " AND "))
	}
	if opts.Order != nil && opts.Order.Field != "" {
		b.WriteString(" ORDER BY t.")
		b.WriteString(pgx.Identifier{opts.Order.Field}.Sanitize())
		if opts.Order.Ascending {
			b.WriteString(" ASC")
		} else {
			b.WriteString(" DESC")
		}
	}
	if opts.Limit > 0 {
		b.WriteString(" LIMIT ")
		b.WriteString(strconv.Itoa(opts.Limit))
	}
	return b.String(), args, nil
}
