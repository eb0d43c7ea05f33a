package remote

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"content-hub/internal/domain"
	"content-hub/internal/httpx"
)

// PostgREST talks to the store's REST surface (/rest/v1/<table>).
type PostgREST struct {
	BaseURL string
	APIKey  string
	Schema  string
	HTTP    *http.Client
	Retry   httpx.RetryConfig
}

func NewPostgREST(cfg Config) *PostgREST {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	retry := httpx.NoRetry()
	if cfg.MaxAttempts > 1 {
		retry = httpx.DefaultRetryConfig()
		retry.MaxAttempts = cfg.MaxAttempts
	}
	return &PostgREST{
		BaseURL: strings.TrimRight(strings.TrimSpace(cfg.URL), "/"),
		APIKey:  strings.TrimSpace(cfg.APIKey),
		Schema:  cfg.Schema,
		HTTP:    &http.Client{Timeout: timeout},
		Retry:   retry,
	}
}

func (p *PostgREST) Select(ctx context.Context, table domain.EntityType, opts domain.QueryOptions) ([]domain.Record, error) {
	target, err := p.selectURL(table, opts)
	if err != nil {
		return nil, err
	}

	var rows []map[string]any
	err = httpx.DoJSON(ctx, p.HTTP, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
		if err != nil {
			return nil, fmt.Errorf("postgrest: build request: %w", err)
		}
		req.Header.Set("apikey", p.APIKey)
		req.Header.Set("Authorization", "Bearer "+p.APIKey)
		req.Header.Set("Accept", "application/json")
		req.Header.Set("Accept-Encoding", httpx.AcceptEncoding)
		if p.Schema != "" {
			req.Header.Set("Accept-Profile", p.Schema)
		}
		return req, nil
	}, &rows, p.Retry)
	if err != nil {
		return nil, err
	}

	out := make([]domain.Record, 0, len(rows))
	for _, r := range rows {
		out = append(out, domain.Record(r))
	}
	return out, nil
}

func (p *PostgREST) Close() { p.HTTP.CloseIdleConnections() }

func (p *PostgREST) selectURL(table domain.EntityType, opts domain.QueryOptions) (string, error) {
	u, err := url.Parse(p.BaseURL + "/rest/v1/" + url.PathEscape(string(table)))
	if err != nil {
		return "", fmt.Errorf("postgrest: invalid base url: %w", err)
	}

	q := url.Values{}
	q.Set("select", "*")
	if appID := strings.TrimSpace(opts.AppID); appID != "" {
		parts := make([]string, 0, len(remoteAppFields))
		for _, f := range remoteAppFields {
			parts = append(parts, f+".eq."+orValue(appID))
		}
		q.Set("or", "("+strings.Join(parts, ",")+")")
	}
	for field, v := range opts.ActiveFilters() {
		if reservedParams[field] {
			continue
		}
		q.Add(field, "eq."+domain.Stringify(v))
	}
	if opts.Order != nil && opts.Order.Field != "" {
		dir := "desc"
		if opts.Order.Ascending {
			dir = "asc"
		}
		q.Set("order", opts.Order.Field+"."+dir)
	}
	if opts.Limit > 0 {
		q.Set("limit", strconv.Itoa(opts.Limit))
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// reservedParams are PostgREST query parameters; a filter on a column with
// one of these names cannot be expressed as field=eq.value and is skipped.
var reservedParams = map[string]bool{
	"select": true,
	"or":     true,
	"and":    true,
	"not":    true,
	"order":  true,
	"limit":  true,
	"offset": true,
}

// orValue quotes values that would break the or=(...) grammar.
func orValue(v string) string {
	if !strings.ContainsAny(v, `,.:()" \`) {
		return v
	}
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`)
	return `"` + r.Replace(v) + `"`
}
