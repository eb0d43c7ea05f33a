package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"content-hub/internal/devutil"
	"content-hub/internal/domain"
	"content-hub/internal/logger"
	"content-hub/internal/query"
)

const filterPrefix = "filter."

type ContentHandler struct {
	log    *logger.Logger
	holder *Holder
}

func NewContentHandler(log *logger.Logger, holder *Holder) *ContentHandler {
	return &ContentHandler{
		log:    log.With("handler", "ContentHandler"),
		holder: holder,
	}
}

// List serves GET /api/content/:entity.
func (h *ContentHandler) List(c *gin.Context) {
	entity, err := domain.ParseEntityType(c.Param("entity"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "unknown_entity", err)
		return
	}
	opts, err := parseQueryOptions(c.Request.URL.Query())
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_query", err)
		return
	}

	records, err := h.holder.Load().List(c.Request.Context(), entity, opts)
	if err != nil {
		h.fail(c, "List", err)
		return
	}
	var fields []string
	if f := strings.TrimSpace(c.Query("fields")); f != "" {
		fields = strings.Split(f, ",")
	}
	RespondOK(c, gin.H{
		string(entity): devutil.PickRecords(records, fields...),
		"count":        len(records),
	})
}

func (h *ContentHandler) Stats(c *gin.Context) {
	stats, err := h.holder.Load().Stats(c.Request.Context())
	if err != nil {
		h.fail(c, "Stats", err)
		return
	}
	RespondOK(c, stats)
}

func (h *ContentHandler) Apps(c *gin.Context) {
	apps, err := h.holder.Load().AllApps(c.Request.Context())
	if err != nil {
		h.fail(c, "Apps", err)
		return
	}
	RespondOK(c, gin.H{"apps": apps})
}

func (h *ContentHandler) App(c *gin.Context) {
	appID := strings.TrimSpace(c.Param("appId"))
	if appID == "" {
		RespondError(c, http.StatusBadRequest, "missing_app_id", nil)
		return
	}
	ac, err := h.holder.Load().AppContent(c.Request.Context(), appID)
	if err != nil {
		h.fail(c, "App", err)
		return
	}
	RespondOK(c, ac)
}

func (h *ContentHandler) Sources(c *gin.Context) {
	p := h.holder.Load()
	RespondOK(c, gin.H{
		"status":    p.SourceStatus(),
		"discovery": p.DiscoveryMetadata(),
	})
}

func (h *ContentHandler) Conflicts(c *gin.Context) {
	entity, err := domain.ParseEntityType(c.Param("entity"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "unknown_entity", err)
		return
	}
	conflicts, err := h.holder.Load().Conflicts(c.Request.Context(), entity)
	if err != nil {
		h.fail(c, "Conflicts", err)
		return
	}
	RespondOK(c, gin.H{"entity": entity, "conflicts": conflicts})
}

// fail handles the only error the provider returns: the request context
// ending.
func (h *ContentHandler) fail(c *gin.Context, op string, err error) {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		h.log.Warn(op+" canceled", "error", err)
		RespondError(c, http.StatusServiceUnavailable, "canceled", err)
		return
	}
	h.log.Error(op+" failed", "error", err)
	RespondError(c, http.StatusInternalServerError, "content_failed", err)
}

// parseQueryOptions reads appId, order, ascending, limit and filter.<field>.
func parseQueryOptions(q url.Values) (domain.QueryOptions, error) {
	opts := domain.QueryOptions{AppID: strings.TrimSpace(q.Get("appId"))}

	if field := strings.TrimSpace(q.Get("order")); field != "" {
		asc := false
		if raw := q.Get("ascending"); raw != "" {
			v, err := strconv.ParseBool(raw)
			if err != nil {
				return opts, fmt.Errorf("ascending: %w", err)
			}
			asc = v
		}
		opts.Order = &domain.Order{Field: field, Ascending: asc}
	}

	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return opts, fmt.Errorf("limit must be a non-negative integer, got %q", raw)
		}
		opts.Limit = n
	}

	for key, vals := range q {
		field, ok := strings.CutPrefix(key, filterPrefix)
		if !ok || field == "" || len(vals) == 0 {
			continue
		}
		if opts.Filters == nil {
			opts.Filters = map[string]any{}
		}
		opts.Filters[field] = query.ParseValue(vals[0])
	}
	return opts, nil
}
