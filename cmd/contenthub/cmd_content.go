package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"content-hub/internal/devutil"
	"content-hub/internal/domain"
	"content-hub/internal/query"
)

type listFlags struct {
	appID   string
	filters []string
	order   string
	asc     bool
	limit   int
	fields  []string
}

// parseFilters turns repeated key=value flags into a filter map.
func parseFilters(raw []string) (map[string]any, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	out := make(map[string]any, len(raw))
	for _, kv := range raw {
		k, v, ok := strings.Cut(kv, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid filter %q, want field=value", kv)
		}
		out[k] = query.ParseValue(v)
	}
	return out, nil
}

func (f listFlags) options() (domain.QueryOptions, error) {
	filters, err := parseFilters(f.filters)
	if err != nil {
		return domain.QueryOptions{}, err
	}
	if f.limit < 0 {
		return domain.QueryOptions{}, fmt.Errorf("limit must be non-negative, got %d", f.limit)
	}
	opts := domain.QueryOptions{AppID: f.appID, Filters: filters, Limit: f.limit}
	if f.order != "" {
		opts.Order = &domain.Order{Field: f.order, Ascending: f.asc}
	}
	return opts, nil
}

func newListCmd(a *app) *cobra.Command {
	var f listFlags
	cmd := &cobra.Command{
		Use:   "list <entity>",
		Short: "List merged records of one entity (courses, modules, lessons, profiles, questions)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entity, err := domain.ParseEntityType(args[0])
			if err != nil {
				return err
			}
			opts, err := f.options()
			if err != nil {
				return err
			}

			ctx, cancel := signalContext(cmd.Context())
			defer cancel()
			p := a.provider(ctx)
			defer p.Close()

			records, err := p.List(ctx, entity, opts)
			if err != nil {
				return err
			}
			if len(f.fields) > 0 {
				return printJSON(cmd.OutOrStdout(), devutil.PickRecords(records, f.fields...))
			}
			return printJSON(cmd.OutOrStdout(), records)
		},
	}
	cmd.Flags().StringVar(&f.appID, "app", "", "Only records belonging to this app id")
	cmd.Flags().StringArrayVarP(&f.filters, "filter", "f", nil, "Equality filter field=value (repeatable)")
	cmd.Flags().StringVar(&f.order, "order", "", "Sort by this field")
	cmd.Flags().BoolVar(&f.asc, "asc", false, "Sort ascending (default descending)")
	cmd.Flags().IntVar(&f.limit, "limit", 0, "Maximum number of records (0 = no limit)")
	cmd.Flags().StringSliceVar(&f.fields, "fields", nil, "Only print these fields")
	return cmd
}

func newStatsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print entity totals, per-source counts and per-app counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext(cmd.Context())
			defer cancel()
			p := a.provider(ctx)
			defer p.Close()

			stats, err := p.Stats(ctx)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), stats)
		},
	}
}

func newAppsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "apps",
		Short: "List every app that owns content",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext(cmd.Context())
			defer cancel()
			p := a.provider(ctx)
			defer p.Close()

			apps, err := p.AllApps(ctx)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), apps)
		},
	}
}

func newAppCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "app <appId>",
		Short: "Print all content of one app",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext(cmd.Context())
			defer cancel()
			p := a.provider(ctx)
			defer p.Close()

			content, err := p.AppContent(ctx, args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), content)
		},
	}
}

func newSourcesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "sources",
		Short: "Report which content sources are live",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext(cmd.Context())
			defer cancel()
			p := a.provider(ctx)
			defer p.Close()

			return printJSON(cmd.OutOrStdout(), map[string]any{
				"status":    p.SourceStatus(),
				"discovery": p.DiscoveryMetadata(),
			})
		},
	}
}

func newConflictsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "conflicts <entity>",
		Short: "List ids present in several sources whose content differs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entity, err := domain.ParseEntityType(args[0])
			if err != nil {
				return err
			}
			ctx, cancel := signalContext(cmd.Context())
			defer cancel()
			p := a.provider(ctx)
			defer p.Close()

			conflicts, err := p.Conflicts(ctx, entity)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), conflicts)
		},
	}
}
