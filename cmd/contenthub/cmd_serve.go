package main

import (
	"context"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"content-hub/internal/server"
	"content-hub/internal/watch"
)

func newServeCmd(a *app) *cobra.Command {
	var (
		addr    string
		watchFS bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the merged content over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = a.cfg.HTTP.Addr
			}
			ctx, cancel := signalContext(cmd.Context())
			defer cancel()

			holder := server.NewHolder(a.provider(ctx))
			defer func() { holder.Load().Close() }()

			router := server.NewRouter(server.RouterConfig{
				ContentHandler: server.NewContentHandler(a.log, holder),
				CORSOrigins:    a.cfg.HTTP.CORSOrigins,
			})

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				return server.Run(gctx, addr, router, a.log)
			})

			if watchFS {
				dirs := watchDirs(a.cfg, holder.Load().DiscoveryMetadata())
				rebuild := func(ctx context.Context) error {
					next := a.provider(ctx)
					if err := ctx.Err(); err != nil {
						next.Close()
						return err
					}
					holder.Replace(next, server.DefaultRetireGrace)
					return nil
				}
				r, err := watch.New(dirs, watch.DefaultDebounce, rebuild, a.log)
				if err != nil {
					return err
				}
				g.Go(func() error {
					return r.Run(gctx)
				})
			}
			return g.Wait()
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from HTTP_ADDR)")
	cmd.Flags().BoolVarP(&watchFS, "watch", "w", false, "Rebuild the content view when content files change")
	return cmd
}
