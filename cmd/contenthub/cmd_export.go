package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"content-hub/internal/export"
)

func newExportCmd(a *app) *cobra.Command {
	var (
		outDir string
		upload bool
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the merged content snapshot and courses CSV",
		Long: `export writes content.json (the merged view in the static content file
shape) and courses.csv into --out-dir. With --sftp both files are uploaded to
the configured SFTP directory afterwards.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext(cmd.Context())
			defer cancel()
			p := a.provider(ctx)
			defer p.Close()

			snap, err := export.Build(ctx, p)
			if err != nil {
				return err
			}
			paths, err := export.WriteFiles(outDir, snap)
			if err != nil {
				return fmt.Errorf("write export: %w", err)
			}
			a.log.Info("export written", "dir", outDir, "courses", len(snap.Courses), "id", snap.Meta.ID)

			if upload {
				if err := export.Upload(ctx, sftpConfig(a.cfg), paths); err != nil {
					return err
				}
				a.log.Info("export uploaded", "host", a.cfg.SFTP.Host, "dir", a.cfg.SFTP.RemoteDir)
			}
			for _, path := range paths {
				fmt.Fprintln(cmd.OutOrStdout(), path)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&outDir, "out-dir", "o", "export", "Directory to write export files into")
	cmd.Flags().BoolVar(&upload, "sftp", false, "Upload the export files over SFTP")
	return cmd
}
