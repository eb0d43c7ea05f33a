package main

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"content-hub/internal/config"
	"content-hub/internal/content"
	"content-hub/internal/discovery"
	"content-hub/internal/providers/remote"
	"content-hub/internal/sftpclient"
)

func sftpConfig(cfg config.Config) sftpclient.Config {
	return sftpclient.Config{
		Host:                  cfg.SFTP.Host,
		Port:                  cfg.SFTP.Port,
		User:                  cfg.SFTP.User,
		Pass:                  cfg.SFTP.Pass,
		RemoteDir:             cfg.SFTP.RemoteDir,
		InsecureIgnoreHostKey: cfg.SFTP.InsecureIgnoreHostKey,
		KnownHostsFile:        cfg.SFTP.KnownHostsFile,
	}
}

func contentOptions(cfg config.Config) content.Options {
	return content.Options{
		Remote: remote.Config{
			URL:         cfg.Supabase.URL,
			APIKey:      cfg.Supabase.APIKey,
			Schema:      cfg.Supabase.Schema,
			DatabaseURL: cfg.Supabase.DatabaseURL,
			Suspended:   cfg.Supabase.Suspended,
			Timeout:     cfg.Supabase.Timeout,
			MaxAttempts: cfg.Supabase.MaxAttempts,
		},
		StaticContentPaths: cfg.Static.Candidates,
		Discovery: discovery.Scanner{
			Roots:      cfg.Discovery.Roots,
			AppPattern: cfg.Discovery.AppPattern,
			Exclude:    cfg.Discovery.Exclude,
			MaxDepth:   cfg.Discovery.MaxDepth,
			SFTP:       sftpConfig(cfg),
		},
	}
}

func (a *app) provider(ctx context.Context) *content.Provider {
	return content.New(ctx, contentOptions(a.cfg), a.log)
}

// watchDirs are the local directories whose changes should rebuild the
// provider.
func watchDirs(cfg config.Config, meta discovery.Metadata) []string {
	var dirs []string
	for _, c := range cfg.Static.Candidates {
		dirs = append(dirs, filepath.Dir(c))
	}
	for _, r := range cfg.Discovery.Roots {
		if filepath.IsAbs(r) {
			dirs = append(dirs, r)
		}
	}
	return append(dirs, meta.LocalDirs()...)
}

// signalContext is canceled on SIGINT/SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
