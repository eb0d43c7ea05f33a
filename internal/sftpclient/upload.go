package sftpclient

import (
	"context"
	"fmt"
	"os"
)

// UploadFile dials, uploads localPath as cfg.RemoteDir/remoteFileName and
// closes the connection.
func UploadFile(ctx context.Context, cfg Config, localPath string, remoteFileName string) error {
	cfg = cfg.withDefaults()
	if err := cfg.validate(); err != nil {
		return err
	}

	src, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("sftp: open local file: %w", err)
	}
	defer src.Close()

	conn, err := Dial(ctx, cfg)
	if err != nil {
		return err
	}
	defer conn.Close()

	return conn.Upload(src, cfg.RemoteDir, remoteFileName)
}
