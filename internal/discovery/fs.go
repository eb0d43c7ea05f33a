package discovery

import (
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"

	"content-hub/internal/sftpclient"
)

// FS is the read-only view of a root the walker needs. Local roots use the
// OS, sftp:// roots go through an open sftpclient.Conn.
type FS interface {
	ReadDir(dir string) ([]fs.DirEntry, error)
	ReadFile(name string) ([]byte, error)
	Join(elem ...string) string
}

type localFS struct{}

func (localFS) ReadDir(dir string) ([]fs.DirEntry, error) { return os.ReadDir(dir) }
func (localFS) ReadFile(name string) ([]byte, error)      { return os.ReadFile(name) }
func (localFS) Join(elem ...string) string                 { return filepath.Join(elem...) }

type remoteFS struct {
	conn *sftpclient.Conn
}

// ReadDir sorts by name; the server gives no ordering guarantee.
func (r remoteFS) ReadDir(dir string) ([]fs.DirEntry, error) {
	entries, err := r.conn.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })
	return entries, nil
}

func (r remoteFS) ReadFile(name string) ([]byte, error) { return r.conn.ReadFile(name) }
func (remoteFS) Join(elem ...string) string              { return path.Join(elem...) }
