package sftpclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net"
	"net/url"
	"strconv"
	"time"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"
)

type Config struct {
	Host                  string
	Port                  int
	User                  string
	Pass                  string
	RemoteDir             string
	InsecureIgnoreHostKey bool
	KnownHostsFile        string
}

var ErrMissingCredentials = errors.New("sftp: missing SFTP_HOST / SFTP_USER / SFTP_PASS")

func (c Config) withDefaults() Config {
	if c.Port <= 0 {
		c.Port = 22
	}
	if c.RemoteDir == "" {
		c.RemoteDir = "/"
	}
	return c
}

func (c Config) validate() error {
	if c.Host == "" || c.User == "" || c.Pass == "" {
		return ErrMissingCredentials
	}
	return nil
}

func (c Config) hostKeyCallback() (ssh.HostKeyCallback, error) {
	if c.KnownHostsFile != "" {
		cb, err := knownhosts.New(c.KnownHostsFile)
		if err != nil {
			return nil, fmt.Errorf("sftp: known_hosts %s: %w", c.KnownHostsFile, err)
		}
		return cb, nil
	}
	if c.InsecureIgnoreHostKey {
		return ssh.InsecureIgnoreHostKey(), nil
	}
	return nil, errors.New("sftp: no host key policy (set SFTP_KNOWN_HOSTS or SFTP_INSECURE)")
}

// ParseURL reads an sftp://[user@]host[:port]/dir root. Fields present in the
// URL override base; the password always comes from base.
func ParseURL(raw string, base Config) (Config, string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return base, "", fmt.Errorf("sftp: parse %q: %w", raw, err)
	}
	if u.Scheme != "sftp" {
		return base, "", fmt.Errorf("sftp: unsupported scheme %q", u.Scheme)
	}
	cfg := base
	if h := u.Hostname(); h != "" {
		cfg.Host = h
	}
	if p := u.Port(); p != "" {
		n, err := strconv.Atoi(p)
		if err != nil {
			return base, "", fmt.Errorf("sftp: bad port %q", p)
		}
		cfg.Port = n
	}
	if u.User != nil && u.User.Username() != "" {
		cfg.User = u.User.Username()
	}
	dir := u.Path
	if dir == "" {
		dir = "/"
	}
	return cfg.withDefaults(), dir, nil
}

// Conn is an open SSH session with an SFTP subsystem on top.
type Conn struct {
	ssh  *ssh.Client
	sftp *sftp.Client
}

// Dial opens the connection. The SSH handshake runs in a goroutine so ctx can
// abandon it.
func Dial(ctx context.Context, cfg Config) (*Conn, error) {
	cfg = cfg.withDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cb, err := cfg.hostKeyCallback()
	if err != nil {
		return nil, err
	}

	sshCfg := &ssh.ClientConfig{
		User:            cfg.User,
		Auth:            []ssh.AuthMethod{ssh.Password(cfg.Pass)},
		HostKeyCallback: cb,
		Timeout:         20 * time.Second,
	}
	addr := net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))

	type dialRes struct {
		client *ssh.Client
		err    error
	}
	ch := make(chan dialRes, 1)
	go func() {
		c, err := ssh.Dial("tcp", addr, sshCfg)
		ch <- dialRes{client: c, err: err}
	}()

	var sshClient *ssh.Client
	select {
	case <-ctx.Done():
		// the dial goroutine still finishes; close whatever it produced
		go func() {
			if r := <-ch; r.client != nil {
				_ = r.client.Close()
			}
		}()
		return nil, fmt.Errorf("sftp: dial canceled: %w", ctx.Err())
	case r := <-ch:
		if r.err != nil {
			return nil, fmt.Errorf("sftp: dial error: %w", r.err)
		}
		sshClient = r.client
	}

	sftpCli, err := sftp.NewClient(sshClient)
	if err != nil {
		_ = sshClient.Close()
		return nil, fmt.Errorf("sftp: new client: %w", err)
	}
	return &Conn{ssh: sshClient, sftp: sftpCli}, nil
}

func (c *Conn) Close() error {
	err := c.sftp.Close()
	if cerr := c.ssh.Close(); err == nil {
		err = cerr
	}
	return err
}

// ReadDir lists a remote directory.
func (c *Conn) ReadDir(dir string) ([]fs.DirEntry, error) {
	infos, err := c.sftp.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	out := make([]fs.DirEntry, 0, len(infos))
	for _, fi := range infos {
		out = append(out, fs.FileInfoToDirEntry(fi))
	}
	return out, nil
}

// ReadFile reads a remote file in full.
func (c *Conn) ReadFile(name string) ([]byte, error) {
	f, err := c.sftp.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

// Upload copies src into remoteDir/remoteName, creating remoteDir if needed.
func (c *Conn) Upload(src io.Reader, remoteDir, remoteName string) error {
	if err := c.sftp.MkdirAll(remoteDir); err != nil {
		return fmt.Errorf("sftp: mkdir %s: %w", remoteDir, err)
	}
	dst, err := c.sftp.Create(c.sftp.Join(remoteDir, remoteName))
	if err != nil {
		return fmt.Errorf("sftp: create remote file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return fmt.Errorf("sftp: upload copy: %w", err)
	}
	return nil
}
