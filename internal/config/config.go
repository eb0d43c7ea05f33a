package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Supabase  SupabaseConfig  `yaml:"supabase"`
	Static    StaticConfig    `yaml:"static"`
	Discovery DiscoveryConfig `yaml:"discovery"`
	SFTP      SFTPConfig      `yaml:"sftp"`
	HTTP      HTTPConfig      `yaml:"http"`
	LogMode   string          `yaml:"logMode"`

	// BaseDir anchors relative paths; the config file's directory when one
	// was loaded, the working directory otherwise.
	BaseDir string `yaml:"-"`
}

type SupabaseConfig struct {
	URL         string        `yaml:"url"`
	APIKey      string        `yaml:"apiKey"`
	Schema      string        `yaml:"schema"`
	DatabaseURL string        `yaml:"databaseUrl"`
	Suspended   bool          `yaml:"suspended"`
	Timeout     time.Duration `yaml:"timeout"`
	MaxAttempts int           `yaml:"maxAttempts"`
}

type StaticConfig struct {
	// Candidates are tried in order; the first existing file wins.
	Candidates []string `yaml:"candidates"`
}

type DiscoveryConfig struct {
	Roots      []string `yaml:"roots"`
	AppPattern string   `yaml:"appPattern"`
	Exclude    []string `yaml:"exclude"`
	MaxDepth   int      `yaml:"maxDepth"`
}

type SFTPConfig struct {
	Host                  string `yaml:"host"`
	Port                  int    `yaml:"port"`
	User                  string `yaml:"user"`
	Pass                  string `yaml:"pass"`
	RemoteDir             string `yaml:"remoteDir"`
	InsecureIgnoreHostKey bool   `yaml:"insecureIgnoreHostKey"`
	KnownHostsFile        string `yaml:"knownHostsFile"`
}

type HTTPConfig struct {
	Addr        string   `yaml:"addr"`
	CORSOrigins []string `yaml:"corsOrigins"`
}

func Defaults() Config {
	return Config{
		Supabase: SupabaseConfig{
			Schema:      "public",
			Timeout:     30 * time.Second,
			MaxAttempts: 1,
		},
		Static: StaticConfig{
			Candidates: []string{"data/content.json", "public/data/content.json", "content.json"},
		},
		Discovery: DiscoveryConfig{
			AppPattern: "*",
			MaxDepth:   6,
		},
		SFTP: SFTPConfig{
			Port:      22,
			RemoteDir: "/",
		},
		HTTP: HTTPConfig{
			Addr:        ":8080",
			CORSOrigins: []string{"http://localhost:3000"},
		},
		LogMode: "dev",
	}
}

// Load builds the config: defaults, then the YAML file at path (if any),
// then environment overrides. Relative paths are resolved once at the end.
func Load(path string) (Config, error) {
	cfg := Defaults()

	if path == "" {
		path = os.Getenv("CONTENT_HUB_CONFIG")
	}
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return cfg, fmt.Errorf("config: parse %s: %w", path, err)
		}
		abs, err := filepath.Abs(path)
		if err != nil {
			return cfg, fmt.Errorf("config: resolve %s: %w", path, err)
		}
		cfg.BaseDir = filepath.Dir(abs)
	}

	cfg.applyEnv()

	if cfg.BaseDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return cfg, fmt.Errorf("config: working dir: %w", err)
		}
		cfg.BaseDir = wd
	}
	cfg.Resolve()
	return cfg, nil
}

func (c *Config) applyEnv() {
	// Supabase
	c.Supabase.URL = getenv("SUPABASE_URL", getenv("NEXT_PUBLIC_SUPABASE_URL", c.Supabase.URL))
	c.Supabase.APIKey = getenv("SUPABASE_SERVICE_ROLE_KEY",
		getenv("SUPABASE_ANON_KEY", getenv("NEXT_PUBLIC_SUPABASE_ANON_KEY", c.Supabase.APIKey)))
	c.Supabase.Schema = getenv("SUPABASE_SCHEMA", c.Supabase.Schema)
	c.Supabase.DatabaseURL = getenv("CONTENT_DATABASE_URL", c.Supabase.DatabaseURL)
	c.Supabase.Suspended = getenvBool("SUPABASE_SUSPENDED", c.Supabase.Suspended)
	if secs := getenvInt("SUPABASE_TIMEOUT_SECONDS", -1); secs >= 0 {
		c.Supabase.Timeout = time.Duration(secs) * time.Second
	}
	c.Supabase.MaxAttempts = getenvInt("SUPABASE_MAX_ATTEMPTS", c.Supabase.MaxAttempts)

	// Static / discovery
	c.Static.Candidates = getenvList("STATIC_CONTENT_PATHS", c.Static.Candidates)
	c.Discovery.Roots = getenvList("DISCOVERY_ROOTS", c.Discovery.Roots)
	c.Discovery.AppPattern = getenv("DISCOVERY_APP_PATTERN", c.Discovery.AppPattern)
	c.Discovery.Exclude = getenvList("DISCOVERY_EXCLUDE", c.Discovery.Exclude)
	c.Discovery.MaxDepth = getenvInt("DISCOVERY_MAX_DEPTH", c.Discovery.MaxDepth)

	// SFTP
	c.SFTP.Host = getenv("SFTP_HOST", c.SFTP.Host)
	c.SFTP.Port = getenvInt("SFTP_PORT", c.SFTP.Port)
	c.SFTP.User = getenv("SFTP_USER", c.SFTP.User)
	c.SFTP.Pass = getenv("SFTP_PASS", c.SFTP.Pass)
	c.SFTP.RemoteDir = getenv("SFTP_DIR", c.SFTP.RemoteDir)
	c.SFTP.InsecureIgnoreHostKey = getenvBool("SFTP_INSECURE", c.SFTP.InsecureIgnoreHostKey)
	c.SFTP.KnownHostsFile = getenv("SFTP_KNOWN_HOSTS", c.SFTP.KnownHostsFile)

	// HTTP / logging
	c.HTTP.Addr = getenv("HTTP_ADDR", c.HTTP.Addr)
	c.HTTP.CORSOrigins = getenvList("CORS_ORIGINS", c.HTTP.CORSOrigins)
	c.LogMode = getenv("LOG_MODE", c.LogMode)
}

// Resolve turns relative static and discovery paths into absolute ones
// against BaseDir. Remote (sftp://) roots are left alone.
func (c *Config) Resolve() {
	for i, p := range c.Static.Candidates {
		c.Static.Candidates[i] = c.abs(p)
	}
	for i, p := range c.Discovery.Roots {
		if strings.Contains(p, "://") {
			continue
		}
		c.Discovery.Roots[i] = c.abs(p)
	}
	if c.SFTP.KnownHostsFile != "" {
		c.SFTP.KnownHostsFile = c.abs(c.SFTP.KnownHostsFile)
	}
}

func (c *Config) abs(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Clean(filepath.Join(c.BaseDir, p))
}

func getenv(k, def string) string {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	return v
}

func getenvInt(k string, def int) int {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func getenvBool(k string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

// getenvList splits a comma-separated variable, dropping empty entries.
func getenvList(k string, def []string) []string {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
