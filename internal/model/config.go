package model

import "time"

// Config is the complete runtime configuration. All credentials and proxy
// endpoints live here and are injected into the components that need them;
// nothing network-related is hardcoded near the validators.
type Config struct {
	Browser     BrowserConfig     `yaml:"browser"`
	Proxy       ProxyConfig       `yaml:"proxy"`
	Storage     StorageConfig     `yaml:"storage"`
	Validation  ValidationConfig  `yaml:"validation"`
	Concurrency ConcurrencyConfig `yaml:"concurrency"`
	RateLimit   RateLimitConfig   `yaml:"rate_limit"`
	Snapshot    SnapshotConfig    `yaml:"snapshot"`
	Server      ServerConfig      `yaml:"server"`
	Output      OutputConfig      `yaml:"output"`
}

// BrowserConfig controls the headless Chrome sessions.
type BrowserConfig struct {
	Headless       bool          `yaml:"headless"`
	ViewportWidth  int           `yaml:"viewport_width"`
	ViewportHeight int           `yaml:"viewport_height"`
	NavTimeout     time.Duration `yaml:"nav_timeout"`
	IdleTimeout    time.Duration `yaml:"idle_timeout"`
	SettleDelay    time.Duration `yaml:"settle_delay"` // pause after scroll for lazy-rendered content
	UserAgent      string        `yaml:"user_agent"`
}

// ProxyConfig describes the relayed egress route used when a registry blocks
// direct traffic. Empty Server disables the proxied path.
type ProxyConfig struct {
	Server   string `yaml:"server"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// Enabled reports whether a proxied network path is configured.
func (p ProxyConfig) Enabled() bool { return p.Server != "" }

// StorageConfig selects and configures the evidence store backend.
type StorageConfig struct {
	Backend  string   `yaml:"backend"` // "local" or "s3"
	LocalDir string   `yaml:"local_dir"`
	S3       S3Config `yaml:"s3"`
}

// S3Config holds the S3 evidence bucket settings.
type S3Config struct {
	Bucket   string `yaml:"bucket"`
	Region   string `yaml:"region"`
	Endpoint string `yaml:"endpoint"` // optional custom endpoint (MinIO etc.)
	Prefix   string `yaml:"prefix"`
}

// ValidationConfig holds decision-rule knobs.
type ValidationConfig struct {
	// TolerancePct is the share-count comparison band in percent.
	// 0 means exact equality, the default for the two-hop registry flow.
	TolerancePct float64       `yaml:"tolerance_pct"`
	CacheTTL     time.Duration `yaml:"cache_ttl"`
}

// ConcurrencyConfig bounds batch parallelism.
type ConcurrencyConfig struct {
	Workers int `yaml:"workers"`
}

// RateLimitConfig bounds navigation rate per registry domain.
type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Burst             int     `yaml:"burst"`
}

// SnapshotConfig controls the URL-to-PDF audit document collaborator.
type SnapshotConfig struct {
	RespectRobots bool          `yaml:"respect_robots"`
	Timeout       time.Duration `yaml:"timeout"`
}

// ServerConfig holds the HTTP service settings.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// OutputConfig controls batch exports and verbosity.
type OutputConfig struct {
	Dir     string `yaml:"dir"`
	Verbose bool   `yaml:"verbose"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Browser: BrowserConfig{
			Headless:       true,
			ViewportWidth:  1920,
			ViewportHeight: 1080,
			NavTimeout:     30 * time.Second,
			IdleTimeout:    35 * time.Second,
			SettleDelay:    time.Second,
			UserAgent:      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
		},
		Storage: StorageConfig{
			Backend:  "local",
			LocalDir: "./evidence",
		},
		Validation: ValidationConfig{
			TolerancePct: 0,
			CacheTTL:     15 * time.Minute,
		},
		Concurrency: ConcurrencyConfig{
			Workers: 4,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 1,
			Burst:             2,
		},
		Snapshot: SnapshotConfig{
			RespectRobots: false,
			Timeout:       30 * time.Second,
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
		Output: OutputConfig{
			Dir: "./results",
		},
	}
}
