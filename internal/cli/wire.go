package cli

import (
	"context"
	"fmt"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/veritriage/veritriage/internal/browser"
	"github.com/veritriage/veritriage/internal/cache"
	"github.com/veritriage/veritriage/internal/evidence"
	"github.com/veritriage/veritriage/internal/model"
	"github.com/veritriage/veritriage/internal/pipeline"
	"github.com/veritriage/veritriage/internal/route"
	"github.com/veritriage/veritriage/internal/validate"
)

// loadConfig layers viper values (config file, VERITRIAGE_* env) over the
// built-in defaults. Flags apply on top in each command.
func loadConfig() *model.Config {
	cfg := model.DefaultConfig()

	if v := viper.GetString("proxy.server"); v != "" {
		cfg.Proxy.Server = v
	}
	if v := viper.GetString("proxy.username"); v != "" {
		cfg.Proxy.Username = v
	}
	if v := viper.GetString("proxy.password"); v != "" {
		cfg.Proxy.Password = v
	}
	if v := viper.GetString("storage.backend"); v != "" {
		cfg.Storage.Backend = v
	}
	if v := viper.GetString("storage.local_dir"); v != "" {
		cfg.Storage.LocalDir = v
	}
	if v := viper.GetString("storage.s3.bucket"); v != "" {
		cfg.Storage.S3.Bucket = v
	}
	if v := viper.GetString("storage.s3.region"); v != "" {
		cfg.Storage.S3.Region = v
	}
	if v := viper.GetString("storage.s3.endpoint"); v != "" {
		cfg.Storage.S3.Endpoint = v
	}
	if v := viper.GetString("storage.s3.prefix"); v != "" {
		cfg.Storage.S3.Prefix = v
	}
	if viper.IsSet("validation.tolerance_pct") {
		cfg.Validation.TolerancePct = viper.GetFloat64("validation.tolerance_pct")
	}
	if viper.IsSet("validation.cache_ttl") {
		cfg.Validation.CacheTTL = viper.GetDuration("validation.cache_ttl")
	}
	if viper.IsSet("browser.headless") {
		cfg.Browser.Headless = viper.GetBool("browser.headless")
	}
	if viper.IsSet("concurrency.workers") {
		cfg.Concurrency.Workers = viper.GetInt("concurrency.workers")
	}
	if viper.IsSet("rate_limit.requests_per_second") {
		cfg.RateLimit.RequestsPerSecond = viper.GetFloat64("rate_limit.requests_per_second")
	}
	if viper.IsSet("rate_limit.burst") {
		cfg.RateLimit.Burst = viper.GetInt("rate_limit.burst")
	}
	if viper.IsSet("snapshot.respect_robots") {
		cfg.Snapshot.RespectRobots = viper.GetBool("snapshot.respect_robots")
	}
	if viper.IsSet("snapshot.timeout") {
		cfg.Snapshot.Timeout = viper.GetDuration("snapshot.timeout")
	}
	if v := viper.GetString("server.addr"); v != "" {
		cfg.Server.Addr = v
	}
	if v := viper.GetString("output.dir"); v != "" {
		cfg.Output.Dir = v
	}

	cfg.Output.Verbose = viper.GetBool("verbose")
	return cfg
}

func buildLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func buildStore(ctx context.Context, cfg *model.Config, log *zap.Logger) (evidence.Store, error) {
	switch cfg.Storage.Backend {
	case "s3":
		return evidence.NewS3Store(ctx, cfg.Storage.S3, log)
	case "", "local":
		return evidence.NewLocalStore(cfg.Storage.LocalDir)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

// buildPipeline assembles the full triage stack from configuration.
func buildPipeline(ctx context.Context, cfg *model.Config, log *zap.Logger) (*pipeline.Pipeline, *browser.Manager, error) {
	store, err := buildStore(ctx, cfg, log)
	if err != nil {
		return nil, nil, fmt.Errorf("evidence store: %w", err)
	}

	mgr := browser.NewManager(cfg.Browser, cfg.Proxy, log)
	open := validate.OpenWith(mgr)

	market := validate.NewMarketValidator(open, store, log)
	shares := validate.NewShareValidator(open, store, cfg.Proxy, cfg.Validation.TolerancePct, log)
	records := cache.NewRecords(cfg.Validation.CacheTTL)

	p := pipeline.New(route.NewRouter(), market, shares, store, records, log)
	return p, mgr, nil
}
