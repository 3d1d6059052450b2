package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/matzehuels/spacecol/internal/server"
	"github.com/matzehuels/spacecol/pkg/cache"
	"github.com/matzehuels/spacecol/pkg/observability"
)

// serveFlags holds the flag values of the serve command.
type serveFlags struct {
	addr       string
	maxNodes   int
	timeout    time.Duration
	cacheScope string
	noCache    bool
}

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var f serveFlags

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the growth pipeline over HTTP",
		Long: `Serve the growth pipeline as a JSON API with Prometheus metrics.

Results are cached in Redis when ` + envRedisURL + ` is set and in the local
cache directory otherwise. Runs are archived in MongoDB when ` + envMongoURI + `
is set and in the local history database otherwise.`,
		Example: `  spacecol serve --addr :9000
  SPACECOL_REDIS_URL=redis://localhost:6379/0 spacecol serve --cache-scope prod:`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), f)
		},
	}

	fs := cmd.Flags()
	fs.StringVar(&f.addr, "addr", server.DefaultAddr, "listen address")
	fs.IntVar(&f.maxNodes, "max-nodes", server.DefaultMaxNodes, "largest node cap a request may ask for")
	fs.DurationVar(&f.timeout, "timeout", server.DefaultRunTimeout, "per-run time limit")
	fs.StringVar(&f.cacheScope, "cache-scope", "", "prefix for cache keys")
	fs.BoolVar(&f.noCache, "no-cache", false, "disable the cache")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, f serveFlags) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	hooks := observability.NewPrometheusHooks(reg)
	observability.SetGrowthHooks(hooks)
	observability.SetCacheHooks(hooks)
	observability.SetHTTPHooks(hooks)
	defer observability.Reset()

	runner, err := newRunner(ctx, c.Logger, f.noCache)
	if err != nil {
		return fmt.Errorf("open cache: %w", err)
	}
	if f.cacheScope != "" {
		runner.Keyer = cache.NewScopedKeyer(runner.Keyer, f.cacheScope)
	}
	store, err := openArchive(ctx)
	if err != nil {
		runner.Close()
		return fmt.Errorf("open archive: %w", err)
	}

	srv := server.New(runner, store, c.Logger)
	srv.Gatherer = reg
	srv.MaxNodes = f.maxNodes
	srv.RunTimeout = f.timeout
	defer runner.Close()

	return srv.ListenAndServe(ctx, f.addr)
}
