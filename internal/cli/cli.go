// Package cli implements the spacecol command-line interface.
//
// The commands are:
//   - grow: run a space-colonization growth and write its artifacts
//   - render: re-render a saved tree.json
//   - serve: expose the pipeline as an HTTP API
//   - cache: manage the result cache
//   - history: browse archived runs
//
// All commands support --verbose (-v) for debug-level logging.
package cli

import (
	"context"
	"io"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/spacecol/pkg/archive"
	"github.com/matzehuels/spacecol/pkg/buildinfo"
	"github.com/matzehuels/spacecol/pkg/cache"
	"github.com/matzehuels/spacecol/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "spacecol"

	// envRedisURL selects a Redis cache instead of the file cache.
	envRedisURL = "SPACECOL_REDIS_URL"

	// envMongoURI selects a MongoDB archive instead of the local SQLite file.
	envMongoURI = "SPACECOL_MONGO_URI"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           appName,
		Short:         "spacecol grows branching structures by space colonization",
		Long:          `spacecol grows trees, roots, corals and veins with the space-colonization algorithm: attractor points pull a forest of branches towards them until the field is consumed.`,
		Version:       buildinfo.Short(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.AddCommand(c.growCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.historyCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner logging to logger.
func newRunner(ctx context.Context, logger *log.Logger, noCache bool) (*pipeline.Runner, error) {
	c, err := newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(c, nil, logger), nil
}

// newCache returns the Redis cache when SPACECOL_REDIS_URL is set, the
// file cache otherwise.
func newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	if url := os.Getenv(envRedisURL); url != "" {
		return cache.NewRedisCache(ctx, url)
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// openArchive returns the MongoDB archive when SPACECOL_MONGO_URI is set,
// the local SQLite history otherwise.
func openArchive(ctx context.Context) (archive.Store, error) {
	if uri := os.Getenv(envMongoURI); uri != "" {
		return archive.OpenMongo(ctx, uri)
	}
	path, err := archive.DefaultPath()
	if err != nil {
		return nil, err
	}
	return archive.OpenSQLite(ctx, path)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/spacecol/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// =============================================================================
// Options Helpers
// =============================================================================

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatSVG}
	}
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

// writeArtifacts writes each artifact to base.<ext> and returns the paths
// sorted by format.
func writeArtifacts(base string, artifacts map[string][]byte) ([]string, error) {
	if dir := filepath.Dir(base); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	var paths []string
	for _, f := range slices.Sorted(maps.Keys(artifacts)) {
		data := artifacts[f]
		path := base + "." + pipeline.Extension(f)
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}
