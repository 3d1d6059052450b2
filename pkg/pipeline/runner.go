package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/spacecol/pkg/archive"
	"github.com/matzehuels/spacecol/pkg/cache"
	"github.com/matzehuels/spacecol/pkg/colonize"
	"github.com/matzehuels/spacecol/pkg/graph"
	"github.com/matzehuels/spacecol/pkg/observability"
	"github.com/matzehuels/spacecol/pkg/render"
)

// Runner encapsulates pipeline execution with caching and archiving.
// Both CLI and API use it.
//
// The Runner holds no per-run state; several goroutines may execute runs on
// the same Runner with different options.
type Runner struct {
	Cache   cache.Cache
	Keyer   cache.Keyer
	Archive archive.Store // nil disables the archive
	Logger  *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// cachedRun is the cached form of a finished growth.
type cachedRun struct {
	Tree  graph.Tree     `json:"tree"`
	Stats colonize.Stats `json:"stats"`
}

// Execute runs the complete field → grow → render pipeline with caching and,
// when an archive is configured, records the run.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	hooks := observability.Growth()
	hooks.OnRunStart(ctx, opts.Source)
	summary := observability.RunSummary{Source: opts.Source}
	start := time.Now()
	defer func() {
		summary.Duration = time.Since(start)
		hooks.OnRunComplete(ctx, summary)
	}()

	result := &Result{
		ID:        uuid.NewString(),
		Artifacts: make(map[string][]byte),
	}

	// Stage 1+2: field and growth
	growStart := time.Now()
	run, hit, err := r.GrowWithCacheInfo(ctx, opts, result)
	if err != nil {
		summary.Err = err
		return nil, fmt.Errorf("grow: %w", err)
	}
	result.Graph = run.Tree
	result.CacheHit = hit
	result.Stats.Nodes = len(run.Tree.Nodes)
	result.Stats.Ticks = run.Tree.Ticks
	result.Stats.Reason = run.Tree.Reason
	result.Stats.Growth = run.Stats
	result.Stats.GrowTime = time.Since(growStart)
	if result.Tree, err = graph.ToTree(run.Tree); err != nil {
		summary.Err = err
		return nil, fmt.Errorf("grow: %w", err)
	}
	summary.Reason, summary.Nodes, summary.Ticks, summary.Cached = result.Stats.Reason, result.Stats.Nodes, result.Stats.Ticks, hit

	r.Logger.Info("grew tree",
		"source", opts.Source,
		"nodes", result.Stats.Nodes,
		"ticks", result.Stats.Ticks,
		"reason", result.Stats.Reason,
		"cached", hit,
		"duration", result.Stats.GrowTime)

	// Stage 3: render
	renderStart := time.Now()
	artifacts, err := r.RenderWithCache(ctx, result.TreeKey, run.Tree, opts)
	if err != nil {
		summary.Err = err
		return nil, err
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	if r.Archive != nil {
		if err := r.archive(ctx, result, opts); err != nil {
			r.Logger.Warn("archive run", "id", result.ID, "err", err)
		}
	}
	return result, nil
}

// GrowWithCacheInfo returns the grown tree for opts and whether it came from
// the cache. Runs that write frames always simulate, since the frames are a
// side effect of growth. res receives the tree key and the written frames.
func (r *Runner) GrowWithCacheInfo(ctx context.Context, opts Options, res *Result) (cachedRun, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return cachedRun{}, false, err
	}
	cacheHooks := observability.Cache()

	key := r.Keyer.TreeKey(opts.TreeKeyOpts())
	res.TreeKey = key

	if !opts.Refresh && opts.FrameDir == "" {
		var run cachedRun
		if err := cache.GetJSON(ctx, r.Cache, key, &run); err == nil {
			cacheHooks.OnCacheHit(ctx, "tree")
			opts.Logger.Debug("tree cache hit", "key", key)
			return run, true, nil
		}
		cacheHooks.OnCacheMiss(ctx, "tree")
	}

	gen, err := NewGenerator(opts)
	if err != nil {
		return cachedRun{}, false, err
	}

	var frames *render.FrameWriter
	if opts.FrameDir != "" {
		if frames, err = render.NewFrameWriter(opts.FrameDir, opts.RenderOptions()); err != nil {
			return cachedRun{}, false, err
		}
	}
	obs := colonize.Observers(
		logObserver{logger: opts.Logger},
		hookObserver{ctx: ctx, source: opts.Source, hooks: observability.Growth()},
		framesObserver(frames),
		opts.Observer,
	)

	sim, err := colonize.New(opts.growthConfig(), gen, colonize.WithSeed(opts.Seed), colonize.WithObserver(obs))
	if err != nil {
		return cachedRun{}, false, err
	}
	out, err := sim.Run(ctx)
	if err != nil {
		return cachedRun{}, false, err
	}
	if frames != nil {
		if err := frames.Err(); err != nil {
			return cachedRun{}, false, fmt.Errorf("write frames: %w", err)
		}
		res.Frames = frames.Frames()
		opts.Logger.Info("wrote frames", "dir", opts.FrameDir, "count", len(res.Frames))
	}

	g := graph.FromTree(out.Tree)
	g.Ticks = out.Ticks
	g.Reason = string(out.Reason)
	run := cachedRun{Tree: g, Stats: out.Stats}

	err = cache.RetryWithBackoff(ctx, func() error {
		return cache.SetJSON(ctx, r.Cache, key, run, cache.TTLTree)
	})
	if err != nil {
		opts.Logger.Warn("cache tree", "key", key, "err", err)
	} else {
		cacheHooks.OnCacheSet(ctx, "tree", len(g.Nodes))
	}
	return run, false, nil
}

// RenderWithCache renders the requested formats of a tree, reusing cached
// artifacts. Only the formats missing from the cache are rendered.
func (r *Runner) RenderWithCache(ctx context.Context, treeKey string, g graph.Tree, opts Options) (map[string][]byte, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForRender(); err != nil {
		return nil, err
	}
	cacheHooks := observability.Cache()

	artifacts := make(map[string][]byte, len(opts.Formats))
	var missing []string
	for _, format := range opts.Formats {
		if !opts.Refresh && treeKey != "" {
			key := r.Keyer.ArtifactKey(treeKey, opts.ArtifactKeyOpts(format))
			if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
				cacheHooks.OnCacheHit(ctx, "artifact")
				artifacts[format] = data
				continue
			}
			cacheHooks.OnCacheMiss(ctx, "artifact")
		}
		missing = append(missing, format)
	}
	if len(missing) == 0 {
		return artifacts, nil
	}

	sub := opts
	sub.Formats = missing
	rendered, err := Render(ctx, g, sub)
	if err != nil {
		return nil, err
	}
	for format, data := range rendered {
		artifacts[format] = data
		if treeKey == "" {
			continue
		}
		key := r.Keyer.ArtifactKey(treeKey, opts.ArtifactKeyOpts(format))
		if err := r.Cache.Set(ctx, key, data, cache.TTLArtifact); err != nil {
			opts.Logger.Debug("cache artifact", "format", format, "err", err)
			continue
		}
		cacheHooks.OnCacheSet(ctx, "artifact", len(data))
	}
	return artifacts, nil
}

func (r *Runner) archive(ctx context.Context, res *Result, opts Options) error {
	treeData, err := graph.MarshalTree(res.Graph)
	if err != nil {
		return err
	}
	optsData, err := json.Marshal(opts)
	if err != nil {
		return err
	}
	return r.Archive.Save(ctx, archive.Record{
		ID:          res.ID,
		CreatedAt:   time.Now().UTC(),
		Source:      opts.Source,
		Seed:        opts.Seed,
		Nodes:       res.Stats.Nodes,
		Ticks:       res.Stats.Ticks,
		Reason:      res.Stats.Reason,
		OptionsHash: res.TreeKey,
		Options:     optsData,
		Tree:        treeData,
	})
}

// Close releases the cache and the archive.
func (r *Runner) Close() error {
	var err error
	if r.Cache != nil {
		err = r.Cache.Close()
	}
	if r.Archive != nil {
		if aerr := r.Archive.Close(); err == nil {
			err = aerr
		}
	}
	return err
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
	if opts.Logger == nil {
		opts.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}
