// Package server exposes the growth pipeline over HTTP.
//
// Routes:
//
//	POST /v1/runs               grow a tree from JSON options (synchronous)
//	GET  /v1/runs               list recent runs, newest first (?limit=n)
//	GET  /v1/runs/{id}          one run with its options and tree
//	GET  /v1/runs/{id}/{format} re-render an archived run (svg, png, obj, json, dot, nodelink)
//	GET  /healthz               liveness
//	GET  /metrics               Prometheus metrics
package server

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/spacecol/pkg/archive"
	"github.com/matzehuels/spacecol/pkg/buildinfo"
	"github.com/matzehuels/spacecol/pkg/errors"
	"github.com/matzehuels/spacecol/pkg/graph"
	"github.com/matzehuels/spacecol/pkg/httputil"
	"github.com/matzehuels/spacecol/pkg/observability"
	"github.com/matzehuels/spacecol/pkg/pipeline"
)

const (
	// DefaultAddr is the listen address of `spacecol serve`.
	DefaultAddr = ":8080"

	// DefaultMaxNodes bounds the node cap a request may ask for.
	DefaultMaxNodes = 20000

	// DefaultRunTimeout bounds a single synchronous run.
	DefaultRunTimeout = 2 * time.Minute

	shutdownTimeout = 10 * time.Second
)

var contentTypes = map[string]string{
	pipeline.FormatSVG:      "image/svg+xml",
	pipeline.FormatPNG:      "image/png",
	pipeline.FormatOBJ:      "text/plain; charset=utf-8",
	pipeline.FormatJSON:     "application/json",
	pipeline.FormatDOT:      "text/vnd.graphviz",
	pipeline.FormatNodelink: "image/svg+xml",
}

// Server serves the run API.
type Server struct {
	Runner   *pipeline.Runner
	Archive  archive.Store
	Logger   *log.Logger
	Gatherer prometheus.Gatherer // nil serves the default registry

	MaxNodes   int
	RunTimeout time.Duration
}

// New returns a server that archives every run into store.
func New(runner *pipeline.Runner, store archive.Store, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	runner.Archive = store
	return &Server{
		Runner:     runner,
		Archive:    store,
		Logger:     logger,
		MaxNodes:   DefaultMaxNodes,
		RunTimeout: DefaultRunTimeout,
	}
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	gatherer := s.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.observe)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		_ = httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": buildinfo.Short()})
	})
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Route("/v1/runs", func(r chi.Router) {
		r.Post("/", s.createRun)
		r.Get("/", s.listRuns)
		r.Get("/{id}", s.getRun)
		r.Get("/{id}/{format}", s.renderRun)
	})
	return r
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.Logger.Info("listening", "addr", addr)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.Logger.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !stderrors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// observe logs each request and reports it to the HTTP hooks under its
// route pattern.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		dur := time.Since(start)
		observability.HTTP().OnRequest(r.Context(), r.Method, route, status, dur)
		s.Logger.Debug("request",
			"method", r.Method,
			"route", route,
			"status", status,
			"duration", dur,
			"request_id", middleware.GetReqID(r.Context()))
	})
}

// runResponse is the body of a successful POST /v1/runs.
type runResponse struct {
	ID        string            `json:"id"`
	TreeKey   string            `json:"tree_key"`
	CacheHit  bool              `json:"cache_hit"`
	Stats     pipeline.Stats    `json:"stats"`
	Tree      graph.Tree        `json:"tree"`
	Artifacts map[string][]byte `json:"artifacts"`
}

func (s *Server) createRun(w http.ResponseWriter, r *http.Request) {
	var opts pipeline.Options
	if err := httputil.DecodeJSON(w, r, &opts); err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.checkLimits(opts); err != nil {
		s.fail(w, r, err)
		return
	}
	opts.Logger = s.Logger.With("request_id", middleware.GetReqID(r.Context()))

	ctx, cancel := context.WithTimeout(r.Context(), s.RunTimeout)
	defer cancel()
	res, err := s.Runner.Execute(ctx, opts)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	_ = httputil.WriteJSON(w, http.StatusCreated, runResponse{
		ID:        res.ID,
		TreeKey:   res.TreeKey,
		CacheHit:  res.CacheHit,
		Stats:     res.Stats,
		Tree:      res.Graph,
		Artifacts: res.Artifacts,
	})
}

// checkLimits rejects requests the API does not serve: sources reading
// server-side files, and node caps above MaxNodes.
func (s *Server) checkLimits(opts pipeline.Options) error {
	if opts.MaskPath != "" || opts.MeshPath != "" {
		return errors.New(errors.ErrCodeUnsupported, "mask and volume sources read local files and are not served over the API")
	}
	if opts.MaxNodes < 0 || opts.MaxNodes > s.MaxNodes {
		return errors.New(errors.ErrCodeConfiguration, "max_nodes must be between 1 and %d", s.MaxNodes)
	}
	return nil
}

// runView is the JSON form of an archived run.
type runView struct {
	ID          string          `json:"id"`
	CreatedAt   time.Time       `json:"created_at"`
	Source      string          `json:"source"`
	Seed        uint64          `json:"seed"`
	Nodes       int             `json:"nodes"`
	Ticks       int             `json:"ticks"`
	Reason      string          `json:"reason"`
	OptionsHash string          `json:"options_hash"`
	Options     json.RawMessage `json:"options,omitempty"`
	Tree        json.RawMessage `json:"tree,omitempty"`
}

func viewOf(rec archive.Record) runView {
	return runView{
		ID:          rec.ID,
		CreatedAt:   rec.CreatedAt,
		Source:      rec.Source,
		Seed:        rec.Seed,
		Nodes:       rec.Nodes,
		Ticks:       rec.Ticks,
		Reason:      rec.Reason,
		OptionsHash: rec.OptionsHash,
		Options:     json.RawMessage(rec.Options),
		Tree:        json.RawMessage(rec.Tree),
	}
}

func (s *Server) listRuns(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			s.fail(w, r, errors.New(errors.ErrCodeInvalidInput, "limit must be a positive integer, got %q", v))
			return
		}
		limit = n
	}
	recs, err := s.Archive.List(r.Context(), limit)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	views := make([]runView, len(recs))
	for i, rec := range recs {
		views[i] = viewOf(rec)
	}
	_ = httputil.WriteJSON(w, http.StatusOK, views)
}

func (s *Server) getRun(w http.ResponseWriter, r *http.Request) {
	rec, err := s.lookup(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	_ = httputil.WriteJSON(w, http.StatusOK, viewOf(rec))
}

// renderRun re-renders an archived tree with the options it was grown with.
func (s *Server) renderRun(w http.ResponseWriter, r *http.Request) {
	format := chi.URLParam(r, "format")
	if err := pipeline.ValidateFormat(format); err != nil {
		s.fail(w, r, err)
		return
	}
	rec, err := s.lookup(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	g, err := graph.UnmarshalTree(rec.Tree)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var opts pipeline.Options
	if len(rec.Options) > 0 {
		if err := json.Unmarshal(rec.Options, &opts); err != nil {
			s.fail(w, r, err)
			return
		}
	}
	opts.Formats = []string{format}
	opts.Logger = s.Logger

	arts, err := s.Runner.RenderWithCache(r.Context(), rec.OptionsHash, g, opts)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", contentTypes[format])
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(arts[format])
}

func (s *Server) lookup(r *http.Request) (archive.Record, error) {
	id := chi.URLParam(r, "id")
	rec, err := s.Archive.Get(r.Context(), id)
	if stderrors.Is(err, archive.ErrNotFound) {
		return archive.Record{}, errors.Wrap(errors.ErrCodeNotFound, err, "run %s not found", id)
	}
	return rec, err
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := httputil.WriteError(w, err)
	if status >= http.StatusInternalServerError {
		s.Logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
	}
}
