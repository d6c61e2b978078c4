// Package engine wires the index, extractor, resolver and scheduler into the
// object the protocol surfaces talk to.
package engine

import (
	"fmt"
	"log/slog"

	"github.com/gnana997/m2ls/pkg/extractor"
	"github.com/gnana997/m2ls/pkg/index"
	"github.com/gnana997/m2ls/pkg/metrics"
	"github.com/gnana997/m2ls/pkg/parser"
	"github.com/gnana997/m2ls/pkg/parser/queries"
	"github.com/gnana997/m2ls/pkg/resolver"
	"github.com/gnana997/m2ls/pkg/util"
	"github.com/gnana997/m2ls/pkg/workspace"
)

// Config configures an Engine.
type Config struct {
	// LibraryRoots are extra search roots for library components
	LibraryRoots []string

	// Watch re-extracts discovered files when they change on disk
	Watch bool

	// Workers per bulk job (0 = util.GetOptimalPoolSize)
	Workers int

	// DebounceMs for the on-disk watcher (default: 200)
	DebounceMs int

	// MaxCachedClasses bounds the parsed PHP class cache (default: 512)
	MaxCachedClasses int
}

// DefaultConfig returns the default engine configuration.
func DefaultConfig() Config {
	return Config{
		DebounceMs:       workspace.DefaultOptions().DebounceMs,
		MaxCachedClasses: resolver.DefaultConfig().MaxCachedClasses,
	}
}

// Engine owns every piece of server state. All methods are safe to call from
// the request loop while bulk jobs run.
//
// Usage:
//
//	eng, err := engine.New(engine.DefaultConfig(), logger)
//	if err != nil {
//	    return err
//	}
//	defer eng.Shutdown()
//	eng.IndexWorkspace("/var/www/magento")
//	eng.Open(path, text)
//	locations := eng.Definition(path, pos)
type Engine struct {
	parserManager *parser.ParserManager
	queryManager  *queries.QueryManager
	ext           *extractor.Extractor
	index         *index.Index
	resolver      *resolver.Resolver
	scheduler     *workspace.Scheduler
	fs            util.FS
	logger        *slog.Logger
}

// New creates an engine over the local filesystem.
func New(config Config, logger *slog.Logger) (*Engine, error) {
	return NewWithFS(config, util.OSFS{}, logger)
}

// NewWithFS creates an engine over fsys. Queries are compiled eagerly, so a
// malformed pattern is reported here.
func NewWithFS(config Config, fsys util.FS, logger *slog.Logger) (*Engine, error) {
	if logger == nil {
		logger = slog.Default()
	}

	pm := parser.NewParserManager(logger)
	qm := queries.NewQueryManager(pm, logger)
	if err := qm.Precompile(); err != nil {
		qm.Close()
		pm.Close()
		return nil, fmt.Errorf("failed to compile queries: %w", err)
	}

	ext := extractor.NewExtractor(pm, qm, logger)
	idx := index.New(logger)

	res, err := resolver.New(idx, fsys, ext, resolver.Config{
		LibraryRoots:     config.LibraryRoots,
		MaxCachedClasses: config.MaxCachedClasses,
	}, logger)
	if err != nil {
		qm.Close()
		pm.Close()
		return nil, err
	}

	sched := workspace.New(idx, fsys, ext, workspace.Options{
		Workers:    config.Workers,
		Watch:      config.Watch,
		DebounceMs: config.DebounceMs,
	}, logger)

	return &Engine{
		parserManager: pm,
		queryManager:  qm,
		ext:           ext,
		index:         idx,
		resolver:      res,
		scheduler:     sched,
		fs:            fsys,
		logger:        logger,
	}, nil
}

// IndexWorkspace registers root and starts scanning it in the background.
// Registering a root twice is a no-op that reports false.
func (e *Engine) IndexWorkspace(root string) bool {
	return e.scheduler.IndexWorkspace(root)
}

// Wait blocks until every bulk job has finished.
func (e *Engine) Wait() error {
	return e.scheduler.Wait()
}

// Shutdown joins the bulk jobs and releases parsers and queries.
func (e *Engine) Shutdown() error {
	err := e.scheduler.Close()
	e.queryManager.Close()
	e.parserManager.Close()
	return err
}

// Index exposes the underlying index for read access.
func (e *Engine) Index() *index.Index {
	return e.index
}

// Stats returns the counters of every component and publishes fact gauges.
func (e *Engine) Stats() Stats {
	var facts index.Stats
	e.index.View(func(r *index.Reader) {
		facts = r.Stats()
	})

	metrics.SetFacts("modules", facts.Modules)
	metrics.SetFacts("module_paths", facts.ModulePaths)
	metrics.SetFacts("themes", facts.Themes)
	metrics.SetFacts("js_aliases", facts.JsAliases)
	metrics.SetFacts("js_paths", facts.JsPaths)
	metrics.SetFacts("js_mixins", facts.JsMixins)
	metrics.SetFacts("buffers", facts.Buffers)

	return Stats{
		Index:     facts,
		Scheduler: e.scheduler.Stats(),
		Resolver:  e.resolver.Stats(),
	}
}

// Stats groups the component counters.
type Stats struct {
	Index     index.Stats     `json:"index"`
	Scheduler workspace.Stats `json:"scheduler"`
	Resolver  resolver.Stats  `json:"resolver"`
}
