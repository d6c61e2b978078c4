// Package resolver maps references to filesystem locations and computes completion candidates.
//
// Resolution is pure query logic over the index: it takes the index lock only
// to read tables and never across a filesystem check or a parse.
package resolver

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/gnana997/m2ls/pkg/extractor"
	"github.com/gnana997/m2ls/pkg/index"
	"github.com/gnana997/m2ls/pkg/m2"
	"github.com/gnana997/m2ls/pkg/util"
)

// Config configures a Resolver.
type Config struct {
	// LibraryRoots are searched for library components in addition to <workspace>/lib/web
	LibraryRoots []string

	// MaxCachedClasses bounds the parsed PHP class cache (default: 512)
	MaxCachedClasses int
}

// DefaultConfig returns the default resolver configuration.
func DefaultConfig() Config {
	return Config{MaxCachedClasses: 512}
}

// Resolver answers identifier-resolution queries.
//
// Usage:
//
//	res, err := resolver.New(idx, util.OSFS{}, ext, resolver.DefaultConfig(), logger)
//	if err != nil {
//	    return err
//	}
//	locations := res.Locations(item)
type Resolver struct {
	index  *index.Index
	fs     util.FS
	ext    *extractor.Extractor
	config Config
	logger *slog.Logger

	classes     *lru.Cache[string, cachedClass]
	cacheHits   atomic.Int64
	cacheMisses atomic.Int64
}

// New creates a resolver over idx.
func New(idx *index.Index, fsys util.FS, ext *extractor.Extractor, config Config, logger *slog.Logger) (*Resolver, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if config.MaxCachedClasses <= 0 {
		config.MaxCachedClasses = DefaultConfig().MaxCachedClasses
	}

	cache, err := lru.NewWithEvict(config.MaxCachedClasses, func(path string, _ cachedClass) {
		logger.Debug("evicting parsed class", "path", path)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create class cache: %w", err)
	}

	return &Resolver{
		index:   idx,
		fs:      fsys,
		ext:     ext,
		config:  config,
		logger:  logger,
		classes: cache,
	}, nil
}

// Locations returns every existing location item points at. Misses are an empty result.
func (r *Resolver) Locations(item m2.Item) []m2.Location {
	switch item.Kind {
	case m2.ItemModComponent, m2.ItemModHTML, m2.ItemRelComponent, m2.ItemComponent:
		return r.ComponentLocations(item)
	case m2.ItemTemplate:
		return r.TemplateLocations(item)
	case m2.ItemClass:
		return optional(r.ClassLocation(item.Class))
	case m2.ItemMethod:
		return optional(r.MethodLocation(item.Class, item.Member))
	case m2.ItemConst:
		return optional(r.ConstLocation(item.Class, item.Member))
	default:
		return nil
	}
}

// Stats reports class cache usage.
func (r *Resolver) Stats() Stats {
	return Stats{
		CachedClasses: r.classes.Len(),
		CacheHits:     r.cacheHits.Load(),
		CacheMisses:   r.cacheMisses.Load(),
	}
}

// Stats holds resolver counters.
type Stats struct {
	CachedClasses int   `json:"cached_classes"`
	CacheHits     int64 `json:"cache_hits"`
	CacheMisses   int64 `json:"cache_misses"`
}

// libraryRoots returns <workspace>/lib/web for every workspace, then the configured roots.
func (r *Resolver) libraryRoots() []string {
	var workspaces []string
	r.index.View(func(rd *index.Reader) {
		workspaces = rd.Workspaces()
	})

	roots := make([]string, 0, len(workspaces)+len(r.config.LibraryRoots))
	for _, w := range workspaces {
		roots = append(roots, filepath.Join(w, "lib", "web"))
	}
	return append(roots, r.config.LibraryRoots...)
}

// existing keeps the paths that are regular files, in order, without duplicates.
func (r *Resolver) existing(paths []string) []m2.Location {
	var out []m2.Location
	seen := make(map[string]bool, len(paths))
	for _, p := range paths {
		if seen[p] {
			continue
		}
		seen[p] = true
		if r.fs.Exists(p) {
			out = append(out, m2.Location{Path: p})
		}
	}
	return out
}

func optional(loc m2.Location, ok bool) []m2.Location {
	if !ok {
		return nil
	}
	return []m2.Location{loc}
}
