// Package workspace discovers a workspace's components and drives bulk extraction into the index.
package workspace

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/gnana997/m2ls/pkg/extractor"
	"github.com/gnana997/m2ls/pkg/index"
	"github.com/gnana997/m2ls/pkg/metrics"
	"github.com/gnana997/m2ls/pkg/util"
)

// Options configures a Scheduler.
type Options struct {
	// Workers per job (0 = util.GetOptimalPoolSize)
	Workers int

	// Watch re-extracts discovered files when they change on disk
	Watch bool

	// DebounceMs groups rapid changes of one file (default: 200)
	DebounceMs int
}

// DefaultOptions returns the default scheduler options.
func DefaultOptions() Options {
	return Options{DebounceMs: 200}
}

// Scheduler registers workspaces and runs their bulk extraction jobs.
//
// Each new root starts two independent jobs, one over RegistrationPatterns
// and one over RequireConfigPatterns. Workers read and parse outside the
// index lock and take it only to replace one file's facts.
//
// Usage:
//
//	sched := workspace.New(idx, util.OSFS{}, ext, workspace.DefaultOptions(), logger)
//	sched.IndexWorkspace("/var/www/magento")
//	defer sched.Close()
type Scheduler struct {
	index   *index.Index
	fs      util.FS
	ext     *extractor.Extractor
	options Options
	logger  *slog.Logger

	group   errgroup.Group
	watcher *Watcher

	jobsStarted  atomic.Int64
	jobsFinished atomic.Int64
	filesIndexed atomic.Int64
	filesSkipped atomic.Int64
	filesFailed  atomic.Int64
}

// New creates a scheduler. A watcher that cannot be created is logged and disabled.
func New(idx *index.Index, fsys util.FS, ext *extractor.Extractor, options Options, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	if options.DebounceMs <= 0 {
		options.DebounceMs = DefaultOptions().DebounceMs
	}

	s := &Scheduler{
		index:   idx,
		fs:      fsys,
		ext:     ext,
		options: options,
		logger:  logger,
	}

	if options.Watch {
		w, err := NewWatcher(s, time.Duration(options.DebounceMs)*time.Millisecond, logger)
		if err != nil {
			logger.Warn("file watching disabled", "error", err)
		} else {
			s.watcher = w
		}
	}
	return s
}

// IndexWorkspace registers root and starts its bulk jobs. It reports false,
// doing nothing, when root is already registered.
func (s *Scheduler) IndexWorkspace(root string) bool {
	root = filepath.Clean(root)

	var added bool
	s.index.Update(func(tx *index.Tx) {
		added = tx.AddWorkspace(root)
	})
	if !added {
		s.logger.Debug("workspace already registered", "root", root)
		return false
	}

	s.logger.Info("indexing workspace", "root", root)
	s.start(root, JobRegistration, RegistrationPatterns)
	s.start(root, JobRequireConfig, RequireConfigPatterns)
	return true
}

func (s *Scheduler) start(root, job string, patterns []string) {
	s.jobsStarted.Add(1)
	s.group.Go(func() error {
		defer s.jobsFinished.Add(1)
		s.runJob(root, job, patterns)
		return nil
	})
}

// runJob feeds every file matching patterns under root into a worker pool.
func (s *Scheduler) runJob(root, job string, patterns []string) {
	start := time.Now()

	pool := NewWorkerPool(s.options.Workers, func(j FileJob) error {
		return s.process(job, j.Path)
	}, s.logger)
	pool.Start()

	n := 0
	for _, pattern := range patterns {
		for path, err := range s.fs.Glob(root, pattern) {
			if err != nil {
				s.logger.Warn("glob failed", "job", job, "root", root, "pattern", pattern, "error", err)
				break
			}
			if err := pool.Submit(FileJob{Path: path, JobID: n}); err != nil {
				s.logger.Warn("failed to submit file", "path", path, "error", err)
				continue
			}
			n++
			if s.watcher != nil {
				s.watcher.Watch(filepath.Dir(path))
			}
		}
	}
	pool.FinishSubmitting()
	pool.Wait()

	elapsed := time.Since(start)
	metrics.RecordJob(job, elapsed)

	stats := pool.GetStats()
	s.logger.Info("workspace job finished",
		"job", job,
		"root", root,
		"files", stats.JobsSubmitted,
		"failed", stats.JobsFailed,
		"duration", elapsed)
}

func (s *Scheduler) process(job, path string) error {
	indexed, err := s.IndexFile(path)
	switch {
	case err != nil:
		s.filesFailed.Add(1)
		metrics.RecordFile(job, metrics.StatusFailed)
	case indexed:
		s.filesIndexed.Add(1)
		metrics.RecordFile(job, metrics.StatusIndexed)
	default:
		s.filesSkipped.Add(1)
		metrics.RecordFile(job, metrics.StatusSkipped)
	}
	return err
}

// IndexFile replaces the facts of path with those of its on-disk content.
// Files open in a buffer are skipped, since the buffer wins. Reports whether
// facts were written.
func (s *Scheduler) IndexFile(path string) (bool, error) {
	if s.buffered(path) {
		return false, nil
	}

	content, err := s.fs.ReadFile(path)
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", path, err)
	}

	facts, err := s.ext.ExtractFacts(path, []byte(content))
	if err != nil {
		return false, err
	}

	applied := false
	s.index.Update(func(tx *index.Tx) {
		// the document may have been opened while we were parsing
		if _, open := tx.Buffer(path); open {
			return
		}
		facts.Apply(tx)
		applied = true
	})
	return applied, nil
}

// RemoveFile retracts the facts of a file that disappeared from disk,
// unless it is open in a buffer.
func (s *Scheduler) RemoveFile(path string) {
	s.index.Update(func(tx *index.Tx) {
		if _, open := tx.Buffer(path); open {
			return
		}
		tx.Retract(path)
	})
}

func (s *Scheduler) buffered(path string) bool {
	var open bool
	s.index.View(func(r *index.Reader) {
		_, open = r.Buffer(path)
	})
	return open
}

// Wait blocks until every started job has finished.
func (s *Scheduler) Wait() error {
	return s.group.Wait()
}

// Close stops the watcher and waits for running jobs.
func (s *Scheduler) Close() error {
	err := s.Wait()
	if s.watcher != nil {
		if werr := s.watcher.Stop(); werr != nil && err == nil {
			err = werr
		}
	}
	return err
}

// Stats returns scheduler counters.
func (s *Scheduler) Stats() Stats {
	stats := Stats{
		JobsStarted:  s.jobsStarted.Load(),
		JobsFinished: s.jobsFinished.Load(),
		FilesIndexed: s.filesIndexed.Load(),
		FilesSkipped: s.filesSkipped.Load(),
		FilesFailed:  s.filesFailed.Load(),
	}
	if s.watcher != nil {
		stats.WatchedDirs = s.watcher.GetStats().WatchedDirs
	}
	return stats
}

// Stats holds scheduler counters.
type Stats struct {
	JobsStarted  int64 `json:"jobs_started"`
	JobsFinished int64 `json:"jobs_finished"`
	FilesIndexed int64 `json:"files_indexed"`
	FilesSkipped int64 `json:"files_skipped"`
	FilesFailed  int64 `json:"files_failed"`
	WatchedDirs  int   `json:"watched_dirs"`
}
