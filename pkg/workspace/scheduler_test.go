package workspace

import (
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/gnana997/m2ls/pkg/extractor"
	"github.com/gnana997/m2ls/pkg/index"
	"github.com/gnana997/m2ls/pkg/m2"
	"github.com/gnana997/m2ls/pkg/parser"
	"github.com/gnana997/m2ls/pkg/parser/queries"
	"github.com/gnana997/m2ls/pkg/util"
)

func newExtractor(t *testing.T) *extractor.Extractor {
	t.Helper()
	pm := parser.NewParserManager(util.NopLogger())
	qm := queries.NewQueryManager(pm, util.NopLogger())
	t.Cleanup(func() {
		qm.Close()
		pm.Close()
	})
	return extractor.NewExtractor(pm, qm, util.NopLogger())
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func registration(kind, name string) string {
	return "<?php\nuse Magento\\Framework\\Component\\ComponentRegistrar;\n\nComponentRegistrar::register(ComponentRegistrar::" +
		kind + ", '" + name + "', __DIR__);\n"
}

// newWorkspace lays out a small installation and returns its root.
func newWorkspace(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	files := map[string]string{
		"app/code/Acme/Module/registration.php":                  registration("MODULE", "Acme_Module"),
		"app/code/Acme/Module/view/frontend/requirejs-config.js": `var config = { map: { '*': { menu: 'Acme_Module/js/menu' } } };`,
		"app/code/Acme/Module/etc/registration.php":              registration("MODULE", "Not_Discovered"),
		"app/design/frontend/Acme/luma/registration.php":         registration("THEME", "frontend/Acme/luma"),
		"app/design/frontend/Acme/luma/Acme_Module/requirejs-config.js": `var config = {
    config: { mixins: { 'Acme_Module/js/menu': { 'Acme_Module/js/menu-mixin': true } } }
};`,
		"vendor/acme/module-sales/registration.php": registration("MODULE", "Acme_Sales"),
		"vendor/acme/some-lib/src/registration.php": registration("LIBRARY", "acme/some-lib"),
		"lib/internal/Acme/Tool/registration.php":   registration("LIBRARY", "acme/tool"),
		"lib/web/requirejs-config.js":               `var config = { paths: { jquery: 'jquery/jquery' } };`,
	}
	for rel, content := range files {
		writeFile(t, filepath.Join(root, filepath.FromSlash(rel)), content)
	}
	return root
}

func TestIndexWorkspace(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	root := newWorkspace(t)
	idx := index.New(util.NopLogger())
	sched := New(idx, util.OSFS{}, newExtractor(t), DefaultOptions(), util.NopLogger())
	defer sched.Close()

	require.True(t, sched.IndexWorkspace(root))
	require.NoError(t, sched.Wait())

	idx.View(func(r *index.Reader) {
		assert.Equal(t, []string{"Acme_Module", "Acme_Sales"}, r.Modules())

		path, ok := r.ModulePath(`Acme\Sales`)
		require.True(t, ok)
		assert.Equal(t, filepath.Join(root, "vendor", "acme", "module-sales"), path)

		path, ok = r.ModulePath(`Acme\Some\Lib`)
		require.True(t, ok)
		assert.Equal(t, filepath.Join(root, "vendor", "acme", "some-lib", "src"), path)

		_, ok = r.ModulePath(`Acme\Tool`)
		assert.True(t, ok)

		assert.Equal(t, []string{filepath.Join(root, "app", "design", "frontend", "Acme", "luma")}, r.ThemePaths(m2.AreaFrontend))

		alias, ok := r.JsAlias(m2.AreaFrontend, "menu")
		require.True(t, ok)
		assert.Equal(t, "Acme_Module/js/menu", alias)

		assert.Equal(t, []string{"Acme_Module/js/menu-mixin"}, r.JsMixins(m2.AreaFrontend, "Acme_Module/js/menu"))
		assert.Equal(t, []string{root}, r.Workspaces())
	})

	stats := sched.Stats()
	assert.Equal(t, int64(2), stats.JobsStarted)
	assert.Equal(t, int64(2), stats.JobsFinished)
	assert.Equal(t, int64(8), stats.FilesIndexed)
	assert.Zero(t, stats.FilesFailed)
}

func TestIndexWorkspace_Idempotent(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	root := newWorkspace(t)
	idx := index.New(util.NopLogger())
	sched := New(idx, util.OSFS{}, newExtractor(t), DefaultOptions(), util.NopLogger())
	defer sched.Close()

	assert.True(t, sched.IndexWorkspace(root))
	assert.False(t, sched.IndexWorkspace(root))
	assert.False(t, sched.IndexWorkspace(root+string(filepath.Separator)), "roots are cleaned")
	require.NoError(t, sched.Wait())

	assert.Equal(t, int64(2), sched.Stats().JobsStarted)
	assert.Equal(t, int64(8), sched.Stats().FilesIndexed)
}

// failingFS fails reads of one path.
type failingFS struct {
	util.OSFS
	fail  string
	reads atomic.Int64
}

func (f *failingFS) ReadFile(path string) (string, error) {
	f.reads.Add(1)
	if path == f.fail {
		return "", errors.New("permission denied")
	}
	return f.OSFS.ReadFile(path)
}

func TestIndexWorkspace_ReadFailureIsContained(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	root := newWorkspace(t)
	fsys := &failingFS{fail: filepath.Join(root, "app", "code", "Acme", "Module", "registration.php")}
	idx := index.New(util.NopLogger())
	sched := New(idx, fsys, newExtractor(t), DefaultOptions(), util.NopLogger())
	defer sched.Close()

	sched.IndexWorkspace(root)
	require.NoError(t, sched.Wait())

	stats := sched.Stats()
	assert.Equal(t, int64(1), stats.FilesFailed)
	assert.Equal(t, int64(7), stats.FilesIndexed)

	idx.View(func(r *index.Reader) {
		assert.Equal(t, []string{"Acme_Sales"}, r.Modules())
	})
}

func TestIndexWorkspace_SkipsBufferedFiles(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	root := newWorkspace(t)
	cfg := filepath.Join(root, "app", "code", "Acme", "Module", "view", "frontend", "requirejs-config.js")

	idx := index.New(util.NopLogger())
	idx.Update(func(tx *index.Tx) {
		tx.SetBuffer(cfg, index.Buffer{Text: "var config = {};", State: index.DocOpen})
	})

	sched := New(idx, util.OSFS{}, newExtractor(t), DefaultOptions(), util.NopLogger())
	defer sched.Close()

	sched.IndexWorkspace(root)
	require.NoError(t, sched.Wait())

	assert.Equal(t, int64(1), sched.Stats().FilesSkipped)
	idx.View(func(r *index.Reader) {
		_, ok := r.JsAlias(m2.AreaFrontend, "menu")
		assert.False(t, ok, "buffer wins over disk")
	})
}

func TestIndexFile_ReplacesFacts(t *testing.T) {
	root := newWorkspace(t)
	cfg := filepath.Join(root, "lib", "web", "requirejs-config.js")

	idx := index.New(util.NopLogger())
	sched := New(idx, util.OSFS{}, newExtractor(t), DefaultOptions(), util.NopLogger())

	indexed, err := sched.IndexFile(cfg)
	require.NoError(t, err)
	assert.True(t, indexed)

	writeFile(t, cfg, `var config = { paths: { underscore: 'underscore/underscore' } };`)
	_, err = sched.IndexFile(cfg)
	require.NoError(t, err)

	idx.View(func(r *index.Reader) {
		assert.Equal(t, map[string]string{"underscore": "underscore/underscore"}, r.Snapshot().JsPaths[m2.AreaBase])
	})

	sched.RemoveFile(cfg)
	idx.View(func(r *index.Reader) {
		assert.Empty(t, r.Snapshot().JsPaths[m2.AreaBase])
	})

	_, err = sched.IndexFile(filepath.Join(root, "missing", "registration.php"))
	assert.Error(t, err)
}

func TestWatcher_ReindexesChangedFiles(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	root := newWorkspace(t)
	cfg := filepath.Join(root, "app", "code", "Acme", "Module", "view", "frontend", "requirejs-config.js")

	idx := index.New(util.NopLogger())
	opts := DefaultOptions()
	opts.Watch = true
	opts.DebounceMs = 20
	sched := New(idx, util.OSFS{}, newExtractor(t), opts, util.NopLogger())
	defer sched.Close()

	sched.IndexWorkspace(root)
	require.NoError(t, sched.Wait())
	assert.Positive(t, sched.Stats().WatchedDirs)

	writeFile(t, cfg, `var config = { map: { '*': { menu: 'Acme_Module/js/new-menu' } } };`)

	assert.Eventually(t, func() bool {
		var alias string
		idx.View(func(r *index.Reader) {
			alias, _ = r.JsAlias(m2.AreaFrontend, "menu")
		})
		return alias == "Acme_Module/js/new-menu"
	}, 5*time.Second, 20*time.Millisecond)

	require.NoError(t, os.Remove(cfg))

	assert.Eventually(t, func() bool {
		var ok bool
		idx.View(func(r *index.Reader) {
			_, ok = r.JsAlias(m2.AreaFrontend, "menu")
		})
		return !ok
	}, 5*time.Second, 20*time.Millisecond)
}

func TestWorkerPool(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	var seen atomic.Int64
	pool := NewWorkerPool(4, func(job FileJob) error {
		seen.Add(1)
		if job.JobID%10 == 0 {
			return errors.New("boom")
		}
		return nil
	}, util.NopLogger())
	pool.Start()

	for i := 0; i < 100; i++ {
		require.NoError(t, pool.Submit(FileJob{Path: "f", JobID: i}))
	}
	pool.FinishSubmitting()
	pool.FinishSubmitting()
	pool.Wait()

	stats := pool.GetStats()
	assert.Equal(t, int64(100), seen.Load())
	assert.Equal(t, int64(100), stats.JobsSubmitted)
	assert.Equal(t, int64(90), stats.JobsProcessed)
	assert.Equal(t, int64(10), stats.JobsFailed)
	assert.Error(t, pool.Submit(FileJob{Path: "late"}))
}
