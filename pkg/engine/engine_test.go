package engine

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnana997/m2ls/pkg/index"
	"github.com/gnana997/m2ls/pkg/m2"
	"github.com/gnana997/m2ls/pkg/util"
)

func newEngine(t *testing.T) *Engine {
	t.Helper()
	eng, err := New(DefaultConfig(), util.NopLogger())
	require.NoError(t, err)
	t.Cleanup(func() { eng.Shutdown() })
	return eng
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// cursor strips the first '|' from src and returns its position.
func cursor(t *testing.T, src string) (string, m2.Position) {
	t.Helper()
	for line, text := range strings.Split(src, "\n") {
		if col := strings.Index(text, "|"); col >= 0 {
			return strings.Replace(src, "|", "", 1), m2.Position{Line: line, Character: col}
		}
	}
	t.Fatalf("no cursor in %q", src)
	return "", m2.Position{}
}

func snapshot(eng *Engine) index.Snapshot {
	var snap index.Snapshot
	eng.Index().View(func(r *index.Reader) {
		snap = r.Snapshot()
	})
	return snap
}

const registrationPHP = `<?php
use Magento\Framework\Component\ComponentRegistrar;

ComponentRegistrar::register(ComponentRegistrar::MODULE, 'Acme_Module', __DIR__);
`

// newMagento lays out one module with a JS component, a template and an interface.
func newMagento(t *testing.T) (string, string) {
	t.Helper()
	root := t.TempDir()
	module := filepath.Join(root, "app", "code", "Acme", "Module")

	writeFile(t, filepath.Join(module, "registration.php"), registrationPHP)
	writeFile(t, filepath.Join(module, "view", "frontend", "requirejs-config.js"),
		`var config = { map: { '*': { menu: 'Acme_Module/js/menu' } } };`)
	writeFile(t, filepath.Join(module, "view", "frontend", "web", "js", "menu.js"), `define([], function () {});`)
	writeFile(t, filepath.Join(module, "view", "frontend", "templates", "html", "menu.phtml"), `<nav></nav>`)
	writeFile(t, filepath.Join(module, "Api", "MenuInterface.php"), `<?php
namespace Acme\Module\Api;

interface MenuInterface
{
    public function render();
}
`)
	return root, module
}

func TestDocumentStateMachine(t *testing.T) {
	eng := newEngine(t)
	path := "/w/app/code/Acme/Module/view/frontend/web/js/app.js"

	assert.Equal(t, index.DocNotOpen, eng.DocumentState(path))

	eng.Open(path, "define([], function () {});")
	assert.Equal(t, index.DocOpen, eng.DocumentState(path))

	eng.Change(path, "define(['jquery'], function ($) {});")
	assert.Equal(t, index.DocModified, eng.DocumentState(path))

	eng.Close(path)
	assert.Equal(t, index.DocClosed, eng.DocumentState(path))

	eng.Change(path, "define([], function () {});")
	assert.Equal(t, index.DocOpen, eng.DocumentState(path), "change on a closed document opens it")
}

func TestChange_NotOpenBehavesLikeOpen(t *testing.T) {
	eng := newEngine(t)
	path := "/w/app/code/Acme/Module/registration.php"

	eng.Change(path, registrationPHP)
	assert.Equal(t, index.DocOpen, eng.DocumentState(path))
	assert.Equal(t, []string{"Acme_Module"}, snapshot(eng).Modules)
}

func TestChange_RetractsPreviousFacts(t *testing.T) {
	path := "/w/app/code/Acme/Module/view/frontend/requirejs-config.js"
	c1 := `var config = {
    map: { '*': { menu: 'Acme_Module/js/menu', grid: 'Acme_Module/js/grid' } },
    paths: { slick: 'Acme_Module/js/slick' },
    config: { mixins: { 'Magento_Ui/js/grid': { 'Acme_Module/js/grid-mixin': true } } }
};`
	c2 := `var config = { map: { '*': { menu: 'Acme_Module/js/new-menu' } } };`

	edited := newEngine(t)
	edited.Open(path, c1)
	edited.Change(path, c2)

	fresh := newEngine(t)
	fresh.Open(path, c2)

	assert.Equal(t, snapshot(fresh), snapshot(edited))
	assert.Equal(t, map[string]string{"menu": "Acme_Module/js/new-menu"}, snapshot(edited).JsAliases[m2.AreaFrontend])
}

func TestChange_RenamedModule(t *testing.T) {
	eng := newEngine(t)
	path := "/w/app/code/Acme/Module/registration.php"

	eng.Open(path, registrationPHP)
	eng.Change(path, strings.Replace(registrationPHP, "Acme_Module", "Acme_Renamed", 1))

	eng.Index().View(func(r *index.Reader) {
		assert.Equal(t, []string{"Acme_Renamed"}, r.Modules())
		_, ok := r.ModulePath(`Acme\Module`)
		assert.False(t, ok)
		path, ok := r.ModulePath(`Acme\Renamed`)
		require.True(t, ok)
		assert.Equal(t, "/w/app/code/Acme/Module", path)
	})
}

func TestOpen_SameContentKeepsFacts(t *testing.T) {
	eng := newEngine(t)
	path := "/w/app/code/Acme/Module/registration.php"

	eng.Open(path, registrationPHP)
	before := snapshot(eng)
	eng.Change(path, registrationPHP)

	assert.Equal(t, before, snapshot(eng))
	assert.Equal(t, index.DocModified, eng.DocumentState(path))
}

func TestClose_KeepsFacts(t *testing.T) {
	eng := newEngine(t)
	path := "/w/app/code/Acme/Module/registration.php"

	eng.Open(path, registrationPHP)
	eng.Close(path)

	assert.Equal(t, []string{"Acme_Module"}, snapshot(eng).Modules)
	assert.Zero(t, eng.Stats().Index.Buffers)
}

func TestOpen_OtherFilesContributeNoFacts(t *testing.T) {
	eng := newEngine(t)

	eng.Open("/w/app/code/Acme/Module/etc/di.xml", "<config/>")
	eng.Open("/w/app/code/Acme/Module/Model/Menu.php", "<?php\nclass Menu {}\n")

	stats := eng.Stats().Index
	assert.Zero(t, stats.Sources)
	assert.Equal(t, 2, stats.Buffers)
}

func TestIndexWorkspace_Idempotent(t *testing.T) {
	root, _ := newMagento(t)
	eng := newEngine(t)

	assert.True(t, eng.IndexWorkspace(root))
	assert.False(t, eng.IndexWorkspace(root))
	require.NoError(t, eng.Wait())

	stats := eng.Stats()
	assert.Equal(t, int64(2), stats.Scheduler.JobsStarted)
	assert.Equal(t, 1, stats.Index.Modules)
	assert.Equal(t, 1, stats.Index.Workspaces)
}

func TestDefinition_JSComponent(t *testing.T) {
	root, module := newMagento(t)
	eng := newEngine(t)
	eng.IndexWorkspace(root)
	require.NoError(t, eng.Wait())

	path := filepath.Join(module, "view", "frontend", "web", "js", "app.js")
	text, pos := cursor(t, "define(['me|nu'], function (menu) {});")
	eng.Open(path, text)

	item, ok := eng.GetReference(path, pos)
	require.True(t, ok)
	assert.Equal(t, m2.ItemModComponent, item.Kind)
	assert.Equal(t, "Acme_Module", item.Module)

	locations := eng.Definition(path, pos)
	require.Len(t, locations, 1)
	assert.Equal(t, filepath.Join(module, "view", "frontend", "web", "js", "menu.js"), locations[0].Path)
}

func TestFindDefinition_RecordsOneRequest(t *testing.T) {
	root, module := newMagento(t)
	eng := newEngine(t)
	eng.IndexWorkspace(root)
	require.NoError(t, eng.Wait())

	path := filepath.Join(module, "view", "frontend", "web", "js", "app.js")
	text, pos := cursor(t, "define(['me|nu'], function (menu) {});")
	eng.Open(path, text)

	definitions := requestCount(t, queryDefinition)
	references := requestCount(t, queryReference)

	item, locations, ok := eng.FindDefinition(path, pos)
	require.True(t, ok)
	assert.Equal(t, m2.ItemModComponent, item.Kind)
	require.Len(t, locations, 1)
	assert.Equal(t, filepath.Join(module, "view", "frontend", "web", "js", "menu.js"), locations[0].Path)

	assert.Equal(t, definitions+1, requestCount(t, queryDefinition))
	assert.Equal(t, references, requestCount(t, queryReference), "no separate reference query")
}

func TestFindDefinition_ReferenceWithoutLocations(t *testing.T) {
	eng := newEngine(t)

	path := "/w/app/code/Acme/Module/view/frontend/layout/default.xml"
	text, pos := cursor(t, `<?xml version="1.0"?>
<page>
    <body>
        <block class="Magento\Framework\View\Element\Template" template="Acme_Module::html/gh|ost.phtml"/>
    </body>
</page>`)
	eng.Open(path, text)

	item, locations, ok := eng.FindDefinition(path, pos)
	require.True(t, ok)
	assert.Equal(t, m2.ItemTemplate, item.Kind)
	assert.Empty(t, locations)
}

func TestShutdown_AfterDocumentClose(t *testing.T) {
	root, _ := newMagento(t)
	eng, err := New(DefaultConfig(), util.NopLogger())
	require.NoError(t, err)

	path := "/w/app/code/Acme/Module/registration.php"
	eng.Open(path, registrationPHP)
	eng.Close(path)
	assert.Equal(t, index.DocClosed, eng.DocumentState(path))

	eng.IndexWorkspace(root)
	require.NoError(t, eng.Wait())
	require.NoError(t, eng.Shutdown())
}

// requestCount sums the engine request counter for method across results.
func requestCount(t *testing.T, method string) float64 {
	t.Helper()
	families, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)

	var total float64
	for _, mf := range families {
		if mf.GetName() != "m2ls_engine_requests_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, l := range m.GetLabel() {
				if l.GetName() == "method" && l.GetValue() == method {
					total += m.GetCounter().GetValue()
				}
			}
		}
	}
	return total
}

func TestDefinition_ReadsDiskWhenNotOpen(t *testing.T) {
	root, module := newMagento(t)
	eng := newEngine(t)
	eng.IndexWorkspace(root)
	require.NoError(t, eng.Wait())

	path := filepath.Join(module, "view", "frontend", "layout", "default.xml")
	text, pos := cursor(t, `<?xml version="1.0"?>
<page>
    <body>
        <block class="Magento\Framework\View\Element\Template" template="Acme_Module::html/me|nu.phtml"/>
    </body>
</page>`)
	writeFile(t, path, text)

	locations := eng.Definition(path, pos)
	require.Len(t, locations, 1)
	assert.Equal(t, filepath.Join(module, "view", "frontend", "templates", "html", "menu.phtml"), locations[0].Path)
}

func TestDefinition_Class(t *testing.T) {
	root, module := newMagento(t)
	eng := newEngine(t)
	eng.IndexWorkspace(root)
	require.NoError(t, eng.Wait())

	path := filepath.Join(module, "etc", "di.xml")
	text, pos := cursor(t, `<config>
    <preference for="Acme\Module\Api\Menu|Interface" type="Acme\Module\Model\Menu"/>
</config>`)
	eng.Open(path, text)

	locations := eng.Definition(path, pos)
	require.Len(t, locations, 1)
	assert.Equal(t, filepath.Join(module, "Api", "MenuInterface.php"), locations[0].Path)
	assert.Equal(t, 3, locations[0].Range.Start.Line)
}

func TestDefinition_Miss(t *testing.T) {
	eng := newEngine(t)

	path := "/w/app/code/Acme/Module/view/frontend/web/js/app.js"
	text, pos := cursor(t, "define(['Unknown_Module/js/gr|id'], function () {});")
	eng.Open(path, text)

	_, ok := eng.GetReference(path, pos)
	assert.False(t, ok)
	assert.Empty(t, eng.Definition(path, pos))

	_, ok = eng.GetReference("/w/app/code/Acme/Module/Model/Menu.php", m2.Position{})
	assert.False(t, ok, "PHP files carry no references")

	_, ok = eng.GetReference("/w/missing.xml", m2.Position{})
	assert.False(t, ok)
}

func TestGetCompletions(t *testing.T) {
	root, module := newMagento(t)
	eng := newEngine(t)
	eng.IndexWorkspace(root)
	require.NoError(t, eng.Wait())

	t.Run("js", func(t *testing.T) {
		path := filepath.Join(module, "view", "frontend", "web", "js", "app.js")
		text, pos := cursor(t, "define(['|'], function () {});")
		eng.Open(path, text)

		candidates, ok := eng.GetCompletions(path, pos)
		require.True(t, ok)

		var labels []string
		for _, c := range candidates {
			labels = append(labels, c.Label)
		}
		assert.Equal(t, []string{"menu", "Acme_Module"}, labels)
		require.NotNil(t, candidates[1].Edit)
		assert.Equal(t, "Acme_Module/", candidates[1].Edit.NewText)
	})

	t.Run("template", func(t *testing.T) {
		path := filepath.Join(module, "view", "frontend", "layout", "default.xml")
		text, pos := cursor(t, `<page><body><block template="Acme_Module::|"/></body></page>`)
		eng.Open(path, text)

		candidates, ok := eng.GetCompletions(path, pos)
		require.True(t, ok)
		require.Len(t, candidates, 1)
		assert.Equal(t, "html/menu.phtml", candidates[0].Label)
		assert.Equal(t, m2.CandidateFile, candidates[0].Kind)
		require.NotNil(t, candidates[0].Edit)
		assert.Equal(t, "Acme_Module::html/menu.phtml", candidates[0].Edit.NewText)
	})

	t.Run("not completable", func(t *testing.T) {
		path := filepath.Join(module, "etc", "module.xml")
		text, pos := cursor(t, `<config><module name="Acme_Mo|dule"/></config>`)
		eng.Open(path, text)

		_, ok := eng.GetCompletions(path, pos)
		assert.False(t, ok)
	})
}
