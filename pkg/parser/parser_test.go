package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnana997/m2ls/pkg/util"
)

func TestParsePHP(t *testing.T) {
	manager := NewParserManager(util.NopLogger())
	defer manager.Close()

	source := []byte(`<?php
use Magento\Framework\Component\ComponentRegistrar;
ComponentRegistrar::register(ComponentRegistrar::MODULE, 'Acme_Module', __DIR__);
`)
	tree, err := manager.Parse(source, LanguagePHP)
	require.NoError(t, err)
	defer tree.Close()

	root := tree.RootNode()
	assert.Equal(t, "program", root.Kind())
	assert.Contains(t, root.ToSexp(), "scoped_call_expression")
}

func TestParseJavaScript(t *testing.T) {
	manager := NewParserManager(util.NopLogger())
	defer manager.Close()

	tree, err := manager.Parse([]byte(`var config = { map: { '*': { a: 'B_C/js/d' } } };`), LanguageJavaScript)
	require.NoError(t, err)
	defer tree.Close()

	root := tree.RootNode()
	assert.Equal(t, "program", root.Kind())
	assert.Contains(t, root.ToSexp(), "pair")
}

func TestParseXML(t *testing.T) {
	manager := NewParserManager(util.NopLogger())
	defer manager.Close()

	tree, err := manager.Parse([]byte(`<config><preference for="A\B" type="C\D"/></config>`), LanguageXML)
	require.NoError(t, err)
	defer tree.Close()

	sexp := tree.RootNode().ToSexp()
	assert.Contains(t, sexp, "element")
	assert.Contains(t, sexp, "attribute_value")
}

func TestParseUnknownLanguage(t *testing.T) {
	manager := NewParserManager(util.NopLogger())
	defer manager.Close()

	_, err := manager.Parse([]byte("x"), LanguageUnknown)
	assert.Error(t, err)

	_, err = manager.ParseFile([]byte("x"), "notes.md")
	assert.Error(t, err)
}

func TestParseFile_DetectsLanguage(t *testing.T) {
	manager := NewParserManager(util.NopLogger())
	defer manager.Close()

	tree, err := manager.ParseFile([]byte("<?php class A {}"), "app/code/Acme/Mod/Model/A.php")
	require.NoError(t, err)
	defer tree.Close()

	assert.Contains(t, tree.RootNode().ToSexp(), "class_declaration")
}

func TestParseWithSyntaxErrors(t *testing.T) {
	manager := NewParserManager(util.NopLogger())
	defer manager.Close()

	tree, err := manager.Parse([]byte("define(['a', "), LanguageJavaScript)
	require.NoError(t, err, "partial trees are still returned")
	defer tree.Close()

	assert.True(t, tree.RootNode().HasError())
}

func TestDetectLanguage(t *testing.T) {
	tests := []struct {
		path string
		want Language
	}{
		{"registration.php", LanguagePHP},
		{"view/frontend/templates/a.phtml", LanguagePHP},
		{"view/frontend/requirejs-config.js", LanguageJavaScript},
		{"etc/di.xml", LanguageXML},
		{"README.md", LanguageUnknown},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, DetectLanguage(tt.path), tt.path)
	}
}

func TestParseLanguageString(t *testing.T) {
	assert.Equal(t, LanguagePHP, ParseLanguageString("PHP"))
	assert.Equal(t, LanguageJavaScript, ParseLanguageString("js"))
	assert.Equal(t, LanguageXML, ParseLanguageString("xml"))
	assert.Equal(t, LanguageUnknown, ParseLanguageString("ts"))
	assert.Len(t, SupportedLanguages(), 3)
}

func TestGetStats(t *testing.T) {
	manager := NewParserManager(util.NopLogger())
	defer manager.Close()

	for i := 0; i < 3; i++ {
		tree, err := manager.Parse([]byte("var a = 1;"), LanguageJavaScript)
		require.NoError(t, err)
		tree.Close()
	}

	stats := manager.GetStats()
	assert.Equal(t, 3, stats.ParsesCalled)
	assert.GreaterOrEqual(t, stats.ParsersCreated, 1)
}
