package m2

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasComponents(t *testing.T) {
	path := "app/code/Magento/Checkout/Block/Cart.php"

	assert.True(t, HasComponents(path, "Magento", "Checkout"), "middle")
	assert.True(t, HasComponents(path, "app", "code"), "start")
	assert.True(t, HasComponents(path, "Block", "Cart.php"), "end")
	assert.False(t, HasComponents(path, "Checkout", "Cart.php"), "not contiguous")
}

func TestAreaOf(t *testing.T) {
	tests := []struct {
		path string
		want Area
	}{
		{"/w/app/code/Acme/Mod/view/frontend/requirejs-config.js", AreaFrontend},
		{"/w/app/code/Acme/Mod/view/adminhtml/layout/default.xml", AreaAdminhtml},
		{"/w/app/code/Acme/Mod/view/base/requirejs-config.js", AreaBase},
		{"/w/app/design/frontend/Acme/theme/requirejs-config.js", AreaFrontend},
		{"/w/app/design/adminhtml/Acme/theme/requirejs-config.js", AreaAdminhtml},
		{"/w/app/code/Acme/Mod/etc/di.xml", AreaBase},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, AreaOf(tt.path), tt.path)
	}
}

func TestArea_Fallback(t *testing.T) {
	fb, ok := AreaFrontend.Fallback()
	assert.True(t, ok)
	assert.Equal(t, AreaBase, fb)

	fb, ok = AreaAdminhtml.Fallback()
	assert.True(t, ok)
	assert.Equal(t, AreaBase, fb)

	_, ok = AreaBase.Fallback()
	assert.False(t, ok)

	assert.Equal(t, []Area{AreaAdminhtml, AreaBase}, AreaAdminhtml.Chain())
	assert.Equal(t, []Area{AreaBase}, AreaBase.Chain())
}

func TestArea_PathCandidates(t *testing.T) {
	assert.Equal(t, []string{"frontend", "base"}, AreaFrontend.PathCandidates())
	assert.Equal(t, []string{"adminhtml", "base"}, AreaAdminhtml.PathCandidates())
	assert.Equal(t, []string{"frontend", "adminhtml", "base"}, AreaBase.PathCandidates())
}

func TestIsPartOfClassName(t *testing.T) {
	assert.False(t, IsPartOfClassName("Some_Module"))
	assert.True(t, IsPartOfClassName(`Some\Module`))
	assert.True(t, IsPartOfClassName("N"))
}

func TestIsPartOfModuleName(t *testing.T) {
	assert.True(t, IsPartOfModuleName("Some_Module"))
	assert.False(t, IsPartOfModuleName(`Some\Module`))
	assert.True(t, IsPartOfModuleName("N"))
}

func TestIsModuleSegment(t *testing.T) {
	assert.True(t, IsModuleSegment("Acme_Module"))
	assert.False(t, IsModuleSegment("acme_module"))
	assert.False(t, IsModuleSegment("Acme_Base_Sub"))
	assert.False(t, IsModuleSegment("jquery"))
}

func TestParseRegistration(t *testing.T) {
	tests := []struct {
		param string
		want  Registration
	}{
		{"Magento_Catalog", Registration{Kind: RegistrationModule, Name: "Magento_Catalog", Namespace: `Magento\Catalog`}},
		{"Acme_Base_Sub", Registration{Kind: RegistrationModule, Name: "Acme_Base_Sub", Namespace: `Acme\Base\Sub`}},
		{"magento/framework", Registration{Kind: RegistrationLibrary, Name: `Magento\Framework`, Namespace: `Magento\Framework`}},
		{"magento/framework-bulk", Registration{Kind: RegistrationLibrary, Name: `Magento\Framework\Bulk`, Namespace: `Magento\Framework\Bulk`}},
		{"frontend/Magento/luma", Registration{Kind: RegistrationTheme, Name: "frontend/Magento/luma"}},
		{"nothing", Registration{Kind: RegistrationUnknown, Name: "nothing"}},
	}

	for _, tt := range tests {
		t.Run(tt.param, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseRegistration(tt.param))
		})
	}
}

func TestThemeArea(t *testing.T) {
	area, rest, ok := ThemeArea("adminhtml/Magento/backend")
	assert.True(t, ok)
	assert.Equal(t, AreaAdminhtml, area)
	assert.Equal(t, "Magento/backend", rest)

	_, _, ok = ThemeArea("base/Magento/x")
	assert.False(t, ok)
}

func TestSplitTemplateID(t *testing.T) {
	mod, path, ok := SplitTemplateID("Acme_Module::page/view.phtml")
	assert.True(t, ok)
	assert.Equal(t, "Acme_Module", mod)
	assert.Equal(t, "page/view.phtml", path)

	_, _, ok = SplitTemplateID("Acme_Module::")
	assert.False(t, ok)
}

func TestRange_Contains(t *testing.T) {
	r := Range{Start: Position{Line: 1, Character: 4}, End: Position{Line: 1, Character: 10}}

	assert.True(t, r.Contains(Position{Line: 1, Character: 4}))
	assert.True(t, r.Contains(Position{Line: 1, Character: 10}))
	assert.False(t, r.Contains(Position{Line: 1, Character: 11}))
	assert.False(t, r.Contains(Position{Line: 0, Character: 5}))
}
