package extractor

import (
	"github.com/gnana997/m2ls/pkg/index"
	"github.com/gnana997/m2ls/pkg/m2"
)

// Apply replaces everything previously attributed to f.Path with f.
// Must be called inside Index.Update.
func (f *Facts) Apply(tx *index.Tx) {
	tx.Retract(f.Path)
	tx.BeginSource(f.Path)

	for _, reg := range f.Registrations {
		switch reg.Kind {
		case m2.RegistrationModule:
			tx.AddModule(reg.Name)
			tx.AddModulePath(reg.Name, reg.Dir)
			tx.AddModulePath(reg.Namespace, reg.Dir)
		case m2.RegistrationLibrary:
			tx.AddModulePath(reg.Namespace, reg.Dir)
		case m2.RegistrationTheme:
			if area, _, ok := m2.ThemeArea(reg.Name); ok {
				tx.AddThemePath(area, reg.Name, reg.Dir)
			}
		}
	}

	for _, entry := range f.Config {
		switch entry.Kind {
		case ConfigMap:
			tx.AddJsAlias(entry.Area, entry.Key, entry.Value)
		case ConfigPath:
			tx.AddJsPath(entry.Area, entry.Key, entry.Value)
		case ConfigMixin:
			tx.AddJsMixin(entry.Area, entry.Key, entry.Value)
		}
	}
}
