package resolver

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/gnana997/m2ls/pkg/extractor"
	"github.com/gnana997/m2ls/pkg/index"
	"github.com/gnana997/m2ls/pkg/m2"
)

// cachedClass is a parsed class and the file version it was parsed from.
type cachedClass struct {
	modTime time.Time
	size    int64
	class   *extractor.PHPClass
}

// ResolveClass maps a namespaced class name to its file.
//
// The longest namespace prefix registered as a module wins: with Acme\Base and
// Acme\Base\Sub both registered, Acme\Base\Sub\Model\Foo resolves under
// Acme\Base\Sub. The file must exist.
func (r *Resolver) ResolveClass(class string) (string, bool) {
	parts := strings.Split(strings.TrimPrefix(class, `\`), `\`)
	if len(parts) < 2 {
		return "", false
	}

	var path string
	r.index.View(func(rd *index.Reader) {
		for i := len(parts) - 1; i > 0; i-- {
			root, ok := rd.ModulePath(strings.Join(parts[:i], `\`))
			if !ok {
				continue
			}
			path = filepath.Join(append([]string{root}, parts[i:]...)...) + ".php"
			return
		}
	})

	if path == "" || !r.fs.Exists(path) {
		return "", false
	}
	return path, true
}

// ClassLocation returns the declaration of class.
func (r *Resolver) ClassLocation(class string) (m2.Location, bool) {
	cls, ok := r.phpClass(class)
	if !ok {
		return m2.Location{}, false
	}
	return m2.Location{Path: cls.Path, Range: cls.Range}, true
}

// MethodLocation returns the declaration of a public method, or the class when the method is unknown.
func (r *Resolver) MethodLocation(class, method string) (m2.Location, bool) {
	cls, ok := r.phpClass(class)
	if !ok {
		return m2.Location{}, false
	}
	rng, found := cls.Methods[method]
	if !found {
		rng = cls.Range
	}
	return m2.Location{Path: cls.Path, Range: rng}, true
}

// ConstLocation returns the declaration of a constant, or the class when the constant is unknown.
func (r *Resolver) ConstLocation(class, constant string) (m2.Location, bool) {
	cls, ok := r.phpClass(class)
	if !ok {
		return m2.Location{}, false
	}
	rng, found := cls.Constants[constant]
	if !found {
		rng = cls.Range
	}
	return m2.Location{Path: cls.Path, Range: rng}, true
}

func (r *Resolver) phpClass(class string) (*extractor.PHPClass, bool) {
	path, ok := r.ResolveClass(class)
	if !ok {
		return nil, false
	}
	cls, err := r.loadClass(path)
	if err != nil {
		r.logger.Debug("failed to parse class", "class", class, "path", path, "error", err)
		return nil, false
	}
	return cls, true
}

// loadClass parses path, reusing the cached outline while the file's size and
// modification time are unchanged. Open buffers are parsed directly.
func (r *Resolver) loadClass(path string) (*extractor.PHPClass, error) {
	var (
		buf      index.Buffer
		buffered bool
	)
	r.index.View(func(rd *index.Reader) {
		buf, buffered = rd.Buffer(path)
	})
	if buffered {
		return r.ext.ParseClass(path, []byte(buf.Text))
	}

	info, err := r.fs.Stat(path)
	if err != nil {
		return nil, err
	}

	if c, ok := r.classes.Get(path); ok && c.size == info.Size() && c.modTime.Equal(info.ModTime()) {
		r.cacheHits.Add(1)
		return c.class, nil
	}
	r.cacheMisses.Add(1)

	content, err := r.fs.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cls, err := r.ext.ParseClass(path, []byte(content))
	if err != nil {
		return nil, err
	}

	r.classes.Add(path, cachedClass{modTime: info.ModTime(), size: info.Size(), class: cls})
	return cls, nil
}

// InvalidateClass drops the cached outline of path.
func (r *Resolver) InvalidateClass(path string) {
	r.classes.Remove(path)
}
