// Package imagemeta reads capture metadata from image files.
//
// A Registry knows which file extensions can carry metadata and how to find
// the TIFF/Exif block inside each container. Open reads and decodes that
// block and releases the file before returning, so no handle outlives the
// call.
package imagemeta

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/rwcarlsen/goexif/exif"
)

//go:embed formats.toml
var defaultFormats []byte

// ErrUnsupported is returned by Open for extensions the registry does not know.
var ErrUnsupported = errors.New("unsupported image format")

// Format is one container entry of the format table.
type Format struct {
	Name       string
	Locator    string
	Extensions []string
}

type formatTable struct {
	Format []Format
}

// Registry maps lower-case extensions to their container format. It is
// built once and never modified.
type Registry struct {
	byExt map[string]Format
}

// DefaultRegistry returns the registry for the embedded format table.
func DefaultRegistry() (*Registry, error) {
	return LoadRegistry(defaultFormats)
}

// LoadRegistry decodes a TOML format table.
func LoadRegistry(data []byte) (*Registry, error) {
	var table formatTable
	if err := toml.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("failed to parse format table: %w", err)
	}
	if len(table.Format) == 0 {
		return nil, errors.New("format table has no formats")
	}

	r := &Registry{byExt: make(map[string]Format)}
	for _, f := range table.Format {
		if _, ok := locators[f.Locator]; !ok {
			return nil, fmt.Errorf("format %q: unknown locator %q", f.Name, f.Locator)
		}
		for _, ext := range f.Extensions {
			ext = strings.ToLower(ext)
			if !strings.HasPrefix(ext, ".") {
				ext = "." + ext
			}
			if prev, dup := r.byExt[ext]; dup {
				return nil, fmt.Errorf("extension %s listed by both %q and %q", ext, prev.Name, f.Name)
			}
			r.byExt[ext] = f
		}
	}
	return r, nil
}

// Supports reports whether ext (with leading dot, any case) is a known
// image extension.
func (r *Registry) Supports(ext string) bool {
	_, ok := r.byExt[strings.ToLower(ext)]
	return ok
}

// Extensions returns every supported extension, sorted.
func (r *Registry) Extensions() []string {
	exts := make([]string, 0, len(r.byExt))
	for ext := range r.byExt {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// Open reads the metadata of the image at path. The file is closed before
// Open returns, whatever the outcome.
func (r *Registry) Open(path string) (*Metadata, error) {
	ext := strings.ToLower(filepath.Ext(path))
	f, ok := r.byExt[ext]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, ext)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	src, err := locators[f.Locator](file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", f.Name, err)
	}
	x, err := exif.Decode(src)
	if err != nil && (x == nil || exif.IsCriticalError(err)) {
		return nil, fmt.Errorf("%s: decoding exif: %w", f.Name, err)
	}
	return &Metadata{x: x}, nil
}
