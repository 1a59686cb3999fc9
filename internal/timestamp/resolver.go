// Package timestamp resolves the time label used to prefix an image file.
//
// Metadata sources are tried in a fixed order and the first one holding a
// parseable date wins:
//
//  1. DateTimeOriginal through the structured accessor
//  2. DateTimeDigitized, then DateTime
//  3. DateTimeOriginal from the legacy name-keyed dictionary
//  4. filesystem creation time, when enabled
//
// Missing or malformed metadata never produces an error; the resolver only
// reports that no label is available.
package timestamp

import (
	"fmt"
	"strings"
	"time"

	"github.com/djherbis/times"
	"github.com/lestrrat-go/strftime"
	"github.com/rwcarlsen/goexif/exif"

	"photo-renamer/internal/imagemeta"
)

// ExifLayout is the fixed layout of Exif date/time values.
const ExifLayout = "2006:01:02 15:04:05"

// Source identifies where a label came from.
type Source string

const (
	SourceOriginal     Source = "DateTimeOriginal"
	SourceDigitized    Source = "DateTimeDigitized"
	SourceDateTime     Source = "DateTime"
	SourceLegacy       Source = "legacy DateTimeOriginal"
	SourceCreationTime Source = "creation time"
)

// Label is a resolved, formatted timestamp.
type Label struct {
	Text   string
	Time   time.Time
	Source Source
}

// extractor returns a raw Exif date string, or false when its source has
// nothing usable.
type extractor struct {
	source Source
	fn     func(m *imagemeta.Metadata) (string, bool)
}

var extractors = []extractor{
	{SourceOriginal, structured(exif.DateTimeOriginal)},
	{SourceDigitized, structured(exif.DateTimeDigitized)},
	{SourceDateTime, structured(exif.DateTime)},
	{SourceLegacy, legacyOriginal},
}

func structured(name exif.FieldName) func(m *imagemeta.Metadata) (string, bool) {
	return func(m *imagemeta.Metadata) (string, bool) {
		s, err := m.String(name)
		return s, err == nil
	}
}

func legacyOriginal(m *imagemeta.Metadata) (string, bool) {
	s, ok := m.Legacy()["DateTimeOriginal"]
	return s, ok
}

// MetadataReader is the image-metadata collaborator. *imagemeta.Registry
// satisfies it.
type MetadataReader interface {
	Open(path string) (*imagemeta.Metadata, error)
}

// Resolver turns a file path into a Label. It is immutable; use
// WithCreationTime for a variant with a different fallback policy.
type Resolver struct {
	meta         MetadataReader
	format       *strftime.Strftime
	creationTime bool
	birthTime    func(path string) (time.Time, error)
}

// NewResolver compiles the strftime pattern and returns a resolver reading
// metadata through meta.
func NewResolver(meta MetadataReader, pattern string, includeCreationTime bool) (*Resolver, error) {
	f, err := strftime.New(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid time format %q: %w", pattern, err)
	}
	return &Resolver{
		meta:         meta,
		format:       f,
		creationTime: includeCreationTime,
		birthTime:    creationTime,
	}, nil
}

// WithCreationTime returns a copy of r with the filesystem fallback turned
// on or off.
func (r *Resolver) WithCreationTime(enabled bool) *Resolver {
	c := *r
	c.creationTime = enabled
	return &c
}

// Resolve returns the label for path, or false when no source yields a date.
func (r *Resolver) Resolve(path string) (Label, bool) {
	if m, err := r.meta.Open(path); err == nil {
		for _, e := range extractors {
			raw, ok := e.fn(m)
			if !ok {
				continue
			}
			t, err := ParseExif(raw)
			if err != nil {
				continue
			}
			return r.label(t, e.source), true
		}
	}

	if !r.creationTime {
		return Label{}, false
	}
	t, err := r.birthTime(path)
	if err != nil {
		return Label{}, false
	}
	return r.label(t, SourceCreationTime), true
}

// Format renders t with the resolver's pattern.
func (r *Resolver) Format(t time.Time) string {
	return r.format.FormatString(t)
}

func (r *Resolver) label(t time.Time, src Source) Label {
	return Label{Text: r.Format(t), Time: t, Source: src}
}

// ParseExif parses an Exif date/time value. Trailing NULs and surrounding
// whitespace, common in camera output, are ignored.
func ParseExif(raw string) (time.Time, error) {
	s := strings.TrimSpace(strings.TrimRight(raw, "\x00"))
	return time.ParseInLocation(ExifLayout, s, time.Local)
}

// creationTime returns the birth time where the platform records it, then
// the inode change time, then the modification time.
func creationTime(path string) (time.Time, error) {
	ts, err := times.Stat(path)
	if err != nil {
		return time.Time{}, err
	}
	switch {
	case ts.HasBirthTime():
		return ts.BirthTime(), nil
	case ts.HasChangeTime():
		return ts.ChangeTime(), nil
	default:
		return ts.ModTime(), nil
	}
}
