package imagemeta

import (
	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/tiff"
)

// rawNames names the tags the legacy scan reads straight from the TIFF
// directories. The structured accessor only maps IFD0 and its sub-IFDs;
// this table also covers tags written to other directories.
var rawNames = map[uint16]exif.FieldName{
	0x010f: exif.Make,
	0x0110: exif.Model,
	0x0132: exif.DateTime,
	0x9003: exif.DateTimeOriginal,
	0x9004: exif.DateTimeDigitized,
}

// Metadata is the decoded Exif block of one image. It holds no open file.
type Metadata struct {
	x *exif.Exif
}

// String returns the string value of a tag through the structured,
// ID-keyed accessor. It fails when the tag is absent or not a string.
func (m *Metadata) String(name exif.FieldName) (string, error) {
	tag, err := m.x.Get(name)
	if err != nil {
		return "", err
	}
	return tag.StringVal()
}

// Legacy returns every tag keyed by its name, the way older metadata APIs
// expose a flat dictionary. Tags holding raw binary data are left out.
// Values read straight from the TIFF directories win over structured values
// of the same name; among directories the first one holding the tag wins.
func (m *Metadata) Legacy() map[string]string {
	tags := make(map[string]string)
	_ = m.x.Walk(walkFunc(func(name exif.FieldName, tag *tiff.Tag) error {
		if name != "" && !isBinary(tag) {
			tags[string(name)] = value(tag)
		}
		return nil
	}))

	if m.x.Tiff == nil {
		return tags
	}
	raw := make(map[string]bool)
	for _, dir := range m.x.Tiff.Dirs {
		for _, tag := range dir.Tags {
			name, ok := rawNames[tag.Id]
			if !ok || isBinary(tag) || raw[string(name)] {
				continue
			}
			raw[string(name)] = true
			tags[string(name)] = value(tag)
		}
	}
	return tags
}

type walkFunc func(exif.FieldName, *tiff.Tag) error

func (f walkFunc) Walk(name exif.FieldName, tag *tiff.Tag) error { return f(name, tag) }

func isBinary(tag *tiff.Tag) bool {
	switch tag.Type {
	case tiff.DTByte, tiff.DTSByte, tiff.DTUndefined:
		return true
	}
	return false
}

func value(tag *tiff.Tag) string {
	if s, err := tag.StringVal(); err == nil {
		return s
	}
	return tag.String()
}
