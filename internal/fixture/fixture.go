// Package fixture builds small image files carrying EXIF metadata for tests.
// Only the bytes metadata decoders look at are produced; the files carry no
// pixel data.
package fixture

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"os"
	"path/filepath"
	"sort"
	"testing"
)

// TIFF tag IDs used by the fixtures.
const (
	TagMake              uint16 = 0x010f
	TagDateTime          uint16 = 0x0132
	TagExifIFDPointer    uint16 = 0x8769
	TagDateTimeOriginal  uint16 = 0x9003
	TagDateTimeDigitized uint16 = 0x9004
	TagMakerNote         uint16 = 0x927c
)

// TIFF field types.
const (
	TypeByte      uint16 = 1
	TypeASCII     uint16 = 2
	TypeLong      uint16 = 4
	TypeUndefined uint16 = 7
)

// Tag is a single IFD entry.
type Tag struct {
	ID   uint16
	Type uint16
	Data []byte
}

// ASCII returns a NUL-terminated string tag.
func ASCII(id uint16, s string) Tag {
	return Tag{ID: id, Type: TypeASCII, Data: append([]byte(s), 0)}
}

// Undefined returns a raw binary tag.
func Undefined(id uint16, b []byte) Tag {
	return Tag{ID: id, Type: TypeUndefined, Data: b}
}

// Layout describes where tags live in the TIFF structure.
type Layout struct {
	IFD0 []Tag // primary image directory
	Exif []Tag // Exif sub-IFD, linked from IFD0 when non-empty
	IFD1 []Tag // thumbnail directory, chained after IFD0 when non-empty
}

// Exif returns the common layout: capture tags in the Exif sub-IFD and the
// generic DateTime in IFD0. Empty values are omitted.
func Exif(original, digitized, generic string) Layout {
	var l Layout
	if generic != "" {
		l.IFD0 = append(l.IFD0, ASCII(TagDateTime, generic))
	}
	if original != "" {
		l.Exif = append(l.Exif, ASCII(TagDateTimeOriginal, original))
	}
	if digitized != "" {
		l.Exif = append(l.Exif, ASCII(TagDateTimeDigitized, digitized))
	}
	return l
}

// TIFF encodes l as a little-endian TIFF stream.
func TIFF(l Layout) []byte {
	dirs := [][]Tag{append([]Tag(nil), l.IFD0...)}
	if len(l.Exif) > 0 {
		// placeholder value, patched once offsets are known
		dirs[0] = append(dirs[0], Tag{ID: TagExifIFDPointer, Type: TypeLong, Data: make([]byte, 4)})
	}
	if len(l.IFD1) > 0 {
		dirs = append(dirs, append([]Tag(nil), l.IFD1...))
	}
	exifDir := append([]Tag(nil), l.Exif...)

	size := func(tags []Tag) uint32 { return uint32(2 + 12*len(tags) + 4) }

	offsets := make([]uint32, len(dirs))
	next := uint32(8)
	for i, d := range dirs {
		offsets[i] = next
		next += size(d)
	}
	exifOff := next
	if len(exifDir) > 0 {
		next += size(exifDir)
	}
	if len(l.Exif) > 0 {
		for i := range dirs[0] {
			if dirs[0][i].ID == TagExifIFDPointer {
				binary.LittleEndian.PutUint32(dirs[0][i].Data, exifOff)
			}
		}
	}

	var head, data bytes.Buffer
	dataOff := next
	head.WriteString("II*\x00")
	writeU32(&head, 8)

	writeDir := func(tags []Tag, nextDir uint32) {
		sort.Slice(tags, func(i, j int) bool { return tags[i].ID < tags[j].ID })
		writeU16(&head, uint16(len(tags)))
		for _, t := range tags {
			writeU16(&head, t.ID)
			writeU16(&head, t.Type)
			writeU32(&head, count(t))
			if len(t.Data) <= 4 {
				v := make([]byte, 4)
				copy(v, t.Data)
				head.Write(v)
				continue
			}
			writeU32(&head, dataOff+uint32(data.Len()))
			data.Write(t.Data)
			if data.Len()%2 == 1 {
				data.WriteByte(0)
			}
		}
		writeU32(&head, nextDir)
	}

	for i, d := range dirs {
		var nextDir uint32
		if i+1 < len(dirs) {
			nextDir = offsets[i+1]
		}
		writeDir(d, nextDir)
	}
	if len(exifDir) > 0 {
		writeDir(exifDir, 0)
	}
	head.Write(data.Bytes())
	return head.Bytes()
}

func count(t Tag) uint32 {
	if t.Type == TypeLong {
		return uint32(len(t.Data) / 4)
	}
	return uint32(len(t.Data))
}

// JPEG wraps the TIFF payload of l in an APP1 Exif segment.
func JPEG(l Layout) []byte {
	payload := append([]byte("Exif\x00\x00"), TIFF(l)...)
	var b bytes.Buffer
	b.Write([]byte{0xFF, 0xD8, 0xFF, 0xE1})
	writeU16BE(&b, uint16(len(payload)+2))
	b.Write(payload)
	b.Write([]byte{0xFF, 0xD9})
	return b.Bytes()
}

// BareJPEG is a JPEG without any metadata segment.
func BareJPEG() []byte {
	return []byte{0xFF, 0xD8, 0xFF, 0xD9}
}

// PNG returns a PNG stream with an eXIf chunk holding l.
func PNG(l Layout) []byte {
	var b bytes.Buffer
	b.WriteString("\x89PNG\r\n\x1a\n")
	writeChunk(&b, "IHDR", []byte{0, 0, 0, 1, 0, 0, 0, 1, 8, 2, 0, 0, 0})
	writeChunk(&b, "eXIf", TIFF(l))
	writeChunk(&b, "IEND", nil)
	return b.Bytes()
}

// HEIF returns an ISO-BMFF-like stream with the Exif item payload laid out
// the way HEIF stores it: a 4-byte header offset, "Exif\0\0", then TIFF.
func HEIF(l Layout) []byte {
	var b bytes.Buffer
	b.Write([]byte{0, 0, 0, 24})
	b.WriteString("ftypheic")
	b.Write([]byte{0, 0, 0, 0})
	b.WriteString("mif1heic")
	item := append([]byte{0, 0, 0, 6}, []byte("Exif\x00\x00")...)
	item = append(item, TIFF(l)...)
	writeU32BE(&b, uint32(len(item)+8))
	b.WriteString("mdat")
	b.Write(item)
	return b.Bytes()
}

// Write creates dir/name with content, creating dir as needed, and returns
// the full path.
func Write(t testing.TB, dir, name string, content []byte) string {
	t.Helper()
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, content, 0644); err != nil {
		t.Fatal(err)
	}
	return p
}

func writeChunk(b *bytes.Buffer, typ string, data []byte) {
	writeU32BE(b, uint32(len(data)))
	crc := crc32.NewIEEE()
	crc.Write([]byte(typ))
	crc.Write(data)
	b.WriteString(typ)
	b.Write(data)
	writeU32BE(b, crc.Sum32())
}

func writeU16(b *bytes.Buffer, v uint16) {
	var buf [2]byte
	binary.LittleEndian.PutUint16(buf[:], v)
	b.Write(buf[:])
}

func writeU32(b *bytes.Buffer, v uint32) {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	b.Write(buf[:])
}

func writeU16BE(b *bytes.Buffer, v uint16) {
	var buf [2]byte
	binary.BigEndian.PutUint16(buf[:], v)
	b.Write(buf[:])
}

func writeU32BE(b *bytes.Buffer, v uint32) {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], v)
	b.Write(buf[:])
}
