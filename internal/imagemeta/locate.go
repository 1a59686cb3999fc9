package imagemeta

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// ErrNoExif is returned when a container holds no Exif block.
var ErrNoExif = errors.New("no exif block")

const (
	// maxHEIFScan bounds how much of a HEIF file is searched for the Exif item.
	maxHEIFScan = 64 << 20
	// maxPNGExif bounds the eXIf chunk length taken from the file.
	maxPNGExif = 16 << 20
)

var (
	pngSignature = []byte("\x89PNG\r\n\x1a\n")
	exifHeader   = []byte("Exif\x00\x00")
)

// A locator positions a reader at the start of the stream exif.Decode
// understands: a JPEG or a TIFF header.
type locator func(r io.ReadSeeker) (io.Reader, error)

var locators = map[string]locator{
	"exif": locateDirect,
	"png":  locatePNG,
	"heif": locateHEIF,
}

func locateDirect(r io.ReadSeeker) (io.Reader, error) {
	return r, nil
}

// locatePNG walks the chunk list up to IEND and returns the eXIf payload,
// which is a bare TIFF stream.
func locatePNG(r io.ReadSeeker) (io.Reader, error) {
	sig := make([]byte, len(pngSignature))
	if _, err := io.ReadFull(r, sig); err != nil {
		return nil, fmt.Errorf("reading png signature: %w", err)
	}
	if !bytes.Equal(sig, pngSignature) {
		return nil, errors.New("not a png file")
	}

	var hdr [8]byte
	for {
		if _, err := io.ReadFull(r, hdr[:]); err != nil {
			if errors.Is(err, io.EOF) {
				return nil, ErrNoExif
			}
			return nil, fmt.Errorf("reading png chunk: %w", err)
		}
		length := int64(binary.BigEndian.Uint32(hdr[:4]))
		switch string(hdr[4:]) {
		case "eXIf":
			if length > maxPNGExif {
				return nil, fmt.Errorf("eXIf chunk of %d bytes exceeds %d", length, maxPNGExif)
			}
			data, err := io.ReadAll(io.LimitReader(r, length))
			if err != nil {
				return nil, fmt.Errorf("reading eXIf chunk: %w", err)
			}
			if int64(len(data)) < length {
				return nil, fmt.Errorf("reading eXIf chunk: %w", io.ErrUnexpectedEOF)
			}
			return bytes.NewReader(data), nil
		case "IEND":
			return nil, ErrNoExif
		}
		// skip data and CRC
		if _, err := r.Seek(length+4, io.SeekCurrent); err != nil {
			return nil, err
		}
	}
}

// locateHEIF finds the Exif item payload ("Exif\0\0" followed by a TIFF
// header) without parsing the box tree.
func locateHEIF(r io.ReadSeeker) (io.Reader, error) {
	buf, err := io.ReadAll(io.LimitReader(r, maxHEIFScan))
	if err != nil {
		return nil, err
	}
	for off := 0; ; {
		i := bytes.Index(buf[off:], exifHeader)
		if i < 0 {
			return nil, ErrNoExif
		}
		start := off + i + len(exifHeader)
		if isTIFFHeader(buf[start:]) {
			return bytes.NewReader(buf[start:]), nil
		}
		off = start
	}
}

func isTIFFHeader(b []byte) bool {
	return bytes.HasPrefix(b, []byte("II*\x00")) || bytes.HasPrefix(b, []byte("MM\x00*"))
}
