// Package romload loads a cartridge image from disk, transparently
// decompressing it when it arrives inside a .zip, .7z or .gz archive.
// Grounded on the teacher's pkg/utils/files.go LoadFile.
package romload

import (
	"archive/zip"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/bodgit/sevenzip"
)

// Load reads filename and, if its extension names a supported archive
// format, returns the bytes of the first .gb/.gbc entry inside it (or
// of the first entry, if none has a ROM extension). Plain .gb/.gbc
// images are returned unchanged.
func Load(filename string) ([]byte, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("romload: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("romload: %w", err)
	}

	switch filepath.Ext(filename) {
	case ".gb", ".gbc":
		return data, nil
	case ".gz":
		r, err := gzip.NewReader(newByteReader(data))
		if err != nil {
			return nil, fmt.Errorf("romload: gzip: %w", err)
		}
		defer r.Close()
		return io.ReadAll(r)
	case ".zip":
		return loadFromZip(newByteReader(data), int64(len(data)))
	case ".7z":
		return loadFromSevenZip(newByteReader(data), int64(len(data)))
	default:
		return data, nil
	}
}

func loadFromZip(r io.ReaderAt, size int64) ([]byte, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("romload: zip: %w", err)
	}
	entry, err := firstROMEntry(zr.File)
	if err != nil {
		return nil, err
	}
	rc, err := entry.Open()
	if err != nil {
		return nil, fmt.Errorf("romload: zip: %w", err)
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

func firstROMEntry(files []*zip.File) (*zip.File, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("romload: archive is empty")
	}
	for _, f := range files {
		switch filepath.Ext(f.Name) {
		case ".gb", ".gbc":
			return f, nil
		}
	}
	return files[0], nil
}

func loadFromSevenZip(r io.ReaderAt, size int64) ([]byte, error) {
	zr, err := sevenzip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("romload: 7z: %w", err)
	}
	if len(zr.File) == 0 {
		return nil, fmt.Errorf("romload: archive is empty")
	}
	var entry = zr.File[0]
	for _, f := range zr.File {
		if ext := filepath.Ext(f.Name); ext == ".gb" || ext == ".gbc" {
			entry = f
			break
		}
	}
	rc, err := entry.Open()
	if err != nil {
		return nil, fmt.Errorf("romload: 7z: %w", err)
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// byteReader adapts a byte slice to io.ReaderAt and io.Reader, since
// zip.NewReader and gzip.NewReader want different interfaces but we
// already have the whole file in memory.
type byteReader struct {
	data []byte
	pos  int
}

func newByteReader(data []byte) *byteReader { return &byteReader{data: data} }

func (b *byteReader) Read(p []byte) (int, error) {
	if b.pos >= len(b.data) {
		return 0, io.EOF
	}
	n := copy(p, b.data[b.pos:])
	b.pos += n
	return n, nil
}

func (b *byteReader) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 || off >= int64(len(b.data)) {
		return 0, io.EOF
	}
	n := copy(p, b.data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}
