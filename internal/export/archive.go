package export

import (
	"archive/tar"
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// ErrArchive wraps every failure to write the output archive.
var ErrArchive = errors.New("archive write failed")

// Format selects the archive container.
type Format string

const (
	FormatZip Format = "zip"
	FormatTar Format = "tar"
)

// ParseFormat accepts "zip" or "tar".
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatZip, FormatTar:
		return f, nil
	}
	return "", fmt.Errorf("unknown archive format %q", s)
}

// Sink is a write-only archive receiving files by path.
type Sink interface {
	// Has reports whether path was already written.
	Has(path string) bool
	// Write stores size bytes read from r under path.
	Write(path string, r io.Reader, size int64) error
	Close() error
}

// NewSink returns a Sink of the given format writing to w.
func NewSink(w io.Writer, f Format) (Sink, error) {
	switch f {
	case FormatZip:
		return &zipSink{w: zip.NewWriter(w), seen: make(map[string]bool)}, nil
	case FormatTar:
		return &tarSink{w: tar.NewWriter(w), seen: make(map[string]bool)}, nil
	}
	return nil, fmt.Errorf("unknown archive format %q", f)
}

type zipSink struct {
	w    *zip.Writer
	seen map[string]bool
}

func (z *zipSink) Has(path string) bool { return z.seen[path] }

func (z *zipSink) Write(path string, r io.Reader, size int64) error {
	fw, err := z.w.CreateHeader(&zip.FileHeader{
		Name:     path,
		Method:   zip.Deflate,
		Modified: time.Now(),
	})
	if err != nil {
		return fmt.Errorf("%w: create %s: %v", ErrArchive, path, err)
	}
	if _, err := io.Copy(fw, r); err != nil {
		return fmt.Errorf("%w: write %s: %v", ErrArchive, path, err)
	}
	z.seen[path] = true
	return nil
}

func (z *zipSink) Close() error {
	if err := z.w.Close(); err != nil {
		return fmt.Errorf("%w: %v", ErrArchive, err)
	}
	return nil
}

type tarSink struct {
	w    *tar.Writer
	seen map[string]bool
}

func (t *tarSink) Has(path string) bool { return t.seen[path] }

func (t *tarSink) Write(path string, r io.Reader, size int64) error {
	hdr := &tar.Header{
		Name:    path,
		Mode:    0644,
		Size:    size,
		ModTime: time.Now(),
	}
	if err := t.w.WriteHeader(hdr); err != nil {
		return fmt.Errorf("%w: header %s: %v", ErrArchive, path, err)
	}
	if _, err := io.Copy(t.w, r); err != nil {
		return fmt.Errorf("%w: write %s: %v", ErrArchive, path, err)
	}
	t.seen[path] = true
	return nil
}

func (t *tarSink) Close() error {
	if err := t.w.Close(); err != nil {
		return fmt.Errorf("%w: %v", ErrArchive, err)
	}
	return nil
}

// ArchiveFile is a Sink backed by a temporary file that only appears at its
// destination once Commit succeeds.
type ArchiveFile struct {
	Sink
	f    *os.File
	dest string
}

// CreateArchive opens a temporary archive next to dest.
func CreateArchive(dest string, f Format) (*ArchiveFile, error) {
	tmp, err := os.CreateTemp(filepath.Dir(dest), "."+filepath.Base(dest)+".*")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrArchive, err)
	}
	sink, err := NewSink(tmp, f)
	if err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return nil, err
	}
	return &ArchiveFile{Sink: sink, f: tmp, dest: dest}, nil
}

// Commit finishes the archive and moves it to its destination.
func (a *ArchiveFile) Commit() error {
	if err := a.Sink.Close(); err != nil {
		a.Abort()
		return err
	}
	if err := a.f.Close(); err != nil {
		os.Remove(a.f.Name())
		return fmt.Errorf("%w: %v", ErrArchive, err)
	}
	if err := os.Rename(a.f.Name(), a.dest); err != nil {
		os.Remove(a.f.Name())
		return fmt.Errorf("%w: %v", ErrArchive, err)
	}
	return nil
}

// Abort discards the temporary archive.
func (a *ArchiveFile) Abort() {
	a.f.Close()
	os.Remove(a.f.Name())
}
