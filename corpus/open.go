package corpus

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Open opens a corpus file for reading, transparently decompressing it
// based on the filename extension (.gz, .zst, .lz4). Any other extension is
// treated as plain text.
func Open(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	rc, err := Decompress(path, f)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return rc, nil
}

// Decompress wraps r with the decompressor implied by name's extension.
// Closing the returned ReadCloser also closes r if it is an io.Closer, so
// it is safe to hand ownership of a file or network body to the result.
func Decompress(name string, r io.Reader) (io.ReadCloser, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".gz":
		zr, err := gzip.NewReader(r)
		if err != nil {
			return nil, err
		}
		return &reader{Reader: zr, closeFn: func() error {
			err := zr.Close()
			if cerr := closeIfCloser(r); err == nil {
				err = cerr
			}
			return err
		}}, nil
	case ".zst":
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, err
		}
		return &reader{Reader: zr, closeFn: func() error {
			zr.Close()
			return closeIfCloser(r)
		}}, nil
	case ".lz4":
		return &reader{Reader: lz4.NewReader(r), closeFn: func() error {
			return closeIfCloser(r)
		}}, nil
	default:
		return &reader{Reader: r, closeFn: func() error {
			return closeIfCloser(r)
		}}, nil
	}
}

type reader struct {
	io.Reader
	closeFn func() error
	closed  bool
}

func (cr *reader) Close() error {
	if cr.closed {
		return nil
	}
	cr.closed = true
	return cr.closeFn()
}

func closeIfCloser(r io.Reader) error {
	if c, ok := r.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
