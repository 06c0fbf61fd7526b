package persistence

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
)

// IndexWriter writes index headers and records in the binary format.
type IndexWriter struct {
	w         io.Writer
	byteOrder binary.ByteOrder
	buf       []byte // reused record encode buffer
}

// NewIndexWriter creates a new binary writer.
func NewIndexWriter(w io.Writer) *IndexWriter {
	return &IndexWriter{
		w:         w,
		byteOrder: binary.LittleEndian, // Native on x86/ARM
	}
}

// WriteHeader writes the file header. Magic and Version are filled in.
func (bw *IndexWriter) WriteHeader(header *FileHeader) error {
	header.Magic = MagicNumber
	header.Version = Version
	return binary.Write(bw.w, bw.byteOrder, header)
}

// WriteRecord writes one record: the hashed word key followed by the vector
// values. The encode buffer is reused across calls, so a full compile does
// a single record-sized allocation.
func (bw *IndexWriter) WriteRecord(key uint64, values []float64) error {
	size := RecordSize(len(values))
	if cap(bw.buf) < size {
		bw.buf = make([]byte, size)
	}
	buf := bw.buf[:size]

	bw.byteOrder.PutUint64(buf[0:KeySize], key)
	for i, v := range values {
		bw.byteOrder.PutUint64(buf[KeySize+i*8:], math.Float64bits(v))
	}

	_, err := bw.w.Write(buf)
	return err
}

// IndexReader reads index headers and records from the binary format.
type IndexReader struct {
	r         io.Reader
	byteOrder binary.ByteOrder
	buf       []byte
}

// NewIndexReader creates a new binary reader.
func NewIndexReader(r io.Reader) *IndexReader {
	return &IndexReader{
		r:         r,
		byteOrder: binary.LittleEndian,
	}
}

// ReadHeader reads and validates the file header.
func (br *IndexReader) ReadHeader() (*FileHeader, error) {
	var header FileHeader
	if err := binary.Read(br.r, br.byteOrder, &header); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil, fmt.Errorf("%w: short header", ErrTruncated)
		}
		return nil, err
	}
	if header.Magic != MagicNumber {
		return nil, fmt.Errorf("%w: got 0x%08x", ErrInvalidMagic, header.Magic)
	}
	if header.Version != Version {
		return nil, fmt.Errorf("%w: got 0x%08x", ErrInvalidVersion, header.Version)
	}
	return &header, nil
}

// ReadRecord reads one record, filling values (whose length sets the
// expected dimension) and returning the record key.
func (br *IndexReader) ReadRecord(values []float64) (uint64, error) {
	size := RecordSize(len(values))
	if cap(br.buf) < size {
		br.buf = make([]byte, size)
	}
	buf := br.buf[:size]

	if _, err := io.ReadFull(br.r, buf); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return 0, fmt.Errorf("%w: short record", ErrTruncated)
		}
		return 0, err
	}

	key := br.byteOrder.Uint64(buf[0:KeySize])
	for i := range values {
		values[i] = math.Float64frombits(br.byteOrder.Uint64(buf[KeySize+i*8:]))
	}
	return key, nil
}

// SaveToFile writes a file atomically: writeFunc streams into a temp file
// in the destination directory, which is renamed into place only on full
// success.
func SaveToFile(filename string, writeFunc func(io.Writer) error) error {
	dir := filepath.Dir(filename)
	base := filepath.Base(filename)

	// Temp file in the same directory so the rename is atomic.
	tmp, err := os.CreateTemp(dir, base+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		_ = tmp.Close()
		if tmpName != "" {
			_ = os.Remove(tmpName)
		}
	}()

	_ = tmp.Chmod(0o644)

	buf := bufio.NewWriterSize(tmp, 256*1024)
	if err := writeFunc(buf); err != nil {
		return err
	}
	if err := buf.Flush(); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	if err := os.Rename(tmpName, filename); err != nil {
		return err
	}

	// Best-effort: fsync the directory so the rename is durable on POSIX.
	if d, err := os.Open(dir); err == nil {
		_ = d.Sync()
		_ = d.Close()
	}

	// Success: prevent deferred cleanup from removing the final file.
	tmpName = ""
	return nil
}

// LoadFromFile opens filename and hands a buffered reader to readFunc.
func LoadFromFile(filename string, readFunc func(io.Reader) error) error {
	f, err := os.Open(filename)
	if err != nil {
		return err
	}
	defer f.Close()

	buf := bufio.NewReaderSize(f, 256*1024)
	return readFunc(buf)
}
