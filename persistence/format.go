package persistence

import "errors"

const (
	// MagicNumber identifies wordvec index files (ASCII: "WV10").
	MagicNumber = 0x57563130
	// Version is the current file format version (v1.0).
	Version = 0x00010000

	// HeaderSize is the encoded size of FileHeader in bytes.
	HeaderSize = 32
	// KeySize is the encoded size of a record's hashed word key.
	KeySize = 8
)

var (
	ErrInvalidMagic   = errors.New("invalid magic number")
	ErrInvalidVersion = errors.New("unsupported version")
	ErrTruncated      = errors.New("truncated index file")
	ErrKeyOrder       = errors.New("record keys out of order")
)

// FileHeader is the 32-byte header at the start of every index file.
type FileHeader struct {
	Magic     uint32 // 0x57563130 ("WV10")
	Version   uint32 // File format version
	Dimension uint32 // Vector dimensionality, shared by every record
	Reserved  uint32 // Future use
	Count     uint64 // Number of records in the body
	Checksum  uint32 // CRC32-C of the record body
	Padding   [4]byte
}

// RecordSize returns the encoded size in bytes of one record for the given
// dimension.
func RecordSize(dimension int) int {
	return KeySize + dimension*8
}
