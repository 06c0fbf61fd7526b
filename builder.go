package wordvec

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/hupe1980/wordvec/blobstore"
	"github.com/hupe1980/wordvec/corpus"
	"github.com/hupe1980/wordvec/persistence"
	"github.com/hupe1980/wordvec/vector"
)

// Builder accumulates validated (word, vector) entries and compiles them,
// merged with an external corpus, into a persisted index file.
//
// A Builder is single-writer and not safe for concurrent use; one build
// process owns one builder end-to-end. Every mutating operation fails
// atomically: on error the entry table is exactly as it was before the
// call, so callers may retry with corrected input.
type Builder struct {
	path      string
	name      string
	dimension int
	entries   map[string]vector.Vector
	compiled  bool
	closed    bool
	logger    *Logger
	metrics   MetricsCollector
}

// Create initializes an empty builder bound to a destination path, a
// human-readable name and a fixed vector dimension. The destination
// directory is created and probed for writability; failure yields
// *ErrSetup.
func Create(path, name string, dimension int, opts ...Option) (*Builder, error) {
	if dimension < 1 {
		return nil, &ErrInvalidDimension{Dimension: dimension}
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, &ErrSetup{Path: path, cause: err}
	}
	// Probe writability now so compile cannot fail on a read-only
	// destination after the whole corpus has been merged.
	probe, err := os.CreateTemp(dir, ".wordvec-probe-*")
	if err != nil {
		return nil, &ErrSetup{Path: path, cause: err}
	}
	probeName := probe.Name()
	_ = probe.Close()
	_ = os.Remove(probeName)

	return &Builder{
		path:      path,
		name:      name,
		dimension: dimension,
		entries:   make(map[string]vector.Vector),
		logger:    o.logger,
		metrics:   o.metrics,
	}, nil
}

// Name returns the builder's logical index name.
func (b *Builder) Name() string { return b.name }

// Dimension returns the fixed vector dimension.
func (b *Builder) Dimension() int { return b.dimension }

// Len returns the number of manually inserted entries.
func (b *Builder) Len() int { return len(b.entries) }

// Insert validates and stores one entry. A vector whose length differs
// from the builder dimension yields *ErrDimensionMismatch and leaves the
// table unchanged. Re-inserting a word overwrites the previous entry: the
// last manual insert wins.
func (b *Builder) Insert(word string, vec vector.Vector) error {
	start := time.Now()
	err := b.insert(word, vec)
	b.metrics.RecordInsert(time.Since(start), err)
	b.logger.LogInsert(context.Background(), word, len(vec), err)
	return err
}

func (b *Builder) insert(word string, vec vector.Vector) error {
	if b.closed {
		return ErrBuilderClosed
	}
	if b.compiled {
		return ErrAlreadyCompiled
	}
	if vec.Dimension() != b.dimension {
		return &ErrDimensionMismatch{Word: word, Expected: b.dimension, Actual: vec.Dimension()}
	}
	// Clone so later caller-side mutation cannot corrupt the table.
	b.entries[word] = vec.Clone()
	return nil
}

// ParseInsert parses one corpus-format line and inserts the result. Either
// underlying error (*corpus.ErrMalformedLine or *ErrDimensionMismatch)
// propagates unchanged.
func (b *Builder) ParseInsert(line string) error {
	word, vec, err := corpus.ParseLine(line)
	if err != nil {
		return err
	}
	return b.Insert(word, vec)
}

// Compile streams the corpus file at corpusPath (decompressed by extension,
// see corpus.Open), merges it with the manually inserted entries and
// serializes the result to the builder's destination path.
//
// Corpus entries never overwrite manual inserts for the same word. A
// malformed corpus line or dimension mismatch fails the whole operation,
// and a failed compile leaves nothing visible at the destination path.
// Compile consumes the builder: it succeeds at most once.
func (b *Builder) Compile(corpusPath string) error {
	rc, err := corpus.Open(corpusPath)
	if err != nil {
		return err
	}
	defer rc.Close()
	return b.CompileFrom(rc)
}

// CompileFromStore fetches the named corpus blob from store and compiles
// against it. The blob name's extension selects decompression, so
// "vectors.txt.gz" in a bucket works like a local gzip file.
func (b *Builder) CompileFromStore(ctx context.Context, store blobstore.Store, name string) error {
	rc, err := store.Open(ctx, name)
	if err != nil {
		return err
	}
	defer rc.Close()

	dr, err := corpus.Decompress(name, rc)
	if err != nil {
		return err
	}
	defer dr.Close()

	return b.CompileFrom(dr)
}

// CompileFrom merges corpus entries streamed from r with the manual
// entries and serializes the result. See Compile for semantics.
func (b *Builder) CompileFrom(r io.Reader) error {
	start := time.Now()
	entries, err := b.compileFrom(r)
	b.metrics.RecordCompile(entries, time.Since(start), err)
	b.logger.LogCompile(context.Background(), b.path, entries, time.Since(start), err)
	return err
}

func (b *Builder) compileFrom(r io.Reader) (int, error) {
	if b.closed {
		return 0, ErrBuilderClosed
	}
	if b.compiled {
		return 0, ErrAlreadyCompiled
	}

	// Corpus entries first; manual inserts overwrite on top, so manual
	// entries always win for a shared word. Within the corpus itself the
	// last line wins, matching manual insert semantics.
	merged := make(map[string]vector.Vector, len(b.entries))

	sc := corpus.NewScanner(r)
	for sc.Scan() {
		word, vec := sc.Entry()
		if vec.Dimension() != b.dimension {
			return 0, &ErrDimensionMismatch{Word: word, Expected: b.dimension, Actual: vec.Dimension()}
		}
		merged[word] = vec
	}
	if err := sc.Err(); err != nil {
		return 0, err
	}

	for word, vec := range b.entries {
		merged[word] = vec
	}

	records, err := hashAndSort(merged)
	if err != nil {
		return 0, err
	}

	if err := writeIndex(b.path, b.dimension, records); err != nil {
		return 0, err
	}

	b.compiled = true
	return len(records), nil
}

// Close releases the builder's resources. The builder must not be used
// afterward. Close is idempotent.
func (b *Builder) Close() error {
	b.closed = true
	b.entries = nil
	return nil
}

type record struct {
	key    uint64
	word   string
	values vector.Vector
}

// hashAndSort hashes every word to its 64-bit key and orders records by
// key ascending.
func hashAndSort(entries map[string]vector.Vector) ([]record, error) {
	records := make([]record, 0, len(entries))
	for word, vec := range entries {
		records = append(records, record{
			key:    xxhash.Sum64String(word),
			word:   word,
			values: vec,
		})
	}
	if err := sortRecords(records); err != nil {
		return nil, err
	}
	return records, nil
}

// sortRecords orders records by key ascending. Two distinct words on the
// same key cannot be represented in the compiled format, so that fails
// with *ErrHashCollision instead of silently dropping an entry.
func sortRecords(records []record) error {
	sort.Slice(records, func(i, j int) bool {
		return records[i].key < records[j].key
	})

	for i := 1; i < len(records); i++ {
		if records[i].key == records[i-1].key {
			return &ErrHashCollision{
				Key:   records[i].key,
				Words: [2]string{records[i-1].word, records[i].word},
			}
		}
	}
	return nil
}

// writeIndex serializes sorted records to path atomically. The body
// checksum is computed in a dry-run pass so the header can be written
// first without seeking.
func writeIndex(path string, dimension int, records []record) error {
	cw := persistence.NewChecksumWriter(io.Discard)
	dry := persistence.NewIndexWriter(cw)
	for _, rec := range records {
		if err := dry.WriteRecord(rec.key, rec.values); err != nil {
			return err
		}
	}

	header := &persistence.FileHeader{
		Dimension: uint32(dimension),
		Count:     uint64(len(records)),
		Checksum:  cw.Sum(),
	}

	return persistence.SaveToFile(path, func(w io.Writer) error {
		bw := persistence.NewIndexWriter(w)
		if err := bw.WriteHeader(header); err != nil {
			return err
		}
		for _, rec := range records {
			if err := bw.WriteRecord(rec.key, rec.values); err != nil {
				return err
			}
		}
		return nil
	})
}
