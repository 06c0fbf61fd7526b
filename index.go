package wordvec

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/hupe1980/wordvec/persistence"
	"github.com/hupe1980/wordvec/vector"
)

// Index serves lookups from a compiled index file. It is immutable and
// safe for unbounded concurrent readers; Lookup performs no allocation and
// needs no synchronization.
type Index struct {
	dimension int
	keys      []uint64
	values    []float64 // len(keys) rows of dimension values, key order
	zero      vector.Vector
	metrics   MetricsCollector
}

// Open loads a compiled index file and validates its header, size and body
// checksum. Any problem with the file - missing, wrong magic or version,
// truncation, checksum mismatch, unsorted records - yields *ErrCorrupted;
// the underlying cause is available via errors.Unwrap.
func Open(path string, opts ...Option) (*Index, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	idx := &Index{
		metrics: o.metrics,
	}

	st, err := os.Stat(path)
	if err != nil {
		o.logger.LogOpen(context.Background(), path, 0, 0, err)
		return nil, &ErrCorrupted{Path: path, cause: err}
	}

	err = persistence.LoadFromFile(path, func(r io.Reader) error {
		br := persistence.NewIndexReader(r)
		header, err := br.ReadHeader()
		if err != nil {
			return err
		}
		if header.Dimension < 1 {
			return fmt.Errorf("%w: zero dimension", persistence.ErrTruncated)
		}

		dim := int(header.Dimension)

		// The header count is untrusted input: validate it against the
		// real file size before sizing any allocation from it.
		recSize := int64(persistence.RecordSize(dim))
		bodySize := st.Size() - persistence.HeaderSize
		if bodySize < 0 || bodySize%recSize != 0 || uint64(bodySize/recSize) != header.Count {
			return fmt.Errorf("%w: size %d does not hold %d records of dimension %d",
				persistence.ErrTruncated, st.Size(), header.Count, dim)
		}
		count := int(header.Count)

		cr := persistence.NewChecksumReader(r)
		body := persistence.NewIndexReader(cr)

		keys := make([]uint64, count)
		values := make([]float64, count*dim)
		for i := 0; i < count; i++ {
			key, err := body.ReadRecord(values[i*dim : (i+1)*dim])
			if err != nil {
				return err
			}
			keys[i] = key
			if i > 0 && key <= keys[i-1] {
				return persistence.ErrKeyOrder
			}
		}
		if err := cr.Verify(header.Checksum); err != nil {
			return err
		}
		// Anything after the last record is not ours.
		if n, _ := r.Read(make([]byte, 1)); n != 0 {
			return fmt.Errorf("%w: trailing data", persistence.ErrTruncated)
		}

		idx.dimension = dim
		idx.keys = keys
		idx.values = values
		idx.zero = vector.Zeros(dim)
		return nil
	})
	o.logger.LogOpen(context.Background(), path, len(idx.keys), idx.dimension, err)
	if err != nil {
		return nil, &ErrCorrupted{Path: path, cause: err}
	}
	return idx, nil
}

// Dimension returns the fixed vector dimension of the index.
func (idx *Index) Dimension() int { return idx.dimension }

// Len returns the number of entries in the index.
func (idx *Index) Len() int { return len(idx.keys) }

// Lookup returns the vector stored for word, or an all-zeros vector of the
// index dimension if the word is out of vocabulary. It never fails, so
// callers can treat every token uniformly.
//
// The returned vector is a read-only view into the index; callers must not
// mutate it. Clone it before modifying.
func (idx *Index) Lookup(word string) vector.Vector {
	start := time.Now()
	i, ok := idx.search(word)
	var out vector.Vector
	if ok {
		out = vector.Vector(idx.values[i*idx.dimension : (i+1)*idx.dimension : (i+1)*idx.dimension])
	} else {
		out = idx.zero
	}
	idx.metrics.RecordLookup(ok, time.Since(start))
	return out
}

// Contains reports whether word is present in the index.
func (idx *Index) Contains(word string) bool {
	_, ok := idx.search(word)
	return ok
}

func (idx *Index) search(word string) (int, bool) {
	key := xxhash.Sum64String(word)
	i := sort.Search(len(idx.keys), func(i int) bool {
		return idx.keys[i] >= key
	})
	if i < len(idx.keys) && idx.keys[i] == key {
		return i, true
	}
	return 0, false
}

// Close releases the memory held by the index. Lookup must not be called
// afterward. Close never fails; it exists for symmetry with Builder and to
// make the release explicit at call sites.
func (idx *Index) Close() error {
	idx.keys = nil
	idx.values = nil
	return nil
}
