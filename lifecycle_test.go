package wordvec

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/hupe1980/wordvec/blobstore"
	"github.com/hupe1980/wordvec/corpus"
	"github.com/hupe1980/wordvec/persistence"
	"github.com/hupe1980/wordvec/vector"
	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func writeCorpus(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRoundTrip(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "index.wv")
	corpusPath := writeCorpus(t, dir, "corpus.txt", "alpha 1 2 3\nbeta 4 5 6\ngamma -1 0.5 2e2\n")

	b, err := Create(out, "test", 3)
	require.NoError(t, err)
	require.NoError(t, b.Insert("delta", vector.FromValues(7, 8, 9)))
	require.NoError(t, b.Compile(corpusPath))
	require.NoError(t, b.Close())

	idx, err := Open(out)
	require.NoError(t, err)
	defer idx.Close()

	assert.Equal(t, 3, idx.Dimension())
	assert.Equal(t, 4, idx.Len())

	want := map[string]vector.Vector{
		"alpha": vector.FromValues(1, 2, 3),
		"beta":  vector.FromValues(4, 5, 6),
		"gamma": vector.FromValues(-1, 0.5, 200),
		"delta": vector.FromValues(7, 8, 9),
	}
	for word, vec := range want {
		got := idx.Lookup(word)
		assert.Truef(t, vector.Equal(vec, got), "lookup %q: got %v, want %v", word, got, vec)
		assert.True(t, idx.Contains(word))
	}

	assert.True(t, vector.Equal(vector.Zeros(3), idx.Lookup("missing")))
	assert.False(t, idx.Contains("missing"))
}

func TestLookupMissReturnsZerosOfDimension(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "index.wv")
	line := "word"
	for i := 0; i < 10; i++ {
		line += fmt.Sprintf(" %d", i)
	}
	corpusPath := writeCorpus(t, dir, "corpus.txt", line+"\n")

	b, err := Create(out, "test", 10)
	require.NoError(t, err)
	require.NoError(t, b.Compile(corpusPath))

	idx, err := Open(out)
	require.NoError(t, err)
	defer idx.Close()

	miss := idx.Lookup("never-seen")
	require.Equal(t, 10, miss.Dimension())
	assert.True(t, vector.Equal(vector.Zeros(10), miss))
}

func TestManualInsertsWinOverCorpus(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "index.wv")
	corpusPath := writeCorpus(t, dir, "corpus.txt", "hello 9 9 9\nworld 1 1 1\n")

	b, err := Create(out, "test", 3)
	require.NoError(t, err)
	v1 := vector.FromValues(1, 2, 3)
	require.NoError(t, b.Insert("hello", v1))
	require.NoError(t, b.Compile(corpusPath))

	idx, err := Open(out)
	require.NoError(t, err)
	defer idx.Close()

	assert.True(t, vector.Equal(v1, idx.Lookup("hello")))
	assert.True(t, vector.Equal(vector.FromValues(1, 1, 1), idx.Lookup("world")))
}

func TestCompileDeterminism(t *testing.T) {
	dir := t.TempDir()
	corpusPath := writeCorpus(t, dir, "corpus.txt", "alpha 1 2\nbeta 3 4\n")

	compile := func(out string, words []string) {
		b, err := Create(out, "test", 2)
		require.NoError(t, err)
		for _, w := range words {
			require.NoError(t, b.Insert(w, vector.FromValues(float64(len(w)), float64(len(w)*2))))
		}
		require.NoError(t, b.Compile(corpusPath))
	}

	// Same logical table, different insertion orders.
	words := []string{"one", "two", "three", "four"}
	reversed := []string{"four", "three", "two", "one"}
	// The vectors depend only on the word so both tables are identical.
	outA := filepath.Join(dir, "a.wv")
	outB := filepath.Join(dir, "b.wv")
	compile(outA, words)
	compile(outB, reversed)

	dataA, err := os.ReadFile(outA)
	require.NoError(t, err)
	dataB, err := os.ReadFile(outB)
	require.NoError(t, err)
	assert.True(t, bytes.Equal(dataA, dataB), "compiled files differ")
}

func TestCompileFailsAtomically(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "index.wv")

	b, err := Create(out, "test", 2)
	require.NoError(t, err)
	require.NoError(t, b.Insert("hello", vector.FromValues(1, 2)))

	t.Run("MalformedCorpusLine", func(t *testing.T) {
		corpusPath := writeCorpus(t, dir, "bad.txt", "alpha 1 2\nbeta nope\n")

		var ml *corpus.ErrMalformedLine
		require.ErrorAs(t, b.Compile(corpusPath), &ml)
		assert.Equal(t, 2, ml.Line)

		_, err := os.Stat(out)
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("CorpusDimensionMismatch", func(t *testing.T) {
		corpusPath := writeCorpus(t, dir, "wide.txt", "alpha 1 2 3\n")

		var dm *ErrDimensionMismatch
		require.ErrorAs(t, b.Compile(corpusPath), &dm)
		assert.Equal(t, "alpha", dm.Word)

		_, err := os.Stat(out)
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("RetryWithCorrectedInputSucceeds", func(t *testing.T) {
		corpusPath := writeCorpus(t, dir, "good.txt", "alpha 1 2\n")
		require.NoError(t, b.Compile(corpusPath))

		// A builder is consumed by a successful compile.
		assert.ErrorIs(t, b.Compile(corpusPath), ErrAlreadyCompiled)
		assert.ErrorIs(t, b.Insert("more", vector.FromValues(1, 2)), ErrAlreadyCompiled)
	})
}

func TestOpenCorruption(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "index.wv")
	corpusPath := writeCorpus(t, dir, "corpus.txt", "alpha 1 2\nbeta 3 4\n")

	b, err := Create(out, "test", 2)
	require.NoError(t, err)
	require.NoError(t, b.Compile(corpusPath))

	pristine, err := os.ReadFile(out)
	require.NoError(t, err)

	corrupt := func(t *testing.T, mutate func([]byte) []byte) error {
		t.Helper()
		data := mutate(bytes.Clone(pristine))
		path := filepath.Join(t.TempDir(), "corrupt.wv")
		require.NoError(t, os.WriteFile(path, data, 0o644))
		_, err := Open(path)
		return err
	}

	t.Run("MissingFile", func(t *testing.T) {
		_, err := Open(filepath.Join(t.TempDir(), "nope.wv"))
		var ec *ErrCorrupted
		require.ErrorAs(t, err, &ec)
	})

	t.Run("BadMagic", func(t *testing.T) {
		err := corrupt(t, func(d []byte) []byte { d[0] ^= 0xff; return d })
		var ec *ErrCorrupted
		require.ErrorAs(t, err, &ec)
		assert.ErrorIs(t, err, persistence.ErrInvalidMagic)
	})

	t.Run("BadVersion", func(t *testing.T) {
		err := corrupt(t, func(d []byte) []byte { d[4] ^= 0xff; return d })
		assert.ErrorIs(t, err, persistence.ErrInvalidVersion)
	})

	t.Run("InflatedCount", func(t *testing.T) {
		// A hostile header count must fail cleanly before any
		// allocation is sized from it.
		err := corrupt(t, func(d []byte) []byte {
			for i := 16; i < 24; i++ { // count field
				d[i] = 0xff
			}
			return d
		})
		var ec *ErrCorrupted
		require.ErrorAs(t, err, &ec)
		assert.ErrorIs(t, err, persistence.ErrTruncated)
	})

	t.Run("CountOffByOne", func(t *testing.T) {
		err := corrupt(t, func(d []byte) []byte {
			d[16]++ // count field, little-endian low byte
			return d
		})
		assert.ErrorIs(t, err, persistence.ErrTruncated)
	})

	t.Run("TruncatedBody", func(t *testing.T) {
		err := corrupt(t, func(d []byte) []byte { return d[:len(d)-4] })
		assert.ErrorIs(t, err, persistence.ErrTruncated)
	})

	t.Run("FlippedBodyByte", func(t *testing.T) {
		err := corrupt(t, func(d []byte) []byte { d[len(d)-1] ^= 0xff; return d })
		var ec *ErrCorrupted
		require.ErrorAs(t, err, &ec)
		var cm *persistence.ChecksumMismatchError
		assert.True(t, errors.As(err, &cm))
	})

	t.Run("TrailingGarbage", func(t *testing.T) {
		err := corrupt(t, func(d []byte) []byte { return append(d, 0x00) })
		assert.ErrorIs(t, err, persistence.ErrTruncated)
	})
}

func TestConcurrentLookups(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "index.wv")

	var content bytes.Buffer
	for i := 0; i < 100; i++ {
		fmt.Fprintf(&content, "word%d %d %d\n", i, i, i*2)
	}
	corpusPath := writeCorpus(t, dir, "corpus.txt", content.String())

	b, err := Create(out, "test", 2)
	require.NoError(t, err)
	require.NoError(t, b.Compile(corpusPath))

	idx, err := Open(out)
	require.NoError(t, err)
	defer idx.Close()

	var g errgroup.Group
	for w := 0; w < 8; w++ {
		g.Go(func() error {
			for i := 0; i < 100; i++ {
				word := fmt.Sprintf("word%d", i)
				got := idx.Lookup(word)
				want := vector.FromValues(float64(i), float64(i*2))
				if !vector.Equal(want, got) {
					return fmt.Errorf("lookup %q: got %v, want %v", word, got, want)
				}
				if miss := idx.Lookup("oov"); !vector.Equal(vector.Zeros(2), miss) {
					return fmt.Errorf("miss not zeros: %v", miss)
				}
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
}

func TestCompileFromStore(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "index.wv")

	var blob bytes.Buffer
	zw := gzip.NewWriter(&blob)
	_, err := zw.Write([]byte("alpha 1 2\nbeta 3 4\n"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	store := blobstore.NewMemoryStore()
	store.Put("corpus.txt.gz", blob.Bytes())

	b, err := Create(out, "test", 2)
	require.NoError(t, err)
	require.NoError(t, b.CompileFromStore(context.Background(), store, "corpus.txt.gz"))

	idx, err := Open(out)
	require.NoError(t, err)
	defer idx.Close()

	assert.Equal(t, 2, idx.Len())
	assert.True(t, vector.Equal(vector.FromValues(3, 4), idx.Lookup("beta")))

	// Missing blob surfaces the store error.
	b2, err := Create(filepath.Join(dir, "other.wv"), "test", 2)
	require.NoError(t, err)
	assert.ErrorIs(t, b2.CompileFromStore(context.Background(), store, "nope.txt"), blobstore.ErrNotFound)
}

func TestMetricsAndLogging(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "index.wv")
	corpusPath := writeCorpus(t, dir, "corpus.txt", "alpha 1 2\n")

	var mc BasicMetricsCollector
	b, err := Create(out, "test", 2, WithMetricsCollector(&mc), WithLogger(NoopLogger()))
	require.NoError(t, err)

	require.NoError(t, b.Insert("hello", vector.FromValues(1, 2)))
	_ = b.Insert("bad", vector.FromValues(1))
	require.NoError(t, b.Compile(corpusPath))

	assert.Equal(t, int64(2), mc.InsertCount.Load())
	assert.Equal(t, int64(1), mc.InsertErrors.Load())
	assert.Equal(t, int64(1), mc.CompileCount.Load())
	assert.Equal(t, int64(2), mc.CompiledEntries.Load())

	idx, err := Open(out, WithMetricsCollector(&mc))
	require.NoError(t, err)
	defer idx.Close()

	idx.Lookup("hello")
	idx.Lookup("missing")
	assert.Equal(t, int64(2), mc.LookupCount.Load())
	assert.Equal(t, int64(1), mc.LookupMisses.Load())
}
