// Package wordvec provides a persistent, queryable table of dense numeric
// vectors keyed by word, for converting vocabulary tokens into fixed-length
// embeddings.
//
// The lifecycle is write-once/read-many. A Builder accumulates validated
// (word, vector) entries, merges an external corpus and compiles everything
// into a versioned binary file:
//
//	b, err := wordvec.Create("glove.wv", "glove-6b", 300)
//	...
//	err = b.Insert("hello", vec)
//	err = b.Compile("glove.6B.300d.txt")
//	err = b.Close()
//
// An Index serves lookups from a compiled file. Lookup is total: a word
// absent from the table yields an all-zeros vector of the index dimension,
// never an error.
//
//	idx, err := wordvec.Open("glove.wv")
//	...
//	vec := idx.Lookup("hello")
//
// A compiled index is immutable, so a single Index is safe for unbounded
// concurrent readers without locking.
package wordvec
