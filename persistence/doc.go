// Package persistence defines the compiled word-vector index file format
// and its binary serialization.
//
// A compiled index is a 32-byte header followed by fixed-size records, one
// per word: an 8-byte hashed key and dimension little-endian IEEE-754
// float64 values. Records are sorted by key ascending so readers can binary
// search, and so that compiling the same logical table always produces a
// byte-identical file.
//
// Writes go through SaveToFile, which stages the file in the destination
// directory and renames it into place only on full success; a failed or
// interrupted write never leaves a partial file visible.
package persistence
