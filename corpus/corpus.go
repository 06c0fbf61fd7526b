// Package corpus parses plain-text word-vector corpora: UTF-8 text, one
// entry per line, a word token followed by whitespace-separated decimal
// values. The parser enforces line shape only; dimension validation is the
// index builder's job.
package corpus

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/hupe1980/wordvec/vector"
)

// ErrMalformedLine indicates a corpus line that could not be parsed into a
// (word, vector) pair.
//
// Line is 1-based and zero when the line number is unknown (e.g. a line
// parsed outside a Scanner). The original underlying error (if any) can be
// accessed via errors.Unwrap.
type ErrMalformedLine struct {
	Line  int
	Token string
	cause error
}

func (e *ErrMalformedLine) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("malformed line %d: bad token %q", e.Line, e.Token)
	}
	return fmt.Sprintf("malformed line: bad token %q", e.Token)
}

func (e *ErrMalformedLine) Unwrap() error { return e.cause }

// ParseLine splits text on whitespace and parses it into a word and its
// vector: the first token is the word, every remaining token a float64, in
// order. It fails with *ErrMalformedLine if there are fewer than two tokens
// or any value token does not parse as a number.
func ParseLine(text string) (string, vector.Vector, error) {
	fields := strings.Fields(text)
	if len(fields) < 2 {
		return "", nil, &ErrMalformedLine{Token: text}
	}

	word := fields[0]
	vec := make(vector.Vector, 0, len(fields)-1)
	for _, f := range fields[1:] {
		x, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return "", nil, &ErrMalformedLine{Token: f, cause: err}
		}
		vec = append(vec, x)
	}
	return word, vec, nil
}

// Scanner streams (word, vector) entries from a corpus reader line by line.
// Blank lines are skipped. A malformed line stops the scan; Err then
// returns an *ErrMalformedLine carrying the 1-based line number.
//
// Usage mirrors bufio.Scanner:
//
//	sc := corpus.NewScanner(r)
//	for sc.Scan() {
//	    word, vec := sc.Entry()
//	    ...
//	}
//	if err := sc.Err(); err != nil { ... }
type Scanner struct {
	s    *bufio.Scanner
	line int
	word string
	vec  vector.Vector
	err  error
}

// NewScanner creates a Scanner reading from r.
func NewScanner(r io.Reader) *Scanner {
	s := bufio.NewScanner(r)
	// Corpus lines with large dimensions easily exceed the default token
	// limit (300 dims of full-precision decimals is ~7KB).
	s.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	return &Scanner{s: s}
}

// Scan advances to the next entry. It returns false at end of input or on
// the first malformed line or read error.
func (sc *Scanner) Scan() bool {
	if sc.err != nil {
		return false
	}
	for sc.s.Scan() {
		sc.line++
		text := sc.s.Text()
		if strings.TrimSpace(text) == "" {
			continue
		}
		word, vec, err := ParseLine(text)
		if err != nil {
			var ml *ErrMalformedLine
			if errors.As(err, &ml) {
				ml.Line = sc.line
			}
			sc.err = err
			return false
		}
		sc.word = word
		sc.vec = vec
		return true
	}
	sc.err = sc.s.Err()
	return false
}

// Entry returns the word and vector of the last successful Scan.
func (sc *Scanner) Entry() (string, vector.Vector) {
	return sc.word, sc.vec
}

// Line returns the 1-based number of the last line read.
func (sc *Scanner) Line() int { return sc.line }

// Err returns the first error encountered, or nil at clean end of input.
func (sc *Scanner) Err() error { return sc.err }
