// Package shortid issues short URL-safe identifiers that are unique for
// the lifetime of one Generator. The alphabet and length match what the
// chess-study plugin already stores, so generated ids are interchangeable
// with existing documents.
package shortid

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
)

// Alphabet is base57: alphanumerics minus the lookalikes 0, O, 1, l, I.
const Alphabet = "23456789ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz"

// Length of every issued id. 57^21 possible values makes collisions within
// a single document vanishingly rare; collisions are retried regardless.
const Length = 21

const maxAttempts = 64

// ErrExhausted is returned when no unused id could be found within the
// retry bound. With the default alphabet and length it is unreachable in
// practice; it exists so callers can treat the condition as fatal for the
// document at hand.
var ErrExhausted = errors.New("shortid: no unused id after retries")

// Generator issues ids and remembers every id it has handed out.
// It is not safe for concurrent use; scope one per conversion run.
type Generator struct {
	alphabet string
	length   int
	issued   map[string]struct{}
}

// NewGenerator returns a Generator with the chess-study alphabet and length.
func NewGenerator() *Generator {
	return newGenerator(Alphabet, Length)
}

func newGenerator(alphabet string, length int) *Generator {
	return &Generator{
		alphabet: alphabet,
		length:   length,
		issued:   make(map[string]struct{}),
	}
}

// Next returns an id distinct from every id this Generator has issued.
func (g *Generator) Next() (string, error) {
	for attempt := 0; attempt < maxAttempts; attempt++ {
		id, err := g.random()
		if err != nil {
			return "", err
		}
		if _, dup := g.issued[id]; dup {
			continue
		}
		g.issued[id] = struct{}{}
		return id, nil
	}
	return "", ErrExhausted
}

// Issued reports how many ids have been handed out so far.
func (g *Generator) Issued() int { return len(g.issued) }

func (g *Generator) random() (string, error) {
	max := big.NewInt(int64(len(g.alphabet)))
	buf := make([]byte, g.length)
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("shortid: read entropy: %w", err)
		}
		buf[i] = g.alphabet[n.Int64()]
	}
	return string(buf), nil
}
