// Package roomid generates the short opaque identifiers players use to join
// a room.
package roomid

import (
	"crypto/rand"
	"fmt"
	"strings"
)

// Crockford's base32, lower case
const alphabet = "0123456789abcdefghjkmnpqrstvwxyz"

// Length of an encoded id: 80 random bits in 5-bit groups
const Length = 16

// RandSource interface for dependency injection of randomness
type RandSource interface {
	IntN(n int) int
}

// Generator produces room ids
type Generator struct {
	randSource RandSource
}

// NewGenerator creates a generator. A nil source uses crypto/rand.
func NewGenerator(randSource RandSource) *Generator {
	return &Generator{randSource: randSource}
}

// Generate creates a new room id from crypto/rand
func Generate() string {
	return NewGenerator(nil).Generate()
}

// Generate creates a new room id using the generator's RandSource
func (g *Generator) Generate() string {
	var raw [10]byte
	if g.randSource != nil {
		for i := range raw {
			raw[i] = byte(g.randSource.IntN(256))
		}
	} else if _, err := rand.Read(raw[:]); err != nil {
		panic("failed to generate random bytes: " + err.Error())
	}
	return encode(raw)
}

// encode packs 80 bits into 16 base32 characters, most significant first
func encode(raw [10]byte) string {
	var out [Length]byte
	var acc uint64
	bits := 0
	n := 0
	for _, b := range raw {
		acc = acc<<8 | uint64(b)
		bits += 8
		for bits >= 5 {
			bits -= 5
			out[n] = alphabet[(acc>>uint(bits))&0x1f]
			n++
		}
	}
	return string(out[:])
}

// Normalize lower-cases an id and maps the characters Crockford's alphabet
// treats as ambiguous (i, l, o) onto their digits.
func Normalize(id string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case 'I', 'i', 'L', 'l':
			return '1'
		case 'O', 'o':
			return '0'
		}
		if r >= 'A' && r <= 'Z' {
			return r + ('a' - 'A')
		}
		return r
	}, strings.TrimSpace(id))
}

// Validate checks that id is a well-formed room id
func Validate(id string) error {
	if len(id) != Length {
		return fmt.Errorf("room ID must be exactly %d characters, got %d", Length, len(id))
	}
	for i, char := range id {
		if !strings.ContainsRune(alphabet, char) {
			return fmt.Errorf("invalid character %c at position %d", char, i)
		}
	}
	return nil
}
