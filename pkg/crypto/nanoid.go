package crypto

import (
	"crypto/rand"
	"errors"
	"math"
	"math/bits"
)

const (
	defaultAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789_-"
	defaultIDSize   = 22 // 22 * 6 = 132 bits (uuid is 128 bits) of entropy
	maxAlphabetSize = 255
	minAlphabetSize = 8
)

var (
	ErrAlphabetTooLong  = errors.New("alphabet must contain no more than 255 characters")
	ErrAlphabetTooShort = errors.New("alphabet must contain at least 8 characters")
	ErrAlphabetNotASCII = errors.New("alphabet must contain only ASCII characters")
)

// IDGenerator produces nanoid-style identifiers for sessions and submissions
type IDGenerator struct {
	alphabet string
	mask     byte
	size     int
}

// NewIDGenerator builds a generator over alphabet; an empty alphabet selects
// the URL-safe default.
func NewIDGenerator(alphabet string) (*IDGenerator, error) {
	if alphabet == "" {
		alphabet = defaultAlphabet
	}

	// Generate indexes by byte position
	for i := 0; i < len(alphabet); i++ {
		if alphabet[i] > 127 {
			return nil, ErrAlphabetNotASCII
		}
	}

	if len(alphabet) > maxAlphabetSize {
		return nil, ErrAlphabetTooLong
	}
	if len(alphabet) < minAlphabetSize {
		return nil, ErrAlphabetTooShort
	}

	return &IDGenerator{
		alphabet: alphabet,
		mask:     maskFor(len(alphabet)),
		size:     defaultIDSize,
	}, nil
}

// DefaultIDGenerator never fails because the default alphabet is valid
func DefaultIDGenerator() *IDGenerator {
	g, _ := NewIDGenerator("")
	return g
}

// maskFor returns the smallest all-ones bitmask covering every alphabet index
func maskFor(alphabetLen int) byte {
	return byte(1<<bits.Len(uint(alphabetLen-1)) - 1)
}

func (g *IDGenerator) Generate() (string, error) {
	alphabetLen := len(g.alphabet)
	step := int(math.Ceil(1.6 * float64(int(g.mask)*g.size) / float64(alphabetLen)))

	id := make([]byte, g.size)
	buffer := make([]byte, step)

	for position := 0; position < g.size; {
		if _, err := rand.Read(buffer); err != nil {
			return "", err
		}

		for i := 0; i < step && position < g.size; i++ {
			// Reject indexes past the alphabet to keep the distribution uniform
			if index := buffer[i] & g.mask; int(index) < alphabetLen {
				id[position] = g.alphabet[index]
				position++
			}
		}
	}

	return string(id), nil
}
