package codec

import (
	"math"
	"math/bits"
	"strings"

	"github.com/rivo/uniseg"
)

// maxDigits is the length of math.MaxUint64 in base 2, the smallest radix.
const maxDigits = 64

// SquishyID encodes and decodes uint64 values using the characters of a key
type SquishyID struct {
	radix     uint64         // Number of characters in the key
	alphabet  []string       // Position to character
	positions map[string]int // Character to position
	width     int            // Widest character in bytes
}

// New constructs a SquishyID from key.
//
// The key must consist of at least two unique characters. The longer the key,
// the shorter the encoded values. Encoded values are made exclusively out of
// characters from the key.
func New(key string) (*SquishyID, error) {
	alphabet := splitSymbols(key)
	if len(alphabet) < 2 {
		return nil, ErrInvalidKeyLength
	}

	positions := make(map[string]int, len(alphabet))
	width := 0
	for position, character := range alphabet {
		if _, exists := positions[character]; exists {
			return nil, ErrDuplicateKeyCharacters
		}
		positions[character] = position
		width = max(width, len(character))
	}

	if findJoining(alphabet) {
		return nil, ErrJoiningKeyCharacters
	}

	return &SquishyID{
		radix:     uint64(len(alphabet)),
		alphabet:  alphabet,
		positions: positions,
		width:     width,
	}, nil
}

// Encode writes value in base Radix() using characters from the key, most
// significant character first. Zero encodes to the first key character.
func (s *SquishyID) Encode(value uint64) string {
	var digits [maxDigits]int
	pos := len(digits)

	for {
		pos--
		digits[pos] = int(value % s.radix)
		value /= s.radix

		if value == 0 {
			break
		}
	}

	var b strings.Builder
	b.Grow((len(digits) - pos) * s.width)
	for _, digit := range digits[pos:] {
		b.WriteString(s.alphabet[digit])
	}
	return b.String()
}

// Decode reads a value written by Encode.
//
// Leading zero characters are accepted, so Decode is not limited to the
// canonical strings Encode produces. It returns ErrEmptyInput,
// ErrUnknownCharacter or ErrDecodeOverflow when encoded cannot be read.
func (s *SquishyID) Decode(encoded string) (uint64, error) {
	if encoded == "" {
		return 0, ErrEmptyInput
	}

	var (
		decoded   uint64
		character string
		carry     uint64
	)
	state := -1
	for len(encoded) > 0 {
		character, encoded, _, state = uniseg.FirstGraphemeClusterInString(encoded, state)

		position, ok := s.positions[character]
		if !ok {
			return 0, ErrUnknownCharacter
		}

		hi, lo := bits.Mul64(decoded, s.radix)
		if hi != 0 {
			return 0, ErrDecodeOverflow
		}
		decoded, carry = bits.Add64(lo, uint64(position), 0)
		if carry != 0 {
			return 0, ErrDecodeOverflow
		}
	}

	return decoded, nil
}

// Valid reports whether Decode would accept encoded.
func (s *SquishyID) Valid(encoded string) bool {
	_, err := s.Decode(encoded)
	return err == nil
}

// Radix returns the number of characters in the key.
func (s *SquishyID) Radix() int {
	return len(s.alphabet)
}

// Key returns the key the SquishyID was built from.
func (s *SquishyID) Key() string {
	return strings.Join(s.alphabet, "")
}

// Symbols returns a copy of the key split into characters, in digit order.
func (s *SquishyID) Symbols() []string {
	return append([]string(nil), s.alphabet...)
}

// MaxLength returns the number of characters in the longest canonical
// encoding, the one of math.MaxUint64.
func (s *SquishyID) MaxLength() int {
	n := 0
	for value := uint64(math.MaxUint64); value > 0; value /= s.radix {
		n++
	}
	return n
}
