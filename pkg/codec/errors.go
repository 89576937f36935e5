package codec

import "errors"

// The messages below are part of the public contract and match the wording
// used by the other SquishyID implementations.
//
//nolint:staticcheck // ST1005: capitalized messages are intentional
var (
	// Key errors, returned by New.
	ErrInvalidKeyLength       = errors.New("Key must contain at least 2 characters.")
	ErrDuplicateKeyCharacters = errors.New("Key must contain unique characters.")
	ErrJoiningKeyCharacters   = errors.New("Key must contain characters that do not join with each other.")

	// Input errors, returned by Decode.
	ErrEmptyInput       = errors.New("Encoded value must contain at least 1 character.")
	ErrUnknownCharacter = errors.New("Encoded value contains character not present in key.")
	ErrDecodeOverflow   = errors.New("Encoded value too big to decode.")
)

// IsInputError reports whether err was caused by a malformed encoded value
// rather than by an invalid key.
func IsInputError(err error) bool {
	return errors.Is(err, ErrEmptyInput) ||
		errors.Is(err, ErrUnknownCharacter) ||
		errors.Is(err, ErrDecodeOverflow)
}
