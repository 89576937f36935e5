// Package codec shortens and obfuscates unsigned 64-bit IDs at the same time.
//
// A SquishyID is built from a key: an ordered alphabet of at least two unique
// characters. Encoding writes a number in base len(key) using the key's
// characters as digits, so the output is made exclusively of characters from
// the key, and a longer key gives a shorter output.
//
// Useful for:
//   - Hiding real database IDs in URLs or REST APIs.
//   - Saving space where it is limited, like in SMS or push messages.
//
// # Usage
//
//	s, err := codec.New("2BjLhRduC6Tb8Q5cEk9oxnFaWUDpOlGAgwYzNre7tI4yqPvXm0KSV1fJs3ZiHM")
//	if err != nil {
//	    return err
//	}
//
//	encoded := s.Encode(48888851145) // "1FN7Ab"
//
//	decoded, err := s.Decode("1FN7Ab") // 48888851145
//	if err != nil {
//	    return err
//	}
//
// # Choosing a key
//
//   - For SMS messages use a shuffled a-z, A-Z, 0-9 range.
//     1234567890 becomes something like "380FQs".
//   - For case insensitive file systems use a shuffled a-z range.
//     1234567890 becomes something like "iszbmfx".
//   - Emoji work too, 1234567890 can become "😣😄😹😧😋😳".
//
// # Characters
//
// A character is one user-perceived character (an extended grapheme
// cluster), not a byte and not necessarily a single code point. "ä", "😀" and
// "👨‍👩‍👧" are each one digit. Keys whose characters would merge into a
// different character when written next to each other, such as a lone
// combining accent, are rejected because their encodings could not be read
// back.
//
// # Errors
//
// New and Decode return one of the sentinel errors declared in this package.
// They are never wrapped, so both errors.Is and comparing Error() against the
// documented message work.
//
// # Security
//
// This is not encryption. There is no consistency check and the key is easy
// to reverse engineer from a small number of encoded/decoded samples. Treat
// it as really fast obfuscation only.
//
// # Thread Safety
//
// A SquishyID is immutable after New returns and is safe for concurrent use.
package codec
