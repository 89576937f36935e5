package codec_test

import (
	"errors"
	"fmt"
	"log"

	"github.com/bbkr/squishyid/pkg/codec"
)

// ExampleNew demonstrates shortening an ID with a shuffled alphanumeric key
func ExampleNew() {
	s, err := codec.New("2BjLhRduC6Tb8Q5cEk9oxnFaWUDpOlGAgwYzNre7tI4yqPvXm0KSV1fJs3ZiHM")
	if err != nil {
		log.Fatal(err)
	}

	encoded := s.Encode(48888851145)
	fmt.Println(encoded)

	decoded, err := s.Decode(encoded)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(decoded)

	// Output:
	// 1FN7Ab
	// 48888851145
}

// ExampleSquishyID_Encode_emoji demonstrates a key made of emoji
func ExampleSquishyID_Encode_emoji() {
	s, err := codec.New("😀😁😂😃😄😅😆😇😈😉😊😋😌😍😎😏😐😑😒😓😔😕😖😗😘😙😚😛😜😝😞😟😠😡😢😣😤😥😦😧😨😩😪😫😬😭😮😯😰😱😲😳😴😵😶😷")
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(s.Radix())
	fmt.Println(s.Encode(48888851145))

	// Output:
	// 56
	// 😁😠😫😈😵😇😁
}

// ExampleSquishyID_Encode_zero demonstrates that zero is the first key character
func ExampleSquishyID_Encode_zero() {
	s, err := codec.New("xyz")
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(s.Encode(0))
	fmt.Println(s.Encode(3))

	// Output:
	// x
	// yx
}

// ExampleSquishyID_Decode_errors demonstrates error handling
func ExampleSquishyID_Decode_errors() {
	s, err := codec.New("0123456789ABCDEF")
	if err != nil {
		log.Fatal(err)
	}

	for _, encoded := range []string{"", "12G", "10000000000000000"} {
		_, err := s.Decode(encoded)
		fmt.Printf("%q: %v\n", encoded, err)
	}

	_, err = s.Decode("FFFFFFFFFFFFFFFFF")
	fmt.Println(errors.Is(err, codec.ErrDecodeOverflow))

	// Output:
	// "": Encoded value must contain at least 1 character.
	// "12G": Encoded value contains character not present in key.
	// "10000000000000000": Encoded value too big to decode.
	// true
}

// ExampleNew_errors demonstrates key validation
func ExampleNew_errors() {
	for _, key := range []string{"a", "aab"} {
		_, err := codec.New(key)
		fmt.Printf("%q: %v\n", key, err)
	}

	// Output:
	// "a": Key must contain at least 2 characters.
	// "aab": Key must contain unique characters.
}
