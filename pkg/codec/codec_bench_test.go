//go:build bench
// +build bench

package codec

import (
	"math"
	"testing"
)

func BenchmarkNew(b *testing.B) {
	benchmarks := []struct {
		name string
		key  string
	}{
		{name: "alphanumeric", key: docKey},
		{name: "emoji", key: emojiKey},
	}

	for _, bm := range benchmarks {
		b.Run(bm.name, func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				if _, err := New(bm.key); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkSquishyID_Encode(b *testing.B) {
	s, err := New(docKey)
	if err != nil {
		b.Fatal(err)
	}

	benchmarks := []struct {
		name  string
		value uint64
	}{
		{name: "small", value: 42},
		{name: "medium", value: 48888851145},
		{name: "max", value: math.MaxUint64},
	}

	for _, bm := range benchmarks {
		b.Run(bm.name, func(b *testing.B) {
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				_ = s.Encode(bm.value)
			}
		})
	}
}

func BenchmarkSquishyID_Decode(b *testing.B) {
	s, err := New(docKey)
	if err != nil {
		b.Fatal(err)
	}
	encoded := s.Encode(math.MaxUint64)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := s.Decode(encoded); err != nil {
			b.Fatal(err)
		}
	}
}
