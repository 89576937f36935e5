package codec

import (
	"github.com/rivo/uniseg"
)

// splitSymbols cuts s into extended grapheme clusters.
func splitSymbols(s string) []string {
	symbols := make([]string, 0, len(s))
	state := -1
	var cluster string
	for len(s) > 0 {
		cluster, s, _, state = uniseg.FirstGraphemeClusterInString(s, state)
		symbols = append(symbols, cluster)
	}
	return symbols
}

// joins reports whether a followed by b does not segment back into exactly
// a and b.
func joins(a, b string) bool {
	first, rest, _, state := uniseg.FirstGraphemeClusterInString(a+b, -1)
	if first != a {
		return true
	}
	second, rest, _, _ := uniseg.FirstGraphemeClusterInString(rest, state)
	return second != b || rest != ""
}

// boundaryProbes holds one code point for every class the segmentation
// rules look at on the right side of a boundary.
var boundaryProbes = []string{
	"a",          // Other
	"\r",         // CR
	"\n",         // LF
	"\x00",       // Control
	"\u0301",     // Extend
	"\u200D",     // ZWJ
	"\U0001F1E6", // Regional_Indicator
	"\u0600",     // Prepend
	"\u0903",     // SpacingMark
	"\u1100",     // L
	"\u1161",     // V
	"\u11A8",     // T
	"\uAC00",     // LV
	"\uAC01",     // LVT
	"\u00A9",     // Extended_Pictographic
	"\u0915",     // Indic conjunct consonant
}

// trailingClass fingerprints how symbol behaves when something is written
// after it. Whether a boundary falls between two clusters depends only on
// the state left by the first one and the class of the next code point, so
// symbols with the same fingerprint join with exactly the same followers.
func trailingClass(symbol string) uint32 {
	var class uint32
	for i, probe := range boundaryProbes {
		if joins(symbol, probe) {
			class |= 1 << i
		}
	}
	return class
}

// findJoining returns true if any ordered pair of symbols, including a symbol
// repeated, fuses when concatenated. Only one symbol per trailing class is
// tried on the left, which keeps the check linear in the key size.
func findJoining(symbols []string) bool {
	leaders := make(map[uint32]string)
	for _, s := range symbols {
		class := trailingClass(s)
		if _, ok := leaders[class]; !ok {
			leaders[class] = s
		}
	}

	for _, a := range leaders {
		for _, b := range symbols {
			if joins(a, b) {
				return true
			}
		}
	}
	return false
}
