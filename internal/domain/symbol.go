package domain

// AlphabetSize is the number of symbols in the cipher alphabet: A-Z plus space.
const AlphabetSize = 27

// Space is the only non-letter symbol and carries the highest value.
const Space byte = ' '

// IsSymbol reports whether b belongs to the cipher alphabet.
func IsSymbol(b byte) bool {
	return b == Space || (b >= 'A' && b <= 'Z')
}

// SymbolValue maps a symbol to 0..25 for letters and 26 for space.
func SymbolValue(b byte) (int, bool) {
	switch {
	case b == Space:
		return AlphabetSize - 1, true
	case b >= 'A' && b <= 'Z':
		return int(b - 'A'), true
	default:
		return 0, false
	}
}

// SymbolFromValue is the inverse of SymbolValue. v must be in [0, AlphabetSize).
func SymbolFromValue(v int) byte {
	if v == AlphabetSize-1 {
		return Space
	}
	return byte('A' + v)
}

// FirstInvalidSymbol returns the index of the first byte outside the alphabet, or -1.
func FirstInvalidSymbol(text []byte) int {
	for i, b := range text {
		if !IsSymbol(b) {
			return i
		}
	}
	return -1
}
