// internal/codec/codec.go
// Package codec translates between plain text and Morse code.
package codec

import (
	"fmt"
	"strings"
	"unicode"
)

// Morse rendering alphabet
const (
	Dot             = '.'
	Dash            = '-'
	LetterSeparator = " "
	WordSeparator   = " / "

	// MaxCodeLength is the longest code in the table (digits are five elements)
	MaxCodeLength = 5
)

// morseTree is the binary tree for Morse code lookup.
// Left branch = dot, Right branch = dash.
// Index 1 is the root, parent at i, dot child at 2i, dash child at 2i+1.
// Only A-Z and 0-9 are populated; every other slot is 0.
var morseTree = [64]rune{
	0,   // 0: unused
	0,   // 1: root
	'E', // 2: .
	'T', // 3: -
	'I', // 4: ..
	'A', // 5: .-
	'N', // 6: -.
	'M', // 7: --
	'S', // 8: ...
	'U', // 9: ..-
	'R', // 10: .-.
	'W', // 11: .--
	'D', // 12: -..
	'K', // 13: -.-
	'G', // 14: --.
	'O', // 15: ---
	'H', // 16: ....
	'V', // 17: ...-
	'F', // 18: ..-.
	0,   // 19: ..--
	'L', // 20: .-..
	0,   // 21: .-.-
	'P', // 22: .--.
	'J', // 23: .---
	'B', // 24: -...
	'X', // 25: -..-
	'C', // 26: -.-.
	'Y', // 27: -.--
	'Z', // 28: --..
	'Q', // 29: --.-
	0,   // 30: ---.
	0,   // 31: ----
	'5', // 32: .....
	'4', // 33: ....-
	0,   // 34: ...-.
	'3', // 35: ...--
	0,   // 36: ..-..
	0,   // 37: ..-.-
	0,   // 38: ..--.
	'2', // 39: ..---
	0,   // 40: .-...
	0,   // 41: .-..-
	0,   // 42: .-.-.
	0,   // 43: .-.--
	0,   // 44: .--..
	0,   // 45: .--.-
	0,   // 46: .---.
	'1', // 47: .----
	'6', // 48: -....
	0,   // 49: -...-
	0,   // 50: -..-.
	0,   // 51: -..--
	0,   // 52: -.-..
	0,   // 53: -.-.-
	0,   // 54: -.--.
	0,   // 55: -.---
	'7', // 56: --...
	0,   // 57: --..-
	0,   // 58: --.-.
	0,   // 59: --.--
	'8', // 60: ---..
	0,   // 61: ---.-
	'9', // 62: ----.
	'0', // 63: -----
}

// codes is the forward table, derived from morseTree so both directions
// always agree.
var codes = buildCodes()

func buildCodes() map[rune]string {
	m := make(map[rune]string, 36)
	for idx := 2; idx < len(morseTree); idx++ {
		r := morseTree[idx]
		if r == 0 {
			continue
		}
		if _, dup := m[r]; dup {
			panic(fmt.Sprintf("codec: %q appears twice in the Morse tree", r))
		}
		m[r] = treePath(idx)
	}
	return m
}

// treePath spells out the route from the root to idx: the bits below the
// leading 1 of idx, 0 = dot, 1 = dash.
func treePath(idx int) string {
	depth := 0
	for n := idx; n > 1; n >>= 1 {
		depth++
	}
	var b strings.Builder
	for shift := depth - 1; shift >= 0; shift-- {
		if idx>>shift&1 == 1 {
			b.WriteByte(Dash)
		} else {
			b.WriteByte(Dot)
		}
	}
	return b.String()
}

// Lookup returns the character for a single Morse code token.
func Lookup(code string) (rune, bool) {
	if code == "" || len(code) > MaxCodeLength {
		return 0, false
	}
	idx := 1
	for i := 0; i < len(code); i++ {
		switch code[i] {
		case Dot:
			idx = idx * 2
		case Dash:
			idx = idx*2 + 1
		default:
			return 0, false
		}
	}
	r := morseTree[idx]
	return r, r != 0
}

// Code returns the Morse code for r. Lower-case letters are accepted.
func Code(r rune) (string, bool) {
	c, ok := codes[unicode.ToUpper(r)]
	return c, ok
}

// Encode converts text to Morse. Characters outside A-Z and 0-9 are
// skipped. Letters are separated by a space and words by " / ".
func Encode(text string) string {
	words := strings.Fields(text)
	out := make([]string, 0, len(words))
	for _, word := range words {
		letters := make([]string, 0, len(word))
		for _, r := range word {
			if c, ok := Code(r); ok {
				letters = append(letters, c)
			}
		}
		out = append(out, strings.Join(letters, LetterSeparator))
	}
	return strings.Join(out, WordSeparator)
}

// Decode converts Morse to upper-case text. Tokens with no table entry
// decode to nothing.
func Decode(morse string) string {
	words := strings.Split(strings.TrimSpace(morse), WordSeparator)
	out := make([]string, 0, len(words))
	for _, word := range words {
		var b strings.Builder
		for _, token := range strings.Fields(word) {
			if r, ok := Lookup(token); ok {
				b.WriteRune(r)
			}
		}
		out = append(out, b.String())
	}
	return strings.Join(out, " ")
}

// Entry is one row of the code table.
type Entry struct {
	Char rune
	Code string
}

// Entries returns the table with letters first, then digits.
func Entries() []Entry {
	entries := make([]Entry, 0, len(codes))
	for r := 'A'; r <= 'Z'; r++ {
		entries = append(entries, Entry{Char: r, Code: codes[r]})
	}
	for r := '0'; r <= '9'; r++ {
		entries = append(entries, Entry{Char: r, Code: codes[r]})
	}
	return entries
}
