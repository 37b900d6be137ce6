// internal/cw/symbol.go
// Package cw recovers Morse symbols from a conditioned audio envelope.
package cw

import (
	"strings"

	"github.com/ColonelBlimp/cwtranslate/internal/codec"
)

// Symbol is one token of the classified stream.
type Symbol int

const (
	Dot Symbol = iota
	Dash
	LetterGap
	WordGap
)

// String returns the rendering of s: ".", "-", " " or " / ".
func (s Symbol) String() string {
	switch s {
	case Dot:
		return string(codec.Dot)
	case Dash:
		return string(codec.Dash)
	case LetterGap:
		return codec.LetterSeparator
	case WordGap:
		return codec.WordSeparator
	}
	return ""
}

// Render joins a symbol stream into a Morse string.
func Render(symbols []Symbol) string {
	var b strings.Builder
	for _, s := range symbols {
		b.WriteString(s.String())
	}
	return b.String()
}

// Run is a maximal stretch of equal activity.
type Run struct {
	On     bool
	Length int
}
