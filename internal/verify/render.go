package verify

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
)

// Glyphs substituted for whitespace when a mismatch differs only in
// whitespace; without them the two sides of the diff look identical.
const (
	glyphSpace = '·'
	glyphTab   = '⇥'
	glyphCR    = '␍'
	glyphLF    = '␊'
)

// renderMismatch renders an expected/actual pair, one per line, quoted.
// When the two strings differ only in whitespace, the whitespace is made
// visible on both sides.
func renderMismatch(expected, actual string, colorize bool) string {
	if stripWhitespace(expected) == stripWhitespace(actual) {
		expected = visibleWhitespace(expected)
		actual = visibleWhitespace(actual)
	}

	exp := fmt.Sprintf("  expected: %q", expected)
	act := fmt.Sprintf("  actual:   %q", actual)
	if colorize {
		exp = color.GreenString("%s", exp)
		act = color.RedString("%s", act)
	}
	return exp + "\n" + act
}

// renderBlock renders an expected/actual pair of pre-rendered multi-line
// blocks, unquoted.
func renderBlock(expected, actual string, colorize bool) string {
	exp := "  expected:" + expected
	act := "  actual:" + actual
	if colorize {
		exp = color.GreenString("%s", exp)
		act = color.RedString("%s", act)
	}
	return exp + "\n" + act
}

// stripWhitespace removes every whitespace character, for detecting
// whitespace-only mismatches.
func stripWhitespace(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case ' ', '\t', '\r', '\n':
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// visibleWhitespace substitutes a visible glyph for each whitespace
// character.
func visibleWhitespace(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case ' ':
			b.WriteRune(glyphSpace)
		case '\t':
			b.WriteRune(glyphTab)
		case '\r':
			b.WriteRune(glyphCR)
		case '\n':
			b.WriteRune(glyphLF)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// renderList renders labeled items as an aligned, indented block. Labels
// are padded by display width so multi-byte category names line up.
func renderList(items [][2]string) string {
	width := 0
	for _, it := range items {
		if w := runewidth.StringWidth(it[0]); w > width {
			width = w
		}
	}
	var b strings.Builder
	for _, it := range items {
		fmt.Fprintf(&b, "    %s  %s\n", runewidth.FillRight(it[0], width), it[1])
	}
	return strings.TrimRight(b.String(), "\n")
}
