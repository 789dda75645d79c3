// Package markdown prepares free-form text for Telegram's MarkdownV2 parse mode.
package markdown

import (
	"errors"
	"strings"
	"unicode/utf16"
)

// ErrMalformedStructuredOutput is reported when a delimiter-separated model
// response does not have the expected number of fields.
var ErrMalformedStructuredOutput = errors.New("malformed structured output")

// reserved lists every character MarkdownV2 requires to be escaped outside of entities.
var reserved = [256]bool{
	'\\': true,
	'_':  true,
	'*':  true,
	'[':  true,
	']':  true,
	'(':  true,
	')':  true,
	'~':  true,
	'`':  true,
	'>':  true,
	'#':  true,
	'+':  true,
	'-':  true,
	'=':  true,
	'|':  true,
	'{':  true,
	'}':  true,
	'.':  true,
	'!':  true,
}

// restored are the escaped sequences turned back into markup after escaping,
// applied in order.
var restored = []struct{ from, to string }{
	{`\*`, "*"},
	{`\_`, "_"},
	{`\[`, "["},
	{`\]`, "]"},
}

// IsReserved reports whether c must be escaped in MarkdownV2 text.
func IsReserved(c byte) bool {
	return reserved[c]
}

// Escape prefixes every MarkdownV2 reserved character with a backslash, so the
// result renders literally.
func Escape(text string) string {
	var b strings.Builder
	b.Grow(len(text) + 8)
	for i := 0; i < len(text); i++ {
		ch := text[i]
		if reserved[ch] {
			b.WriteByte('\\')
		}
		b.WriteByte(ch)
	}
	return b.String()
}

// Sanitize escapes text for MarkdownV2 and then re-enables bold/italic markers
// and link brackets, so emphasis written by the model still renders.
//
// This is a heuristic, not a parser: unbalanced markers are left as they are
// and may make Telegram reject the entities. Sanitize is not idempotent and
// must be applied once per outbound string.
func Sanitize(text string) string {
	safe := Escape(text)
	for _, r := range restored {
		safe = strings.ReplaceAll(safe, r.from, r.to)
	}
	return safe
}

// Unescape removes the escaping backslashes added by Escape or Sanitize. It is
// used to turn a rejected MarkdownV2 message into plain text.
func Unescape(text string) string {
	if !strings.Contains(text, `\`) {
		return text
	}
	var b strings.Builder
	b.Grow(len(text))
	for i := 0; i < len(text); i++ {
		if text[i] == '\\' && i+1 < len(text) && reserved[text[i+1]] {
			i++
		}
		b.WriteByte(text[i])
	}
	return b.String()
}

// Split cuts text into parts of at most limit UTF-16 code units, the unit
// Telegram measures message length in. A part ends after the last newline,
// else after the last space, in its second half; otherwise it is cut at a
// rune boundary. A backslash is never separated from the character it
// escapes, so each part of a Sanitize result is valid on its own.
// Concatenating the parts gives back text.
func Split(text string, limit int) []string {
	if limit < 2 {
		limit = 2
	}

	var parts []string
	for text != "" {
		end := prefixEnd(text, limit)
		if end == len(text) {
			parts = append(parts, text)
			break
		}

		cut := end
		if i := strings.LastIndexByte(text[:end], '\n'); i >= end/2 {
			cut = i + 1
		} else if i := strings.LastIndexByte(text[:end], ' '); i >= end/2 {
			cut = i + 1
		}
		if endsInEscape(text[:cut]) && cut > 1 {
			cut--
		}

		parts = append(parts, text[:cut])
		text = text[cut:]
	}
	return parts
}

// prefixEnd returns the byte length of the longest prefix of text that fits
// in limit UTF-16 code units. limit is at least 2, so one rune always fits.
func prefixEnd(text string, limit int) int {
	units := 0
	for i, r := range text {
		n := utf16.RuneLen(r)
		if n < 0 {
			n = 1
		}
		if units+n > limit {
			return i
		}
		units += n
	}
	return len(text)
}

// endsInEscape reports whether s ends with an escaping backslash, that is an
// odd run of trailing backslashes.
func endsInEscape(s string) bool {
	n := 0
	for i := len(s) - 1; i >= 0 && s[i] == '\\'; i-- {
		n++
	}
	return n%2 == 1
}
