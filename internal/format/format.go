// Package format turns raw message payloads into display strings.
package format

import (
	"encoding/base64"
	"encoding/hex"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Kind selects how payload bytes are rendered.
type Kind int

const (
	Auto Kind = iota
	Text
	Hex
	Base64
	Escape
)

var kindNames = [...]string{
	Auto:   "auto",
	Text:   "text",
	Hex:    "hex",
	Base64: "base64",
	Escape: "escape",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// Kinds returns the accepted format names.
func Kinds() []string {
	out := make([]string, len(kindNames))
	copy(out, kindNames[:])
	return out
}

// ParseKind resolves a format name, ignoring case.
func ParseKind(name string) (Kind, bool) {
	name = strings.TrimSpace(name)
	for i, candidate := range kindNames {
		if strings.EqualFold(candidate, name) {
			return Kind(i), true
		}
	}
	return Auto, false
}

// Format renders payload with kind and reports the kind actually used. Text
// and Escape fall back to Hex when payload is not valid UTF-8.
func Format(kind Kind, payload []byte) (Kind, string) {
	switch kind {
	case Hex:
		return Hex, hex.EncodeToString(payload)
	case Base64:
		return Base64, base64.StdEncoding.EncodeToString(payload)
	case Text:
		if !utf8.Valid(payload) {
			return Hex, hex.EncodeToString(payload)
		}
		return Text, escapeNonPrintable(string(payload))
	case Escape:
		if !utf8.Valid(payload) {
			return Hex, hex.EncodeToString(payload)
		}
		return Escape, escapeASCII(string(payload))
	default:
		if printableASCII(payload) {
			return Text, string(payload)
		}
		return Format(Escape, payload)
	}
}

// String is Format without the resolved kind.
func String(kind Kind, payload []byte) string {
	_, out := Format(kind, payload)
	return out
}

func printableASCII(payload []byte) bool {
	for _, b := range payload {
		if b < 0x20 || b > 0x7e {
			return false
		}
	}
	return true
}

// escapeNonPrintable keeps printable runes and escapes the rest.
func escapeNonPrintable(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if r == ' ' || unicode.IsPrint(r) {
			b.WriteRune(r)
			continue
		}
		b.WriteString(unquote(strconv.QuoteRune(r)))
	}
	return b.String()
}

// escapeASCII escapes everything outside printable ASCII.
func escapeASCII(text string) string {
	return unquote(strconv.QuoteToASCII(text))
}

func unquote(quoted string) string {
	if len(quoted) >= 2 {
		return quoted[1 : len(quoted)-1]
	}
	return quoted
}
