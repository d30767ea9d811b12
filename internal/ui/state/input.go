package state

import (
	"strings"
	"unicode"
)

// Input is an editable single-line buffer with a rune caret.
type Input struct {
	runes  []rune
	cursor int
}

func (in *Input) Value() string {
	return string(in.runes)
}

func (in *Input) Len() int {
	return len(in.runes)
}

// Cursor returns the caret position as a rune offset.
func (in *Input) Cursor() int {
	if in.cursor < 0 {
		return 0
	}
	if in.cursor > len(in.runes) {
		return len(in.runes)
	}
	return in.cursor
}

// Insert adds text at the caret.
func (in *Input) Insert(text string) bool {
	insert := []rune(text)
	if len(insert) == 0 {
		return false
	}
	pos := in.Cursor()
	updated := make([]rune, 0, len(in.runes)+len(insert))
	updated = append(updated, in.runes[:pos]...)
	updated = append(updated, insert...)
	updated = append(updated, in.runes[pos:]...)
	in.runes = updated
	in.cursor = pos + len(insert)
	return true
}

// DeleteBackward removes the rune before the caret.
func (in *Input) DeleteBackward() bool {
	pos := in.Cursor()
	if pos == 0 {
		return false
	}
	in.runes = append(in.runes[:pos-1], in.runes[pos:]...)
	in.cursor = pos - 1
	return true
}

// DeleteWordBackward removes the word before the caret along with any
// whitespace between it and the caret.
func (in *Input) DeleteWordBackward() bool {
	pos := in.Cursor()
	if pos == 0 {
		return false
	}
	i := pos
	for i > 0 && unicode.IsSpace(in.runes[i-1]) {
		i--
	}
	for i > 0 && !unicode.IsSpace(in.runes[i-1]) {
		i--
	}
	in.runes = append(in.runes[:i], in.runes[pos:]...)
	in.cursor = i
	return true
}

func (in *Input) MoveLeft() bool {
	pos := in.Cursor()
	if pos == 0 {
		return false
	}
	in.cursor = pos - 1
	return true
}

func (in *Input) MoveRight() bool {
	pos := in.Cursor()
	if pos >= len(in.runes) {
		return false
	}
	in.cursor = pos + 1
	return true
}

func (in *Input) MoveStart() bool {
	if in.Cursor() == 0 {
		return false
	}
	in.cursor = 0
	return true
}

func (in *Input) MoveEnd() bool {
	if in.Cursor() == len(in.runes) {
		return false
	}
	in.cursor = len(in.runes)
	return true
}

// Clear empties the buffer.
func (in *Input) Clear() bool {
	if len(in.runes) == 0 {
		return false
	}
	in.runes = nil
	in.cursor = 0
	return true
}

// Drain returns the value exactly as typed and clears the buffer. A blank
// buffer is left untouched and reported as false.
func (in *Input) Drain() (string, bool) {
	value := in.Value()
	if strings.TrimSpace(value) == "" {
		return "", false
	}
	in.Clear()
	return value, true
}
