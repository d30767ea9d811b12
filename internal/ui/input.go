package ui

import (
	"unicode"

	"github.com/atomicstack/mqtt-analyzer/internal/logging/events"
	uistate "github.com/atomicstack/mqtt-analyzer/internal/ui/state"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

func (m *Model) updateCaretModel(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	m.caret, cmd = m.caret.Update(msg)
	return cmd
}

// handleTextInput applies editing keys to in. It reports whether the key was
// consumed.
func (m *Model) handleTextInput(in *uistate.Input, panel string, key tea.KeyMsg) bool {
	before := in.Cursor()
	consumed := false
	switch key.String() {
	case "ctrl+u":
		if consumed = in.Clear(); consumed {
			events.Input.Cleared(panel)
		}
	case "ctrl+w", "alt+backspace":
		if consumed = in.DeleteWordBackward(); consumed {
			events.Input.Backspace(panel, in.Value())
		}
	case "ctrl+a", "home":
		consumed = in.MoveStart()
	case "ctrl+e", "end":
		consumed = in.MoveEnd()
	default:
		switch key.Type {
		case tea.KeyBackspace, tea.KeyCtrlH:
			if consumed = in.DeleteBackward(); consumed {
				events.Input.Backspace(panel, in.Value())
			}
		case tea.KeyLeft:
			consumed = in.MoveLeft()
		case tea.KeyRight:
			consumed = in.MoveRight()
		case tea.KeySpace:
			consumed = m.appendText(in, panel, " ")
		case tea.KeyRunes:
			if key.Alt || len(key.Runes) == 0 {
				return false
			}
			for _, r := range key.Runes {
				if unicode.IsControl(r) {
					return false
				}
			}
			consumed = m.appendText(in, panel, string(key.Runes))
		}
	}
	if consumed {
		if before != in.Cursor() {
			m.caretDirty = true
		}
		m.errMsg = ""
	}
	return consumed
}

func (m *Model) appendText(in *uistate.Input, panel, text string) bool {
	if !in.Insert(text) {
		return false
	}
	events.Input.Append(panel, in.Value())
	return true
}

// inputLine renders a prompt and the input value. The caret is only drawn
// while the input is focused.
func (m *Model) inputLine(prompt, placeholder string, in *uistate.Input, focused bool) string {
	if styles.InputPrompt != nil {
		prompt = styles.InputPrompt.Render(prompt)
	}
	render := func(style *lipgloss.Style, value string) string {
		if style == nil || value == "" {
			return value
		}
		return style.Render(value)
	}
	runes := []rune(in.Value())
	if len(runes) == 0 {
		if !focused {
			return prompt + render(styles.InputPlaceholder, placeholder)
		}
		head, rest := " ", ""
		if ph := []rune(placeholder); len(ph) > 0 {
			head, rest = string(ph[0]), string(ph[1:])
		}
		return prompt + m.renderCaret(head, styles.InputPlaceholder) + render(styles.InputPlaceholder, rest)
	}
	if !focused {
		return prompt + render(styles.Input, string(runes))
	}
	pos := in.Cursor()
	caretRune := " "
	after := ""
	if pos < len(runes) {
		caretRune = string(runes[pos])
		after = render(styles.Input, string(runes[pos+1:]))
	}
	return prompt + render(styles.Input, string(runes[:pos])) + m.renderCaret(caretRune, styles.Input) + after
}

func (m *Model) renderCaret(char string, text *lipgloss.Style) string {
	if char == "" {
		char = " "
	}
	m.caret.SetChar(char)
	base := lipgloss.NewStyle()
	if text != nil {
		base = text.Copy()
	}
	base = base.Inline(true)
	if m.caret.Blink {
		return base.Render(char)
	}
	if styles.Cursor != nil {
		return base.Inherit(styles.Cursor.Copy().Inline(true)).Render(char)
	}
	return base.Reverse(true).Render(char)
}
