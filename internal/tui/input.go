package tui

import (
	"strings"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"
)

// maxInputLen is the maximum number of runes allowed in chat and form inputs.
const maxInputLen = 2000

// editKey applies a keystroke to an inline text input. Typed and pasted
// runes are appended up to maxInputLen; backspace removes one rune. Every
// other key leaves text unchanged.
func editKey(text string, msg tea.KeyMsg) string {
	switch msg.Type {
	case tea.KeyBackspace:
		if text == "" {
			return text
		}
		_, size := utf8.DecodeLastRuneInString(text)
		return text[:len(text)-size]
	case tea.KeySpace:
		return appendRunes(text, []rune{' '})
	case tea.KeyRunes:
		if msg.Alt {
			return text
		}
		return appendRunes(text, msg.Runes)
	}
	return text
}

func appendRunes(text string, runes []rune) string {
	room := maxInputLen - utf8.RuneCountInString(text)
	if room <= 0 {
		return text
	}
	if len(runes) > room {
		runes = runes[:room]
	}
	return text + strings.Map(func(r rune) rune {
		if r == '\n' || r == '\r' {
			return ' '
		}
		return r
	}, string(runes))
}

// truncateToHeight limits output to maxLines newline-delimited lines.
// Returns the original string if it fits or maxLines is <= 0.
func truncateToHeight(s string, maxLines int) string {
	if maxLines <= 0 {
		return s
	}
	n := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			n++
			if n >= maxLines {
				return s[:i+1]
			}
		}
	}
	return s
}

// field is one labelled row in a form. A field with options is a picker
// cycled with left/right; otherwise it is free text.
type field struct {
	label       string
	value       string
	placeholder string
	secret      bool
	options     []string
	choice      int
}

func (f field) text() string {
	if len(f.options) > 0 {
		return f.options[f.choice]
	}
	return f.value
}

// form is a vertical list of fields with one focused.
type form struct {
	fields []field
	focus  int
}

func newForm(fields ...field) form {
	return form{fields: fields}
}

// value returns the trimmed content of field i.
func (f form) value(i int) string {
	return strings.TrimSpace(f.fields[i].text())
}

// update moves focus (tab, shift+tab, up, down), cycles pickers (left,
// right) and edits the focused text field.
func (f form) update(msg tea.KeyMsg) form {
	switch msg.String() {
	case "tab", "down":
		f.focus = (f.focus + 1) % len(f.fields)
		return f
	case "shift+tab", "up":
		f.focus = (f.focus - 1 + len(f.fields)) % len(f.fields)
		return f
	}

	fl := f.fields[f.focus]
	if n := len(fl.options); n > 0 {
		switch msg.String() {
		case "right", "l", " ":
			fl.choice = (fl.choice + 1) % n
		case "left", "h":
			fl.choice = (fl.choice - 1 + n) % n
		}
	} else {
		fl.value = editKey(fl.value, msg)
	}
	f.fields[f.focus] = fl
	return f
}

// pick selects option value in picker i. Unknown values are ignored.
func (f form) pick(i int, value string) form {
	fields := make([]field, len(f.fields))
	copy(fields, f.fields)
	for j, o := range fields[i].options {
		if o == value {
			fields[i].choice = j
		}
	}
	f.fields = fields
	return f
}

// clear empties the text fields and returns focus to the top.
func (f form) clear() form {
	fields := make([]field, len(f.fields))
	copy(fields, f.fields)
	for i := range fields {
		fields[i].value = ""
	}
	f.fields = fields
	f.focus = 0
	return f
}

func (f form) view() string {
	var b strings.Builder
	width := 0
	for _, fl := range f.fields {
		width = max(width, len(fl.label))
	}
	for i, fl := range f.fields {
		label := fl.label + ":" + strings.Repeat(" ", width-len(fl.label))
		var value string
		switch {
		case len(fl.options) > 0:
			value = "‹ " + fl.options[fl.choice] + " ›"
		case fl.value == "":
			value = inputPlaceholderStyle.Render(fl.placeholder)
		case fl.secret:
			value = strings.Repeat("•", utf8.RuneCountInString(fl.value))
		default:
			value = fl.value
		}
		if i == f.focus {
			cursor := ""
			if len(fl.options) == 0 {
				cursor = accentStyle.Render("█")
			}
			b.WriteString(" " + inputPromptStyle.Render("> ") + selectedStyle.Render(label) + " " + normalStyle.Render(value) + cursor + "\n")
		} else {
			b.WriteString("   " + dimStyle.Render(label) + " " + dimStyle.Render(value) + "\n")
		}
	}
	return b.String()
}
