package views

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"mediasweep/internal/adapters/tui/styles"
	"mediasweep/internal/application"
)

// InputFormKeyMap defines key bindings for input forms
type InputFormKeyMap struct {
	Submit key.Binding
	Cancel key.Binding
	Next   key.Binding
	Prev   key.Binding
}

// DefaultInputFormKeys returns the default input form key bindings
var DefaultInputFormKeys = InputFormKeyMap{
	Submit: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "submit")),
	Cancel: key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
	Next:   key.NewBinding(key.WithKeys("tab", "down"), key.WithHelp("tab", "next field")),
	Prev:   key.NewBinding(key.WithKeys("shift+tab", "up"), key.WithHelp("shift+tab", "previous field")),
}

// InputField is a labelled text input with an optional value check
type InputField struct {
	Label string
	Input textinput.Model
	Check func(string) error
	Err   error
}

func newInputField(label, placeholder string, charLimit int, check func(string) error) InputField {
	input := textinput.New()
	input.Placeholder = placeholder
	input.CharLimit = charLimit
	return InputField{Label: label, Input: input, Check: check}
}

// IDField accepts one positive id
func IDField(label, placeholder string) InputField {
	return newInputField(label, placeholder, 20, func(v string) error {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil || id <= 0 {
			return fmt.Errorf("%s must be a positive number", strings.ToLower(label))
		}
		return nil
	})
}

// IDListField accepts a non-empty comma-separated list of positive ids
func IDListField(label, placeholder string) InputField {
	return newInputField(label, placeholder, 200, func(v string) error {
		ids, err := application.ParseIDList("ids", v)
		if err != nil {
			return err
		}
		return application.ValidateIDs("ids", ids)
	})
}

// RoleVariantsField accepts comma-separated role=variant pairs, at least one
func RoleVariantsField(label, placeholder string) InputField {
	return newInputField(label, placeholder, 200, func(v string) error {
		pairs, err := application.ParseRoleVariants(v)
		if err != nil {
			return err
		}
		if len(pairs) == 0 {
			return fmt.Errorf("at least one role=variant pair is required")
		}
		return nil
	})
}

// InputForm cycles focus over its fields and checks them before submit
type InputForm struct {
	Fields       []InputField
	FocusedField int
	Keys         InputFormKeyMap
}

// NewInputForm creates a form with the first field focused
func NewInputForm(fields ...InputField) *InputForm {
	form := &InputForm{Fields: fields, Keys: DefaultInputFormKeys}
	form.focus(0)
	return form
}

func (f *InputForm) focus(index int) {
	if len(f.Fields) == 0 {
		return
	}
	f.Fields[f.FocusedField].Input.Blur()
	f.FocusedField = index
	f.Fields[index].Input.Focus()
}

// Init returns the blink command for the focused input
func (f *InputForm) Init() tea.Cmd {
	return textinput.Blink
}

// Update moves focus or forwards the message to the focused input, clearing
// its error once the value changes. Returns true when a key moved focus.
func (f *InputForm) Update(msg tea.Msg) (bool, tea.Cmd) {
	if len(f.Fields) == 0 {
		return false, nil
	}
	if k, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(k, f.Keys.Next):
			f.focus((f.FocusedField + 1) % len(f.Fields))
			return true, nil
		case key.Matches(k, f.Keys.Prev):
			f.focus((f.FocusedField + len(f.Fields) - 1) % len(f.Fields))
			return true, nil
		}
	}

	field := &f.Fields[f.FocusedField]
	before := field.Input.Value()
	var cmd tea.Cmd
	field.Input, cmd = field.Input.Update(msg)
	if field.Input.Value() != before {
		field.Err = nil
	}
	return false, cmd
}

// Validate runs every field check, records the errors on the fields and
// focuses the first invalid one. Returns that field's error.
func (f *InputForm) Validate() error {
	first := -1
	for i := range f.Fields {
		field := &f.Fields[i]
		field.Err = nil
		if field.Check == nil {
			continue
		}
		if err := field.Check(f.Value(i)); err != nil {
			field.Err = err
			if first < 0 {
				first = i
			}
		}
	}
	if first < 0 {
		return nil
	}
	f.focus(first)
	return fmt.Errorf("%s: %w", f.Fields[first].Label, f.Fields[first].Err)
}

// Value returns the trimmed value of a field
func (f *InputForm) Value(index int) string {
	if index < 0 || index >= len(f.Fields) {
		return ""
	}
	return strings.TrimSpace(f.Fields[index].Input.Value())
}

// SetValue sets the value of a field
func (f *InputForm) SetValue(index int, value string) {
	if index < 0 || index >= len(f.Fields) {
		return
	}
	f.Fields[index].Input.SetValue(value)
	f.Fields[index].Err = nil
}

// Reset clears every value and error and focuses the first field
func (f *InputForm) Reset() {
	for i := range f.Fields {
		f.Fields[i].Input.SetValue("")
		f.Fields[i].Err = nil
	}
	f.focus(0)
}

// RenderField renders a field, with its error below it when the last check failed
func (f *InputForm) RenderField(index int) string {
	if index < 0 || index >= len(f.Fields) {
		return ""
	}
	field := f.Fields[index]

	style := styles.InputField
	if index == f.FocusedField {
		style = styles.InputFocused
	}
	out := styles.InputLabel.Render(field.Label) + "\n" + style.Render(field.Input.View())
	if field.Err != nil {
		out += "\n" + styles.ErrorMsg.Render(field.Err.Error())
	}
	return out
}

// RenderHelp renders the key help of the form
func (f *InputForm) RenderHelp(submitText string) string {
	bindings := []key.Binding{f.Keys.Submit, f.Keys.Cancel}
	if len(f.Fields) > 1 {
		bindings = append([]key.Binding{f.Keys.Next, f.Keys.Prev}, bindings...)
	}

	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		desc := h.Desc
		if b.Keys()[0] == "enter" {
			desc = submitText
		}
		parts = append(parts, styles.HelpKey.Render(h.Key)+" "+styles.HelpDesc.Render(desc))
	}
	return strings.Join(parts, "  ")
}
