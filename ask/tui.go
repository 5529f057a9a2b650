package ask

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// TUI is a Prompter drawing each prompt inline with bubbletea
type TUI struct {
	in  io.Reader
	out io.Writer
}

// NewTUI creates a TUI prompter on the given terminal streams
func NewTUI(in io.Reader, out io.Writer) *TUI {
	return &TUI{in: in, out: out}
}

func (t *TUI) run(m tea.Model) (tea.Model, error) {
	p := tea.NewProgram(m, tea.WithInput(t.in), tea.WithOutput(t.out))
	final, err := p.Run()
	if err != nil {
		return nil, fmt.Errorf("prompt: %w", err)
	}
	return final, nil
}

func (t *TUI) Select(label, hint string, options []Option, initial string) (string, error) {
	final, err := t.run(newListModel(label, hint, options, false, []string{initial}))
	if err != nil {
		return "", err
	}
	m := final.(listModel)
	if m.cancelled {
		return "", ErrCancelled
	}
	return m.options[m.cursor].Value, nil
}

func (t *TUI) MultiSelect(label, hint string, options []Option, initial []string) ([]string, error) {
	final, err := t.run(newListModel(label, hint, options, true, initial))
	if err != nil {
		return nil, err
	}
	m := final.(listModel)
	if m.cancelled {
		return nil, ErrCancelled
	}
	return m.checkedValues(), nil
}

func (t *TUI) Input(label, hint, initial string) (string, error) {
	return t.text(label, hint, initial, false)
}

func (t *TUI) Secret(label, hint string) (string, error) {
	return t.text(label, hint, "", true)
}

func (t *TUI) text(label, hint, initial string, secret bool) (string, error) {
	final, err := t.run(newInputModel(label, hint, initial, secret))
	if err != nil {
		return "", err
	}
	m := final.(inputModel)
	if m.cancelled {
		return "", ErrCancelled
	}
	return m.input.Value(), nil
}

func (t *TUI) Confirm(label, hint string, initial bool) (bool, error) {
	final, err := t.run(confirmModel{label: label, hint: hint, value: initial})
	if err != nil {
		return false, err
	}
	m := final.(confirmModel)
	if m.cancelled {
		return false, ErrCancelled
	}
	return m.value, nil
}

func (t *TUI) Notify(message string) {
	fmt.Fprintln(t.out, noticeStyle.Render(message))
}

func renderHeader(label, hint string) string {
	header := questionMarkStyle.Render("?") + " " + labelStyle.Render(label)
	if hint != "" {
		header += " " + hintStyle.Render("("+hint+")")
	}
	return header
}

func renderDone(label, answer string) string {
	return doneMarkStyle.Render("✔") + " " + labelStyle.Render(label) + " " + answerStyle.Render(answer) + "\n"
}

// listModel serves both single and multiple choice prompts
type listModel struct {
	label   string
	hint    string
	options []Option
	multi   bool
	cursor  int
	checked map[int]bool
	notice  string

	done      bool
	cancelled bool
}

func newListModel(label, hint string, options []Option, multi bool, initial []string) listModel {
	m := listModel{
		label:   label,
		hint:    hint,
		options: options,
		multi:   multi,
		cursor:  -1,
		checked: make(map[int]bool),
	}

	want := make(map[string]bool, len(initial))
	for _, v := range initial {
		want[v] = true
	}
	for i, opt := range options {
		if opt.Disabled || !want[opt.Value] {
			continue
		}
		if multi {
			m.checked[i] = true
		} else if m.cursor < 0 {
			m.cursor = i
		}
	}

	if m.cursor < 0 {
		m.cursor = m.nextEnabled(-1, 1)
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	return m
}

// nextEnabled finds the next enabled option from i in direction dir, or -1
func (m listModel) nextEnabled(i, dir int) int {
	for j := i + dir; j >= 0 && j < len(m.options); j += dir {
		if !m.options[j].Disabled {
			return j
		}
	}
	return -1
}

func (m listModel) checkedValues() []string {
	values := []string{}
	for i, opt := range m.options {
		if m.checked[i] {
			values = append(values, opt.Value)
		}
	}
	return values
}

func (m listModel) Init() tea.Cmd {
	return nil
}

func (m listModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	m.notice = ""

	switch {
	case key.Matches(keyMsg, promptKeys.Cancel):
		m.cancelled = true
		return m, tea.Quit

	case key.Matches(keyMsg, promptKeys.Up):
		if m.cursor > 0 {
			m.cursor--
		}

	case key.Matches(keyMsg, promptKeys.Down):
		if m.cursor < len(m.options)-1 {
			m.cursor++
		}

	case m.multi && key.Matches(keyMsg, promptKeys.Toggle):
		if len(m.options) == 0 {
			break
		}
		if opt := m.options[m.cursor]; opt.Disabled {
			m.notice = opt.Reason
		} else {
			m.checked[m.cursor] = !m.checked[m.cursor]
		}

	case m.multi && key.Matches(keyMsg, promptKeys.All):
		all := true
		for i, opt := range m.options {
			if !opt.Disabled && !m.checked[i] {
				all = false
			}
		}
		for i, opt := range m.options {
			if !opt.Disabled {
				m.checked[i] = !all
			}
		}

	case key.Matches(keyMsg, promptKeys.Submit):
		if len(m.options) == 0 {
			break
		}
		if !m.multi && m.options[m.cursor].Disabled {
			m.notice = m.options[m.cursor].Reason
			if m.notice == "" {
				m.notice = "This option is not available"
			}
			break
		}
		m.done = true
		return m, tea.Quit
	}

	return m, nil
}

func (m listModel) View() string {
	if m.cancelled {
		return ""
	}
	if m.done {
		if m.multi {
			return renderDone(m.label, fmt.Sprintf("%d selected", len(m.checkedValues())))
		}
		return renderDone(m.label, m.options[m.cursor].Label)
	}

	var b strings.Builder
	b.WriteString(renderHeader(m.label, m.hint))
	b.WriteString("\n")

	for i, opt := range m.options {
		mark := "  "
		if i == m.cursor {
			mark = cursorMarkStyle.Render("❯ ")
		}

		box := ""
		if m.multi {
			box = "◯ "
			if m.checked[i] {
				box = checkedStyle.Render("◉ ")
			}
		}

		text := optionStyle.Render(opt.Label)
		switch {
		case opt.Disabled:
			text = disabledStyle.Render(opt.Label)
		case i == m.cursor:
			text = selectedStyle.Render(opt.Label)
		}
		b.WriteString(mark + box + text + "\n")
	}

	if m.notice != "" {
		b.WriteString(reasonStyle.Render(m.notice) + "\n")
	}

	if m.multi {
		b.WriteString(renderHelp(promptKeys.Up, promptKeys.Down, promptKeys.Toggle, promptKeys.All, promptKeys.Submit, promptKeys.Cancel))
	} else {
		b.WriteString(renderHelp(promptKeys.Up, promptKeys.Down, promptKeys.Submit, promptKeys.Cancel))
	}
	b.WriteString("\n")
	return b.String()
}

// inputModel reads one line of text, optionally without echo
type inputModel struct {
	label  string
	hint   string
	secret bool
	input  textinput.Model

	done      bool
	cancelled bool
}

func newInputModel(label, hint, initial string, secret bool) inputModel {
	ti := textinput.New()
	ti.Prompt = inputPromptStyle.Render("› ")
	ti.CharLimit = 2048
	ti.SetValue(initial)
	ti.CursorEnd()
	if secret {
		ti.EchoMode = textinput.EchoPassword
		ti.EchoCharacter = '•'
	}
	ti.Focus()

	return inputModel{label: label, hint: hint, secret: secret, input: ti}
}

func (m inputModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m inputModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(keyMsg, promptKeys.Cancel):
			m.cancelled = true
			return m, tea.Quit
		case key.Matches(keyMsg, promptKeys.Submit):
			m.done = true
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m inputModel) View() string {
	if m.cancelled {
		return ""
	}
	if m.done {
		answer := m.input.Value()
		if m.secret {
			answer = strings.Repeat("•", min(len(answer), 8))
		}
		return renderDone(m.label, answer)
	}
	return renderHeader(m.label, m.hint) + "\n" + m.input.View() + "\n"
}

// confirmModel is a yes/no toggle
type confirmModel struct {
	label string
	hint  string
	value bool

	done      bool
	cancelled bool
}

func (m confirmModel) Init() tea.Cmd {
	return nil
}

func (m confirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, promptKeys.Cancel):
		m.cancelled = true
		return m, tea.Quit
	case key.Matches(keyMsg, promptKeys.Yes):
		m.value = true
		m.done = true
		return m, tea.Quit
	case key.Matches(keyMsg, promptKeys.No):
		m.value = false
		m.done = true
		return m, tea.Quit
	case key.Matches(keyMsg, promptKeys.Switch), key.Matches(keyMsg, promptKeys.Toggle):
		m.value = !m.value
	case key.Matches(keyMsg, promptKeys.Submit):
		m.done = true
		return m, tea.Quit
	}
	return m, nil
}

func (m confirmModel) View() string {
	if m.cancelled {
		return ""
	}
	if m.done {
		if m.value {
			return renderDone(m.label, "Yes")
		}
		return renderDone(m.label, "No")
	}

	yes, no := confirmOffStyle.Render("Yes"), confirmOffStyle.Render("No")
	if m.value {
		yes = confirmOnStyle.Render("Yes")
	} else {
		no = confirmOnStyle.Render("No")
	}
	return renderHeader(m.label, m.hint) + " " + yes + " / " + no + "\n"
}
