package ask

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/fatih/color"
	"golang.org/x/term"
)

var (
	lineLabel  = color.New(color.Bold)
	lineHint   = color.New(color.FgHiBlack)
	lineNotice = color.New(color.FgYellow)
	lineMuted  = color.New(color.FgHiBlack)
)

// maxLineRetries bounds re-reads of unparseable choice input
const maxLineRetries = 5

// Line is a Prompter for plain terminals and piped input. Choices are
// numbered and picked by typing their number.
type Line struct {
	rl  *readline.Instance
	out io.Writer
}

// NewLine creates a line prompter reading from in and writing to out
func NewLine(in io.Reader, out io.Writer) (*Line, error) {
	rc, ok := in.(io.ReadCloser)
	if !ok {
		rc = io.NopCloser(in)
	}

	tty := false
	if f, ok := in.(*os.File); ok {
		tty = term.IsTerminal(int(f.Fd()))
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "> ",
		Stdin:           rc,
		Stdout:          out,
		InterruptPrompt: "^C",
		HistoryLimit:    -1,
		FuncIsTerminal:  func() bool { return tty },
	})
	if err != nil {
		return nil, fmt.Errorf("readline: %w", err)
	}
	return &Line{rl: rl, out: out}, nil
}

// Close releases the terminal
func (l *Line) Close() error {
	return l.rl.Close()
}

// read returns the trimmed line, or def when the line is empty
func (l *Line) read(prompt, def string) (string, error) {
	if def != "" {
		prompt += lineHint.Sprintf("[%s] ", def)
	}
	l.rl.SetPrompt(prompt)
	text, err := l.rl.Readline()
	if err != nil {
		if errors.Is(err, readline.ErrInterrupt) || errors.Is(err, io.EOF) {
			return "", ErrCancelled
		}
		return "", err
	}
	if text = strings.TrimSpace(text); text == "" {
		return def, nil
	}
	return text, nil
}

func (l *Line) header(label, hint string) {
	fmt.Fprint(l.out, lineLabel.Sprint("? "+label))
	if hint != "" {
		fmt.Fprint(l.out, " "+lineHint.Sprintf("(%s)", hint))
	}
	fmt.Fprintln(l.out)
}

func (l *Line) listOptions(options []Option) {
	for i, opt := range options {
		if opt.Disabled {
			line := fmt.Sprintf("  %2d) %s", i+1, opt.Label)
			if opt.Reason != "" && !strings.Contains(opt.Label, opt.Reason) {
				line += " (" + opt.Reason + ")"
			}
			fmt.Fprintln(l.out, lineMuted.Sprint(line))
			continue
		}
		fmt.Fprintf(l.out, "  %2d) %s\n", i+1, opt.Label)
	}
}

func (l *Line) Select(label, hint string, options []Option, initial string) (string, error) {
	l.header(label, hint)
	l.listOptions(options)

	def := ""
	for i, opt := range options {
		if opt.Value == initial && !opt.Disabled {
			def = strconv.Itoa(i + 1)
		}
	}

	for attempt := 0; attempt < maxLineRetries; attempt++ {
		text, err := l.read("Choose: ", def)
		if err != nil {
			return "", err
		}
		i, err := parseChoice(text, options)
		if err != nil {
			l.Notify(err.Error())
			continue
		}
		return options[i].Value, nil
	}
	return "", ErrTooManyAttempts
}

func (l *Line) MultiSelect(label, hint string, options []Option, initial []string) ([]string, error) {
	l.header(label, hint)
	l.listOptions(options)
	fmt.Fprintln(l.out, lineHint.Sprint("Enter numbers separated by spaces or commas, 'a' for all"))

	want := make(map[string]bool, len(initial))
	for _, v := range initial {
		want[v] = true
	}
	var defs []string
	for i, opt := range options {
		if want[opt.Value] && !opt.Disabled {
			defs = append(defs, strconv.Itoa(i+1))
		}
	}

	for attempt := 0; attempt < maxLineRetries; attempt++ {
		text, err := l.read("Choose: ", strings.Join(defs, " "))
		if err != nil {
			return nil, err
		}
		values, err := parseMultiChoice(text, options)
		if err != nil {
			l.Notify(err.Error())
			continue
		}
		return values, nil
	}
	return nil, ErrTooManyAttempts
}

func (l *Line) Input(label, hint, initial string) (string, error) {
	prompt := lineLabel.Sprint("? "+label) + " "
	if hint != "" {
		prompt += lineHint.Sprintf("(%s) ", hint)
	}
	return l.read(prompt, initial)
}

func (l *Line) Secret(label, hint string) (string, error) {
	prompt := lineLabel.Sprint("? "+label) + " "
	if hint != "" {
		prompt += lineHint.Sprintf("(%s) ", hint)
	}
	b, err := l.rl.ReadPassword(prompt)
	if err != nil {
		if errors.Is(err, readline.ErrInterrupt) || errors.Is(err, io.EOF) {
			return "", ErrCancelled
		}
		return "", err
	}
	return strings.TrimSpace(string(b)), nil
}

func (l *Line) Confirm(label, hint string, initial bool) (bool, error) {
	suffix := "(y/N)"
	if initial {
		suffix = "(Y/n)"
	}
	prompt := lineLabel.Sprint("? "+label) + " "
	if hint != "" {
		prompt += lineHint.Sprintf("(%s) ", hint)
	}
	prompt += suffix + " "

	for attempt := 0; attempt < maxLineRetries; attempt++ {
		text, err := l.read(prompt, "")
		if err != nil {
			return false, err
		}
		v, err := parseYesNo(text, initial)
		if err != nil {
			l.Notify(err.Error())
			continue
		}
		return v, nil
	}
	return false, ErrTooManyAttempts
}

func (l *Line) Notify(message string) {
	fmt.Fprintln(l.out, lineNotice.Sprint(message))
}

// parseChoice maps a 1-based number to an enabled option index
func parseChoice(text string, options []Option) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil || n < 1 || n > len(options) {
		return 0, fmt.Errorf("Enter a number between 1 and %d", len(options))
	}
	opt := options[n-1]
	if opt.Disabled {
		if opt.Reason != "" {
			return 0, fmt.Errorf("%s is not available: %s", opt.Label, opt.Reason)
		}
		return 0, fmt.Errorf("%s is not available", opt.Label)
	}
	return n - 1, nil
}

// parseMultiChoice maps a list of numbers (or "a") to option values in
// option order
func parseMultiChoice(text string, options []Option) ([]string, error) {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})

	picked := make(map[int]bool)
	for _, f := range fields {
		if strings.EqualFold(f, "a") || strings.EqualFold(f, "all") {
			for i, opt := range options {
				if !opt.Disabled {
					picked[i] = true
				}
			}
			continue
		}
		i, err := parseChoice(f, options)
		if err != nil {
			return nil, err
		}
		picked[i] = true
	}

	values := []string{}
	for i, opt := range options {
		if picked[i] {
			values = append(values, opt.Value)
		}
	}
	return values, nil
}

func parseYesNo(text string, def bool) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "":
		return def, nil
	case "y", "yes":
		return true, nil
	case "n", "no":
		return false, nil
	}
	return false, errors.New("Please answer y or n")
}
