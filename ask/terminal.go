package ask

import (
	"os"

	"golang.org/x/term"
)

// Open picks a prompter for the process terminal. The bubbletea TUI is used
// when stdin and stdout are terminals; plain forces numbered line prompts.
// The returned func releases the terminal.
func Open(plain bool) (Prompter, func(), error) {
	interactive := term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
	if interactive && !plain {
		return NewTUI(os.Stdin, os.Stdout), func() {}, nil
	}

	l, err := NewLine(os.Stdin, os.Stdout)
	if err != nil {
		return nil, nil, err
	}
	return l, func() { l.Close() }, nil
}
