package ask

// Option is one entry of a select or multi-select prompt
type Option struct {
	Label    string
	Value    string
	Disabled bool
	Reason   string // Why a disabled option cannot be picked
}

// Prompter is the terminal surface the engine talks to. Each call presents
// one prompt and blocks until it is answered. Implementations return
// ErrCancelled when the user aborts.
type Prompter interface {
	Select(label, hint string, options []Option, initial string) (string, error)
	MultiSelect(label, hint string, options []Option, initial []string) ([]string, error)
	Input(label, hint, initial string) (string, error)
	Secret(label, hint string) (string, error)
	Confirm(label, hint string, initial bool) (bool, error)
	Notify(message string)
}
