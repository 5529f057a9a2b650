package ask

// Kind is the prompt modality of a question
type Kind string

const (
	KindSelect       Kind = "select"
	KindInput        Kind = "input"
	KindSecret       Kind = "secret" // input with echo disabled
	KindConfirm      Kind = "confirm"
	KindToggle       Kind = "toggle"
	KindNumber       Kind = "number"
	KindSelectImages Kind = "select-images"
)

// Choice is one entry of a select question
type Choice struct {
	Message  string // Display text
	Name     string // Internal identifier
	Value    string // Recorded answer; Name is used when empty
	Disabled bool
}

func (c Choice) value() string {
	if c.Value != "" {
		return c.Value
	}
	return c.Name
}

// Question declares a single prompt.
//
// Which fields apply depends on Kind. Default holds a string for select and
// input, a bool for confirm and toggle, and a float64 (or int) for number.
type Question struct {
	Kind     Kind
	Name     string
	Label    string
	Hint     string
	Default  any
	Required bool

	// Condition is evaluated against the answers collected so far; the
	// question is skipped when it returns false.
	Condition func(Answers) bool

	// Validate checks the raw text of input, secret and number answers.
	// A non-nil error is shown to the user and the question is asked again.
	Validate func(string) error

	// Select only
	Choices []Choice
	// Subquestions maps a chosen value to questions asked right after it.
	// Their answers land in the same flat map, so a nested name that
	// repeats an earlier one overwrites it.
	Subquestions map[string][]Question

	// Number only
	Min  *float64
	Max  *float64
	Step float64

	// Select-images only; empty means the working directory
	Dir string
}

// Bound returns a pointer for Question.Min and Question.Max
func Bound(v float64) *float64 {
	return &v
}

func (q *Question) defaultString() string {
	switch v := q.Default.(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		return formatNumber(q.Default)
	}
}

func (q *Question) defaultBool() bool {
	b, _ := q.Default.(bool)
	return b
}
