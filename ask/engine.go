package ask

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// DefaultMaxAttempts bounds re-prompts after invalid answers
const DefaultMaxAttempts = 5

// SelectAll is the option value standing for every valid image
const SelectAll = "__all_valid__"

// Engine asks questions through a Prompter and collects the answers
type Engine struct {
	prompter    Prompter
	maxAttempts int

	findImages func(dir string) ([]ImageInfo, error)
	getwd      func() (string, error)
}

// NewEngine creates an engine. A non-positive maxAttempts uses DefaultMaxAttempts.
func NewEngine(p Prompter, maxAttempts int) *Engine {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	return &Engine{
		prompter:    p,
		maxAttempts: maxAttempts,
		findImages:  FindImages,
		getwd:       os.Getwd,
	}
}

// AskAll asks questions in order and returns one flat answer map.
// Questions whose condition is false are skipped and leave no entry.
// ErrCancelled is returned unwrapped so callers can test for it directly.
func (e *Engine) AskAll(questions []Question) (Answers, error) {
	answers := Answers{}
	if err := e.askInto(questions, answers); err != nil {
		return nil, err
	}
	return answers, nil
}

func (e *Engine) askInto(questions []Question, answers Answers) error {
	for _, q := range questions {
		if q.Condition != nil && !q.Condition(answers) {
			continue
		}

		value, err := e.ask(q)
		if err != nil {
			if errors.Is(err, ErrCancelled) {
				return ErrCancelled
			}
			return fmt.Errorf("question %q: %w", q.Name, err)
		}
		if value == nil {
			continue // Optional number left blank
		}
		answers[q.Name] = value

		if q.Kind != KindSelect {
			continue
		}
		chosen, _ := value.(string)
		if subs, ok := q.Subquestions[chosen]; ok {
			if err := e.askInto(subs, answers); err != nil {
				return err
			}
		}
	}
	return nil
}

func (e *Engine) ask(q Question) (any, error) {
	switch q.Kind {
	case KindSelect:
		return e.askSelect(q)
	case KindInput:
		return e.askText(q, false)
	case KindSecret:
		return e.askText(q, true)
	case KindConfirm, KindToggle:
		return e.prompter.Confirm(q.Label, q.Hint, q.defaultBool())
	case KindNumber:
		return e.askNumber(q)
	case KindSelectImages:
		return e.askImages(q)
	default:
		return nil, fmt.Errorf("unknown question kind %q", q.Kind)
	}
}

func (e *Engine) askSelect(q Question) (any, error) {
	options := make([]Option, 0, len(q.Choices))
	enabled := 0
	for _, c := range q.Choices {
		label := c.Message
		if label == "" {
			label = c.Name
		}
		options = append(options, Option{Label: label, Value: c.value(), Disabled: c.Disabled})
		if !c.Disabled {
			enabled++
		}
	}
	if enabled == 0 {
		return nil, errors.New("no selectable choices")
	}
	return e.prompter.Select(q.Label, q.Hint, options, q.defaultString())
}

func (e *Engine) askText(q Question, secret bool) (any, error) {
	for attempt := 0; attempt < e.maxAttempts; attempt++ {
		var text string
		var err error
		if secret {
			text, err = e.prompter.Secret(q.Label, q.Hint)
		} else {
			text, err = e.prompter.Input(q.Label, q.Hint, q.defaultString())
		}
		if err != nil {
			return nil, err
		}
		if text == "" && !secret {
			text = q.defaultString()
		}

		if verr := validateText(q, text); verr != nil {
			e.prompter.Notify(verr.Message)
			continue
		}
		return text, nil
	}
	return nil, fmt.Errorf("%w (%d attempts)", ErrTooManyAttempts, e.maxAttempts)
}

func validateText(q Question, text string) *ValidationError {
	if q.Required && strings.TrimSpace(text) == "" {
		return &ValidationError{Question: q.Name, Message: "This field is required"}
	}
	if q.Validate != nil {
		if err := q.Validate(text); err != nil {
			return &ValidationError{Question: q.Name, Message: err.Error()}
		}
	}
	return nil
}

func (e *Engine) askNumber(q Question) (any, error) {
	for attempt := 0; attempt < e.maxAttempts; attempt++ {
		text, err := e.prompter.Input(q.Label, q.Hint, q.defaultString())
		if err != nil {
			return nil, err
		}
		text = strings.TrimSpace(text)

		if text == "" {
			if q.Default != nil {
				text = q.defaultString()
			} else if q.Required {
				e.prompter.Notify("This field is required")
				continue
			} else {
				return nil, nil
			}
		}

		n, verr := checkNumber(q, text)
		if verr != nil {
			e.prompter.Notify(verr.Message)
			continue
		}
		return n, nil
	}
	return nil, fmt.Errorf("%w (%d attempts)", ErrTooManyAttempts, e.maxAttempts)
}

func checkNumber(q Question, text string) (float64, *ValidationError) {
	reject := func(format string, args ...any) (float64, *ValidationError) {
		return 0, &ValidationError{Question: q.Name, Message: fmt.Sprintf(format, args...)}
	}

	n, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return reject("Please enter a number")
	}
	if q.Min != nil && n < *q.Min {
		return reject("Must be at least %s", formatNumber(*q.Min))
	}
	if q.Max != nil && n > *q.Max {
		return reject("Must be at most %s", formatNumber(*q.Max))
	}
	if q.Step > 0 {
		base := 0.0
		if q.Min != nil {
			base = *q.Min
		}
		steps := (n - base) / q.Step
		if math.Abs(steps-math.Round(steps)) > 1e-9 {
			return reject("Must be a multiple of %s", formatNumber(q.Step))
		}
	}
	if q.Validate != nil {
		if err := q.Validate(text); err != nil {
			return reject("%s", err.Error())
		}
	}
	return n, nil
}

func (e *Engine) askImages(q Question) (any, error) {
	dir := q.Dir
	if dir == "" {
		wd, err := e.getwd()
		if err != nil {
			return nil, fmt.Errorf("working directory: %w", err)
		}
		dir = wd
	}
	dir, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}

	for attempt := 0; attempt < e.maxAttempts; attempt++ {
		images, err := e.findImages(dir)
		if err != nil {
			e.prompter.Notify(fmt.Sprintf("Cannot read %s: %v", dir, err))
		}
		valid := ValidImages(images)
		if err == nil {
			e.prompter.Notify(fmt.Sprintf("Found %d images (%d valid)", len(images), len(valid)))
		}

		if len(valid) == 0 {
			if !q.Required {
				return []string{}, nil
			}
			e.prompter.Notify(fmt.Sprintf("No valid images in %s", dir))
			next, err := e.prompter.Input("Directory to scan for images", "", dir)
			if err != nil {
				return nil, err
			}
			if next = strings.TrimSpace(next); next != "" {
				if dir, err = filepath.Abs(next); err != nil {
					return nil, err
				}
			}
			continue
		}

		options := make([]Option, 0, len(images)+1)
		options = append(options, Option{
			Label: fmt.Sprintf("Select all %d valid images", len(valid)),
			Value: SelectAll,
		})
		for _, img := range images {
			options = append(options, Option{
				Label:    FormatImageChoice(img),
				Value:    img.Path,
				Disabled: !img.Valid,
				Reason:   img.Reason,
			})
		}

		selected, err := e.prompter.MultiSelect(q.Label, q.Hint, options, []string{SelectAll})
		if err != nil {
			return nil, err
		}
		paths := resolveSelection(selected, valid)
		if len(paths) == 0 && q.Required {
			e.prompter.Notify("Select at least one image")
			continue
		}
		return paths, nil
	}
	return nil, fmt.Errorf("%w (%d attempts)", ErrTooManyAttempts, e.maxAttempts)
}

// resolveSelection expands SelectAll and drops anything outside the valid set,
// keeping the valid set's order
func resolveSelection(selected []string, valid []ImageInfo) []string {
	picked := make(map[string]bool, len(selected))
	all := false
	for _, s := range selected {
		if s == SelectAll {
			all = true
		}
		picked[s] = true
	}

	paths := []string{}
	for _, img := range valid {
		if all || picked[img.Path] {
			paths = append(paths, img.Path)
		}
	}
	return paths
}
