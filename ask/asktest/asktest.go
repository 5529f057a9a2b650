// Package asktest provides a scripted Prompter for tests.
package asktest

import (
	"fmt"
	"sync"

	"photoroom/ask"
)

// Prompter answers prompts from a fixed script. Each entry is consumed by
// the next prompt: a string for Select, Input and Secret, a []string for
// MultiSelect, a bool for Confirm, or an error to return instead. An empty
// string for Select or a nil slice for MultiSelect accepts the initial value.
type Prompter struct {
	mu      sync.Mutex
	script  []any
	Asked   []string // Labels in the order they were presented
	Notices []string
	Options map[string][]ask.Option // Last options shown per label
}

// New creates a Prompter with the given answers
func New(answers ...any) *Prompter {
	return &Prompter{script: answers, Options: make(map[string][]ask.Option)}
}

// Remaining reports how many scripted answers were not consumed
func (p *Prompter) Remaining() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.script)
}

func (p *Prompter) next(label string) (any, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.Asked = append(p.Asked, label)
	if len(p.script) == 0 {
		return nil, fmt.Errorf("asktest: no answer scripted for %q", label)
	}
	v := p.script[0]
	p.script = p.script[1:]
	if err, ok := v.(error); ok {
		return nil, err
	}
	return v, nil
}

func (p *Prompter) record(label string, options []ask.Option) {
	p.mu.Lock()
	p.Options[label] = options
	p.mu.Unlock()
}

func (p *Prompter) Select(label, hint string, options []ask.Option, initial string) (string, error) {
	p.record(label, options)
	v, err := p.next(label)
	if err != nil {
		return "", err
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("asktest: %q wants a string, script has %T", label, v)
	}
	if s == "" {
		return initial, nil
	}
	return s, nil
}

func (p *Prompter) MultiSelect(label, hint string, options []ask.Option, initial []string) ([]string, error) {
	p.record(label, options)
	v, err := p.next(label)
	if err != nil {
		return nil, err
	}
	s, ok := v.([]string)
	if !ok {
		return nil, fmt.Errorf("asktest: %q wants a []string, script has %T", label, v)
	}
	if s == nil {
		return initial, nil
	}
	return s, nil
}

func (p *Prompter) Input(label, hint, initial string) (string, error) {
	v, err := p.next(label)
	if err != nil {
		return "", err
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("asktest: %q wants a string, script has %T", label, v)
	}
	return s, nil
}

func (p *Prompter) Secret(label, hint string) (string, error) {
	return p.Input(label, hint, "")
}

func (p *Prompter) Confirm(label, hint string, initial bool) (bool, error) {
	v, err := p.next(label)
	if err != nil {
		return false, err
	}
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("asktest: %q wants a bool, script has %T", label, v)
	}
	return b, nil
}

func (p *Prompter) Notify(message string) {
	p.mu.Lock()
	p.Notices = append(p.Notices, message)
	p.mu.Unlock()
}
