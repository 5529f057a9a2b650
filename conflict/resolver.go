package conflict

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"photoroom/ask"
)

// Action is the outcome of resolving one output path
type Action string

const (
	Overwrite    Action = "overwrite"
	OverwriteAll Action = "overwriteAll"
	Rename       Action = "rename"
	RenameAll    Action = "renameAll"
	Cancel       Action = "cancel"
)

// maxSuffix bounds the rename probe
const maxSuffix = 10000

// Prompt texts
const (
	PromptLabel = "File already exists. What would you like to do?"
	questionKey = "conflict_action"
)

// Resolution says where, if anywhere, to write one output
type Resolution struct {
	Action   Action
	Path     string // Empty for Cancel
	Reserved bool   // Path was created empty to claim the name
}

// Skipped reports whether the user chose not to write this item
func (r Resolution) Skipped() bool {
	return r.Action == Cancel
}

// Release removes a reserved placeholder that was never written
func (r Resolution) Release() error {
	if !r.Reserved {
		return nil
	}
	st, err := os.Stat(r.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return &IOError{Op: "release", Path: r.Path, Err: err}
	}
	if st.Size() > 0 {
		return nil // Written after all
	}
	if err := os.Remove(r.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return &IOError{Op: "release", Path: r.Path, Err: err}
	}
	return nil
}

// IOError is a filesystem failure other than "does not exist"
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// Asker asks a batch of questions
type Asker interface {
	AskAll(questions []ask.Question) (ask.Answers, error)
}

// Resolver decides how to write output files that may already exist
type Resolver struct {
	asker Asker
	mu    sync.Mutex // One prompt at a time
}

// NewResolver creates a resolver prompting through asker
func NewResolver(asker Asker) *Resolver {
	return &Resolver{asker: asker}
}

// Resolve decides what to do with path. A missing file, or a sticky choice
// in state, resolves without prompting. Rename results are reserved on disk;
// call Release if the item is abandoned. ask.ErrCancelled from the prompt is
// returned as is.
func (r *Resolver) Resolve(path string, state *State) (Resolution, error) {
	exists, err := Exists(path)
	if err != nil {
		return Resolution{}, err
	}
	if !exists {
		return Resolution{Action: Overwrite, Path: path}, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Another item may have set a sticky choice while we waited
	if res, ok, err := sticky(path, state); ok || err != nil {
		return res, err
	}

	answers, err := r.asker.AskAll([]ask.Question{actionQuestion(path)})
	if err != nil {
		return Resolution{}, err
	}

	action := Action(answers.String(questionKey))
	switch action {
	case Overwrite:
		return Resolution{Action: Overwrite, Path: path}, nil
	case OverwriteAll:
		state.SetOverwriteAll()
		return Resolution{Action: OverwriteAll, Path: path}, nil
	case Rename, RenameAll:
		if action == RenameAll {
			state.SetRenameAll()
		}
		unique, err := Reserve(path)
		if err != nil {
			return Resolution{}, err
		}
		return Resolution{Action: action, Path: unique, Reserved: true}, nil
	case Cancel:
		return Resolution{Action: Cancel}, nil
	default:
		return Resolution{}, fmt.Errorf("unknown conflict action %q", action)
	}
}

func sticky(path string, state *State) (Resolution, bool, error) {
	switch {
	case state.OverwriteAll():
		return Resolution{Action: OverwriteAll, Path: path}, true, nil
	case state.RenameAll():
		unique, err := Reserve(path)
		if err != nil {
			return Resolution{}, false, err
		}
		return Resolution{Action: RenameAll, Path: unique, Reserved: true}, true, nil
	}
	return Resolution{}, false, nil
}

func actionQuestion(path string) ask.Question {
	return ask.Question{
		Kind:    ask.KindSelect,
		Name:    questionKey,
		Label:   PromptLabel,
		Hint:    path,
		Default: string(Rename),
		Choices: []ask.Choice{
			{Message: "Overwrite this file", Name: string(Overwrite)},
			{Message: "Overwrite all (don't ask again)", Name: string(OverwriteAll)},
			{Message: "Rename this file (add suffix)", Name: string(Rename)},
			{Message: "Rename all (don't ask again)", Name: string(RenameAll)},
			{Message: "Cancel operation", Name: string(Cancel)},
		},
	}
}

// Exists reports whether something is at path. Errors other than
// "not found" are returned as *IOError.
func Exists(path string) (bool, error) {
	_, err := os.Lstat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, &IOError{Op: "stat", Path: path, Err: err}
}

func candidate(path string, n int) string {
	ext := filepath.Ext(path)
	return fmt.Sprintf("%s-%d%s", strings.TrimSuffix(path, ext), n, ext)
}

// Reserve finds the first of name-2.ext, name-3.ext, ... that does not exist
// and claims it by creating an empty file there. Each call returns a
// different path.
func Reserve(path string) (string, error) {
	for n := 2; n < maxSuffix; n++ {
		c := candidate(path, n)
		f, err := os.OpenFile(c, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil {
			f.Close()
			return c, nil
		}
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		return "", &IOError{Op: "reserve", Path: c, Err: err}
	}
	return "", &IOError{Op: "reserve", Path: path, Err: errors.New("no free name")}
}
