package ask_test

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"photoroom/ask"
	"photoroom/ask/asktest"
)

func sizedFile(t *testing.T, path string, size int64) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()
	if err := f.Truncate(size); err != nil {
		t.Fatalf("truncate %s: %v", path, err)
	}
}

var formatChoices = []ask.Choice{
	{Message: "PNG", Name: "png"},
	{Message: "JPG", Name: "jpg"},
	{Message: "WebP", Name: "webp"},
}

func TestAskAll_OneAnswerPerQuestion(t *testing.T) {
	questions := []ask.Question{
		{Kind: ask.KindSelect, Name: "format", Label: "Format", Choices: formatChoices, Default: "png"},
		{Kind: ask.KindInput, Name: "output_dir", Label: "Output directory"},
		{Kind: ask.KindConfirm, Name: "crop", Label: "Crop"},
		{Kind: ask.KindToggle, Name: "despill", Label: "Despill"},
		{Kind: ask.KindNumber, Name: "dpi", Label: "DPI"},
		{Kind: ask.KindSecret, Name: "key", Label: "API key"},
	}
	p := asktest.New("jpg", "out", true, false, "300", "sk_123")

	answers, err := ask.NewEngine(p, 0).AskAll(questions)
	if err != nil {
		t.Fatalf("AskAll failed: %v", err)
	}

	if len(answers) != len(questions) {
		t.Errorf("answer count = %d, want %d", len(answers), len(questions))
	}
	if got := answers.String("format"); got != "jpg" {
		t.Errorf("format = %q, want %q", got, "jpg")
	}
	if got := answers.String("output_dir"); got != "out" {
		t.Errorf("output_dir = %q, want %q", got, "out")
	}
	if !answers.Bool("crop") {
		t.Error("crop = false, want true")
	}
	if answers.Bool("despill") {
		t.Error("despill = true, want false")
	}
	if n, ok := answers.Number("dpi"); !ok || n != 300 {
		t.Errorf("dpi = %v (%v), want 300", n, ok)
	}
	if got := answers.String("key"); got != "sk_123" {
		t.Errorf("key = %q, want %q", got, "sk_123")
	}

	want := []string{"Format", "Output directory", "Crop", "Despill", "DPI", "API key"}
	if !reflect.DeepEqual(p.Asked, want) {
		t.Errorf("asked = %v, want %v", p.Asked, want)
	}
}

func TestAskAll_Condition(t *testing.T) {
	questions := []ask.Question{
		{Kind: ask.KindConfirm, Name: "edit_background", Label: "Edit background"},
		{
			Kind:      ask.KindInput,
			Name:      "background_prompt",
			Label:     "Background prompt",
			Condition: ask.IsTrue("edit_background"),
		},
		{Kind: ask.KindInput, Name: "output_dir", Label: "Output directory"},
	}

	t.Run("false skips", func(t *testing.T) {
		p := asktest.New(false, "out")
		answers, err := ask.NewEngine(p, 0).AskAll(questions)
		if err != nil {
			t.Fatalf("AskAll failed: %v", err)
		}
		if answers.Has("background_prompt") {
			t.Error("skipped question produced an answer")
		}
		for _, label := range p.Asked {
			if label == "Background prompt" {
				t.Error("skipped question was presented")
			}
		}
	})

	t.Run("true asks", func(t *testing.T) {
		p := asktest.New(true, "a beach", "out")
		answers, err := ask.NewEngine(p, 0).AskAll(questions)
		if err != nil {
			t.Fatalf("AskAll failed: %v", err)
		}
		if got := answers.String("background_prompt"); got != "a beach" {
			t.Errorf("background_prompt = %q, want %q", got, "a beach")
		}
	})
}

func TestAskAll_Subquestions(t *testing.T) {
	questions := []ask.Question{
		{
			Kind:  ask.KindSelect,
			Name:  "size",
			Label: "Size",
			Choices: []ask.Choice{
				{Message: "Full", Name: "full"},
				{Message: "Custom", Name: "custom"},
			},
			Subquestions: map[string][]ask.Question{
				"custom": {
					{Kind: ask.KindInput, Name: "custom_size", Label: "Custom size"},
				},
			},
		},
		{Kind: ask.KindConfirm, Name: "crop", Label: "Crop"},
	}

	t.Run("matching value expands", func(t *testing.T) {
		p := asktest.New("custom", "800x600", false)
		answers, err := ask.NewEngine(p, 0).AskAll(questions)
		if err != nil {
			t.Fatalf("AskAll failed: %v", err)
		}
		if got := answers.String("custom_size"); got != "800x600" {
			t.Errorf("custom_size = %q, want %q", got, "800x600")
		}
		if got := answers.String("size"); got != "custom" {
			t.Errorf("size = %q, want %q", got, "custom")
		}
		want := []string{"Size", "Custom size", "Crop"}
		if !reflect.DeepEqual(p.Asked, want) {
			t.Errorf("asked = %v, want %v", p.Asked, want)
		}
	})

	t.Run("other value does not expand", func(t *testing.T) {
		p := asktest.New("full", true)
		answers, err := ask.NewEngine(p, 0).AskAll(questions)
		if err != nil {
			t.Fatalf("AskAll failed: %v", err)
		}
		if answers.Has("custom_size") {
			t.Error("custom_size answered without custom size")
		}
	})

	t.Run("nested name overwrites earlier answer", func(t *testing.T) {
		colliding := []ask.Question{
			{Kind: ask.KindInput, Name: "seed", Label: "Seed"},
			{
				Kind:    ask.KindSelect,
				Name:    "mode",
				Label:   "Mode",
				Choices: []ask.Choice{{Name: "again"}},
				Subquestions: map[string][]ask.Question{
					"again": {{Kind: ask.KindInput, Name: "seed", Label: "Seed again"}},
				},
			},
		}
		p := asktest.New("1", "again", "2")
		answers, err := ask.NewEngine(p, 0).AskAll(colliding)
		if err != nil {
			t.Fatalf("AskAll failed: %v", err)
		}
		if got := answers.String("seed"); got != "2" {
			t.Errorf("seed = %q, want %q", got, "2")
		}
	})
}

func TestAskAll_Validation(t *testing.T) {
	nonEmpty := func(v string) error {
		if v == "" {
			return errors.New("required")
		}
		return nil
	}
	questions := []ask.Question{
		{Kind: ask.KindInput, Name: "name", Label: "Name", Validate: nonEmpty},
	}

	t.Run("re-prompts until valid", func(t *testing.T) {
		p := asktest.New("", "Studio key")
		answers, err := ask.NewEngine(p, 0).AskAll(questions)
		if err != nil {
			t.Fatalf("AskAll failed: %v", err)
		}
		if got := answers.String("name"); got != "Studio key" {
			t.Errorf("name = %q, want %q", got, "Studio key")
		}
		if len(p.Asked) != 2 {
			t.Errorf("asked %d times, want 2", len(p.Asked))
		}
		if len(p.Notices) != 1 || p.Notices[0] != "required" {
			t.Errorf("notices = %v, want [required]", p.Notices)
		}
	})

	t.Run("bounded attempts", func(t *testing.T) {
		p := asktest.New("", "", "never reached")
		_, err := ask.NewEngine(p, 2).AskAll(questions)
		if !errors.Is(err, ask.ErrTooManyAttempts) {
			t.Fatalf("err = %v, want ErrTooManyAttempts", err)
		}
		if errors.Is(err, ask.ErrCancelled) {
			t.Error("validation exhaustion reported as cancellation")
		}
		if p.Remaining() != 1 {
			t.Errorf("remaining = %d, want 1", p.Remaining())
		}
	})

	t.Run("required without validate", func(t *testing.T) {
		q := []ask.Question{{Kind: ask.KindInput, Name: "url", Label: "URL", Required: true}}
		p := asktest.New("  ", "https://example.com/a.png")
		answers, err := ask.NewEngine(p, 0).AskAll(q)
		if err != nil {
			t.Fatalf("AskAll failed: %v", err)
		}
		if got := answers.String("url"); got != "https://example.com/a.png" {
			t.Errorf("url = %q", got)
		}
		if len(p.Notices) != 1 || p.Notices[0] != "This field is required" {
			t.Errorf("notices = %v", p.Notices)
		}
	})

	t.Run("empty input takes default", func(t *testing.T) {
		q := []ask.Question{{Kind: ask.KindInput, Name: "dir", Label: "Dir", Default: "output"}}
		answers, err := ask.NewEngine(asktest.New(""), 0).AskAll(q)
		if err != nil {
			t.Fatalf("AskAll failed: %v", err)
		}
		if got := answers.String("dir"); got != "output" {
			t.Errorf("dir = %q, want %q", got, "output")
		}
	})
}

func TestAskAll_Cancelled(t *testing.T) {
	questions := []ask.Question{
		{Kind: ask.KindInput, Name: "a", Label: "A"},
		{Kind: ask.KindInput, Name: "b", Label: "B"},
		{Kind: ask.KindInput, Name: "c", Label: "C"},
	}
	p := asktest.New("x", ask.ErrCancelled, "z")

	answers, err := ask.NewEngine(p, 0).AskAll(questions)
	if err != ask.ErrCancelled {
		t.Fatalf("err = %v, want ErrCancelled", err)
	}
	if answers != nil {
		t.Errorf("answers = %v, want nil", answers)
	}
	if len(p.Asked) != 2 {
		t.Errorf("asked %d questions, want 2", len(p.Asked))
	}
}

func TestAskAll_PrompterErrorWrapped(t *testing.T) {
	boom := errors.New("terminal gone")
	q := []ask.Question{{Kind: ask.KindConfirm, Name: "crop", Label: "Crop"}}

	_, err := ask.NewEngine(asktest.New(boom), 0).AskAll(q)
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want wrapped %v", err, boom)
	}
	if !strings.Contains(err.Error(), "crop") {
		t.Errorf("error %q does not name the question", err)
	}
}

func TestAskAll_Number(t *testing.T) {
	scale := ask.Question{
		Kind:  ask.KindNumber,
		Name:  "guidance_scale",
		Label: "Guidance scale",
		Min:   ask.Bound(0),
		Max:   ask.Bound(1),
		Step:  0.1,
	}

	t.Run("bounds and parse errors re-prompt", func(t *testing.T) {
		p := asktest.New("2", "abc", "-1", "0.55", "0.6")
		answers, err := ask.NewEngine(p, 0).AskAll([]ask.Question{scale})
		if err != nil {
			t.Fatalf("AskAll failed: %v", err)
		}
		if n, _ := answers.Number("guidance_scale"); n != 0.6 {
			t.Errorf("guidance_scale = %v, want 0.6", n)
		}
		want := []string{"Must be at most 1", "Please enter a number", "Must be at least 0", "Must be a multiple of 0.1"}
		if !reflect.DeepEqual(p.Notices, want) {
			t.Errorf("notices = %v, want %v", p.Notices, want)
		}
	})

	t.Run("blank optional leaves no entry", func(t *testing.T) {
		answers, err := ask.NewEngine(asktest.New(""), 0).AskAll([]ask.Question{scale})
		if err != nil {
			t.Fatalf("AskAll failed: %v", err)
		}
		if answers.Has("guidance_scale") {
			t.Error("blank optional number recorded an answer")
		}
	})

	t.Run("blank takes default", func(t *testing.T) {
		q := scale
		q.Default = 0.5
		answers, err := ask.NewEngine(asktest.New(""), 0).AskAll([]ask.Question{q})
		if err != nil {
			t.Fatalf("AskAll failed: %v", err)
		}
		if n, _ := answers.Number("guidance_scale"); n != 0.5 {
			t.Errorf("guidance_scale = %v, want 0.5", n)
		}
	})
}

func TestAskAll_SelectImages(t *testing.T) {
	dir := t.TempDir()
	sizedFile(t, filepath.Join(dir, "big.png"), 60*1024*1024)
	sizedFile(t, filepath.Join(dir, "b.jpg"), 2*1024*1024)
	sizedFile(t, filepath.Join(dir, "a.jpg"), 2*1024*1024)
	sizedFile(t, filepath.Join(dir, "notes.txt"), 10)

	q := ask.Question{Kind: ask.KindSelectImages, Name: "image_files", Label: "Images", Dir: dir, Required: true}

	t.Run("select all excludes oversized", func(t *testing.T) {
		p := asktest.New([]string(nil))
		answers, err := ask.NewEngine(p, 0).AskAll([]ask.Question{q})
		if err != nil {
			t.Fatalf("AskAll failed: %v", err)
		}

		want := []string{filepath.Join(dir, "a.jpg"), filepath.Join(dir, "b.jpg")}
		if got := answers.Strings("image_files"); !reflect.DeepEqual(got, want) {
			t.Errorf("image_files = %v, want %v", got, want)
		}
		if len(p.Notices) == 0 || p.Notices[0] != "Found 3 images (2 valid)" {
			t.Errorf("notices = %v", p.Notices)
		}

		options := p.Options["Images"]
		if len(options) != 4 {
			t.Fatalf("option count = %d, want 4", len(options))
		}
		if options[0].Value != ask.SelectAll || options[0].Label != "Select all 2 valid images" {
			t.Errorf("first option = %+v", options[0])
		}
		big := options[3]
		if !big.Disabled || !strings.Contains(big.Reason, "too large") {
			t.Errorf("oversized option = %+v, want disabled with reason", big)
		}
	})

	t.Run("individual pick ignores invalid", func(t *testing.T) {
		p := asktest.New([]string{filepath.Join(dir, "b.jpg"), filepath.Join(dir, "big.png")})
		answers, err := ask.NewEngine(p, 0).AskAll([]ask.Question{q})
		if err != nil {
			t.Fatalf("AskAll failed: %v", err)
		}
		want := []string{filepath.Join(dir, "b.jpg")}
		if got := answers.Strings("image_files"); !reflect.DeepEqual(got, want) {
			t.Errorf("image_files = %v, want %v", got, want)
		}
	})

	t.Run("empty selection re-prompts when required", func(t *testing.T) {
		p := asktest.New([]string{}, []string{filepath.Join(dir, "a.jpg")})
		answers, err := ask.NewEngine(p, 0).AskAll([]ask.Question{q})
		if err != nil {
			t.Fatalf("AskAll failed: %v", err)
		}
		if got := answers.Strings("image_files"); len(got) != 1 {
			t.Errorf("image_files = %v, want one path", got)
		}
	})

	t.Run("no valid images asks for another directory", func(t *testing.T) {
		empty := t.TempDir()
		eq := q
		eq.Dir = empty
		p := asktest.New(dir, []string(nil))
		answers, err := ask.NewEngine(p, 0).AskAll([]ask.Question{eq})
		if err != nil {
			t.Fatalf("AskAll failed: %v", err)
		}
		if got := answers.Strings("image_files"); len(got) != 2 {
			t.Errorf("image_files = %v, want two paths", got)
		}
		if p.Asked[0] != "Directory to scan for images" {
			t.Errorf("first prompt = %q", p.Asked[0])
		}
	})

	t.Run("no valid images optional returns empty", func(t *testing.T) {
		eq := q
		eq.Dir = t.TempDir()
		eq.Required = false
		answers, err := ask.NewEngine(asktest.New(), 0).AskAll([]ask.Question{eq})
		if err != nil {
			t.Fatalf("AskAll failed: %v", err)
		}
		if got := answers.Strings("image_files"); len(got) != 0 {
			t.Errorf("image_files = %v, want empty", got)
		}
		if !answers.Has("image_files") {
			t.Error("image_files not recorded")
		}
	})
}
