package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"photoroom/ask"
	"photoroom/ask/asktest"
	"photoroom/prapi"
)

// urlScript answers every editing question for a URL source
func urlScript(url string, editBackground bool) []any {
	script := []any{
		"url", url, // image_source, image_url
		"",   // output_dir
		"",   // templateId
		"",   // upscale.mode
		true, // removeBackground
		editBackground,
	}
	if editBackground {
		script = append(script,
			"#FF0000", // background.color
			"",        // background.imageUrl
			"",        // background.guidance.imageUrl
			"",        // background.guidance.scale
			"a beach", // background.prompt
			"",        // background.negativePrompt
			"",        // background.expandPrompt
			"fill",    // background.scaling
			"42",      // background.seed
		)
	}
	return append(script,
		"center",  // horizontalAlignment
		"",        // verticalAlignment
		"",        // keepExistingAlphaChannel
		false,     // ignorePaddingAndSnapOnCroppedSides
		"",        // lighting.mode
		"",        // scaling
		"",        // referenceBox
		"ai.soft", // shadow.mode
		"",        // textRemoval.mode
		true, "individual", "10%", "", "20px", "", // margins
		true, "", "0.1", // padding, uniform
		false,               // configure_expand
		true, "300", "webp", // export
		"",    // maxWidth
		"800", // maxHeight
		"",    // outputSize
	)
}

func TestEditFields(t *testing.T) {
	questions := editingQuestions("output")
	p := asktest.New(urlScript("https://cdn.example.com/shoe.png", true)...)
	answers, err := ask.NewEngine(p, 0).AskAll(questions)
	if err != nil {
		t.Fatalf("AskAll failed: %v", err)
	}
	if p.Remaining() != 0 {
		t.Errorf("%d scripted answers left", p.Remaining())
	}

	want := prapi.Fields{
		{Name: "removeBackground", Value: "true"},
		{Name: "background.color", Value: "#FF0000"},
		{Name: "background.guidance.scale", Value: "0.6"},
		{Name: "background.prompt", Value: "a beach"},
		{Name: "background.scaling", Value: "fill"},
		{Name: "background.seed", Value: "42"},
		{Name: "horizontalAlignment", Value: "center"},
		{Name: "ignorePaddingAndSnapOnCroppedSides", Value: "false"},
		{Name: "shadow.mode", Value: "ai.soft"},
		{Name: "marginTop", Value: "10%"},
		{Name: "marginBottom", Value: "20px"},
		{Name: "padding", Value: "0.1"},
		{Name: "export.dpi", Value: "300"},
		{Name: "export.format", Value: "webp"},
		{Name: "maxHeight", Value: "800"},
		{Name: "outputSize", Value: "auto"},
	}

	got := editFields(questions, answers)
	if len(got) != len(want) {
		t.Fatalf("fields = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("field %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestEditFields_SkipsUnaskedBackground(t *testing.T) {
	questions := editingQuestions("output")
	p := asktest.New(urlScript("https://cdn.example.com/shoe.png", false)...)
	answers, err := ask.NewEngine(p, 0).AskAll(questions)
	if err != nil {
		t.Fatalf("AskAll failed: %v", err)
	}

	for _, f := range editFields(questions, answers) {
		if strings.HasPrefix(f.Name, "background.") {
			t.Errorf("unexpected field %s=%s", f.Name, f.Value)
		}
	}
	for _, label := range p.Asked {
		if strings.HasPrefix(label, "Background color") {
			t.Error("background questions asked without edit_background")
		}
	}
}

func TestEditingQuestions_RejectsBadURL(t *testing.T) {
	script := append([]any{"url", "https://cdn.example.com/page.html"}, urlScript("https://cdn.example.com/shoe.png", false)[1:]...)
	p := asktest.New(script...)
	answers, err := ask.NewEngine(p, 0).AskAll(editingQuestions("output"))
	if err != nil {
		t.Fatalf("AskAll failed: %v", err)
	}
	if got := answers.String("image_url"); got != "https://cdn.example.com/shoe.png" {
		t.Errorf("image_url = %q", got)
	}
	if len(p.Notices) == 0 || !strings.Contains(p.Notices[0], "image extension") {
		t.Errorf("notices = %v", p.Notices)
	}
}

func TestEditExtras(t *testing.T) {
	extras := editExtras(&prapi.EditResult{BackgroundSeed: "7", EditFurtherURL: "https://x", UnsupportedAttributes: "shadow"})
	if len(extras) != 3 {
		t.Fatalf("extras = %v", extras)
	}
	if !strings.Contains(extras[0], "7") || !strings.Contains(extras[2], "shadow") {
		t.Errorf("extras = %v", extras)
	}
}

func TestImageEditing_EndToEnd(t *testing.T) {
	a, _, out, srv := newTestApp(t, true, false, urlScript("https://cdn.example.com/shoe.png", false)...)
	if err := a.imageEditing(context.Background()); err != nil {
		t.Fatalf("imageEditing failed: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(a.cfg.OutputDir, "shoe_edited.webp"))
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if string(data) != "edited:https://cdn.example.com/shoe.png" {
		t.Errorf("output = %q", data)
	}

	reqs := srv.Requests()
	if len(reqs) != 1 {
		t.Fatalf("requests = %+v", reqs)
	}
	if reqs[0].Fields["export.format"] != "webp" || reqs[0].Fields["marginTop"] != "10%" {
		t.Errorf("fields = %v", reqs[0].Fields)
	}
	if !strings.Contains(out.String(), "Background seed: 42") {
		t.Errorf("missing seed line:\n%s", out)
	}
}
