package main

import (
	"context"
	"strings"

	"photoroom/ask"
	"photoroom/batch"
	"photoroom/conflict"
	"photoroom/prapi"
)

// unset is the select value that leaves an API field out of the request
const unset = "-"

// Control questions steer the flow; every other question name is the
// dotted API field it fills.
var editControls = map[string]bool{
	"image_source":     true,
	"image_files":      true,
	"image_url":        true,
	"output_dir":       true,
	"edit_background":  true,
	"set_margins":      true,
	"margin_style":     true,
	"set_padding":      true,
	"padding_style":    true,
	"configure_expand": true,
	"configure_export": true,
}

// pick builds a select whose first choice leaves the field unset
func pick(name, label string, values ...string) ask.Question {
	choices := []ask.Choice{{Message: "API default", Name: unset}}
	for _, v := range values {
		choices = append(choices, ask.Choice{Message: v, Name: v})
	}
	return ask.Question{Kind: ask.KindSelect, Name: name, Label: label, Default: unset, Choices: choices}
}

func spacingQuestions(kind, prefix string) map[string][]ask.Question {
	side := func(name, label string) ask.Question {
		return ask.Question{
			Kind:     ask.KindInput,
			Name:     name,
			Label:    label + " " + kind + " (0-0.49, 0%-49%, or 100px)",
			Validate: optional(validateSpacing),
		}
	}
	return map[string][]ask.Question{
		"uniform": {{
			Kind:     ask.KindInput,
			Name:     prefix,
			Label:    strings.ToUpper(kind[:1]) + kind[1:] + " for all sides (0-0.49, 0%-49%, or 100px)",
			Default:  "0",
			Validate: optional(validateSpacing),
		}},
		"individual": {
			side(prefix+"Top", "Top"),
			side(prefix+"Right", "Right"),
			side(prefix+"Bottom", "Bottom"),
			side(prefix+"Left", "Left"),
		},
	}
}

func spacingStyle(name, kind, prefix, when string) ask.Question {
	return ask.Question{
		Kind:      ask.KindSelect,
		Name:      name,
		Label:     strings.ToUpper(kind[:1]) + kind[1:] + " configuration",
		Condition: ask.IsTrue(when),
		Default:   "uniform",
		Choices: []ask.Choice{
			{Message: "Same " + kind + " for all sides", Name: "uniform"},
			{Message: "Individual " + kind + " for each side", Name: "individual"},
		},
		Subquestions: spacingQuestions(kind, prefix),
	}
}

func editingQuestions(outputDir string) []ask.Question {
	background := ask.IsTrue("edit_background")
	expand := ask.IsTrue("configure_expand")
	export := ask.IsTrue("configure_export")

	return []ask.Question{
		{
			Kind:     ask.KindSelect,
			Name:     "image_source",
			Label:    "Select the image source",
			Hint:     "Choose how to provide your image",
			Default:  "file",
			Required: true,
			Choices: []ask.Choice{
				{Message: "Upload a file", Name: "file"},
				{Message: "Use an image URL", Name: "url"},
			},
			Subquestions: map[string][]ask.Question{
				"file": {{
					Kind:     ask.KindSelectImages,
					Name:     "image_files",
					Label:    "Select image file(s) to edit",
					Hint:     "Choose one or more images to edit",
					Required: true,
				}},
				"url": {{
					Kind:     ask.KindInput,
					Name:     "image_url",
					Label:    "Enter the image URL",
					Hint:     "Paste a valid image URL",
					Required: true,
					Validate: validateImageURL,
				}},
			},
		},
		{
			Kind:     ask.KindInput,
			Name:     "output_dir",
			Label:    "Output directory",
			Hint:     "Directory to save edited images",
			Default:  outputDir,
			Required: true,
		},
		{
			Kind:     ask.KindInput,
			Name:     "templateId",
			Label:    "Template ID (UUID, optional)",
			Validate: optional(validateUUID),
		},
		pick("upscale.mode", "Upscale mode (alpha feature)", "ai.fast", "ai.slow"),
		{
			Kind:    ask.KindConfirm,
			Name:    "removeBackground",
			Label:   "Remove background using PhotoRoom's algorithm?",
			Default: true,
		},

		// Background
		{
			Kind:  ask.KindConfirm,
			Name:  "edit_background",
			Label: "Do you want to edit the background?",
		},
		{
			Kind:      ask.KindInput,
			Name:      "background.color",
			Label:     "Background color (hex: FF0000, #FF0000 or name: red, blue, transparent)",
			Default:   "transparent",
			Condition: background,
			Validate:  optional(validateEditColor),
		},
		{
			Kind:      ask.KindInput,
			Name:      "background.imageUrl",
			Label:     "Background image URL (optional, max 30MB)",
			Condition: background,
			Validate:  optional(validateImageURL),
		},
		{
			Kind:      ask.KindInput,
			Name:      "background.guidance.imageUrl",
			Label:     "Background guidance image URL (optional, max 30MB)",
			Condition: background,
			Validate:  optional(validateImageURL),
		},
		{
			Kind:      ask.KindNumber,
			Name:      "background.guidance.scale",
			Label:     "Background guidance scale (0-1, how closely to match the guiding image)",
			Default:   0.6,
			Min:       ask.Bound(0),
			Max:       ask.Bound(1),
			Condition: background,
		},
		{
			Kind:      ask.KindInput,
			Name:      "background.prompt",
			Label:     `Background prompt (optional, e.g. "a blue sky with white clouds")`,
			Condition: background,
		},
		{
			Kind:      ask.KindInput,
			Name:      "background.negativePrompt",
			Label:     "Negative prompt (optional, only works with AI model v2)",
			Condition: background,
		},
		{
			Kind:      ask.KindInput,
			Name:      "background.expandPrompt",
			Label:     "Expand prompt (optional)",
			Condition: background,
		},
		withCondition(pick("background.scaling", "Background scaling (only for image backgrounds)", "fit", "fill"), background),
		{
			Kind:      ask.KindNumber,
			Name:      "background.seed",
			Label:     "Background seed (integer for reproducible results, optional)",
			Min:       ask.Bound(0),
			Step:      1,
			Condition: background,
		},

		// Layout
		pick("horizontalAlignment", "Horizontal alignment", "left", "center", "right"),
		pick("verticalAlignment", "Vertical alignment", "top", "center", "bottom"),
		pick("keepExistingAlphaChannel", "Keep existing alpha channel", "auto", "never"),
		{
			Kind:    ask.KindToggle,
			Name:    "ignorePaddingAndSnapOnCroppedSides",
			Label:   "Snap cropped subject sides to edges (ignores padding on cropped sides)?",
			Default: true,
		},
		pick("lighting.mode", "Lighting mode", "ai.auto"),
		pick("scaling", "Subject scaling (how the subject fits in the output)", "fit", "fill"),
		pick("referenceBox", "Reference box", "subjectBox", "originalImage"),
		pick("shadow.mode", "Shadow mode", "ai.soft", "ai.hard", "ai.floating"),
		pick("textRemoval.mode", "Text removal mode", "ai.artificial", "ai.natural", "ai.all"),

		// Spacing
		{Kind: ask.KindConfirm, Name: "set_margins", Label: "Do you want to set margins?"},
		spacingStyle("margin_style", "margin", "margin", "set_margins"),
		{Kind: ask.KindConfirm, Name: "set_padding", Label: "Do you want to set padding?"},
		spacingStyle("padding_style", "padding", "padding", "set_padding"),

		// Expand
		{Kind: ask.KindConfirm, Name: "configure_expand", Label: "Do you want to configure expand mode?"},
		{
			Kind:      ask.KindSelect,
			Name:      "expand.mode",
			Label:     "Expand mode (fills transparent pixels automatically)",
			Default:   "ai.auto",
			Condition: expand,
			Choices:   []ask.Choice{{Message: "ai.auto", Name: "ai.auto"}},
		},
		{
			Kind:      ask.KindNumber,
			Name:      "expand.seed",
			Label:     "Expand seed (integer for reproducible results, optional)",
			Min:       ask.Bound(0),
			Step:      1,
			Condition: expand,
		},

		// Export and output
		{Kind: ask.KindConfirm, Name: "configure_export", Label: "Do you want to set export options?"},
		{
			Kind:      ask.KindNumber,
			Name:      "export.dpi",
			Label:     "DPI (72-1200, e.g. 300 for print, 96 for web)",
			Min:       ask.Bound(72),
			Max:       ask.Bound(1200),
			Step:      1,
			Condition: export,
		},
		{
			Kind:      ask.KindSelect,
			Name:      "export.format",
			Label:     "Export format",
			Default:   "png",
			Condition: export,
			Choices: []ask.Choice{
				{Message: "png", Name: "png"},
				{Message: "jpeg", Name: "jpeg"},
				{Message: "jpg", Name: "jpg"},
				{Message: "webp", Name: "webp"},
			},
		},
		{
			Kind:  ask.KindNumber,
			Name:  "maxWidth",
			Label: "Max width (resize keeping aspect ratio, optional)",
			Min:   ask.Bound(1),
			Step:  1,
		},
		{
			Kind:  ask.KindNumber,
			Name:  "maxHeight",
			Label: "Max height (resize keeping aspect ratio, optional)",
			Min:   ask.Bound(1),
			Step:  1,
		},
		{
			Kind:     ask.KindInput,
			Name:     "outputSize",
			Label:    "Output size (auto/originalImage/croppedSubject/200x400)",
			Default:  "auto",
			Validate: optional(validateOutputSize),
		},
	}
}

func withCondition(q ask.Question, cond func(ask.Answers) bool) ask.Question {
	q.Condition = cond
	return q
}

// editFields turns answers into form fields, in question order
func editFields(questions []ask.Question, a ask.Answers) prapi.Fields {
	var fields prapi.Fields
	var walk func([]ask.Question)
	seen := map[string]bool{}
	walk = func(qs []ask.Question) {
		for _, q := range qs {
			if !editControls[q.Name] && !seen[q.Name] {
				seen[q.Name] = true
				addField(&fields, q.Name, a[q.Name])
			}
			// Only the chosen branch was asked
			if sub, ok := q.Subquestions[a.String(q.Name)]; ok {
				walk(sub)
			}
		}
	}
	walk(questions)
	return fields
}

func addField(fields *prapi.Fields, name string, v any) {
	switch v := v.(type) {
	case string:
		if v != unset {
			fields.Add(name, strings.TrimSpace(v))
		}
	case bool:
		fields.AddBool(name, v)
	case float64:
		fields.AddNumber(name, v)
	case int:
		fields.AddNumber(name, float64(v))
	}
}

// Editor is the part of the API client image editing needs
type Editor interface {
	EditImage(ctx context.Context, r prapi.EditRequest) (*prapi.EditResult, error)
}

// editItem builds the batch item for one file or URL
func editItem(api Editor, req prapi.EditRequest, outputDir string, spin func(string) func()) batch.Item {
	source := req.ImagePath
	if source == "" {
		source = req.ImageURL
	}
	return batch.Item{
		Source: source,
		Output: batch.OutputPath(outputDir, source, "edited", req.ExportFormat()),
		Process: func(ctx context.Context) (*batch.Result, error) {
			stop := spin("Editing image...")
			res, err := api.EditImage(ctx, req)
			stop()
			if err != nil {
				return nil, err
			}
			return &batch.Result{Data: res.Data, DryRun: res.DryRun, Extras: editExtras(res)}, nil
		},
	}
}

func editExtras(res *prapi.EditResult) []string {
	var extras []string
	if res.BackgroundSeed != "" {
		extras = append(extras, "🌱 Background seed: "+res.BackgroundSeed)
	}
	if res.EditFurtherURL != "" {
		extras = append(extras, "🔗 Edit further: "+res.EditFurtherURL)
	}
	if res.TextsDetected != "" {
		extras = append(extras, "📝 Texts detected: "+res.TextsDetected)
	}
	if res.UnsupportedAttributes != "" {
		extras = append(extras, "⚠️  Unsupported attributes: "+res.UnsupportedAttributes)
	}
	return extras
}

func (a *app) imageEditing(ctx context.Context) error {
	client, err := a.client()
	if err != nil {
		return err
	}

	printHeader(a.out, "✨ Image Editing")
	questions := editingQuestions(a.cfg.OutputDir)
	answers, err := a.engine.AskAll(questions)
	if err != nil {
		return err
	}

	fields := editFields(questions, answers)
	outputDir := answers.String("output_dir")

	var items []batch.Item
	if answers.String("image_source") == "url" {
		req := prapi.EditRequest{ImageURL: strings.TrimSpace(answers.String("image_url")), Fields: fields}
		items = append(items, editItem(client, req, outputDir, a.spinner))
	} else {
		for _, path := range answers.Strings("image_files") {
			items = append(items, editItem(client, prapi.EditRequest{ImagePath: path, Fields: fields}, outputDir, a.spinner))
		}
	}

	runner := batch.NewRunner(conflict.NewResolver(a.engine), conflict.NewState(), a.out, a.dryRun, a.log)
	_, err = runner.Run(ctx, items)
	return err
}
