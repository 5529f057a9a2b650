package main

import (
	"context"
	"strings"

	"photoroom/ask"
	"photoroom/batch"
	"photoroom/conflict"
	"photoroom/prapi"
)

func removeBackgroundQuestions(outputDir string) []ask.Question {
	return []ask.Question{
		{
			Kind:     ask.KindSelectImages,
			Name:     "image_files",
			Label:    "Select images to process",
			Hint:     "Space to toggle, enter to confirm",
			Required: true,
		},
		{
			Kind:    ask.KindSelect,
			Name:    "format",
			Label:   "Output format (the format of the resulting image)",
			Default: "png",
			Choices: []ask.Choice{
				{Message: "PNG (default, best quality with transparency)", Name: "png"},
				{Message: "JPG (smaller file size, no transparency)", Name: "jpg"},
				{Message: "WebP (modern format, good compression)", Name: "webp"},
			},
		},
		{
			Kind:    ask.KindSelect,
			Name:    "channels",
			Label:   "Output channels (the channels of the resulting image)",
			Default: "rgba",
			Choices: []ask.Choice{
				{Message: "RGBA (default, full color with transparency)", Name: "rgba"},
				{Message: "Alpha (only transparency channel, grayscale)", Name: "alpha"},
			},
		},
		{
			Kind:     ask.KindInput,
			Name:     "bg_color",
			Label:    "Background color (optional, replaces transparent areas with solid color)",
			Hint:     "Hex code (#FF00FF) or HTML color (red, green, blue, etc.). Leave empty for transparency.",
			Validate: optional(validateBgColor),
		},
		{
			Kind:    ask.KindSelect,
			Name:    "size",
			Label:   "Output size",
			Default: "full",
			Choices: []ask.Choice{
				{Message: "Preview (0.25 MP - smallest, fastest)", Name: "preview"},
				{Message: "Medium (1.5 MP - balanced)", Name: "medium"},
				{Message: "HD (4 MP - high quality)", Name: "hd"},
				{Message: "Full (36 MP - original size, can be slower)", Name: "full"},
				{Message: "Custom (WIDTHxHEIGHT)", Name: "custom"},
			},
			Subquestions: map[string][]ask.Question{
				"custom": {{
					Kind:     ask.KindInput,
					Name:     "custom_size",
					Label:    "Custom size",
					Hint:     "e.g. 800x600",
					Required: true,
					Validate: validateCustomSize,
				}},
			},
		},
		{
			Kind:  ask.KindConfirm,
			Name:  "crop",
			Label: "Crop to cutout border? (removes transparent pixels from edges)",
		},
		{
			Kind:  ask.KindConfirm,
			Name:  "despill",
			Label: "Remove green screen reflections?",
		},
		{
			Kind:     ask.KindInput,
			Name:     "output_dir",
			Label:    "Output directory",
			Default:  outputDir,
			Required: true,
		},
	}
}

// segmentOptions maps answers to request parameters
func segmentOptions(a ask.Answers) prapi.SegmentOptions {
	size := a.String("size")
	if size == "custom" {
		size = strings.TrimSpace(a.String("custom_size"))
	}
	return prapi.SegmentOptions{
		Format:   a.String("format"),
		Channels: a.String("channels"),
		BgColor:  strings.TrimSpace(a.String("bg_color")),
		Size:     size,
		Crop:     a.Bool("crop"),
		Despill:  a.Bool("despill"),
	}
}

// Segmenter is the part of the API client remove-background needs
type Segmenter interface {
	Segment(ctx context.Context, path string, opts prapi.SegmentOptions) (*prapi.SegmentResult, error)
}

// segmentItem builds the batch item for one image
func segmentItem(api Segmenter, path, outputDir string, opts prapi.SegmentOptions, spin func(string) func()) batch.Item {
	return batch.Item{
		Source: path,
		Output: batch.OutputPath(outputDir, path, "processed", opts.OutputFormat()),
		Process: func(ctx context.Context) (*batch.Result, error) {
			stop := spin("Removing background...")
			res, err := api.Segment(ctx, path, opts)
			stop()
			if err != nil {
				return nil, err
			}

			out := &batch.Result{Data: res.Data, DryRun: res.DryRun}
			if res.Uncertainty != nil {
				score := *res.Uncertainty
				out.Note = prapi.ConfidenceLabel(score)
				out.Extras = []string{prapi.Interpret(score).Description}
			}
			return out, nil
		},
	}
}

func (a *app) spinner(label string) func() {
	return startSpinner(a.out, label, a.spin && !a.dryRun)
}

func (a *app) removeBackground(ctx context.Context) error {
	client, err := a.client()
	if err != nil {
		return err
	}

	printHeader(a.out, "🖼️  Remove Background")
	answers, err := a.engine.AskAll(removeBackgroundQuestions(a.cfg.OutputDir))
	if err != nil {
		return err
	}

	opts := segmentOptions(answers)
	outputDir := answers.String("output_dir")
	var items []batch.Item
	for _, path := range answers.Strings("image_files") {
		items = append(items, segmentItem(client, path, outputDir, opts, a.spinner))
	}

	runner := batch.NewRunner(conflict.NewResolver(a.engine), conflict.NewState(), a.out, a.dryRun, a.log)
	_, err = runner.Run(ctx, items)
	return err
}
