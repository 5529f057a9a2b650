package prapi

import (
	"fmt"
	"math"
	"strconv"
)

// Response headers
const (
	HeaderUncertainty           = "x-uncertainty-score"
	HeaderBackgroundSeed        = "pr-ai-background-seed"
	HeaderEditFurtherURL        = "pr-edit-further-url"
	HeaderTextsDetected         = "pr-texts-detected"
	HeaderUnsupportedAttributes = "pr-unsupported-attributes"
)

// Field is one multipart form value
type Field struct {
	Name  string
	Value string
}

// Fields is an ordered form
type Fields []Field

// Add appends a field, skipping empty values
func (f *Fields) Add(name, value string) {
	if value == "" {
		return
	}
	*f = append(*f, Field{Name: name, Value: value})
}

// AddBool appends "true" or "false"
func (f *Fields) AddBool(name string, v bool) {
	*f = append(*f, Field{Name: name, Value: strconv.FormatBool(v)})
}

// AddNumber appends a number without trailing zeros
func (f *Fields) AddNumber(name string, v float64) {
	*f = append(*f, Field{Name: name, Value: strconv.FormatFloat(v, 'f', -1, 64)})
}

// Get returns the value of the last field with name
func (f Fields) Get(name string) (string, bool) {
	for i := len(f) - 1; i >= 0; i-- {
		if f[i].Name == name {
			return f[i].Value, true
		}
	}
	return "", false
}

// SegmentOptions are the remove-background parameters
type SegmentOptions struct {
	Format   string // png, jpg or webp
	Channels string // rgba or alpha
	BgColor  string
	Size     string // preview, medium, hd, full or WIDTHxHEIGHT
	Crop     bool
	Despill  bool
}

// OutputFormat returns the file extension results are saved with
func (o SegmentOptions) OutputFormat() string {
	if o.Format == "" {
		return "png"
	}
	return o.Format
}

func (o SegmentOptions) fields() Fields {
	var f Fields
	f.Add("format", o.Format)
	f.Add("channels", o.Channels)
	f.Add("bg_color", o.BgColor)
	f.Add("size", o.Size)
	f.AddBool("crop", o.Crop)
	f.AddBool("despill", o.Despill)
	return f
}

// SegmentResult is a processed image from the remove-background endpoint
type SegmentResult struct {
	Data        []byte
	ContentType string
	Uncertainty *float64 // Nil when the header was absent
	DryRun      bool
}

// EditRequest is one image-editing call. Exactly one of ImagePath and
// ImageURL is set.
type EditRequest struct {
	ImagePath string
	ImageURL  string
	Fields    Fields // Dotted API names, e.g. "background.color"
}

// ExportFormat returns the file extension results are saved with
func (r EditRequest) ExportFormat() string {
	if v, ok := r.Fields.Get("export.format"); ok && v != "" {
		return v
	}
	return "png"
}

// EditResult is a processed image from the image-editing endpoint
type EditResult struct {
	Data                  []byte
	ContentType           string
	BackgroundSeed        string
	EditFurtherURL        string
	TextsDetected         string
	UnsupportedAttributes string
	DryRun                bool
}

// Account holds the credit balance
type Account struct {
	Available    int64
	Subscription int64
	DryRun       bool
}

// Confidence describes an uncertainty score
type Confidence struct {
	Level       string
	Description string
}

// Interpret maps an uncertainty score to a confidence level. -1 means a
// human was detected.
func Interpret(score float64) Confidence {
	switch {
	case score == -1:
		return Confidence{"human-detected", "Human detected in image (different processing applied)"}
	case score <= 0.3:
		return Confidence{"very-high", "Model is very confident about the cutout accuracy"}
	case score <= 0.5:
		return Confidence{"high", "Model is confident about the cutout accuracy"}
	case score <= 0.7:
		return Confidence{"medium", "Model has moderate confidence about the cutout"}
	default:
		return Confidence{"low", "Model is unsure about the cutout (complex objects/backgrounds)"}
	}
}

// ConfidenceLabel renders a score as "(87% confidence)" or "(human detected)"
func ConfidenceLabel(score float64) string {
	if score == -1 {
		return "(human detected)"
	}
	return fmt.Sprintf("(%.0f%% confidence)", math.Round((1-score)*100))
}
