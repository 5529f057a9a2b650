package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"photoroom/prapi"
)

// Colors for output
var (
	colorCyan     = color.New(color.FgCyan)
	colorGreen    = color.New(color.FgGreen)
	colorYellow   = color.New(color.FgYellow)
	colorRed      = color.New(color.FgRed)
	colorDim      = color.New(color.FgHiBlack)
	colorBold     = color.New(color.Bold)
	colorBoldBlue = color.New(color.FgBlue, color.Bold)
)

func printHeader(w io.Writer, title string) {
	fmt.Fprintln(w)
	colorBoldBlue.Fprintln(w, title)
}

func printDryRunBanner(w io.Writer) {
	colorYellow.Fprintln(w, "🧪 DRY RUN MODE - no requests are sent and no files are written")
}

// printFailure reports a command error, with the key hint for a 403
func printFailure(w io.Writer, err error) {
	fmt.Fprintln(w)
	if apiErr, ok := prapi.AsError(err); ok {
		colorRed.Fprintf(w, "❌ %s\n", apiErr.Message)
		if apiErr.Forbidden() {
			colorYellow.Fprintf(w, "\n⚠️  %s\n", prapi.ForbiddenHint)
		}
		return
	}
	colorRed.Fprintf(w, "❌ %v\n", err)
}
