package prapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sort"
	"strings"

	"github.com/buger/jsonparser"
)

// RedactedKey replaces the API key in printed and logged headers
const RedactedKey = "********************..."

func redactHeaders(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for name, values := range h {
		v := strings.Join(values, ", ")
		if strings.EqualFold(name, headerAPIKey) {
			v = RedactedKey
		}
		out[name] = v
	}
	return out
}

func (c *Client) logRequest(req *http.Request, f *form) {
	if !c.log.Enabled(req.Context(), slog.LevelDebug) {
		return
	}
	attrs := []any{
		"method", req.Method,
		"url", req.URL.String(),
		"headers", redactHeaders(req.Header),
	}
	if f != nil {
		attrs = append(attrs, "fields", f.fieldNames(), "bytes", f.body.Len())
	}
	c.log.Debug("api request", attrs...)
}

func (c *Client) logResponse(req *http.Request, resp *http.Response, body []byte) {
	if !c.log.Enabled(req.Context(), slog.LevelDebug) {
		return
	}
	attrs := []any{
		"status", resp.StatusCode,
		"url", req.URL.String(),
		"headers", redactHeaders(resp.Header),
	}

	ct := resp.Header.Get("Content-Type")
	switch {
	case strings.HasPrefix(ct, "image/"):
		attrs = append(attrs, "body", fmt.Sprintf("[image %s, %d bytes]", ct, len(body)))
	case isJSON(body):
		var pretty bytes.Buffer
		if err := json.Indent(&pretty, body, "", "  "); err == nil {
			attrs = append(attrs, "body", pretty.String())
		}
	default:
		attrs = append(attrs, "body", truncate(string(body), 500))
	}
	c.log.Debug("api response", attrs...)
}

func isJSON(body []byte) bool {
	_, dataType, _, err := jsonparser.Get(body)
	return err == nil && (dataType == jsonparser.Object || dataType == jsonparser.Array)
}

// printDryRun writes what would have been sent
func printDryRun(w io.Writer, req *http.Request, f *form) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, "DRY RUN - API request details:")
	fmt.Fprintln(w, "================================")
	fmt.Fprintf(w, "URL: %s\n", req.URL.String())
	fmt.Fprintf(w, "Method: %s\n", req.Method)

	fmt.Fprintln(w, "\nHeaders:")
	headers := redactHeaders(req.Header)
	names := make([]string, 0, len(headers))
	for name := range headers {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "  %s: %s\n", name, headers[name])
	}

	if f != nil {
		fmt.Fprintln(w, "\nForm data fields:")
		for _, field := range f.summary {
			v := field.Value
			if v == "" {
				v = "(empty)"
			}
			fmt.Fprintf(w, "  %s: %s\n", field.Name, v)
		}
	}
	fmt.Fprintln(w, "================================")
}
