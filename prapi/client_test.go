package prapi_test

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"photoroom/prapi"
	"photoroom/prapi/praptest"
)

const testKey = "sandbox_sk_test"

func newClient(t *testing.T, srv *praptest.Server, key string, dryRun bool) (*prapi.Client, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	c, err := prapi.NewClient(prapi.Config{
		APIKey:      key,
		SDKURL:      srv.URL,
		ImageAPIURL: srv.URL + "/",
		Timeout:     5 * time.Second,
		DryRun:      dryRun,
		Out:         &out,
		Logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	return c, &out
}

func writeImage(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("\x89PNG fake"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestNewClient(t *testing.T) {
	t.Run("requires key", func(t *testing.T) {
		if _, err := prapi.NewClient(prapi.Config{}); err == nil {
			t.Error("NewClient without key returned no error")
		}
	})

	t.Run("dry run needs no key", func(t *testing.T) {
		if _, err := prapi.NewClient(prapi.Config{DryRun: true}); err != nil {
			t.Errorf("NewClient dry run: %v", err)
		}
	})

	t.Run("rejects bad scheme", func(t *testing.T) {
		if _, err := prapi.NewClient(prapi.Config{APIKey: "k", SDKURL: "ftp://example.com"}); err == nil {
			t.Error("NewClient accepted ftp endpoint")
		}
	})
}

func TestSegment(t *testing.T) {
	srv := praptest.NewServer(testKey)
	defer srv.Close()
	dir := t.TempDir()
	c, _ := newClient(t, srv, testKey, false)

	t.Run("success", func(t *testing.T) {
		path := writeImage(t, dir, "cat.png")
		opts := prapi.SegmentOptions{Format: "webp", Channels: "rgba", BgColor: "#FF0000", Size: "hd", Crop: true}

		res, err := c.Segment(context.Background(), path, opts)
		if err != nil {
			t.Fatalf("Segment failed: %v", err)
		}
		if got := string(res.Data); got != "segmented:cat.png:webp" {
			t.Errorf("Data = %q", got)
		}
		if res.Uncertainty == nil || *res.Uncertainty != 0.12 {
			t.Errorf("Uncertainty = %v, want 0.12", res.Uncertainty)
		}

		reqs := srv.Requests()
		last := reqs[len(reqs)-1]
		if last.Path != "/v1/segment" {
			t.Errorf("Path = %q", last.Path)
		}
		if last.FileType != "image/png" {
			t.Errorf("FileType = %q, want image/png", last.FileType)
		}
		want := map[string]string{
			"format": "webp", "channels": "rgba", "bg_color": "#FF0000",
			"size": "hd", "crop": "true", "despill": "false",
		}
		for k, v := range want {
			if last.Fields[k] != v {
				t.Errorf("field %s = %q, want %q", k, last.Fields[k], v)
			}
		}
	})

	t.Run("api error", func(t *testing.T) {
		path := writeImage(t, dir, "fail.jpg")
		_, err := c.Segment(context.Background(), path, prapi.SegmentOptions{})
		apiErr, ok := prapi.AsError(err)
		if !ok {
			t.Fatalf("err = %v, want *prapi.Error", err)
		}
		if apiErr.StatusCode != 402 || apiErr.Kind != "payment_required" {
			t.Errorf("error = %+v", apiErr)
		}
		if want := "Payment Required: Not enough credits (payment_required)"; apiErr.Message != want {
			t.Errorf("Message = %q, want %q", apiErr.Message, want)
		}
	})

	t.Run("plain text error", func(t *testing.T) {
		path := writeImage(t, dir, "broken.png")
		_, err := c.Segment(context.Background(), path, prapi.SegmentOptions{})
		apiErr, ok := prapi.AsError(err)
		if !ok {
			t.Fatalf("err = %v, want *prapi.Error", err)
		}
		if apiErr.Detail != "upstream exploded" || apiErr.Kind != prapi.KindUnknown {
			t.Errorf("error = %+v", apiErr)
		}
	})

	t.Run("bad key is forbidden", func(t *testing.T) {
		bad, _ := newClient(t, srv, "wrong", false)
		path := writeImage(t, dir, "dog.png")
		_, err := bad.Segment(context.Background(), path, prapi.SegmentOptions{})
		apiErr, ok := prapi.AsError(err)
		if !ok || !apiErr.Forbidden() {
			t.Fatalf("err = %v, want forbidden", err)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := c.Segment(context.Background(), filepath.Join(dir, "nope.png"), prapi.SegmentOptions{})
		if err == nil {
			t.Error("Segment of missing file returned no error")
		}
	})
}

func TestSegment_FailureDoesNotAffectNext(t *testing.T) {
	srv := praptest.NewServer(testKey)
	defer srv.Close()
	dir := t.TempDir()
	c, _ := newClient(t, srv, testKey, false)
	opts := prapi.SegmentOptions{Format: "png"}

	if _, err := c.Segment(context.Background(), writeImage(t, dir, "fail.png"), opts); err == nil {
		t.Error("fail.png succeeded")
	}
	result, err := c.Segment(context.Background(), writeImage(t, dir, "human.png"), opts)
	if err != nil {
		t.Fatalf("Segment failed: %v", err)
	}
	if s := result.Uncertainty; s == nil || *s != -1 {
		t.Errorf("human score = %v, want -1", s)
	}
}

func TestEditImage(t *testing.T) {
	srv := praptest.NewServer(testKey)
	defer srv.Close()
	dir := t.TempDir()
	c, _ := newClient(t, srv, testKey, false)

	t.Run("file", func(t *testing.T) {
		var fields prapi.Fields
		fields.Add("background.color", "FFFFFF")
		fields.Add("export.format", "webp")
		fields.Add("background.prompt", "")
		req := prapi.EditRequest{ImagePath: writeImage(t, dir, "shoe.webp"), Fields: fields}

		res, err := c.EditImage(context.Background(), req)
		if err != nil {
			t.Fatalf("EditImage failed: %v", err)
		}
		if res.BackgroundSeed != "42" || res.EditFurtherURL == "" || res.TextsDetected != "0" {
			t.Errorf("result = %+v", res)
		}
		if req.ExportFormat() != "webp" {
			t.Errorf("ExportFormat = %q", req.ExportFormat())
		}

		reqs := srv.Requests()
		last := reqs[len(reqs)-1]
		if last.FileName != "shoe.webp" || last.FileType != "image/webp" {
			t.Errorf("file = %q %q", last.FileName, last.FileType)
		}
		if _, ok := last.Fields["background.prompt"]; ok {
			t.Error("empty field was sent")
		}
		if last.Fields["background.color"] != "FFFFFF" {
			t.Errorf("background.color = %q", last.Fields["background.color"])
		}
	})

	t.Run("url", func(t *testing.T) {
		res, err := c.EditImage(context.Background(), prapi.EditRequest{ImageURL: "https://example.com/a.jpg"})
		if err != nil {
			t.Fatalf("EditImage failed: %v", err)
		}
		if string(res.Data) != "edited:https://example.com/a.jpg" {
			t.Errorf("Data = %q", res.Data)
		}
	})

	t.Run("needs one source", func(t *testing.T) {
		if _, err := c.EditImage(context.Background(), prapi.EditRequest{}); err == nil {
			t.Error("EditImage without source returned no error")
		}
	})
}

func TestAccount(t *testing.T) {
	srv := praptest.NewServer(testKey)
	defer srv.Close()

	t.Run("credits", func(t *testing.T) {
		c, _ := newClient(t, srv, testKey, false)
		acct, err := c.Account(context.Background())
		if err != nil {
			t.Fatalf("Account failed: %v", err)
		}
		if acct.Available != 120 || acct.Subscription != 500 {
			t.Errorf("account = %+v", acct)
		}
	})

	t.Run("nested error message", func(t *testing.T) {
		c, _ := newClient(t, srv, "wrong", false)
		_, err := c.Account(context.Background())
		apiErr, ok := prapi.AsError(err)
		if !ok {
			t.Fatalf("err = %v, want *prapi.Error", err)
		}
		if apiErr.Detail != "Invalid API key" || !apiErr.Forbidden() {
			t.Errorf("error = %+v", apiErr)
		}
	})
}

func TestDryRun(t *testing.T) {
	srv := praptest.NewServer(testKey)
	defer srv.Close()
	c, out := newClient(t, srv, testKey, true)
	path := writeImage(t, t.TempDir(), "cat.png")

	res, err := c.Segment(context.Background(), path, prapi.SegmentOptions{Format: "png"})
	if err != nil {
		t.Fatalf("Segment failed: %v", err)
	}
	if !res.DryRun || string(res.Data) != prapi.DryRunPlaceholder {
		t.Errorf("result = %+v", res)
	}
	if n := len(srv.Requests()); n != 0 {
		t.Errorf("server saw %d requests in dry run", n)
	}

	printed := out.String()
	for _, want := range []string{"/v1/segment", "Method: POST", "image_file: [File: " + path + "]", "format: png", prapi.RedactedKey} {
		if !strings.Contains(printed, want) {
			t.Errorf("dry run output missing %q:\n%s", want, printed)
		}
	}
	if strings.Contains(printed, testKey) {
		t.Error("dry run output leaks the API key")
	}

	acct, err := c.Account(context.Background())
	if err != nil || !acct.DryRun {
		t.Errorf("Account dry run = %+v, %v", acct, err)
	}
}

func TestTransportError(t *testing.T) {
	srv := praptest.NewServer(testKey)
	c, _ := newClient(t, srv, testKey, false)
	srv.Close()

	_, err := c.Account(context.Background())
	apiErr, ok := prapi.AsError(err)
	if !ok {
		t.Fatalf("err = %v, want *prapi.Error", err)
	}
	if apiErr.Kind != prapi.KindNetwork || apiErr.StatusCode != 0 {
		t.Errorf("error = %+v", apiErr)
	}
}
