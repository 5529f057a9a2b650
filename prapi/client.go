package prapi

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/buger/jsonparser"
)

const (
	DefaultSDKURL      = "https://sdk.photoroom.com"
	DefaultImageAPIURL = "https://image-api.photoroom.com"
	DefaultTimeout     = 2 * time.Minute

	// DryRunPlaceholder is the body returned instead of an image in dry-run mode
	DryRunPlaceholder = "DRY RUN - No actual request made"

	headerAPIKey = "x-api-key"
	acceptImage  = "image/png, application/json"
)

// Config configures a Client. Zero values take the defaults above.
type Config struct {
	APIKey      string
	SDKURL      string
	ImageAPIURL string
	Timeout     time.Duration
	DryRun      bool
	Out         io.Writer // Dry-run request listings; os.Stdout when nil
	Logger      *slog.Logger
}

// Client talks to the PhotoRoom HTTP APIs
type Client struct {
	apiKey   string
	sdkURL   string
	imageURL string
	dryRun   bool
	http     *http.Client
	out      io.Writer
	log      *slog.Logger
}

// NewClient validates cfg and creates a client
func NewClient(cfg Config) (*Client, error) {
	if cfg.SDKURL == "" {
		cfg.SDKURL = DefaultSDKURL
	}
	if cfg.ImageAPIURL == "" {
		cfg.ImageAPIURL = DefaultImageAPIURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Out == nil {
		cfg.Out = os.Stdout
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.APIKey == "" && !cfg.DryRun {
		return nil, errors.New("no API key configured")
	}

	for _, endpoint := range []string{cfg.SDKURL, cfg.ImageAPIURL} {
		u, err := url.Parse(endpoint)
		if err != nil {
			return nil, fmt.Errorf("invalid endpoint: %w", err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return nil, fmt.Errorf("invalid endpoint %q: scheme must be http or https", endpoint)
		}
	}

	return &Client{
		apiKey:   cfg.APIKey,
		sdkURL:   strings.TrimRight(cfg.SDKURL, "/"),
		imageURL: strings.TrimRight(cfg.ImageAPIURL, "/"),
		dryRun:   cfg.DryRun,
		http:     &http.Client{Timeout: cfg.Timeout},
		out:      cfg.Out,
		log:      cfg.Logger,
	}, nil
}

// DryRun reports whether requests are printed instead of sent
func (c *Client) DryRun() bool {
	return c.dryRun
}

// send performs one request. A non-200 status is returned as *Error; so is
// a transport failure. In dry-run mode the request is printed and nil
// response, nil body and nil error are returned.
func (c *Client) send(ctx context.Context, method, endpoint string, f *form, accept string) (*http.Response, []byte, error) {
	var body io.Reader
	if f != nil {
		body = bytes.NewReader(f.body.Bytes())
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Accept", accept)
	req.Header.Set(headerAPIKey, c.apiKey)
	if f != nil {
		req.Header.Set("Content-Type", f.contentType)
	}

	if c.dryRun {
		printDryRun(c.out, req, f)
		return nil, nil, nil
	}

	c.logRequest(req, f)
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, nil, transportError(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, transportError(err)
	}
	c.logResponse(req, resp, data)

	if resp.StatusCode != http.StatusOK {
		return nil, nil, normalizeError(resp.StatusCode, data)
	}
	return resp, data, nil
}

// Segment removes the background of one image
func (c *Client) Segment(ctx context.Context, path string, opts SegmentOptions) (*SegmentResult, error) {
	f, err := newForm("image_file", path, opts.fields())
	if err != nil {
		return nil, err
	}

	resp, data, err := c.send(ctx, http.MethodPost, c.sdkURL+"/v1/segment", f, acceptImage)
	if err != nil {
		return nil, err
	}
	if c.dryRun {
		return &SegmentResult{Data: []byte(DryRunPlaceholder), DryRun: true}, nil
	}

	result := &SegmentResult{Data: data, ContentType: resp.Header.Get("Content-Type")}
	if v := resp.Header.Get(HeaderUncertainty); v != "" {
		if score, err := strconv.ParseFloat(v, 64); err == nil {
			result.Uncertainty = &score
		} else {
			c.log.Warn("ignoring malformed uncertainty score", "value", v)
		}
	}
	return result, nil
}

// EditImage runs one image-editing request
func (c *Client) EditImage(ctx context.Context, r EditRequest) (*EditResult, error) {
	if (r.ImagePath == "") == (r.ImageURL == "") {
		return nil, errors.New("edit request needs exactly one of an image file or an image URL")
	}

	var f *form
	var err error
	if r.ImageURL != "" {
		fields := append(Fields{{Name: "imageUrl", Value: r.ImageURL}}, r.Fields...)
		f, err = newForm("", "", fields)
	} else {
		f, err = newForm("imageFile", r.ImagePath, r.Fields)
	}
	if err != nil {
		return nil, err
	}

	resp, data, err := c.send(ctx, http.MethodPost, c.imageURL+"/v2/edit", f, acceptImage)
	if err != nil {
		return nil, err
	}
	if c.dryRun {
		return &EditResult{Data: []byte(DryRunPlaceholder), DryRun: true}, nil
	}

	return &EditResult{
		Data:                  data,
		ContentType:           resp.Header.Get("Content-Type"),
		BackgroundSeed:        resp.Header.Get(HeaderBackgroundSeed),
		EditFurtherURL:        resp.Header.Get(HeaderEditFurtherURL),
		TextsDetected:         resp.Header.Get(HeaderTextsDetected),
		UnsupportedAttributes: resp.Header.Get(HeaderUnsupportedAttributes),
	}, nil
}

// Account fetches the credit balance
func (c *Client) Account(ctx context.Context) (*Account, error) {
	resp, data, err := c.send(ctx, http.MethodGet, c.imageURL+"/v1/account", nil, "application/json")
	if err != nil {
		return nil, err
	}
	if c.dryRun {
		return &Account{DryRun: true}, nil
	}
	return parseAccount(resp.StatusCode, data)
}

func parseAccount(status int, data []byte) (*Account, error) {
	available, err := jsonparser.GetInt(data, "credits", "available")
	if err != nil {
		return nil, parseError("credits.available: "+err.Error(), status)
	}
	subscription, err := jsonparser.GetInt(data, "credits", "subscription")
	if err != nil {
		return nil, parseError("credits.subscription: "+err.Error(), status)
	}
	return &Account{Available: available, Subscription: subscription}, nil
}
