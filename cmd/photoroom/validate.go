package main

import (
	"errors"
	"net/url"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

var (
	hexColor     = regexp.MustCompile(`^#?[0-9A-Fa-f]{6}$`)
	hexColorRGBA = regexp.MustCompile(`^#?[0-9A-Fa-f]{6}([0-9A-Fa-f]{2})?$`)
	dimensions   = regexp.MustCompile(`^(\d+)x(\d+)$`)

	// Names accepted by the remove-background bg_color field
	basicColors = []string{"red", "green", "blue", "black", "white", "yellow", "cyan", "magenta"}

	// Names accepted by background.color on the edit endpoint
	editColors = []string{
		"red", "green", "blue", "yellow", "orange", "purple", "pink", "black", "white", "gray",
		"grey", "brown", "cyan", "magenta", "lime", "navy", "teal", "silver", "maroon", "olive",
	}

	urlImageExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".bmp", ".webp", ".svg", ".tiff", ".tif"}
)

// optional lets an empty answer through
func optional(v func(string) error) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return nil
		}
		return v(s)
	}
}

func validateBgColor(s string) error {
	s = strings.TrimSpace(s)
	if hexColor.MatchString(s) || slices.Contains(basicColors, strings.ToLower(s)) {
		return nil
	}
	return errors.New("Please enter a valid hex color (#FF00FF) or HTML color name")
}

func validateEditColor(s string) error {
	s = strings.TrimSpace(s)
	lower := strings.ToLower(s)
	if lower == "transparent" || hexColorRGBA.MatchString(s) || slices.Contains(editColors, lower) {
		return nil
	}
	return errors.New("Must be a hex color (FF0000, #FF0000) or color name (red, blue, etc.)")
}

// parseDimensions reads WIDTHxHEIGHT with both sides positive
func parseDimensions(s string) (w, h int, ok bool) {
	m := dimensions.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return 0, 0, false
	}
	w, errW := strconv.Atoi(m[1])
	h, errH := strconv.Atoi(m[2])
	if errW != nil || errH != nil || w <= 0 || h <= 0 {
		return 0, 0, false
	}
	return w, h, true
}

func validateCustomSize(s string) error {
	if _, _, ok := parseDimensions(s); !ok {
		return errors.New("Must be WIDTHxHEIGHT with positive numbers (e.g. 800x600)")
	}
	return nil
}

func validateOutputSize(s string) error {
	switch strings.TrimSpace(s) {
	case "auto", "originalImage", "croppedSubject":
		return nil
	}
	if dimensions.MatchString(strings.TrimSpace(s)) {
		if _, _, ok := parseDimensions(s); !ok {
			return errors.New("Width and height must be positive numbers")
		}
		return nil
	}
	return errors.New(`Must be "auto", "originalImage", "croppedSubject", or "widthxheight" (e.g., 200x400)`)
}

func validateImageURL(s string) error {
	u, err := url.Parse(strings.TrimSpace(s))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errors.New("Must be a valid URL (e.g., https://example.com/image.jpg)")
	}
	p := strings.ToLower(u.Path)
	for _, ext := range urlImageExtensions {
		if strings.HasSuffix(p, ext) {
			return nil
		}
	}
	return errors.New("URL must end with an image extension (.jpg, .png, .gif, .webp, etc.)")
}

func validateUUID(s string) error {
	s = strings.TrimSpace(s)
	if _, err := uuid.Parse(s); err != nil || len(s) != 36 {
		return errors.New("Must be a valid UUID format (e.g., 123e4567-e89b-12d3-a456-426614174000)")
	}
	return nil
}

// validateSpacing accepts a margin or padding: 0-0.49, 0%-49% or Npx
func validateSpacing(s string) error {
	s = strings.TrimSpace(s)
	switch {
	case strings.HasSuffix(s, "%"):
		n, err := strconv.ParseFloat(strings.TrimSuffix(s, "%"), 64)
		if err != nil || n < 0 || n > 49 {
			return errors.New("Percentage must be between 0% and 49%")
		}
	case strings.HasSuffix(s, "px"):
		n, err := strconv.ParseFloat(strings.TrimSuffix(s, "px"), 64)
		if err != nil || n < 0 {
			return errors.New("Pixel value must be positive")
		}
	default:
		n, err := strconv.ParseFloat(s, 64)
		if err != nil || n < 0 || n > 0.49 {
			return errors.New("Number must be between 0 and 0.49")
		}
	}
	return nil
}

func validateKeySecret(s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.New("API key cannot be empty")
	}
	if strings.ContainsAny(strings.TrimSpace(s), " \t") {
		return errors.New("API key cannot contain spaces")
	}
	return nil
}
