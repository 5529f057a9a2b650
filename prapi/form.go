package prapi

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
)

// ContentType guesses an image MIME type from the file extension
func ContentType(path string) string {
	switch strings.ToLower(strings.TrimPrefix(filepath.Ext(path), ".")) {
	case "png":
		return "image/png"
	case "webp":
		return "image/webp"
	case "gif":
		return "image/gif"
	case "bmp":
		return "image/bmp"
	case "tif", "tiff":
		return "image/tiff"
	default:
		return "image/jpeg"
	}
}

// form is a multipart body plus a printable summary of its parts
type form struct {
	body        bytes.Buffer
	contentType string
	summary     Fields // Files appear as "[File: path]"
}

func newForm(fileField, filePath string, fields Fields) (*form, error) {
	f := &form{}
	w := multipart.NewWriter(&f.body)

	if fileField != "" {
		data, err := os.ReadFile(filePath)
		if err != nil {
			return nil, fmt.Errorf("read image: %w", err)
		}

		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, fileField, filepath.Base(filePath)))
		h.Set("Content-Type", ContentType(filePath))
		part, err := w.CreatePart(h)
		if err != nil {
			return nil, err
		}
		if _, err := part.Write(data); err != nil {
			return nil, err
		}
		f.summary = append(f.summary, Field{Name: fileField, Value: "[File: " + filePath + "]"})
	}

	for _, field := range fields {
		if err := w.WriteField(field.Name, field.Value); err != nil {
			return nil, err
		}
		f.summary = append(f.summary, field)
	}

	if err := w.Close(); err != nil {
		return nil, err
	}
	f.contentType = w.FormDataContentType()
	return f, nil
}

// fieldNames lists part names for logging
func (f *form) fieldNames() []string {
	names := make([]string, len(f.summary))
	for i, field := range f.summary {
		names[i] = field.Name
	}
	return names
}
