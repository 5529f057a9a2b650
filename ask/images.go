package ask

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// MaxImageSize is the largest file the API accepts
const MaxImageSize = 50 * 1024 * 1024

// ImageExtensions lists the file extensions offered for selection
var ImageExtensions = []string{".jpg", ".jpeg", ".png", ".webp", ".bmp", ".tiff", ".gif"}

// ImageInfo describes a candidate image file
type ImageInfo struct {
	Path   string
	Name   string
	Size   int64
	Valid  bool
	Reason string // Set when Valid is false
}

// IsImageFile reports whether name has a supported image extension
func IsImageFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range ImageExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

// CheckImageSize applies the upload size limit
func CheckImageSize(size int64) (bool, string) {
	if size > MaxImageSize {
		return false, fmt.Sprintf("File too large (%s > %s)", FormatFileSize(size), FormatFileSize(MaxImageSize))
	}
	return true, ""
}

// InspectImage stats a single file and applies the validity rule
func InspectImage(path string) (ImageInfo, error) {
	st, err := os.Stat(path)
	if err != nil {
		return ImageInfo{}, err
	}
	valid, reason := CheckImageSize(st.Size())
	return ImageInfo{
		Path:   path,
		Name:   filepath.Base(path),
		Size:   st.Size(),
		Valid:  valid,
		Reason: reason,
	}, nil
}

// FindImages lists supported image files directly inside dir, valid ones
// first, each group sorted by name
func FindImages(dir string) ([]ImageInfo, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var images []ImageInfo
	for _, entry := range entries {
		if !entry.Type().IsRegular() || !IsImageFile(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue // Removed while listing
		}
		valid, reason := CheckImageSize(info.Size())
		images = append(images, ImageInfo{
			Path:   filepath.Join(dir, entry.Name()),
			Name:   entry.Name(),
			Size:   info.Size(),
			Valid:  valid,
			Reason: reason,
		})
	}

	sort.SliceStable(images, func(i, j int) bool {
		if images[i].Valid != images[j].Valid {
			return images[i].Valid
		}
		return strings.ToLower(images[i].Name) < strings.ToLower(images[j].Name)
	})
	return images, nil
}

// ValidImages filters images down to the eligible set
func ValidImages(images []ImageInfo) []ImageInfo {
	var valid []ImageInfo
	for _, img := range images {
		if img.Valid {
			valid = append(valid, img)
		}
	}
	return valid
}

// FormatFileSize renders a byte count as "1.5 MB"
func FormatFileSize(n int64) string {
	units := []string{"B", "KB", "MB", "GB"}
	size := float64(n)
	i := 0
	for size >= 1024 && i < len(units)-1 {
		size /= 1024
		i++
	}
	return fmt.Sprintf("%.1f %s", size, units[i])
}

// FormatImageChoice renders one line of the image picker
func FormatImageChoice(img ImageInfo) string {
	if img.Valid {
		return fmt.Sprintf("✓ %-30s %s", img.Name, FormatFileSize(img.Size))
	}
	return fmt.Sprintf("✗ %-30s %s (%s)", img.Name, FormatFileSize(img.Size), img.Reason)
}
