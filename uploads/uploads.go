// Package uploads names and stores product images on local disk and keeps dated backups of them.
package uploads

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

var ErrUnsupportedType = errors.New("unsupported image type")

var imageExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

var unsafeChars = regexp.MustCompile(`[^\w\-.]`)

// FileName turns an uploaded name into "<unix>_<clean base><ext>".
// Repeated image extensions such as "a.jpg.jpg" are collapsed.
func FileName(original string, now time.Time) (string, error) {
	ext := strings.ToLower(filepath.Ext(original))
	if !imageExts[ext] {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedType, ext)
	}

	base := strings.TrimSuffix(filepath.Base(original), filepath.Ext(original))
	for {
		e := strings.ToLower(filepath.Ext(base))
		if e == "" || !imageExts[e] {
			break
		}
		base = strings.TrimSuffix(base, filepath.Ext(base))
	}
	base = unsafeChars.ReplaceAllString(strings.ReplaceAll(base, " ", "_"), "_")
	if base == "" {
		base = "image"
	}

	return fmt.Sprintf("%d_%s%s", now.Unix(), base, ext), nil
}

// PublicURL is where the static route serves a stored file.
func PublicURL(baseURL, fileName string) string {
	return strings.TrimRight(baseURL, "/") + "/uploads/" + fileName
}
