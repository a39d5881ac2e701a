package utils

import (
	"mime"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// ImageExtension sniffs data and returns the extension (without dot) of a
// supported raster image. SVG is not accepted since it is served inline.
func ImageExtension(data []byte) (string, bool) {
	if len(data) == 0 {
		return "", false
	}
	ext := extensionFromMime(mimetype.Detect(data).String())
	return ext, ext != ""
}

func extensionFromMime(mimeType string) string {
	if mimeType == "" {
		return ""
	}
	if parsed, _, err := mime.ParseMediaType(mimeType); err == nil {
		mimeType = parsed
	}

	switch strings.ToLower(mimeType) {
	case "image/png", "image/vnd.mozilla.apng":
		return "png"
	case "image/jpeg", "image/jpg":
		return "jpg"
	case "image/webp":
		return "webp"
	case "image/gif":
		return "gif"
	case "image/bmp":
		return "bmp"
	case "image/heic":
		return "heic"
	case "image/heif":
		return "heif"
	default:
		return ""
	}
}
