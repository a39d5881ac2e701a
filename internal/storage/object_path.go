package storage

import (
	"fmt"
	"mime"
	"path"
	"strings"
	"time"
)

var nowFunc = time.Now

func sanitizePathSegment(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	builder := strings.Builder{}
	builder.Grow(len(value))
	for i := 0; i < len(value); i++ {
		ch := value[i]
		switch {
		case ch >= 'a' && ch <= 'z', ch >= '0' && ch <= '9':
			builder.WriteByte(ch)
		case ch >= 'A' && ch <= 'Z':
			builder.WriteByte(ch + 32)
		case ch == '-', ch == '_':
			builder.WriteByte(ch)
		}
	}
	return builder.String()
}

func normalizeExtension(ext string) string {
	trimmed := strings.TrimSpace(ext)
	trimmed = strings.TrimPrefix(trimmed, ".")
	if trimmed == "" {
		return "bin"
	}
	if normalized := sanitizePathSegment(trimmed); normalized != "" {
		return normalized
	}
	return "bin"
}

func buildObjectPath(opts SaveOptions) string {
	now := nowFunc().UTC()
	normalizedExt := normalizeExtension(opts.Extension)
	base := sanitizeFileBase(opts.BaseName)
	if base == "" {
		base = fmt.Sprintf("%d", now.UnixNano())
	}
	filename := fmt.Sprintf("%s.%s", base, normalizedExt)
	if opts.Flat {
		return filename
	}

	category := sanitizePathSegment(opts.Category)
	if category == "" {
		category = "misc"
	}
	datedir := fmt.Sprintf("%04d/%02d/%02d", now.Year(), now.Month(), now.Day())
	return path.Join(category, datedir, filename)
}

func detectContentType(ext string) string {
	normalized := normalizeExtension(ext)
	typeName := mime.TypeByExtension("." + normalized)
	if typeName == "" {
		return "application/octet-stream"
	}
	return typeName
}

func joinPrefix(prefix, key string) string {
	cleanPrefix := trimPrefix(prefix)
	if cleanPrefix == "" {
		return strings.TrimLeft(key, "/")
	}
	return path.Join(cleanPrefix, strings.TrimLeft(key, "/"))
}

func trimPrefix(prefix string) string {
	return strings.Trim(strings.TrimSpace(prefix), "/")
}

func sanitizeFileBase(value string) string {
	replaced := strings.ReplaceAll(strings.TrimSpace(value), " ", "-")
	sanitized := sanitizePathSegment(replaced)
	return strings.Trim(sanitized, "-_")
}

// cleanKey rejects empty keys and keys that climb out of the storage root.
func cleanKey(key string) (string, bool) {
	trimmed := strings.TrimLeft(strings.TrimSpace(key), "/")
	if trimmed == "" {
		return "", false
	}
	cleaned := path.Clean(trimmed)
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", false
	}
	return cleaned, true
}

// AvatarBaseName returns "<unix-millis>-<original name without extension>".
func AvatarBaseName(originalName string, at time.Time) string {
	name := path.Base(strings.ReplaceAll(strings.TrimSpace(originalName), "\\", "/"))
	if ext := path.Ext(name); ext != "" {
		name = strings.TrimSuffix(name, ext)
	}
	base := sanitizeFileBase(name)
	if base == "" {
		return fmt.Sprintf("%d", at.UnixMilli())
	}
	return fmt.Sprintf("%d-%s", at.UnixMilli(), base)
}

// PublicURL joins the public base URL and an object key.
func PublicURL(baseURL, key string) string {
	key = strings.TrimLeft(strings.TrimSpace(key), "/")
	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if base == "" {
		return "/" + key
	}
	return base + "/" + key
}

// KeyFromPublicURL is the inverse of PublicURL. References outside baseURL
// are returned with leading slashes removed.
func KeyFromPublicURL(baseURL, ref string) string {
	ref = strings.TrimSpace(ref)
	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if base != "" && strings.HasPrefix(ref, base+"/") {
		ref = strings.TrimPrefix(ref, base+"/")
	}
	return strings.TrimLeft(ref, "/")
}
