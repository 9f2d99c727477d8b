package utils

import (
	"net/url"
	"os"
	"strings"
)

// BuildObjectAccessURL turns a stored object key into a browser URL.
// STORAGE_ACCESS_BASE_URL may carry an {objectKey} placeholder; otherwise
// GCS_PUBLIC_BASE_URL + bucket is used, falling back to the raw key.
func BuildObjectAccessURL(objectKey string) string {
	if objectKey == "" {
		return ""
	}
	base := strings.TrimSpace(os.Getenv("STORAGE_ACCESS_BASE_URL"))
	if base != "" {
		if strings.Contains(base, "{objectKey}") {
			escaped := objectKey
			if strings.Contains(base, "?") {
				escaped = url.QueryEscape(objectKey)
			}
			return strings.ReplaceAll(base, "{objectKey}", escaped)
		}
		if strings.Contains(base, "?") {
			return base + url.QueryEscape(objectKey)
		}
		return strings.TrimRight(base, "/") + "/" + objectKey
	}

	publicURL := strings.TrimRight(strings.TrimSpace(os.Getenv("GCS_PUBLIC_BASE_URL")), "/")
	bucket := strings.TrimSpace(os.Getenv("GCS_BUCKET"))
	if publicURL != "" && bucket != "" {
		return publicURL + "/" + bucket + "/" + objectKey
	}

	return objectKey
}

// ThumbnailKey derives the thumbnail object key stored next to an upload.
func ThumbnailKey(objectKey string) string {
	if i := strings.LastIndex(objectKey, "."); i > strings.LastIndex(objectKey, "/") {
		return objectKey[:i] + "_thumb" + objectKey[i:]
	}
	return objectKey + "_thumb"
}
