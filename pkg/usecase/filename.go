package usecase

import (
	"regexp"
	"strings"
)

var (
	illegalFilenameChars = regexp.MustCompile(`[/\\?%*:|"<>\x00-\x1f\x7f]`)
	reservedFilenames    = regexp.MustCompile(`(?i)^(con|prn|aux|nul|com[0-9]|lpt[0-9])(\..*)?$`)
)

// sanitizeFilename removes characters that are not allowed in file names on
// common filesystems. The result is never longer than 255 bytes.
func sanitizeFilename(name string) string {
	sanitized := illegalFilenameChars.ReplaceAllString(name, "")
	sanitized = strings.TrimRight(sanitized, ". ")
	if sanitized == "" || reservedFilenames.MatchString(sanitized) {
		sanitized = "_" + sanitized
	}
	if len(sanitized) > 255 {
		sanitized = sanitized[:255]
	}
	return sanitized
}
