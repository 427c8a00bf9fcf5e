// Package sanitize derives filesystem-safe output names from media titles.
package sanitize

import (
	"path/filepath"
	"regexp"
	"strings"
)

const (
	// MaxFilenameLength bounds the name part so the result stays well under
	// common filesystem limits even with an extension appended.
	MaxFilenameLength = 120
	// DefaultExt is appended when the caller supplies no extension.
	DefaultExt = "mp4"
	// DefaultName replaces titles that sanitize down to nothing.
	DefaultName = "video"
)

// Characters rejected by at least one of the supported platforms.
var reservedChars = regexp.MustCompile(`[\\/:*?"<>|]+`)

// ToSafeFilename turns a media title into a portable filename, appending ext
// (given without the dot). Runs of reserved characters collapse into a
// single underscore and overlong names are truncated.
func ToSafeFilename(title, ext string) string {
	name := strings.TrimSpace(title)
	if name == "" {
		name = DefaultName
	}
	name = reservedChars.ReplaceAllString(name, "_")
	name = strings.TrimSpace(name)
	if len(name) > MaxFilenameLength {
		name = name[:MaxFilenameLength]
	}
	ext = strings.TrimPrefix(strings.ToLower(ext), ".")
	if ext == "" {
		ext = DefaultExt
	}
	return filepath.Clean(name + "." + ext)
}
