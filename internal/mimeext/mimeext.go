package mimeext

import (
	"strings"
)

const (
	// DefaultExt is the extension used when MIME is unknown or empty.
	DefaultExt = "mp4"

	// ExtM4A is the file extension for MP4 audio.
	ExtM4A = "m4a"
	// ExtWebM is the file extension for WebM media.
	ExtWebM = "webm"

	// MimeVideoMP4 is the MIME type for MP4 video.
	MimeVideoMP4 = "video/mp4"
	// MimeAudioMP4 is the MIME type for MP4 audio.
	MimeAudioMP4 = "audio/mp4"
	// MimeVideoWebM is the MIME type for WebM video.
	MimeVideoWebM = "video/webm"
	// MimeAudioWebM is the MIME type for WebM audio.
	MimeAudioWebM = "audio/webm"

	codecsMarker = `codecs="`
)

// base strips parameters from a mime type: `video/mp4; codecs="avc1"` -> `video/mp4`.
func base(mime string) string {
	mime = strings.TrimSpace(mime)
	if i := strings.Index(mime, ";"); i >= 0 {
		mime = strings.TrimSpace(mime[:i])
	}
	return mime
}

// Container returns the mime subtype before any parameters, e.g. "mp4" for
// `video/mp4; codecs="avc1.4d401f, mp4a.40.2"`. Empty when the type is not
// of the form type/subtype.
func Container(mime string) string {
	parts := strings.Split(base(mime), "/")
	if len(parts) == 2 && parts[1] != "" {
		return parts[1]
	}
	return ""
}

// Codecs returns the raw value of the codecs parameter, or "" when absent.
func Codecs(mime string) string {
	i := strings.Index(mime, codecsMarker)
	if i < 0 {
		return ""
	}
	rest := mime[i+len(codecsMarker):]
	j := strings.Index(rest, `"`)
	if j < 0 {
		return ""
	}
	return rest[:j]
}

// SplitCodecs splits a codecs parameter value into trimmed tokens.
func SplitCodecs(codecs string) []string {
	if strings.TrimSpace(codecs) == "" {
		return nil
	}
	parts := strings.Split(codecs, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		out = append(out, strings.TrimSpace(p))
	}
	return out
}

// ExtFromMime returns file extension (without dot) for given mime type.
// Falls back to subtype or mp4 if unknown.
func ExtFromMime(mime string) string {
	b := base(mime)
	if b == "" {
		return DefaultExt
	}
	switch b {
	case MimeVideoMP4:
		return DefaultExt
	case MimeAudioMP4:
		return ExtM4A
	case MimeVideoWebM, MimeAudioWebM:
		return ExtWebM
	}
	if c := Container(b); c != "" {
		return c
	}
	return DefaultExt
}
