package errs

import (
	"errors"
	"fmt"
)

var (
	// ErrFormatNotFound indicates that no format matched the requested
	// track filter and quality policy.
	ErrFormatNotFound = errors.New("format not found")
	// ErrSourceNotFound indicates that the chosen format carries no
	// playable URL.
	ErrSourceNotFound = errors.New("video source not found")
	// ErrSampleAES indicates SAMPLE-AES encrypted content, which is not
	// supported.
	ErrSampleAES = errors.New("sample-aes encryption not supported")
	// ErrStreamEnded indicates an operation on a stream session that has
	// already delivered its final chunk.
	ErrStreamEnded = errors.New("stream ended")
	// ErrNotMediaPlaylist indicates that a live manifest URL pointed at a
	// master playlist or other non-media document.
	ErrNotMediaPlaylist = errors.New("not a media playlist")
)

// FetchError reports an HTTP fetch that failed after the retry policy was
// exhausted. It is fatal to the in-flight stream session.
type FetchError struct {
	URL    string
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("fetch %s: HTTP status %d", e.URL, e.Status)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// EncryptionError reports an unsupported or malformed HLS KEY tag, or a
// failed segment decryption. Always fatal to the live session.
type EncryptionError struct {
	Reason string
	Err    error
}

func (e *EncryptionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("encryption: %s: %v", e.Reason, e.Err)
	}
	return "encryption: " + e.Reason
}

func (e *EncryptionError) Unwrap() error { return e.Err }

// PlaylistError reports a malformed M3U8 media playlist. Fatal to the
// refresh attempt that hit it, not to the session state.
type PlaylistError struct {
	URL string
	Err error
}

func (e *PlaylistError) Error() string {
	return fmt.Sprintf("playlist %s: %v", e.URL, e.Err)
}

func (e *PlaylistError) Unwrap() error { return e.Err }
