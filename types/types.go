package types

// RawFormat is a single stream descriptor as scraped from a video page.
// Exactly one of URL and SignatureCipher/Cipher is expected to be set;
// formats without a direct URL need signature deciphering.
type RawFormat struct {
	Itag            int    `json:"itag"`
	MimeType        string `json:"mimeType"`
	URL             string `json:"url,omitempty"`
	SignatureCipher string `json:"signatureCipher,omitempty"`
	Cipher          string `json:"cipher,omitempty"`
	Bitrate         int    `json:"bitrate,omitempty"`
	Width           int    `json:"width,omitempty"`
	Height          int    `json:"height,omitempty"`
	Fps             int    `json:"fps,omitempty"`
	ContentLength   string `json:"contentLength,omitempty"`
	Quality         string `json:"quality,omitempty"`
	QualityLabel    string `json:"qualityLabel,omitempty"`
	AudioBitrate    int    `json:"audioBitrate,omitempty"`
	AudioQuality    string `json:"audioQuality,omitempty"`
}

// Format describes a resolved, playable media format.
type Format struct {
	Itag          int
	MimeType      string
	URL           string
	Bitrate       int
	Width         int
	Height        int
	Fps           int
	ContentLength int64
	Quality       string
	QualityLabel  string
	AudioBitrate  int
	AudioQuality  string

	Container  string
	Codecs     string
	VideoCodec string
	AudioCodec string

	HasVideo  bool
	HasAudio  bool
	IsLive    bool
	IsHLS     bool
	IsDashMPD bool
}

// TrackFilter selects formats by track composition.
type TrackFilter int

const (
	// FilterAudioVideo keeps formats carrying both audio and video tracks.
	FilterAudioVideo TrackFilter = iota
	// FilterAudio keeps audio-only formats.
	FilterAudio
	// FilterVideo keeps video-only formats.
	FilterVideo
)

// Quality selects which format to pick after ranking.
type Quality int

const (
	QualityHighest Quality = iota
	QualityLowest
	QualityHighestAudio
	QualityLowestAudio
	QualityHighestVideo
	QualityLowestVideo
	// QualityCustom uses a caller-provided selection policy, see CustomQuality.
	QualityCustom
)

// CustomQuality carries a caller-provided selection policy for
// QualityCustom: Keep retains candidate formats, Less orders them
// (best first).
type CustomQuality struct {
	Keep func(Format) bool
	Less func(a, b Format) bool
}
