package types

import (
	"encoding/json"
	"testing"
)

func TestRawFormatUnmarshal(t *testing.T) {
	data := `[
		{
			"itag": 18,
			"mimeType": "video/mp4; codecs=\"avc1.42001E, mp4a.40.2\"",
			"url": "https://media.example/videoplayback?itag=18",
			"bitrate": 500000,
			"width": 640,
			"height": 360,
			"fps": 30,
			"contentLength": "12345678",
			"quality": "medium",
			"qualityLabel": "360p",
			"audioQuality": "AUDIO_QUALITY_LOW"
		},
		{
			"itag": 137,
			"mimeType": "video/mp4; codecs=\"avc1.640028\"",
			"signatureCipher": "s=AAA&sp=sig&url=https%3A%2F%2Fmedia.example%2Fvideoplayback"
		}
	]`

	var raws []RawFormat
	if err := json.Unmarshal([]byte(data), &raws); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(raws) != 2 {
		t.Fatalf("expected 2 descriptors, got %d", len(raws))
	}

	first := raws[0]
	if first.Itag != 18 || first.QualityLabel != "360p" || first.ContentLength != "12345678" {
		t.Errorf("unexpected first descriptor: %+v", first)
	}
	if first.URL == "" || first.SignatureCipher != "" {
		t.Errorf("first descriptor should carry a direct URL only")
	}

	second := raws[1]
	if second.URL != "" || second.SignatureCipher == "" {
		t.Errorf("second descriptor should carry a signature cipher only")
	}
}

func TestRawFormatMarshalOmitsEmpty(t *testing.T) {
	raw := RawFormat{Itag: 251, MimeType: `audio/webm; codecs="opus"`}
	body, err := json.Marshal(raw)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	got := string(body)
	if got != `{"itag":251,"mimeType":"audio/webm; codecs=\"opus\""}` {
		t.Errorf("unexpected JSON: %s", got)
	}
}
