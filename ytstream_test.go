package ytstream

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/ytget/ytstream/types"
)

// playerScript carries a decipher function (reverse, drop first, swap 0 and
// 3) and a reversing n-transform, shaped like a minified player asset.
const playerScript = `var _yt_player={};(function(g){
var Zq={rv:function(a){a.reverse()},sp:function(a,b){a.splice(0,b)},sw:function(a,b){var c=a[0];a[0]=a[b%a.length];a[b%a.length]=c}};
var DC=function(a){a=a.split("");Zq.rv(a,2);Zq.sp(a,1);Zq.sw(a,3);return a.join("")};
var NT=function(a){var b=a.split("");b.reverse();return b.join("")};
g.load=function(a,c){a.set("alr","yes");c&&(c=DC(decodeURIComponent(c)),a.set("sig",c))};
g.fetch=function(a,b){var c;(c=a.get(b))&&(c=NT(c),a.set(b,c))};
})(_yt_player);`

func mediaServer(t *testing.T, data []byte) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rangeHeader := r.Header.Get("Range")
		if rangeHeader == "" {
			_, _ = w.Write(data)
			return
		}
		spec := strings.TrimPrefix(rangeHeader, "bytes=")
		parts := strings.SplitN(spec, "-", 2)
		start, _ := strconv.ParseInt(parts[0], 10, 64)
		end := int64(len(data)) - 1
		if parts[1] != "" {
			if e, err := strconv.ParseInt(parts[1], 10, 64); err == nil && e < end {
				end = e
			}
		}
		w.Header().Set("Content-Range", fmt.Sprintf("bytes %d-%d/%d", start, end, len(data)))
		w.WriteHeader(http.StatusPartialContent)
		_, _ = w.Write(data[start : end+1])
	}))
}

func TestResolveChooseAndStream(t *testing.T) {
	media := make([]byte, 5000)
	for i := range media {
		media[i] = byte(i)
	}
	srv := mediaServer(t, media)
	defer srv.Close()

	mediaURL := srv.URL + "/media?n=abc"
	raws := []types.RawFormat{
		{
			Itag:            18,
			MimeType:        `video/mp4; codecs="avc1.42001E, mp4a.40.2"`,
			SignatureCipher: "s=ABCDEFGH&sp=sig&url=" + url.QueryEscape(mediaURL),
			QualityLabel:    "360p",
			AudioBitrate:    96,
			ContentLength:   "5000",
		},
		{
			Itag:         140,
			MimeType:     `audio/mp4; codecs="mp4a.40.2"`,
			URL:          srv.URL + "/audio",
			AudioBitrate: 128,
		},
	}

	c := New()
	fs := c.ResolveFormats(playerScript, raws)
	if len(fs) != 2 {
		t.Fatalf("resolved %d formats, want 2", len(fs))
	}

	u, err := url.Parse(fs[0].URL)
	if err != nil {
		t.Fatalf("resolved URL does not parse: %v", err)
	}
	if got := u.Query().Get("sig"); got != "DFEGCBA" {
		t.Errorf("sig = %q, want DFEGCBA", got)
	}
	if got := u.Query().Get("n"); got != "cba" {
		t.Errorf("n = %q, want cba", got)
	}

	chosen, err := c.ChooseFormat(fs)
	if err != nil {
		t.Fatalf("ChooseFormat: %v", err)
	}
	if chosen.Itag != 18 {
		t.Fatalf("chosen itag = %d, want 18 (only muxed format)", chosen.Itag)
	}

	s, err := c.WithChunkSize(2000).OpenStream(context.Background(), chosen)
	if err != nil {
		t.Fatalf("OpenStream: %v", err)
	}
	var got bytes.Buffer
	for {
		chunk, err := s.Chunk(context.Background())
		if err != nil {
			t.Fatalf("Chunk: %v", err)
		}
		if chunk == nil {
			break
		}
		got.Write(chunk)
	}
	if !bytes.Equal(got.Bytes(), media) {
		t.Errorf("streamed %d bytes, want %d matching bytes", got.Len(), len(media))
	}
}

func TestResolveFormatsWithoutAnchorsPassesThrough(t *testing.T) {
	raw := types.RawFormat{Itag: 22, URL: "https://host.example/videoplayback?n=abc"}
	fs := New().ResolveFormats("var unrelated=1;", []types.RawFormat{raw})
	if len(fs) != 1 {
		t.Fatalf("resolved %d formats, want 1", len(fs))
	}
	if fs[0].URL != raw.URL {
		t.Errorf("URL = %q, want untouched %q", fs[0].URL, raw.URL)
	}
}

func TestWithExecTimeoutBoundsTransformRuns(t *testing.T) {
	// Same shape as playerScript but with an n-transform that never
	// returns; the bounded run must fall back to the untouched URL.
	const hangingScript = `var _yt_player={};(function(g){
var NT=function(a){while(true){}};
g.fetch=function(a,b){var c;(c=a.get(b))&&(c=NT(c),a.set(b,c))};
})(_yt_player);`

	c := New().WithExecTimeout(20 * time.Millisecond)
	direct := "https://host.example/videoplayback?n=abc"
	fs := c.ResolveFormats(hangingScript, []types.RawFormat{{Itag: 18, URL: direct}})
	if len(fs) != 1 {
		t.Fatalf("got %d formats, want 1", len(fs))
	}
	if fs[0].URL != direct {
		t.Errorf("URL = %q, want pass-through %q", fs[0].URL, direct)
	}
}

func TestClientDownload(t *testing.T) {
	media := []byte("file payload bytes")
	srv := mediaServer(t, media)
	defer srv.Close()

	dir := t.TempDir()
	c := New()
	f := types.Format{
		MimeType:      `video/mp4; codecs="avc1, mp4a"`,
		URL:           srv.URL + "/media",
		ContentLength: int64(len(media)),
	}

	if err := c.Download(context.Background(), f, "My: Title", dir); err != nil {
		t.Fatalf("Download: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "My_ Title.mp4"))
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if !bytes.Equal(data, media) {
		t.Errorf("downloaded %q", data)
	}
}

func TestChooseFormatCustomQuality(t *testing.T) {
	fs := []types.Format{
		{Itag: 18, Bitrate: 500, HasVideo: true, HasAudio: true},
		{Itag: 22, Bitrate: 2000, HasVideo: true, HasAudio: true},
	}
	c := New().WithCustomQuality(types.CustomQuality{
		Keep: func(f types.Format) bool { return true },
		Less: func(a, b types.Format) bool { return a.Bitrate < b.Bitrate },
	})
	got, err := c.ChooseFormat(fs)
	if err != nil {
		t.Fatalf("ChooseFormat: %v", err)
	}
	if got.Itag != 18 {
		t.Errorf("itag = %d, want 18", got.Itag)
	}
}
