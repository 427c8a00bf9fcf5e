package stream

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/ytget/ytstream/client"
	"github.com/ytget/ytstream/errs"
	"github.com/ytget/ytstream/types"
)

// rangedServer serves data honoring "bytes=a-b" and open-ended "bytes=a-"
// Range headers.
func rangedServer(t *testing.T, data []byte) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rangeHeader := r.Header.Get("Range")
		if rangeHeader == "" {
			_, _ = w.Write(data)
			return
		}
		spec := strings.TrimPrefix(rangeHeader, "bytes=")
		parts := strings.SplitN(spec, "-", 2)
		start, err := strconv.ParseInt(parts[0], 10, 64)
		if err != nil || start >= int64(len(data)) {
			w.WriteHeader(http.StatusRequestedRangeNotSatisfiable)
			return
		}
		end := int64(len(data)) - 1
		if parts[1] != "" {
			if e, err := strconv.ParseInt(parts[1], 10, 64); err == nil && e < end {
				end = e
			}
		}
		w.Header().Set("Content-Range",
			fmt.Sprintf("bytes %d-%d/%d", start, end, len(data)))
		w.WriteHeader(http.StatusPartialContent)
		_, _ = w.Write(data[start : end+1])
	}))
}

func patternData(n int) []byte {
	data := make([]byte, n)
	for i := range data {
		data[i] = byte(i * 31)
	}
	return data
}

func TestRangedChunkCountAndConcatenation(t *testing.T) {
	const total = 10 * 1024 * 1024
	const chunkSize = 1024 * 1024
	data := patternData(total)

	srv := rangedServer(t, data)
	defer srv.Close()

	s := NewRanged(client.New(), srv.URL, total, chunkSize)

	var got bytes.Buffer
	chunks := 0
	for {
		chunk, err := s.Chunk(context.Background())
		if err != nil {
			t.Fatalf("chunk %d: %v", chunks, err)
		}
		if chunk == nil {
			break
		}
		if len(chunk) == 0 {
			t.Fatalf("chunk %d is empty", chunks)
		}
		chunks++
		got.Write(chunk)
		if chunks > 20 {
			t.Fatal("stream did not terminate")
		}
	}

	if chunks != 10 {
		t.Errorf("got %d chunks, want 10", chunks)
	}
	if got.Len() != total {
		t.Errorf("concatenation is %d bytes, want %d", got.Len(), total)
	}
	if !bytes.Equal(got.Bytes(), data) {
		t.Error("concatenated bytes differ from source")
	}
}

func TestRangedTerminalStaysTerminal(t *testing.T) {
	data := patternData(100)
	srv := rangedServer(t, data)
	defer srv.Close()

	s := NewRanged(client.New(), srv.URL, 100, 1000)
	if chunk, err := s.Chunk(context.Background()); err != nil || len(chunk) != 100 {
		t.Fatalf("first chunk = %d bytes, err %v; want 100, nil", len(chunk), err)
	}
	for i := 0; i < 3; i++ {
		chunk, err := s.Chunk(context.Background())
		if err != nil || chunk != nil {
			t.Fatalf("terminal call %d = %v, %v; want nil, nil", i, chunk, err)
		}
	}
}

func TestRangedFetchErrorIsFatal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	s := NewRanged(client.New(), srv.URL, 1000, 100)
	_, err := s.Chunk(context.Background())
	var fe *errs.FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("err = %v, want FetchError", err)
	}
	if fe.Status != http.StatusForbidden {
		t.Errorf("status = %d, want 403", fe.Status)
	}
}

func TestOpenProbesContentLength(t *testing.T) {
	data := patternData(5000)
	srv := rangedServer(t, data)
	defer srv.Close()

	s, err := Open(context.Background(), Options{
		Format:    types.Format{URL: srv.URL},
		ChunkSize: 2000,
	})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	ranged, ok := s.(*Ranged)
	if !ok {
		t.Fatalf("Open returned %T, want *Ranged", s)
	}
	if ranged.length != 5000 {
		t.Errorf("probed length = %d, want 5000", ranged.length)
	}
}

func TestOpenDispatchesHLS(t *testing.T) {
	s, err := Open(context.Background(), Options{
		Format: types.Format{
			URL:   "https://host.example/api/manifest/hls_playlist/itag/95/x.m3u8",
			IsHLS: true,
		},
	})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, ok := s.(*Live); !ok {
		t.Fatalf("Open returned %T, want *Live", s)
	}
}
