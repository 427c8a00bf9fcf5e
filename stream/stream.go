package stream

import (
	"context"
	"strconv"
	"strings"

	"github.com/ytget/ytstream/client"
	"github.com/ytget/ytstream/errs"
	"github.com/ytget/ytstream/types"
)

// DefaultChunkSize is the byte-range size used by ranged sessions when the
// caller does not set one.
const DefaultChunkSize int64 = 10 * 1024 * 1024

// Stream produces the bytes of one format incrementally. Chunk returns the
// next piece of the resource, or (nil, nil) once the stream has ended.
// Calls must be serialized; chunk order is only defined for a single
// consumer.
type Stream interface {
	Chunk(ctx context.Context) ([]byte, error)
}

// Options configures Open. Client and ChunkSize are optional.
type Options struct {
	Format    types.Format
	Client    *client.Client
	ChunkSize int64
}

// Open builds the session matching the format's delivery mode: HLS formats
// get a live session, anything else a ranged one. Ranged sessions need a
// total length; when the format does not carry one it is probed with a GET
// on the resolved URL.
func Open(ctx context.Context, opts Options) (Stream, error) {
	cl := opts.Client
	if cl == nil {
		cl = client.New()
	}

	if opts.Format.IsHLS {
		return NewLive(cl, opts.Format.URL), nil
	}

	chunkSize := opts.ChunkSize
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}

	contentLength := opts.Format.ContentLength
	if contentLength == 0 {
		var err error
		contentLength, err = probeContentLength(ctx, cl, opts.Format.URL)
		if err != nil {
			return nil, err
		}
	}

	return NewRanged(cl, opts.Format.URL, contentLength, chunkSize), nil
}

// probeContentLength asks the server for the resource size using a tiny
// ranged GET, reading the total from Content-Range with Content-Length as
// fallback.
func probeContentLength(ctx context.Context, cl *client.Client, url string) (int64, error) {
	resp, err := cl.GetContext(ctx, url, map[string]string{"Range": "bytes=0-1"})
	if err != nil {
		return 0, &errs.FetchError{URL: url, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if cr := resp.Header.Get("Content-Range"); cr != "" {
		if i := strings.LastIndex(cr, "/"); i >= 0 {
			if n, err := strconv.ParseInt(cr[i+1:], 10, 64); err == nil && n > 0 {
				return n, nil
			}
		}
	}
	if cl := resp.Header.Get("Content-Length"); cl != "" {
		if n, err := strconv.ParseInt(cl, 10, 64); err == nil && n > 0 {
			return n, nil
		}
	}
	return 0, &errs.FetchError{URL: url, Status: resp.StatusCode, Err: errs.ErrSourceNotFound}
}
