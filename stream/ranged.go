package stream

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/ytget/ytstream/client"
	"github.com/ytget/ytstream/errs"
	"github.com/ytget/ytstream/internal/logger"
)

// Ranged pulls a finite resource in fixed byte ranges.
//
// Cursor invariant: end == 0 marks the terminal state, set once the final
// open-ended range has been requested. While non-terminal, start advances to
// end+1 and end by chunkSize after each successful fetch.
type Ranged struct {
	cl        *client.Client
	link      string
	length    int64
	chunkSize int64
	log       *logger.ComponentLogger

	mu    sync.Mutex
	start int64
	end   int64
}

// NewRanged opens a ranged session over link. contentLength must be the
// exact resource size; chunkSize bounds each request.
func NewRanged(cl *client.Client, link string, contentLength, chunkSize int64) *Ranged {
	return &Ranged{
		cl:        cl,
		link:      link,
		length:    contentLength,
		chunkSize: chunkSize,
		log:       logger.WithComponent(logger.ComponentStream),
		start:     0,
		end:       chunkSize,
	}
}

// Chunk fetches the next byte range. The final request is open-ended
// (bytes=start-) so trailing bytes are never cut off by a stale length.
func (r *Ranged) Chunk(ctx context.Context) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.end == 0 {
		return nil, nil
	}
	if r.end >= r.length {
		r.end = 0
	}

	rangeEnd := ""
	if r.end != 0 {
		rangeEnd = fmt.Sprintf("%d", r.end)
	}
	rangeValue := fmt.Sprintf("bytes=%d-%s", r.start, rangeEnd)

	resp, err := r.cl.GetContext(ctx, r.link, map[string]string{"Range": rangeValue})
	if err != nil {
		return nil, &errs.FetchError{URL: r.link, Err: err}
	}
	if resp.StatusCode >= http.StatusBadRequest {
		_ = resp.Body.Close()
		return nil, &errs.FetchError{URL: r.link, Status: resp.StatusCode}
	}

	buf, err := client.ReadBody(resp)
	if err != nil {
		return nil, &errs.FetchError{URL: r.link, Err: err}
	}

	// Advance only after a full read so a failed attempt never moves the
	// cursor past unread bytes.
	if r.end != 0 {
		r.start = r.end + 1
		r.end += r.chunkSize
	}

	r.log.Debug("range fetched", map[string]interface{}{
		"range": rangeValue,
		"size":  len(buf),
	})
	return buf, nil
}
