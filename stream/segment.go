package stream

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/ytget/ytstream/client"
	"github.com/ytget/ytstream/errs"
)

// RemoteData addresses a fetchable blob: a URL plus an optional
// EXT-X-BYTERANGE slice of it.
type RemoteData struct {
	URL string
	// Byte range per EXT-X-BYTERANGE: Limit is the length, Offset the start.
	// Limit == 0 means the whole resource.
	Limit  int64
	Offset int64
}

// RangeHeader renders the byte range as an HTTP Range header value, or ""
// when the whole resource is wanted.
func (d RemoteData) RangeHeader() string {
	if d.Limit <= 0 {
		return ""
	}
	return fmt.Sprintf("bytes=%d-%d", d.Offset, d.Offset+d.Limit-1)
}

// Fetch downloads the addressed bytes through the retrying client.
func (d RemoteData) Fetch(ctx context.Context, cl *client.Client) ([]byte, error) {
	headers := map[string]string{}
	if r := d.RangeHeader(); r != "" {
		headers["Range"] = r
	}
	resp, err := cl.GetContext(ctx, d.URL, headers)
	if err != nil {
		return nil, &errs.FetchError{URL: d.URL, Err: err}
	}
	if resp.StatusCode >= http.StatusBadRequest {
		_ = resp.Body.Close()
		return nil, &errs.FetchError{URL: d.URL, Status: resp.StatusCode}
	}
	body, err := client.ReadBody(resp)
	if err != nil {
		return nil, &errs.FetchError{URL: d.URL, Err: err}
	}
	return body, nil
}

// Segment is one entry of a live session's queue. DisconSeq and Seq impose
// the total order; Initialization, when set, must be fetched and prepended
// before the segment body is usable.
type Segment struct {
	Data           RemoteData
	DisconSeq      uint64
	Seq            uint64
	Initialization *RemoteData
}

// ID is the segment's log identifier.
func (s Segment) ID() string {
	return fmt.Sprintf("d%010ds%010d", s.DisconSeq, s.Seq)
}

// absoluteURL resolves ref against base the way a playlist consumer must:
// relative segment and key URIs are joined to the manifest location.
func absoluteURL(base, ref string) (string, error) {
	b, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	r, err := b.Parse(ref)
	if err != nil {
		return "", err
	}
	return r.String(), nil
}
