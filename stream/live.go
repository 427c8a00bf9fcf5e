package stream

import (
	"bytes"
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/grafov/m3u8"

	"github.com/ytget/ytstream/client"
	"github.com/ytget/ytstream/errs"
	"github.com/ytget/ytstream/internal/logger"
)

// defaultRefreshInterval is the cadence at which a live playlist is
// re-fetched; broadcasts publish new segments well within this window.
const defaultRefreshInterval = 20 * time.Second

type segKey struct {
	disconSeq uint64
	seq       uint64
}

// after reports whether k orders strictly after o in (disconSeq, seq) order.
func (k segKey) after(o segKey) bool {
	if k.disconSeq != o.disconSeq {
		return k.disconSeq > o.disconSeq
	}
	return k.seq > o.seq
}

type queuedSegment struct {
	seg Segment
	enc *Encryption
}

// Live follows an HLS media playlist and serves its segments in order,
// decrypting each on delivery.
//
// State is guarded by a mutex so a handle may be shared, but ordered
// delivery is only meaningful when Chunk calls are serialized.
type Live struct {
	cl          *client.Client
	manifestURL string
	refreshWait time.Duration
	log         *logger.ComponentLogger

	mu          sync.Mutex
	queue       []queuedSegment
	lastSeg     *segKey
	lastRefresh time.Time
	ended       bool
}

// NewLive opens a live session over an HLS media playlist URL. The first
// Chunk call performs the initial playlist fetch.
func NewLive(cl *client.Client, manifestURL string) *Live {
	return &Live{
		cl:          cl,
		manifestURL: manifestURL,
		refreshWait: defaultRefreshInterval,
		log:         logger.WithComponent(logger.ComponentStream),
	}
}

// Chunk delivers the next live segment's plaintext. While the broadcast is
// ongoing and no segment is queued it waits out the refresh cadence, then
// re-fetches the playlist; a refresh that yields nothing returns an empty
// non-nil chunk so the caller can keep polling. After the playlist closes
// and the queue drains, Chunk returns (nil, nil) forever.
func (s *Live) Chunk(ctx context.Context) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ended && len(s.queue) == 0 {
		return nil, nil
	}

	if remaining := s.refreshWait - time.Since(s.lastRefresh); remaining > 0 &&
		len(s.queue) == 0 && !s.ended {
		if err := sleepContext(ctx, remaining); err != nil {
			return nil, err
		}
	}

	if time.Since(s.lastRefresh) >= s.refreshWait && !s.ended {
		if err := s.refresh(ctx); err != nil {
			return nil, err
		}
	}

	if len(s.queue) == 0 {
		return []byte{}, nil
	}

	next := s.queue[0]
	body, err := next.seg.Data.Fetch(ctx, s.cl)
	if err != nil {
		return nil, err
	}
	plain, err := next.enc.Decrypt(ctx, s.cl, body)
	if err != nil {
		return nil, err
	}

	// Dequeue only after fetch and decrypt succeed; a failed delivery
	// leaves the segment in place.
	s.queue = s.queue[1:]

	s.log.Debug("segment delivered", map[string]interface{}{
		"segment": next.seg.ID(),
		"size":    len(plain),
	})
	return plain, nil
}

// refresh re-fetches the playlist and enqueues every segment above the
// high-water mark that is not already queued. Caller holds s.mu.
func (s *Live) refresh(ctx context.Context) error {
	resp, err := s.cl.GetContext(ctx, s.manifestURL, nil)
	if err != nil {
		return &errs.FetchError{URL: s.manifestURL, Err: err}
	}
	if resp.StatusCode >= http.StatusBadRequest {
		_ = resp.Body.Close()
		return &errs.FetchError{URL: s.manifestURL, Status: resp.StatusCode}
	}
	body, err := client.ReadBody(resp)
	if err != nil {
		return &errs.FetchError{URL: s.manifestURL, Err: err}
	}

	playlist, listType, err := m3u8.DecodeFrom(bytes.NewReader(body), true)
	if err != nil {
		return &errs.PlaylistError{URL: s.manifestURL, Err: err}
	}
	media, ok := playlist.(*m3u8.MediaPlaylist)
	if !ok || listType != m3u8.MEDIA {
		return &errs.PlaylistError{URL: s.manifestURL, Err: errs.ErrNotMediaPlaylist}
	}

	var curInit *RemoteData
	if media.Map != nil {
		init, err := s.initFromMap(media.Map)
		if err != nil {
			return err
		}
		curInit = init
	}

	enc := NoEncryption
	var disconOffset uint64
	seq := media.SeqNo
	enqueued := 0

	for _, seg := range media.Segments {
		if seg == nil {
			continue
		}
		curSeq := seq
		seq++

		if seg.Discontinuity {
			disconOffset++
		}
		key := segKey{disconSeq: media.DiscontinuitySeq + disconOffset, seq: curSeq}

		// Already delivered on a previous refresh.
		if s.lastSeg != nil && !key.after(*s.lastSeg) {
			continue
		}

		if seg.Key != nil {
			enc, err = NewEncryption(seg.Key, s.manifestURL, curSeq)
			if err != nil {
				return err
			}
		}

		s.lastSeg = &key

		segURL, err := absoluteURL(s.manifestURL, seg.URI)
		if err != nil {
			return &errs.PlaylistError{URL: s.manifestURL, Err: err}
		}

		if seg.Map != nil {
			init, err := s.initFromMap(seg.Map)
			if err != nil {
				return err
			}
			curInit = init
		}

		if s.queued(key) {
			continue
		}
		s.queue = append(s.queue, queuedSegment{
			seg: Segment{
				Data:           RemoteData{URL: segURL, Limit: seg.Limit, Offset: seg.Offset},
				DisconSeq:      key.disconSeq,
				Seq:            key.seq,
				Initialization: curInit,
			},
			enc: enc,
		})
		enqueued++
	}

	s.lastRefresh = time.Now()
	if media.Closed {
		s.ended = true
	}

	s.log.Debug("playlist refreshed", map[string]interface{}{
		"enqueued": enqueued,
		"queued":   len(s.queue),
		"ended":    s.ended,
	})
	return nil
}

func (s *Live) initFromMap(m *m3u8.Map) (*RemoteData, error) {
	u, err := absoluteURL(s.manifestURL, m.URI)
	if err != nil {
		return nil, &errs.PlaylistError{URL: s.manifestURL, Err: err}
	}
	return &RemoteData{URL: u, Limit: m.Limit, Offset: m.Offset}, nil
}

func (s *Live) queued(key segKey) bool {
	for _, q := range s.queue {
		if q.seg.DisconSeq == key.disconSeq && q.seg.Seq == key.seq {
			return true
		}
	}
	return false
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
