// Package ytstream resolves raw media format descriptors into playable
// streams.
//
// The package consumes what a page-scraping collaborator provides: a list of
// raw format descriptors, the player script they were protected with, and a
// manifest URL for live content. It turns those into ranked, playable
// formats and byte-stream sessions:
//
//	c := ytstream.New()
//	fs := c.ResolveFormats(playerScript, raws)
//	f, err := c.ChooseFormat(fs)
//	s, err := c.OpenStream(ctx, f)
//	for {
//		chunk, err := s.Chunk(ctx)
//		if chunk == nil || err != nil {
//			break
//		}
//		// consume chunk
//	}
package ytstream

import (
	"context"
	"os"
	"time"

	"github.com/ytget/ytstream/client"
	"github.com/ytget/ytstream/downloader"
	"github.com/ytget/ytstream/stream"
	"github.com/ytget/ytstream/types"
	"github.com/ytget/ytstream/youtube/cipher"
	"github.com/ytget/ytstream/youtube/formats"
)

// Progress describes current progress of an ongoing download.
type Progress = downloader.Progress

// Client is the high-level entry point. Configure it with the chainable
// With* setters, then resolve, choose, and stream.
type Client struct {
	httpClient   *client.Client
	filter       types.TrackFilter
	quality      types.Quality
	custom       *types.CustomQuality
	chunkSize    int64
	execTimeout  time.Duration
	progressFunc func(Progress)
	rateLimitBps int64
}

// New creates a Client with default options: both-track filter, highest
// quality, default HTTP retry policy.
func New() *Client {
	return &Client{
		httpClient: client.New(),
		filter:     types.FilterAudioVideo,
		quality:    types.QualityHighest,
	}
}

// WithHTTPClient sets a custom HTTP client used for all network calls.
func (c *Client) WithHTTPClient(cl *client.Client) *Client {
	if cl != nil {
		c.httpClient = cl
	}
	return c
}

// WithFilter sets the track composition filter used by ChooseFormat.
func (c *Client) WithFilter(filter types.TrackFilter) *Client {
	c.filter = filter
	return c
}

// WithQuality sets the quality policy used by ChooseFormat.
func (c *Client) WithQuality(quality types.Quality) *Client {
	c.quality = quality
	return c
}

// WithCustomQuality sets a caller-provided keep/order policy and switches
// the quality policy to QualityCustom.
func (c *Client) WithCustomQuality(custom types.CustomQuality) *Client {
	c.custom = &custom
	c.quality = types.QualityCustom
	return c
}

// WithChunkSize sets the byte-range size for ranged streams. Zero keeps the
// default.
func (c *Client) WithChunkSize(chunkSize int64) *Client {
	if chunkSize < 0 {
		chunkSize = 0
	}
	c.chunkSize = chunkSize
	return c
}

// WithExecTimeout sets the per-call timeout for running the extracted
// transform functions. Zero keeps the default.
func (c *Client) WithExecTimeout(timeout time.Duration) *Client {
	if timeout < 0 {
		timeout = 0
	}
	c.execTimeout = timeout
	return c
}

// WithProgress registers a callback receiving download progress updates.
func (c *Client) WithProgress(f func(Progress)) *Client {
	c.progressFunc = f
	return c
}

// WithRateLimit sets a download rate limit in bytes per second. Zero
// disables limiting.
func (c *Client) WithRateLimit(bytesPerSecond int64) *Client {
	if bytesPerSecond < 0 {
		bytesPerSecond = 0
	}
	c.rateLimitBps = bytesPerSecond
	return c
}

// ResolveFormats turns raw descriptors into playable formats. The transform
// functions are extracted from script once and shared across the whole
// batch; descriptors from different player scripts must be resolved in
// separate calls.
func (c *Client) ResolveFormats(script string, raws []types.RawFormat) []types.Format {
	fns := cipher.ExtractFunctionsCached(script)
	return formats.NewResolverWithTimeout(&fns, c.execTimeout).ResolveAll(raws)
}

// ResolveLiveFormats extracts the per-variant formats from an HLS master
// manifest body fetched for a live broadcast.
func (c *Client) ResolveLiveFormats(masterManifest string) []types.Format {
	return formats.ParseVariantManifest(masterManifest)
}

// ChooseFormat picks one format under the configured filter and quality
// policy. Returns errs.ErrFormatNotFound when nothing matches.
func (c *Client) ChooseFormat(fs []types.Format) (types.Format, error) {
	return formats.Choose(fs, c.filter, c.quality, c.custom)
}

// OpenStream opens the byte-stream session matching the format's delivery
// mode.
func (c *Client) OpenStream(ctx context.Context, f types.Format) (stream.Stream, error) {
	return stream.Open(ctx, stream.Options{
		Format:    f,
		Client:    c.httpClient,
		ChunkSize: c.chunkSize,
	})
}

// OpenStreamWithChunkSize is OpenStream with a one-off chunk size.
func (c *Client) OpenStreamWithChunkSize(ctx context.Context, f types.Format, chunkSize int64) (stream.Stream, error) {
	return stream.Open(ctx, stream.Options{
		Format:    f,
		Client:    c.httpClient,
		ChunkSize: chunkSize,
	})
}

// Download streams a format to outputPath. When outputPath is empty or
// names a directory, a safe filename is derived from title and the format's
// mime type.
func (c *Client) Download(ctx context.Context, f types.Format, title, outputPath string) error {
	s, err := c.OpenStream(ctx, f)
	if err != nil {
		return err
	}

	path := outputPath
	if path == "" {
		path = downloader.DerivePath("", title, f.MimeType)
	} else if isDir(path) {
		path = downloader.DerivePath(path, title, f.MimeType)
	}

	total := f.ContentLength
	if f.IsHLS {
		total = 0
	}
	return downloader.New(c.progressFunc, c.rateLimitBps).Download(ctx, s, total, path)
}

func isDir(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.IsDir()
}
