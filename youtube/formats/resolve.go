package formats

import (
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/ytget/ytstream/internal/logger"
	"github.com/ytget/ytstream/types"
	"github.com/ytget/ytstream/youtube/cipher"
)

const defaultSigParam = "signature"

// Resolver rewrites raw format descriptors into playable formats using the
// functions extracted from a player script. A Resolver is safe for
// concurrent use; n-transform results are cached per input value since the
// same n parameter repeats across every format of a page.
type Resolver struct {
	fns  *cipher.Functions
	exec *cipher.Executor
	log  *logger.ComponentLogger

	mu     sync.Mutex
	nCache map[string]string
}

// NewResolver builds a Resolver around extracted player functions. Either
// function may be nil; the matching rewrite step then degrades to
// pass-through.
func NewResolver(fns *cipher.Functions) *Resolver {
	return NewResolverWithTimeout(fns, 0)
}

// NewResolverWithTimeout is NewResolver with a custom per-call execution
// timeout for the transform functions. Non-positive values use the default.
func NewResolverWithTimeout(fns *cipher.Functions, execTimeout time.Duration) *Resolver {
	if fns == nil {
		fns = &cipher.Functions{}
	}
	return &Resolver{
		fns:    fns,
		exec:   cipher.NewExecutorWithTimeout(execTimeout),
		log:    logger.WithComponent(logger.ComponentFormats),
		nCache: make(map[string]string),
	}
}

// Resolve produces the playable form of a raw descriptor. URL protection
// failures never fail the format: the unrewritten URL is kept so callers
// can still attempt playback.
func (r *Resolver) Resolve(raw types.RawFormat) types.Format {
	f := types.Format{
		Itag:         raw.Itag,
		MimeType:     raw.MimeType,
		Bitrate:      raw.Bitrate,
		Width:        raw.Width,
		Height:       raw.Height,
		Fps:          raw.Fps,
		Quality:      raw.Quality,
		QualityLabel: raw.QualityLabel,
		AudioBitrate: raw.AudioBitrate,
		AudioQuality: raw.AudioQuality,
	}
	if n, err := strconv.ParseInt(raw.ContentLength, 10, 64); err == nil {
		f.ContentLength = n
	}

	if raw.URL != "" {
		f.URL = r.ncode(raw.URL)
	} else {
		ciphered := raw.SignatureCipher
		if ciphered == "" {
			ciphered = raw.Cipher
		}
		f.URL = r.ncode(r.decipherURL(ciphered))
	}

	AddMeta(&f)
	return f
}

// ResolveAll resolves every descriptor in order.
func (r *Resolver) ResolveAll(raws []types.RawFormat) []types.Format {
	out := make([]types.Format, 0, len(raws))
	for _, raw := range raws {
		out = append(out, r.Resolve(raw))
	}
	return out
}

// decipherURL decodes a signatureCipher query of the form s=...&sp=...&url=...
// into a signed URL. Any failure falls back to the embedded url parameter,
// or to the raw input when even that is missing.
func (r *Resolver) decipherURL(ciphered string) string {
	args, err := url.ParseQuery(ciphered)
	if err != nil {
		return ciphered
	}

	embedded := args.Get("url")
	if embedded == "" {
		embedded = ciphered
	}

	sig := args.Get("s")
	if sig == "" || r.fns.Decipher == nil {
		return embedded
	}

	deciphered, err := r.exec.Run(r.fns.Decipher, sig)
	if err != nil {
		r.log.Debug("signature decipher failed", map[string]interface{}{"error": err.Error()})
		return embedded
	}

	target, err := url.Parse(args.Get("url"))
	if err != nil || target.Host == "" {
		return embedded
	}

	param := args.Get("sp")
	if param == "" {
		param = defaultSigParam
	}

	q := target.Query()
	q.Set(param, deciphered)
	target.RawQuery = q.Encode()
	return target.String()
}

// ncode rewrites the n throttling parameter in place. URLs without an n
// parameter, or resolvers without an n-transform function, pass through
// unchanged.
func (r *Resolver) ncode(rawURL string) string {
	if rawURL == "" || r.fns.NTransform == nil {
		return rawURL
	}
	target, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	q := target.Query()
	n := q.Get("n")
	if n == "" {
		return rawURL
	}

	r.mu.Lock()
	transformed, ok := r.nCache[n]
	r.mu.Unlock()

	if !ok {
		transformed, err = r.exec.Run(r.fns.NTransform, n)
		if err != nil {
			r.log.Debug("n transform failed", map[string]interface{}{"error": err.Error()})
			return rawURL
		}
		r.mu.Lock()
		r.nCache[n] = transformed
		r.mu.Unlock()
	}

	q.Set("n", transformed)
	target.RawQuery = q.Encode()
	return target.String()
}
