package formats

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/ytget/ytstream/errs"
	"github.com/ytget/ytstream/types"
)

// Encoding ranks, worst to best. Rank is the index of the first entry the
// codecs string contains, -1 when none match.
var (
	videoEncodingRanks = []string{
		"mp4v", "avc1", "Sorenson H.283", "MPEG-4 Visual", "VP8", "VP9", "H.264",
	}
	audioEncodingRanks = []string{"mp4a", "mp3", "vorbis", "aac", "opus", "flac"}
)

var leadingIntRe = regexp.MustCompile(`^\s*([-+]?[0-9]+)`)

// leadingInt parses the integer prefix of a quality label such as "1080p60".
func leadingInt(s string) int {
	m := leadingIntRe.FindStringSubmatch(s)
	if m == nil {
		return 0
	}
	n, _ := strconv.Atoi(strings.TrimPrefix(m[1], "+"))
	return n
}

func encodingRank(ranks []string, codecs string) int {
	for i, enc := range ranks {
		if strings.Contains(codecs, enc) {
			return i
		}
	}
	return -1
}

func boolKey(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

// sortKey is one comparison criterion; larger values sort earlier.
type sortKey func(types.Format) int64

// sortBy orders formats descending by the first key that distinguishes a
// pair. The sort is stable so equal formats keep their input order.
func sortBy(fs []types.Format, keys []sortKey) {
	sort.SliceStable(fs, func(i, j int) bool {
		for _, key := range keys {
			a, b := key(fs[i]), key(fs[j])
			if a != b {
				return a > b
			}
		}
		return false
	})
}

var generalKeys = []sortKey{
	func(f types.Format) int64 { return boolKey(f.IsHLS) },
	func(f types.Format) int64 { return boolKey(f.IsDashMPD) },
	func(f types.Format) int64 { return boolKey(f.HasVideo && f.HasAudio) },
	func(f types.Format) int64 { return boolKey(f.HasVideo) },
	func(f types.Format) int64 { return boolKey(f.ContentLength > 0) },
	func(f types.Format) int64 { return int64(leadingInt(f.QualityLabel)) },
	func(f types.Format) int64 { return int64(f.Bitrate) },
	func(f types.Format) int64 { return int64(f.AudioBitrate) },
	func(f types.Format) int64 { return int64(encodingRank(videoEncodingRanks, f.Codecs)) },
	func(f types.Format) int64 { return int64(encodingRank(audioEncodingRanks, f.Codecs)) },
}

var audioKeys = []sortKey{
	func(f types.Format) int64 { return int64(f.AudioBitrate) },
	func(f types.Format) int64 { return int64(encodingRank(audioEncodingRanks, f.Codecs)) },
}

var videoKeys = []sortKey{
	func(f types.Format) int64 { return int64(leadingInt(f.QualityLabel)) },
	func(f types.Format) int64 { return int64(f.Bitrate) },
	func(f types.Format) int64 { return int64(encodingRank(videoEncodingRanks, f.Codecs)) },
}

// Filter retains formats matching the track filter. Live formats always
// survive since their track flags are unreliable mid-broadcast.
func Filter(fs []types.Format, filter types.TrackFilter, custom *types.CustomQuality) []types.Format {
	keep := func(f types.Format) bool { return f.HasVideo && f.HasAudio }
	switch {
	case custom != nil && custom.Keep != nil:
		keep = custom.Keep
	case filter == types.FilterAudio:
		keep = func(f types.Format) bool { return !f.HasVideo && f.HasAudio }
	case filter == types.FilterVideo:
		keep = func(f types.Format) bool { return f.HasVideo && !f.HasAudio }
	}

	out := make([]types.Format, 0, len(fs))
	for _, f := range fs {
		if keep(f) || f.IsLive {
			out = append(out, f)
		}
	}
	return out
}

// Choose picks one format for the requested quality, or ErrFormatNotFound
// when filtering leaves nothing. When any retained candidate is an HLS
// variant the non-HLS live formats are dropped, since mixing delivery modes
// within one broadcast breaks playback.
func Choose(fs []types.Format, filter types.TrackFilter, quality types.Quality, custom *types.CustomQuality) (types.Format, error) {
	candidates := Filter(fs, filter, custom)

	anyHLS := false
	for _, f := range candidates {
		if f.IsHLS {
			anyHLS = true
			break
		}
	}
	if anyHLS {
		kept := candidates[:0]
		for _, f := range candidates {
			if f.IsHLS || !f.IsLive {
				kept = append(kept, f)
			}
		}
		candidates = kept
	}

	sortBy(candidates, generalKeys)

	first := func(fs []types.Format) (types.Format, error) {
		if len(fs) == 0 {
			return types.Format{}, errs.ErrFormatNotFound
		}
		return fs[0], nil
	}
	last := func(fs []types.Format) (types.Format, error) {
		if len(fs) == 0 {
			return types.Format{}, errs.ErrFormatNotFound
		}
		return fs[len(fs)-1], nil
	}

	switch quality {
	case types.QualityHighest:
		return first(Filter(candidates, filter, custom))
	case types.QualityLowest:
		return last(Filter(candidates, filter, custom))
	case types.QualityHighestAudio, types.QualityLowestAudio:
		audio := Filter(candidates, types.FilterAudio, nil)
		sortBy(audio, audioKeys)
		if quality == types.QualityHighestAudio {
			return first(audio)
		}
		return last(audio)
	case types.QualityHighestVideo, types.QualityLowestVideo:
		video := Filter(candidates, types.FilterVideo, nil)
		sortBy(video, videoKeys)
		if quality == types.QualityHighestVideo {
			return first(video)
		}
		return last(video)
	case types.QualityCustom:
		kept := Filter(candidates, filter, custom)
		if custom != nil && custom.Less != nil {
			sort.SliceStable(kept, func(i, j int) bool { return custom.Less(kept[i], kept[j]) })
		}
		return first(kept)
	default:
		return first(Filter(candidates, filter, custom))
	}
}
