package formats

import (
	"regexp"

	"github.com/ytget/ytstream/internal/mimeext"
	"github.com/ytget/ytstream/types"
)

var (
	liveSourceRe = regexp.MustCompile(`\bsource[/=]yt_live_broadcast\b`)
	hlsRe        = regexp.MustCompile(`/manifest/hls_(variant|playlist)/`)
	dashRe       = regexp.MustCompile(`/manifest/dash/`)
)

// AddMeta derives container, codec split and delivery flags from the mime
// type and the resolved URL. It is idempotent and safe on partially filled
// formats; unknown shapes just leave the derived fields empty.
func AddMeta(f *types.Format) {
	f.Container = mimeext.Container(f.MimeType)
	f.Codecs = mimeext.Codecs(f.MimeType)

	tokens := mimeext.SplitCodecs(f.Codecs)
	f.VideoCodec = ""
	f.AudioCodec = ""

	f.HasVideo = f.QualityLabel != ""
	f.HasAudio = f.AudioBitrate > 0 || f.AudioQuality != ""

	if len(tokens) > 0 {
		if f.HasVideo {
			f.VideoCodec = tokens[0]
		}
		if f.HasAudio {
			f.AudioCodec = tokens[len(tokens)-1]
		}
	}

	f.IsLive = liveSourceRe.MatchString(f.URL)
	f.IsHLS = hlsRe.MatchString(f.URL)
	f.IsDashMPD = dashRe.MatchString(f.URL)
}
