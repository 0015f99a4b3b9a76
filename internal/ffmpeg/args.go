package ffmpeg

import (
	"strconv"
	"strings"

	ffmpeggo "github.com/u2takey/ffmpeg-go"

	"github.com/DV0x/fashion-shoot-agent-sub001/pkg/util"
)

// frameArgs compiles a single-frame grab. The seek goes before -i so ffmpeg
// seeks in the demuxer and then decodes forward to the exact instant.
func frameArgs(input string, timestamp float64, dest string, target *Dimensions, padColor string) []string {
	out := ffmpeggo.KwArgs{
		"frames:v": "1",
		"update":   "1",
	}
	if target != nil {
		out["vf"] = NewFilterBuilder().Letterbox(target.Width, target.Height, padColor).Build()
	}
	if isJPEG(dest) {
		out["q:v"] = "2"
	}

	return ffmpeggo.
		Input(input, ffmpeggo.KwArgs{"ss": util.FormatSeconds(timestamp)}).
		Output(dest, out).
		GetArgs()
}

// encodeArgs compiles the image-sequence to H.264 encode.
func encodeArgs(opts EncodeOptions, dest string) []string {
	codec := opts.Codec.withDefaults()
	rate := util.FormatRate(opts.FPS)

	in := ffmpeggo.KwArgs{
		"f":            "image2",
		"framerate":    rate,
		"start_number": strconv.Itoa(opts.StartNumber),
	}
	out := ffmpeggo.KwArgs{
		"frames:v":  strconv.Itoa(opts.FrameCount),
		"vf":        NewFilterBuilder().EvenDimensions().Format(codec.PixelFormat).Build(),
		"c:v":       codec.VideoCodec,
		"preset":    codec.Preset,
		"profile:v": codec.Profile,
		"level":     codec.Level,
		"pix_fmt":   codec.PixelFormat,
		"b:v":       opts.Bitrate,
		"r":         rate,
		"movflags":  "+faststart",
		"f":         DefaultContainer,
	}

	return ffmpeggo.Input(opts.FramePattern, in).Output(dest, out).GetArgs()
}

func isJPEG(path string) bool {
	p := strings.ToLower(path)
	return strings.HasSuffix(p, ".jpg") || strings.HasSuffix(p, ".jpeg")
}
