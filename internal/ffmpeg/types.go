package ffmpeg

import "fmt"

// VideoMetadata is what probing learns about a clip. It is never mutated
// after Probe returns it.
type VideoMetadata struct {
	Path      string
	Duration  float64 // seconds
	Width     int
	Height    int
	FrameRate float64
	Codec     string
}

// Dimensions returns the frame size.
func (m VideoMetadata) Dimensions() Dimensions {
	return Dimensions{Width: m.Width, Height: m.Height}
}

// Dimensions is a frame size in pixels.
type Dimensions struct {
	Width  int
	Height int
}

func (d Dimensions) String() string {
	return fmt.Sprintf("%dx%d", d.Width, d.Height)
}

// Covers reports whether d is at least as large as o on both axes.
func (d Dimensions) Covers(o Dimensions) bool {
	return d.Width >= o.Width && d.Height >= o.Height
}

// Progress represents ffmpeg progress data
type Progress struct {
	Frame      int
	FPS        float64
	Bitrate    string
	Time       string
	Speed      string
	Percentage float64
}

// ProgressFunc is a callback for progress updates during ffmpeg operations.
// Called periodically with progress information as the operation executes.
type ProgressFunc func(*Progress)

// FrameProgressFunc is called once per extracted frame with the number of
// frames finished so far and the batch size.
type FrameProgressFunc func(done, total int)

// RunOptions configures ffmpeg execution
type RunOptions struct {
	Args            []string
	ProgressHandler func(*Progress)
	LogHandler      func(line string)
}

// Frame naming and encode defaults. H.264 high@4.1 with 4:2:0 chroma plays
// on browsers, phones and editors alike.
const (
	FramePrefix        = "frame_"
	DefaultFrameFormat = "png"
	DefaultPadColor    = "black"
	DefaultVideoCodec  = "libx264"
	DefaultPreset      = "medium"
	DefaultProfile     = "high"
	DefaultLevel       = "4.1"
	DefaultPixelFormat = "yuv420p"
	DefaultBitrate     = "25M"
	DefaultRetries     = 2
	DefaultContainer   = "mp4"
)

// CodecOptions selects the encoder configuration.
type CodecOptions struct {
	VideoCodec  string
	Preset      string
	Profile     string
	Level       string
	PixelFormat string
}

// DefaultCodecOptions returns the broad-compatibility H.264 settings.
func DefaultCodecOptions() CodecOptions {
	return CodecOptions{
		VideoCodec:  DefaultVideoCodec,
		Preset:      DefaultPreset,
		Profile:     DefaultProfile,
		Level:       DefaultLevel,
		PixelFormat: DefaultPixelFormat,
	}
}

func (c CodecOptions) withDefaults() CodecOptions {
	d := DefaultCodecOptions()
	if c.VideoCodec == "" {
		c.VideoCodec = d.VideoCodec
	}
	if c.Preset == "" {
		c.Preset = d.Preset
	}
	if c.Profile == "" {
		c.Profile = d.Profile
	}
	if c.Level == "" {
		c.Level = d.Level
	}
	if c.PixelFormat == "" {
		c.PixelFormat = d.PixelFormat
	}
	return c
}

// BatchOptions configures ExtractFramesBatch.
type BatchOptions struct {
	Input      string
	Timestamps []float64
	DestDir    string
	// Offset is the sequence number of the first frame written.
	Offset int
	// Target, when set, letterboxes every frame to exactly this size.
	Target     *Dimensions
	Format     string
	PadColor   string
	Retries    int
	Workers    int
	OnProgress FrameProgressFunc
}

// EncodeOptions configures EncodeFramesToVideo.
type EncodeOptions struct {
	FramePattern string
	StartNumber  int
	FrameCount   int
	Output       string
	FPS          float64
	Bitrate      string
	Codec        CodecOptions
	ProgressFunc ProgressFunc
}
