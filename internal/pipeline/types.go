package pipeline

import (
	"context"
	"time"

	"github.com/DV0x/fashion-shoot-agent-sub001/internal/easing"
	"github.com/DV0x/fashion-shoot-agent-sub001/internal/ffmpeg"
	"github.com/DV0x/fashion-shoot-agent-sub001/internal/timing"
)

// Media is the transcoder surface a job needs. *ffmpeg.Executor implements it.
type Media interface {
	Probe(ctx context.Context, path string) (ffmpeg.VideoMetadata, error)
	ExtractFramesBatch(ctx context.Context, opts ffmpeg.BatchOptions) (int, error)
	EncodeFramesToVideo(ctx context.Context, opts ffmpeg.EncodeOptions) error
}

// RetimeRequest describes a single-clip job. Zero values take the
// configured defaults.
type RetimeRequest struct {
	Input          string
	Output         string
	OutputDuration float64
	OutputFPS      float64
	Easing         string
	Bezier         *easing.BezierSpec
	Bitrate        string
	KeepTemp       bool
	OnProgress     ProgressFunc
}

// StitchRequest describes a multi-clip job. Every clip is retimed to
// ClipDuration with the same curve and the results are joined by hard cuts.
type StitchRequest struct {
	Clips        []string
	Output       string
	ClipDuration float64
	OutputFPS    float64
	Easing       string
	Bezier       *easing.BezierSpec
	Bitrate      string
	KeepTemp     bool
	// CutSheet, when set, receives a PNG contact sheet of each cut.
	CutSheet   string
	OnProgress ProgressFunc
}

// ClipJob is one clip's share of a stitch.
type ClipJob struct {
	Index    int
	Path     string
	Metadata ffmpeg.VideoMetadata
	Series   *timing.Series
	Range    FrameRange
}

// Result describes a finished job.
type Result struct {
	JobID      string
	Output     string
	Frames     int
	Duration   float64 // seconds of output
	FPS        float64
	Easing     string
	Resolution ffmpeg.Dimensions
	Size       int64
	SizeHuman  string
	// TempDir is set only when the scratch directory was retained.
	TempDir  string
	CutSheet string
	Clips    []ClipJob
	Elapsed  time.Duration
}

// ProgressEvent is delivered on every state change and every extracted
// frame.
type ProgressEvent struct {
	JobID string
	State State
	// Clip is the index of the clip being extracted.
	Clip  int
	Clips int
	// Done and Total count frames across the whole job.
	Done   int
	Total  int
	Encode *ffmpeg.Progress
}

// ProgressFunc receives progress events. Calls are serialized.
type ProgressFunc func(ProgressEvent)
