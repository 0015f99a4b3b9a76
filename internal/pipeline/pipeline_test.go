package pipeline

import (
	"context"
	"errors"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DV0x/fashion-shoot-agent-sub001/internal/config"
	"github.com/DV0x/fashion-shoot-agent-sub001/internal/easing"
	apperrors "github.com/DV0x/fashion-shoot-agent-sub001/internal/errors"
	"github.com/DV0x/fashion-shoot-agent-sub001/internal/ffmpeg"
)

type harness struct {
	p       *Pipeline
	media   *fakeMedia
	scratch string
	dir     string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	cfg := config.Default()
	cfg.TempDir = t.TempDir()
	cfg.Concurrency = 2

	media := newFakeMedia()
	p := NewWithMedia(zerolog.Nop(), cfg, media)
	p.outputs = newOutputGuard()

	return &harness{p: p, media: media, scratch: cfg.TempDir, dir: t.TempDir()}
}

// clip creates a non-empty input file and registers its metadata.
func (h *harness) clip(t *testing.T, name string, duration float64, w, hgt int) string {
	t.Helper()
	path := filepath.Join(h.dir, name)
	require.NoError(t, os.WriteFile(path, []byte("video"), 0644))
	h.media.metas[path] = ffmpeg.VideoMetadata{
		Path: path, Duration: duration, Width: w, Height: hgt, FrameRate: 24, Codec: "h264",
	}
	return path
}

func (h *harness) output(name string) string {
	return filepath.Join(h.dir, "out", name)
}

func (h *harness) assertScratchEmpty(t *testing.T) {
	t.Helper()
	entries, err := os.ReadDir(h.scratch)
	require.NoError(t, err)
	assert.Empty(t, entries, "scratch root should be empty")
}

// stateTrail collapses progress events into the ordered list of states seen.
type stateTrail struct {
	mu     sync.Mutex
	states []State
	last   ProgressEvent
}

func (s *stateTrail) record(ev ProgressEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n := len(s.states); n == 0 || s.states[n-1] != ev.State {
		s.states = append(s.states, ev.State)
	}
	s.last = ev
}

func TestRetimeLinearScenario(t *testing.T) {
	h := newHarness(t)
	in := h.clip(t, "in.mp4", 5.04, 1920, 1080)
	out := h.output("retimed.mp4")

	trail := &stateTrail{}
	res, err := h.p.Retime(context.Background(), RetimeRequest{
		Input:      in,
		Output:     out,
		Easing:     "linear",
		OnProgress: trail.record,
	})
	require.NoError(t, err)

	assert.Equal(t, 90, res.Frames)
	assert.InDelta(t, 1.5, res.Duration, 1e-9)
	assert.Equal(t, "linear", res.Easing)
	assert.Equal(t, ffmpeg.Dimensions{Width: 1920, Height: 1080}, res.Resolution)
	assert.Empty(t, res.TempDir)
	assert.NotEmpty(t, res.JobID)
	assert.Greater(t, res.Size, int64(0))
	assert.NotEmpty(t, res.SizeHuman)
	assert.FileExists(t, out)

	require.Len(t, res.Clips, 1)
	series := res.Clips[0].Series
	assert.Equal(t, 0.0, series.First())
	assert.InDelta(t, 5.04, series.Last(), 0.05)

	require.Len(t, h.media.batches, 1)
	assert.Equal(t, 0, h.media.batches[0].Offset)
	assert.Nil(t, h.media.batches[0].Target)
	require.Len(t, h.media.encodes, 1)
	assert.Equal(t, 90, h.media.encodes[0].FrameCount)
	assert.Equal(t, "25M", h.media.encodes[0].Bitrate)
	assert.Equal(t, 60.0, h.media.encodes[0].FPS)

	assert.Equal(t, []State{
		StateProbing, StateComputingTimestamps, StateExtracting, StateEncoding, StateDone,
	}, trail.states)
	assert.Equal(t, 90, trail.last.Total)

	h.assertScratchEmpty(t)
}

func TestRetimeIsIdempotent(t *testing.T) {
	h := newHarness(t)
	in := h.clip(t, "in.mp4", 4.2, 1280, 720)
	req := RetimeRequest{Input: in, Output: h.output("a.mp4"), OutputDuration: 2, OutputFPS: 30, Easing: "dramaticSwoop"}

	first, err := h.p.Retime(context.Background(), req)
	require.NoError(t, err)
	second, err := h.p.Retime(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, first.Frames, second.Frames)
	assert.Equal(t, first.Duration, second.Duration)
	assert.Equal(t, first.Clips[0].Series.Timestamps, second.Clips[0].Series.Timestamps)
	assert.NotEqual(t, first.JobID, second.JobID)
}

func TestRetimeKeepTemp(t *testing.T) {
	h := newHarness(t)
	in := h.clip(t, "in.mp4", 3, 640, 360)

	res, err := h.p.Retime(context.Background(), RetimeRequest{
		Input: in, Output: h.output("kept.mp4"), OutputDuration: 0.5, OutputFPS: 24, KeepTemp: true,
	})
	require.NoError(t, err)
	require.NotEmpty(t, res.TempDir)
	assert.DirExists(t, res.TempDir)

	frames, err := filepath.Glob(filepath.Join(res.TempDir, "frames", "frame_*.png"))
	require.NoError(t, err)
	assert.Len(t, frames, 12)
}

func TestRetimeBezier(t *testing.T) {
	h := newHarness(t)
	in := h.clip(t, "in.mp4", 5, 640, 360)

	res, err := h.p.Retime(context.Background(), RetimeRequest{
		Input:  in,
		Output: h.output("bezier.mp4"),
		Easing: "linear",
		Bezier: &easing.BezierSpec{P1X: 0.85, P1Y: 0, P2X: 0.15, P2Y: 1},
	})
	require.NoError(t, err)
	assert.Equal(t, "bezier(0.85,0,0.15,1)", res.Easing)
}

func TestRetimeValidation(t *testing.T) {
	h := newHarness(t)
	in := h.clip(t, "in.mp4", 5, 640, 360)
	out := h.output("x.mp4")

	tests := []struct {
		name string
		req  RetimeRequest
		code apperrors.Code
	}{
		{"no input", RetimeRequest{Output: out}, apperrors.CodeValidation},
		{"no output", RetimeRequest{Input: in}, apperrors.CodeValidation},
		{"overwrite input", RetimeRequest{Input: in, Output: in}, apperrors.CodeValidation},
		{"negative duration", RetimeRequest{Input: in, Output: out, OutputDuration: -1}, apperrors.CodeValidation},
		{"bad bitrate", RetimeRequest{Input: in, Output: out, Bitrate: "fast"}, apperrors.CodeValidation},
		{"byte bitrate", RetimeRequest{Input: in, Output: out, Bitrate: "25 MiB"}, apperrors.CodeValidation},
		{"too short", RetimeRequest{Input: in, Output: out, OutputDuration: 0.001}, apperrors.CodeValidation},
		{"unknown easing", RetimeRequest{Input: in, Output: out, Easing: "wobble"}, apperrors.CodeUnknownEasing},
		{"bad bezier", RetimeRequest{Input: in, Output: out, Bezier: &easing.BezierSpec{P1X: 2, P2X: 0.5, P2Y: 1}}, apperrors.CodeValidation},
		{"missing input", RetimeRequest{Input: filepath.Join(h.dir, "nope.mp4"), Output: out}, apperrors.CodeMissingClip},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.p.Retime(context.Background(), tt.req)
			require.Error(t, err)
			assert.Equal(t, tt.code, apperrors.GetCode(err))
			assert.True(t, apperrors.IsValidation(err))
		})
	}

	// "too short" only fails once the series is computed, after probing
	assert.Equal(t, []string{in}, h.media.probes)
	assert.Empty(t, h.media.batches)
	assert.NoFileExists(t, out)
	h.assertScratchEmpty(t)
}

func TestRetimeCancelled(t *testing.T) {
	h := newHarness(t)
	in := h.clip(t, "in.mp4", 5, 640, 360)

	ctx, cancel := context.WithCancel(context.Background())
	h.media.onExtract = cancel

	_, err := h.p.Retime(ctx, RetimeRequest{Input: in, Output: h.output("c.mp4")})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, h.media.encodes)
	h.assertScratchEmpty(t)
}

func TestStitchThreeClips(t *testing.T) {
	h := newHarness(t)
	clips := []string{
		h.clip(t, "a.mp4", 5.0, 1920, 1080),
		h.clip(t, "b.mp4", 4.8, 1080, 1920),
		h.clip(t, "c.mp4", 5.2, 1280, 720),
	}
	out := h.output("stitched.mp4")

	trail := &stateTrail{}
	res, err := h.p.Stitch(context.Background(), StitchRequest{
		Clips:        clips,
		Output:       out,
		ClipDuration: 1.5,
		OutputFPS:    60,
		Easing:       "dramaticSwoop",
		OnProgress:   trail.record,
	})
	require.NoError(t, err)

	assert.Equal(t, 270, res.Frames)
	assert.InDelta(t, 4.5, res.Duration, 1e-9)
	assert.Equal(t, ffmpeg.Dimensions{Width: 1920, Height: 1920}, res.Resolution)
	assert.FileExists(t, out)

	require.Len(t, res.Clips, 3)
	for k, cj := range res.Clips {
		assert.Equal(t, k, cj.Index)
		assert.Equal(t, clips[k], cj.Path)
		assert.Equal(t, FrameRange{Start: 90 * k, Count: 90}, cj.Range)
		assert.InDelta(t, cj.Metadata.Duration/1.5, cj.Series.CompressionRatio, 1e-9)
		assert.Less(t, cj.Series.Last(), cj.Metadata.Duration)
	}

	// every clip extracted in order, normalized to the shared size
	require.Len(t, h.media.batches, 3)
	for k, b := range h.media.batches {
		assert.Equal(t, clips[k], b.Input)
		assert.Equal(t, 90*k, b.Offset)
		require.NotNil(t, b.Target)
		assert.Equal(t, res.Resolution, *b.Target)
	}

	require.Len(t, h.media.encodes, 1)
	assert.Equal(t, 0, h.media.encodes[0].StartNumber)
	assert.Equal(t, 270, h.media.encodes[0].FrameCount)

	assert.Equal(t, StateDone, trail.last.State)
	assert.Equal(t, 3, trail.last.Clips)
	h.assertScratchEmpty(t)
}

func TestStitchNeedsTwoClips(t *testing.T) {
	h := newHarness(t)
	one := h.clip(t, "only.mp4", 5, 640, 360)

	for _, clips := range [][]string{nil, {one}, {filepath.Join(h.dir, "ghost.mp4")}} {
		_, err := h.p.Stitch(context.Background(), StitchRequest{Clips: clips, Output: h.output("s.mp4")})
		require.Error(t, err)
		assert.Equal(t, apperrors.CodeValidation, apperrors.GetCode(err))
	}
	assert.Empty(t, h.media.probes, "nothing may be probed")
	h.assertScratchEmpty(t)
}

func TestStitchReportsEveryMissingClip(t *testing.T) {
	h := newHarness(t)
	good := h.clip(t, "good.mp4", 5, 640, 360)
	empty := filepath.Join(h.dir, "empty.mp4")
	require.NoError(t, os.WriteFile(empty, nil, 0644))
	gone := filepath.Join(h.dir, "gone.mp4")

	_, err := h.p.Stitch(context.Background(), StitchRequest{
		Clips:  []string{gone, good, empty},
		Output: h.output("s.mp4"),
	})
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeMissingClip, apperrors.GetCode(err))
	assert.Equal(t, []string{empty, gone}, apperrors.GetFields(err)["paths"])
	assert.Empty(t, h.media.probes)
}

func TestStitchReportsEveryProbeFailure(t *testing.T) {
	h := newHarness(t)
	a := h.clip(t, "a.mp4", 5, 640, 360)
	b := h.clip(t, "b.mp4", 5, 640, 360)
	c := h.clip(t, "c.mp4", 5, 640, 360)
	h.media.probeErrs[a] = errors.New("moov atom not found")
	h.media.probeErrs[c] = errors.New("invalid data")

	_, err := h.p.Stitch(context.Background(), StitchRequest{Clips: []string{a, b, c}, Output: h.output("s.mp4")})
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeMediaProbe, apperrors.GetCode(err))
	assert.Equal(t, []string{a, c}, apperrors.GetFields(err)["paths"])
	assert.Contains(t, err.Error(), "moov atom not found")
	assert.Contains(t, err.Error(), "invalid data")
	assert.Equal(t, []string{a, b, c}, h.media.probes)
	assert.Empty(t, h.media.batches)
}

func TestStitchExtractionFailureAborts(t *testing.T) {
	h := newHarness(t)
	a := h.clip(t, "a.mp4", 5, 640, 360)
	b := h.clip(t, "b.mp4", 5, 640, 360)
	c := h.clip(t, "c.mp4", 5, 640, 360)
	h.media.failClip = b
	out := h.output("s.mp4")

	trail := &stateTrail{}
	_, err := h.p.Stitch(context.Background(), StitchRequest{Clips: []string{a, b, c}, Output: out, OnProgress: trail.record})
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeFrameExtraction, apperrors.GetCode(err))
	assert.Len(t, h.media.batches, 2, "clip c is never extracted")
	assert.Empty(t, h.media.encodes)
	assert.NoFileExists(t, out)
	assert.Equal(t, StateFailed, trail.last.State)
	h.assertScratchEmpty(t)
}

func TestStitchEncodeFailure(t *testing.T) {
	h := newHarness(t)
	a := h.clip(t, "a.mp4", 5, 640, 360)
	b := h.clip(t, "b.mp4", 5, 640, 360)
	h.media.encodeErr = errors.New("x264 refused")
	out := h.output("s.mp4")

	_, err := h.p.Stitch(context.Background(), StitchRequest{Clips: []string{a, b}, Output: out})
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeEncode, apperrors.GetCode(err))
	assert.NoFileExists(t, out)
	h.assertScratchEmpty(t)
}

func TestStitchKeepsScratchOnFailureWhenAsked(t *testing.T) {
	h := newHarness(t)
	a := h.clip(t, "a.mp4", 5, 640, 360)
	b := h.clip(t, "b.mp4", 5, 640, 360)
	h.media.encodeErr = errors.New("disk full")

	_, err := h.p.Stitch(context.Background(), StitchRequest{Clips: []string{a, b}, Output: h.output("s.mp4"), KeepTemp: true})
	require.Error(t, err)

	entries, err := os.ReadDir(h.scratch)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestStitchCutSheet(t *testing.T) {
	h := newHarness(t)
	clips := []string{
		h.clip(t, "a.mp4", 5, 640, 360),
		h.clip(t, "b.mp4", 4, 640, 360),
		h.clip(t, "c.mp4", 6, 640, 360),
	}
	sheet := filepath.Join(h.dir, "cuts.png")

	res, err := h.p.Stitch(context.Background(), StitchRequest{
		Clips: clips, Output: h.output("s.mp4"), OutputFPS: 30, CutSheet: sheet,
	})
	require.NoError(t, err)
	assert.Equal(t, sheet, res.CutSheet)

	f, err := os.Open(sheet)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)

	// two cuts, thumbnails 320x180 from 32x18 frames
	assert.Equal(t, 2*320+3*cutSheetGap, img.Bounds().Dx())
	assert.Equal(t, 2*(180+cutSheetGap)+cutSheetGap, img.Bounds().Dy())

	_, err = h.p.Stitch(context.Background(), StitchRequest{Clips: clips, Output: h.output("t.mp4"), CutSheet: filepath.Join(h.dir, "cuts.jpg")})
	assert.Equal(t, apperrors.CodeValidation, apperrors.GetCode(err))
}

func TestStitchFailureLeavesNoCutSheet(t *testing.T) {
	h := newHarness(t)
	a := h.clip(t, "a.mp4", 5, 640, 360)
	b := h.clip(t, "b.mp4", 5, 640, 360)
	h.media.encodeErr = errors.New("x264 refused")
	out := h.output("s.mp4")
	sheet := filepath.Join(h.dir, "cuts.png")

	_, err := h.p.Stitch(context.Background(), StitchRequest{Clips: []string{a, b}, Output: out, CutSheet: sheet})
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeEncode, apperrors.GetCode(err))
	assert.NoFileExists(t, out)
	assert.NoFileExists(t, sheet)
	h.assertScratchEmpty(t)
}

func TestStitchCutSheetFailureRemovesOutput(t *testing.T) {
	h := newHarness(t)
	a := h.clip(t, "a.mp4", 5, 640, 360)
	b := h.clip(t, "b.mp4", 5, 640, 360)
	out := h.output("s.mp4")

	// a regular file where the sheet's directory should be
	blocker := filepath.Join(h.dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))
	sheet := filepath.Join(blocker, "cuts.png")

	_, err := h.p.Stitch(context.Background(), StitchRequest{Clips: []string{a, b}, Output: out, CutSheet: sheet})
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeInternal, apperrors.GetCode(err))
	assert.NoFileExists(t, out)
	assert.NoFileExists(t, sheet)
	h.assertScratchEmpty(t)
}

func TestConcurrentJobsCannotShareOutput(t *testing.T) {
	h := newHarness(t)
	a := h.clip(t, "a.mp4", 5, 640, 360)
	b := h.clip(t, "b.mp4", 5, 640, 360)
	out := h.output("shared.mp4")

	entered := make(chan struct{})
	proceed := make(chan struct{})
	var once sync.Once
	h.media.onExtract = func() {
		once.Do(func() {
			close(entered)
			<-proceed
		})
	}

	errs := make(chan error, 1)
	go func() {
		_, err := h.p.Retime(context.Background(), RetimeRequest{Input: a, Output: out})
		errs <- err
	}()

	<-entered
	_, err := h.p.Retime(context.Background(), RetimeRequest{Input: b, Output: out})
	assert.Equal(t, apperrors.CodeValidation, apperrors.GetCode(err))

	close(proceed)
	require.NoError(t, <-errs)

	// the claim is released once the first job ends
	_, err = h.p.Retime(context.Background(), RetimeRequest{Input: b, Output: out})
	assert.NoError(t, err)
}
