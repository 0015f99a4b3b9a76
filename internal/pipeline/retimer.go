package pipeline

import (
	"context"
	"path/filepath"

	apperrors "github.com/DV0x/fashion-shoot-agent-sub001/internal/errors"
	"github.com/DV0x/fashion-shoot-agent-sub001/internal/timing"
)

// Retime compresses one clip into OutputDuration seconds along the
// requested speed curve. The scratch directory is removed whether the job
// succeeds or fails unless KeepTemp is set.
func (p *Pipeline) Retime(ctx context.Context, req RetimeRequest) (*Result, error) {
	j := p.newJob("retime", req.KeepTemp, req.OnProgress)
	j.clips = 1

	p.logger.Info().
		Str("job_id", j.id).
		Str("input", req.Input).
		Str("output", req.Output).
		Msg("starting retime")

	s, err := p.validateRetime(req)
	if err != nil {
		return nil, j.fail(err)
	}
	if err := j.claim(p.outputs, req.Output); err != nil {
		return nil, j.fail(err)
	}

	// Stage 1: probe
	if err := j.advance(StateProbing); err != nil {
		return nil, err
	}
	meta, err := p.media.Probe(ctx, req.Input)
	if err != nil {
		return nil, j.fail(err)
	}
	j.logger.Info().
		Float64("duration", meta.Duration).
		Str("size", meta.Dimensions().String()).
		Float64("fps", meta.FrameRate).
		Msg("input probed")

	// Stage 2: timestamps
	if err := j.advance(StateComputingTimestamps); err != nil {
		return nil, err
	}
	series, err := timing.Calculate(s.fn, timing.Params{
		InputDuration:  meta.Duration,
		OutputDuration: s.duration,
		OutputFPS:      s.fps,
		SourceFPS:      meta.FrameRate,
	})
	if err != nil {
		return nil, j.fail(err)
	}
	arena := NewFrameArena()
	r, err := arena.Reserve(series.Len())
	if err != nil {
		return nil, j.fail(err)
	}
	j.total = arena.Total()
	if series.Clamped > 0 {
		j.logger.Debug().Int("clamped", series.Clamped).Msg("curve left the source range")
	}

	// Stage 3: frames
	if err := j.openWorkspace(p.config.TempDir); err != nil {
		return nil, j.fail(err)
	}
	if err := j.advance(StateExtracting); err != nil {
		return nil, err
	}
	if _, err := p.media.ExtractFramesBatch(ctx, p.batch(j, 0, req.Input, series.Timestamps, r, nil)); err != nil {
		return nil, j.fail(err)
	}

	// Stage 4: encode
	if err := j.advance(StateEncoding); err != nil {
		return nil, err
	}
	if err := p.encode(ctx, j, req.Output, arena.Total(), s.fps, s.bitrate); err != nil {
		return nil, j.fail(err)
	}

	return j.finish(&Result{
		Output:     req.Output,
		Frames:     arena.Total(),
		Duration:   float64(arena.Total()) / s.fps,
		FPS:        s.fps,
		Easing:     s.label,
		Resolution: meta.Dimensions(),
		Clips: []ClipJob{{
			Index:    0,
			Path:     req.Input,
			Metadata: meta,
			Series:   series,
			Range:    r,
		}},
	})
}

// validateRetime runs every check that needs no subprocess.
func (p *Pipeline) validateRetime(req RetimeRequest) (settings, error) {
	if req.Input == "" {
		return settings{}, apperrors.ValidationField("input", "input path is required")
	}
	if req.Output == "" {
		return settings{}, apperrors.ValidationField("output", "output path is required")
	}
	if samePath(req.Input, req.Output) {
		return settings{}, apperrors.ValidationField("output", "output would overwrite the input")
	}
	s, err := p.resolveSettings(req.OutputDuration, req.OutputFPS, req.Easing, req.Bezier, req.Bitrate)
	if err != nil {
		return settings{}, err
	}
	if err := checkInputs([]string{req.Input}); err != nil {
		return settings{}, err
	}
	return s, nil
}

func samePath(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	return absA == absB
}
