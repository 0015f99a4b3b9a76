package pipeline

import (
	"context"
	"os"

	apperrors "github.com/DV0x/fashion-shoot-agent-sub001/internal/errors"
	"github.com/DV0x/fashion-shoot-agent-sub001/internal/ffmpeg"
	"github.com/DV0x/fashion-shoot-agent-sub001/internal/timing"
)

// MinStitchClips is the fewest clips a stitch accepts.
const MinStitchClips = 2

// Stitch retimes every clip to ClipDuration along one curve and joins them
// with hard cuts in a single encode. Frames of clip k directly follow those
// of clip k-1 in one shared sequence, each letterboxed to the largest width
// and height among the clips.
func (p *Pipeline) Stitch(ctx context.Context, req StitchRequest) (*Result, error) {
	j := p.newJob("stitch", req.KeepTemp, req.OnProgress)
	j.clips = len(req.Clips)

	p.logger.Info().
		Str("job_id", j.id).
		Int("clips", len(req.Clips)).
		Str("output", req.Output).
		Msg("starting stitch")

	s, err := p.validateStitch(req)
	if err != nil {
		return nil, j.fail(err)
	}
	if err := j.claim(p.outputs, req.Output); err != nil {
		return nil, j.fail(err)
	}

	// Stage 1: probe every clip, reporting all failures together
	if err := j.advance(StateProbing); err != nil {
		return nil, err
	}
	metas, err := p.probeAll(ctx, req.Clips)
	if err != nil {
		return nil, j.fail(err)
	}
	shared, err := ffmpeg.ComputeSharedResolution(metas)
	if err != nil {
		return nil, j.fail(err)
	}
	j.logger.Info().Str("resolution", shared.String()).Msg("shared resolution")

	// Stage 2: one series per clip, frame ranges reserved up front
	if err := j.advance(StateComputingTimestamps); err != nil {
		return nil, err
	}
	jobs, arena, err := planClips(req.Clips, metas, s)
	if err != nil {
		return nil, j.fail(err)
	}
	j.total = arena.Total()
	for _, cj := range jobs {
		j.logger.Debug().
			Int("clip", cj.Index).
			Int("start", cj.Range.Start).
			Int("frames", cj.Range.Count).
			Float64("ratio", cj.Series.CompressionRatio).
			Msg("clip planned")
	}

	// Stage 3: frames, clip by clip
	if err := j.openWorkspace(p.config.TempDir); err != nil {
		return nil, j.fail(err)
	}
	if err := j.advance(StateExtracting); err != nil {
		return nil, err
	}
	for _, cj := range jobs {
		if err := ctx.Err(); err != nil {
			return nil, j.fail(err)
		}
		opts := p.batch(j, cj.Index, cj.Path, cj.Series.Timestamps, cj.Range, &shared)
		if _, err := p.media.ExtractFramesBatch(ctx, opts); err != nil {
			return nil, j.fail(err)
		}
	}

	// Stage 4: exactly one encode over the whole sequence
	if err := j.advance(StateEncoding); err != nil {
		return nil, err
	}
	if err := p.encode(ctx, j, req.Output, arena.Total(), s.fps, s.bitrate); err != nil {
		return nil, j.fail(err)
	}

	// Frames stay in the scratch dir until the job enters Done
	if req.CutSheet != "" {
		if err := writeCutSheet(req.CutSheet, j.ws.frames, p.config.FFmpeg.FrameFormat, arena.Ranges()); err != nil {
			if rmErr := os.Remove(req.Output); rmErr != nil && !os.IsNotExist(rmErr) {
				j.logger.Warn().Err(rmErr).Str("output", req.Output).Msg("failed to remove output")
			}
			return nil, j.fail(apperrors.Wrap(err, apperrors.CodeInternal, "stitch.cutsheet", "cannot write cut sheet"))
		}
		j.logger.Info().Str("path", req.CutSheet).Msg("cut sheet written")
	}

	return j.finish(&Result{
		Output:     req.Output,
		Frames:     arena.Total(),
		Duration:   float64(arena.Total()) / s.fps,
		FPS:        s.fps,
		Easing:     s.label,
		Resolution: shared,
		CutSheet:   req.CutSheet,
		Clips:      jobs,
	})
}

// validateStitch runs every check that needs no subprocess. The clip
// count is checked first so a short list never touches the filesystem.
func (p *Pipeline) validateStitch(req StitchRequest) (settings, error) {
	if len(req.Clips) < MinStitchClips {
		return settings{}, apperrors.ValidationField("clips",
			"stitching needs at least 2 clips").WithField("count", len(req.Clips))
	}
	if req.Output == "" {
		return settings{}, apperrors.ValidationField("output", "output path is required")
	}
	for _, clip := range req.Clips {
		if clip == "" {
			return settings{}, apperrors.ValidationField("clips", "clip path is empty")
		}
		if samePath(clip, req.Output) {
			return settings{}, apperrors.ValidationField("output", "output would overwrite clip "+clip)
		}
	}
	if req.CutSheet != "" && (samePath(req.CutSheet, req.Output) || !isPNG(req.CutSheet)) {
		return settings{}, apperrors.ValidationField("cut_sheet", "cut sheet must be a separate .png file")
	}
	s, err := p.resolveSettings(req.ClipDuration, req.OutputFPS, req.Easing, req.Bezier, req.Bitrate)
	if err != nil {
		return settings{}, err
	}
	if err := checkInputs(req.Clips); err != nil {
		return settings{}, err
	}
	return s, nil
}

// probeAll probes clips in order and aggregates every failure.
func (p *Pipeline) probeAll(ctx context.Context, clips []string) ([]ffmpeg.VideoMetadata, error) {
	metas := make([]ffmpeg.VideoMetadata, len(clips))
	var failed []string
	var causes []error

	for i, path := range clips {
		meta, err := p.media.Probe(ctx, path)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			failed = append(failed, path)
			causes = append(causes, err)
			continue
		}
		metas[i] = meta
	}

	if len(failed) > 0 {
		return nil, apperrors.MediaProbeAll(failed, causes)
	}
	return metas, nil
}

// planClips computes each clip's own series from its own duration and
// reserves its frame range.
func planClips(paths []string, metas []ffmpeg.VideoMetadata, s settings) ([]ClipJob, *FrameArena, error) {
	arena := NewFrameArena()
	jobs := make([]ClipJob, 0, len(paths))

	for i, path := range paths {
		series, err := timing.Calculate(s.fn, timing.Params{
			InputDuration:  metas[i].Duration,
			OutputDuration: s.duration,
			OutputFPS:      s.fps,
			SourceFPS:      metas[i].FrameRate,
		})
		if err != nil {
			return nil, nil, err
		}
		r, err := arena.Reserve(series.Len())
		if err != nil {
			return nil, nil, err
		}
		jobs = append(jobs, ClipJob{
			Index:    i,
			Path:     path,
			Metadata: metas[i],
			Series:   series,
			Range:    r,
		})
	}
	return jobs, arena, nil
}
