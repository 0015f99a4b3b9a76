package ffmpeg

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	apperrors "github.com/DV0x/fashion-shoot-agent-sub001/internal/errors"
	"github.com/DV0x/fashion-shoot-agent-sub001/pkg/util"
)

// FrameName returns the file name of sequence number index.
func FrameName(index int, format string) string {
	return fmt.Sprintf("%s%06d.%s", FramePrefix, index, normalizeFormat(format))
}

// FramePattern returns the printf pattern matching FrameName, as the image2
// demuxer expects it.
func FramePattern(format string) string {
	return FramePrefix + "%06d." + normalizeFormat(format)
}

func normalizeFormat(format string) string {
	switch f := strings.ToLower(strings.TrimPrefix(format, ".")); f {
	case "":
		return DefaultFrameFormat
	case "jpeg":
		return "jpg"
	default:
		return f
	}
}

// ExtractFrameAt writes the frame visible at timestamp seconds of input to
// dest. A nil target keeps the native size; otherwise the frame is
// letterboxed to exactly target.
func (e *Executor) ExtractFrameAt(ctx context.Context, input string, timestamp float64, dest string, target *Dimensions) error {
	return e.extractFrame(ctx, input, timestamp, dest, target, DefaultPadColor)
}

func (e *Executor) extractFrame(ctx context.Context, input string, timestamp float64, dest string, target *Dimensions, padColor string) error {
	switch {
	case input == "":
		return apperrors.FrameExtraction(input, timestamp, fmt.Errorf("input path is required"))
	case dest == "":
		return apperrors.FrameExtraction(input, timestamp, fmt.Errorf("destination path is required"))
	case math.IsNaN(timestamp) || timestamp < 0:
		return apperrors.FrameExtraction(input, timestamp, fmt.Errorf("timestamp must be non-negative"))
	}

	opts := RunOptions{
		Args: frameArgs(input, timestamp, dest, target, padColor),
		LogHandler: func(line string) {
			e.logger.Trace().Str("ffmpeg", line).Msg("frame extraction")
		},
	}

	if err := e.Run(ctx, opts); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return apperrors.FrameExtraction(input, timestamp, err)
	}

	// Seeking past the last decodable frame exits 0 without writing anything
	if err := util.NonEmptyFile(dest); err != nil {
		return apperrors.FrameExtraction(input, timestamp, fmt.Errorf("no frame written: %w", err))
	}
	return nil
}

// ExtractFramesBatch writes one frame per timestamp into DestDir, named
// FrameName(Offset+i). Frames are extracted concurrently; each is retried
// before the whole batch fails. It returns the number of frames written.
func (e *Executor) ExtractFramesBatch(ctx context.Context, opts BatchOptions) (int, error) {
	if opts.Input == "" {
		return 0, apperrors.Validation("batch input path is required")
	}
	if opts.DestDir == "" {
		return 0, apperrors.Validation("batch destination directory is required")
	}
	if opts.Offset < 0 {
		return 0, apperrors.Validationf("batch offset %d is negative", opts.Offset)
	}
	total := len(opts.Timestamps)
	if total == 0 {
		return 0, nil
	}
	if err := util.EnsureDir(opts.DestDir); err != nil {
		return 0, apperrors.Wrap(err, apperrors.CodeInternal, "extract", "cannot create frame directory")
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = 1
	}
	retries := opts.Retries
	if retries < 0 {
		retries = 0
	}

	e.logger.Info().
		Str("input", opts.Input).
		Int("frames", total).
		Int("offset", opts.Offset).
		Int("workers", workers).
		Msg("extracting frames")

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	var mu sync.Mutex
	done := 0

	for i, ts := range opts.Timestamps {
		if gctx.Err() != nil {
			break
		}
		dest := filepath.Join(opts.DestDir, FrameName(opts.Offset+i, opts.Format))
		ts := ts // per-iteration copy; go directive lowered to 1.21 for the local toolchain
		g.Go(func() error {
			if err := e.extractWithRetry(gctx, opts.Input, ts, dest, opts.Target, opts.PadColor, retries); err != nil {
				return err
			}
			mu.Lock()
			done++
			if opts.OnProgress != nil {
				opts.OnProgress(done, total)
			}
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return done, err
	}
	if err := ctx.Err(); err != nil {
		return done, err
	}

	e.logger.Info().Str("input", opts.Input).Int("frames", done).Msg("frames extracted")
	return done, nil
}

func (e *Executor) extractWithRetry(ctx context.Context, input string, ts float64, dest string, target *Dimensions, padColor string, retries int) error {
	var err error
	for attempt := 0; attempt <= retries; attempt++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err = e.extractFrame(ctx, input, ts, dest, target, padColor); err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		_ = os.Remove(dest)
		e.logger.Warn().
			Err(err).
			Str("input", input).
			Float64("timestamp", ts).
			Int("attempt", attempt+1).
			Msg("frame extraction failed")
	}
	var ae *apperrors.Error
	if apperrors.As(err, &ae) {
		return ae.WithField("attempts", retries+1)
	}
	return err
}
