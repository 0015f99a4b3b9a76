package ffmpeg

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	apperrors "github.com/DV0x/fashion-shoot-agent-sub001/internal/errors"
	"github.com/DV0x/fashion-shoot-agent-sub001/pkg/util"
)

// EncodeFramesToVideo encodes a numbered image sequence into an H.264 MP4
// at a constant frame rate. The result is written beside Output and renamed
// into place, so Output is either complete or untouched.
func (e *Executor) EncodeFramesToVideo(ctx context.Context, opts EncodeOptions) error {
	if err := validateEncodeOptions(opts); err != nil {
		return apperrors.Encode(opts.Output, err)
	}

	first := fmt.Sprintf(opts.FramePattern, opts.StartNumber)
	if err := util.NonEmptyFile(first); err != nil {
		return apperrors.Encode(opts.Output, fmt.Errorf("empty frame sequence: %w", err))
	}

	dir := filepath.Dir(opts.Output)
	if err := util.EnsureDir(dir); err != nil {
		return apperrors.Encode(opts.Output, err)
	}

	tmp, err := util.TempFile(dir, "."+strings.TrimSuffix(filepath.Base(opts.Output), filepath.Ext(opts.Output))+".partial-", filepath.Ext(opts.Output))
	if err != nil {
		return apperrors.Encode(opts.Output, err)
	}
	tmpPath := tmp.Name()
	_ = tmp.Close()

	committed := false
	defer func() {
		if !committed {
			util.CleanupFiles(tmpPath)
		}
	}()

	e.logger.Info().
		Str("pattern", opts.FramePattern).
		Int("frames", opts.FrameCount).
		Float64("fps", opts.FPS).
		Str("bitrate", opts.Bitrate).
		Str("output", opts.Output).
		Msg("encoding frames")

	progress := opts.ProgressFunc
	runOpts := RunOptions{
		Args: encodeArgs(opts, tmpPath),
		LogHandler: func(line string) {
			e.logger.Debug().Str("ffmpeg", line).Msg("encode output")
		},
	}
	if progress != nil {
		runOpts.ProgressHandler = func(p *Progress) {
			p.Percentage = 100 * float64(p.Frame) / float64(opts.FrameCount)
			if p.Percentage > 100 {
				p.Percentage = 100
			}
			progress(p)
		}
	}

	if err := e.Run(ctx, runOpts); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return apperrors.Encode(opts.Output, err)
	}

	if err := util.NonEmptyFile(tmpPath); err != nil {
		return apperrors.Encode(opts.Output, fmt.Errorf("encoder produced no output: %w", err))
	}
	if err := os.Rename(tmpPath, opts.Output); err != nil {
		return apperrors.Encode(opts.Output, err)
	}
	committed = true

	e.logger.Info().Str("output", opts.Output).Msg("encode completed")
	return nil
}

// validateEncodeOptions validates the encode options
func validateEncodeOptions(opts EncodeOptions) error {
	if opts.FramePattern == "" {
		return fmt.Errorf("frame pattern is required")
	}
	if !strings.Contains(opts.FramePattern, "%") {
		return fmt.Errorf("frame pattern %q has no sequence placeholder", opts.FramePattern)
	}
	if opts.Output == "" {
		return fmt.Errorf("output path is required")
	}
	if opts.FrameCount <= 0 {
		return fmt.Errorf("empty frame sequence")
	}
	if opts.StartNumber < 0 {
		return fmt.Errorf("start number cannot be negative")
	}
	if !(opts.FPS > 0) {
		return fmt.Errorf("fps must be positive")
	}
	if opts.Bitrate == "" {
		return fmt.Errorf("bitrate is required")
	}
	return nil
}
