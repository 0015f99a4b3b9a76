package pipeline

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"sync"

	apperrors "github.com/DV0x/fashion-shoot-agent-sub001/internal/errors"
	"github.com/DV0x/fashion-shoot-agent-sub001/internal/ffmpeg"
)

// fakeMedia stands in for ffmpeg: it writes tiny PNG frames and a dummy
// output, and records every call.
type fakeMedia struct {
	mu sync.Mutex

	metas     map[string]ffmpeg.VideoMetadata
	probeErrs map[string]error
	failClip  string // extraction of this input fails
	encodeErr error
	onExtract func()

	probes  []string
	batches []ffmpeg.BatchOptions
	encodes []ffmpeg.EncodeOptions
}

func newFakeMedia() *fakeMedia {
	return &fakeMedia{
		metas:     make(map[string]ffmpeg.VideoMetadata),
		probeErrs: make(map[string]error),
	}
}

func (f *fakeMedia) Probe(ctx context.Context, path string) (ffmpeg.VideoMetadata, error) {
	if err := ctx.Err(); err != nil {
		return ffmpeg.VideoMetadata{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.probes = append(f.probes, path)
	if err, ok := f.probeErrs[path]; ok {
		return ffmpeg.VideoMetadata{}, apperrors.MediaProbe(path, err)
	}
	meta, ok := f.metas[path]
	if !ok {
		return ffmpeg.VideoMetadata{}, apperrors.MediaProbe(path, fmt.Errorf("no fixture"))
	}
	return meta, nil
}

func (f *fakeMedia) ExtractFramesBatch(ctx context.Context, opts ffmpeg.BatchOptions) (int, error) {
	f.mu.Lock()
	f.batches = append(f.batches, opts)
	hook := f.onExtract
	fail := f.failClip == opts.Input
	f.mu.Unlock()

	if hook != nil {
		hook()
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	for i, ts := range opts.Timestamps {
		if fail && i == len(opts.Timestamps)/2 {
			return i, apperrors.FrameExtraction(opts.Input, ts, fmt.Errorf("decoder exploded"))
		}
		dest := filepath.Join(opts.DestDir, ffmpeg.FrameName(opts.Offset+i, opts.Format))
		if err := writeTinyPNG(dest, opts.Offset+i); err != nil {
			return i, err
		}
		if opts.OnProgress != nil {
			opts.OnProgress(i+1, len(opts.Timestamps))
		}
	}
	return len(opts.Timestamps), nil
}

func (f *fakeMedia) EncodeFramesToVideo(ctx context.Context, opts ffmpeg.EncodeOptions) error {
	f.mu.Lock()
	f.encodes = append(f.encodes, opts)
	encodeErr := f.encodeErr
	f.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	if encodeErr != nil {
		return apperrors.Encode(opts.Output, encodeErr)
	}

	// The sequence must be contiguous from StartNumber
	for i := 0; i < opts.FrameCount; i++ {
		frame := fmt.Sprintf(opts.FramePattern, opts.StartNumber+i)
		if _, err := os.Stat(frame); err != nil {
			return apperrors.Encode(opts.Output, fmt.Errorf("gap in sequence: %w", err))
		}
	}
	if _, err := os.Stat(fmt.Sprintf(opts.FramePattern, opts.StartNumber+opts.FrameCount)); err == nil {
		return apperrors.Encode(opts.Output, fmt.Errorf("unexpected frame past the end"))
	}

	if err := os.MkdirAll(filepath.Dir(opts.Output), 0755); err != nil {
		return err
	}
	return os.WriteFile(opts.Output, []byte(fmt.Sprintf("frames=%d fps=%g", opts.FrameCount, opts.FPS)), 0644)
}

func writeTinyPNG(path string, seq int) error {
	img := image.NewRGBA(image.Rect(0, 0, 32, 18))
	shade := uint8(seq % 256)
	for y := 0; y < 18; y++ {
		for x := 0; x < 32; x++ {
			img.Set(x, y, color.RGBA{R: shade, G: 64, B: 128, A: 255})
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, img)
}
