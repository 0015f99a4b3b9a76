package main

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/DV0x/fashion-shoot-agent-sub001/internal/pipeline"
	"github.com/DV0x/fashion-shoot-agent-sub001/pkg/util"
)

// newProgressLogger logs extraction progress at every 10% step.
func newProgressLogger(kind string) pipeline.ProgressFunc {
	var mu sync.Mutex
	lastStep := -1

	return func(ev pipeline.ProgressEvent) {
		if ev.State != pipeline.StateExtracting || ev.Total == 0 {
			return
		}
		mu.Lock()
		defer mu.Unlock()

		step := ev.Done * 10 / ev.Total
		if step == lastStep {
			return
		}
		lastStep = step
		log.Info().
			Str("kind", kind).
			Int("clip", ev.Clip+1).
			Int("clips", ev.Clips).
			Int("done", ev.Done).
			Int("total", ev.Total).
			Msgf("extracting %d%%", step*10)
	}
}

func printResult(w io.Writer, res *pipeline.Result) {
	fmt.Fprintf(w, "wrote %s\n", res.Output)
	fmt.Fprintf(w, "  frames:     %d @ %g fps (%s)\n", res.Frames, res.FPS, util.FormatDuration(util.Seconds(res.Duration)))
	fmt.Fprintf(w, "  resolution: %s\n", res.Resolution)
	fmt.Fprintf(w, "  curve:      %s\n", res.Easing)
	fmt.Fprintf(w, "  size:       %s\n", res.SizeHuman)
	if len(res.Clips) > 1 {
		for _, cj := range res.Clips {
			fmt.Fprintf(w, "  clip %d:     %s %.2fs -> frames %d-%d (%.2fx)\n",
				cj.Index+1, cj.Path, cj.Metadata.Duration, cj.Range.Start, cj.Range.Last(), cj.Series.CompressionRatio)
		}
	}
	if res.CutSheet != "" {
		fmt.Fprintf(w, "  cut sheet:  %s\n", res.CutSheet)
	}
	if res.TempDir != "" {
		fmt.Fprintf(w, "  scratch:    %s\n", res.TempDir)
	}
	fmt.Fprintf(w, "  elapsed:    %s\n", res.Elapsed.Round(time.Millisecond))
}
