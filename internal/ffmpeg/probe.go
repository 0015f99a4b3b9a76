package ffmpeg

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"

	apperrors "github.com/DV0x/fashion-shoot-agent-sub001/internal/errors"
	"github.com/DV0x/fashion-shoot-agent-sub001/pkg/util"
)

// Probe extracts metadata from a video file. Any failure, including a file
// without a video stream or without a usable duration, is a MEDIA_PROBE_ERROR.
func (e *Executor) Probe(ctx context.Context, filePath string) (VideoMetadata, error) {
	if filePath == "" {
		return VideoMetadata{}, apperrors.MediaProbe(filePath, fmt.Errorf("file path is required"))
	}
	if err := util.NonEmptyFile(filePath); err != nil {
		return VideoMetadata{}, apperrors.MediaProbe(filePath, err)
	}

	args := []string{
		"-v", "error",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		filePath,
	}

	cmd := exec.CommandContext(ctx, e.ffprobePath, args...)
	output, err := cmd.Output()
	if err != nil {
		if ctx.Err() != nil {
			return VideoMetadata{}, ctx.Err()
		}
		if msg := exitStderr(err); msg != "" {
			err = fmt.Errorf("ffprobe failed: %w: %s", err, msg)
		} else {
			err = fmt.Errorf("ffprobe failed: %w", err)
		}
		return VideoMetadata{}, apperrors.MediaProbe(filePath, err)
	}

	meta, err := parseProbe(filePath, output)
	if err != nil {
		return VideoMetadata{}, apperrors.MediaProbe(filePath, err)
	}

	e.logger.Debug().
		Str("path", filePath).
		Float64("duration", meta.Duration).
		Str("size", meta.Dimensions().String()).
		Float64("fps", meta.FrameRate).
		Msg("probed media")

	return meta, nil
}

// parseProbe reads the first video stream of an ffprobe JSON document.
func parseProbe(filePath string, output []byte) (VideoMetadata, error) {
	var probe probeResult
	if err := json.Unmarshal(output, &probe); err != nil {
		return VideoMetadata{}, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}

	meta := VideoMetadata{Path: filePath}
	found := false
	for _, stream := range probe.Streams {
		if stream.CodecType != "video" {
			continue
		}
		found = true
		meta.Width = stream.Width
		meta.Height = stream.Height
		meta.Codec = stream.CodecName

		// avg_frame_rate is "0/0" for some streams; r_frame_rate is the fallback
		meta.FrameRate = util.ParseFrameRate(stream.AvgFrameRate)
		if meta.FrameRate <= 0 {
			meta.FrameRate = util.ParseFrameRate(stream.RFrameRate)
		}

		if dur, err := strconv.ParseFloat(stream.Duration, 64); err == nil {
			meta.Duration = dur
		}
		break
	}
	if !found {
		return VideoMetadata{}, fmt.Errorf("no video stream")
	}

	// Container duration wins when present
	if dur, err := strconv.ParseFloat(probe.Format.Duration, 64); err == nil && dur > 0 {
		meta.Duration = dur
	}

	switch {
	case meta.Duration <= 0:
		return VideoMetadata{}, fmt.Errorf("unknown or zero duration")
	case meta.Width <= 0 || meta.Height <= 0:
		return VideoMetadata{}, fmt.Errorf("invalid frame size %dx%d", meta.Width, meta.Height)
	case meta.FrameRate <= 0:
		return VideoMetadata{}, fmt.Errorf("unknown frame rate")
	}

	return meta, nil
}

// probeResult matches ffprobe JSON output structure
type probeResult struct {
	Format struct {
		Duration string `json:"duration"`
		BitRate  string `json:"bit_rate"`
	} `json:"format"`
	Streams []struct {
		CodecType    string `json:"codec_type"`
		CodecName    string `json:"codec_name"`
		Width        int    `json:"width"`
		Height       int    `json:"height"`
		RFrameRate   string `json:"r_frame_rate"`
		AvgFrameRate string `json:"avg_frame_rate"`
		Duration     string `json:"duration"`
	} `json:"streams"`
}
