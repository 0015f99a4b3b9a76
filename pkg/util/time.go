package util

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// bitratePattern is the subset of ffmpeg's rate syntax accepted for -b:v.
// A trailing B would make ffmpeg multiply by 8, so byte units are refused.
var bitratePattern = regexp.MustCompile(`^[0-9]+(\.[0-9]+)?[kKMG]?$`)

// FormatDuration converts time.Duration to ffmpeg timestamp format
func FormatDuration(d time.Duration) string {
	seconds := d.Seconds()
	hours := int(seconds / 3600)
	minutes := int((seconds - float64(hours*3600)) / 60)
	secs := seconds - float64(hours*3600) - float64(minutes*60)
	return fmt.Sprintf("%02d:%02d:%06.3f", hours, minutes, secs)
}

// FormatSeconds renders a seek position with microsecond precision, the
// resolution ffmpeg parses for -ss.
func FormatSeconds(s float64) string {
	return strconv.FormatFloat(s, 'f', 6, 64)
}

// FormatRate renders a frame rate without trailing zeros (60, 29.97).
func FormatRate(fps float64) string {
	return strconv.FormatFloat(fps, 'f', -1, 64)
}

// Seconds converts float seconds to a time.Duration.
func Seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

// ParseFrameRate parses frame rate from ffprobe format (e.g., "30/1").
// A bare decimal such as "29.97" is accepted too.
func ParseFrameRate(s string) float64 {
	s = strings.TrimSpace(s)
	parts := strings.Split(s, "/")
	if len(parts) == 1 {
		v, err := strconv.ParseFloat(parts[0], 64)
		if err != nil || v < 0 {
			return 0
		}
		return v
	}
	if len(parts) != 2 {
		return 0
	}
	num, err1 := strconv.ParseFloat(parts[0], 64)
	den, err2 := strconv.ParseFloat(parts[1], 64)
	if err1 != nil || err2 != nil || den == 0 {
		return 0
	}
	return num / den
}

// ParseBitrate returns the bits per second of an ffmpeg rate such as 25M,
// 8000k or 2500000.
func ParseBitrate(s string) (uint64, error) {
	if !bitratePattern.MatchString(s) {
		return 0, fmt.Errorf("invalid bitrate %q: want a number with an optional k, M or G suffix", s)
	}
	n, err := humanize.ParseBytes(s)
	if err != nil {
		return 0, fmt.Errorf("invalid bitrate %q: %w", s, err)
	}
	if n == 0 {
		return 0, fmt.Errorf("bitrate %q must be positive", s)
	}
	return n, nil
}
