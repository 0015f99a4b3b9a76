package ffmpeg

import (
	"fmt"
	"strings"
)

// FilterBuilder helps construct complex ffmpeg filter chains
type FilterBuilder struct {
	filters []string
}

// NewFilterBuilder creates a new filter builder
func NewFilterBuilder() *FilterBuilder {
	return &FilterBuilder{
		filters: make([]string, 0),
	}
}

// ScaleToFit scales down or up until the frame fits inside width x height
// without changing its aspect ratio.
func (fb *FilterBuilder) ScaleToFit(width, height int) *FilterBuilder {
	if width <= 0 || height <= 0 {
		return fb
	}
	fb.filters = append(fb.filters, fmt.Sprintf("scale=%d:%d:force_original_aspect_ratio=decrease", width, height))
	return fb
}

// Pad centers the frame on a width x height canvas.
func (fb *FilterBuilder) Pad(width, height int, color string) *FilterBuilder {
	if width <= 0 || height <= 0 {
		return fb
	}
	if color == "" {
		color = DefaultPadColor
	}
	fb.filters = append(fb.filters, fmt.Sprintf("pad=%d:%d:(ow-iw)/2:(oh-ih)/2:color=%s", width, height, color))
	return fb
}

// Letterbox fits the frame into exactly width x height with bars, never
// cropping or stretching.
func (fb *FilterBuilder) Letterbox(width, height int, color string) *FilterBuilder {
	if width <= 0 || height <= 0 {
		return fb
	}
	return fb.ScaleToFit(width, height).Pad(width, height, color).SetSAR(1)
}

// EvenDimensions pads odd widths or heights by one pixel, which 4:2:0
// encoders require.
func (fb *FilterBuilder) EvenDimensions() *FilterBuilder {
	fb.filters = append(fb.filters, "pad=ceil(iw/2)*2:ceil(ih/2)*2")
	return fb
}

// SetSAR forces the sample aspect ratio.
func (fb *FilterBuilder) SetSAR(sar int) *FilterBuilder {
	if sar <= 0 {
		return fb
	}
	fb.filters = append(fb.filters, fmt.Sprintf("setsar=%d", sar))
	return fb
}

// Format converts to pixFmt inside the filter graph, after any padding.
func (fb *FilterBuilder) Format(pixFmt string) *FilterBuilder {
	if pixFmt == "" {
		return fb
	}
	fb.filters = append(fb.filters, "format="+pixFmt)
	return fb
}

// Build returns the complete filter string joined with commas
func (fb *FilterBuilder) Build() string {
	if len(fb.filters) == 0 {
		return ""
	}
	return strings.Join(fb.filters, ",")
}
