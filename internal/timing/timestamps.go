// Package timing turns an easing curve into the list of source instants that
// make up a retimed clip. It is pure arithmetic: nothing here touches media.
package timing

import (
	"math"

	"github.com/DV0x/fashion-shoot-agent-sub001/internal/easing"
	apperrors "github.com/DV0x/fashion-shoot-agent-sub001/internal/errors"
)

// FallbackSourceFPS sizes the end-of-clip margin when the source frame rate
// is unknown. 24 fps is the slowest common rate, so its frame is the widest.
const FallbackSourceFPS = 24.0

// frameCountSlack absorbs float noise such as 4.8*60 = 287.99999999999997.
const frameCountSlack = 1e-9

// Params are the inputs of Calculate.
type Params struct {
	InputDuration  float64 // seconds of source material
	OutputDuration float64 // seconds the retimed clip should last
	OutputFPS      float64 // output frame rate
	SourceFPS      float64 // source frame rate; <= 0 means unknown
}

// Series is the ordered list of source timestamps, one per output frame.
type Series struct {
	Timestamps       []float64
	InputDuration    float64
	OutputDuration   float64
	OutputFPS        float64
	CompressionRatio float64
	// Epsilon is the margin kept before the end of the source.
	Epsilon float64
	// Clamped counts entries the curve pushed outside the source range.
	Clamped int
}

// FrameCount returns floor(outputDuration * outputFPS).
func FrameCount(outputDuration, outputFPS float64) int {
	return int(math.Floor(outputDuration*outputFPS + frameCountSlack))
}

// Calculate samples fn once per output frame and scales the result to
// source seconds. Every timestamp is clamped to [0, InputDuration-Epsilon]
// here so that no caller ever seeks outside the source.
func Calculate(fn easing.Func, p Params) (*Series, error) {
	if fn == nil {
		return nil, apperrors.Validation("easing function is required")
	}
	if err := p.validate(); err != nil {
		return nil, err
	}

	total := FrameCount(p.OutputDuration, p.OutputFPS)
	if total < 1 {
		return nil, apperrors.Validationf("output of %.3fs at %g fps has no frames", p.OutputDuration, p.OutputFPS)
	}

	eps := epsilon(p)
	upper := p.InputDuration - eps

	s := &Series{
		Timestamps:       make([]float64, total),
		InputDuration:    p.InputDuration,
		OutputDuration:   p.OutputDuration,
		OutputFPS:        p.OutputFPS,
		CompressionRatio: p.InputDuration / p.OutputDuration,
		Epsilon:          eps,
	}

	for i := 0; i < total; i++ {
		progress := 0.0
		if total > 1 {
			progress = float64(i) / float64(total-1)
		}

		ts := fn(progress) * p.InputDuration
		switch {
		case math.IsNaN(ts) || ts < 0:
			ts = 0
			s.Clamped++
		case ts > upper:
			ts = upper
			s.Clamped++
		}
		s.Timestamps[i] = ts
	}

	return s, nil
}

func (p Params) validate() error {
	switch {
	case !(p.InputDuration > 0) || math.IsInf(p.InputDuration, 0):
		return apperrors.ValidationField("input_duration", "input duration must be positive")
	case !(p.OutputDuration > 0) || math.IsInf(p.OutputDuration, 0):
		return apperrors.ValidationField("output_duration", "output duration must be positive")
	case !(p.OutputFPS > 0) || math.IsInf(p.OutputFPS, 0):
		return apperrors.ValidationField("output_fps", "output fps must be positive")
	}
	return nil
}

// epsilon is one source frame, capped at half the input so tiny sources
// keep a non-empty range.
func epsilon(p Params) float64 {
	fps := p.SourceFPS
	if !(fps > 0) || math.IsInf(fps, 0) {
		fps = FallbackSourceFPS
	}
	return math.Min(1/fps, p.InputDuration/2)
}

// Len returns the number of output frames.
func (s *Series) Len() int { return len(s.Timestamps) }

// First returns the first timestamp, or 0 for an empty series.
func (s *Series) First() float64 {
	if len(s.Timestamps) == 0 {
		return 0
	}
	return s.Timestamps[0]
}

// Last returns the last timestamp, or 0 for an empty series.
func (s *Series) Last() float64 {
	if len(s.Timestamps) == 0 {
		return 0
	}
	return s.Timestamps[len(s.Timestamps)-1]
}

// Monotonic reports whether the series never steps backwards in source time.
func (s *Series) Monotonic() bool {
	for i := 1; i < len(s.Timestamps); i++ {
		if s.Timestamps[i] < s.Timestamps[i-1] {
			return false
		}
	}
	return true
}

// Span returns the source seconds covered between frame indexes from and to.
func (s *Series) Span(from, to int) float64 {
	if from < 0 {
		from = 0
	}
	if to >= len(s.Timestamps) {
		to = len(s.Timestamps) - 1
	}
	if to <= from {
		return 0
	}
	return s.Timestamps[to] - s.Timestamps[from]
}
