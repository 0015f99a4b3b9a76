package timing

// SpeedSample is the effective playback speed around one output frame.
// A speed of 1 is real time, 0 is a freeze, negative plays backwards.
type SpeedSample struct {
	Frame      int
	OutputTime float64
	SourceTime float64
	Speed      float64
}

// LocalSpeed reports Δsource/Δoutput at up to samples evenly spaced frames.
// It exists for inspecting curves; extraction never uses it.
func LocalSpeed(s *Series, samples int) []SpeedSample {
	n := s.Len()
	if n < 2 || samples < 1 {
		return nil
	}
	if samples > n-1 {
		samples = n - 1
	}

	dt := 1 / s.OutputFPS
	out := make([]SpeedSample, 0, samples)
	for k := 0; k < samples; k++ {
		i := 0
		if samples > 1 {
			i = k * (n - 2) / (samples - 1)
		}
		out = append(out, SpeedSample{
			Frame:      i,
			OutputTime: float64(i) * dt,
			SourceTime: s.Timestamps[i],
			Speed:      (s.Timestamps[i+1] - s.Timestamps[i]) / dt,
		})
	}
	return out
}

// PeakSpeed returns the fastest speed over every adjacent frame pair.
func PeakSpeed(s *Series) float64 {
	if s.Len() < 2 {
		return 0
	}
	dt := 1 / s.OutputFPS
	peak := 0.0
	for i := 1; i < s.Len(); i++ {
		if v := (s.Timestamps[i] - s.Timestamps[i-1]) / dt; v > peak {
			peak = v
		}
	}
	return peak
}
