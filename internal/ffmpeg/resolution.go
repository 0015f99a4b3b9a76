package ffmpeg

import (
	apperrors "github.com/DV0x/fashion-shoot-agent-sub001/internal/errors"
)

// ComputeSharedResolution returns the per-axis maximum over every clip. Each
// clip fits inside the result without downscaling, so letterboxing only ever
// adds bars. Aspect ratios are not unified.
func ComputeSharedResolution(metas []VideoMetadata) (Dimensions, error) {
	if len(metas) == 0 {
		return Dimensions{}, apperrors.Validation("no clips to size")
	}

	var shared Dimensions
	for _, m := range metas {
		if m.Width <= 0 || m.Height <= 0 {
			return Dimensions{}, apperrors.Validationf("clip %s has invalid size %dx%d", m.Path, m.Width, m.Height).
				WithField("path", m.Path)
		}
		shared.Width = max(shared.Width, m.Width)
		shared.Height = max(shared.Height, m.Height)
	}
	return shared, nil
}
