package pipeline

import (
	apperrors "github.com/DV0x/fashion-shoot-agent-sub001/internal/errors"
)

// FrameRange is a run of output sequence numbers owned by one clip.
type FrameRange struct {
	Start int
	Count int
}

// End returns one past the last sequence number.
func (r FrameRange) End() int { return r.Start + r.Count }

// Last returns the last sequence number of the range.
func (r FrameRange) Last() int { return r.Start + r.Count - 1 }

// FrameArena hands out contiguous, non-overlapping frame ranges from a
// cursor that only moves forward. Ranges handed out in order tile
// [0, Total()) without gaps.
type FrameArena struct {
	cursor int
	ranges []FrameRange
}

// NewFrameArena returns an arena starting at sequence number 0.
func NewFrameArena() *FrameArena {
	return &FrameArena{}
}

// Reserve claims the next count sequence numbers.
func (a *FrameArena) Reserve(count int) (FrameRange, error) {
	if count <= 0 {
		return FrameRange{}, apperrors.Validationf("cannot reserve %d frames", count)
	}
	r := FrameRange{Start: a.cursor, Count: count}
	a.cursor += count
	a.ranges = append(a.ranges, r)
	return r, nil
}

// Total is the number of frames reserved so far.
func (a *FrameArena) Total() int { return a.cursor }

// Ranges returns a copy of every reservation in order.
func (a *FrameArena) Ranges() []FrameRange {
	return append([]FrameRange(nil), a.ranges...)
}
