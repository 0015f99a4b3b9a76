package easing

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	apperrors "github.com/DV0x/fashion-shoot-agent-sub001/internal/errors"
)

// Solver limits. Newton converges in a handful of steps for well-behaved
// handles; the bisection budget alone narrows the bracket to 2^-24.
const (
	newtonIterations    = 8
	bisectionIterations = 24
	solveTolerance      = 1e-7
	minSlope            = 1e-6
)

// BezierSpec holds the two handles of a cubic Bezier running from (0,0) to
// (1,1). X coordinates must lie in [0,1]; Y coordinates are unconstrained.
type BezierSpec struct {
	P1X float64 `yaml:"p1x"`
	P1Y float64 `yaml:"p1y"`
	P2X float64 `yaml:"p2x"`
	P2Y float64 `yaml:"p2y"`
}

// Validate checks that the handles describe a function of x.
func (s BezierSpec) Validate() error {
	names := [4]string{"p1x", "p1y", "p2x", "p2y"}
	for i, v := range [4]float64{s.P1X, s.P1Y, s.P2X, s.P2Y} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return apperrors.ValidationField(names[i], fmt.Sprintf("bezier %s must be finite", names[i]))
		}
	}
	if s.P1X < 0 || s.P1X > 1 {
		return apperrors.ValidationField("p1x", fmt.Sprintf("bezier p1x must be in [0,1], got %g", s.P1X))
	}
	if s.P2X < 0 || s.P2X > 1 {
		return apperrors.ValidationField("p2x", fmt.Sprintf("bezier p2x must be in [0,1], got %g", s.P2X))
	}
	return nil
}

// String renders the spec in the same form ParseBezier accepts.
func (s BezierSpec) String() string {
	return fmt.Sprintf("%g,%g,%g,%g", s.P1X, s.P1Y, s.P2X, s.P2Y)
}

// Func builds the easing function for the spec.
func (s BezierSpec) Func() (Func, error) {
	return Bezier(s.P1X, s.P1Y, s.P2X, s.P2Y)
}

// ParseBezier parses "p1x,p1y,p2x,p2y".
func ParseBezier(raw string) (BezierSpec, error) {
	parts := strings.Split(raw, ",")
	if len(parts) != 4 {
		return BezierSpec{}, apperrors.ValidationField("bezier",
			fmt.Sprintf("bezier needs 4 comma-separated numbers, got %q", raw))
	}

	var vals [4]float64
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return BezierSpec{}, apperrors.ValidationField("bezier",
				fmt.Sprintf("invalid bezier coordinate %q", p))
		}
		vals[i] = v
	}

	spec := BezierSpec{P1X: vals[0], P1Y: vals[1], P2X: vals[2], P2Y: vals[3]}
	if err := spec.Validate(); err != nil {
		return BezierSpec{}, err
	}
	return spec, nil
}

// Bezier returns the easing described by a cubic Bezier with handles
// (p1x,p1y) and (p2x,p2y). Evaluating it inverts x(t) with SolveCurveX and
// then samples y at the recovered curve parameter.
func Bezier(p1x, p1y, p2x, p2y float64) (Func, error) {
	spec := BezierSpec{P1X: p1x, P1Y: p1y, P2X: p2x, P2Y: p2y}
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	if p1x == p1y && p2x == p2y {
		return Linear, nil
	}

	return func(x float64) float64 {
		if x <= 0 {
			return 0
		}
		if x >= 1 {
			return 1
		}
		return SampleCurve(SolveCurveX(x, p1x, p2x), p1y, p2y)
	}, nil
}

// SampleCurve evaluates one axis of the Bezier at curve parameter t, for
// handle coordinates p1 and p2 on that axis.
func SampleCurve(t, p1, p2 float64) float64 {
	a, b, c := coefficients(p1, p2)
	return ((a*t+b)*t + c) * t
}

// SampleCurveDerivative evaluates d/dt of one axis at t.
func SampleCurveDerivative(t, p1, p2 float64) float64 {
	a, b, c := coefficients(p1, p2)
	return (3*a*t+2*b)*t + c
}

// SolveCurveX finds t in [0,1] with x(t) = x for handle x coordinates p1x
// and p2x. With both handles in [0,1] x(t) is non-decreasing, so a bracket
// around the root always exists: Newton steps are taken while they stay
// inside it and bisection finishes the job otherwise.
func SolveCurveX(x, p1x, p2x float64) float64 {
	if x <= 0 {
		return 0
	}
	if x >= 1 {
		return 1
	}

	lo, hi := 0.0, 1.0
	t := x

	for i := 0; i < newtonIterations; i++ {
		diff := SampleCurve(t, p1x, p2x) - x
		if math.Abs(diff) < solveTolerance {
			return t
		}
		if diff > 0 {
			hi = t
		} else {
			lo = t
		}

		slope := SampleCurveDerivative(t, p1x, p2x)
		if math.Abs(slope) < minSlope {
			break
		}
		next := t - diff/slope
		if next <= lo || next >= hi {
			break
		}
		t = next
	}

	for i := 0; i < bisectionIterations; i++ {
		t = (lo + hi) / 2
		diff := SampleCurve(t, p1x, p2x) - x
		if math.Abs(diff) < solveTolerance {
			return t
		}
		if diff > 0 {
			hi = t
		} else {
			lo = t
		}
	}

	return (lo + hi) / 2
}

// coefficients expands the Bernstein form with fixed endpoints 0 and 1 into
// a*t^3 + b*t^2 + c*t.
func coefficients(p1, p2 float64) (a, b, c float64) {
	c = 3 * p1
	b = 3*(p2-p1) - c
	a = 1 - c - b
	return a, b, c
}
