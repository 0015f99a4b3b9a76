// Package easing provides deterministic time-warping curves. Each curve maps
// normalized output progress in [0,1] to normalized source progress. Curves
// are expected to pass through (0,0) and (1,1) but may overshoot in between.
package easing

import "math"

// Func maps normalized progress to normalized progress.
type Func func(progress float64) float64

// Linear plays the source at constant speed.
func Linear(x float64) float64 { return x }

// Quadratic

func InQuad(x float64) float64  { return x * x }
func OutQuad(x float64) float64 { return 1 - (1-x)*(1-x) }
func InOutQuad(x float64) float64 {
	if x < 0.5 {
		return 2 * x * x
	}
	return 1 - math.Pow(-2*x+2, 2)/2
}

// Cubic

func InCubic(x float64) float64  { return x * x * x }
func OutCubic(x float64) float64 { return 1 - math.Pow(1-x, 3) }
func InOutCubic(x float64) float64 {
	if x < 0.5 {
		return 4 * x * x * x
	}
	return 1 - math.Pow(-2*x+2, 3)/2
}

// Quartic

func InQuart(x float64) float64  { return x * x * x * x }
func OutQuart(x float64) float64 { return 1 - math.Pow(1-x, 4) }
func InOutQuart(x float64) float64 {
	if x < 0.5 {
		return 8 * x * x * x * x
	}
	return 1 - math.Pow(-2*x+2, 4)/2
}

// Quintic

func InQuint(x float64) float64  { return x * x * x * x * x }
func OutQuint(x float64) float64 { return 1 - math.Pow(1-x, 5) }
func InOutQuint(x float64) float64 {
	if x < 0.5 {
		return 16 * x * x * x * x * x
	}
	return 1 - math.Pow(-2*x+2, 5)/2
}

// Sinusoidal

func InSine(x float64) float64    { return 1 - math.Cos(x*math.Pi/2) }
func OutSine(x float64) float64   { return math.Sin(x * math.Pi / 2) }
func InOutSine(x float64) float64 { return -(math.Cos(math.Pi*x) - 1) / 2 }

// Exponential. The endpoints are pinned because 2^-10 is not exactly zero.

func InExpo(x float64) float64 {
	if x <= 0 {
		return 0
	}
	return math.Pow(2, 10*x-10)
}

func OutExpo(x float64) float64 {
	if x >= 1 {
		return 1
	}
	return 1 - math.Pow(2, -10*x)
}

func InOutExpo(x float64) float64 {
	switch {
	case x <= 0:
		return 0
	case x >= 1:
		return 1
	case x < 0.5:
		return math.Pow(2, 20*x-10) / 2
	default:
		return (2 - math.Pow(2, -20*x+10)) / 2
	}
}

// Circular

func InCirc(x float64) float64  { return 1 - math.Sqrt(1-math.Pow(x, 2)) }
func OutCirc(x float64) float64 { return math.Sqrt(1 - math.Pow(x-1, 2)) }
func InOutCirc(x float64) float64 {
	if x < 0.5 {
		return (1 - math.Sqrt(1-math.Pow(2*x, 2))) / 2
	}
	return (math.Sqrt(1-math.Pow(-2*x+2, 2)) + 1) / 2
}

// Elastic curves overshoot both ways around the target.

const (
	elasticC4 = (2 * math.Pi) / 3
	elasticC5 = (2 * math.Pi) / 4.5
)

func InElastic(x float64) float64 {
	switch {
	case x <= 0:
		return 0
	case x >= 1:
		return 1
	}
	return -math.Pow(2, 10*x-10) * math.Sin((x*10-10.75)*elasticC4)
}

func OutElastic(x float64) float64 {
	switch {
	case x <= 0:
		return 0
	case x >= 1:
		return 1
	}
	return math.Pow(2, -10*x)*math.Sin((x*10-0.75)*elasticC4) + 1
}

func InOutElastic(x float64) float64 {
	switch {
	case x <= 0:
		return 0
	case x >= 1:
		return 1
	case x < 0.5:
		return -(math.Pow(2, 20*x-10) * math.Sin((20*x-11.125)*elasticC5)) / 2
	default:
		return (math.Pow(2, -20*x+10)*math.Sin((20*x-11.125)*elasticC5))/2 + 1
	}
}

// Back curves pull behind the start (in) or past the end (out).

const (
	backC1 = 1.70158
	backC2 = backC1 * 1.525
	backC3 = backC1 + 1
)

func InBack(x float64) float64 { return backC3*x*x*x - backC1*x*x }

func OutBack(x float64) float64 {
	return 1 + backC3*math.Pow(x-1, 3) + backC1*math.Pow(x-1, 2)
}

func InOutBack(x float64) float64 {
	if x < 0.5 {
		return (math.Pow(2*x, 2) * ((backC2+1)*2*x - backC2)) / 2
	}
	return (math.Pow(2*x-2, 2)*((backC2+1)*(x*2-2)+backC2) + 2) / 2
}

// Bounce

const (
	bounceN1 = 7.5625
	bounceD1 = 2.75
)

func OutBounce(x float64) float64 {
	switch {
	case x < 1/bounceD1:
		return bounceN1 * x * x
	case x < 2/bounceD1:
		x -= 1.5 / bounceD1
		return bounceN1*x*x + 0.75
	case x < 2.5/bounceD1:
		x -= 2.25 / bounceD1
		return bounceN1*x*x + 0.9375
	default:
		x -= 2.625 / bounceD1
		return bounceN1*x*x + 0.984375
	}
}

func InBounce(x float64) float64 { return 1 - OutBounce(1-x) }

func InOutBounce(x float64) float64 {
	if x < 0.5 {
		return (1 - OutBounce(1-2*x)) / 2
	}
	return (1 + OutBounce(2*x-1)) / 2
}
