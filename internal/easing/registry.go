package easing

import (
	"fmt"
	"sort"
	"strings"

	apperrors "github.com/DV0x/fashion-shoot-agent-sub001/internal/errors"
)

// DefaultName is the curve used when neither a name nor handles are given.
const DefaultName = "easeInOutSine"

// Kind distinguishes closed-form curves from Bezier presets.
type Kind string

const (
	KindClosedForm Kind = "closed-form"
	KindPreset     Kind = "bezier-preset"
)

// Entry describes one named curve.
type Entry struct {
	Name        string
	Kind        Kind
	Description string
	// Spec is set for Bezier presets only.
	Spec *BezierSpec
	fn   Func
}

// Func returns the curve.
func (e Entry) Func() Func { return e.fn }

// Presets built on Bezier. dramaticSwoop holds both ends nearly frozen and
// spends almost all source time in the middle of the output.
var presets = []struct {
	name string
	spec BezierSpec
	desc string
}{
	{"dramaticSwoop", BezierSpec{0.85, 0, 0.15, 1}, "near-frozen ends, very fast middle"},
	{"cinematic", BezierSpec{0.77, 0, 0.175, 1}, "long hold at both ends, smooth ramp"},
	{"snappy", BezierSpec{0.7, 0, 0.3, 1}, "short holds, quick middle"},
	{"gentleRamp", BezierSpec{0.45, 0, 0.55, 1}, "mild slow-fast-slow"},
	{"anticipate", BezierSpec{0.68, -0.55, 0.265, 1.55}, "pulls back before and overshoots after"},
}

var closedForms = []struct {
	name string
	fn   Func
	desc string
}{
	{"linear", Linear, "constant speed"},
	{"easeInQuad", InQuad, "quadratic acceleration"},
	{"easeOutQuad", OutQuad, "quadratic deceleration"},
	{"easeInOutQuad", InOutQuad, "quadratic slow-fast-slow"},
	{"easeInCubic", InCubic, "cubic acceleration"},
	{"easeOutCubic", OutCubic, "cubic deceleration"},
	{"easeInOutCubic", InOutCubic, "cubic slow-fast-slow"},
	{"easeInQuart", InQuart, "quartic acceleration"},
	{"easeOutQuart", OutQuart, "quartic deceleration"},
	{"easeInOutQuart", InOutQuart, "quartic slow-fast-slow"},
	{"easeInQuint", InQuint, "quintic acceleration"},
	{"easeOutQuint", OutQuint, "quintic deceleration"},
	{"easeInOutQuint", InOutQuint, "quintic slow-fast-slow"},
	{"easeInSine", InSine, "sinusoidal acceleration"},
	{"easeOutSine", OutSine, "sinusoidal deceleration"},
	{"easeInOutSine", InOutSine, "sinusoidal slow-fast-slow"},
	{"easeInExpo", InExpo, "exponential acceleration"},
	{"easeOutExpo", OutExpo, "exponential deceleration"},
	{"easeInOutExpo", InOutExpo, "exponential slow-fast-slow"},
	{"easeInCirc", InCirc, "circular acceleration"},
	{"easeOutCirc", OutCirc, "circular deceleration"},
	{"easeInOutCirc", InOutCirc, "circular slow-fast-slow"},
	{"easeInElastic", InElastic, "elastic wind-up (overshoots)"},
	{"easeOutElastic", OutElastic, "elastic settle (overshoots)"},
	{"easeInOutElastic", InOutElastic, "elastic both ends (overshoots)"},
	{"easeInBack", InBack, "pulls back before starting (overshoots)"},
	{"easeOutBack", OutBack, "overshoots the end"},
	{"easeInOutBack", InOutBack, "pulls back and overshoots"},
	{"easeInBounce", InBounce, "bounces at the start"},
	{"easeOutBounce", OutBounce, "bounces at the end"},
	{"easeInOutBounce", InOutBounce, "bounces at both ends"},
}

// registry is built once and never written afterwards. byFold indexes the
// same entries by lower-cased name so lookups are case-insensitive.
var registry, byFold = buildRegistry()

func buildRegistry() (map[string]Entry, map[string]string) {
	entries := make(map[string]Entry, len(closedForms)+len(presets))
	fold := make(map[string]string, len(closedForms)+len(presets))

	for _, c := range closedForms {
		entries[c.name] = Entry{Name: c.name, Kind: KindClosedForm, Description: c.desc, fn: c.fn}
		fold[strings.ToLower(c.name)] = c.name
	}

	for _, p := range presets {
		fn, err := p.spec.Func()
		if err != nil {
			panic(fmt.Sprintf("easing preset %s: %v", p.name, err))
		}
		spec := p.spec
		entries[p.name] = Entry{Name: p.name, Kind: KindPreset, Description: p.desc, Spec: &spec, fn: fn}
		fold[strings.ToLower(p.name)] = p.name
	}

	return entries, fold
}

// Lookup returns the named curve.
func Lookup(name string) (Func, error) {
	e, err := Describe(name)
	if err != nil {
		return nil, err
	}
	return e.fn, nil
}

// Describe returns the registry entry for name.
func Describe(name string) (Entry, error) {
	if e, ok := registry[name]; ok {
		return e, nil
	}
	if canonical, ok := byFold[strings.ToLower(strings.TrimSpace(name))]; ok {
		return registry[canonical], nil
	}
	return Entry{}, apperrors.UnknownEasing(name)
}

// Names returns every registered name, sorted.
func Names() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Entries returns every registry entry sorted by name.
func Entries() []Entry {
	names := Names()
	out := make([]Entry, 0, len(names))
	for _, n := range names {
		e := registry[n]
		if e.Spec != nil {
			spec := *e.Spec
			e.Spec = &spec
		}
		out = append(out, e)
	}
	return out
}

// Resolve picks the curve for a request. Explicit handles take precedence
// over a name; an empty name falls back to DefaultName. The returned label
// identifies the curve in logs.
func Resolve(name string, spec *BezierSpec) (Func, string, error) {
	if spec != nil {
		fn, err := spec.Func()
		if err != nil {
			return nil, "", err
		}
		return fn, "bezier(" + spec.String() + ")", nil
	}

	if name == "" {
		name = DefaultName
	}
	e, err := Describe(name)
	if err != nil {
		return nil, "", err
	}
	return e.fn, e.Name, nil
}
