package main

import (
	"github.com/spf13/cobra"

	"github.com/DV0x/fashion-shoot-agent-sub001/internal/config"
	"github.com/DV0x/fashion-shoot-agent-sub001/internal/easing"
	apperrors "github.com/DV0x/fashion-shoot-agent-sub001/internal/errors"
)

// curveFlags are the options shared by every command that picks a curve.
type curveFlags struct {
	easing  string
	bezier  string
	fps     float64
	bitrate string
}

func (f *curveFlags) register(cmd *cobra.Command, withBitrate bool) {
	d := config.Default().Defaults
	cmd.Flags().StringVar(&f.easing, "easing", d.Easing, "named easing curve (see 'speedramp easings')")
	cmd.Flags().StringVar(&f.bezier, "bezier", "", "custom cubic Bezier handles p1x,p1y,p2x,p2y")
	cmd.Flags().Float64Var(&f.fps, "output-fps", d.OutputFPS, "output frame rate")
	if withBitrate {
		cmd.Flags().StringVar(&f.bitrate, "bitrate", d.Bitrate, "target video bitrate")
	}
	cmd.MarkFlagsMutuallyExclusive("easing", "bezier")
}

// resolve applies config defaults to every flag the user did not set and
// parses --bezier.
func (f *curveFlags) resolve(cmd *cobra.Command, cfg *config.Config) (name string, spec *easing.BezierSpec, fps float64, bitrate string, err error) {
	name, fps, bitrate = f.easing, f.fps, f.bitrate
	if !cmd.Flags().Changed("easing") {
		name = cfg.Defaults.Easing
	}
	if !cmd.Flags().Changed("output-fps") {
		fps = cfg.Defaults.OutputFPS
	} else if !(fps > 0) {
		return "", nil, 0, "", apperrors.ValidationField("output-fps", "--output-fps must be positive")
	}
	if !cmd.Flags().Changed("bitrate") {
		bitrate = cfg.Defaults.Bitrate
	}
	if f.bezier != "" {
		s, perr := easing.ParseBezier(f.bezier)
		if perr != nil {
			return "", nil, 0, "", perr
		}
		spec = &s
	}
	return name, spec, fps, bitrate, nil
}

// durationFlag returns the named float flag, or fallback when unset. A value
// given explicitly must be positive.
func durationFlag(cmd *cobra.Command, name string, value, fallback float64) (float64, error) {
	if !cmd.Flags().Changed(name) {
		return fallback, nil
	}
	if !(value > 0) {
		return 0, apperrors.ValidationField(name, "--"+name+" must be positive")
	}
	return value, nil
}
