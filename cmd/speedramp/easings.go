package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/DV0x/fashion-shoot-agent-sub001/internal/config"
	"github.com/DV0x/fashion-shoot-agent-sub001/internal/easing"
	"github.com/DV0x/fashion-shoot-agent-sub001/internal/timing"
)

func newEasingsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "easings",
		Short: "List named easing curves and presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return printEasings(cmd.OutOrStdout())
		},
	}
}

func printEasings(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tKIND\tDESCRIPTION")
	for _, e := range easing.Entries() {
		desc := e.Description
		if e.Spec != nil {
			desc = fmt.Sprintf("%s [%s]", desc, e.Spec)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", e.Name, e.Kind, desc)
	}
	return tw.Flush()
}

func newCurveCmd() *cobra.Command {
	var (
		samples        int
		inputDuration  float64
		outputDuration float64
		curve          curveFlags
	)

	cmd := &cobra.Command{
		Use:   "curve",
		Short: "Print the speed profile a curve produces",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.FromContext(cmd.Context())
			name, spec, fps, _, err := curve.resolve(cmd, cfg)
			if err != nil {
				return err
			}
			fn, label, err := easing.Resolve(name, spec)
			if err != nil {
				return err
			}

			outDuration, err := durationFlag(cmd, "output-duration", outputDuration, cfg.Defaults.OutputDuration)
			if err != nil {
				return err
			}

			series, err := timing.Calculate(fn, timing.Params{
				InputDuration:  inputDuration,
				OutputDuration: outDuration,
				OutputFPS:      fps,
			})
			if err != nil {
				return err
			}

			return printCurve(cmd.OutOrStdout(), label, series, samples)
		},
	}

	cmd.Flags().IntVar(&samples, "samples", 10, "number of sample points")
	cmd.Flags().Float64Var(&inputDuration, "input-duration", 5, "source length in seconds")
	cmd.Flags().Float64Var(&outputDuration, "output-duration", config.Default().Defaults.OutputDuration, "output length in seconds")
	curve.register(cmd, false)

	return cmd
}

func printCurve(w io.Writer, label string, s *timing.Series, samples int) error {
	fmt.Fprintf(w, "%s: %d frames, %.3fs -> %.3fs (%.2fx), peak %.2fx\n",
		label, s.Len(), s.InputDuration, s.OutputDuration, s.CompressionRatio, timing.PeakSpeed(s))
	if s.Clamped > 0 {
		fmt.Fprintf(w, "%d frame(s) clamped to the source range\n", s.Clamped)
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "FRAME\tOUT(s)\tSRC(s)\tSPEED\t")
	for _, sm := range timing.LocalSpeed(s, samples) {
		fmt.Fprintf(tw, "%d\t%.3f\t%.3f\t%.2fx\t\n", sm.Frame, sm.OutputTime, sm.SourceTime, sm.Speed)
	}
	return tw.Flush()
}
