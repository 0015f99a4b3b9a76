package main

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/DV0x/fashion-shoot-agent-sub001/internal/config"
	"github.com/DV0x/fashion-shoot-agent-sub001/internal/pipeline"
)

func newStitchCmd() *cobra.Command {
	var (
		clips    []string
		output   string
		duration float64
		keepTemp bool
		cutSheet string
		curve    curveFlags
	)

	cmd := &cobra.Command{
		Use:     "stitch",
		Short:   "Retime several clips and join them with hard cuts",
		Example: "  speedramp stitch --clips a.mp4 --clips b.mp4 --clips c.mp4 -o out.mp4 --easing dramaticSwoop",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.FromContext(cmd.Context())
			name, spec, fps, bitrate, err := curve.resolve(cmd, cfg)
			if err != nil {
				return err
			}

			clipDuration, err := durationFlag(cmd, "clip-duration", duration, cfg.Defaults.OutputDuration)
			if err != nil {
				return err
			}

			req := pipeline.StitchRequest{
				Clips:        clips,
				Output:       output,
				ClipDuration: clipDuration,
				OutputFPS:    fps,
				Easing:       name,
				Bezier:       spec,
				Bitrate:      bitrate,
				KeepTemp:     keepTemp,
				CutSheet:     cutSheet,
				OnProgress:   newProgressLogger("stitch"),
			}
			// Bad input is reported before ffmpeg is even looked up
			if err := pipeline.CheckStitch(cfg, req); err != nil {
				return err
			}

			pipe, err := pipeline.New(log.Logger, cfg)
			if err != nil {
				return err
			}

			res, err := pipe.Stitch(cmd.Context(), req)
			if err != nil {
				return err
			}

			printResult(cmd.OutOrStdout(), res)
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&clips, "clips", nil, "input clip, repeat for each clip in order (at least 2)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output video (.mp4)")
	cmd.Flags().Float64Var(&duration, "clip-duration", config.Default().Defaults.OutputDuration, "seconds each clip lasts in the output")
	cmd.Flags().BoolVar(&keepTemp, "keep-temp", false, "keep the scratch directory")
	cmd.Flags().StringVar(&cutSheet, "cut-sheet", "", "write a PNG of the frames around every cut")
	curve.register(cmd, true)

	return cmd
}
