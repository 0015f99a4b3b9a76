package main

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/DV0x/fashion-shoot-agent-sub001/internal/config"
	apperrors "github.com/DV0x/fashion-shoot-agent-sub001/internal/errors"
	"github.com/DV0x/fashion-shoot-agent-sub001/internal/pipeline"
)

func newRetimeCmd() *cobra.Command {
	var (
		input, output string
		duration      float64
		keepTemp      bool
		listEasings   bool
		curve         curveFlags
	)

	cmd := &cobra.Command{
		Use:   "retime",
		Short: "Retime one clip along a speed curve",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if listEasings {
				return printEasings(cmd.OutOrStdout())
			}
			if input == "" || output == "" {
				return apperrors.Validation("--input and --output are required")
			}

			cfg := config.FromContext(cmd.Context())
			name, spec, fps, bitrate, err := curve.resolve(cmd, cfg)
			if err != nil {
				return err
			}

			outDuration, err := durationFlag(cmd, "output-duration", duration, cfg.Defaults.OutputDuration)
			if err != nil {
				return err
			}

			req := pipeline.RetimeRequest{
				Input:          input,
				Output:         output,
				OutputDuration: outDuration,
				OutputFPS:      fps,
				Easing:         name,
				Bezier:         spec,
				Bitrate:        bitrate,
				KeepTemp:       keepTemp,
				OnProgress:     newProgressLogger("retime"),
			}
			// Bad input is reported before ffmpeg is even looked up
			if err := pipeline.CheckRetime(cfg, req); err != nil {
				return err
			}

			pipe, err := pipeline.New(log.Logger, cfg)
			if err != nil {
				return err
			}

			res, err := pipe.Retime(cmd.Context(), req)
			if err != nil {
				return err
			}

			printResult(cmd.OutOrStdout(), res)
			return nil
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "input clip")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output video (.mp4)")
	cmd.Flags().Float64Var(&duration, "output-duration", config.Default().Defaults.OutputDuration, "output length in seconds")
	cmd.Flags().BoolVar(&keepTemp, "keep-temp", false, "keep the scratch directory")
	cmd.Flags().BoolVar(&listEasings, "list-easings", false, "list easing curves and exit")
	curve.register(cmd, true)

	return cmd
}
