package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/DV0x/fashion-shoot-agent-sub001/internal/config"
	apperrors "github.com/DV0x/fashion-shoot-agent-sub001/internal/errors"
	"github.com/DV0x/fashion-shoot-agent-sub001/internal/logging"
)

var (
	cfgFile string
	verbose bool
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(exitCode(err))
	}
}

// exitCode is 2 for bad input and 1 for everything else.
func exitCode(err error) int {
	if apperrors.IsValidation(err) {
		return 2
	}
	return 1
}

var rootCmd = &cobra.Command{
	Use:           "speedramp",
	Short:         "speedramp - speed-curve video retiming",
	Long:          "Retime clips along easing curves and stitch them together with hard cuts.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Initialize logging
		logging.Init(verbose)

		// Load config
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return apperrors.Wrap(err, apperrors.CodeValidation, "config", "invalid configuration")
		}

		// Store config in context
		ctx := config.WithConfig(cmd.Context(), cfg)
		cmd.SetContext(ctx)

		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./speedramp.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(newRetimeCmd())
	rootCmd.AddCommand(newStitchCmd())
	rootCmd.AddCommand(newEasingsCmd())
	rootCmd.AddCommand(newCurveCmd())
	rootCmd.AddCommand(newConfigCmd())
}
