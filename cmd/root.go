package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kilianp07/iris/config"
	"github.com/kilianp07/iris/core/controller"
	"github.com/kilianp07/iris/infra/logger"
)

// errReported marks failures that were already shown to the user.
var errReported = errors.New("reported")

type cli struct {
	cfgPath string
	cfg     *config.Config
	// predictor overrides the HTTP client; nil outside tests.
	predictor controller.Predictor
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	return newRootCmd(&cli{})
}

func newRootCmd(c *cli) *cobra.Command {
	root := &cobra.Command{
		Use:           "iris",
		Short:         "Iris species prediction form",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(c.cfgPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if err := logger.Configure(cfg.Logging); err != nil {
				return fmt.Errorf("configure logging: %w", err)
			}
			c.cfg = cfg
			return nil
		},
	}
	root.PersistentFlags().StringVarP(&c.cfgPath, "config", "c", "", "configuration file (yaml or json)")
	root.AddCommand(
		newServeCmd(c),
		newPredictCmd(c),
		newModelsCmd(c),
		newHistoryCmd(c),
		newScenarioCmd(c),
		newMockCmd(c),
	)
	return root
}

// Execute runs the CLI and prints unreported errors to stderr.
func Execute() error {
	return execute(NewRootCmd(), os.Stderr)
}

func execute(root *cobra.Command, stderr io.Writer) error {
	err := root.Execute()
	if err != nil && !errors.Is(err, errReported) {
		fmt.Fprintln(stderr, "Error:", err)
	}
	_ = logger.Close()
	return err
}

func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
