package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/askiada/go-pisa/pkg/config"
	"github.com/askiada/go-pisa/pkg/pipeline"
	"github.com/askiada/go-pisa/pkg/services"
	"github.com/askiada/go-pisa/pkg/stage"
)

var (
	pipelineFile string
	verbose      bool
)

var rootCmd = &cobra.Command{
	Use:   "pisa",
	Short: "Config-driven analysis pipeline",
	Long: `pisa builds a pipeline of stages from a configuration file and runs it.

Each stage is a (role, service) pair declared in the pipeline order. The
output of a stage feeds the next one.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&pipelineFile, "pipeline", "p", "", "pipeline configuration file (.cfg, .ini, .toml, .yaml, .json)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	_ = rootCmd.MarkPersistentFlagRequired("pipeline")
}

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func newRegistry() (*stage.Registry, error) {
	reg := stage.NewRegistry()
	if err := services.Register(reg); err != nil {
		return nil, errors.Wrap(err, "unable to register services")
	}
	return reg, nil
}

func loadPipeline(logger *slog.Logger, opts ...pipeline.Option) (*pipeline.Pipeline, error) {
	reg, err := newRegistry()
	if err != nil {
		return nil, err
	}
	opts = append([]pipeline.Option{
		pipeline.WithLogger(logger),
		pipeline.WithConfigOptions(config.WithLogger(logger)),
	}, opts...)
	p, err := pipeline.FromConfig(pipelineFile, reg, opts...)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to build pipeline from %s", pipelineFile)
	}
	return p, nil
}

func printError(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
}
