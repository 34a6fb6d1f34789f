package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var paramsCmd = &cobra.Command{
	Use:   "params",
	Short: "List the parameters of a pipeline",
	Long: `Builds the pipeline and prints its aggregate parameter set, one
parameter per line. Parameters shared by several stages appear once.`,
	RunE: runParams,
}

func init() {
	rootCmd.AddCommand(paramsCmd)
}

func runParams(cmd *cobra.Command, _ []string) error {
	p, err := loadPipeline(newLogger())
	if err != nil {
		printError("params", err)
		return err
	}
	for _, prm := range p.Params().Params() {
		fmt.Fprintln(cmd.OutOrStdout(), prm)
	}
	return nil
}
