package cmd

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/askiada/go-pisa/pkg/pipeline"
	"github.com/askiada/go-pisa/pkg/pipeline/drawer"
	"github.com/askiada/go-pisa/pkg/pipeline/measure"
	"github.com/askiada/go-pisa/pkg/stage"
)

var (
	onlyStage      int
	stopAfterStage int
	intermediate   bool
	transforms     bool
	outDir         string
	graphFile      string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a pipeline and store its outputs",
	Long: `Runs the pipeline and writes <stage>__<service>__output.json into the
output directory, for the last stage or for every stage with --intermediate.

--only-stage runs a single stage on dummy inputs. --stop-after-stage runs
every stage up to and including the given index.`,
	RunE: runRun,
}

func init() {
	runCmd.Flags().IntVar(&onlyStage, "only-stage", -1, "run only the stage at this index")
	runCmd.Flags().IntVar(&stopAfterStage, "stop-after-stage", -1, "stop after the stage at this index")
	runCmd.Flags().BoolVar(&intermediate, "intermediate", false, "store the output of every stage")
	runCmd.Flags().BoolVar(&transforms, "transforms", false, "store the transforms of stages that use them")
	runCmd.Flags().StringVarP(&outDir, "outdir", "d", ".", "output directory")
	runCmd.Flags().StringVar(&graphFile, "graph", "", "write a DOT graph of the run with its timings")
	runCmd.MarkFlagsMutuallyExclusive("only-stage", "stop-after-stage")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, _ []string) error {
	logger := newLogger()

	var opts []pipeline.Option
	if graphFile != "" {
		m := measure.NewDefaultMeasure()
		opts = append(opts, pipeline.WithOptions(
			measure.PipelineMeasure(m),
			drawer.PipelineDrawer(drawer.NewDOTDrawer(graphFile, drawer.WithGraphAttribute("rankdir", "LR")), m),
		))
	}
	p, err := loadPipeline(logger, opts...)
	if err != nil {
		printError("run", err)
		return err
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		printError("run", err)
		return errors.Wrapf(err, "unable to create %s", outDir)
	}

	ctx := cmd.Context()
	var ran []stage.Stage
	var outs []any
	switch {
	case cmd.Flags().Changed("only-stage"):
		out, err := p.RunStage(ctx, onlyStage, nil)
		if err != nil {
			printError("run", err)
			return err
		}
		idx := onlyStage
		if idx < 0 {
			idx += p.Len()
		}
		ran, outs = p.Stages()[idx:idx+1], []any{out}
	default:
		rng := pipeline.AllStages()
		if cmd.Flags().Changed("stop-after-stage") {
			rng = pipeline.StopAfter(stopAfterStage)
		}
		res, err := p.GetOutputs(ctx, nil, &pipeline.RunOptions{Range: rng, Intermediate: true})
		if err != nil {
			printError("run", err)
			return err
		}
		ran, outs = p.Stages()[:len(res.Intermediate)], res.Intermediate
		logger.Info("run finished", "run_id", res.RunID, "stages", len(ran))
	}

	if !intermediate {
		ran, outs = ran[len(ran)-1:], outs[len(outs)-1:]
	}
	if err := writeOutputs(outDir, ran, outs, transforms); err != nil {
		printError("run", err)
		return err
	}
	return nil
}

func outputPath(dir string, s stage.Stage, kind string) string {
	return filepath.Join(dir, s.StageName()+"__"+s.ServiceName()+"__"+kind+".json")
}

// writeOutputs stores outs[i] as the output of stages[i], plus the transforms
// of every stage that uses them when withTransforms is set.
func writeOutputs(dir string, stages []stage.Stage, outs []any, withTransforms bool) error {
	if len(stages) != len(outs) {
		return errors.Errorf("%d stages for %d outputs", len(stages), len(outs))
	}
	for i, s := range stages {
		if err := writeJSON(outputPath(dir, s, "output"), outs[i]); err != nil {
			return err
		}
		if !withTransforms {
			continue
		}
		t, ok := s.(stage.Transformer)
		if !ok || !t.UseTransforms() {
			continue
		}
		if tr := t.Transforms(); tr != nil {
			if err := writeJSON(outputPath(dir, s, "transforms"), tr); err != nil {
				return err
			}
		}
	}
	return nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Wrapf(err, "unable to encode %s", path)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrapf(err, "unable to write %s", path)
	}
	return nil
}
