package measure

import (
	"time"

	"github.com/askiada/go-pisa/pkg/pipeline/model"
)

type pipelineMeasure struct {
	Measure
}

func (pm *pipelineMeasure) New(stages []*model.StageInfo) error {
	pm.AddMetric(model.StartStage.Name)
	for _, s := range stages {
		pm.AddMetric(s.Name)
	}
	pm.AddMetric(model.EndStage.Name)

	return nil
}

func (pm *pipelineMeasure) BeforeStage(parentStage, stage *model.StageInfo) error {
	return nil
}

func (pm *pipelineMeasure) AfterStage(parentStage, stage *model.StageInfo, handoffDuration, computationDuration time.Duration) error {
	mt := pm.AddMetric(stage.Name)
	if stage != model.EndStage {
		mt.AddComputation(computationDuration)
	}
	mt.AddHandoff(parentStage.Name, handoffDuration)

	return nil
}

func (pm *pipelineMeasure) Finish(_ string, totalDuration time.Duration) error {
	pm.AddMetric(model.EndStage.Name).SetRunDuration(totalDuration)
	return nil
}

// PipelineMeasure records per-stage durations into measure.
func PipelineMeasure(measure Measure) model.PipelineOption {
	return &pipelineMeasure{measure}
}
