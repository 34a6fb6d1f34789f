package model

import "time"

// PipelineOption defines the interface for pipeline options.
type PipelineOption interface {
	// New initialises the pipeline option with the stages in execution order.
	New(stages []*StageInfo) error

	pipelineStageOption

	// Finish runs after every successful run.
	Finish(runID string, totalDuration time.Duration) error
}

// pipelineStageOption defines the interface for stage options at the pipeline level.
type pipelineStageOption interface {
	// BeforeStage runs before the stage computes its outputs. parentStage is
	// the stage declared before it, or StartStage.
	BeforeStage(parentStage, stage *StageInfo) error
	// AfterStage runs once the stage returned. handoffDuration is the time
	// spent preparing the parent's output for this stage; it is zero when the
	// parent did not run. When the last stage of the pipeline ran, AfterStage
	// is called once more with EndStage.
	AfterStage(parentStage, stage *StageInfo, handoffDuration, computationDuration time.Duration) error
}
