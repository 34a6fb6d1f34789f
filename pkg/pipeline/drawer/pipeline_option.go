package drawer

import (
	"time"

	"github.com/pkg/errors"

	"github.com/askiada/go-pisa/pkg/pipeline/measure"
	"github.com/askiada/go-pisa/pkg/pipeline/model"
)

type pipelineDrawer struct {
	Drawer
	m measure.Measure
}

func (pd *pipelineDrawer) New(stages []*model.StageInfo) error {
	err := pd.AddStage(model.StartStage.Name)
	if err != nil {
		return errors.Wrap(err, "unable to add start stage to drawer")
	}

	parent := model.StartStage.Name
	for _, s := range stages {
		err := pd.AddStage(s.Name)
		if err != nil {
			return err
		}
		err = pd.AddLink(parent, s.Name)
		if err != nil {
			return err
		}
		parent = s.Name
	}

	err = pd.AddStage(model.EndStage.Name)
	if err != nil {
		return errors.Wrap(err, "unable to add end stage to drawer")
	}

	return pd.AddLink(parent, model.EndStage.Name)
}

func (pd *pipelineDrawer) BeforeStage(parentStage, stage *model.StageInfo) error {
	return nil
}

func (pd *pipelineDrawer) AfterStage(parentStage, stage *model.StageInfo, handoffDuration, computationDuration time.Duration) error {
	return nil
}

func (pd *pipelineDrawer) Finish(_ string, totalDuration time.Duration) error {
	err := pd.SetRunDuration(model.EndStage.Name, totalDuration)
	if err != nil {
		return errors.Wrap(err, "unable to set run duration")
	}

	if pd.m != nil {
		err = pd.AddMeasure(pd.m)
		if err != nil {
			return errors.Wrap(err, "unable to add measure")
		}
	}

	err = pd.Draw()
	if err != nil {
		return errors.Wrap(err, "unable to draw pipeline")
	}

	return nil
}

// PipelineDrawer draws the pipeline after every run. measure may be nil.
func PipelineDrawer(drawer Drawer, measure measure.Measure) model.PipelineOption {
	return &pipelineDrawer{drawer, measure}
}
