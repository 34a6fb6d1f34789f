package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/askiada/go-pisa/pkg/maps"
	"github.com/askiada/go-pisa/pkg/pipeline/model"
	"github.com/askiada/go-pisa/pkg/stage"
)

type rangeKind int

const (
	rangeAll rangeKind = iota
	rangeOnly
	rangeStopAfter
	rangeSlice
)

// Range selects the stages of a run. The zero value selects every stage.
// Negative indices count from the end, -1 being the last stage.
type Range struct {
	kind     rangeKind
	from, to int
}

// AllStages runs the whole pipeline.
func AllStages() Range {
	return Range{kind: rangeAll}
}

// OnlyStage runs stage i alone.
func OnlyStage(i int) Range {
	return Range{kind: rangeOnly, from: i}
}

// StopAfter runs every stage up to and including stage i.
func StopAfter(i int) Range {
	return Range{kind: rangeStopAfter, to: i}
}

// Stages runs the stages in [from, to).
func Stages(from, to int) Range {
	return Range{kind: rangeSlice, from: from, to: to}
}

// bounds returns the half-open interval of stage indices selected among n.
func (r Range) bounds(n int) (int, int, error) {
	index := func(i int) (int, error) {
		if i < 0 {
			i += n
		}
		if i < 0 || i >= n {
			return 0, errors.Wrapf(ErrStageIndex, "%d of %d stages", i, n)
		}
		return i, nil
	}

	switch r.kind {
	case rangeOnly:
		i, err := index(r.from)
		return i, i + 1, err
	case rangeStopAfter:
		i, err := index(r.to)
		return 0, i + 1, err
	case rangeSlice:
		if r.from < 0 || r.to > n || r.from >= r.to {
			return 0, 0, errors.Wrapf(ErrEmptyRange, "[%d, %d) of %d stages", r.from, r.to, n)
		}
		return r.from, r.to, nil
	default:
		if n == 0 {
			return 0, 0, ErrEmptyRange
		}
		return 0, n, nil
	}
}

// RunOptions controls a run. A nil *RunOptions runs every stage and keeps
// only the final output.
type RunOptions struct {
	Range Range
	// Intermediate records the output of every stage that ran, before any
	// post-stage hook.
	Intermediate bool
}

// Outputs is the result of a run.
type Outputs struct {
	RunID        string
	Final        any
	Intermediate []any
}

// GetOutputs runs the selected stages in order, threading the output of each
// stage into the next one. inputs are handed to the first stage that runs.
//
// The context is checked between stages only. A stage error is returned
// unmodified.
func (p *Pipeline) GetOutputs(ctx context.Context, inputs any, opts *RunOptions) (*Outputs, error) {
	if opts == nil {
		opts = &RunOptions{}
	}
	from, to, err := opts.Range.bounds(len(p.stages))
	if err != nil {
		return nil, err
	}

	res := &Outputs{RunID: uuid.NewString()}
	logger := p.logger.With("run_id", res.RunID)
	startTime := time.Now()

	var handoff time.Duration
	data := inputs
	for i := from; i < to; i++ {
		s := p.stages[i]
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrapf(err, "run stopped before stage %s", s.StageName())
		}

		info, parent := p.info(i, res.RunID), p.parent(i, res.RunID)
		for _, opt := range p.opts {
			err := opt.BeforeStage(parent, info)
			if err != nil {
				return nil, errors.Wrap(err, "unable to apply pipeline option")
			}
		}

		logger.Debug("running stage", "stage", s.StageName(), "service", s.ServiceName(), "index", i)
		computeStart := time.Now()
		out, err := s.GetOutputs(ctx, data)
		computation := time.Since(computeStart)
		if err != nil {
			logger.Error("stage failed", "stage", s.StageName(), "service", s.ServiceName(), "error", err)
			return nil, err
		}

		for _, opt := range p.opts {
			err := opt.AfterStage(parent, info, handoff, computation)
			if err != nil {
				return nil, errors.Wrap(err, "unable to apply pipeline option")
			}
		}

		if opts.Intermediate {
			res.Intermediate = append(res.Intermediate, out)
		}

		hookStart := time.Now()
		data, err = p.applyHook(ctx, s, out)
		handoff = time.Since(hookStart)
		if err != nil {
			logger.Error("post-stage hook failed", "stage", s.StageName(), "service", s.ServiceName(), "error", err)
			return nil, err
		}
	}
	res.Final = data

	if to == len(p.stages) {
		last := p.info(to-1, res.RunID)
		for _, opt := range p.opts {
			err := opt.AfterStage(last, model.EndStage, handoff, 0)
			if err != nil {
				return nil, errors.Wrap(err, "unable to apply pipeline option")
			}
		}
	}

	totalDuration := time.Since(startTime)
	for _, opt := range p.opts {
		err := opt.Finish(res.RunID, totalDuration)
		if err != nil {
			return nil, errors.Wrap(err, "unable to finish pipeline option")
		}
	}
	logger.Debug("run finished", "from", from, "to", to, "duration", totalDuration)

	return res, nil
}

// RunStage runs stage i alone. When inputs is nil and the stage declares an
// input binning, it receives dummy maps named after its inputs: ones for
// names containing "mu", zeros otherwise.
func (p *Pipeline) RunStage(ctx context.Context, i int, inputs any) (any, error) {
	from, _, err := OnlyStage(i).bounds(len(p.stages))
	if err != nil {
		return nil, err
	}
	if inputs == nil {
		if b, ok := p.stages[from].(stage.Binned); ok && b.InputBinning() != nil {
			inputs = maps.DummyInputs(b.InputNames(), b.InputBinning())
		}
	}

	res, err := p.GetOutputs(ctx, inputs, &RunOptions{Range: OnlyStage(from)})
	if err != nil {
		return nil, err
	}

	return res.Final, nil
}

func (p *Pipeline) applyHook(ctx context.Context, s stage.Stage, out any) (any, error) {
	hook, ok := p.hooks[s.StageName()]
	if !ok {
		return out, nil
	}
	res, err := hook(ctx, out)
	if err != nil {
		return nil, errors.Wrapf(err, "post-stage hook of %s:%s", s.StageName(), s.ServiceName())
	}

	return res, nil
}

func (p *Pipeline) info(i int, runID string) *model.StageInfo {
	info := *p.infos[i]
	info.RunID = runID
	return &info
}

func (p *Pipeline) parent(i int, runID string) *model.StageInfo {
	if i == 0 {
		return model.StartStage
	}
	return p.info(i-1, runID)
}
