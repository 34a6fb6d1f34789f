package pipeline_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askiada/go-pisa/pkg/config"
	"github.com/askiada/go-pisa/pkg/maps"
	"github.com/askiada/go-pisa/pkg/pipeline"
	"github.com/askiada/go-pisa/pkg/pipeline/model"
	"github.com/askiada/go-pisa/pkg/services"
	"github.com/askiada/go-pisa/pkg/stage"
)

// funcStage delegates GetOutputs to fn and counts its calls.
type funcStage struct {
	*stage.Base
	args  stage.Args
	fn    func(s *funcStage, inputs any) (any, error)
	calls int
}

func (f *funcStage) GetOutputs(_ context.Context, inputs any) (any, error) {
	f.calls++
	return f.fn(f, inputs)
}

func register(reg *stage.Registry, role, service string, fn func(s *funcStage, inputs any) (any, error)) {
	reg.MustRegister(role, service, func(args stage.Args) (stage.Stage, error) {
		return &funcStage{Base: stage.NewBase(args), args: args, fn: fn}, nil
	})
}

func echo(s *funcStage, inputs any) (any, error) {
	in, _ := inputs.([]string)
	return append(append([]string(nil), in...), s.StageName()), nil
}

func testRegistry(t *testing.T) *stage.Registry {
	t.Helper()

	reg := stage.NewRegistry()
	for _, role := range []string{"a", "b", "c"} {
		register(reg, role, "echo", echo)
	}
	register(reg, "b", "broken", func(*funcStage, any) (any, error) {
		return nil, assert.AnError
	})
	register(reg, "flux", "maker", func(s *funcStage, _ any) (any, error) {
		b, err := s.args.Binning("output_binning")
		if err != nil {
			return nil, err
		}
		return maps.NewMapSet("flux", maps.Filled("numu", b, 1))
	})
	register(reg, "aeff", "pass", func(_ *funcStage, inputs any) (any, error) {
		return inputs, nil
	})
	register(reg, "reco", "size", func(_ *funcStage, inputs any) (any, error) {
		return inputs.(*maps.MapSet).Size(), nil
	})
	register(reg, "aeff", "text", func(*funcStage, any) (any, error) {
		return "not a map", nil
	})
	require.NoError(t, services.Register(reg))

	return reg
}

func newPipeline(t *testing.T, text string, opts ...pipeline.Option) *pipeline.Pipeline {
	t.Helper()

	def, err := config.Parse(text)
	require.NoError(t, err)
	p, err := pipeline.New(def, testRegistry(t), opts...)
	require.NoError(t, err)

	return p
}

func calls(t *testing.T, p *pipeline.Pipeline, name string) int {
	t.Helper()

	s, err := p.Stage(name)
	require.NoError(t, err)
	f, ok := s.(*funcStage)
	require.True(t, ok)

	return f.calls
}

// recorder is a lifecycle option logging every event it receives.
type recorder struct {
	events  []string
	runIDs  map[string]bool
	failNew bool
}

func (r *recorder) New(stages []*model.StageInfo) error {
	if r.failNew {
		return assert.AnError
	}
	names := make([]string, len(stages))
	for i, s := range stages {
		names[i] = s.Label()
	}
	r.events = append(r.events, "new "+strings.Join(names, ","))
	r.runIDs = make(map[string]bool)
	return nil
}

func (r *recorder) BeforeStage(parent, s *model.StageInfo) error {
	r.events = append(r.events, "before "+parent.Name+">"+s.Name)
	r.runIDs[s.RunID] = true
	return nil
}

func (r *recorder) AfterStage(parent, s *model.StageInfo, _, _ time.Duration) error {
	r.events = append(r.events, "after "+parent.Name+">"+s.Name)
	return nil
}

func (r *recorder) Finish(runID string, _ time.Duration) error {
	r.events = append(r.events, "finish")
	r.runIDs[runID] = true
	return nil
}
