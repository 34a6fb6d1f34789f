package pipeline

import (
	"io"
	"log/slog"

	"github.com/dominikbraun/graph"
	"github.com/pkg/errors"

	"github.com/askiada/go-pisa/internal/store"
	"github.com/askiada/go-pisa/pkg/config"
	"github.com/askiada/go-pisa/pkg/param"
	"github.com/askiada/go-pisa/pkg/pipeline/model"
	"github.com/askiada/go-pisa/pkg/stage"
)

// Pipeline is an ordered chain of live stages.
type Pipeline struct {
	stages []stage.Stage
	infos  []*model.StageInfo
	graph  graph.Graph[string, stage.Stage]
	hooks  map[string]Hook

	logger         *slog.Logger
	opts           []model.PipelineOption
	customHooks    map[string]Hook
	noDefaultHooks bool
	configOpts     []config.Option
}

func newPipeline(opts []Option) *Pipeline {
	p := &Pipeline{
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		customHooks: make(map[string]Hook),
	}
	for _, opt := range opts {
		opt(p)
	}

	p.hooks = make(map[string]Hook)
	if !p.noDefaultHooks {
		for role, hook := range defaultHooks() {
			p.hooks[role] = hook
		}
	}
	for role, hook := range p.customHooks {
		p.hooks[role] = hook
	}

	return p
}

// New instantiates every stage of def in declared order. Any failure aborts
// construction and is reported as a *ConstructionError.
func New(def *config.Definition, reg *stage.Registry, opts ...Option) (*Pipeline, error) {
	if def == nil {
		return nil, ErrDefinitionMustBeSet
	}
	if reg == nil {
		return nil, ErrRegistryMustBeSet
	}
	p := newPipeline(opts)

	s := store.NewOrderedStore[string, stage.Stage]()
	p.graph = graph.NewWithStore(stageHash, s, graph.Directed(), graph.Acyclic(), graph.PreventCycles())

	shared := make(map[string]*param.Param)
	for i, sd := range def.Stages {
		st, err := p.build(reg, sd, shared)
		if err != nil {
			return nil, &ConstructionError{Stage: sd.Name, Service: sd.Service, Err: err}
		}

		err = p.graph.AddVertex(st)
		if errors.Is(err, graph.ErrVertexAlreadyExists) {
			err = errors.Wrapf(ErrDuplicateStage, "%q", sd.Name)
		}
		if err != nil {
			return nil, &ConstructionError{Stage: sd.Name, Service: sd.Service, Err: err}
		}
		if i > 0 {
			err = p.graph.AddEdge(def.Stages[i-1].Name, sd.Name)
			if err != nil {
				return nil, &ConstructionError{Stage: sd.Name, Service: sd.Service, Err: errors.Wrap(err, "unable to link stage")}
			}
		}

		p.stages = append(p.stages, st)
		p.infos = append(p.infos, &model.StageInfo{Index: i, Name: sd.Name, Service: sd.Service})
		p.logger.Debug("instantiated stage", "stage", sd.Name, "service", sd.Service, "params", st.Params().Len())
	}

	for _, opt := range p.opts {
		err := opt.New(p.Infos())
		if err != nil {
			return nil, errors.Wrap(err, "unable to apply pipeline option")
		}
	}

	return p, nil
}

// FromConfig loads the configuration at path and builds its pipeline.
func FromConfig(path string, reg *stage.Registry, opts ...Option) (*Pipeline, error) {
	cfgOpts := newPipeline(opts).configOpts
	def, err := config.LoadDefinition(path, cfgOpts...)
	if err != nil {
		return nil, err
	}

	return New(def, reg, opts...)
}

func stageHash(s stage.Stage) string {
	return s.StageName()
}

// build instantiates one stage. Its parameters are replaced by the shared
// instances already declared by earlier stages.
func (p *Pipeline) build(reg *stage.Registry, sd *config.StageDef, shared map[string]*param.Param) (stage.Stage, error) {
	args := stage.ArgsFromDef(sd)
	if sd.Params != nil {
		params, err := share(sd.Params, shared)
		if err != nil {
			return nil, err
		}
		args.Params = params
	}

	return reg.Build(args)
}

func share(params *param.Set, shared map[string]*param.Param) (*param.Set, error) {
	list := params.Params()
	for i, prm := range list {
		existing, ok := shared[prm.Name]
		if !ok {
			shared[prm.Name] = prm
			continue
		}
		if !existing.Equal(prm) {
			return nil, errors.Wrapf(ErrParamConflict, "%s: %s vs %s", prm.Name, existing, prm)
		}
		list[i] = existing
	}

	return param.NewSet(list...)
}

// Stages returns the live stages in execution order.
func (p *Pipeline) Stages() []stage.Stage {
	return append([]stage.Stage(nil), p.stages...)
}

// Len returns the number of stages.
func (p *Pipeline) Len() int {
	return len(p.stages)
}

// Stage returns the stage called name.
func (p *Pipeline) Stage(name string) (stage.Stage, error) {
	st, err := p.graph.Vertex(name)
	if err != nil {
		return nil, errors.Wrapf(ErrUnknownStage, "%q", name)
	}

	return st, nil
}

// Index returns the position of the stage called name.
func (p *Pipeline) Index(name string) (int, error) {
	for i, s := range p.stages {
		if s.StageName() == name {
			return i, nil
		}
	}

	return 0, errors.Wrapf(ErrUnknownStage, "%q", name)
}

// Infos describes the stages in execution order.
func (p *Pipeline) Infos() []*model.StageInfo {
	out := make([]*model.StageInfo, len(p.infos))
	for i, info := range p.infos {
		cp := *info
		out[i] = &cp
	}

	return out
}

// Graph returns the stage chain. Vertices are keyed by stage name.
func (p *Pipeline) Graph() graph.Graph[string, stage.Stage] {
	return p.graph
}

// Params returns a fresh set holding every stage parameter once, in stage
// order. The parameters themselves are shared with the stages.
func (p *Pipeline) Params() *param.Set {
	set, _ := param.NewSet()
	for _, s := range p.stages {
		set.Extend(s.Params())
	}

	return set
}

// UpdateParams copies the values of the parameters of update into the
// pipeline parameters with the same names. Unknown names are ignored. It
// returns how many parameters were updated.
func (p *Pipeline) UpdateParams(update *param.Set) (int, error) {
	n, err := p.Params().UpdateExisting(update)
	if err != nil {
		return n, errors.Wrap(err, "unable to update params")
	}

	return n, nil
}
