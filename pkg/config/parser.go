package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/askiada/go-pisa/pkg/binning"
	"github.com/askiada/go-pisa/pkg/param"
)

// Section and key names of a pipeline configuration.
const (
	BinningSection  = "binning"
	PipelineSection = "pipeline"
	StagePrefix     = "stage:"

	keyOrder         = "order"
	keyBinnings      = "binnings"
	keyService       = "service"
	keyParamSelector = "param_selector"
	paramPrefix      = "param."
)

// Definition is a parsed pipeline: its stages in execution order and the
// binnings they may reference.
type Definition struct {
	Stages   []*StageDef
	Binnings *binning.Registry
}

// Stage returns the definition of the stage called name.
func (d *Definition) Stage(name string) (*StageDef, bool) {
	for _, s := range d.Stages {
		if s.Name == name {
			return s, true
		}
	}
	return nil, false
}

// Names returns the stage names in execution order.
func (d *Definition) Names() []string {
	out := make([]string, len(d.Stages))
	for i, s := range d.Stages {
		out[i] = s.Name
	}
	return out
}

// StageDef is everything needed to construct one stage.
type StageDef struct {
	Name     string
	Service  string
	Selector string
	// Params is nil when the section declares no parameter.
	Params   *param.Set
	Binnings map[string]*binning.MultiDim
	Kwargs   map[string]string
}

type parser struct {
	logger *slog.Logger
	priors PriorDataLoader
}

func newParser(baseDir string, opts []Option) *parser {
	p := &parser{
		logger: discardLogger(),
		priors: NewFileLoader(baseDir),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse parses INI configuration text. Relative prior resources are resolved
// against the working directory.
func Parse(text string, opts ...Option) (*Definition, error) {
	f, err := ParseINI([]byte(text))
	if err != nil {
		return nil, err
	}
	return ParseFile(f, opts...)
}

// LoadDefinition loads and parses the configuration at path. Relative prior
// resources are resolved against the configuration's directory.
func LoadDefinition(path string, opts ...Option) (*Definition, error) {
	f, err := Load(path)
	if err != nil {
		return nil, err
	}
	dir := filepath.Dir(path)
	return newParser(dir, opts).parse(f)
}

// ParseFile builds a pipeline definition from an already decoded configuration.
func ParseFile(f *File, opts ...Option) (*Definition, error) {
	wd, _ := os.Getwd()
	return newParser(wd, opts).parse(f)
}

func (p *parser) parse(f *File) (*Definition, error) {
	reg, err := p.parseBinnings(f)
	if err != nil {
		return nil, err
	}

	order, ok := f.Get(PipelineSection, keyOrder)
	if !ok {
		if _, has := f.Section(PipelineSection); !has {
			return nil, parseErr(PipelineSection, "", ErrMissingSection)
		}
		return nil, parseErr(PipelineSection, keyOrder, ErrMissingKey)
	}

	def := &Definition{Binnings: reg}
	seen := make(map[string]bool)
	for _, token := range List(order) {
		stage, service, err := splitStageToken(token)
		if err != nil {
			return nil, parseErr(PipelineSection, keyOrder, err)
		}
		if seen[stage] {
			return nil, parseErr(PipelineSection, keyOrder, errors.Wrapf(ErrDuplicateStage, "%q", stage))
		}
		seen[stage] = true

		sd, err := p.parseStage(f, reg, stage, service)
		if err != nil {
			return nil, err
		}
		def.Stages = append(def.Stages, sd)
	}
	return def, nil
}

func splitStageToken(token string) (string, string, error) {
	parts := strings.Split(token, ":")
	if len(parts) != 2 {
		return "", "", errors.Wrapf(ErrStageToken, "%q", token)
	}
	stage, service := strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
	if stage == "" || service == "" {
		return "", "", errors.Wrapf(ErrStageToken, "%q", token)
	}
	return stage, service, nil
}

func (p *parser) parseBinnings(f *File) (*binning.Registry, error) {
	sec, ok := f.Section(BinningSection)
	if !ok {
		return binning.NewRegistry(), nil
	}
	order, ok := sec.Get(keyOrder)
	if !ok {
		return nil, parseErr(BinningSection, keyOrder, ErrMissingKey)
	}
	names, ok := sec.Get(keyBinnings)
	if !ok {
		return nil, parseErr(BinningSection, keyBinnings, ErrMissingKey)
	}
	reg, err := binning.BuildRegistry(binning.RegistrySpec{
		Order:    List(order),
		Binnings: List(names),
		Args: func(key string) (string, bool) {
			if v, ok := sec.Get(key); ok {
				return v, true
			}
			return sec.Get(strings.ToLower(key))
		},
	})
	if err != nil {
		var argErr *binning.ArgError
		if errors.As(err, &argErr) {
			return nil, parseErr(BinningSection, argErr.Key, argErr.Err)
		}
		return nil, parseErr(BinningSection, "", err)
	}
	return reg, nil
}

func (p *parser) parseStage(f *File, reg *binning.Registry, stage, service string) (*StageDef, error) {
	name := StagePrefix + stage
	sec, ok := f.Section(name)
	if !ok {
		return nil, parseErr(name, "", ErrMissingSection)
	}
	if declared, ok := sec.Get(keyService); ok && strings.TrimSpace(declared) != service {
		return nil, parseErr(name, keyService, errors.Wrapf(ErrServiceMismatch, "section says %q, order says %q", declared, service))
	}
	selector, _ := sec.Get(keyParamSelector)
	selector = strings.TrimSpace(selector)

	sd := &StageDef{
		Name:     stage,
		Service:  service,
		Selector: selector,
		Binnings: make(map[string]*binning.MultiDim),
		Kwargs:   make(map[string]string),
	}
	params, err := param.NewSet()
	if err != nil {
		return nil, err
	}

	for _, key := range sec.Keys() {
		value, _ := sec.Get(key)
		switch {
		case key == keyService || key == keyParamSelector:
		case strings.HasPrefix(key, paramPrefix):
			pname, ok := paramName(key, selector)
			if !ok {
				if !isModifier(sec, key) {
					p.logger.Debug("skipping inactive param", "section", name, "key", key, "selector", selector)
				}
				continue
			}
			prm, err := p.buildParam(sec, key, pname, selector)
			if err != nil {
				return nil, err
			}
			if err := params.Add(prm); err != nil {
				return nil, parseErr(name, key, err)
			}
		case strings.Contains(key, "binning"):
			b, ok := reg.Get(strings.TrimSpace(value))
			if !ok {
				return nil, parseErr(name, key, errors.Wrapf(ErrUnknownBinning, "%q", value))
			}
			sd.Binnings[key] = b
		default:
			sd.Kwargs[key] = value
		}
	}
	if params.Len() > 0 {
		sd.Params = params
	}

	p.logger.Debug("parsed stage", "stage", stage, "service", service, "params", params.Len())
	return sd, nil
}

// paramName returns the parameter name of a "param.<name>" or
// "param.<selector>.<name>" key. Any other shape belongs to an inactive
// selector or is a modifier key.
func paramName(key, selector string) (string, bool) {
	parts := strings.Split(strings.TrimPrefix(key, paramPrefix), ".")
	switch {
	case selector != "" && len(parts) == 2 && parts[0] == selector:
		return parts[1], true
	case len(parts) == 1:
		return parts[0], true
	default:
		return "", false
	}
}
