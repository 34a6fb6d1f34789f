package stage

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/askiada/go-pisa/pkg/binning"
	"github.com/askiada/go-pisa/pkg/config"
	"github.com/askiada/go-pisa/pkg/param"
	"github.com/askiada/go-pisa/pkg/units"
)

// Args are the constructor arguments of a stage.
type Args struct {
	StageName   string
	ServiceName string
	Params      *param.Set
	Binnings    map[string]*binning.MultiDim
	Kwargs      map[string]string
}

// ArgsFromDef converts a parsed stage definition. The service is part of the
// identity, never of the keyword arguments.
func ArgsFromDef(def *config.StageDef) Args {
	kwargs := make(map[string]string, len(def.Kwargs))
	for k, v := range def.Kwargs {
		if k == "service" {
			continue
		}
		kwargs[k] = v
	}
	return Args{
		StageName:   def.Name,
		ServiceName: def.Service,
		Params:      def.Params,
		Binnings:    def.Binnings,
		Kwargs:      kwargs,
	}
}

// Kwarg returns the raw keyword argument.
func (a Args) Kwarg(key string) (string, bool) {
	v, ok := a.Kwargs[key]
	return v, ok
}

// Text returns the keyword argument or def when absent.
func (a Args) Text(key, def string) string {
	if v, ok := a.Kwargs[key]; ok {
		return v
	}
	return def
}

// List returns a comma separated keyword argument as a list.
func (a Args) List(key string) []string {
	v, ok := a.Kwargs[key]
	if !ok {
		return nil
	}
	return config.List(v)
}

// Int parses an integer keyword argument, returning def when absent.
func (a Args) Int(key string, def int) (int, error) {
	v, ok := a.Kwargs[key]
	if !ok {
		return def, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, errors.Wrapf(ErrKwarg, "%s: %v", key, err)
	}
	return n, nil
}

// Bool parses a boolean keyword argument, returning def when absent.
func (a Args) Bool(key string, def bool) (bool, error) {
	v, ok := a.Kwargs[key]
	if !ok {
		return def, nil
	}
	b, err := config.ParseBool(v)
	if err != nil {
		return false, errors.Wrapf(ErrKwarg, "%s: %v", key, err)
	}
	return b, nil
}

// Quantity parses a keyword argument written in the value literal grammar.
func (a Args) Quantity(key string) (units.Quantity, error) {
	v, ok := a.Kwargs[key]
	if !ok {
		return units.Quantity{}, errors.Wrapf(ErrKwarg, "%s is required", key)
	}
	q, err := units.ParseQuantity(v)
	if err != nil {
		return units.Quantity{}, errors.Wrapf(ErrKwarg, "%s: %v", key, err)
	}
	return q, nil
}

// Binning returns the binning referenced by key.
func (a Args) Binning(key string) (*binning.MultiDim, error) {
	b, ok := a.Binnings[key]
	if !ok || b == nil {
		return nil, errors.Wrapf(ErrMissingBinning, "%s", key)
	}
	return b, nil
}

// RequireParams checks that every name is a declared parameter.
func (a Args) RequireParams(names ...string) error {
	var missing []string
	for _, name := range names {
		if !a.Params.Has(name) {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return errors.Wrapf(ErrMissingParam, "%s:%s needs %s", a.StageName, a.ServiceName, strings.Join(missing, ", "))
	}
	return nil
}
