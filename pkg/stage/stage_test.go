package stage_test

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askiada/go-pisa/pkg/config"
	"github.com/askiada/go-pisa/pkg/param"
	"github.com/askiada/go-pisa/pkg/stage"
	"github.com/askiada/go-pisa/pkg/units"
)

type counter struct {
	*stage.Base
	calls int
}

func (c *counter) GetOutputs(_ context.Context, inputs any) (any, error) {
	h := uint64(0)
	if n, ok := inputs.(int); ok {
		h = uint64(n)
	}
	return c.Compute(h, func() (any, error) {
		c.calls++
		return c.calls, nil
	})
}

func newCounter(args stage.Args) (stage.Stage, error) {
	return &counter{Base: stage.NewBase(args)}, nil
}

func TestBaseCompute(t *testing.T) {
	t.Parallel()

	p, err := param.New("x", units.New(1, units.Dimensionless))
	require.NoError(t, err)
	set, _ := param.NewSet(p)
	s, _ := newCounter(stage.Args{StageName: "a", ServiceName: "b", Params: set})
	c := s.(*counter)
	ctx := context.Background()

	out, err := c.GetOutputs(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, out)

	out, _ = c.GetOutputs(ctx, 1)
	assert.Equal(t, 1, out, "same inputs and params hit the cache")

	out, _ = c.GetOutputs(ctx, 2)
	assert.Equal(t, 2, out)

	require.NoError(t, p.SetValue(units.New(3, units.Dimensionless)))
	out, _ = c.GetOutputs(ctx, 2)
	assert.Equal(t, 3, out, "param change invalidates the cache")
	assert.Equal(t, 3, c.Outputs())

	c.Invalidate()
	assert.Nil(t, c.Outputs())
	out, _ = c.GetOutputs(ctx, 2)
	assert.Equal(t, 4, out)
}

func TestBaseComputeDoesNotCacheErrors(t *testing.T) {
	t.Parallel()

	b := stage.NewBase(stage.Args{StageName: "a", ServiceName: "b"})
	boom := errors.New("boom")
	_, err := b.Compute(0, func() (any, error) { return nil, boom })
	assert.Equal(t, boom, err)

	out, err := b.Compute(0, func() (any, error) { return "ok", nil })
	require.NoError(t, err)
	assert.Equal(t, "ok", out)
	assert.NotNil(t, b.Params())
	assert.Equal(t, 0, b.Params().Len())
}

func TestRegistry(t *testing.T) {
	t.Parallel()

	reg := stage.NewRegistry()
	require.NoError(t, reg.Register("flux", "constant", newCounter))
	require.NoError(t, reg.Register("aeff", "simple", newCounter))
	assert.ErrorIs(t, reg.Register("flux", "constant", newCounter), stage.ErrAlreadyRegistered)
	assert.ErrorIs(t, reg.Register("", "constant", newCounter), stage.ErrInvalidKey)
	assert.ErrorIs(t, reg.Register("flux", "other", nil), stage.ErrInvalidKey)
	assert.Panics(t, func() { reg.MustRegister("flux", "constant", newCounter) })

	assert.Equal(t, []stage.Key{{Role: "aeff", Service: "simple"}, {Role: "flux", Service: "constant"}}, reg.Keys())

	s, err := reg.Build(stage.Args{StageName: "flux", ServiceName: "constant"})
	require.NoError(t, err)
	assert.Equal(t, "flux", s.StageName())

	_, err = reg.Build(stage.Args{StageName: "flux", ServiceName: "honda"})
	assert.ErrorIs(t, err, stage.ErrUnknownService)
}

func TestRegistryBuildValidates(t *testing.T) {
	t.Parallel()

	reg := stage.NewRegistry()
	reg.MustRegister("a", "nil", func(stage.Args) (stage.Stage, error) { return nil, nil })
	reg.MustRegister("a", "liar", func(args stage.Args) (stage.Stage, error) {
		args.StageName = "b"
		return newCounter(args)
	})
	boom := errors.New("boom")
	reg.MustRegister("a", "broken", func(stage.Args) (stage.Stage, error) { return nil, boom })

	_, err := reg.Build(stage.Args{StageName: "a", ServiceName: "nil"})
	assert.ErrorIs(t, err, stage.ErrNilStage)
	_, err = reg.Build(stage.Args{StageName: "a", ServiceName: "liar"})
	assert.ErrorIs(t, err, stage.ErrIdentity)
	_, err = reg.Build(stage.Args{StageName: "a", ServiceName: "broken"})
	assert.ErrorIs(t, err, boom)
}

func TestArgs(t *testing.T) {
	t.Parallel()

	def, err := config.Parse(`
[binning]
order = x
binnings = b
b.x = dict(num_bins=2, domain=[0, 1])

[pipeline]
order = s:svc

[stage:s]
service = svc
input_binning = b
threads = 4
use_transforms = yes
names = nue, numu
livetime = 2 units.year
param.a = 1
`)
	require.NoError(t, err)
	args := stage.ArgsFromDef(def.Stages[0])

	assert.Equal(t, "s", args.StageName)
	assert.Equal(t, "svc", args.ServiceName)
	assert.NotContains(t, args.Kwargs, "service")

	n, err := args.Int("threads", 1)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	n, err = args.Int("missing", 7)
	require.NoError(t, err)
	assert.Equal(t, 7, n)
	_, err = args.Int("names", 1)
	assert.ErrorIs(t, err, stage.ErrKwarg)

	b, err := args.Bool("use_transforms", false)
	require.NoError(t, err)
	assert.True(t, b)

	assert.Equal(t, []string{"nue", "numu"}, args.List("names"))
	assert.Equal(t, "fallback", args.Text("missing", "fallback"))

	q, err := args.Quantity("livetime")
	require.NoError(t, err)
	s, err := q.MagnitudeIn(units.MustParseUnit("s"))
	require.NoError(t, err)
	assert.Equal(t, 2*365*86400.0, s)

	bin, err := args.Binning("input_binning")
	require.NoError(t, err)
	assert.Equal(t, []int{2}, bin.Shape())
	_, err = args.Binning("output_binning")
	assert.ErrorIs(t, err, stage.ErrMissingBinning)

	require.NoError(t, args.RequireParams("a"))
	assert.ErrorIs(t, args.RequireParams("a", "b"), stage.ErrMissingParam)
}
