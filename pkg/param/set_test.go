package param_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askiada/go-pisa/pkg/param"
	"github.com/askiada/go-pisa/pkg/units"
)

func TestSetAddAndOrder(t *testing.T) {
	t.Parallel()

	a, b := mustParam(t, "a", 1), mustParam(t, "b", 2)
	s, err := param.NewSet(b, a)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, s.Names())
	assert.Equal(t, 2, s.Len())

	assert.ErrorIs(t, s.Add(mustParam(t, "a", 3)), param.ErrDuplicateParam)
	assert.ErrorIs(t, s.Add(nil), param.ErrNilParam)

	_, err = param.NewSet(a, a)
	assert.ErrorIs(t, err, param.ErrDuplicateParam)

	got, ok := s.Get("a")
	require.True(t, ok)
	assert.Same(t, a, got)
	assert.False(t, s.Has("c"))
}

func TestSetExtendIsLiveView(t *testing.T) {
	t.Parallel()

	a, b, c := mustParam(t, "a", 1), mustParam(t, "b", 2), mustParam(t, "c", 3)
	s1, _ := param.NewSet(a, b)
	s2, _ := param.NewSet(b, c)

	agg, _ := param.NewSet()
	agg.Extend(s1)
	agg.Extend(s2)
	assert.Equal(t, []string{"a", "b", "c"}, agg.Names())

	p, _ := agg.Get("b")
	require.NoError(t, p.SetValue(units.New(20, gev)))
	fromStage, _ := s1.Get("b")
	assert.Equal(t, 20.0, fromStage.Value.Magnitude)
}

func TestSetUpdateExisting(t *testing.T) {
	t.Parallel()

	a, b := mustParam(t, "a", 1), mustParam(t, "b", 2)
	s, _ := param.NewSet(a, b)

	update, _ := param.NewSet(mustParam(t, "b", 5), mustParam(t, "z", 9))
	n, err := s.UpdateExisting(update)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 1.0, a.Value.Magnitude)
	assert.Equal(t, 5.0, b.Value.Magnitude)
	assert.False(t, s.Has("z"))

	bad, _ := param.NewSet(mustParam(t, "a", 5, param.WithRange(4, 6)))
	a.Range = &param.Range{Low: 0, High: 2}
	_, err = s.UpdateExisting(bad)
	assert.ErrorIs(t, err, param.ErrOutOfRange)
}

func TestSetFreeAndFixed(t *testing.T) {
	t.Parallel()

	a := mustParam(t, "a", 1, param.WithFixed(false))
	b := mustParam(t, "b", 2)
	s, _ := param.NewSet(a, b)

	assert.Equal(t, []string{"a"}, s.Free().Names())
	assert.Equal(t, []string{"b"}, s.Fixed().Names())

	free, _ := s.Free().Get("a")
	assert.Same(t, a, free)
}

func TestSetHashTracksValues(t *testing.T) {
	t.Parallel()

	a := mustParam(t, "a", 1)
	s, _ := param.NewSet(a)
	h1 := s.Hash()
	assert.Equal(t, h1, s.Hash())

	require.NoError(t, a.SetValue(units.New(2, gev)))
	assert.NotEqual(t, h1, s.Hash())

	var empty *param.Set
	assert.Equal(t, 0, empty.Len())
	assert.Nil(t, empty.Names())
}
