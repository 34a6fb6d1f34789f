package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParamName(t *testing.T) {
	t.Parallel()

	tcs := []struct {
		key, selector string
		want          string
		ok            bool
	}{
		{key: "param.x", want: "x", ok: true},
		{key: "param.x", selector: "nh", want: "x", ok: true},
		{key: "param.nh.x", selector: "nh", want: "x", ok: true},
		{key: "param.ih.x", selector: "nh"},
		{key: "param.nh.x"},
		{key: "param.x.fixed"},
		{key: "param.nh.x.range", selector: "nh"},
	}
	for _, tc := range tcs {
		got, ok := paramName(tc.key, tc.selector)
		assert.Equal(t, tc.ok, ok, tc.key)
		assert.Equal(t, tc.want, got, tc.key)
	}
}

func TestIsModifier(t *testing.T) {
	t.Parallel()

	f, err := ParseINI([]byte("[s]\nparam.x = 1\nparam.x.prior.data = a.json\nparam.y.range = [0, 1]\n"))
	require.NoError(t, err)
	sec, _ := f.Section("s")

	assert.True(t, isModifier(sec, "param.x.prior.data"))
	assert.False(t, isModifier(sec, "param.y.range"))
	assert.False(t, isModifier(sec, "param.x"))
}

func TestFileLoaderCaches(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "priors.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"a": {"knots": [0, 1], "coeffs": [2], "deg": 0, "units": "GeV"}}`), 0o600))

	l := NewFileLoader(dir)
	data, err := l.Load("priors.json")
	require.NoError(t, err)
	assert.Equal(t, SplineData{Knots: []float64{0, 1}, Coeffs: []float64{2}, Deg: 0, Units: "GeV"}, data["a"])

	require.NoError(t, os.Remove(path))
	again, err := l.Load(path)
	require.NoError(t, err)
	assert.Equal(t, data, again)

	_, err = l.Load("missing.json")
	assert.Error(t, err)
}
