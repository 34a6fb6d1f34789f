package drawer_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askiada/go-pisa/pkg/pipeline/drawer"
	"github.com/askiada/go-pisa/pkg/pipeline/measure"
	"github.com/askiada/go-pisa/pkg/pipeline/model"
)

func stages() []*model.StageInfo {
	return []*model.StageInfo{
		{Index: 0, Name: "flux", Service: "constant"},
		{Index: 1, Name: "aeff", Service: "simple"},
		{Index: 2, Name: "reco", Service: "gaussian"},
	}
}

func TestDOTDrawerWritesChainInOrder(t *testing.T) {
	t.Parallel()

	d := drawer.NewDOTDrawer("unused.dot", drawer.WithGraphAttribute("rankdir", "LR"))
	require.NoError(t, d.AddStage("flux"))
	require.NoError(t, d.AddStage("aeff"))
	require.NoError(t, d.AddLink("flux", "aeff"))
	assert.Error(t, d.AddStage("flux"))
	assert.Error(t, d.AddLink("aeff", "flux"), "cycles are rejected")

	var buf bytes.Buffer
	require.NoError(t, d.Write(&buf))
	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "strict digraph {"))
	assert.Contains(t, out, `rankdir="LR";`)
	assert.Contains(t, out, `"flux" -> "aeff"`)
	assert.Less(t, strings.Index(out, `"flux" [`), strings.Index(out, `"aeff" [`))
}

func TestPipelineDrawer(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "pipeline.dot")
	m := measure.NewDefaultMeasure()
	opts := []model.PipelineOption{
		measure.PipelineMeasure(m),
		drawer.PipelineDrawer(drawer.NewDOTDrawer(path), m),
	}
	infos := stages()
	for _, opt := range opts {
		require.NoError(t, opt.New(infos))
	}

	parent := model.StartStage
	for i, s := range infos {
		for _, opt := range opts {
			require.NoError(t, opt.BeforeStage(parent, s))
			require.NoError(t, opt.AfterStage(parent, s, time.Duration(i)*time.Millisecond, time.Duration(i+1)*2*time.Millisecond))
		}
		parent = s
	}
	for _, opt := range opts {
		require.NoError(t, opt.AfterStage(parent, model.EndStage, 0, 0))
		require.NoError(t, opt.Finish("run", 42*time.Millisecond))
	}

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(raw)

	start := strings.Index(out, `"start" -> "flux"`)
	middle := strings.Index(out, `"flux" -> "aeff"`)
	last := strings.Index(out, `"reco" -> "end"`)
	require.NotEqual(t, -1, start)
	assert.Less(t, start, middle)
	assert.Less(t, middle, last)

	assert.Contains(t, out, "total: 42ms")
	assert.Contains(t, out, `<FONT POINT-SIZE="12">2ms</FONT>`)
	assert.Contains(t, out, `<FONT POINT-SIZE="12">6ms</FONT>`)
	assert.Contains(t, out, `label="1ms"`)
	assert.Contains(t, out, `color="#`)
}

func TestPipelineDrawerRejectsUnknownStage(t *testing.T) {
	t.Parallel()

	opt := drawer.PipelineDrawer(drawer.NewDOTDrawer(filepath.Join(t.TempDir(), "x.dot")), nil)
	infos := stages()
	infos[2].Name = "flux"
	assert.Error(t, opt.New(infos))
}
