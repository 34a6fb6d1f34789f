package drawer

import (
	"time"

	"github.com/askiada/go-pisa/pkg/pipeline/measure"
)

// Drawer renders the stage chain of a pipeline.
type Drawer interface {
	// AddStage adds a stage, or a start/end marker, to the graph.
	AddStage(stageName string) error
	// AddLink links a stage to the one consuming its output.
	AddLink(parentStageName, childStageName string) error
	// Draw writes the graph to its destination.
	Draw() error
	// SetRunDuration labels a stage with the duration of a whole run.
	SetRunDuration(stageName string, d time.Duration) error
	// AddMeasure labels and colours stages and links with measured timings.
	AddMeasure(measure measure.Measure) error
}
