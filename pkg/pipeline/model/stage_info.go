package model

// StageInfo identifies a stage during a run.
type StageInfo struct {
	// Index is the position in the pipeline order, -1 for the start and end
	// markers.
	Index   int
	Name    string
	Service string
	// RunID is empty outside of a run.
	RunID string
}

// Label returns "name:service", or the name alone for markers.
func (s *StageInfo) Label() string {
	if s.Service == "" {
		return s.Name
	}
	return s.Name + ":" + s.Service
}

var (
	StartStage = &StageInfo{Index: -1, Name: "start"}
	EndStage   = &StageInfo{Index: -1, Name: "end"}
)
