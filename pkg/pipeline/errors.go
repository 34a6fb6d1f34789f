package pipeline

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	ErrDefinitionMustBeSet = errors.New("definition must be set")
	ErrRegistryMustBeSet   = errors.New("registry must be set")
	ErrParamConflict       = errors.New("conflicting param definitions")
	ErrDuplicateStage      = errors.New("duplicate stage")
	ErrStageIndex          = errors.New("stage index out of range")
	ErrEmptyRange          = errors.New("empty stage range")
	ErrUnknownStage        = errors.New("unknown stage")
	ErrHookOutput          = errors.New("unsupported output for hook")
)

// ConstructionError reports a stage that could not be instantiated. No
// pipeline is returned alongside it.
type ConstructionError struct {
	Stage   string
	Service string
	Err     error
}

func (e *ConstructionError) Error() string {
	return fmt.Sprintf("construct stage %s:%s: %v", e.Stage, e.Service, e.Err)
}

func (e *ConstructionError) Unwrap() error { return e.Err }
