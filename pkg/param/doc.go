// Package param defines pipeline parameters, their priors and ordered parameter sets.
//
// Parameters are created once while parsing a configuration and afterwards only
// change through explicit value updates, typically coming from an optimizer via
// the pipeline's aggregate set. Every Set holds pointers: the aggregate view and
// a stage's own set observe the same *Param.
package param
