// Package pipeline builds and runs a chain of stages described by a parsed
// configuration.
//
// New instantiates every stage of a definition in declared order through a
// stage registry. Parameters declared identically by several stages are
// shared: updating one updates it everywhere. GetOutputs then runs the
// stages sequentially, handing the output of each stage to the next one. A
// run can be restricted to one stage or truncated after a stage, and can
// record the output of every stage it ran.
//
// Post-stage hooks transform a stage output before it is handed on. By
// default the output of the "aeff" stage is downsampled by 10.
//
// The pipeline is not safe for concurrent use: callers serialise runs and
// parameter updates.
package pipeline
