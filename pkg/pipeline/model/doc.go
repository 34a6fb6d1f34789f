// Package model provides the data structures shared by the pipeline package
// and its lifecycle options. It describes the stages of a pipeline run and
// the hooks an option receives while the run progresses.
package model
