// Package config turns a pipeline configuration into a Definition.
//
// A configuration has a "binning" section (dimension order, binning names and
// one "<binning>.<dim>" keyword expression per dimension), a "pipeline" section
// whose "order" lists "stage:service" tokens in execution order, and one
// "stage:<name>" section per stage. Inside a stage section, "param.<name>" keys
// declare parameters (with optional .fixed, .prior, .prior.data and .range
// modifiers), keys containing "binning" reference a registered binning by name,
// and every other key is handed to the stage verbatim.
//
// Configurations can be written as INI, TOML or YAML; all three decode into the
// same ordered File.
package config
