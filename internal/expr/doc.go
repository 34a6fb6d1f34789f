// Package expr evaluates the small expression language found inside
// configuration values: parameter ranges such as "[nominal-5*sigma, nominal+5*sigma]"
// and binning keyword arguments such as "dict(num_bins=40, is_log=True, domain=[1,80]*units.GeV)".
//
// The evaluator is deliberately closed: identifiers resolve only against the
// Env supplied by the caller, unit references and the literals True, False and None.
// There are no function calls besides dict(...), no attribute access and no
// indexing.
package expr
