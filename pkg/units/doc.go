// Package units provides the small physical-unit and uncertainty capability the
// configuration parser relies on.
//
// A Quantity couples a nominal magnitude, a symmetric standard deviation and a
// Unit. Units are scale factors over four base dimensions (length, mass, time,
// angle), which is enough to express energies, distances, livetimes and angles
// as they appear in pipeline configurations. Arithmetic propagates uncertainties
// to first order assuming uncorrelated operands.
package units
