// Package binning provides immutable one- and multi-dimensional binnings and
// the registry that builds them from a configuration's binning section.
//
// Binnings are shared by pointer between every stage that references the same
// name; none of their methods mutate the receiver.
package binning
