// Package stage defines the contract every pipeline stage satisfies and the
// registry that maps a (role, service) pair to the factory building it.
package stage
