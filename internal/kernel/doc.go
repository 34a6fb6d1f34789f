// Package kernel holds numeric kernels shared by services.
package kernel
