// Package maps holds the binned histograms that stages exchange.
package maps
