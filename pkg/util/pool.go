package util

import "runtime"

// GetOptimalPoolSize returns the number of parsers per language and of scan
// workers: 2x CPU cores, clamped to [4, 32].
//
// Parsing is CGO-bound, so oversubscribing cores keeps them busy while a
// worker waits on a file read. The parser pool and the worker pool must use
// the same size or workers block waiting for a parser.
func GetOptimalPoolSize() int {
	return clampPoolSize(runtime.NumCPU() * 2)
}

// GetOptimalPoolSizeWithOverride returns override when positive.
func GetOptimalPoolSizeWithOverride(override int) int {
	if override > 0 {
		return override
	}
	return GetOptimalPoolSize()
}

func clampPoolSize(n int) int {
	if n < 4 {
		return 4
	}
	if n > 32 {
		return 32
	}
	return n
}
