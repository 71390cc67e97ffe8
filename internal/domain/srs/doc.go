// Package srs implements the memory-model scheduler that predicts an item's
// stability and difficulty from a grading signal and derives the next due
// date that keeps recall probability near the retention target. The scheduler
// is stateless per call: it transforms one MemoryState record given one
// rating at one instant, and callers replace their stored record wholesale
// with the result.
package srs
