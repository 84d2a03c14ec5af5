// Package services orchestrates the analytics pipeline. The report service
// owns the only state that survives between runs: the most recently uploaded
// raw dataset and the most recently produced report set. Every run rebuilds
// the full report set from raw data and swaps it in atomically; nothing is
// updated incrementally.
package services
