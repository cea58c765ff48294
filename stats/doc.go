// Package stats implements the reductions behind pipeline statistics: a
// numeric accumulator for sum and average, a min-heap median and an
// encounter-ordered frequency table for mode and value counts.
package stats
