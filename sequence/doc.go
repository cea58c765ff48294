// Package sequence provides the lazy key/value streams that pipelines are
// built on.
//
// A Sequence is a pull-based Iterator of Pair values. Nothing is produced
// ahead of demand: every call to Next yields at most one element, so a
// Sequence may be infinite or side-effecting. A Sequence has exactly one
// reader; wrap it in a Cursor when an operation needs to look ahead or hand
// back an element it pulled.
//
// Map is the ordered snapshot a Sequence materializes into. Keys are
// normalized to int or string the way associative arrays do it, and a later
// Set on an existing key replaces the value while keeping its position.
//
// # Sources
//
// Of turns ordinary Go values into a Sequence:
//
//	seq, ok := sequence.Of([]string{"a", "b"})     // 0=>a, 1=>b
//	seq, ok = sequence.Of(map[string]int{"x": 1})   // sorted keys
//	seq, ok = sequence.Of(maps.All(m))              // iter.Seq2
//
// # Serialization
//
// Map encodes lists (keys 0..n-1 in order) as JSON arrays and everything
// else as JSON objects with the insertion order preserved. DecodeJSON and
// DecodeYAML produce *Map values for objects so that order survives a round
// trip.
package sequence
