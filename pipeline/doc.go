// Package pipeline provides Pipeline, a lazy, chainable processor for
// key/value sequences.
//
// A Pipeline owns exactly one sequence. Every combinator (Map, Filter,
// Chunk, Diff...) replaces it with a newly composed sequence and returns the
// same Pipeline, so calls chain. No element is produced until a terminal
// (All, Sum, Each, First...) pulls, and then only as many as it needs:
// sequences may be infinite.
//
// Unless a Pipeline is cached, its sequence is read once. All, ToArray and
// Cache snapshot the elements into a *sequence.Map; a cached Pipeline
// replays the snapshot for every later terminal. Passing an uncached
// Pipeline to another Pipeline moves its sequence: the operand is left
// consumed and its terminals fail with SEQUENCE_CONSUMED.
//
// Errors that depend on the data (zip mismatches, strict combine) surface
// when the offending element is pulled. They are sticky: once a terminal
// fails the Pipeline stays exhausted.
//
// # Usage
//
//	total, err := pipeline.New(orders).
//	    Where("status", "paid").
//	    Sum(ctx, "amount")
//
//	groups, err := pipeline.New(ids).Chunk(100).ToArray(ctx)
//
// Observers receive lifecycle events around consuming terminals:
//
//	p := pipeline.New(items,
//	    pipeline.WithObserver(observability.NewLoggingObserver(log)),
//	    pipeline.WithLogger(log))
package pipeline
