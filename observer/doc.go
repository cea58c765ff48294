// Package observer defines the lifecycle events a pipeline emits while it
// consumes or materializes its sequence, and the Observer hook that receives
// them.
//
// Consuming terminals emit Closing before the first pull and Closed after
// the last; All and ToArray emit Caching and Cached around materialization.
// Observers are called synchronously on the goroutine running the terminal.
//
//	em := observer.NewEmitter()
//	off := em.On(observer.Closed, func(ctx context.Context, e observer.Event) {
//	    log.Printf("%s consumed %d elements", e.PipelineID, e.Count)
//	})
//	defer off()
//	p := pipeline.New(items, pipeline.WithObserver(em))
package observer
