package observability

import (
	"context"

	"github.com/apokryfos/Enumerable/logger"
	"github.com/apokryfos/Enumerable/observer"
)

// LoggingObserver logs lifecycle events. Finished terminals are logged at
// debug level, failed ones at warn.
type LoggingObserver struct {
	log *logger.Logger
}

// NewLoggingObserver returns an Observer writing to log. A nil log discards.
func NewLoggingObserver(log *logger.Logger) *LoggingObserver {
	if log == nil {
		log = logger.NewNop()
	}
	return &LoggingObserver{log: log}
}

// Notify implements observer.Observer.
func (o *LoggingObserver) Notify(_ context.Context, e observer.Event) {
	log := o.log.WithPipeline(e.PipelineID)
	fields := logger.TerminalFields(string(e.Name), e.Operation)
	if !e.Finished() {
		log.Debug("terminal started", fields)
		return
	}
	fields = logger.WithResult(fields, e.Count, e.Duration)
	if _, code := outcome(e); code != "" {
		fields[logger.FieldErrorCode] = code
		log.Warn("terminal failed", logger.MergeWithError(fields, e.Err))
		return
	}
	log.Debug("terminal finished", fields)
}
