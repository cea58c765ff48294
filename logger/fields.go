package logger

import (
	"time"
)

// Field keys shared by the pipeline and its observers.
const (
	FieldComponent  = "component"
	FieldPipelineID = "pipeline_id"
	FieldEvent      = "event"
	FieldCount      = "count"
	FieldOperation  = "operation"
	FieldType       = "type"
	FieldError      = "error"
	FieldErrorCode  = "error_code"
	FieldDuration   = "duration_ms"
)

// Fields builds a map[string]interface{} from alternating key-value pairs.
// Pairs with a non-string key are skipped.
//
//	logger.Info("done", logger.Fields("op", "sum", "count", 42))
func Fields(kvs ...interface{}) map[string]interface{} {
	m := make(map[string]interface{}, len(kvs)/2)
	for i := 0; i+1 < len(kvs); i += 2 {
		if key, ok := kvs[i].(string); ok {
			m[key] = kvs[i+1]
		}
	}
	return m
}

// TerminalFields describes a terminal operation event.
func TerminalFields(event, op string) map[string]interface{} {
	return map[string]interface{}{
		FieldEvent:     event,
		FieldOperation: op,
	}
}

// WithResult adds the element count and elapsed time of a finished
// terminal to fields.
func WithResult(fields map[string]interface{}, count int, d time.Duration) map[string]interface{} {
	if fields == nil {
		fields = make(map[string]interface{}, 2)
	}
	fields[FieldCount] = count
	fields[FieldDuration] = d.Milliseconds()
	return fields
}

// MergeWithError adds an error field to an existing map.
func MergeWithError(fields map[string]interface{}, err error) map[string]interface{} {
	if fields == nil {
		fields = make(map[string]interface{})
	}
	fields[FieldError] = err.Error()
	return fields
}
