package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Shape errors, raised only in strict modes.
const (
	// ErrCodeCombineSizeMismatch indicates keys and values of a strict combine differ in length.
	ErrCodeCombineSizeMismatch ErrorCode = "COMBINE_SIZE_MISMATCH"
	// ErrCodeMismatch indicates a zipped key is absent from the other operand.
	ErrCodeMismatch ErrorCode = "MISMATCH"
)

// Parameter errors
const (
	// ErrCodeNotAnIterator indicates an operand that cannot be iterated.
	ErrCodeNotAnIterator ErrorCode = "NOT_AN_ITERATOR"
	// ErrCodeArithmetic indicates an arithmetic parameter error such as a zero chunk size.
	ErrCodeArithmetic ErrorCode = "ARITHMETIC_ERROR"
	// ErrCodeEmptySequence indicates a reduction that is undefined for an empty sequence.
	ErrCodeEmptySequence ErrorCode = "EMPTY_SEQUENCE"
)

// Dispatch and ownership errors
const (
	// ErrCodeBadMethodCall indicates an invalid higher-order proxy access.
	ErrCodeBadMethodCall ErrorCode = "BAD_METHOD_CALL"
	// ErrCodeSequenceConsumed indicates a pipeline whose sequence was moved into another pipeline.
	ErrCodeSequenceConsumed ErrorCode = "SEQUENCE_CONSUMED"
	// ErrCodeInvalidInput indicates malformed external input (CLI, decoding).
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	// ErrCodeInternal indicates an unexpected internal failure.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

var fatalCodes = map[ErrorCode]bool{
	ErrCodeArithmetic:       true,
	ErrCodeBadMethodCall:    true,
	ErrCodeSequenceConsumed: true,
	ErrCodeInternal:         true,
}

// IsFatalCode reports whether the code denotes a programming error rather
// than a data-dependent shape error.
func IsFatalCode(code ErrorCode) bool {
	return fatalCodes[code]
}
