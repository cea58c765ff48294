// Package errors provides the typed errors surfaced by enumerable pipelines.
// Every failure carries a machine-readable ErrorCode; sentinels such as
// ErrMismatch match any error with the same code through errors.Is.
package errors
