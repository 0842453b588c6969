// Package errs defines the sentinel errors shared across colenc packages.
//
// Callers should use errors.Is to classify failures:
//
//	n, err := decoder.Decode(out)
//	if errors.Is(err, errs.ErrEndOfStream) {
//	    // truncated or corrupt input
//	}
//
// Errors returned by colenc wrap these sentinels with additional context
// via fmt.Errorf("%w: ...").
package errs

import "errors"

var (
	// ErrEndOfStream indicates a decoder could not produce the requested
	// number of values or codes from the given bytes. Decoders never return
	// a silent partial result; a short stream always surfaces this error.
	ErrEndOfStream = errors.New("unexpected end of stream")

	// ErrCapacityExceeded indicates a caller-provided output buffer is too
	// small. Callers are expected to retry with a buffer sized by the
	// corresponding size-estimation method.
	ErrCapacityExceeded = errors.New("output buffer capacity exceeded")

	// ErrTypeMismatch indicates a codec was constructed against an
	// incompatible physical type, e.g. a delta decoder for a non-integer
	// column.
	ErrTypeMismatch = errors.New("physical type mismatch")

	// ErrUnsupportedDictionary indicates dictionary encoding was requested
	// for a physical type that does not support it (boolean).
	ErrUnsupportedDictionary = errors.New("dictionary encoding not supported for type")

	// ErrNewValueRejected indicates a hash kernel configured with a closed
	// dictionary encountered a value not already present. This is a contract
	// violation by the caller, not a retryable condition.
	ErrNewValueRejected = errors.New("encountered new dictionary value")

	// ErrInvalidBlockConfig indicates a delta block configuration whose
	// block size is not evenly divisible by its mini-block count.
	ErrInvalidBlockConfig = errors.New("invalid delta block configuration")

	// ErrInvalidData indicates structurally malformed input that is not a
	// plain truncation, e.g. a dictionary code outside the dictionary range.
	ErrInvalidData = errors.New("invalid encoded data")
)
