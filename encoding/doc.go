// Package encoding implements the byte-exact value codecs of the columnar
// format: the hybrid run-length/bit-packing codec used for dictionary codes,
// and the delta family (block-packed integers, delta-length byte arrays,
// prefix-delta byte arrays).
//
// All multi-byte integers are little-endian. Encoders write into
// caller-provided or pooled buffers and report exhaustion explicitly;
// decoders never return silent partial results: a stream that cannot
// produce the requested number of values fails with errs.ErrEndOfStream.
package encoding
