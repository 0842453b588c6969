// Package kernel implements whole-array hashing: "unique" deduplicates a
// columnar array into its dictionary, "dictionary-encode" additionally
// produces a code array per input chunk. Both share the memo probing core
// with the dictionary encoder.
package kernel

import (
	"github.com/colenc/colenc/column"
	"github.com/colenc/colenc/column/bitmap"
	"github.com/colenc/colenc/endian"
	"github.com/colenc/colenc/format"
)

// Action is the per-position strategy selected at kernel construction. The
// hashing states call exactly one observe method per input position, in
// input order.
type Action interface {
	// reserve announces n upcoming positions.
	reserve(n int)
	// observeFound records a position resolving to an existing code.
	observeFound(code int32)
	// observeNotFound records a position resolving to a new code.
	observeNotFound(code int32)
	// observeNull records a null position.
	observeNull()
	// flush finalizes the chunk accumulated since the previous flush, or
	// returns nil when the action produces no per-chunk output.
	flush() (*column.Data, error)
}

// uniqueAction records nothing per position; the result of a unique kernel
// is its dictionary.
type uniqueAction struct{}

func (uniqueAction) reserve(int)                  {}
func (uniqueAction) observeFound(int32)           {}
func (uniqueAction) observeNotFound(int32)        {}
func (uniqueAction) observeNull()                 {}
func (uniqueAction) flush() (*column.Data, error) { return nil, nil }

// encodeAction builds one int32 code chunk per flush, with a validity
// bitmap marking null input positions. The dictionary keeps growing across
// chunks; codes in later chunks may reference entries introduced earlier.
type encodeAction struct {
	engine    endian.EndianEngine
	codes     []int32
	validity  []byte
	nullCount int
}

func newEncodeAction(engine endian.EndianEngine) *encodeAction {
	return &encodeAction{engine: engine}
}

func (a *encodeAction) reserve(n int) {
	need := bitmap.BytesFor(len(a.codes) + n)
	for len(a.validity) < need {
		a.validity = append(a.validity, 0)
	}
}

func (a *encodeAction) observeFound(code int32) {
	bitmap.SetBit(a.validity, len(a.codes))
	a.codes = append(a.codes, code)
}

func (a *encodeAction) observeNotFound(code int32) {
	a.observeFound(code)
}

func (a *encodeAction) observeNull() {
	a.codes = append(a.codes, 0)
	a.nullCount++
}

func (a *encodeAction) flush() (*column.Data, error) {
	values := make([]byte, 4*len(a.codes))
	for i, code := range a.codes {
		a.engine.PutUint32(values[4*i:], uint32(code))
	}

	var validity []byte
	if a.nullCount > 0 {
		validity = a.validity[:bitmap.BytesFor(len(a.codes))]
	}

	out := &column.Data{
		Type:      format.ColumnType{Physical: format.TypeInt32},
		Len:       len(a.codes),
		NullCount: a.nullCount,
		Validity:  validity,
		Values:    values,
	}

	a.codes = nil
	a.validity = nil
	a.nullCount = 0

	return out, nil
}
