package kernel

import (
	"fmt"
	"sync"

	"github.com/colenc/colenc/column"
	"github.com/colenc/colenc/endian"
	"github.com/colenc/colenc/errs"
	"github.com/colenc/colenc/format"
	"github.com/colenc/colenc/internal/options"
	"github.com/colenc/colenc/memo"
)

type config struct {
	initialSlots int
	closed       bool
}

// Option configures kernel construction.
type Option = options.Option[*config]

// WithInitialSlots sets the initial interning slot array size.
func WithInitialSlots(n int) Option {
	return options.NoError(func(c *config) {
		c.initialSlots = n
	})
}

// WithClosedDictionary starts the kernel with a frozen dictionary: Append
// reports ErrNewValueRejected instead of interning a value it has not
// seen. See also Kernel.Close for freezing after pre-population.
func WithClosedDictionary() Option {
	return options.NoError(func(c *config) {
		c.closed = true
	})
}

// Kernel hashes column chunks into a shared, growing dictionary. A mutex
// serializes Append, Flush and GetDictionary end-to-end, so independent
// goroutines may feed chunks destined for the same dictionary.
type Kernel struct {
	mu     sync.Mutex
	state  hashState
	action Action
}

// NewUniqueKernel creates a kernel that deduplicates values; the result is
// read via GetDictionary and Flush yields nothing.
func NewUniqueKernel(typ format.ColumnType, opts ...Option) (*Kernel, error) {
	return newKernel(typ, endian.GetLittleEndianEngine(), false, opts...)
}

// NewEncodeKernel creates a kernel that dictionary-encodes values: each
// Flush yields one int32 code chunk against the shared dictionary.
func NewEncodeKernel(typ format.ColumnType, engine endian.EndianEngine, opts ...Option) (*Kernel, error) {
	return newKernel(typ, engine, true, opts...)
}

func newKernel(typ format.ColumnType, engine endian.EndianEngine, encode bool, opts ...Option) (*Kernel, error) {
	cfg := &config{initialSlots: memo.DefaultInitialSlots}
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	state, err := newState(typ, cfg)
	if err != nil {
		return nil, err
	}

	var act Action = uniqueAction{}
	if encode {
		act = newEncodeAction(engine)
	}

	return &Kernel{state: state, action: act}, nil
}

func newState(typ format.ColumnType, cfg *config) (hashState, error) {
	memoOpts := []memo.Option{memo.WithInitialSlots(cfg.initialSlots)}

	switch typ.Physical {
	case format.TypeNull:
		return &nullOnlyState{typ: typ}, nil
	case format.TypeByteArray:
		return newVarBinaryState(typ, cfg.closed, memoOpts...)
	case format.TypeBoolean, format.TypeInt32, format.TypeInt64,
		format.TypeFloat, format.TypeDouble:
		return newFixedWidthState(typ, cfg.closed, memoOpts...)
	case format.TypeFixedLenByteArray:
		if typ.TypeLength <= 0 {
			return nil, fmt.Errorf("%w: fixed-length byte array width %d",
				errs.ErrTypeMismatch, typ.TypeLength)
		}
		return newFixedWidthState(typ, cfg.closed, memoOpts...)
	default:
		return nil, fmt.Errorf("%w: physical type %s", errs.ErrTypeMismatch, typ.Physical)
	}
}

// Append hashes one chunk into the shared dictionary. The chunk's type
// must match the kernel's.
func (k *Kernel) Append(d *column.Data) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	return k.state.append(d, k.action)
}

// Flush finalizes the per-chunk output accumulated since the previous
// Flush. Unique kernels return nil.
func (k *Kernel) Flush() (*column.Data, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	return k.action.flush()
}

// Close freezes the dictionary: subsequent Appends report
// ErrNewValueRejected on any value not already interned.
func (k *Kernel) Close() {
	k.mu.Lock()
	defer k.mu.Unlock()

	k.state.setClosed(true)
}

// GetDictionary materializes the distinct values seen so far, in
// first-seen order, as a column of the input type.
func (k *Kernel) GetDictionary() (*column.Data, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	return k.state.dictionary()
}

// Release returns pooled resources. The kernel must not be used
// afterwards.
func (k *Kernel) Release() {
	k.mu.Lock()
	defer k.mu.Unlock()

	k.state.release()
}

// Unique deduplicates chunked input into a dictionary column of the
// chunks' type.
func Unique(chunks ...*column.Data) (*column.Data, error) {
	if len(chunks) == 0 {
		return nil, fmt.Errorf("%w: no input chunks", errs.ErrTypeMismatch)
	}

	k, err := NewUniqueKernel(chunks[0].Type)
	if err != nil {
		return nil, err
	}
	defer k.Release()

	for _, chunk := range chunks {
		if err := k.Append(chunk); err != nil {
			return nil, err
		}
	}

	return k.GetDictionary()
}

// DictionaryEncode dictionary-encodes chunked input, returning the shared
// dictionary plus one int32 code chunk per input chunk.
func DictionaryEncode(chunks ...*column.Data) (*column.Data, []*column.Data, error) {
	if len(chunks) == 0 {
		return nil, nil, fmt.Errorf("%w: no input chunks", errs.ErrTypeMismatch)
	}

	k, err := NewEncodeKernel(chunks[0].Type, endian.GetLittleEndianEngine())
	if err != nil {
		return nil, nil, err
	}
	defer k.Release()

	codes := make([]*column.Data, 0, len(chunks))
	for _, chunk := range chunks {
		if err := k.Append(chunk); err != nil {
			return nil, nil, err
		}
		codeChunk, err := k.Flush()
		if err != nil {
			return nil, nil, err
		}
		codes = append(codes, codeChunk)
	}

	dict, err := k.GetDictionary()
	if err != nil {
		return nil, nil, err
	}

	return dict, codes, nil
}
