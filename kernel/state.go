package kernel

import (
	"fmt"

	"github.com/colenc/colenc/column"
	"github.com/colenc/colenc/errs"
	"github.com/colenc/colenc/format"
	"github.com/colenc/colenc/memo"
)

// hashState is the interning specialization behind a kernel, selected by
// the column's physical layout.
type hashState interface {
	// append observes every position of one chunk against the action.
	append(d *column.Data, act Action) error
	// dictionary materializes the distinct values seen so far as a column
	// of the input's type. The result owns its buffers.
	dictionary() (*column.Data, error)
	// setClosed freezes or unfreezes dictionary growth.
	setClosed(closed bool)
	// release returns pooled resources.
	release()
}

// lookup resolves one value against a table, honoring closed mode: a
// closed table never grows, and a miss is a caller contract violation.
func lookup[T any](table *memo.Table[T], v T, closed bool, act Action) error {
	if closed {
		code, found := table.Get(v)
		if !found {
			return fmt.Errorf("%w: closed dictionary", errs.ErrNewValueRejected)
		}
		act.observeFound(code)

		return nil
	}

	code, found := table.GetOrInsert(v)
	if found {
		act.observeFound(code)
	} else {
		act.observeNotFound(code)
	}

	return nil
}

// fixedWidthState interns fixed-width values by their raw bytes so one
// implementation covers every scalar width plus fixed-length byte arrays.
type fixedWidthState struct {
	typ    format.ColumnType
	table  *memo.Table[format.ByteArray]
	closed bool
}

func newFixedWidthState(typ format.ColumnType, closed bool, opts ...memo.Option) (*fixedWidthState, error) {
	table, err := memo.NewFixedBinary(typ.ByteWidth(), opts...)
	if err != nil {
		return nil, err
	}

	return &fixedWidthState{typ: typ, table: table, closed: closed}, nil
}

func (s *fixedWidthState) append(d *column.Data, act Action) error {
	act.reserve(d.Len)
	for i := 0; i < d.Len; i++ {
		if !d.IsValid(i) {
			act.observeNull()
			continue
		}
		if err := lookup(s.table, d.FixedWidthAt(i), s.closed, act); err != nil {
			return err
		}
	}

	return nil
}

func (s *fixedWidthState) dictionary() (*column.Data, error) {
	width := s.typ.ByteWidth()
	values := make([]byte, s.table.Len()*width)

	pos := 0
	s.table.VisitValues(0, func(v format.ByteArray) {
		pos += copy(values[pos:], v)
	})

	return &column.Data{Type: s.typ, Len: s.table.Len(), Values: values}, nil
}

func (s *fixedWidthState) setClosed(closed bool) {
	s.closed = closed
}

func (s *fixedWidthState) release() {
	s.table.Release()
}

// varBinaryState interns variable-length byte strings.
type varBinaryState struct {
	typ    format.ColumnType
	table  *memo.Table[format.ByteArray]
	closed bool
}

func newVarBinaryState(typ format.ColumnType, closed bool, opts ...memo.Option) (*varBinaryState, error) {
	table, err := memo.NewBinary(opts...)
	if err != nil {
		return nil, err
	}

	return &varBinaryState{typ: typ, table: table, closed: closed}, nil
}

func (s *varBinaryState) append(d *column.Data, act Action) error {
	act.reserve(d.Len)
	for i := 0; i < d.Len; i++ {
		if !d.IsValid(i) {
			act.observeNull()
			continue
		}
		if err := lookup(s.table, d.ByteArrayAt(i), s.closed, act); err != nil {
			return err
		}
	}

	return nil
}

func (s *varBinaryState) dictionary() (*column.Data, error) {
	n := s.table.Len()
	offsets := make([]int32, 1, n+1)

	var total int
	s.table.VisitValues(0, func(v format.ByteArray) {
		total += len(v)
		offsets = append(offsets, int32(total))
	})

	bytes := make([]byte, total)
	pos := 0
	s.table.VisitValues(0, func(v format.ByteArray) {
		pos += copy(bytes[pos:], v)
	})

	return &column.Data{Type: s.typ, Len: n, ValueOffsets: offsets, Bytes: bytes}, nil
}

func (s *varBinaryState) setClosed(closed bool) {
	s.closed = closed
}

func (s *varBinaryState) release() {
	s.table.Release()
}

// nullOnlyState handles columns whose every position is null: no table is
// needed and the dictionary is empty.
type nullOnlyState struct {
	typ format.ColumnType
}

func (s *nullOnlyState) append(d *column.Data, act Action) error {
	act.reserve(d.Len)
	for i := 0; i < d.Len; i++ {
		act.observeNull()
	}

	return nil
}

func (s *nullOnlyState) dictionary() (*column.Data, error) {
	return &column.Data{Type: s.typ}, nil
}

func (s *nullOnlyState) setClosed(bool) {}

func (s *nullOnlyState) release() {}
