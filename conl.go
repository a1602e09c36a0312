package conl

import (
	"bytes"
	"fmt"
	"reflect"
)

// Marshaler is the interface implemented by types that
// can marshal themselves into valid CONL.
//
// MarshalCONL returns a complete document: a sequence of lines with
// key-value pairs at depth zero. It is the right interface for
// table-shaped types. Types whose encoding is a single scalar should
// implement [encoding.TextMarshaler] instead.
type Marshaler interface {
	MarshalCONL() ([]byte, error)
}

// Unmarshaler is the interface implemented by types that
// can unmarshal a CONL value of themselves.
//
// The input is the value as it is rendered in a document: the decoded
// text for scalars and multi-line blocks, a complete document for
// tables, and the element lines for arrays.
type Unmarshaler interface {
	UnmarshalCONL([]byte) error
}

// Marshal returns the CONL encoding of v.
func Marshal(v any, opts ...Option) ([]byte, error) {
	var buf bytes.Buffer
	e := NewEncoder(&buf, opts...)
	if err := e.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal parses the CONL-encoded data and stores the result
// in the value pointed to by v.
func Unmarshal(data []byte, v any, opts ...Option) error {
	o, err := newOptions(opts)
	if err != nil {
		return err
	}

	tbl, err := parse(data, o.maxDepth)
	if err != nil {
		return err
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return fmt.Errorf("conl: Unmarshal(non-pointer %T or nil)", v)
	}

	ds := &decodeState{depth: o.maxDepth}
	return ds.mapValue(tbl, rv.Elem())
}
