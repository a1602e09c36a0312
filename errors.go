package conl

import (
	"fmt"
	"reflect"
)

// A ParseError describes a lexical or structural failure in a document. The
// format is line-oriented, so errors carry the 1-based line number of the
// offending line and no column.
type ParseError struct {
	Line    int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("conl: line %d: %s", e.Line, e.Message)
}

// A MarshalerError represents an error from calling a MarshalCONL method.
type MarshalerError struct {
	Type reflect.Type
	Err  error
}

func (e *MarshalerError) Error() string {
	return "conl: error calling MarshalCONL for type " + e.Type.String() + ": " + e.Err.Error()
}

func (e *MarshalerError) Unwrap() error { return e.Err }

// An UnmarshalerError represents an error from calling an UnmarshalCONL or
// UnmarshalText method.
type UnmarshalerError struct {
	Type reflect.Type
	Err  error
}

func (e *UnmarshalerError) Error() string {
	return "conl: error calling unmarshaler for type " + e.Type.String() + ": " + e.Err.Error()
}

func (e *UnmarshalerError) Unwrap() error { return e.Err }
