package conl

import (
	"bytes"
	"encoding"
	"fmt"
	"io"
	"reflect"
	"strconv"

	"github.com/KimNorgaard/go-conl/internal/formatter"
	"github.com/KimNorgaard/go-conl/internal/mapper"
)

// Decoder reads and decodes a document from an input stream.
type Decoder struct {
	r    io.Reader
	opts []Option
}

const defaultMaxDepth = 1000

// NewDecoder returns a new decoder that reads from r.
//
// Functional options can be provided to configure decoding, such as setting
// a maximum depth with MaxDepth.
func NewDecoder(r io.Reader, opts ...Option) *Decoder {
	return &Decoder{r: r, opts: opts}
}

// Decode reads the document from its input and stores it in the value
// pointed to by v. See the documentation for Unmarshal for the conversion
// rules.
//
// The format is line-oriented and documents are small; the whole input is
// read before parsing.
func (d *Decoder) Decode(v any) error {
	if d.r == nil {
		return fmt.Errorf("conl: Decode(nil reader)")
	}
	data, err := io.ReadAll(d.r)
	if err != nil {
		return err
	}
	return Unmarshal(data, v, d.opts...)
}

type decodeState struct {
	depth int
}

var (
	tableType = reflect.TypeOf(Table{})
	valueType = reflect.TypeOf((*Value)(nil)).Elem()
)

func (ds *decodeState) mapValue(val Value, rv reflect.Value) error {
	ds.depth--
	if ds.depth <= 0 {
		return fmt.Errorf("conl: reached max recursion depth")
	}
	defer func() { ds.depth++ }()

	// Raw-tree targets take the node as-is.
	if rv.Type() == valueType && rv.CanSet() {
		rv.Set(reflect.ValueOf(val))
		return nil
	}
	if t, ok := val.(*Table); ok && rv.CanSet() {
		switch rv.Type() {
		case reflect.PointerTo(tableType):
			rv.Set(reflect.ValueOf(t))
			return nil
		case tableType:
			rv.Set(reflect.ValueOf(*t))
			return nil
		}
	}

	handled, err := ds.tryCustomUnmarshal(val, rv)
	if err != nil || handled {
		return err
	}

	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			rv.Set(reflect.New(rv.Type().Elem()))
		}
		rv = rv.Elem()
		handled, err = ds.tryCustomUnmarshal(val, rv)
		if err != nil || handled {
			return err
		}
	}

	if rv.Kind() == reflect.Interface {
		return ds.mapInterface(val, rv)
	}
	if !rv.CanSet() {
		return fmt.Errorf("conl: cannot set value of type %s", rv.Type())
	}

	switch node := val.(type) {
	case Scalar:
		return ds.mapScalar(string(node), rv)
	case Multiline:
		// The hint is a rendering instruction, not data.
		return ds.mapScalar(node.Text, rv)
	case Array:
		switch rv.Kind() {
		case reflect.Slice:
			return ds.mapSlice(node, rv)
		case reflect.Array:
			return ds.mapArray(node, rv)
		default:
			return fmt.Errorf("conl: cannot unmarshal array into Go value of type %s", rv.Type())
		}
	case TableArray:
		if rv.Kind() != reflect.Slice {
			return fmt.Errorf("conl: cannot unmarshal table array into Go value of type %s", rv.Type())
		}
		return ds.mapTableSlice(node, rv)
	case *Table:
		switch rv.Kind() {
		case reflect.Struct:
			return ds.mapStruct(node, rv)
		case reflect.Map:
			return ds.mapMap(node, rv)
		default:
			return fmt.Errorf("conl: cannot unmarshal table into Go value of type %s", rv.Type())
		}
	default:
		return fmt.Errorf("conl: cannot unmarshal value of type %T", node)
	}
}

// tryCustomUnmarshal attempts a custom unmarshaler (Unmarshaler or
// encoding.TextUnmarshaler) on rv. It returns true when one was found and
// used, in which case default unmarshaling must not proceed.
func (ds *decodeState) tryCustomUnmarshal(val Value, rv reflect.Value) (bool, error) {
	if !rv.CanAddr() {
		return false, nil
	}
	pv := rv.Addr()
	if !pv.CanInterface() {
		return false, nil
	}

	if u, ok := pv.Interface().(Unmarshaler); ok {
		if err := u.UnmarshalCONL(valueBytes(val)); err != nil {
			return true, &UnmarshalerError{Type: pv.Type(), Err: err}
		}
		return true, nil
	}

	if u, ok := pv.Interface().(encoding.TextUnmarshaler); ok {
		var s string
		switch n := val.(type) {
		case Scalar:
			s = string(n)
		case Multiline:
			s = n.Text
		default:
			// TextUnmarshaler applies to scalar values only.
			return false, nil
		}
		if err := u.UnmarshalText([]byte(s)); err != nil {
			return true, &UnmarshalerError{Type: pv.Type(), Err: err}
		}
		return true, nil
	}

	return false, nil
}

// valueBytes renders a node the way it would appear in a document: scalars
// as their text, tables as a whole document, array elements as their lines.
func valueBytes(val Value) []byte {
	switch n := val.(type) {
	case Scalar:
		return []byte(n)
	case Multiline:
		return []byte(n.Text)
	case *Table:
		return Serialize(n)
	default:
		var buf bytes.Buffer
		f := formatter.New(&buf)
		switch a := val.(type) {
		case Array:
			for _, item := range a {
				_ = f.Item(quoteScalar(item))
			}
		case TableArray:
			for _, t := range a {
				_ = f.Marker()
				f.Indent()
				_ = writeTable(f, t)
				f.Outdent()
			}
		}
		return buf.Bytes()
	}
}

func (ds *decodeState) mapScalar(s string, rv reflect.Value) error {
	switch rv.Kind() {
	case reflect.String:
		rv.SetString(s)
		return nil
	case reflect.Bool:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return fmt.Errorf("conl: cannot unmarshal %q into Go value of type %s", s, rv.Type())
		}
		rv.SetBool(b)
		return nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil || rv.OverflowInt(n) {
			return fmt.Errorf("conl: cannot unmarshal %q into Go value of type %s", s, rv.Type())
		}
		rv.SetInt(n)
		return nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		n, err := strconv.ParseUint(s, 10, 64)
		if err != nil || rv.OverflowUint(n) {
			return fmt.Errorf("conl: cannot unmarshal %q into Go value of type %s", s, rv.Type())
		}
		rv.SetUint(n)
		return nil
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || rv.OverflowFloat(f) {
			return fmt.Errorf("conl: cannot unmarshal %q into Go value of type %s", s, rv.Type())
		}
		rv.SetFloat(f)
		return nil
	default:
		return fmt.Errorf("conl: cannot unmarshal scalar into Go value of type %s", rv.Type())
	}
}

func (ds *decodeState) mapSlice(a Array, rv reflect.Value) error {
	s := reflect.MakeSlice(rv.Type(), len(a), len(a))
	for i, item := range a {
		if err := ds.mapValue(Scalar(item), s.Index(i)); err != nil {
			return err
		}
	}
	rv.Set(s)
	return nil
}

func (ds *decodeState) mapArray(a Array, rv reflect.Value) error {
	if rv.Len() != len(a) {
		return fmt.Errorf("conl: cannot unmarshal array of length %d into Go array of length %d", len(a), rv.Len())
	}
	for i, item := range a {
		if err := ds.mapValue(Scalar(item), rv.Index(i)); err != nil {
			return err
		}
	}
	return nil
}

func (ds *decodeState) mapTableSlice(ta TableArray, rv reflect.Value) error {
	s := reflect.MakeSlice(rv.Type(), len(ta), len(ta))
	for i, t := range ta {
		if err := ds.mapValue(t, s.Index(i)); err != nil {
			return err
		}
	}
	rv.Set(s)
	return nil
}

func (ds *decodeState) mapMap(t *Table, rv reflect.Value) error {
	mapType := rv.Type()
	if mapType.Key().Kind() != reflect.String {
		return fmt.Errorf("conl: cannot unmarshal table into map with non-string key type %s", mapType.Key())
	}
	if rv.IsNil() {
		rv.Set(reflect.MakeMap(mapType))
	} else {
		for _, k := range rv.MapKeys() {
			rv.SetMapIndex(k, reflect.Value{}) // the zero Value deletes the key
		}
	}
	elemType := mapType.Elem()
	for key, val := range t.All() {
		newVal := reflect.New(elemType).Elem()
		if err := ds.mapValue(val, newVal); err != nil {
			return err
		}
		kv := reflect.New(mapType.Key()).Elem()
		kv.SetString(key)
		rv.SetMapIndex(kv, newVal)
	}
	return nil
}

func (ds *decodeState) mapStruct(t *Table, rv reflect.Value) error {
	info := mapper.TypeInfo(rv.Type())
	for key, val := range t.All() {
		f, ok := info.Lookup(key)
		if !ok {
			// Unknown keys are ignored; record layers decide defaults.
			continue
		}
		fv := fieldByIndexAlloc(rv, f.Index)
		if fv.IsValid() && fv.CanSet() {
			if err := ds.mapValue(val, fv); err != nil {
				return err
			}
		}
	}
	return nil
}

// fieldByIndexAlloc walks an index path, allocating nil embedded pointers on
// the way down.
func fieldByIndexAlloc(rv reflect.Value, idx []int) reflect.Value {
	for _, i := range idx {
		if rv.Kind() == reflect.Pointer {
			if rv.IsNil() {
				if !rv.CanSet() {
					return reflect.Value{}
				}
				rv.Set(reflect.New(rv.Type().Elem()))
			}
			rv = rv.Elem()
		}
		rv = rv.Field(i)
	}
	return rv
}

func (ds *decodeState) mapInterface(val Value, rv reflect.Value) error {
	if rv.NumMethod() != 0 {
		return fmt.Errorf("conl: cannot unmarshal into non-empty interface %s", rv.Type())
	}
	var concrete reflect.Value
	switch val.(type) {
	case Scalar, Multiline:
		var s string
		concrete = reflect.ValueOf(&s).Elem()
	case Array, TableArray:
		var a []any
		concrete = reflect.ValueOf(&a).Elem()
	case *Table:
		var m map[string]any
		concrete = reflect.ValueOf(&m).Elem()
	default:
		return fmt.Errorf("conl: cannot determine concrete type for %T", val)
	}
	if err := ds.mapValue(val, concrete); err != nil {
		return err
	}
	rv.Set(concrete)
	return nil
}
