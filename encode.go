package conl

import (
	"encoding"
	"fmt"
	"io"
	"reflect"
	"slices"
	"strconv"
	"strings"

	"github.com/KimNorgaard/go-conl/internal/formatter"
	"github.com/KimNorgaard/go-conl/internal/mapper"
)

// Encoder writes documents to an output stream.
type Encoder struct {
	w    io.Writer
	opts []Option
}

// NewEncoder returns a new encoder that writes to w.
func NewEncoder(w io.Writer, opts ...Option) *Encoder {
	return &Encoder{w: w, opts: opts}
}

// Encode writes the encoding of v to the stream. The document root must be
// table-shaped: a struct, a map with string keys, a *Table tree, or a
// Marshaler producing a document.
//
// Structs emit their fields in declaration order, which is what keeps
// version-controlled documents diffable; maps emit their keys sorted. Fields
// the grammar cannot express are omitted: nil pointers, empty slices and
// maps, and nested structs whose fields would all be omitted.
func (e *Encoder) Encode(v any) error {
	o, err := newOptions(e.opts)
	if err != nil {
		return err
	}
	es := &encodeState{f: formatter.New(e.w), depth: o.maxDepth}
	return es.encodeBody(reflect.ValueOf(v))
}

type encodeState struct {
	f     *formatter.Formatter
	depth int
}

// encodeBody emits the entries of a table-shaped value at the current
// indentation depth. It serves both the document root and nested blocks.
func (es *encodeState) encodeBody(v reflect.Value) error {
	es.depth--
	if es.depth <= 0 {
		return fmt.Errorf("conl: reached max recursion depth")
	}
	defer func() { es.depth++ }()

	if !v.IsValid() {
		return fmt.Errorf("conl: cannot marshal nil as a table")
	}
	if m, ok := marshalerOf(v); ok {
		t, err := marshalCustom(v.Type(), m)
		if err != nil {
			return err
		}
		return writeTable(es.f, t)
	}
	for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return fmt.Errorf("conl: cannot marshal nil as a table")
		}
		v = v.Elem()
	}
	if v.Type() == tableType {
		t := v.Interface().(Table)
		return writeTable(es.f, &t)
	}
	if val, ok := v.Interface().(Value); ok {
		t, ok := val.(*Table)
		if !ok {
			return fmt.Errorf("conl: cannot marshal %T as a table", val)
		}
		return writeTable(es.f, t)
	}

	switch v.Kind() {
	case reflect.Struct:
		return es.encodeStructBody(v)
	case reflect.Map:
		return es.encodeMapBody(v)
	default:
		return fmt.Errorf("conl: cannot marshal %s as a table", v.Type())
	}
}

func (es *encodeState) encodeStructBody(v reflect.Value) error {
	info := mapper.TypeInfo(v.Type())
	for i := range info.Fields {
		f := &info.Fields[i]
		fv := fieldByIndex(v, f.Index)
		if !fv.IsValid() {
			continue // reached through a nil embedded pointer
		}
		if f.OmitEmpty && isEmptyValue(fv) {
			continue
		}
		if err := es.encodeEntry(f.Name, fv, f.Hint, f.HasHint); err != nil {
			return err
		}
	}
	return nil
}

func (es *encodeState) encodeMapBody(v reflect.Value) error {
	keyType := v.Type().Key()
	if keyType.Kind() != reflect.String {
		return fmt.Errorf("conl: map key type must be a string, got %s", keyType)
	}
	keys := make([]string, 0, v.Len())
	for _, k := range v.MapKeys() {
		keys = append(keys, k.String())
	}
	slices.Sort(keys)
	for _, k := range keys {
		kv := reflect.New(keyType).Elem()
		kv.SetString(k)
		if err := es.encodeEntry(k, v.MapIndex(kv), "", false); err != nil {
			return err
		}
	}
	return nil
}

// encodeEntry emits one key and its value in whatever line shape the value
// calls for.
func (es *encodeState) encodeEntry(key string, v reflect.Value, hint string, hasHint bool) error {
	es.depth--
	if es.depth <= 0 {
		return fmt.Errorf("conl: reached max recursion depth")
	}
	defer func() { es.depth++ }()

	// Absent values are omitted entirely; the grammar has no null.
	if (v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface) && v.IsNil() {
		return nil
	}

	if m, ok := marshalerOf(v); ok {
		t, err := marshalCustom(v.Type(), m)
		if err != nil {
			return err
		}
		return writeEntry(es.f, key, t)
	}
	if s, ok, err := textMarshal(v); err != nil {
		return err
	} else if ok {
		return es.f.KeyValue(quoteScalar(key), quoteScalar(s))
	}

	for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return nil
		}
		v = v.Elem()
	}

	if v.Type() == tableType {
		t := v.Interface().(Table)
		return writeEntry(es.f, key, &t)
	}
	if val, ok := v.Interface().(Value); ok {
		return writeEntry(es.f, key, val)
	}

	if hasHint && v.Kind() == reflect.String {
		return es.writeHinted(key, hint, v.String())
	}

	switch v.Kind() {
	case reflect.String:
		return es.f.KeyValue(quoteScalar(key), quoteScalar(v.String()))
	case reflect.Bool:
		return es.f.KeyValue(quoteScalar(key), strconv.FormatBool(v.Bool()))
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return es.f.KeyValue(quoteScalar(key), strconv.FormatInt(v.Int(), 10))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return es.f.KeyValue(quoteScalar(key), strconv.FormatUint(v.Uint(), 10))
	case reflect.Float32, reflect.Float64:
		return es.f.KeyValue(quoteScalar(key), formatFloat(v))
	case reflect.Slice, reflect.Array:
		return es.encodeSeq(key, v)
	case reflect.Struct, reflect.Map:
		if es.emptySection(v) {
			return nil
		}
		if err := es.f.BareKey(quoteScalar(key)); err != nil {
			return err
		}
		es.f.Indent()
		err := es.encodeBody(v)
		es.f.Outdent()
		return err
	default:
		return fmt.Errorf("conl: unsupported type for marshaling: %s", v.Type())
	}
}

// encodeSeq emits a slice or array: scalar elements as `= value` items,
// table-shaped elements as `=` marker blocks. Empty sequences are omitted,
// since a bare key with no children reads back as an empty table.
func (es *encodeState) encodeSeq(key string, v reflect.Value) error {
	n := v.Len()
	if n == 0 {
		return nil
	}

	texts := make([]string, 0, n)
	scalars := true
	for i := 0; i < n; i++ {
		s, ok, err := es.scalarText(v.Index(i))
		if err != nil {
			return err
		}
		if !ok {
			scalars = false
			break
		}
		texts = append(texts, s)
	}

	if err := es.f.BareKey(quoteScalar(key)); err != nil {
		return err
	}
	es.f.Indent()
	defer es.f.Outdent()

	if scalars {
		for _, s := range texts {
			if err := es.f.Item(quoteScalar(s)); err != nil {
				return err
			}
		}
		return nil
	}
	for i := 0; i < n; i++ {
		if err := es.f.Marker(); err != nil {
			return err
		}
		es.f.Indent()
		err := es.encodeBody(v.Index(i))
		es.f.Outdent()
		if err != nil {
			return err
		}
	}
	return nil
}

// scalarText resolves a sequence element to its scalar text. ok is false for
// table-shaped elements.
func (es *encodeState) scalarText(v reflect.Value) (string, bool, error) {
	if (v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface) && v.IsNil() {
		return "", false, fmt.Errorf("conl: cannot marshal nil array element")
	}
	if _, ok := marshalerOf(v); ok {
		return "", false, nil
	}
	if s, ok, err := textMarshal(v); err != nil || ok {
		return s, ok, err
	}
	for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return "", false, fmt.Errorf("conl: cannot marshal nil array element")
		}
		v = v.Elem()
	}
	if val, ok := v.Interface().(Value); ok {
		switch n := val.(type) {
		case Scalar:
			return string(n), true, nil
		case Multiline:
			return n.Text, true, nil
		default:
			return "", false, nil
		}
	}
	switch v.Kind() {
	case reflect.String:
		return v.String(), true, nil
	case reflect.Bool:
		return strconv.FormatBool(v.Bool()), true, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(v.Int(), 10), true, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return strconv.FormatUint(v.Uint(), 10), true, nil
	case reflect.Float32, reflect.Float64:
		return formatFloat(v), true, nil
	case reflect.Struct, reflect.Map:
		return "", false, nil
	default:
		return "", false, fmt.Errorf("conl: unsupported array element type: %s", v.Type())
	}
}

// writeHinted emits a string field carrying a hint= tag option as a
// multi-line block. Text that would not survive a block (it is empty once
// normalized) falls back to a quoted scalar.
func (es *encodeState) writeHinted(key, hint, s string) error {
	text := normalizeBlock(s)
	if text == "" {
		return es.f.KeyValue(quoteScalar(key), quoteScalar(s))
	}
	return es.f.Multiline(quoteScalar(key), hint, text)
}

// normalizeBlock prepares free text for multi-line emission, mirroring what
// a re-read produces: CRLF and CR become LF, whitespace-only lines become
// empty, and leading/trailing blank lines are dropped.
func normalizeBlock(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	lines := strings.Split(s, "\n")
	for i, ln := range lines {
		if strings.TrimSpace(ln) == "" {
			lines[i] = ""
		}
	}
	start, end := 0, len(lines)
	for start < end && lines[start] == "" {
		start++
	}
	for end > start && lines[end-1] == "" {
		end--
	}
	return strings.Join(lines[start:end], "\n")
}

// marshalerOf finds a Marshaler implementation on v or on a pointer to it.
// Nil pointers and interfaces are not eligible; their fields are omitted.
func marshalerOf(v reflect.Value) (Marshaler, bool) {
	if !v.IsValid() || ((v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface) && v.IsNil()) {
		return nil, false
	}
	if v.Type().NumMethod() > 0 && v.CanInterface() {
		if m, ok := v.Interface().(Marshaler); ok {
			return m, true
		}
	}
	if v.Kind() != reflect.Pointer {
		pv := reflect.Value{}
		if v.CanAddr() {
			pv = v.Addr()
		} else {
			// Non-addressable values get a pointer to a copy.
			pv = reflect.New(v.Type())
			pv.Elem().Set(v)
		}
		if pv.Type().NumMethod() > 0 && pv.CanInterface() {
			if m, ok := pv.Interface().(Marshaler); ok {
				return m, true
			}
		}
	}
	return nil, false
}

// marshalCustom runs a Marshaler and parses its output, which must be a
// whole document.
func marshalCustom(t reflect.Type, m Marshaler) (*Table, error) {
	b, err := m.MarshalCONL()
	if err != nil {
		return nil, &MarshalerError{Type: t, Err: err}
	}
	tbl, err := Parse(b)
	if err != nil {
		return nil, &MarshalerError{Type: t, Err: fmt.Errorf("invalid document: %w", err)}
	}
	return tbl, nil
}

// textMarshal resolves an encoding.TextMarshaler on v or a pointer to it.
func textMarshal(v reflect.Value) (string, bool, error) {
	if !v.IsValid() || ((v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface) && v.IsNil()) {
		return "", false, nil
	}
	run := func(tm encoding.TextMarshaler) (string, bool, error) {
		b, err := tm.MarshalText()
		if err != nil {
			return "", true, &MarshalerError{Type: v.Type(), Err: err}
		}
		return string(b), true, nil
	}
	if v.Type().NumMethod() > 0 && v.CanInterface() {
		if tm, ok := v.Interface().(encoding.TextMarshaler); ok {
			return run(tm)
		}
	}
	if v.Kind() != reflect.Pointer {
		var pv reflect.Value
		if v.CanAddr() {
			pv = v.Addr()
		} else {
			pv = reflect.New(v.Type())
			pv.Elem().Set(v)
		}
		if pv.Type().NumMethod() > 0 && pv.CanInterface() {
			if tm, ok := pv.Interface().(encoding.TextMarshaler); ok {
				return run(tm)
			}
		}
	}
	return "", false, nil
}

// fieldByIndex walks an index path, stopping at nil embedded pointers.
func fieldByIndex(v reflect.Value, idx []int) reflect.Value {
	for _, i := range idx {
		if v.Kind() == reflect.Pointer {
			if v.IsNil() {
				return reflect.Value{}
			}
			v = v.Elem()
		}
		v = v.Field(i)
	}
	return v
}

func formatFloat(v reflect.Value) string {
	bits := 64
	if v.Kind() == reflect.Float32 {
		bits = 32
	}
	return strconv.FormatFloat(v.Float(), 'g', -1, bits)
}

// isEmptyValue reports whether the value v is empty for omitempty purposes.
func isEmptyValue(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Array, reflect.Map, reflect.Slice, reflect.String:
		return v.Len() == 0
	case reflect.Bool:
		return !v.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return v.Uint() == 0
	case reflect.Float32, reflect.Float64:
		return v.Float() == 0
	case reflect.Interface, reflect.Pointer:
		return v.IsNil()
	}
	return false
}

// emptySection reports whether a struct or map would emit no entries at all,
// in which case its key is omitted rather than left dangling.
func (es *encodeState) emptySection(v reflect.Value) bool {
	return emptySectionDepth(v, es.depth)
}

func emptySectionDepth(v reflect.Value, depth int) bool {
	if depth <= 0 {
		return false // let the emission path report the depth error
	}
	for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return true
		}
		v = v.Elem()
	}
	if _, ok := marshalerOf(v); ok {
		return false
	}
	if _, ok, _ := textMarshal(v); ok {
		return false
	}
	if v.Type() == tableType {
		// A Table field always emits at least its bare key.
		return false
	}
	if val, ok := v.Interface().(Value); ok {
		switch n := val.(type) {
		case *Table:
			return n == nil
		case Array:
			return len(n) == 0
		case TableArray:
			return len(n) == 0
		case Multiline:
			return n.Text == ""
		default:
			return false
		}
	}
	switch v.Kind() {
	case reflect.Map:
		return v.Len() == 0
	case reflect.Slice, reflect.Array:
		return v.Len() == 0
	case reflect.Struct:
		info := mapper.TypeInfo(v.Type())
		for i := range info.Fields {
			f := &info.Fields[i]
			fv := fieldByIndex(v, f.Index)
			if !fv.IsValid() {
				continue
			}
			if f.OmitEmpty && isEmptyValue(fv) {
				continue
			}
			if (fv.Kind() == reflect.Pointer || fv.Kind() == reflect.Interface) && fv.IsNil() {
				continue
			}
			switch fv.Kind() {
			case reflect.Slice, reflect.Array:
				if fv.Len() == 0 {
					continue
				}
			case reflect.Struct, reflect.Map, reflect.Pointer, reflect.Interface:
				if emptySectionDepth(fv, depth-1) {
					continue
				}
			}
			return false
		}
		return true
	default:
		return false
	}
}
