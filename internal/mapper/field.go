package mapper

import (
	"reflect"
	"strings"
	"sync"
)

// Field describes one mappable struct field.
type Field struct {
	Name      string // document key: the tag name, or the Go field name
	Index     []int  // path for reflect.Value.FieldByIndex
	Tagged    bool
	OmitEmpty bool
	Hint      string // hint=<text> option: emit the field as a """hint block
	HasHint   bool
}

// Info holds the mappable fields of a struct type in declaration order plus
// a key lookup index.
type Info struct {
	Fields []Field
	byKey  map[string]int
}

// infoCache avoids re-parsing tags for the same struct type on every call.
var infoCache sync.Map // map[reflect.Type]*Info

// TypeInfo parses the conl struct tags of t once and caches the result.
// Embedded structs are flattened in place; unexported fields and fields
// tagged `conl:"-"` are skipped. When names collide the first field seen
// keeps both its position and the key.
func TypeInfo(t reflect.Type) *Info {
	if v, ok := infoCache.Load(t); ok {
		return v.(*Info)
	}

	info := &Info{byKey: make(map[string]int)}
	var walk func(t reflect.Type, idx []int)
	walk = func(t reflect.Type, idx []int) {
		for i := 0; i < t.NumField(); i++ {
			sf := t.Field(i)
			path := append(append([]int{}, idx...), i)

			if sf.Anonymous {
				ft := sf.Type
				if ft.Kind() == reflect.Pointer {
					ft = ft.Elem()
				}
				// An untagged embedded struct contributes its fields
				// in place; a tagged one behaves as a named field.
				if ft.Kind() == reflect.Struct && sf.Tag.Get("conl") == "" {
					walk(ft, path)
					continue
				}
			}
			if !sf.IsExported() {
				continue
			}

			tag := sf.Tag.Get("conl")
			if tag == "-" {
				continue
			}

			f := Field{Index: path}
			name, opts, _ := strings.Cut(tag, ",")
			if name != "" {
				f.Name = name
				f.Tagged = true
			} else {
				f.Name = sf.Name
			}
			for opts != "" {
				var opt string
				opt, opts, _ = strings.Cut(opts, ",")
				switch {
				case opt == "omitempty":
					f.OmitEmpty = true
				case strings.HasPrefix(opt, "hint="):
					f.Hint = strings.TrimPrefix(opt, "hint=")
					f.HasHint = true
				}
			}

			if _, dup := info.byKey[f.Name]; dup {
				continue
			}
			pos := len(info.Fields)
			info.Fields = append(info.Fields, f)
			info.byKey[f.Name] = pos

			// Extra keys for unmarshaling lookups: the Go field name
			// for tagged fields, and lower-cased fallbacks. These
			// never displace an exact entry.
			for _, alias := range []string{sf.Name, strings.ToLower(f.Name), strings.ToLower(sf.Name)} {
				if _, ok := info.byKey[alias]; !ok {
					info.byKey[alias] = pos
				}
			}
		}
	}
	walk(t, nil)

	infoCache.Store(t, info)
	return info
}

// Lookup resolves a document key to a field: an exact tag or field-name
// match first, then the case-insensitive fallback.
func (in *Info) Lookup(key string) (*Field, bool) {
	if i, ok := in.byKey[key]; ok {
		return &in.Fields[i], true
	}
	if i, ok := in.byKey[strings.ToLower(key)]; ok {
		return &in.Fields[i], true
	}
	return nil, false
}
