package conl_test

import (
	"bytes"
	"io"
	"testing"

	"github.com/KimNorgaard/go-conl"
	"github.com/KimNorgaard/go-conl/internal/testutil"
	"github.com/stretchr/testify/require"
)

func TestUnmarshal_FieldResolution(t *testing.T) {
	type record struct {
		Name   string `conl:"name"`
		Slug   string
		Hidden string `conl:"-"`
		secret string
	}

	t.Run("tagged and untagged fields", func(t *testing.T) {
		var r record
		require.NoError(t, conl.Unmarshal([]byte("name = x\nSlug = y\n"), &r))
		require.Equal(t, record{Name: "x", Slug: "y"}, r)
	})

	t.Run("lookups fall back to case-insensitive", func(t *testing.T) {
		var r record
		require.NoError(t, conl.Unmarshal([]byte("NAME = x\nslug = y\n"), &r))
		require.Equal(t, record{Name: "x", Slug: "y"}, r)
	})

	t.Run("unknown keys are ignored", func(t *testing.T) {
		var r record
		require.NoError(t, conl.Unmarshal([]byte("name = x\nno_such_field = y\n"), &r))
		require.Equal(t, record{Name: "x"}, r)
	})

	t.Run("skipped fields stay zero", func(t *testing.T) {
		var r record
		require.NoError(t, conl.Unmarshal([]byte("Hidden = x\nsecret = y\n"), &r))
		require.Equal(t, record{}, r)
		require.Empty(t, r.secret)
	})
}

type RecordMeta struct {
	ID int `conl:"id"`
}

func TestUnmarshal_EmbeddedStructs(t *testing.T) {
	t.Run("embedded fields flatten", func(t *testing.T) {
		type entry struct {
			RecordMeta
			Name string `conl:"name"`
		}
		var e entry
		require.NoError(t, conl.Unmarshal([]byte("id = 7\nname = x\n"), &e))
		require.Equal(t, entry{RecordMeta: RecordMeta{ID: 7}, Name: "x"}, e)
	})

	t.Run("nil embedded pointers are allocated", func(t *testing.T) {
		type entry struct {
			*RecordMeta
			Name string `conl:"name"`
		}
		var e entry
		require.NoError(t, conl.Unmarshal([]byte("id = 7\nname = x\n"), &e))
		require.NotNil(t, e.RecordMeta)
		require.Equal(t, 7, e.ID)
	})

	t.Run("a tagged embedded struct is a named section", func(t *testing.T) {
		type entry struct {
			RecordMeta `conl:"meta"`
		}
		var e entry
		require.NoError(t, conl.Unmarshal([]byte("meta\n  id = 7\n"), &e))
		require.Equal(t, 7, e.ID)
	})
}

func TestUnmarshal_Pointers(t *testing.T) {
	t.Run("nil pointers are allocated on demand", func(t *testing.T) {
		type record struct {
			Count **int `conl:"count"`
		}
		var r record
		require.NoError(t, conl.Unmarshal([]byte("count = 3\n"), &r))
		require.Equal(t, 3, **r.Count)
	})

	t.Run("existing pointers are written through", func(t *testing.T) {
		n := 1
		r := struct {
			Count *int `conl:"count"`
		}{Count: &n}
		require.NoError(t, conl.Unmarshal([]byte("count = 3\n"), &r))
		require.Same(t, &n, r.Count)
		require.Equal(t, 3, n)
	})
}

func TestUnmarshal_Collections(t *testing.T) {
	t.Run("slices of scalars", func(t *testing.T) {
		var r struct {
			Ints    []int     `conl:"ints"`
			Floats  []float64 `conl:"floats"`
			Strings []string  `conl:"strings"`
		}
		src := "ints\n  = 1\n  = 2\nfloats\n  = 0.5\nstrings\n  = a\n  = b c\n"
		require.NoError(t, conl.Unmarshal([]byte(src), &r))
		require.Equal(t, []int{1, 2}, r.Ints)
		require.Equal(t, []float64{0.5}, r.Floats)
		require.Equal(t, []string{"a", "b c"}, r.Strings)
	})

	t.Run("fixed arrays require an exact length", func(t *testing.T) {
		var ok struct {
			A [2]string `conl:"a"`
		}
		require.NoError(t, conl.Unmarshal([]byte("a\n  = x\n  = y\n"), &ok))
		require.Equal(t, [2]string{"x", "y"}, ok.A)

		var short struct {
			A [3]string `conl:"a"`
		}
		err := conl.Unmarshal([]byte("a\n  = x\n  = y\n"), &short)
		require.EqualError(t, err, "conl: cannot unmarshal array of length 2 into Go array of length 3")
	})

	t.Run("table arrays decode into struct slices", func(t *testing.T) {
		type product struct {
			Title string  `conl:"title"`
			Price float64 `conl:"price"`
		}
		var r struct {
			Products []product `conl:"products"`
		}
		src := "products\n  =\n    title = Single\n    price = 0.49\n  =\n    title = Sheet\n"
		require.NoError(t, conl.Unmarshal([]byte(src), &r))
		require.Equal(t, []product{{Title: "Single", Price: 0.49}, {Title: "Sheet"}}, r.Products)
	})

	t.Run("maps of scalars", func(t *testing.T) {
		var m map[string]float64
		require.NoError(t, conl.Unmarshal([]byte("2016-01-17 = 0.47\n2017-01-22 = 0.49\n"), &m))
		require.Equal(t, map[string]float64{"2016-01-17": 0.47, "2017-01-22": 0.49}, m)
	})

	t.Run("maps with named key types", func(t *testing.T) {
		type slug string
		var m map[slug]string
		require.NoError(t, conl.Unmarshal([]byte("a = 1\n"), &m))
		require.Equal(t, map[slug]string{"a": "1"}, m)
	})

	t.Run("decoding replaces existing map contents", func(t *testing.T) {
		m := map[string]string{"old": "x"}
		require.NoError(t, conl.Unmarshal([]byte("new = y\n"), &m))
		require.Equal(t, map[string]string{"new": "y"}, m)
	})

	t.Run("nested maps", func(t *testing.T) {
		var m map[string]map[string]string
		require.NoError(t, conl.Unmarshal([]byte("credits\n  artist = x\n"), &m))
		require.Equal(t, map[string]map[string]string{"credits": {"artist": "x"}}, m)
	})

	t.Run("map keys must be strings", func(t *testing.T) {
		var m map[int]string
		err := conl.Unmarshal([]byte("a = 1\n"), &m)
		require.EqualError(t, err, "conl: cannot unmarshal table into map with non-string key type int")
	})
}

func TestUnmarshal_ScalarConversions(t *testing.T) {
	t.Run("supported kinds", func(t *testing.T) {
		var r struct {
			S   string  `conl:"s"`
			B   bool    `conl:"b"`
			I   int     `conl:"i"`
			I8  int8    `conl:"i8"`
			U   uint    `conl:"u"`
			F32 float32 `conl:"f32"`
			F64 float64 `conl:"f64"`
		}
		src := "s = text\nb = true\ni = -3\ni8 = 127\nu = 42\nf32 = 0.5\nf64 = 2.75\n"
		require.NoError(t, conl.Unmarshal([]byte(src), &r))
		require.Equal(t, "text", r.S)
		require.True(t, r.B)
		require.Equal(t, -3, r.I)
		require.Equal(t, int8(127), r.I8)
		require.Equal(t, uint(42), r.U)
		require.Equal(t, float32(0.5), r.F32)
		require.Equal(t, 2.75, r.F64)
	})

	t.Run("conversion failures", func(t *testing.T) {
		tests := []struct {
			name    string
			input   string
			target  any
			wantErr string
		}{
			{"text into int", "k = abc\n", &struct {
				K int `conl:"k"`
			}{}, `conl: cannot unmarshal "abc" into Go value of type int`},
			{"overflowing int8", "k = 128\n", &struct {
				K int8 `conl:"k"`
			}{}, `conl: cannot unmarshal "128" into Go value of type int8`},
			{"negative uint", "k = -1\n", &struct {
				K uint `conl:"k"`
			}{}, `conl: cannot unmarshal "-1" into Go value of type uint`},
			{"text into bool", "k = yes\n", &struct {
				K bool `conl:"k"`
			}{}, `conl: cannot unmarshal "yes" into Go value of type bool`},
			{"malformed float", "k = 1.2.3\n", &struct {
				K float64 `conl:"k"`
			}{}, `conl: cannot unmarshal "1.2.3" into Go value of type float64`},
		}
		for _, tc := range tests {
			t.Run(tc.name, func(t *testing.T) {
				err := conl.Unmarshal([]byte(tc.input), tc.target)
				require.EqualError(t, err, tc.wantErr)
			})
		}
	})
}

func TestUnmarshal_MultilineValues(t *testing.T) {
	t.Run("text lands in string fields, the hint does not", func(t *testing.T) {
		var r struct {
			About string `conl:"about"`
		}
		require.NoError(t, conl.Unmarshal([]byte("about = \"\"\"md\n  a\n\n  b\n"), &r))
		require.Equal(t, "a\n\nb", r.About)
	})

	t.Run("text converts like any scalar", func(t *testing.T) {
		var r struct {
			N int `conl:"n"`
		}
		require.NoError(t, conl.Unmarshal([]byte("n = \"\"\"\n  42\n"), &r))
		require.Equal(t, 42, r.N)
	})
}

func TestUnmarshal_Interfaces(t *testing.T) {
	t.Run("a document becomes nested any values", func(t *testing.T) {
		src := "name = x\n" +
			"items\n  = a\n  = b\n" +
			"credits\n  artist = y\n" +
			"products\n  =\n    t = 1\n"
		var v any
		require.NoError(t, conl.Unmarshal([]byte(src), &v))
		require.Equal(t, map[string]any{
			"name":     "x",
			"items":    []any{"a", "b"},
			"credits":  map[string]any{"artist": "y"},
			"products": []any{map[string]any{"t": "1"}},
		}, v)
	})

	t.Run("non-empty interfaces are rejected", func(t *testing.T) {
		var r struct {
			K io.Reader `conl:"k"`
		}
		err := conl.Unmarshal([]byte("k = x\n"), &r)
		require.EqualError(t, err, "conl: cannot unmarshal into non-empty interface io.Reader")
	})
}

type innerRecord struct {
	A string `conl:"a"`
}

func TestUnmarshal_ShapeMismatches(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		target  any
		wantErr string
	}{
		{"scalar into struct", "k = v\n", &struct {
			K innerRecord `conl:"k"`
		}{}, "conl: cannot unmarshal scalar into Go value of type conl_test.innerRecord"},
		{"array into int", "k\n  = a\n", &struct {
			K int `conl:"k"`
		}{}, "conl: cannot unmarshal array into Go value of type int"},
		{"table into string", "k\n  a = 1\n", &struct {
			K string `conl:"k"`
		}{}, "conl: cannot unmarshal table into Go value of type string"},
		{"table array into map", "k\n  =\n    a = 1\n", &struct {
			K map[string]string `conl:"k"`
		}{}, "conl: cannot unmarshal table array into Go value of type map[string]string"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := conl.Unmarshal([]byte(tc.input), tc.target)
			require.EqualError(t, err, tc.wantErr)
		})
	}
}

func BenchmarkDecode(b *testing.B) {
	input, err := testutil.ReadTestData("large.conl")
	require.NoError(b, err)

	b.ReportAllocs()
	b.SetBytes(int64(len(input)))

	var v any
	r := bytes.NewReader(input)

	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		r.Seek(0, 0)
		dec := conl.NewDecoder(r)
		if err := dec.Decode(&v); err != nil {
			b.Fatalf("Decode failed during benchmark: %v", err)
		}
	}
}
