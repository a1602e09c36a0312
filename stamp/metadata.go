package stamp

import (
	"fmt"
	"strconv"

	"github.com/KimNorgaard/go-conl"
)

// EncodeMetadata renders one stamp record in canonical form. The default
// stamp type is left implicit, the way existing records are written.
func EncodeMetadata(m *Metadata) ([]byte, error) {
	if m == nil {
		return nil, fmt.Errorf("stamp: cannot encode nil metadata")
	}
	rec := *m
	if rec.Type == TypeStamp {
		rec.Type = ""
	}
	return conl.Marshal(rec)
}

// DecodeMetadata reads one stamp record. Identity fields must be present
// and well formed: name and slug as scalars, year as a number. Cosmetic
// fields fall back to their documented defaults, so older records with
// missing or malformed values still load.
func DecodeMetadata(data []byte) (*Metadata, error) {
	tbl, err := conl.Parse(data)
	if err != nil {
		return nil, err
	}

	m := &Metadata{Forever: true, Type: TypeStamp}

	name, ok := scalarAt(tbl, "name")
	if !ok {
		return nil, fmt.Errorf("stamp: missing required key %q", "name")
	}
	m.Name = name

	slug, ok := scalarAt(tbl, "slug")
	if !ok {
		return nil, fmt.Errorf("stamp: missing required key %q", "slug")
	}
	m.Slug = slug

	rawYear, ok := scalarAt(tbl, "year")
	if !ok {
		return nil, fmt.Errorf("stamp: missing required key %q", "year")
	}
	year, err := strconv.Atoi(rawYear)
	if err != nil {
		return nil, fmt.Errorf("stamp: invalid year %q", rawYear)
	}
	m.Year = year

	// Records written before api_slug existed reuse the slug.
	if s, ok := scalarAt(tbl, "api_slug"); ok {
		m.APISlug = s
	} else {
		m.APISlug = m.Slug
	}
	m.URL, _ = scalarAt(tbl, "url")
	m.IssueDate, _ = scalarAt(tbl, "issue_date")
	m.IssueLocation, _ = scalarAt(tbl, "issue_location")
	m.Rate = rateAt(tbl, "rate")
	if s, ok := scalarAt(tbl, "rate_type"); ok {
		m.RateType = ParseRateType(s)
	}
	m.ExtraCost = rateAt(tbl, "extra_cost")
	if s, ok := scalarAt(tbl, "forever"); ok {
		m.Forever = s == "true"
	}
	if s, ok := scalarAt(tbl, "type"); ok {
		m.Type = ParseType(s)
	}
	m.Series, _ = scalarAt(tbl, "series")
	m.StampImages = stringsAt(tbl, "stamp_images")
	m.SheetImage, _ = scalarAt(tbl, "sheet_image")
	m.BackgroundColor, _ = scalarAt(tbl, "background_color")
	if sub, ok := tableAt(tbl, "credits"); ok {
		m.Credits = decodeCredits(sub)
	}
	m.About, _ = scalarAt(tbl, "about")
	if v, ok := tbl.Get("products"); ok {
		if list, ok := v.(conl.TableArray); ok {
			m.Products = decodeProducts(list)
		}
	}

	return m, nil
}

func decodeCredits(t *conl.Table) Credits {
	var c Credits
	c.ArtDirector, _ = scalarAt(t, "art_director")
	c.Artist, _ = scalarAt(t, "artist")
	c.Designer, _ = scalarAt(t, "designer")
	c.Typographer, _ = scalarAt(t, "typographer")
	c.Photographer, _ = scalarAt(t, "photographer")
	c.Illustrator, _ = scalarAt(t, "illustrator")
	return c
}

func decodeProducts(list conl.TableArray) []Product {
	products := make([]Product, 0, len(list))
	for _, t := range list {
		var p Product
		p.Title, _ = scalarAt(t, "title")
		p.LongTitle, _ = scalarAt(t, "long_title")
		p.Price, _ = scalarAt(t, "price")
		p.PostalStoreURL, _ = scalarAt(t, "postal_store_url")
		p.StampsForeverURL, _ = scalarAt(t, "stamps_forever_url")
		p.Images = stringsAt(t, "images")
		products = append(products, p)
	}
	return products
}

// scalarAt returns the text under key. Multiline blocks count as text;
// any other shape, or an absent key, does not.
func scalarAt(t *conl.Table, key string) (string, bool) {
	v, ok := t.Get(key)
	if !ok {
		return "", false
	}
	switch n := v.(type) {
	case conl.Scalar:
		return string(n), true
	case conl.Multiline:
		return n.Text, true
	}
	return "", false
}

// rateAt returns nil when the key is absent or its value does not parse,
// leaving the record loadable.
func rateAt(t *conl.Table, key string) *Rate {
	s, ok := scalarAt(t, key)
	if !ok {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	r := Rate(f)
	return &r
}

func stringsAt(t *conl.Table, key string) []string {
	v, ok := t.Get(key)
	if !ok {
		return nil
	}
	arr, ok := v.(conl.Array)
	if !ok {
		return nil
	}
	return []string(arr)
}

func tableAt(t *conl.Table, key string) (*conl.Table, bool) {
	v, ok := t.Get(key)
	if !ok {
		return nil, false
	}
	sub, ok := v.(*conl.Table)
	return sub, ok
}
