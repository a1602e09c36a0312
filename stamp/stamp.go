// Package stamp maps postal stamp records onto the document format:
// typed metadata records with credits and product listings, and the
// historical rate tables used to resolve effective prices.
package stamp

import (
	"fmt"
	"strconv"
	"strings"
)

// RateType is the pricing class printed on a stamp, by display name.
type RateType string

const (
	RateForever             RateType = "Forever"
	RatePostcard            RateType = "Postcard"
	RateInternational       RateType = "International"
	RateGlobalForever       RateType = "Global Forever"
	RateAdditionalOunce     RateType = "Additional Ounce"
	RateTwoOunce            RateType = "Two Ounce"
	RateThreeOunce          RateType = "Three Ounce"
	RateNonmachineable      RateType = "Nonmachineable Surcharge"
	RateSemipostal          RateType = "Semipostal"
	RateDefinitive          RateType = "Definitive"
	RatePriorityMail        RateType = "Priority Mail"
	RatePriorityMailExpress RateType = "Priority Mail Express"
	RatePresortedFirstClass RateType = "Presorted First-Class"
	RatePresortedStandard   RateType = "Presorted Standard"
	RateNonprofit           RateType = "Nonprofit"
	RateOther               RateType = "Other"
)

// ParseRateType resolves a display string to its rate type. The historical
// "Additional Postage" spelling maps to RateAdditionalOunce; anything
// unrecognized is RateOther.
func ParseRateType(s string) RateType {
	switch s {
	case "Forever":
		return RateForever
	case "Postcard":
		return RatePostcard
	case "International":
		return RateInternational
	case "Global Forever":
		return RateGlobalForever
	case "Additional Ounce", "Additional Postage":
		return RateAdditionalOunce
	case "Two Ounce":
		return RateTwoOunce
	case "Three Ounce":
		return RateThreeOunce
	case "Nonmachineable Surcharge":
		return RateNonmachineable
	case "Semipostal":
		return RateSemipostal
	case "Definitive":
		return RateDefinitive
	case "Priority Mail":
		return RatePriorityMail
	case "Priority Mail Express":
		return RatePriorityMailExpress
	case "Presorted First-Class":
		return RatePresortedFirstClass
	case "Presorted Standard":
		return RatePresortedStandard
	case "Nonprofit":
		return RateNonprofit
	default:
		return RateOther
	}
}

// IsForever reports whether this class is sold at the prevailing rate
// rather than a printed denomination.
func (rt RateType) IsForever() bool {
	switch rt {
	case RateForever, RatePostcard, RateInternational, RateGlobalForever,
		RateAdditionalOunce, RateTwoOunce, RateThreeOunce,
		RateNonmachineable, RateSemipostal:
		return true
	}
	return false
}

// Type is the kind of postal item a record describes.
type Type string

const (
	TypeStamp    Type = "stamp"
	TypeCard     Type = "card"
	TypeEnvelope Type = "envelope"
)

// ParseType is case-insensitive and falls back to TypeStamp.
func ParseType(s string) Type {
	switch strings.ToLower(s) {
	case "card":
		return TypeCard
	case "envelope":
		return TypeEnvelope
	default:
		return TypeStamp
	}
}

// Rate is a currency amount. It marshals with exactly two decimals, the
// form rate tables and records are written in.
type Rate float64

// MarshalText implements encoding.TextMarshaler.
func (r Rate) MarshalText() ([]byte, error) {
	return []byte(strconv.FormatFloat(float64(r), 'f', 2, 64)), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *Rate) UnmarshalText(text []byte) error {
	f, err := strconv.ParseFloat(string(text), 64)
	if err != nil {
		return fmt.Errorf("stamp: invalid rate %q", string(text))
	}
	*r = Rate(f)
	return nil
}

// Credits names the people behind a stamp's design. All fields are
// optional.
type Credits struct {
	ArtDirector  string `conl:"art_director,omitempty"`
	Artist       string `conl:"artist,omitempty"`
	Designer     string `conl:"designer,omitempty"`
	Typographer  string `conl:"typographer,omitempty"`
	Photographer string `conl:"photographer,omitempty"`
	Illustrator  string `conl:"illustrator,omitempty"`
}

// IsZero reports whether no credit is set.
func (c Credits) IsZero() bool {
	return c == Credits{}
}

// Product is one purchasable listing for a stamp.
type Product struct {
	Title            string   `conl:"title"`
	LongTitle        string   `conl:"long_title,omitempty"`
	Price            string   `conl:"price,omitempty"`
	PostalStoreURL   string   `conl:"postal_store_url,omitempty"`
	StampsForeverURL string   `conl:"stamps_forever_url,omitempty"`
	Images           []string `conl:"images,omitempty"`
}

// Metadata is one stamp record. Field declaration order is emission order.
type Metadata struct {
	Name            string    `conl:"name"`
	Slug            string    `conl:"slug"`
	APISlug         string    `conl:"api_slug"`
	URL             string    `conl:"url"`
	Year            int       `conl:"year"`
	IssueDate       string    `conl:"issue_date,omitempty"`
	IssueLocation   string    `conl:"issue_location,omitempty"`
	Rate            *Rate     `conl:"rate,omitempty"`
	RateType        RateType  `conl:"rate_type,omitempty"`
	ExtraCost       *Rate     `conl:"extra_cost,omitempty"`
	Forever         bool      `conl:"forever"`
	Type            Type      `conl:"type,omitempty"`
	Series          string    `conl:"series,omitempty"`
	StampImages     []string  `conl:"stamp_images,omitempty"`
	SheetImage      string    `conl:"sheet_image,omitempty"`
	BackgroundColor string    `conl:"background_color,omitempty"`
	Credits         Credits   `conl:"credits"`
	About           string    `conl:"about,omitempty,hint=md"`
	Products        []Product `conl:"products,omitempty"`
}
