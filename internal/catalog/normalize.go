// Package catalog turns backend product and location records into their
// canonical shapes and paginates search result sets. Everything in this
// package is a pure function over value types; state lives in the owning
// components.
package catalog

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nadeeshan/labelpress/internal/models"
)

// Sentinels used when no alias carries a value.
const (
	CodeUnavailable = "N/A"
	NameUnknown     = "Unknown"
	zeroPrice       = "0.00"
)

// productAccessor reads one candidate field off a raw record.
type productAccessor func(*models.RawProductRecord) string

// Alias resolution order is policy, not incidental branching. Each field has
// an ordered accessor list: first non-empty match wins. Changing the order
// changes which backend schema takes precedence, so keep these lists in sync
// with what the catalog service actually emits.
var (
	codeAliases = []productAccessor{
		func(r *models.RawProductRecord) string { return r.ProdCode.String() },
		func(r *models.RawProductRecord) string { return r.ProductCode.String() },
		func(r *models.RawProductRecord) string { return r.Code.String() },
	}

	nameAliases = []productAccessor{
		func(r *models.RawProductRecord) string { return r.ProdName.String() },
		func(r *models.RawProductRecord) string { return r.ProductName.String() },
		func(r *models.RawProductRecord) string { return r.ProductNameEN.String() },
		func(r *models.RawProductRecord) string { return r.Name.String() },
	}

	priceAliases = []productAccessor{
		func(r *models.RawProductRecord) string { return r.SellingPrice.String() },
		func(r *models.RawProductRecord) string { return r.Price.String() },
	}

	// A missing barcode falls back through the code chain.
	barcodeAliases = append([]productAccessor{
		func(r *models.RawProductRecord) string { return r.Barcode.String() },
	}, codeAliases...)
)

// resolve walks the accessor list and returns the first non-empty value,
// or the fallback when every alias is empty.
func resolve(r *models.RawProductRecord, accessors []productAccessor, fallback string) string {
	for _, get := range accessors {
		if v := strings.TrimSpace(get(r)); v != "" {
			return v
		}
	}
	return fallback
}

// Normalize maps a raw backend record to the canonical product shape.
//
// Records without an id get a surrogate UUID. Surrogates never collide
// within a result set, but they are not stable across searches: the same
// id-less product searched twice yields two different surrogates, so
// surrogate ids must never be used to merge queue lines.
func Normalize(r models.RawProductRecord) models.NormalizedProduct {
	id := uuid.New().String()
	if r.ID != nil {
		id = strconv.FormatInt(*r.ID, 10)
	}

	return models.NormalizedProduct{
		ID:      id,
		Code:    resolve(&r, codeAliases, CodeUnavailable),
		Name:    resolve(&r, nameAliases, NameUnknown),
		Price:   FormatPrice(resolve(&r, priceAliases, "")),
		Barcode: resolve(&r, barcodeAliases, CodeUnavailable),
	}
}

// NormalizeAll normalizes a result set in the order received.
func NormalizeAll(raw []models.RawProductRecord) []models.NormalizedProduct {
	if len(raw) == 0 {
		return nil
	}
	out := make([]models.NormalizedProduct, len(raw))
	for i, r := range raw {
		out[i] = Normalize(r)
	}
	return out
}

// FormatPrice renders a monetary amount with exactly two decimal places.
// Missing, unparseable, or negative input normalizes to "0.00": a bad
// price on one record must not fail the whole result set.
func FormatPrice(s string) string {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil || d.IsNegative() {
		return zeroPrice
	}
	return d.StringFixed(2)
}

// locationAccessor reads one candidate field off a raw location.
type locationAccessor func(*models.RawLocation) string

var (
	locationCodeAliases = []locationAccessor{
		func(l *models.RawLocation) string { return l.LocaCode.String() },
		func(l *models.RawLocation) string { return l.Code.String() },
		func(l *models.RawLocation) string { return idString(l) },
	}

	locationNameAliases = []locationAccessor{
		func(l *models.RawLocation) string { return l.LocaName.String() },
		func(l *models.RawLocation) string { return l.Name.String() },
		func(l *models.RawLocation) string { return l.LocationName.String() },
	}
)

func idString(l *models.RawLocation) string {
	if l.ID == nil {
		return ""
	}
	return strconv.FormatInt(*l.ID, 10)
}

// NormalizeLocation applies the alias policy to a site record. A location
// with no name at all is labeled by its id so the operator can still pick it.
func NormalizeLocation(l models.RawLocation) models.Location {
	code := resolveLocation(&l, locationCodeAliases, "")
	name := resolveLocation(&l, locationNameAliases, "")
	if name == "" {
		if id := idString(&l); id != "" {
			name = fmt.Sprintf("Location %s", id)
		} else {
			name = fmt.Sprintf("Location %s", code)
		}
	}
	return models.Location{Code: code, Name: name}
}

func resolveLocation(l *models.RawLocation, accessors []locationAccessor, fallback string) string {
	for _, get := range accessors {
		if v := strings.TrimSpace(get(l)); v != "" {
			return v
		}
	}
	return fallback
}

// NormalizeLocations normalizes a location list in the order received.
func NormalizeLocations(raw []models.RawLocation) []models.Location {
	if len(raw) == 0 {
		return nil
	}
	out := make([]models.Location, len(raw))
	for i, l := range raw {
		out[i] = NormalizeLocation(l)
	}
	return out
}
