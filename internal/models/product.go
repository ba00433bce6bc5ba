package models

import (
	"bytes"
	"encoding/json"
)

// FlexString is a string that also accepts JSON numbers and null when
// decoding. The catalog backend is not consistent about whether codes and
// prices arrive as strings or numbers, and a type mismatch must not fail
// the whole search response.
type FlexString string

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = FlexString(n.String())
	return nil
}

// String returns the underlying value.
func (f FlexString) String() string { return string(f) }

// RawProductRecord is a product exactly as the catalog backend returns it.
// The backend exposes several historical schemas at once, so the same
// semantic value can arrive under any of a handful of keys. Records are
// immutable once decoded; internal/catalog turns them into the canonical
// NormalizedProduct shape.
type RawProductRecord struct {
	ID            *int64     `json:"id"`
	ProdCode      FlexString `json:"prod_code"`
	ProductCode   FlexString `json:"product_code"`
	Code          FlexString `json:"code"`
	ProdName      FlexString `json:"prod_name"`
	ProductName   FlexString `json:"product_name"`
	ProductNameEN FlexString `json:"product_name_en"`
	Name          FlexString `json:"name"`
	SellingPrice  FlexString `json:"selling_price"`
	Price         FlexString `json:"price"`
	Barcode       FlexString `json:"barcode"`
}

// NormalizedProduct is the canonical product shape used everywhere past the
// search boundary. Price always carries exactly two decimal places.
type NormalizedProduct struct {
	ID      string
	Code    string
	Name    string
	Price   string
	Barcode string
}

// QueueLineItem is one "add" event in the print queue. The queue is an
// ordered sequence of these events, not a map keyed by product id: the same
// product may appear on several lines with independent quantities.
type QueueLineItem struct {
	ID      string `json:"id"`
	Code    string `json:"code"`
	Name    string `json:"name"`
	Price   string `json:"price"`
	Barcode string `json:"barcode"`
	Qty     int    `json:"qty"`
}

