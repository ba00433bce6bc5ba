package models

import (
	"encoding/json"
	"testing"
)

func TestFlexStringAcceptsMixedTypes(t *testing.T) {
	tests := []struct {
		name string
		body string
		want RawProductRecord
	}{
		{
			name: "string fields",
			body: `{"id": 1, "prod_code": "PC-1", "selling_price": "12.50"}`,
			want: RawProductRecord{ProdCode: "PC-1", SellingPrice: "12.50"},
		},
		{
			name: "numeric price and code",
			body: `{"id": 2, "code": 42, "selling_price": 12.5}`,
			want: RawProductRecord{Code: "42", SellingPrice: "12.5"},
		},
		{
			name: "null fields decode to empty",
			body: `{"id": 3, "prod_name": null, "price": null}`,
			want: RawProductRecord{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got RawProductRecord
			if err := json.Unmarshal([]byte(tt.body), &got); err != nil {
				t.Fatalf("unmarshal failed: %v", err)
			}
			if got.ProdCode != tt.want.ProdCode ||
				got.Code != tt.want.Code ||
				got.ProdName != tt.want.ProdName ||
				got.SellingPrice != tt.want.SellingPrice ||
				got.Price != tt.want.Price {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestSessionAuthenticated(t *testing.T) {
	var nilSession *Session
	if nilSession.Authenticated() {
		t.Error("nil session must not be authenticated")
	}
	if (&Session{}).Authenticated() {
		t.Error("empty token must not be authenticated")
	}
	if !(&Session{Token: "t"}).Authenticated() {
		t.Error("session with token must be authenticated")
	}
}
