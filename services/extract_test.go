package services

import (
	"testing"
)

func TestExtractFiveka(t *testing.T) {
	payload := `{
		"products": [
			{"name": "Масло сливочное 180г", "prices": {"regular": "189.99", "discount": "149.99"}},
			{"name": "Масло Крестьянское 180г", "prices": {"regular": "175", "discount": null}},
			{"name": "", "prices": {"regular": "100"}},
			{"name": "Без цены", "prices": {"regular": "дорого"}}
		]
	}`

	records := Extract("5ka", []byte(payload))
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].Price != 149.99 {
		t.Errorf("discount price should win: got %.2f, want 149.99", records[0].Price)
	}
	if records[1].Price != 175 {
		t.Errorf("regular price fallback: got %.2f, want 175", records[1].Price)
	}
}

func TestExtractDixi(t *testing.T) {
	payload := `[
		{"cards": [
			{"title": "Масло Дикси 180г", "priceSimple": 165.5},
			{"title": "", "priceSimple": 99},
			{"title": "Без цены"}
		]}
	]`

	records := Extract("dixi", []byte(payload))
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if records[0].Price != 165.5 {
		t.Errorf("price: got %.2f, want 165.5", records[0].Price)
	}
}

func TestExtractMinorUnits(t *testing.T) {
	magnit := `{"items": [{"name": "Молоко 1л", "price": 8999}]}`
	lenta := `{"items": [{"name": "Молоко 1л", "prices": {"price": 9550}}]}`

	mRecords := Extract("magnit", []byte(magnit))
	if len(mRecords) != 1 || mRecords[0].Price != 89.99 {
		t.Errorf("magnit kopecks: got %+v, want one record at 89.99", mRecords)
	}

	lRecords := Extract("lenta", []byte(lenta))
	if len(lRecords) != 1 || lRecords[0].Price != 95.5 {
		t.Errorf("lenta kopecks: got %+v, want one record at 95.5", lRecords)
	}
}

func TestExtractMissingTopLevelKey(t *testing.T) {
	tests := []struct {
		retailer string
		payload  string
	}{
		{"5ka", `{"error": "not found"}`},
		{"dixi", `[]`},
		{"dixi", `{"cards": []}`},
		{"magnit", `{"goods": []}`},
		{"lenta", `{}`},
	}

	for _, tt := range tests {
		if got := Extract(tt.retailer, []byte(tt.payload)); len(got) != 0 {
			t.Errorf("Extract(%s, %s) = %d records; want 0", tt.retailer, tt.payload, len(got))
		}
	}
}

func TestExtractMalformedInput(t *testing.T) {
	for _, retailer := range []string{"5ka", "dixi", "magnit", "lenta"} {
		if got := Extract(retailer, []byte("<html>502 Bad Gateway</html>")); got != nil {
			t.Errorf("Extract(%s, html) = %v; want nil", retailer, got)
		}
	}
	if got := Extract("unknown", []byte(`{}`)); got != nil {
		t.Errorf("unknown retailer should yield nil, got %v", got)
	}
}

func TestExtractNeverNegative(t *testing.T) {
	payload := `{"items": [
		{"name": "Сбой каталога", "price": -500},
		{"name": "Молоко 1л", "price": 7500}
	]}`

	records := Extract("magnit", []byte(payload))
	if len(records) != 1 {
		t.Fatalf("expected the negative-price entry to be dropped, got %d records", len(records))
	}
	for _, r := range records {
		if r.Price < 0 {
			t.Errorf("emitted negative price %.2f for %q", r.Price, r.Name)
		}
	}
}
