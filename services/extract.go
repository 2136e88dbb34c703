package services

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/gosha-popular/fstock-bot/models"
)

// extractors is the closed set of per-retailer payload parsers. Each parser
// is a pure transformation of a decoded JSON value into (name, price) pairs
// in rubles. Malformed payloads yield an empty slice; entries with a missing
// name or an unparsable price are skipped individually.
var extractors = map[string]func(any) []models.PriceRecord{
	"5ka":    extractFiveka,
	"dixi":   extractDixi,
	"magnit": extractMagnit,
	"lenta":  extractLenta,
}

// Extract dispatches the raw payload to the retailer's parser. Unknown
// retailers and undecodable payloads produce no records, never an error.
func Extract(retailer string, raw []byte) []models.PriceRecord {
	fn, ok := extractors[retailer]
	if !ok {
		return nil
	}

	var payload any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil
	}
	return fn(payload)
}

// extractFiveka parses the 5ka schema: products[].prices carries a regular
// price and an optional discount price; the discount wins when present.
func extractFiveka(payload any) []models.PriceRecord {
	var records []models.PriceRecord
	for _, item := range objList(payload, "products") {
		name := stringField(item, "name")
		prices, _ := item["prices"].(map[string]any)
		if name == "" || prices == nil {
			continue
		}

		price, ok := numericValue(prices["discount"])
		if !ok {
			price, ok = numericValue(prices["regular"])
		}
		if !ok || price < 0 {
			continue
		}
		records = append(records, models.PriceRecord{Name: name, Price: price})
	}
	return records
}

// extractDixi parses the dixi schema: a top-level array whose first element
// holds cards[] with title and a direct ruble price.
func extractDixi(payload any) []models.PriceRecord {
	list, ok := payload.([]any)
	if !ok || len(list) == 0 {
		return nil
	}
	first, ok := list[0].(map[string]any)
	if !ok {
		return nil
	}

	var records []models.PriceRecord
	cards, _ := first["cards"].([]any)
	for _, c := range cards {
		card, ok := c.(map[string]any)
		if !ok {
			continue
		}
		name := stringField(card, "title")
		price, ok := numericValue(card["priceSimple"])
		if name == "" || !ok || price < 0 {
			continue
		}
		records = append(records, models.PriceRecord{Name: name, Price: price})
	}
	return records
}

// extractMagnit parses the magnit schema: items[].price in kopecks.
func extractMagnit(payload any) []models.PriceRecord {
	var records []models.PriceRecord
	for _, item := range objList(payload, "items") {
		name := stringField(item, "name")
		price, ok := numericValue(item["price"])
		if name == "" || !ok || price < 0 {
			continue
		}
		records = append(records, models.PriceRecord{Name: name, Price: price / 100})
	}
	return records
}

// extractLenta parses the lenta schema: items[].prices.price in kopecks.
func extractLenta(payload any) []models.PriceRecord {
	var records []models.PriceRecord
	for _, item := range objList(payload, "items") {
		name := stringField(item, "name")
		prices, _ := item["prices"].(map[string]any)
		if name == "" || prices == nil {
			continue
		}
		price, ok := numericValue(prices["price"])
		if !ok || price < 0 {
			continue
		}
		records = append(records, models.PriceRecord{Name: name, Price: price / 100})
	}
	return records
}

// objList returns the object entries of a top-level array field, or nil when
// the field is missing or has an unexpected shape.
func objList(payload any, key string) []map[string]any {
	obj, ok := payload.(map[string]any)
	if !ok {
		return nil
	}
	items, ok := obj[key].([]any)
	if !ok {
		return nil
	}

	result := make([]map[string]any, 0, len(items))
	for _, it := range items {
		if m, ok := it.(map[string]any); ok {
			result = append(result, m)
		}
	}
	return result
}

func stringField(obj map[string]any, key string) string {
	s, _ := obj[key].(string)
	return strings.TrimSpace(s)
}

// numericValue coerces a JSON value to a finite float64. Retailers disagree
// on whether prices come as numbers or strings, so both are accepted.
func numericValue(v any) (float64, bool) {
	switch val := v.(type) {
	case float64:
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return 0, false
		}
		return val, true
	case string:
		val = strings.TrimSpace(val)
		if val == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(val, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}
