package services

import (
	"testing"

	"github.com/gosha-popular/fstock-bot/models"
)

func TestNormalizeUnits(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Масло 180г", "масло 180g"},
		{"Масло 180 гр", "масло 180g"},
		{"Масло 180g", "масло 180g"},
		{"Молоко 950мл", "молоко 950ml"},
		{"Сахар 1кг", "сахар 1kg"},
		{"Яйцо 10 шт", "яйцо 10шт"},
		{"Гречка", "гречка"},
	}

	for _, tt := range tests {
		if got := normalizeUnits(tt.in); got != tt.want {
			t.Errorf("normalizeUnits(%q) = %q; want %q", tt.in, got, tt.want)
		}
	}
}

func TestFilterUnitVariantsMatchEqually(t *testing.T) {
	records := []models.PriceRecord{
		{Name: "Масло сливочное Экомилк 180г", Price: 150},
	}

	for _, keyword := range []string{"180г", "180g", "180 гр"} {
		kept := Filter(records, []string{"масло", keyword}, nil)
		if len(kept) != 1 {
			t.Errorf("keyword %q: got %d matches, want 1", keyword, len(kept))
		}
	}
}

func TestFilterRequiresAllPositives(t *testing.T) {
	records := []models.PriceRecord{
		{Name: "Масло сливочное 180г", Price: 150},
		{Name: "Масло подсолнечное 1л", Price: 120},
	}

	kept := Filter(records, []string{"масло", "сливочное"}, nil)
	if len(kept) != 1 || kept[0].Name != "Масло сливочное 180г" {
		t.Errorf("expected only the butter entry, got %+v", kept)
	}
}

func TestFilterNegativeKeywords(t *testing.T) {
	records := []models.PriceRecord{
		{Name: "Молоко ультрапастеризованное 1л", Price: 89},
		{Name: "Молоко Красная цена 1л", Price: 59},
		{Name: "Молоко 365 дней 1л", Price: 55},
	}

	kept := Filter(records, []string{"молоко"}, []string{"Красная цена", "365 дней"})
	if len(kept) != 1 || kept[0].Name != "Молоко ультрапастеризованное 1л" {
		t.Errorf("store-brand entries should be excluded, got %+v", kept)
	}
}

func TestFilterSubstringMatchIsPermissive(t *testing.T) {
	records := []models.PriceRecord{
		{Name: "Обезжиренное МОЛОКО 1л", Price: 75},
	}

	kept := Filter(records, []string{"молоко"}, nil)
	if len(kept) != 1 {
		t.Errorf("substring and case-insensitive match expected, got %+v", kept)
	}
}

func TestFilterEmptyInput(t *testing.T) {
	if kept := Filter(nil, []string{"молоко"}, models.NegativeKeywords); len(kept) != 0 {
		t.Errorf("expected no matches on empty input, got %+v", kept)
	}
}
