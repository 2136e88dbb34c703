package models

import "time"

// PriceRecord is one normalized catalog entry extracted from a retailer
// payload: product name plus price in rubles. Records that fail numeric
// parsing never become PriceRecords.
type PriceRecord struct {
	Name  string
	Price float64
}

// BasketItem is one tracked grocery product: a short key used for file
// naming, a display label for reports and the free-text search query sent
// to every retailer.
type BasketItem struct {
	Key   string
	Label string
	Query string
}

// HistoryRow is one date's aggregate observation for a basket item.
// Rows are append-only; the series is kept in chronological append order.
type HistoryRow struct {
	Date     time.Time
	Product  string
	MinPrice float64
	AvgPrice float64
}

// Basket is the fixed set of tracked products. Keys double as history file
// names, queries are sent verbatim to the retailer search APIs.
var Basket = []BasketItem{
	{Key: "масло", Label: "🧈 Сливочное масло, 180гр", Query: "сливочное масло 180"},
	{Key: "молоко", Label: "🥛 Молоко 2.5%, 1л", Query: "молоко ультрапастеризованное"},
	{Key: "хлеб", Label: "🥖 Хлеб белый (батон)", Query: "хлеб пшеничный"},
	{Key: "колбаса", Label: "🌭 Колбаса вареная, 400г", Query: "колбаса вареная 400"},
	{Key: "крупа", Label: "🍲 Крупа гречневая, 800г", Query: "крупа гречневая"},
	{Key: "сахар", Label: "🧂 Сахар-песок, 1кг", Query: "сахар песок 1"},
	{Key: "яйцо", Label: "🥚 Яйцо 10шт", Query: "яйцо 10"},
	{Key: "филе", Label: "🍗 Курица филе, 1кг", Query: "филе куриное"},
}

// NegativeKeywords are store-brand and promo noise terms excluded from every
// basket match, plus unit variants that would pull in the wrong pack size.
var NegativeKeywords = []string{
	"Своя цена", "365 дней", "маркет", "Моя цена", "пр!сто", "Красная цена",
	"багет", "FRESH", "в соусе", "3.2%", "200мл", "0,2л", "0,05%", "200г",
	"500мл", "Тёма",
}
