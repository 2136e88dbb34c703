package services

import (
	"strings"
	"testing"
	"time"

	"github.com/gosha-popular/fstock-bot/models"
	"github.com/gosha-popular/fstock-bot/storage"
)

func date(day, month, year int) time.Time {
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}

func appendRow(t *testing.T, h *storage.HistoryStore, key string, d time.Time, min, avg float64) {
	t.Helper()
	err := h.Append(key, models.HistoryRow{Date: d, Product: "🥛 Молоко 2.5%, 1л", MinPrice: min, AvgPrice: avg})
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
}

func TestRunOverRunPercentUp(t *testing.T) {
	h := storage.NewHistoryStore(t.TempDir())
	appendRow(t, h, "молоко", date(18, 8, 2026), 80, 100)
	appendRow(t, h, "молоко", date(25, 8, 2026), 85, 110)

	text, err := NewRenderer(h, newTestLogger()).RunOverRun()
	if err != nil {
		t.Fatalf("RunOverRun: %v", err)
	}

	// Run-over-run blocks bold the price only; the arrow stays outside.
	if !strings.Contains(text, "Средняя цена - <b>110 р.</b> ⬆️ +10,0%") {
		t.Errorf("expected up arrow with +10,0%% after the bold price, got:\n%s", text)
	}
	if !strings.Contains(text, "Min 85 p.") {
		t.Errorf("expected minimum price line, got:\n%s", text)
	}
}

func TestRunOverRunPercentDown(t *testing.T) {
	h := storage.NewHistoryStore(t.TempDir())
	appendRow(t, h, "молоко", date(18, 8, 2026), 80, 100)
	appendRow(t, h, "молоко", date(25, 8, 2026), 70, 90)

	text, err := NewRenderer(h, newTestLogger()).RunOverRun()
	if err != nil {
		t.Fatalf("RunOverRun: %v", err)
	}
	if !strings.Contains(text, "⬇️ -10,0%") {
		t.Errorf("expected down arrow with -10,0%%, got:\n%s", text)
	}
}

func TestRunOverRunSingleRowIsUnavailable(t *testing.T) {
	h := storage.NewHistoryStore(t.TempDir())
	appendRow(t, h, "молоко", date(25, 8, 2026), 85, 110)

	text, err := NewRenderer(h, newTestLogger()).RunOverRun()
	if err != nil {
		t.Fatalf("RunOverRun: %v", err)
	}
	if !strings.Contains(text, "n/a") {
		t.Errorf("one-row series must render an unavailable delta, got:\n%s", text)
	}
}

func TestRunOverRunZeroPreviousIsUnavailable(t *testing.T) {
	h := storage.NewHistoryStore(t.TempDir())
	appendRow(t, h, "молоко", date(18, 8, 2026), 0, 0)
	appendRow(t, h, "молоко", date(25, 8, 2026), 85, 110)

	// Must not panic or divide by zero.
	text, err := NewRenderer(h, newTestLogger()).RunOverRun()
	if err != nil {
		t.Fatalf("RunOverRun: %v", err)
	}
	if !strings.Contains(text, "n/a") {
		t.Errorf("zero previous average must render an unavailable delta, got:\n%s", text)
	}
}

func TestRunOverRunBasketTotal(t *testing.T) {
	h := storage.NewHistoryStore(t.TempDir())
	appendRow(t, h, "масло", date(18, 8, 2026), 140, 150)
	appendRow(t, h, "масло", date(25, 8, 2026), 150, 165)
	appendRow(t, h, "молоко", date(18, 8, 2026), 80, 100)
	appendRow(t, h, "молоко", date(25, 8, 2026), 85, 110)

	text, err := NewRenderer(h, newTestLogger()).RunOverRun()
	if err != nil {
		t.Fatalf("RunOverRun: %v", err)
	}

	// Current total 275 vs previous 250 → +10.0%.
	if !strings.Contains(text, "Сумма продуктовой корзины") {
		t.Errorf("missing basket-total block:\n%s", text)
	}
	if !strings.Contains(text, "🛒 275 р. ⬆️ +10,0%") {
		t.Errorf("basket total line wrong:\n%s", text)
	}
	separator := strings.Repeat("_", 32)
	if strings.Count(text, separator) != 2 {
		t.Errorf("basket total must be framed by two separators:\n%s", text)
	}
	if !strings.HasPrefix(text, "<b>"+separator) {
		t.Errorf("summary must come first:\n%s", text)
	}
	if !strings.Contains(text, `<a href="https://fstok.ru/">`) {
		t.Errorf("missing footer link:\n%s", text)
	}
}

func TestMonthlyWindow(t *testing.T) {
	h := storage.NewHistoryStore(t.TempDir())
	appendRow(t, h, "молоко", date(28, 7, 2026), 70, 90)   // outside window
	appendRow(t, h, "молоко", date(4, 8, 2026), 80, 100)   // window first
	appendRow(t, h, "молоко", date(11, 8, 2026), 75, 104)  // inside
	appendRow(t, h, "молоко", date(25, 8, 2026), 85, 120)  // window last
	appendRow(t, h, "молоко", date(25, 8, 2025), 10, 10)   // other year

	text, err := NewRenderer(h, newTestLogger()).Monthly(time.August, 2026)
	if err != nil {
		t.Fatalf("Monthly: %v", err)
	}

	// Mean of window averages (100+104+120)/3 = 108, min of mins 75,
	// change between first and last window row: 120 vs 100 → +20.0%.
	// Monthly blocks bold the delta together with the price.
	if !strings.Contains(text, "Средняя цена - <b>108 р. ⬆️ +20,0%</b>") {
		t.Errorf("monthly mean or delta wrong:\n%s", text)
	}
	if !strings.Contains(text, "Min 75 p.") {
		t.Errorf("monthly min wrong:\n%s", text)
	}
}

func TestMonthlyEmptyWindowSkipsItem(t *testing.T) {
	h := storage.NewHistoryStore(t.TempDir())
	appendRow(t, h, "молоко", date(28, 7, 2026), 70, 90)

	text, err := NewRenderer(h, newTestLogger()).Monthly(time.September, 2026)
	if err != nil {
		t.Fatalf("Monthly: %v", err)
	}
	if strings.Contains(text, "Молоко") {
		t.Errorf("item without rows in window must be skipped:\n%s", text)
	}
}

func TestPercentChangeFormula(t *testing.T) {
	tests := []struct {
		newValue, oldValue float64
		want               float64
		ok                 bool
	}{
		{110, 100, 10.0, true},
		{90, 100, -10.0, true},
		{100, 100, 0.0, true},
		{100, 0, 0, false},
		{105.37, 100, 5.4, true},
	}

	for _, tt := range tests {
		got := percentChange(tt.newValue, tt.oldValue)
		if got.ok != tt.ok || (got.ok && got.value != tt.want) {
			t.Errorf("percentChange(%.2f, %.2f) = %+v; want value=%.1f ok=%v",
				tt.newValue, tt.oldValue, got, tt.want, tt.ok)
		}
	}
}

func TestFormatPriceUsesDecimalComma(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{89.99, "89,99"},
		{101.32333333, "101,32"},
		{150, "150"},
	}

	for _, tt := range tests {
		if got := formatPrice(tt.in); got != tt.want {
			t.Errorf("formatPrice(%v) = %q; want %q", tt.in, got, tt.want)
		}
	}
}
