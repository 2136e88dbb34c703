package services

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/gosha-popular/fstock-bot/storage"
	"github.com/gosha-popular/fstock-bot/utils"
)

const reportFooter = "📊 Отчет подготовлен на основе цен, представленных на официальных " +
	"сайтах крупнейших продуктовых сетей на дату отчета.\n" +
	`<i>Магазин распродаж <a href="https://fstok.ru/">FSTOK</a></i>`

// delta is a percent change that may be unavailable: fewer than two history
// rows, or a zero previous value, leave no defined baseline.
type delta struct {
	value float64
	ok    bool
}

// Renderer builds the HTML report text delivered by the bot. It only reads
// history files; it never sends anything itself.
type Renderer struct {
	history storage.HistoryReader
	logger  *utils.Logger
}

// NewRenderer creates a Renderer over the given history.
func NewRenderer(history storage.HistoryReader, logger *utils.Logger) *Renderer {
	return &Renderer{history: history, logger: logger}
}

// RunOverRun renders the run-over-run report: every item's latest average
// and minimum price with the percent change against the immediately
// preceding history row. Items follow history-directory iteration order.
func (r *Renderer) RunOverRun() (string, error) {
	keys, err := r.history.Keys()
	if err != nil {
		return "", err
	}

	var blocks []string
	var totalNew, totalOld float64

	for _, key := range keys {
		rows, err := r.history.Rows(key)
		if err != nil {
			r.logger.Warn("[report] %s: %v — skipping", key, err)
			continue
		}

		current, ok := rows.Last()
		if !ok {
			r.logger.Warn("[report] %s has no rows — skipping", key)
			continue
		}
		totalNew += current.AvgPrice

		change := delta{}
		if previous, ok := rows.Previous(); ok {
			totalOld += previous.AvgPrice
			change = percentChange(current.AvgPrice, previous.AvgPrice)
		}

		blocks = append(blocks, productBlock(current.Product, current.AvgPrice, current.MinPrice, change))
	}

	return assemble(totalNew, totalOld, blocks), nil
}

// Monthly renders the report for one calendar month: within each item's
// rows for that month and year, the mean average price, the overall minimum
// and the change between the window's first and last row.
func (r *Renderer) Monthly(month time.Month, year int) (string, error) {
	keys, err := r.history.Keys()
	if err != nil {
		return "", err
	}

	var blocks []string
	var totalNew, totalOld float64

	for _, key := range keys {
		rows, err := r.history.Rows(key)
		if err != nil {
			r.logger.Warn("[report] %s: %v — skipping", key, err)
			continue
		}

		var window storage.Series
		for _, row := range rows {
			if row.Date.Month() == month && row.Date.Year() == year {
				window = append(window, row)
			}
		}
		if len(window) == 0 {
			r.logger.Warn("[report] %s has no rows for %s %d — skipping", key, month, year)
			continue
		}

		var avgSum float64
		minPrice := window[0].MinPrice
		for _, row := range window {
			avgSum += row.AvgPrice
			if row.MinPrice < minPrice {
				minPrice = row.MinPrice
			}
		}
		middle := avgSum / float64(len(window))

		first := window[0]
		last := window[len(window)-1]
		totalNew += last.AvgPrice
		totalOld += first.AvgPrice

		blocks = append(blocks, monthlyBlock(last.Product, middle, minPrice,
			percentChange(last.AvgPrice, first.AvgPrice)))
	}

	return assemble(totalNew, totalOld, blocks), nil
}

// assemble prefixes the basket-total summary to the product blocks and
// appends the fixed footer.
func assemble(totalNew, totalOld float64, blocks []string) string {
	separator := strings.Repeat("_", 32)
	summary := fmt.Sprintf(
		"<b>%s\nСумма продуктовой корзины:</b>\n🛒 %s р. %s\n%s\n\n",
		separator, formatPrice(totalNew), formatDelta(percentChange(totalNew, totalOld)), separator)

	return summary + strings.Join(blocks, "") + reportFooter
}

// productBlock is the run-over-run layout: the percent change sits outside
// the bold price span.
func productBlock(label string, avg, min float64, change delta) string {
	return fmt.Sprintf(
		"<b>%s</b>\nСредняя цена - <b>%s р.</b> %s\nMin %s p.\n\n",
		label, formatPrice(avg), formatDelta(change), formatPrice(min))
}

// monthlyBlock is the monthly layout: the percent change is bolded together
// with the price.
func monthlyBlock(label string, avg, min float64, change delta) string {
	return fmt.Sprintf(
		"<b>%s</b>\nСредняя цена - <b>%s р. %s</b>\nMin %s p.\n\n",
		label, formatPrice(avg), formatDelta(change), formatPrice(min))
}

// percentChange computes (new / (old × 0.01)) − 100, rounded to one decimal.
// A zero old value leaves the change undefined instead of dividing by zero.
func percentChange(newValue, oldValue float64) delta {
	if oldValue == 0 {
		return delta{}
	}
	v := (newValue / (oldValue * 0.01)) - 100
	return delta{value: math.Round(v*10) / 10, ok: true}
}

// formatDelta renders the directional indicator: a down arrow for price
// drops, an up arrow with an explicit plus otherwise, "n/a" when there is
// no baseline to compare against.
func formatDelta(d delta) string {
	if !d.ok {
		return "n/a"
	}
	pct := strings.ReplaceAll(strconv.FormatFloat(d.value, 'f', 1, 64), ".", ",")
	if d.value < 0 {
		return "⬇️ " + pct + "%"
	}
	return "⬆️ +" + pct + "%"
}

// formatPrice renders a ruble amount with a decimal comma.
func formatPrice(v float64) string {
	rounded := math.Round(v*100) / 100
	return strings.ReplaceAll(strconv.FormatFloat(rounded, 'f', -1, 64), ".", ",")
}
