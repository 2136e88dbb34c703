package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gosha-popular/fstock-bot/models"
)

// History file layout: one CSV per basket item, four columns, dates in
// DD-MM-YYYY. Files are append-only and rows stay in chronological append
// order; callers must not assume one row per date — running the aggregation
// twice on the same day legitimately produces two rows.
const historyDateLayout = "02-01-2006"

var historyHeader = []string{"Дата", "Продукт", "Минимальная цена", "Средняя цена"}

// Series is a basket item's history in append order. The accessors make the
// zero- and one-row states explicit instead of wrapping around the end.
type Series []models.HistoryRow

// Last returns the most recent row.
func (s Series) Last() (models.HistoryRow, bool) {
	if len(s) == 0 {
		return models.HistoryRow{}, false
	}
	return s[len(s)-1], true
}

// Previous returns the second-to-last row.
func (s Series) Previous() (models.HistoryRow, bool) {
	if len(s) < 2 {
		return models.HistoryRow{}, false
	}
	return s[len(s)-2], true
}

// HistoryStore persists per-item aggregate rows under one directory.
type HistoryStore struct {
	dir string
}

// NewHistoryStore creates a HistoryStore rooted at dir (created on demand).
func NewHistoryStore(dir string) *HistoryStore {
	return &HistoryStore{dir: dir}
}

// Append adds one row to the item's history file, creating the file with a
// header row first if it does not exist. Existing rows are never touched.
func (h *HistoryStore) Append(key string, row models.HistoryRow) error {
	if err := os.MkdirAll(h.dir, 0755); err != nil {
		return fmt.Errorf("history: create dir: %w", err)
	}

	path := h.path(key)
	_, statErr := os.Stat(path)
	fresh := os.IsNotExist(statErr)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("history: open %q: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if fresh {
		if err := w.Write(historyHeader); err != nil {
			return fmt.Errorf("history: write header: %w", err)
		}
	}
	record := []string{
		row.Date.Format(historyDateLayout),
		row.Product,
		strconv.FormatFloat(row.MinPrice, 'f', -1, 64),
		strconv.FormatFloat(row.AvgPrice, 'f', -1, 64),
	}
	if err := w.Write(record); err != nil {
		return fmt.Errorf("history: write row: %w", err)
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return f.Sync()
}

// Rows reads an item's full history in file order. Rows that fail to parse
// are skipped rather than failing the whole series.
func (h *HistoryStore) Rows(key string) (Series, error) {
	f, err := os.Open(h.path(key))
	if err != nil {
		return nil, fmt.Errorf("history: open: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	raw, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("history: read: %w", err)
	}

	var series Series
	for i, record := range raw {
		if i == 0 || len(record) < 4 {
			continue
		}
		date, err := time.Parse(historyDateLayout, record[0])
		if err != nil {
			continue
		}
		minPrice, errMin := strconv.ParseFloat(record[2], 64)
		avgPrice, errAvg := strconv.ParseFloat(record[3], 64)
		if errMin != nil || errAvg != nil {
			continue
		}
		series = append(series, models.HistoryRow{
			Date:     date,
			Product:  record[1],
			MinPrice: minPrice,
			AvgPrice: avgPrice,
		})
	}
	return series, nil
}

// Keys lists the items that have a history file, in directory order.
func (h *HistoryStore) Keys() ([]string, error) {
	entries, err := os.ReadDir(h.dir)
	if err != nil {
		return nil, fmt.Errorf("history: read dir: %w", err)
	}

	var keys []string
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".csv" {
			continue
		}
		keys = append(keys, e.Name()[:len(e.Name())-len(".csv")])
	}
	return keys, nil
}

func (h *HistoryStore) path(key string) string {
	return filepath.Join(h.dir, key+".csv")
}
