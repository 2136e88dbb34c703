package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/gosha-popular/fstock-bot/models"
)

// Snapshot CSV column headers, kept in the data language of the basket.
var snapshotHeader = []string{"Название", "Цена"}

// CSVStore persists per-(item, retailer) price snapshots. Snapshots are
// overwritten on every run; they describe the current scrape, not a log.
type CSVStore struct{}

// NewCSVStore creates a CSVStore.
func NewCSVStore() *CSVStore { return &CSVStore{} }

// WriteSnapshot writes the filtered records for one retailer to
// <queryDir>/csv/<retailer>_prices.csv, truncating any previous snapshot.
func (s *CSVStore) WriteSnapshot(queryDir, retailer string, records []models.PriceRecord) error {
	dir := filepath.Join(queryDir, "csv")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("csv: create output dir: %w", err)
	}

	path := filepath.Join(dir, retailer+"_prices.csv")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("csv: create file %q: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(snapshotHeader); err != nil {
		return fmt.Errorf("csv: write header: %w", err)
	}
	for _, r := range records {
		row := []string{r.Name, strconv.FormatFloat(r.Price, 'f', -1, 64)}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("csv: write row: %w", err)
		}
	}

	w.Flush()
	return w.Error()
}

// SnapshotPrices reads every snapshot under <queryDir>/csv and returns the
// price column of each file that holds at least one data row. Unreadable
// files and unparsable rows are skipped, not fatal.
func (s *CSVStore) SnapshotPrices(queryDir string) ([][]float64, error) {
	pattern := filepath.Join(queryDir, "csv", "*.csv")
	files, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("csv: glob %q: %w", pattern, err)
	}

	var perFile [][]float64
	for _, file := range files {
		prices := readPrices(file)
		if len(prices) > 0 {
			perFile = append(perFile, prices)
		}
	}
	return perFile, nil
}

func readPrices(path string) []float64 {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil || len(rows) < 2 {
		return nil
	}

	var prices []float64
	for _, row := range rows[1:] {
		if len(row) < 2 {
			continue
		}
		p, err := strconv.ParseFloat(row[1], 64)
		if err != nil {
			continue
		}
		prices = append(prices, p)
	}
	return prices
}
