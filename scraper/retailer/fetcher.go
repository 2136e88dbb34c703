package retailer

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gosha-popular/fstock-bot/utils"
)

// Searcher is one retailer's catalog search. *Client satisfies it; tests
// substitute fakes.
type Searcher interface {
	Name() string
	Search(ctx context.Context, query string) ([]byte, error)
}

// Fetcher runs one query against every configured retailer and materializes
// each successful response as an indented JSON file under a query-scoped
// directory. A failure for one retailer never aborts the rest.
type Fetcher struct {
	clients []Searcher
	dataDir string
	logger  *utils.Logger
	done    *utils.StringSet
}

// NewFetcher creates a Fetcher writing under dataDir.
func NewFetcher(clients []Searcher, dataDir string, logger *utils.Logger) *Fetcher {
	return &Fetcher{
		clients: clients,
		dataDir: dataDir,
		logger:  logger,
		done:    utils.NewStringSet(),
	}
}

// Reset clears the per-run query dedup. The pipeline calls it at the start
// of every scrape pass; without the reset a long-lived process would keep
// serving the first run's payloads and freeze the price series.
func (f *Fetcher) Reset() {
	f.done = utils.NewStringSet()
}

// QueryDir returns the directory raw payloads for a query are written to.
func QueryDir(dataDir, query string) string {
	return filepath.Join(dataDir, strings.ReplaceAll(query, " ", ""))
}

// FetchAll queries every retailer for the given search text. Queries already
// fetched since the last Reset are skipped, so basket items sharing a query
// hit the retailers once per scrape run.
func (f *Fetcher) FetchAll(ctx context.Context, query string) {
	dir := QueryDir(f.dataDir, query)
	if !f.done.Add(dir) {
		f.logger.Debug("[fetcher] query %q already fetched this run, skipping", query)
		return
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		f.logger.Error("[fetcher] create dir %s: %v", dir, err)
		return
	}

	for _, client := range f.clients {
		body, err := client.Search(ctx, query)
		if err != nil {
			f.logger.Warn("[fetcher] %s failed for %q: %v", client.Name(), query, err)
			continue
		}

		var payload any
		if err := json.Unmarshal(body, &payload); err != nil {
			preview := string(body)
			if len(preview) > 500 {
				preview = preview[:500]
			}
			f.logger.Warn("[fetcher] %s returned non-JSON for %q: %v (body: %s)",
				client.Name(), query, err, preview)
			continue
		}

		path := filepath.Join(dir, client.Name()+".json")
		if err := writeJSON(path, payload); err != nil {
			f.logger.Error("[fetcher] write %s: %v", path, err)
			continue
		}
		f.logger.Info("[fetcher] %s payload for %q saved to %s", client.Name(), query, path)
	}
}

// writeJSON writes an indented, UTF-8 JSON file durably: the data is synced
// to disk before close so a crash cannot leave a truncated payload.
func writeJSON(path string, payload any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(f)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(payload); err != nil {
		_ = f.Close()
		return fmt.Errorf("encode: %w", err)
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return fmt.Errorf("sync: %w", err)
	}
	return f.Close()
}
