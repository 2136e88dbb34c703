package retailer

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/gosha-popular/fstock-bot/utils"
)

type fakeSearcher struct {
	name  string
	body  string
	err   error
	calls int64
}

func (f *fakeSearcher) Name() string { return f.name }

func (f *fakeSearcher) Search(ctx context.Context, query string) ([]byte, error) {
	atomic.AddInt64(&f.calls, 1)
	if f.err != nil {
		return nil, f.err
	}
	return []byte(f.body), nil
}

func TestFetchAllContinuesPastFailures(t *testing.T) {
	dataDir := t.TempDir()
	broken := &fakeSearcher{name: "magnit", err: errors.New("connection reset")}
	blocked := &fakeSearcher{name: "lenta", body: "<html>Доступ ограничен</html>"}
	good := &fakeSearcher{name: "5ka", body: `{"products": [{"name": "Молоко", "prices": {"regular": "89.99"}}]}`}

	f := NewFetcher([]Searcher{broken, blocked, good}, dataDir, utils.NewLogger())
	f.FetchAll(context.Background(), "молоко 1л")

	dir := QueryDir(dataDir, "молоко 1л")
	if _, err := os.Stat(filepath.Join(dir, "magnit.json")); !os.IsNotExist(err) {
		t.Error("failed retailer must not leave a payload file")
	}
	if _, err := os.Stat(filepath.Join(dir, "lenta.json")); !os.IsNotExist(err) {
		t.Error("non-JSON response must not leave a payload file")
	}

	raw, err := os.ReadFile(filepath.Join(dir, "5ka.json"))
	if err != nil {
		t.Fatalf("healthy retailer payload missing: %v", err)
	}
	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		t.Fatalf("saved payload is not valid JSON: %v", err)
	}
	if _, ok := payload["products"]; !ok {
		t.Errorf("saved payload lost its structure: %s", raw)
	}
}

func TestFetchAllDedupsWithinOneRun(t *testing.T) {
	dataDir := t.TempDir()
	good := &fakeSearcher{name: "5ka", body: `{"products": []}`}

	f := NewFetcher([]Searcher{good}, dataDir, utils.NewLogger())
	f.FetchAll(context.Background(), "сливочное масло 180")
	f.FetchAll(context.Background(), "сливочное масло 180")

	if n := atomic.LoadInt64(&good.calls); n != 1 {
		t.Errorf("repeated query within one run must be fetched once, got %d searches", n)
	}
}

func TestFetcherRefetchesAfterReset(t *testing.T) {
	dataDir := t.TempDir()
	good := &fakeSearcher{name: "5ka", body: `{"products": []}`}

	f := NewFetcher([]Searcher{good}, dataDir, utils.NewLogger())
	f.FetchAll(context.Background(), "молоко 1л")

	// A later scheduled run starts from a clean slate even if the raw
	// payloads from the previous run are gone.
	dir := QueryDir(dataDir, "молоко 1л")
	if err := os.RemoveAll(dir); err != nil {
		t.Fatalf("RemoveAll: %v", err)
	}

	f.Reset()
	f.FetchAll(context.Background(), "молоко 1л")

	if n := atomic.LoadInt64(&good.calls); n != 2 {
		t.Errorf("query must be re-fetched after a reset, got %d searches", n)
	}
	if _, err := os.Stat(filepath.Join(dir, "5ka.json")); err != nil {
		t.Errorf("payload must be rewritten after a reset: %v", err)
	}
}
