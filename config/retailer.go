package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ConfigError reports a missing or malformed configuration file. It aborts
// setup for the one retailer it belongs to, never the whole batch.
type ConfigError struct {
	File string
	Err  error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: load %s: %v", e.File, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// Retailer describes one retailer's search request template: how to reach
// the catalog API and where the free-text query is injected.
type Retailer struct {
	Name    string            `json:"name"`
	Method  string            `json:"method"`
	URL     string            `json:"url"`
	Headers map[string]string `json:"headers"`

	// Params are static URL query parameters sent on every request
	// (pagination and locale for search-block style APIs).
	Params map[string]string `json:"params"`

	// QueryIn is "query" (URL parameter) or "body" (JSON body field).
	QueryIn string `json:"queryIn"`

	// QueryKey names the parameter or body field receiving the search text.
	// For bodies it may be a dotted path, e.g. "filter.textQuery".
	QueryKey string `json:"queryKey"`

	// Browser routes the request through headless Chrome for APIs that
	// reject plain HTTP clients.
	Browser bool `json:"browser"`
}

// Proxies holds the proxy profile shared by all retailer clients.
type Proxies struct {
	HTTP  string `json:"http"`
	HTTPS string `json:"https"`
}

// URL returns the proxy address to use, preferring the HTTPS entry.
func (p *Proxies) URL() string {
	if p.HTTPS != "" {
		return p.HTTPS
	}
	return p.HTTP
}

// LoadRetailer reads configs/<name>.json into a Retailer template.
func LoadRetailer(dir, name string) (*Retailer, error) {
	file := name + ".json"
	data, err := os.ReadFile(filepath.Join(dir, file))
	if err != nil {
		return nil, &ConfigError{File: file, Err: err}
	}

	r := &Retailer{}
	if err := json.Unmarshal(data, r); err != nil {
		return nil, &ConfigError{File: file, Err: err}
	}
	if r.Name == "" {
		r.Name = name
	}
	if r.Method == "" {
		r.Method = "GET"
	}
	r.Method = strings.ToUpper(r.Method)
	if r.URL == "" {
		return nil, &ConfigError{File: file, Err: fmt.Errorf("missing url")}
	}
	return r, nil
}

// LoadProxies reads configs/proxies.json. The file is required to exist but
// may hold empty entries, which disables the proxy.
func LoadProxies(dir string) (*Proxies, error) {
	data, err := os.ReadFile(filepath.Join(dir, "proxies.json"))
	if err != nil {
		return nil, &ConfigError{File: "proxies.json", Err: err}
	}

	p := &Proxies{}
	if err := json.Unmarshal(data, p); err != nil {
		return nil, &ConfigError{File: "proxies.json", Err: err}
	}
	return p, nil
}

// RetailerNames is the fixed set of retailers queried each run, in request
// order. Each entry must have a matching template file under the config dir.
var RetailerNames = []string{"5ka", "magnit", "lenta", "dixi"}
