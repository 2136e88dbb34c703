package retailer

import (
	"context"
	"fmt"
	"strings"
	"time"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"

	"github.com/gosha-popular/fstock-bot/config"
	"github.com/gosha-popular/fstock-bot/utils"
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
	"(KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36"

// RequestError reports a transport failure or a non-200 response from one
// retailer. It aborts that retailer's fetch for the current query only.
type RequestError struct {
	Retailer string
	Status   int
	Err      error
}

func (e *RequestError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("request: %s: %v", e.Retailer, e.Err)
	}
	return fmt.Sprintf("request: %s: unexpected status %d", e.Retailer, e.Status)
}

func (e *RequestError) Unwrap() error { return e.Err }

// Client executes one retailer's catalog search. It performs no retries;
// the fetcher decides whether to continue with other retailers.
type Client struct {
	cfg    *config.Retailer
	http   *resty.Client
	logger *utils.Logger
}

// NewClient builds a Client from a loaded retailer template and the shared
// proxy profile. The transport carries a browser-grade TLS fingerprint so
// retailers that fingerprint plain Go clients still answer.
func NewClient(cfg *config.Retailer, proxies *config.Proxies, logger *utils.Logger) *Client {
	c := resty.New()
	c.SetTimeout(30 * time.Second)
	c.SetHeader("user-agent", userAgent)
	c.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(c.GetClient().Transport)
	if proxies != nil && proxies.URL() != "" {
		c.SetProxy(proxies.URL())
	}

	return &Client{cfg: cfg, http: c, logger: logger}
}

// Name returns the retailer identifier this client serves.
func (c *Client) Name() string { return c.cfg.Name }

// Search injects the free-text query into the retailer's request template,
// executes the request and returns the raw response body on HTTP 200.
func (c *Client) Search(ctx context.Context, query string) ([]byte, error) {
	if c.cfg.Browser {
		return c.browserSearch(ctx, query)
	}

	req := c.http.R().SetContext(ctx).SetHeaders(c.cfg.Headers)

	switch c.cfg.QueryIn {
	case "body":
		req.SetHeader("content-type", "application/json")
		req.SetBody(buildBody(c.cfg.QueryKey, query))
	default:
		params := make(map[string]string, len(c.cfg.Params)+1)
		for k, v := range c.cfg.Params {
			params[k] = v
		}
		params[c.cfg.QueryKey] = query
		req.SetQueryParams(params)
	}

	var (
		res *resty.Response
		err error
	)
	if c.cfg.Method == "POST" {
		res, err = req.Post(c.cfg.URL)
	} else {
		res, err = req.Get(c.cfg.URL)
	}
	if err != nil {
		return nil, &RequestError{Retailer: c.cfg.Name, Err: err}
	}

	c.logger.Debug("[%s] response status: %d", c.cfg.Name, res.StatusCode())
	if res.StatusCode() != 200 {
		return nil, &RequestError{Retailer: c.cfg.Name, Status: res.StatusCode()}
	}
	return res.Body(), nil
}

// buildBody places the query at a dotted path inside a fresh JSON body, so
// templates like "filter.textQuery" produce {"filter":{"textQuery":q}}.
func buildBody(path, query string) map[string]any {
	body := make(map[string]any)
	parts := strings.Split(path, ".")

	current := body
	for _, part := range parts[:len(parts)-1] {
		next := make(map[string]any)
		current[part] = next
		current = next
	}
	current[parts[len(parts)-1]] = query
	return body
}
