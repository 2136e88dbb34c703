package retailer

import (
	"context"
	"net/url"
	"os"
	"os/exec"
	"time"

	"github.com/chromedp/chromedp"
)

// browserSearch fetches the catalog API through headless Chrome. Some
// retailers serve their search endpoint only to real browsers; rendering the
// response in a page and reading its text gets the same JSON the site's own
// frontend receives.
func (c *Client) browserSearch(ctx context.Context, query string) ([]byte, error) {
	target, err := url.Parse(c.cfg.URL)
	if err != nil {
		return nil, &RequestError{Retailer: c.cfg.Name, Err: err}
	}

	values := target.Query()
	for k, v := range c.cfg.Params {
		values.Set(k, v)
	}
	values.Set(c.cfg.QueryKey, query)
	target.RawQuery = values.Encode()

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent(userAgent),
	)
	if bin := findChromeBinary(); bin != "" {
		opts = append(opts, chromedp.ExecPath(bin))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	// Suppress chromedp log noise
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(func(string, ...interface{}) {}))
	defer cancelBrowser()

	runCtx, cancelTimeout := context.WithTimeout(browserCtx, 60*time.Second)
	defer cancelTimeout()

	var body string
	err = chromedp.Run(runCtx,
		chromedp.Navigate(target.String()),
		chromedp.Sleep(2*time.Second),
		chromedp.Evaluate(`document.body ? document.body.innerText : ""`, &body),
	)
	if err != nil {
		return nil, &RequestError{Retailer: c.cfg.Name, Err: err}
	}

	c.logger.Debug("[%s] browser fetch returned %d bytes", c.cfg.Name, len(body))
	return []byte(body), nil
}

// findChromeBinary locates a usable Chrome/Chromium binary, honoring the
// CHROME_BIN override.
func findChromeBinary() string {
	if bin := os.Getenv("CHROME_BIN"); bin != "" {
		return bin
	}
	for _, name := range []string{
		"google-chrome", "google-chrome-stable", "chromium", "chromium-browser",
	} {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}
	return ""
}
