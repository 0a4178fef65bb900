// Package fetch - browser.go provides a headless browser fallback for runs
// without a scraping service credential.
package fetch

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/chromedp"

	"github.com/jonathan/listing-insights/internal/listing"
)

// BrowserClient renders listing pages locally with a headless browser.
// It produces the same two textual views as the scraping service: the
// rendered HTML, and a markdown-like text rendering derived from it.
// Requires Chrome/Chromium to be installed on the system.
type BrowserClient struct {
	Timeout time.Duration
	Verbose bool
}

// NewBrowserClient creates a browser-backed fetcher with default timeout.
func NewBrowserClient(verbose bool) *BrowserClient {
	return &BrowserClient{Timeout: 30 * time.Second, Verbose: verbose}
}

// Listing renders the product page for an identifier in a headless browser.
func (b *BrowserClient) Listing(ctx context.Context, id string) (*listing.RawContent, error) {
	url := ProductURL(id)
	if b.Verbose {
		log.Printf("[BROWSER] Rendering %s", url)
	}

	allocCtx, cancel := chromedp.NewExecAllocator(ctx,
		append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
		)...,
	)
	defer cancel()

	browserCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	browserCtx, cancel = context.WithTimeout(browserCtx, b.Timeout)
	defer cancel()

	var html string
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body"),
		// Let lazy-loaded gallery images populate
		chromedp.Sleep(3*time.Second),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		return nil, &Error{Identifier: id, Message: "browser rendering failed", Cause: err}
	}

	markdown, err := textView(html)
	if err != nil {
		return nil, &Error{Identifier: id, Message: "failed to derive text view", Cause: err}
	}

	if b.Verbose {
		log.Printf("[BROWSER] Rendered %d bytes of HTML", len(html))
	}

	return &listing.RawContent{
		Markdown:  markdown,
		HTML:      html,
		FetchedAt: time.Now().UTC(),
	}, nil
}

// textView derives a line-oriented plain text rendering from HTML, standing
// in for the scraping service's markdown view.
func textView(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", err
	}

	doc.Find("script, style, noscript").Remove()

	var lines []string
	doc.Find("h1, h2, h3, li, p, span").Each(func(_ int, s *goquery.Selection) {
		text := strings.TrimSpace(s.Text())
		if text == "" {
			return
		}
		switch goquery.NodeName(s) {
		case "h1":
			lines = append(lines, "# "+text)
		case "h2":
			lines = append(lines, "## "+text)
		case "h3":
			lines = append(lines, "### "+text)
		case "li":
			lines = append(lines, "- "+text)
		default:
			lines = append(lines, text)
		}
	})

	return strings.Join(lines, "\n"), nil
}
