package enrich

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

const userAgent = "LeadLab/0.4 (research-only; public contact discovery)"

// SiteMeta is what a single page fetch yields for the notes enrichment.
type SiteMeta struct {
	Title       string
	Description string
	Domain      string
}

// FetchSiteMeta grabs <title> and the meta description from a site's front
// page. Errors are the caller's to log; enrichment treats them as non-fatal.
func FetchSiteMeta(ctx context.Context, client *http.Client, rawURL string) (SiteMeta, error) {
	var meta SiteMeta

	base := normalizeBase(rawURL)
	if base == "" {
		return meta, fmt.Errorf("no usable url in %q", rawURL)
	}
	meta.Domain = domainOf(base)

	doc, err := fetchDoc(ctx, client, base)
	if err != nil {
		return meta, err
	}

	meta.Title = truncate(cleanText(doc.Find("title").First().Text()), 200)
	if desc, ok := doc.Find(`meta[name="description"]`).Attr("content"); ok {
		meta.Description = truncate(cleanText(desc), 300)
	}
	return meta, nil
}

func fetchDoc(ctx context.Context, client *http.Client, url string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("GET %s: HTTP %d", url, resp.StatusCode)
	}
	return goquery.NewDocumentFromReader(resp.Body)
}

// normalizeBase forces a scheme onto bare domains like "acme.fm".
func normalizeBase(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		return "https://" + raw
	}
	return raw
}

func domainOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	d := strings.ToLower(u.Host)
	return strings.TrimPrefix(d, "www.")
}

func cleanText(s string) string {
	s = strings.ReplaceAll(s, " ", " ")
	return strings.Join(strings.Fields(s), " ")
}

// truncate cuts at a rune boundary so multi-byte titles stay valid UTF-8.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
