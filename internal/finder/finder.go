// Package finder turns "best podcasts of..." style list pages into candidate
// lead rows by harvesting external links. Candidates are raw material for
// review, not finished leads.
package finder

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"github.com/audreymhoughton/lead-lab/internal/domain"
	"github.com/audreymhoughton/lead-lab/internal/logging"
)

const userAgent = "LeadLab/0.4 (+research-only; no outreach)"

type Finder struct {
	BlockedDomains []string
	Client         *http.Client
}

func New(blocked []string) *Finder {
	return &Finder{
		BlockedDomains: blocked,
		Client:         &http.Client{Timeout: 12 * time.Second},
	}
}

// FromURLs fetches each list page and returns candidate rows. Per-URL
// failures are logged and skipped; one dead link should not sink a session.
func (f *Finder) FromURLs(ctx context.Context, urls []string, topic string) []map[string]string {
	var out []map[string]string
	for _, u := range urls {
		cands, err := f.fromURL(ctx, u)
		if err != nil {
			logging.Warn().Str("url", u).Err(err).Msg("finder fetch failed")
			continue
		}
		for _, c := range cands {
			c["Category"] = string(topicCategory(topic))
			c["Status"] = string(domain.StatusNew)
			out = append(out, c)
		}
	}
	logging.Info().Int("urls", len(urls)).Int("candidates", len(out)).Msg("finder done")
	return out
}

func (f *Finder) fromURL(ctx context.Context, raw string) ([]map[string]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, raw, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, err
	}
	return f.extract(doc, raw), nil
}

// Extract pulls candidate (Company, Website) pairs out of a parsed list page.
// Exported via FromHTML for tests; fromURL feeds it live documents.
func (f *Finder) extract(doc *goquery.Document, sourceURL string) []map[string]string {
	srcDomain := hostOf(sourceURL)

	var rows []map[string]string
	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href := strings.TrimSpace(a.AttrOr("href", ""))
		text := cleanName(a.Text())

		if len(text) < 2 || !strings.HasPrefix(href, "http") {
			return
		}
		if !f.looksExternal(href, srcDomain) {
			return
		}

		rows = append(rows, map[string]string{
			"Company":   text,
			"Website":   href,
			"WhyFit":    "Mentioned in sponsor/brands list on " + srcDomain,
			"SourceURL": sourceURL,
		})
	})
	return rows
}

// FromHTML parses candidates out of an already-fetched page body.
func (f *Finder) FromHTML(body, sourceURL string) ([]map[string]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return nil, err
	}
	return f.extract(doc, sourceURL), nil
}

func (f *Finder) looksExternal(href, srcDomain string) bool {
	d := hostOf(href)
	if d == "" || d == srcDomain {
		return false
	}
	for _, blocked := range f.BlockedDomains {
		if d == blocked || strings.HasSuffix(d, "."+blocked) {
			return false
		}
	}
	return true
}

func hostOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(u.Host), "www.")
}

func cleanName(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if len(s) > 80 {
		// cut at a rune boundary so non-Latin names stay valid UTF-8
		n := 80
		for n > 0 && !utf8.RuneStart(s[n]) {
			n--
		}
		s = s[:n]
	}
	return s
}

func topicCategory(topic string) domain.Category {
	switch strings.ToLower(topic) {
	case "network":
		return domain.CategoryNetwork
	case "event":
		return domain.CategoryEvent
	default:
		return domain.CategoryPodcast
	}
}
