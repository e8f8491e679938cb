package enrich

import (
	"context"
	"html"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/audreymhoughton/lead-lab/internal/logging"
	"github.com/audreymhoughton/lead-lab/internal/store"
)

var emailHarvestRe = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)

// Local-part keywords scored when ranking harvested inboxes. Partnership and
// sponsorship inboxes beat generic contact/support ones; noreply sinks.
var inboxRank = map[string]int{
	"partnership": 100, "sponsor": 95, "advert": 90, "marketing": 80,
	"brand": 75, "media": 70, "press": 65, "pr": 60, "podcast": 55,
	"audio": 50, "info": 40, "hello": 40, "contact": 35, "support": 20,
	"noreply": -100,
}

var brandInboxHints = map[string]bool{
	"partnership": true, "partnerships": true, "sponsor": true, "sponsors": true,
	"sponsorship": true, "sponsorships": true, "advert": true, "advertise": true,
	"advertising": true, "ads": true, "media": true, "mediarelations": true,
	"press": true, "pr": true, "marketing": true, "brand": true,
	"brandpartners": true, "podcast": true, "audio": true,
}

var (
	atObfuscationRe  = regexp.MustCompile(`(?i)\[\s*at\s*\]|\(\s*at\s*\)|\s+at\s+`)
	dotObfuscationRe = regexp.MustCompile(`(?i)\[\s*dot\s*\]|\(\s*dot\s*\)|\s+dot\s+`)
)

func deobfuscate(s string) string {
	s = html.UnescapeString(s)
	s = atObfuscationRe.ReplaceAllString(s, "@")
	s = dotObfuscationRe.ReplaceAllString(s, ".")
	return s
}

func scoreEmail(email, siteDomain string) int {
	lower := strings.ToLower(email)
	local, dom, _ := strings.Cut(lower, "@")

	score := 0
	for k, v := range inboxRank {
		if strings.Contains(local, k) {
			score += v
		}
	}
	if siteDomain != "" && strings.HasSuffix(dom, siteDomain) {
		score += 25
	}
	if brandInboxHints[local] {
		score += 40
	}
	return score
}

func harvestEmails(body string) map[string]bool {
	body = deobfuscate(body)
	found := map[string]bool{}
	for _, e := range emailHarvestRe.FindAllString(body, -1) {
		found[e] = true
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return found
	}
	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		if !strings.HasPrefix(href, "mailto:") {
			return
		}
		addr := strings.SplitN(strings.TrimPrefix(href, "mailto:"), "?", 2)[0]
		if emailHarvestRe.MatchString(addr) {
			found[addr] = true
		}
	})
	return found
}

// ScanSite visits the configured page list for one site and returns scored
// candidate emails plus contact-form URLs. Results are cached by domain so a
// second lead on the same site costs nothing.
func (e *Enricher) ScanSite(ctx context.Context, website string) (store.ContactScan, error) {
	scan := store.ContactScan{Emails: map[string]int{}}

	base := normalizeBase(website)
	siteDomain := domainOf(base)
	if siteDomain == "" {
		return scan, nil
	}

	if e.Cache != nil {
		if cached, ok, err := e.Cache.GetContactScan(ctx, siteDomain); err == nil && ok {
			logging.Debug().Str("domain", siteDomain).Msg("contact scan cache hit")
			return cached, nil
		}
	}

	seen := map[string]bool{}
	for _, page := range e.Pages {
		target := joinPage(base, page)
		if target == "" || seen[target] {
			continue
		}
		seen[target] = true

		if err := e.limiter.waitURL(ctx, target); err != nil {
			return scan, err // context canceled
		}

		body, err := e.fetchBody(ctx, target)
		if err != nil {
			logging.Debug().Str("url", target).Err(err).Msg("page miss")
			continue
		}

		for addr := range harvestEmails(body) {
			s := scoreEmail(addr, siteDomain)
			if cur, ok := scan.Emails[addr]; !ok || s > cur {
				scan.Emails[addr] = s
			}
		}

		lowTarget := strings.ToLower(target)
		hasForm := strings.Contains(body, "<form") &&
			(strings.Contains(lowTarget, "contact") || strings.Contains(lowTarget, "support"))
		if hasForm || strings.Contains(body, `type="email"`) {
			scan.Forms = append(scan.Forms, target)
		}
	}

	logging.Info().
		Str("domain", siteDomain).
		Int("emails", len(scan.Emails)).
		Int("forms", len(scan.Forms)).
		Msg("contact scan done")

	if e.Cache != nil {
		if err := e.Cache.PutContactScan(ctx, siteDomain, scan); err != nil {
			logging.Warn().Str("domain", siteDomain).Err(err).Msg("cache write failed")
		}
	}
	return scan, nil
}

func (e *Enricher) fetchBody(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := e.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", errHTTPStatus(resp.StatusCode, url)
	}
	b, err := io.ReadAll(io.LimitReader(resp.Body, 2<<20))
	return string(b), err
}

func joinPage(base, page string) string {
	u, err := url.Parse(strings.TrimRight(base, "/"))
	if err != nil {
		return ""
	}
	ref, err := url.Parse(strings.TrimSpace(page))
	if err != nil {
		return ""
	}
	return u.ResolveReference(ref).String()
}

// bestEmail picks the top-scored address; ties break alphabetically so runs
// are deterministic.
func bestEmail(emails map[string]int) string {
	best := ""
	bestScore := 0
	keys := make([]string, 0, len(emails))
	for k := range emails {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if best == "" || emails[k] > bestScore {
			best, bestScore = k, emails[k]
		}
	}
	return best
}

// rankForms orders contact-form URLs: sponsorship/advertising pages first,
// then brand/media/press, then plain contact pages.
func rankForms(forms []string) []string {
	out := append([]string(nil), forms...)
	weight := func(u string) int {
		lu := strings.ToLower(u)
		switch {
		case strings.Contains(lu, "advert") || strings.Contains(lu, "sponsor"):
			return 0
		case strings.Contains(lu, "brand") || strings.Contains(lu, "media") || strings.Contains(lu, "press"):
			return 1
		case strings.Contains(lu, "contact"):
			return 2
		default:
			return 3
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return weight(out[i]) < weight(out[j]) })
	return out
}
