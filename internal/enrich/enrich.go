// Package enrich fills blank context fields on leads from fetched webpage
// data. It never overwrites a non-blank field and never touches the fields
// identity keys derive from; failures leave the lead unchanged.
package enrich

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/audreymhoughton/lead-lab/internal/config"
	"github.com/audreymhoughton/lead-lab/internal/domain"
	"github.com/audreymhoughton/lead-lab/internal/logging"
	"github.com/audreymhoughton/lead-lab/internal/store"
)

type Enricher struct {
	Cache     *store.Cache
	Pages     []string
	Workers   int
	MaxRows   int
	OnlyBlank bool

	client  *http.Client
	limiter *hostLimiter
}

func New(cfg config.Config, cache *store.Cache) *Enricher {
	return &Enricher{
		Cache:     cache,
		Pages:     cfg.Enrich.Pages,
		Workers:   cfg.Enrich.Workers,
		MaxRows:   cfg.Enrich.MaxRows,
		OnlyBlank: cfg.Enrich.OnlyBlank,
		client: &http.Client{
			Timeout: time.Duration(cfg.Enrich.TimeoutSeconds) * time.Second,
		},
		limiter: newHostLimiter(cfg.Enrich.HostRPS, cfg.Enrich.HostBurst),
	}
}

// Notes runs the site-meta pass: rows with a website and thin notes get the
// page title appended. Fetches fan out across workers, but every result is
// collected before anything is returned, so callers reconcile against a
// settled batch.
func (e *Enricher) Notes(ctx context.Context, leads []domain.Lead) []domain.Lead {
	type target struct {
		idx  int
		lead domain.Lead
	}

	var targets []target
	for i, l := range leads {
		if l.Website == "" || len(l.Notes) >= 5 {
			continue
		}
		targets = append(targets, target{idx: i, lead: l})
		if e.MaxRows > 0 && len(targets) >= e.MaxRows {
			break
		}
	}

	results := make([]domain.Lead, len(targets))
	changed := make([]bool, len(targets))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.Workers)
	for i, t := range targets {
		g.Go(func() error {
			lead := t.lead

			if err := e.limiter.waitURL(gctx, normalizeBase(lead.Website)); err != nil {
				return nil // context done; leave lead unchanged
			}

			meta, err := e.siteMeta(gctx, lead.Website)
			if err != nil {
				logging.Warn().Str("company", lead.Company).Err(err).Msg("site meta fetch failed")
				return nil
			}
			if meta.Title == "" {
				return nil
			}

			lead.Notes = strings.Trim(strings.TrimSpace(lead.Notes+" | Title: "+meta.Title), "|")
			lead.Notes = strings.TrimSpace(lead.Notes)
			results[i] = lead
			changed[i] = true
			return nil
		})
	}
	_ = g.Wait()

	var updated []domain.Lead
	for i := range targets {
		if changed[i] {
			updated = append(updated, results[i])
		}
	}
	logging.Info().Int("scanned", len(targets)).Int("updated", len(updated)).Msg("site meta enrichment done")
	return updated
}

// siteMeta consults the cache before fetching.
func (e *Enricher) siteMeta(ctx context.Context, website string) (SiteMeta, error) {
	dom := domainOf(normalizeBase(website))
	if e.Cache != nil {
		if m, ok, err := e.Cache.GetSiteMeta(ctx, dom); err == nil && ok {
			return SiteMeta{Title: m.Title, Description: m.Description, Domain: dom}, nil
		}
	}

	meta, err := FetchSiteMeta(ctx, e.client, website)
	if err != nil {
		return meta, err
	}
	if e.Cache != nil {
		_ = e.Cache.PutSiteMeta(ctx, dom, store.SiteMeta{Title: meta.Title, Description: meta.Description})
	}
	return meta, nil
}

// Contacts runs the contact-discovery pass: blank Email and ContactFormURL
// fields get the best harvested values, alternates and form URLs land in
// Notes. Email only fills when the row already has a Website, so the derived
// identity key cannot shift underneath the lead.
func (e *Enricher) Contacts(ctx context.Context, leads []domain.Lead) []domain.Lead {
	type target struct {
		idx  int
		lead domain.Lead
	}

	var targets []target
	for i, l := range leads {
		if l.Website == "" {
			continue
		}
		if e.OnlyBlank && l.Email != "" && l.ContactFormURL != "" {
			continue
		}
		targets = append(targets, target{idx: i, lead: l})
		if e.MaxRows > 0 && len(targets) >= e.MaxRows {
			break
		}
	}

	results := make([]domain.Lead, len(targets))
	changed := make([]bool, len(targets))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.Workers)
	for i, t := range targets {
		g.Go(func() error {
			lead := t.lead

			scan, err := e.ScanSite(gctx, lead.Website)
			if err != nil {
				logging.Warn().Str("company", lead.Company).Err(err).Msg("contact scan failed")
				return nil
			}
			if len(scan.Emails) == 0 && len(scan.Forms) == 0 {
				return nil
			}

			var extras []string

			if best := bestEmail(scan.Emails); best != "" && lead.Email == "" {
				lead.Email = domain.NormalizeEmail(best)
				extras = append(extras, "FoundEmail:"+best)
			}
			if lead.ContactFormURL == "" && len(scan.Forms) > 0 {
				lead.ContactFormURL = rankForms(scan.Forms)[0]
			}

			var others []string
			for addr := range scan.Emails {
				if addr != lead.Email {
					others = append(others, addr)
				}
			}
			sort.Strings(others)
			if len(others) > 0 {
				if len(others) > 4 {
					others = others[:4]
				}
				extras = append(extras, "AltEmails:"+strings.Join(others, ","))
			}
			if len(scan.Forms) > 0 {
				forms := rankForms(scan.Forms)
				if len(forms) > 3 {
					forms = forms[:3]
				}
				extras = append(extras, "Forms:"+strings.Join(forms, ","))
			}

			if len(extras) > 0 {
				joined := strings.Join(extras, " ")
				if lead.Notes == "" {
					lead.Notes = joined
				} else {
					lead.Notes = lead.Notes + " | " + joined
				}
			}

			if !lead.Equal(t.lead) {
				results[i] = lead
				changed[i] = true
			}
			return nil
		})
	}
	_ = g.Wait()

	var updated []domain.Lead
	for i := range targets {
		if changed[i] {
			updated = append(updated, results[i])
		}
	}
	logging.Info().Int("scanned", len(targets)).Int("updated", len(updated)).Msg("contact enrichment done")
	return updated
}

func errHTTPStatus(code int, url string) error {
	return fmt.Errorf("GET %s: HTTP %d", url, code)
}
