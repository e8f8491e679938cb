package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// Cache is the sqlite-backed enrichment cache. Fetched site metadata and
// contact scans are keyed by domain so re-running enrichment over the same
// batch does not hammer the same sites again.
type Cache struct {
	Pool *sql.DB
}

func OpenCache(path string) (*Cache, error) {
	// modernc sqlite DSN: file:foo.db?_pragma=busy_timeout(5000)
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)", path)

	pool, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	pool.SetMaxOpenConns(1) // sqlite wants one writer
	pool.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := pool.PingContext(ctx); err != nil {
		_ = pool.Close()
		return nil, err
	}

	c := &Cache{Pool: pool}
	if err := c.migrate(); err != nil {
		_ = pool.Close()
		return nil, err
	}
	return c, nil
}

func (c *Cache) Close() error {
	if c == nil || c.Pool == nil {
		return nil
	}
	return c.Pool.Close()
}

func (c *Cache) migrate() error {
	tx, err := c.Pool.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var v int
	if err := tx.QueryRow(`PRAGMA user_version;`).Scan(&v); err != nil {
		return err
	}
	if v >= 1 {
		return tx.Commit()
	}

	if _, err := tx.Exec(`
CREATE TABLE IF NOT EXISTS site_meta (
  domain TEXT PRIMARY KEY,
  title TEXT NOT NULL DEFAULT '',
  description TEXT NOT NULL DEFAULT '',
  fetched_at TEXT NOT NULL
);
`); err != nil {
		return err
	}

	if _, err := tx.Exec(`
CREATE TABLE IF NOT EXISTS contact_scans (
  domain TEXT PRIMARY KEY,
  emails TEXT NOT NULL DEFAULT '{}',
  forms TEXT NOT NULL DEFAULT '[]',
  fetched_at TEXT NOT NULL
);
`); err != nil {
		return err
	}

	if _, err := tx.Exec(`PRAGMA user_version = 1;`); err != nil {
		return err
	}
	return tx.Commit()
}

// SiteMeta is a cached title/description pair for a domain.
type SiteMeta struct {
	Title       string
	Description string
}

// GetSiteMeta returns the cached meta and whether the domain was scanned
// before. A hit with empty fields still counts: it stops retry storms on
// sites that simply have no usable metadata.
func (c *Cache) GetSiteMeta(ctx context.Context, domain string) (SiteMeta, bool, error) {
	domain = normalizeDomain(domain)
	if domain == "" {
		return SiteMeta{}, false, nil
	}

	var m SiteMeta
	err := c.Pool.QueryRowContext(ctx,
		`SELECT title, description FROM site_meta WHERE domain = ? LIMIT 1;`,
		domain,
	).Scan(&m.Title, &m.Description)
	if err == sql.ErrNoRows {
		return SiteMeta{}, false, nil
	}
	if err != nil {
		return SiteMeta{}, false, err
	}
	return m, true, nil
}

func (c *Cache) PutSiteMeta(ctx context.Context, domain string, m SiteMeta) error {
	domain = normalizeDomain(domain)
	if domain == "" {
		return nil
	}
	_, err := c.Pool.ExecContext(ctx, `
INSERT INTO site_meta(domain, title, description, fetched_at)
VALUES(?,?,?,?)
ON CONFLICT(domain) DO UPDATE SET
  title = excluded.title,
  description = excluded.description,
  fetched_at = excluded.fetched_at;
`, domain, m.Title, m.Description, time.Now().UTC().Format(time.RFC3339))
	return err
}

// ContactScan is a cached contact-discovery result: candidate emails with
// their scores, plus contact-form URLs found on the site.
type ContactScan struct {
	Emails map[string]int
	Forms  []string
}

func (c *Cache) GetContactScan(ctx context.Context, domain string) (ContactScan, bool, error) {
	domain = normalizeDomain(domain)
	if domain == "" {
		return ContactScan{}, false, nil
	}

	var emailsJSON, formsJSON string
	err := c.Pool.QueryRowContext(ctx,
		`SELECT emails, forms FROM contact_scans WHERE domain = ? LIMIT 1;`,
		domain,
	).Scan(&emailsJSON, &formsJSON)
	if err == sql.ErrNoRows {
		return ContactScan{}, false, nil
	}
	if err != nil {
		return ContactScan{}, false, err
	}

	scan := ContactScan{Emails: map[string]int{}}
	_ = json.Unmarshal([]byte(emailsJSON), &scan.Emails)
	_ = json.Unmarshal([]byte(formsJSON), &scan.Forms)
	return scan, true, nil
}

func (c *Cache) PutContactScan(ctx context.Context, domain string, scan ContactScan) error {
	domain = normalizeDomain(domain)
	if domain == "" {
		return nil
	}

	emailsJSON, _ := json.Marshal(scan.Emails)
	formsJSON, _ := json.Marshal(scan.Forms)

	_, err := c.Pool.ExecContext(ctx, `
INSERT INTO contact_scans(domain, emails, forms, fetched_at)
VALUES(?,?,?,?)
ON CONFLICT(domain) DO UPDATE SET
  emails = excluded.emails,
  forms = excluded.forms,
  fetched_at = excluded.fetched_at;
`, domain, string(emailsJSON), string(formsJSON), time.Now().UTC().Format(time.RFC3339))
	return err
}

func normalizeDomain(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.TrimPrefix(s, "www.")
}
