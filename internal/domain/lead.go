package domain

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Lead is one prospective sponsorship contact. Research-only: there are no
// outreach fields here on purpose. Key and CompanyKey are derived, never
// user-supplied (see internal/dedupe).
type Lead struct {
	Company        string
	CompanyKey     string
	Website        string
	ContactName    string
	Role           string
	Email          string
	ContactFormURL string
	Category       Category
	WhyFit         string
	SourceURL      string
	Notes          string
	Status         Status // maintained by the client in the sheet, never by ingestion
	DateAdded      string // ISO date, set at creation, immutable after
	Key            string
}

type Category string

const (
	CategoryPodcast Category = "Podcast"
	CategoryZine    Category = "Zine"
	CategoryNetwork Category = "Network"
	CategoryEvent   Category = "Event"
	CategoryOther   Category = "Other"
)

type Status string

const (
	StatusNew       Status = "New"
	StatusReviewed  Status = "Reviewed"
	StatusContacted Status = "ContactedByClient"
	StatusDeclined  Status = "DeclinedByClient"
)

// InvalidEnumError reports an unrecognized Category or Status value.
type InvalidEnumError struct {
	Field string
	Value string
}

func (e *InvalidEnumError) Error() string {
	return fmt.Sprintf("invalid %s: %q", e.Field, e.Value)
}

func ParseCategory(s string) (Category, error) {
	switch c := Category(strings.TrimSpace(s)); c {
	case CategoryPodcast, CategoryZine, CategoryNetwork, CategoryEvent, CategoryOther:
		return c, nil
	case "":
		return CategoryOther, nil
	default:
		return "", &InvalidEnumError{Field: "Category", Value: s}
	}
}

func ParseStatus(s string) (Status, error) {
	switch st := Status(strings.TrimSpace(s)); st {
	case StatusNew, StatusReviewed, StatusContacted, StatusDeclined:
		return st, nil
	case "":
		return StatusNew, nil
	default:
		return "", &InvalidEnumError{Field: "Status", Value: s}
	}
}

func Categories() []Category {
	return []Category{CategoryPodcast, CategoryZine, CategoryNetwork, CategoryEvent, CategoryOther}
}

func Statuses() []Status {
	return []Status{StatusNew, StatusReviewed, StatusContacted, StatusDeclined}
}

// Today is the DateAdded stamp for freshly created leads.
func Today() string {
	return time.Now().UTC().Format("2006-01-02")
}

var emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// ValidationError rejects a row at ingestion. Row-level only: the batch keeps
// going and the row is named in the run report.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// Validate builds a Lead from a raw header->value row. Company is required.
// Category and Status must parse against their enums. Email and Website get
// trimmed and domain-lowercased when present; malformed-but-nonempty values
// are kept and returned as warnings rather than rejected.
func Validate(raw map[string]string) (Lead, []string, error) {
	get := func(k string) string { return strings.TrimSpace(raw[k]) }

	company := get("Company")
	if company == "" {
		return Lead{}, nil, &ValidationError{Field: "Company", Reason: "required"}
	}

	cat, err := ParseCategory(get("Category"))
	if err != nil {
		return Lead{}, nil, err
	}
	status, err := ParseStatus(get("Status"))
	if err != nil {
		return Lead{}, nil, err
	}

	var warnings []string

	email := NormalizeEmail(get("Email"))
	if email != "" && !emailRe.MatchString(email) {
		warnings = append(warnings, fmt.Sprintf("Email looks malformed: %q", email))
	}

	website := NormalizeURL(get("Website"))
	if website != "" && !strings.Contains(website, ".") {
		warnings = append(warnings, fmt.Sprintf("Website looks malformed: %q", website))
	}

	dateAdded := get("DateAdded")
	if dateAdded == "" {
		dateAdded = Today()
	}

	return Lead{
		Company:        company,
		CompanyKey:     get("CompanyKey"),
		Website:        website,
		ContactName:    get("ContactName"),
		Role:           get("Role"),
		Email:          email,
		ContactFormURL: get("ContactFormURL"),
		Category:       cat,
		WhyFit:         get("WhyFit"),
		SourceURL:      get("SourceURL"),
		Notes:          get("Notes"),
		Status:         status,
		DateAdded:      dateAdded,
		Key:            get("Key"),
	}, warnings, nil
}

// NormalizeEmail trims and lowercases the domain part; the local part keeps
// its case since some inboxes are case-sensitive in practice.
func NormalizeEmail(s string) string {
	s = strings.TrimSpace(s)
	at := strings.LastIndex(s, "@")
	if at < 0 {
		return s
	}
	return s[:at+1] + strings.ToLower(s[at+1:])
}

// NormalizeURL trims and lowercases scheme+host of a URL-shaped string,
// leaving the path alone.
func NormalizeURL(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	rest := s
	prefix := ""
	if i := strings.Index(s, "://"); i >= 0 {
		prefix = strings.ToLower(s[:i+3])
		rest = s[i+3:]
	}
	if j := strings.IndexByte(rest, '/'); j >= 0 {
		return prefix + strings.ToLower(rest[:j]) + rest[j:]
	}
	return prefix + strings.ToLower(rest)
}
