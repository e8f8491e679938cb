package dedupe

import "strings"

// Trailing legal suffixes dropped when slugging a company name.
var legalSuffixes = map[string]bool{
	"inc": true, "llc": true, "co": true, "company": true,
	"corp": true, "corporation": true, "ltd": true, "plc": true,
	"gmbh": true, "sa": true, "bv": true,
}

// CompanyKey slugs a company name for use as a secondary dedupe key, so
// "The Acme Podcast Co." and "Acme Podcast" collapse even when their
// websites differ.
func CompanyKey(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = strings.ReplaceAll(s, "&", " and ")

	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteByte(' ')
		}
	}

	tokens := strings.Fields(b.String())
	out := tokens[:0]
	for _, t := range tokens {
		if t == "the" {
			continue
		}
		out = append(out, t)
	}
	for len(out) > 0 && legalSuffixes[out[len(out)-1]] {
		out = out[:len(out)-1]
	}
	return strings.Join(out, "-")
}
