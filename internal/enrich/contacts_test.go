package enrich

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestDeobfuscate(t *testing.T) {
	for in, want := range map[string]string{
		"ads [at] acme [dot] fm":   "ads@acme.fm",
		"ads (at) acme (dot) fm":   "ads@acme.fm",
		"press at acme dot fm":     "press@acme.fm",
		"hello&#64;acme.fm":        "hello@acme.fm",
		"plain@acme.fm":            "plain@acme.fm",
	} {
		assert.Equal(t, want, deobfuscate(in), "input %q", in)
	}
}

func TestHarvestEmailsFindsTextAndMailto(t *testing.T) {
	body := `<html><body>
		<p>Reach us: sponsor [at] acme [dot] fm</p>
		<a href="mailto:press@acme.fm?subject=hi">press</a>
		<a href="/contact">not an email</a>
	</body></html>`

	got := harvestEmails(body)
	assert.True(t, got["sponsor@acme.fm"])
	assert.True(t, got["press@acme.fm"])
	assert.Len(t, got, 2)
}

func TestScoreEmailPrefersSponsorshipInboxes(t *testing.T) {
	sponsor := scoreEmail("sponsor@acme.fm", "acme.fm")
	info := scoreEmail("info@acme.fm", "acme.fm")
	noreply := scoreEmail("noreply@acme.fm", "acme.fm")
	offsite := scoreEmail("sponsor@agency.example", "acme.fm")

	assert.Greater(t, sponsor, info)
	assert.Greater(t, info, noreply)
	assert.Greater(t, sponsor, offsite, "same-domain inbox outranks an off-site one")
}

func TestScoreEmailBrandHintBonus(t *testing.T) {
	assert.Greater(t,
		scoreEmail("partnerships@acme.fm", "acme.fm"),
		scoreEmail("partnership-team-x@acme.fm", "acme.fm"))
}

func TestBestEmailDeterministicTieBreak(t *testing.T) {
	emails := map[string]int{
		"b@acme.fm": 50,
		"a@acme.fm": 50,
		"c@acme.fm": 10,
	}
	assert.Equal(t, "a@acme.fm", bestEmail(emails))
	assert.Equal(t, "", bestEmail(nil))
}

func TestRankFormsOrdersByPurpose(t *testing.T) {
	got := rankForms([]string{
		"https://acme.fm/contact",
		"https://acme.fm/about",
		"https://acme.fm/sponsor",
		"https://acme.fm/press",
	})
	assert.Equal(t, []string{
		"https://acme.fm/sponsor",
		"https://acme.fm/press",
		"https://acme.fm/contact",
		"https://acme.fm/about",
	}, got)
}

func TestJoinPage(t *testing.T) {
	assert.Equal(t, "https://acme.fm/contact", joinPage("https://acme.fm/", "/contact"))
	assert.Equal(t, "https://acme.fm/", joinPage("https://acme.fm", "/"))
}

func TestTruncateKeepsValidUTF8(t *testing.T) {
	title := strings.Repeat("ポ", 80) // 3 bytes per rune

	got := truncate(title, 200)
	assert.LessOrEqual(t, len(got), 200)
	assert.True(t, utf8.ValidString(got), "truncation must not split a rune")

	assert.Equal(t, "abc", truncate("abc", 10))
	assert.Equal(t, "ab", truncate("abcd", 2))
}

func TestNormalizeBase(t *testing.T) {
	assert.Equal(t, "https://acme.fm", normalizeBase("acme.fm"))
	assert.Equal(t, "http://acme.fm", normalizeBase("http://acme.fm"))
	assert.Equal(t, "", normalizeBase("  "))
}

func TestDomainOf(t *testing.T) {
	assert.Equal(t, "acme.fm", domainOf("https://www.Acme.fm/contact"))
	assert.Equal(t, "", domainOf("not a url %%"))
}
