package dedupe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/audreymhoughton/lead-lab/internal/domain"
)

func TestKeyIgnoresMutableFields(t *testing.T) {
	a := domain.Lead{Company: "Acme Pod", Website: "acme.fm", Notes: "first pass"}
	b := domain.Lead{Company: "Acme Pod", Website: "acme.fm", Notes: "totally different",
		WhyFit: "sponsors similar shows", DateAdded: "2020-01-01"}

	ka, err := Key(a)
	require.NoError(t, err)
	kb, err := Key(b)
	require.NoError(t, err)
	assert.Equal(t, ka, kb)
}

func TestKeyChangesWithIdentityFields(t *testing.T) {
	base := domain.Lead{Company: "Acme Pod", Website: "acme.fm"}
	k0, err := Key(base)
	require.NoError(t, err)

	otherCompany := base
	otherCompany.Company = "Beta Pod"
	k1, err := Key(otherCompany)
	require.NoError(t, err)
	assert.NotEqual(t, k0, k1)

	otherSite := base
	otherSite.Website = "beta.fm"
	k2, err := Key(otherSite)
	require.NoError(t, err)
	assert.NotEqual(t, k0, k2)
}

func TestKeyNormalization(t *testing.T) {
	a := domain.Lead{Company: "  ACME   Pod ", Website: "ACME.FM"}
	b := domain.Lead{Company: "acme pod", Website: "acme.fm"}

	ka, err := Key(a)
	require.NoError(t, err)
	kb, err := Key(b)
	require.NoError(t, err)
	assert.Equal(t, ka, kb)
}

func TestKeyFallbackTiers(t *testing.T) {
	withSite := domain.Lead{Company: "Acme", Website: "acme.fm", Email: "x@acme.fm", SourceURL: "https://list.example"}
	withEmail := domain.Lead{Company: "Acme", Email: "x@acme.fm", SourceURL: "https://list.example"}
	withSource := domain.Lead{Company: "Acme", SourceURL: "https://list.example"}

	k1, err := Key(withSite)
	require.NoError(t, err)
	k2, err := Key(withEmail)
	require.NoError(t, err)
	k3, err := Key(withSource)
	require.NoError(t, err)

	// each tier produces a distinct, stable key
	assert.NotEqual(t, k1, k2)
	assert.NotEqual(t, k2, k3)
}

func TestKeyShape(t *testing.T) {
	k, err := Key(domain.Lead{Company: "Acme", Website: "acme.fm"})
	require.NoError(t, err)
	assert.Len(t, k, 12)
	for _, r := range k {
		ok := (r >= '0' && r <= '9') || (r >= 'a' && r <= 'z')
		assert.True(t, ok, "key char %q", r)
	}
}

func TestKeyInsufficientIdentity(t *testing.T) {
	_, err := Key(domain.Lead{Company: "Acme"})
	assert.ErrorIs(t, err, ErrInsufficientIdentity)

	_, err = Key(domain.Lead{Website: "acme.fm"})
	assert.ErrorIs(t, err, ErrInsufficientIdentity)
}

func TestCompanyKey(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"The Acme Podcast Co.", "acme-podcast"},
		{"Acme Podcast", "acme-podcast"},
		{"Beta & Sons LLC", "beta-and-sons"},
		{"  Gamma   Media, Inc.", "gamma-media"},
		{"", ""},
		// no sluggable tokens at all: empty, never a merge key
		{"The Co.", ""},
		{"株式会社ポッド", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CompanyKey(tt.in), "input %q", tt.in)
	}
}
