package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateRequiresCompany(t *testing.T) {
	_, _, err := Validate(map[string]string{"Company": "   "})
	require.Error(t, err)

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "Company", ve.Field)
}

func TestValidateEnums(t *testing.T) {
	tests := []struct {
		name    string
		row     map[string]string
		wantErr string
	}{
		{
			name:    "unknown category fails loudly",
			row:     map[string]string{"Company": "Acme", "Category": "Webinar"},
			wantErr: `invalid Category: "Webinar"`,
		},
		{
			name:    "unknown status fails loudly",
			row:     map[string]string{"Company": "Acme", "Status": "Ghosted"},
			wantErr: `invalid Status: "Ghosted"`,
		},
		{
			name: "blank enums default",
			row:  map[string]string{"Company": "Acme"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lead, _, err := Validate(tt.row)
			if tt.wantErr != "" {
				require.EqualError(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, CategoryOther, lead.Category)
			assert.Equal(t, StatusNew, lead.Status)
		})
	}
}

func TestValidateNormalizesAndFlags(t *testing.T) {
	lead, warnings, err := Validate(map[string]string{
		"Company": "Acme",
		"Email":   "  Jane@ACME.FM ",
		"Website": " HTTPS://ACME.FM/Sponsors ",
	})
	require.NoError(t, err)

	assert.Equal(t, "Jane@acme.fm", lead.Email)
	assert.Equal(t, "https://acme.fm/Sponsors", lead.Website)
	assert.Empty(t, warnings)
}

func TestValidateKeepsMalformedWithWarning(t *testing.T) {
	lead, warnings, err := Validate(map[string]string{
		"Company": "Acme",
		"Email":   "not-an-email",
	})
	require.NoError(t, err)

	// best-effort research tool: flagged, not rejected
	assert.Equal(t, "not-an-email", lead.Email)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "Email")
}

func TestValidateStampsDateAdded(t *testing.T) {
	lead, _, err := Validate(map[string]string{"Company": "Acme"})
	require.NoError(t, err)
	assert.Equal(t, Today(), lead.DateAdded)

	lead, _, err = Validate(map[string]string{"Company": "Acme", "DateAdded": "2024-05-01"})
	require.NoError(t, err)
	assert.Equal(t, "2024-05-01", lead.DateAdded)
}

func TestRecordRoundTrip(t *testing.T) {
	l := Lead{
		Company:  "Acme Pod",
		Website:  "acme.fm",
		Category: CategoryPodcast,
		Status:   StatusReviewed,
		Key:      "abc123",
	}

	got := FromRowMap(l.RowMap())
	assert.True(t, l.Equal(got))
	assert.Equal(t, len(Columns), len(l.Record()))
}
