package reconcile

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/audreymhoughton/lead-lab/internal/domain"
)

type fakeLocal struct {
	saved   [][]domain.Lead
	saveErr error
}

func (f *fakeLocal) Save(leads []domain.Lead) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved = append(f.saved, leads)
	return nil
}

type fakeRemote struct {
	rows      map[string]domain.Lead
	upserts   [][]domain.Lead
	fetchErr  error
	upsertErr error
}

func (f *fakeRemote) FetchAll(ctx context.Context) (map[string]domain.Lead, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	out := map[string]domain.Lead{}
	for k, v := range f.rows {
		out[k] = v
	}
	return out, nil
}

func (f *fakeRemote) Upsert(ctx context.Context, leads []domain.Lead) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.upserts = append(f.upserts, leads)
	if f.rows == nil {
		f.rows = map[string]domain.Lead{}
	}
	for _, l := range leads {
		f.rows[l.Key] = l
	}
	return nil
}

func TestDedupeCollapsesByKey(t *testing.T) {
	batch := Dedupe([]map[string]string{
		{"Company": "Acme Pod", "Website": "acme.fm", "Notes": "from list A", "DateAdded": "2024-01-01"},
		{"Company": "Acme Pod", "Website": "acme.fm", "Notes": "from list B", "DateAdded": "2024-01-01"},
	})

	require.Len(t, batch.Leads, 1)
	assert.Empty(t, batch.Rejected)
	assert.Equal(t, "from list B", batch.Leads[0].Notes)
	assert.NotEmpty(t, batch.Leads[0].Key)
}

func TestDedupeCollapsesByCompanySlug(t *testing.T) {
	batch := Dedupe([]map[string]string{
		{"Company": "The Acme Podcast Co.", "Website": "acme.fm"},
		{"Company": "Acme Podcast", "Website": "acme.audio"},
	})

	// same company, website changed between imports: one surviving row
	require.Len(t, batch.Leads, 1)
}

func TestDedupeEmptySlugNeverMergesStrangers(t *testing.T) {
	// Non-Latin names (and stopword-only ones) slug to "": no shared identity.
	batch := Dedupe([]map[string]string{
		{"Company": "株式会社ポッド", "Website": "pod.jp"},
		{"Company": "라디오 주식회사", "Website": "radio.kr"},
		{"Company": "The Co.", "Website": "theco.fm"},
	})

	require.Len(t, batch.Leads, 3)
	assert.Empty(t, batch.Rejected)
}

func TestAddRowsEmptySlugNeverMergesStrangers(t *testing.T) {
	leads, res := AddRows(nil, []map[string]string{
		{"Company": "株式会社ポッド", "Website": "pod.jp"},
		{"Company": "라디오 주식회사", "Website": "radio.kr"},
	})

	require.Len(t, leads, 2)
	assert.Equal(t, 2, res.Inserted)

	// the same rows fold into themselves on re-import, not into each other
	var existing []map[string]string
	for _, l := range leads {
		existing = append(existing, l.RowMap())
	}
	leads2, res2 := AddRows(existing, []map[string]string{
		{"Company": "株式会社ポッド", "Website": "pod.jp"},
	})
	assert.Len(t, leads2, 2)
	assert.Equal(t, 0, res2.Inserted)
}

func TestDedupeRejectsWithoutDropping(t *testing.T) {
	batch := Dedupe([]map[string]string{
		{"Company": "", "Notes": "who is this"},
		{"Company": "No Identity Inc"},
		{"Company": "Fine", "Website": "fine.fm"},
	})

	require.Len(t, batch.Leads, 1)
	require.Len(t, batch.Rejected, 2)

	// raw rows survive rejection so nothing is silently lost
	assert.Equal(t, "who is this", batch.Rejected[0].Row.Notes)
	assert.Contains(t, batch.Rejected[0].Outcome.Reason, "Company")
	assert.Contains(t, batch.Rejected[1].Outcome.Reason, "insufficient identity")
}

func TestRunInsertsNewRows(t *testing.T) {
	local := &fakeLocal{}
	remote := &fakeRemote{}
	engine := New(local, remote)

	report, err := engine.Run(context.Background(), []map[string]string{
		{"Company": "Acme Pod", "Website": "acme.fm"},
	})
	require.NoError(t, err)

	assert.True(t, report.Committed)
	assert.Equal(t, 1, report.Inserted)
	require.Len(t, remote.upserts, 1)
	require.Len(t, local.saved, 1)
	assert.NotEmpty(t, local.saved[0][0].Key)
}

func TestRunIsIdempotent(t *testing.T) {
	local := &fakeLocal{}
	remote := &fakeRemote{}
	engine := New(local, remote)

	rows := []map[string]string{
		{"Company": "Acme Pod", "Website": "acme.fm", "DateAdded": "2024-01-01"},
	}

	first, err := engine.Run(context.Background(), rows)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Inserted)

	// second run against the state the first one pushed
	var again []map[string]string
	for _, l := range local.saved[0] {
		again = append(again, l.RowMap())
	}
	second, err := engine.Run(context.Background(), again)
	require.NoError(t, err)

	assert.Equal(t, 0, second.Inserted)
	assert.Equal(t, 0, second.Updated)
	assert.Equal(t, 1, second.Skipped)
	// no second network write
	assert.Len(t, remote.upserts, 1)
}

func TestRunStatusProtection(t *testing.T) {
	seed := domain.Lead{Company: "Acme Pod", Website: "acme.fm", Status: domain.StatusContacted, DateAdded: "2024-01-01"}
	batch := Dedupe([]map[string]string{seed.RowMap()})
	require.Len(t, batch.Leads, 1)
	key := batch.Leads[0].Key

	local := &fakeLocal{}
	remote := &fakeRemote{rows: map[string]domain.Lead{key: batch.Leads[0]}}
	engine := New(local, remote)

	report, err := engine.Run(context.Background(), []map[string]string{
		{"Company": "Acme Pod", "Website": "acme.fm", "Status": "New", "DateAdded": "2024-01-01"},
	})
	require.NoError(t, err)

	assert.Equal(t, domain.StatusContacted, remote.rows[key].Status)
	require.Len(t, local.saved, 1)
	assert.Equal(t, domain.StatusContacted, local.saved[0][0].Status)
	assert.Equal(t, 1, report.Skipped+report.Updated)
}

func TestRunUpdateMergesFieldwise(t *testing.T) {
	remoteLead := domain.Lead{Company: "Acme Pod", Website: "acme.fm",
		Email: "ads@acme.fm", Status: domain.StatusReviewed, DateAdded: "2024-01-01"}
	batch := Dedupe([]map[string]string{remoteLead.RowMap()})
	key := batch.Leads[0].Key

	local := &fakeLocal{}
	remote := &fakeRemote{rows: map[string]domain.Lead{key: batch.Leads[0]}}
	engine := New(local, remote)

	report, err := engine.Run(context.Background(), []map[string]string{
		{"Company": "Acme Pod", "Website": "acme.fm",
			"Notes": "new research", "DateAdded": "2024-01-01"},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, report.Updated)
	got := remote.rows[key]
	assert.Equal(t, "new research", got.Notes)
	assert.Equal(t, "ads@acme.fm", got.Email)                // remote fills local blank
	assert.Equal(t, domain.StatusReviewed, got.Status)       // client-maintained
}

func TestRunRejectedRowsNeverReachRemote(t *testing.T) {
	local := &fakeLocal{}
	remote := &fakeRemote{}
	engine := New(local, remote)

	report, err := engine.Run(context.Background(), []map[string]string{
		{"Company": "", "Notes": "nameless"},
		{"Company": "Fine", "Website": "fine.fm"},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, report.Rejected)
	require.Len(t, remote.upserts, 1)
	assert.Len(t, remote.upserts[0], 1)

	// the rejected raw row still lands back in the local file
	require.Len(t, local.saved, 1)
	assert.Len(t, local.saved[0], 2)
}

func TestRunAbortsOnRemoteFetchError(t *testing.T) {
	local := &fakeLocal{}
	remote := &fakeRemote{fetchErr: errors.New("auth expired")}
	engine := New(local, remote)

	report, err := engine.Run(context.Background(), []map[string]string{
		{"Company": "Acme", "Website": "acme.fm"},
	})

	var re *RemoteError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, "fetch", re.Op)
	assert.False(t, report.Committed)
	assert.Empty(t, local.saved, "local store must stay untouched on abort")
}

func TestRunAbortsOnUpsertError(t *testing.T) {
	local := &fakeLocal{}
	remote := &fakeRemote{upsertErr: errors.New("quota exceeded")}
	engine := New(local, remote)

	report, err := engine.Run(context.Background(), []map[string]string{
		{"Company": "Acme", "Website": "acme.fm"},
	})

	var re *RemoteError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, "upsert", re.Op)
	assert.False(t, report.Committed)
	assert.Empty(t, local.saved)
}

func TestAddRowsIdempotentImport(t *testing.T) {
	incoming := []map[string]string{
		{"Company": "Acme Pod", "Website": "acme.fm", "Notes": "n1"},
		{"Company": "Beta Zine", "Website": "beta.press"},
	}

	leads, res := AddRows(nil, incoming)
	require.Len(t, leads, 2)
	assert.Equal(t, 2, res.Inserted)

	// import the same file again over the saved state
	var existing []map[string]string
	for _, l := range leads {
		existing = append(existing, l.RowMap())
	}
	leads2, res2 := AddRows(existing, incoming)

	assert.Len(t, leads2, 2)
	assert.Equal(t, 0, res2.Inserted)
	assert.Equal(t, 0, res2.Merged)
}

func TestAddRowsRejectsInvalidIncoming(t *testing.T) {
	leads, res := AddRows(nil, []map[string]string{
		{"Company": ""},
		{"Company": "Acme", "Category": "Webinar", "Website": "acme.fm"},
	})

	assert.Empty(t, leads)
	require.Len(t, res.Rejected, 2)
	assert.Equal(t, ActionRejected, res.Rejected[0].Action)
}
