// Package reconcile is the dedupe-and-sync core: it derives identity keys for
// a freshly loaded batch, collapses duplicates, diffs the batch against the
// remote store, and commits the result as one idempotent upsert.
package reconcile

import (
	"context"
	"errors"
	"fmt"

	"github.com/audreymhoughton/lead-lab/internal/dedupe"
	"github.com/audreymhoughton/lead-lab/internal/domain"
	"github.com/audreymhoughton/lead-lab/internal/logging"
)

// Action is the per-row outcome of one reconciliation run.
type Action string

const (
	ActionInsert   Action = "Insert"
	ActionUpdate   Action = "Update"
	ActionSkip     Action = "Skip"
	ActionRejected Action = "Rejected"
)

// Outcome is one line of the run report: which key, what happened, and for
// rejections, why. No silent data loss: every input row lands in exactly one
// Outcome or survives a merge into one.
type Outcome struct {
	Key     string
	Company string
	Action  Action
	Reason  string
}

// Report is what the operator sees after a run.
type Report struct {
	Outcomes  []Outcome
	Inserted  int
	Updated   int
	Skipped   int
	Rejected  int
	Committed bool
}

func (r *Report) add(o Outcome) {
	r.Outcomes = append(r.Outcomes, o)
	switch o.Action {
	case ActionInsert:
		r.Inserted++
	case ActionUpdate:
		r.Updated++
	case ActionSkip:
		r.Skipped++
	case ActionRejected:
		r.Rejected++
	}
}

// Local is the local store boundary the engine needs: the full surviving set
// written back after a successful commit.
type Local interface {
	Save(leads []domain.Lead) error
}

// Remote is the remote store boundary. FetchAll returns the remote copy keyed
// by identity key; Upsert applies inserts and updates as one logical call.
type Remote interface {
	FetchAll(ctx context.Context) (map[string]domain.Lead, error)
	Upsert(ctx context.Context, leads []domain.Lead) error
}

// Engine runs one batch reconciliation to completion.
type Engine struct {
	Local      Local
	Remote     Remote
	Precedence Precedence
}

func New(local Local, remote Remote) *Engine {
	return &Engine{Local: local, Remote: remote, Precedence: DefaultPrecedence()}
}

// RejectedRow pairs an unusable row with its outcome. The raw row is kept so
// a rejection never silently deletes anything from the local file.
type RejectedRow struct {
	Row     domain.Lead
	Outcome Outcome
}

// Batch is one deduped local batch: the surviving keyed leads plus every row
// that could not be validated or keyed.
type Batch struct {
	Leads    []domain.Lead
	Rejected []RejectedRow
}

// Dedupe validates and collapses one raw local batch. Each row gets its Key
// and CompanyKey derived; rows colliding on either are merged field-wise
// (later DateAdded wins, file order breaks ties). Rejections come back as
// outcomes, never as dropped rows.
func Dedupe(rows []map[string]string) Batch {
	var b Batch
	byKey := map[string]int{}        // identity key -> index in Leads
	byCompanyKey := map[string]int{} // company slug -> index in Leads

	for _, raw := range rows {
		lead, warnings, err := domain.Validate(raw)
		if err != nil {
			b.Rejected = append(b.Rejected, RejectedRow{
				Row: domain.FromRowMap(raw),
				Outcome: Outcome{
					Company: raw["Company"],
					Action:  ActionRejected,
					Reason:  err.Error(),
				},
			})
			continue
		}
		for _, w := range warnings {
			logging.Warn().Str("company", lead.Company).Msg(w)
		}

		key, err := dedupe.Key(lead)
		if err != nil {
			b.Rejected = append(b.Rejected, RejectedRow{
				Row: domain.FromRowMap(raw),
				Outcome: Outcome{
					Company: lead.Company,
					Action:  ActionRejected,
					Reason:  err.Error(),
				},
			})
			continue
		}
		lead.Key = key
		lead.CompanyKey = dedupe.CompanyKey(lead.Company)

		idx, collided := byKey[lead.Key]
		if !collided && lead.CompanyKey != "" {
			// An empty slug carries no identity; never merge on it.
			idx, collided = byCompanyKey[lead.CompanyKey]
		}
		if collided {
			merged := mergeLocal(b.Leads[idx], lead)
			// identity fields may shift during a merge; re-derive
			if k, err := dedupe.Key(merged); err == nil {
				merged.Key = k
			}
			merged.CompanyKey = dedupe.CompanyKey(merged.Company)
			b.Leads[idx] = merged
			byKey[merged.Key] = idx
			if merged.CompanyKey != "" {
				byCompanyKey[merged.CompanyKey] = idx
			}
			continue
		}

		b.Leads = append(b.Leads, lead)
		byKey[lead.Key] = len(b.Leads) - 1
		if lead.CompanyKey != "" {
			byCompanyKey[lead.CompanyKey] = len(b.Leads) - 1
		}
	}
	return b
}

// Run executes dedupe -> remote fetch -> per-key decision -> commit. On any
// remote failure it aborts with both stores untouched; the local CSV is only
// rewritten after the remote confirms the upsert, so the two copies never
// disagree about which rows were pushed.
func (e *Engine) Run(ctx context.Context, rows []map[string]string) (*Report, error) {
	report := &Report{}

	batch := Dedupe(rows)
	for _, r := range batch.Rejected {
		report.add(r.Outcome)
	}

	remote, err := e.Remote.FetchAll(ctx)
	if err != nil {
		return report, &RemoteError{Op: "fetch", Err: err}
	}

	var outbound []domain.Lead
	final := make([]domain.Lead, 0, len(batch.Leads)+len(batch.Rejected))
	for _, l := range batch.Leads {
		existing, ok := remote[l.Key]
		if !ok {
			outbound = append(outbound, l)
			final = append(final, l)
			report.add(Outcome{Key: l.Key, Company: l.Company, Action: ActionInsert})
			continue
		}

		merged := e.Precedence.MergeRemote(l, existing)
		final = append(final, merged)
		if merged.Equal(existing) {
			report.add(Outcome{Key: l.Key, Company: l.Company, Action: ActionSkip})
			continue
		}
		outbound = append(outbound, merged)
		report.add(Outcome{Key: l.Key, Company: l.Company, Action: ActionUpdate})
	}

	if len(outbound) > 0 {
		if err := e.Remote.Upsert(ctx, outbound); err != nil {
			return report, &RemoteError{Op: "upsert", Err: err}
		}
	}

	// Rejected rows stay in the local file; they just never reach the remote.
	for _, r := range batch.Rejected {
		final = append(final, r.Row)
	}

	// Remote confirmed (or nothing to push): persist keys and merges locally.
	if err := e.Local.Save(final); err != nil {
		return report, fmt.Errorf("write back local store: %w", err)
	}

	report.Committed = true
	e.log(report)
	return report, nil
}

// log emits the per-row outcome trail plus the run summary.
func (e *Engine) log(r *Report) {
	for _, o := range r.Outcomes {
		evt := logging.Info()
		if o.Action == ActionRejected {
			evt = logging.Warn()
		}
		evt.Str("key", o.Key).
			Str("company", o.Company).
			Str("action", string(o.Action))
		if o.Reason != "" {
			evt.Str("reason", o.Reason)
		}
		evt.Msg("reconcile")
	}
	logging.Info().
		Int("inserted", r.Inserted).
		Int("updated", r.Updated).
		Int("skipped", r.Skipped).
		Int("rejected", r.Rejected).
		Msg("reconcile complete")
}

// IsRowError reports whether err is per-row (collect and continue) rather
// than batch-fatal.
func IsRowError(err error) bool {
	var ve *domain.ValidationError
	var ee *domain.InvalidEnumError
	return errors.As(err, &ve) || errors.As(err, &ee) ||
		errors.Is(err, dedupe.ErrInsufficientIdentity)
}
