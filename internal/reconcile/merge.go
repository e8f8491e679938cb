package reconcile

import "github.com/audreymhoughton/lead-lab/internal/domain"

// Precedence is the per-field merge rule table. Fields listed in RemoteWins
// always take the remote value when merging against the remote store; every
// other field takes the local value if non-blank, else falls back to remote.
// One explicit table instead of conditionals scattered through the engine.
type Precedence struct {
	RemoteWins map[string]bool
}

// DefaultPrecedence protects the client-maintained columns. Status is edited
// in the sheet by the client and must survive any re-export; Notes often
// carries their annotations too, but local enrichment also appends there, so
// Notes stays local-wins like the rest.
func DefaultPrecedence() Precedence {
	return Precedence{RemoteWins: map[string]bool{"Status": true}}
}

// MergeRemote merges a local lead into its remote counterpart for an Update.
func (p Precedence) MergeRemote(local, remote domain.Lead) domain.Lead {
	out := local
	for _, col := range domain.Columns {
		switch {
		case p.RemoteWins[col]:
			if v := remote.Field(col); v != "" {
				out.SetField(col, v)
			}
		case local.Field(col) == "":
			out.SetField(col, remote.Field(col))
		}
	}
	return out
}

// mergeLocal collapses two local rows that derived the same key. Per field,
// the non-blank value from the later DateAdded wins; when the dates tie, the
// later row in file order wins. b is always the later row.
func mergeLocal(a, b domain.Lead) domain.Lead {
	newer, older := b, a
	if a.DateAdded > b.DateAdded {
		newer, older = a, b
	}

	out := older
	// surviving row keeps the earlier DateAdded: collapse, don't re-create
	out.DateAdded = minDate(a.DateAdded, b.DateAdded)
	for _, col := range domain.Columns {
		if col == "DateAdded" {
			continue
		}
		if v := newer.Field(col); v != "" {
			out.SetField(col, v)
		} else if v := older.Field(col); v != "" {
			out.SetField(col, v)
		}
	}
	return out
}

func minDate(a, b string) string {
	switch {
	case a == "":
		return b
	case b == "":
		return a
	case a < b:
		return a
	default:
		return b
	}
}
