package reconcile

import (
	"github.com/audreymhoughton/lead-lab/internal/dedupe"
	"github.com/audreymhoughton/lead-lab/internal/domain"
	"github.com/audreymhoughton/lead-lab/internal/logging"
)

// AddResult summarizes a local-only ingestion (add, import, find, enrich).
type AddResult struct {
	Inserted int
	Merged   int
	Rejected []Outcome
}

// AddRows folds freshly captured rows into the existing local set without
// touching the remote. Existing rows survive whatever state they are in;
// incoming rows must validate and key or they are reported and dropped.
// Running the same import twice therefore changes nothing the second time.
func AddRows(existing, incoming []map[string]string) ([]domain.Lead, AddResult) {
	var res AddResult

	batch := Dedupe(existing)
	leads := batch.Leads

	byKey := map[string]int{}
	byCompanyKey := map[string]int{}
	for i, l := range leads {
		byKey[l.Key] = i
		if l.CompanyKey != "" {
			byCompanyKey[l.CompanyKey] = i
		}
	}

	for _, raw := range incoming {
		lead, warnings, err := domain.Validate(raw)
		if err != nil {
			res.Rejected = append(res.Rejected, Outcome{
				Company: raw["Company"],
				Action:  ActionRejected,
				Reason:  err.Error(),
			})
			continue
		}
		for _, w := range warnings {
			logging.Warn().Str("company", lead.Company).Msg(w)
		}

		key, err := dedupe.Key(lead)
		if err != nil {
			res.Rejected = append(res.Rejected, Outcome{
				Company: lead.Company,
				Action:  ActionRejected,
				Reason:  err.Error(),
			})
			continue
		}
		lead.Key = key
		lead.CompanyKey = dedupe.CompanyKey(lead.Company)

		idx, ok := byKey[lead.Key]
		if !ok && lead.CompanyKey != "" {
			// An empty slug carries no identity; never merge on it.
			idx, ok = byCompanyKey[lead.CompanyKey]
		}
		if ok {
			merged := mergeLocal(leads[idx], lead)
			if k, kerr := dedupe.Key(merged); kerr == nil {
				merged.Key = k
			}
			merged.CompanyKey = dedupe.CompanyKey(merged.Company)
			if !merged.Equal(leads[idx]) {
				res.Merged++
			}
			leads[idx] = merged
			byKey[merged.Key] = idx
			if merged.CompanyKey != "" {
				byCompanyKey[merged.CompanyKey] = idx
			}
			continue
		}

		leads = append(leads, lead)
		byKey[lead.Key] = len(leads) - 1
		if lead.CompanyKey != "" {
			byCompanyKey[lead.CompanyKey] = len(leads) - 1
		}
		res.Inserted++
	}

	for _, r := range batch.Rejected {
		leads = append(leads, r.Row)
	}

	for _, o := range res.Rejected {
		logging.Warn().
			Str("company", o.Company).
			Str("reason", o.Reason).
			Msg("row rejected")
	}
	logging.Info().
		Int("inserted", res.Inserted).
		Int("merged", res.Merged).
		Int("rejected", len(res.Rejected)).
		Msg("local add complete")

	return leads, res
}
