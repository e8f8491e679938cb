package main

import (
	"github.com/spf13/cobra"

	"github.com/audreymhoughton/lead-lab/internal/domain"
	"github.com/audreymhoughton/lead-lab/internal/enrich"
	"github.com/audreymhoughton/lead-lab/internal/logging"
	"github.com/audreymhoughton/lead-lab/internal/reconcile"
)

var enrichCmd = &cobra.Command{
	Use:   "enrich",
	Short: "Fill thin Notes fields with fetched site titles",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runEnrichment(cmd, func(e *enrich.Enricher, leads []domain.Lead) []domain.Lead {
			return e.Notes(cmd.Context(), leads)
		})
	},
}

var enrichContactsCmd = &cobra.Command{
	Use:   "enrich-contacts",
	Short: "Discover public contact emails and form URLs for leads with a website",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runEnrichment(cmd, func(e *enrich.Enricher, leads []domain.Lead) []domain.Lead {
			return e.Contacts(cmd.Context(), leads)
		})
	},
}

// runEnrichment is the shared shape of both passes: lock, load, fan out
// fetches, fold the filled rows back through the local add path. Fetch
// failures never fail the command.
func runEnrichment(cmd *cobra.Command, pass func(*enrich.Enricher, []domain.Lead) []domain.Lead) error {
	cache, err := openCache()
	if err != nil {
		return err
	}
	defer cache.Close()

	release, err := env.Store.Acquire(cmd.Context())
	if err != nil {
		return err
	}
	defer release()

	existing, err := env.Store.Load()
	if err != nil {
		return err
	}
	batch := reconcile.Dedupe(existing)

	enricher := enrich.New(env.Config, cache)
	if limitFlag > 0 {
		enricher.MaxRows = limitFlag
	}
	if onlyBlankFlag {
		enricher.OnlyBlank = true
	}
	updated := pass(enricher, batch.Leads)
	if len(updated) == 0 {
		logging.Info().Msg("no rows needed enrichment")
		return nil
	}

	incoming := make([]map[string]string, 0, len(updated))
	for _, l := range updated {
		incoming = append(incoming, l.RowMap())
	}

	leads, res := reconcile.AddRows(existing, incoming)
	if err := env.Store.Save(leads); err != nil {
		return err
	}
	logging.Info().Int("updated", res.Merged).Msg("enrichment persisted")
	return nil
}

func init() {
	enrichCmd.Flags().IntVar(&limitFlag, "limit", 0, "max rows to process (0 = config default)")
	enrichContactsCmd.Flags().IntVar(&limitFlag, "limit", 0, "max rows to process (0 = config default)")
	enrichContactsCmd.Flags().BoolVar(&onlyBlankFlag, "only-blank", false, "only fill rows with an empty Email")
	rootCmd.AddCommand(enrichCmd, enrichContactsCmd)
}

var (
	limitFlag     int
	onlyBlankFlag bool
)
