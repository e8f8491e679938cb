package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/audreymhoughton/lead-lab/internal/reconcile"
	"github.com/audreymhoughton/lead-lab/internal/sheets"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Reconcile the local CSV against the remote sheet and push the diff",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		client, err := sheets.New(ctx, env.Settings)
		if err != nil {
			return err
		}

		release, err := env.Store.Acquire(ctx)
		if err != nil {
			return err
		}
		defer release()

		rows, err := env.Store.Load()
		if err != nil {
			return err
		}

		engine := reconcile.New(env.Store, client)
		report, err := engine.Run(ctx, rows)
		if err != nil {
			return fmt.Errorf("export aborted, stores untouched: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(),
			"inserted: %d, updated: %d, skipped: %d, rejected: %d\n",
			report.Inserted, report.Updated, report.Skipped, report.Rejected)
		for _, o := range report.Outcomes {
			if o.Action == reconcile.ActionRejected {
				fmt.Fprintf(cmd.OutOrStdout(), "  rejected %q: %s\n", o.Company, o.Reason)
			}
		}
		return nil
	},
}

var setupSheetsCmd = &cobra.Command{
	Use:   "setup-sheets",
	Short: "Ensure sheet schema: header, frozen row, dropdowns, buckets tab",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		client, err := sheets.New(ctx, env.Settings)
		if err != nil {
			return err
		}
		if err := client.SetupSchema(ctx); err != nil {
			return err
		}
		return client.EnsureBucketsTab(ctx)
	},
}

func init() {
	rootCmd.AddCommand(exportCmd, setupSheetsCmd)
}
