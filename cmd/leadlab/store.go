package main

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/audreymhoughton/lead-lab/internal/domain"
	"github.com/audreymhoughton/lead-lab/internal/logging"
	"github.com/audreymhoughton/lead-lab/internal/reconcile"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the local lead CSV with its canonical header",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := env.Store.Init(); err != nil {
			return err
		}
		logging.Info().Str("path", env.Store.Path()).Msg("local store ready")
		return nil
	},
}

// Defaults offered by the interactive add prompt.
var exampleRow = []struct{ field, example string }{
	{"Company", "Acme Brand"},
	{"Website", "https://example.com"},
	{"ContactName", "Jane Doe"},
	{"Role", "Marketing Director"},
	{"Email", "jane@example.com"},
	{"Category", "Podcast"},
	{"WhyFit", "Sponsors similar shows; strong brand alignment"},
	{"SourceURL", "https://example.com/sponsorships"},
	{"Notes", ""},
}

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Interactively add one lead",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprintln(cmd.OutOrStdout(), "\nAdd a lead (press Enter to accept the example value)")

		in := bufio.NewScanner(cmd.InOrStdin())
		row := map[string]string{}
		for _, f := range exampleRow {
			fmt.Fprintf(cmd.OutOrStdout(), "%s [%s]: ", f.field, f.example)
			if !in.Scan() {
				break
			}
			val := strings.TrimSpace(in.Text())
			if val == "" {
				val = f.example
			}
			row[f.field] = val
		}
		row["Status"] = string(domain.StatusNew)
		row["DateAdded"] = domain.Today()

		return addRows(cmd, []map[string]string{row})
	},
}

var importCmd = &cobra.Command{
	Use:   "import <csv-path>",
	Short: "Bulk import leads from a CSV file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rows, err := readCSVRows(args[0])
		if err != nil {
			return err
		}
		return addRows(cmd, rows)
	},
}

// addRows is the one local ingestion path: lock, load, merge, save.
func addRows(cmd *cobra.Command, incoming []map[string]string) error {
	release, err := env.Store.Acquire(cmd.Context())
	if err != nil {
		return err
	}
	defer release()

	existing, err := env.Store.Load()
	if err != nil {
		return err
	}

	leads, res := reconcile.AddRows(existing, incoming)
	if err := env.Store.Save(leads); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "inserted: %d, merged: %d, rejected: %d\n",
		res.Inserted, res.Merged, len(res.Rejected))
	for _, o := range res.Rejected {
		fmt.Fprintf(cmd.OutOrStdout(), "  rejected %q: %s\n", o.Company, o.Reason)
	}
	return nil
}

func readCSVRows(path string) ([]map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header %s: %w", path, err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	var rows []map[string]string
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		row := make(map[string]string, len(header))
		for i, h := range header {
			if i < len(rec) {
				row[h] = rec[i]
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func init() {
	rootCmd.AddCommand(initCmd, addCmd, importCmd)
}
