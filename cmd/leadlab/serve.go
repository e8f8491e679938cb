package main

import (
	"github.com/spf13/cobra"

	"github.com/audreymhoughton/lead-lab/internal/webform"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the local lead entry form",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := env.Store.Init(); err != nil {
			return err
		}
		return webform.NewServer(env.Store).ListenAndServe(serveAddr)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "127.0.0.1:8787", "listen address")
	rootCmd.AddCommand(serveCmd)
}
