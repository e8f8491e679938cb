package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/audreymhoughton/lead-lab/internal/secrets"
)

var secretCmd = &cobra.Command{
	Use:   "secret",
	Short: "Manage the Google service-account credentials in the OS keychain",
}

var secretSetCmd = &cobra.Command{
	Use:   "set [json-path]",
	Short: "Store service-account JSON (from a file argument or stdin)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var blob []byte
		var err error
		if len(args) == 1 {
			blob, err = os.ReadFile(args[0])
		} else {
			blob, err = io.ReadAll(cmd.InOrStdin())
		}
		if err != nil {
			return err
		}
		if err := secrets.SetGoogleCredentials(string(blob)); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "credentials stored in keychain")
		return nil
	},
}

var secretDelCmd = &cobra.Command{
	Use:   "del",
	Short: "Remove the stored credentials",
	RunE: func(cmd *cobra.Command, args []string) error {
		return secrets.DeleteGoogleCredentials()
	},
}

func init() {
	secretCmd.AddCommand(secretSetCmd, secretDelCmd)
	rootCmd.AddCommand(secretCmd)
}
