package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func newUpgradeCmd(rt *cliState) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "upgrade",
		Short: "Bring the schema up to date and backfill registration numbers",
		Long: `Applies every pending schema step in order. Steps already recorded
in the schema_upgrades ledger are skipped, so the command is safe to repeat.
A failed step is rolled back on its own and the remaining steps still run.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			report, runErr := rt.app.Upgrader.Run(cmd.Context())
			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				if err := enc.Encode(report); err != nil {
					return err
				}
			} else {
				for _, name := range report.Applied {
					fmt.Fprintf(out, "applied  %s\n", name)
				}
				for _, name := range report.Skipped {
					fmt.Fprintf(out, "skipped  %s\n", name)
				}
				for _, f := range report.Failed {
					fmt.Fprintf(out, "FAILED   %s: %s\n", f.Name, f.Err)
				}
			}
			return runErr
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the upgrade report as JSON")
	return cmd
}

func newBootstrapAdminCmd(rt *cliState) *cobra.Command {
	return &cobra.Command{
		Use:   "bootstrap-admin",
		Short: "Create the configured administrator when none exists",
		RunE: func(cmd *cobra.Command, _ []string) error {
			admin, changed, err := rt.app.Users.BootstrapAdmin(cmd.Context())
			if err != nil {
				return err
			}
			if !changed {
				fmt.Fprintln(cmd.OutOrStdout(), "an administrator already exists")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "admin %s ready\n", admin.Username)
			return nil
		},
	}
}
