package cmd

import (
	"fmt"

	"bootsect/cli"
	"bootsect/ledger"

	"github.com/spf13/cobra"
)

var rmCmd = &cobra.Command{
	Use:   "rm <name>",
	Short: "Removes a build from the ledger.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := cli.OpenLedger(configuredHomeDir)
		if err != nil {
			return err
		}
		defer db.Close()

		if err := ledger.DeleteRecord(db, args[0]); err != nil {
			return err
		}
		fmt.Printf("Removed %s.\n", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(rmCmd)
}
