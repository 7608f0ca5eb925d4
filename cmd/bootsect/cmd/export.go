package cmd

import (
	"fmt"

	"bootsect/cli"
	"bootsect/ledger"
	"bootsect/medium"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var exportOutput string

var exportCmd = &cobra.Command{
	Use:   "export <name>",
	Short: "Writes a recorded build's image to a file or disk image.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if exportOutput == "" {
			return errors.New("an output path is required")
		}

		db, err := cli.OpenLedger(configuredHomeDir)
		if err != nil {
			return err
		}
		defer db.Close()

		rec, err := ledger.GetRecord(db, args[0])
		if err != nil {
			return err
		}
		if err := rec.VerifySignature(); err != nil {
			return err
		}
		img, err := ledger.GetImage(db, args[0])
		if err != nil {
			return err
		}
		if err := medium.WriteFile(exportOutput, img); err != nil {
			return err
		}
		fmt.Printf("Wrote %s to %s.\n", args[0], exportOutput)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, cli.FlagOutput, "o", "", "Output image")
	rootCmd.AddCommand(exportCmd)
}
