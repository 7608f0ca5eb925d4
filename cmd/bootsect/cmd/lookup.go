package cmd

import (
	"fmt"

	"bootsect/cli"
	"bootsect/ledger"
	"bootsect/medium"

	"github.com/spf13/cobra"
)

var lookupCmd = &cobra.Command{
	Use:   "lookup <image>",
	Short: "Finds recorded builds with the same image as a file.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		img, err := medium.LoadFile(args[0], cfg.Image.SectorSize, cfg.Image.Signature)
		if err != nil {
			return err
		}

		db, err := cli.OpenLedger(configuredHomeDir)
		if err != nil {
			return err
		}
		defer db.Close()

		names, err := ledger.FindByFingerprint(db, img.Fingerprint())
		if err != nil {
			return err
		}
		if len(names) == 0 {
			fmt.Printf("No recorded build matches fingerprint %016x.\n", img.Fingerprint())
			return nil
		}
		for _, name := range names {
			rec, err := ledger.GetRecord(db, name)
			if err != nil {
				return err
			}
			if !rec.Manifest.Matches(img) {
				continue
			}
			fmt.Println(name)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(lookupCmd)
}
