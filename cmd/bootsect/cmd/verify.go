package cmd

import (
	"fmt"
	"io/ioutil"

	"bootsect/cli"
	"bootsect/image"
	"bootsect/ledger"
	"bootsect/medium"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var (
	verifyName   string
	verifyMedium bool
)

var verifyCmd = &cobra.Command{
	Use:   "verify <image>",
	Short: "Checks that a file is a bootable boot sector image.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var raw []byte
		var err error
		if verifyMedium {
			raw, err = medium.ReadFile(args[0], cfg.Image.SectorSize)
		} else {
			raw, err = ioutil.ReadFile(args[0])
		}
		if err != nil {
			return err
		}
		if err := image.Verify(raw, cfg.Image.SectorSize, cfg.Image.Signature); err != nil {
			return err
		}

		if verifyName != "" {
			if err := verifyAgainstLedger(raw, verifyName); err != nil {
				return err
			}
		}

		fmt.Printf("%s is a valid boot sector (%d bytes, signature 0x%04x).\n", args[0], len(raw), cfg.Image.Signature)
		return nil
	},
}

func verifyAgainstLedger(raw []byte, name string) error {
	img, err := image.Load(raw, cfg.Image.SectorSize, cfg.Image.Signature)
	if err != nil {
		return err
	}
	db, err := cli.OpenLedger(configuredHomeDir)
	if err != nil {
		return err
	}
	defer db.Close()

	rec, err := ledger.GetRecord(db, name)
	if err != nil {
		return err
	}
	if err := rec.VerifySignature(); err != nil {
		return err
	}
	if !rec.Manifest.Matches(img) {
		return errors.Errorf("image does not match the build recorded as %s", name)
	}
	return nil
}

func init() {
	verifyCmd.Flags().StringVar(&verifyName, cli.FlagName, "", "Also check the image against this ledger record")
	verifyCmd.Flags().BoolVar(&verifyMedium, cli.FlagMedium, false, "Treat the file as a disk image and check only its first sector")
	rootCmd.AddCommand(verifyCmd)
}
