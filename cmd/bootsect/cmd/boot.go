package cmd

import (
	"fmt"
	"os"

	"bootsect/firmware"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var bootCmd = &cobra.Command{
	Use:   "boot <image>",
	Short: "Boots an image in the firmware simulator and prints what it displays.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return errors.Wrap(err, "error opening image")
		}
		defer f.Close()

		m := firmware.NewMachine()
		m.MaxSteps = cfg.Firmware.MaxSteps
		res, err := m.Boot(f, cfg.Image.SectorSize, cfg.Image.Signature, cfg.Image.LoadAddress)
		if err != nil {
			return err
		}

		fmt.Printf("Output: %q\n", res.Output)
		fmt.Printf("Halted at 0x%04x (%s) after %d instructions.\n", res.IP, res.Halt, res.Steps)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(bootCmd)
}
