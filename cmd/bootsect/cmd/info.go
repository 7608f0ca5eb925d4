package cmd

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"bootsect/cli"
	"bootsect/ledger"

	"github.com/olekukonko/tablewriter"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var infoCmd = &cobra.Command{
	Use:   "info <names>",
	Short: "Returns metadata about recorded builds.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		names := strings.Split(args[0], ",")
		for _, name := range names {
			if err := ledger.ValidateName(name); err != nil {
				return errors.Wrap(err, fmt.Sprintf("invalid name %s", name))
			}
		}

		db, err := cli.OpenLedger(configuredHomeDir)
		if err != nil {
			return err
		}
		defer db.Close()

		count, err := ledger.GetRecordCount(db)
		if err != nil {
			return err
		}

		table := tablewriter.NewWriter(os.Stdout)
		table.SetHeader([]string{
			"Name",
			"Built At",
			"Policy",
			"Load Address",
			"Payload",
			"Codec",
			"Stored",
			"Fingerprint",
			"Image Hash",
			"Signature",
		})

		for _, name := range names {
			rec, err := ledger.GetRecord(db, name)
			if err != nil {
				return err
			}
			sigStatus := "valid"
			if err := rec.VerifySignature(); err != nil {
				sigStatus = err.Error()
			}

			table.Append([]string{
				rec.Name,
				rec.BuiltAt.Format(time.RFC3339),
				rec.Policy.String(),
				fmt.Sprintf("0x%04x", rec.LoadAddress),
				strconv.Itoa(int(rec.PayloadLen)),
				rec.Codec,
				strconv.Itoa(rec.StoredLen),
				rec.FingerprintHex(),
				rec.ImageHash.String(),
				sigStatus,
			})
		}

		table.Render()
		fmt.Printf("%d builds recorded.\n", count)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
}
