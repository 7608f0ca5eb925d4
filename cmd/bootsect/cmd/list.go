package cmd

import (
	"encoding/json"
	"math"
	"os"
	"strconv"

	"bootsect/cli"
	"bootsect/ledger"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list <start?> <limit?>",
	Short: "Lists recorded builds.",
	Args:  cobra.MaximumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		var start string
		if len(args) >= 1 {
			start = args[0]
		}
		lim := math.MaxInt64
		if len(args) == 2 {
			limit, err := strconv.ParseInt(args[1], 10, 32)
			if err != nil {
				return err
			}
			lim = int(limit)
		}

		db, err := cli.OpenLedger(configuredHomeDir)
		if err != nil {
			return err
		}
		defer db.Close()

		stream, err := ledger.StreamRecords(db, start)
		if err != nil {
			return err
		}
		defer stream.Close()

		encoder := json.NewEncoder(os.Stdout)
		for count := 0; count < lim; count++ {
			rec, err := stream.Next()
			if err != nil {
				return err
			}
			if rec == nil {
				break
			}
			if err := encoder.Encode(rec); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}
