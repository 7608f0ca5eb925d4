package cmd

import (
	"fmt"
	"os"
	"strconv"

	"bootsect/addr"

	"github.com/olekukonko/tablewriter"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <offset>",
	Short: "Shows how a label offset is addressed under each bias policy.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		off, err := strconv.ParseUint(args[0], 0, 16)
		if err != nil {
			return errors.Wrap(err, "invalid offset")
		}
		load := cfg.Image.LoadAddress
		fmt.Printf("%s resolves to %s with load address 0x%04x.\n", addr.Offset(off), addr.Address(addr.Resolve(uint(off), load)), load)

		table := tablewriter.NewWriter(os.Stdout)
		table.SetHeader([]string{
			"Policy",
			"Embedded",
			"Runtime Addend",
			"Dereferenced",
			"Status",
		})
		for _, policy := range []addr.Policy{addr.PolicyBuild, addr.PolicyRuntime, addr.PolicyNone} {
			model, err := addr.NewModel(load, policy)
			if err != nil {
				return err
			}
			embedded, err := model.Embed(addr.Offset(off))
			if err != nil {
				table.Append([]string{policy.String(), "-", "-", "-", err.Error()})
				continue
			}
			effective, err := model.Effective(addr.Offset(off))
			if err != nil {
				return err
			}
			status := "ok"
			if err := model.Check(addr.Offset(off)); err != nil {
				status = err.Error()
			}
			table.Append([]string{
				policy.String(),
				fmt.Sprintf("0x%04x", embedded),
				fmt.Sprintf("0x%04x", model.RuntimeAddend()),
				effective.String(),
				status,
			})
		}
		table.Render()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(resolveCmd)
}
