package cmd

import (
	"encoding/hex"
	"fmt"

	"bootsect/cli"
	"bootsect/config"

	"github.com/spf13/cobra"
)

var identityCmd = &cobra.Command{
	Use:   "identity",
	Short: "Prints the public key that signs build manifests.",
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return config.EnsureHomeDir(configuredHomeDir)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		signer, err := cli.GetSigner(configuredHomeDir)
		if err != nil {
			return err
		}
		pub := signer.Pub()

		fmt.Println(hex.EncodeToString(pub.SerializeCompressed()))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(identityCmd)
}
