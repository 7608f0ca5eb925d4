package cmd

import (
	"fmt"
	"os"

	"bootsect/cli"
	"bootsect/config"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var (
	configuredHomeDir string
	cfg               *config.Config
)

var rootCmd = &cobra.Command{
	Use:           "bootsect",
	Short:         "Builds, checks and boots BIOS boot sector images.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.CalledAs() == "init" || cmd.CalledAs() == "version" {
			return nil
		}
		configuredHomeDir = cli.GetHomeDir(cmd)
		loaded, err := cli.LoadConfig(configuredHomeDir)
		if err != nil {
			return errors.Wrap(err, "error loading config")
		}
		if err := cli.ConfigureLogging(loaded); err != nil {
			return errors.Wrap(err, "error configuring logging")
		}
		cfg = loaded
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String(cli.FlagHome, cli.DefaultHome, "Home directory for bootsect's config, identity and ledger.")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
