package cli

import (
	"errors"

	"bootsect/config"

	"github.com/spf13/cobra"
	"github.com/xyproto/env/v2"
)

// GetHomeDir returns the expanded home directory. An explicit --home wins
// over BOOTSECT_HOME.
func GetHomeDir(cmd *cobra.Command) string {
	homeDirUnexp, err := cmd.Flags().GetString(FlagHome)
	if err != nil {
		panic(err)
	}
	if !cmd.Flags().Changed(FlagHome) {
		homeDirUnexp = env.Str(EnvHome, homeDirUnexp)
	}
	return config.ExpandHomePath(homeDirUnexp)
}

func InitHomeDir(cmd *cobra.Command) (string, error) {
	homeDir := GetHomeDir(cmd)
	exists, err := config.HomeDirExists(homeDir)
	if err != nil {
		return "", err
	}
	if exists {
		return "", errors.New("home directory is already initialized")
	}
	if err := config.InitHomeDir(homeDir); err != nil {
		return "", err
	}
	return homeDir, nil
}
