package cli

import (
	"bootsect/config"
	"bootsect/log"

	"github.com/pkg/errors"
)

// LoadConfig reads the config in homeDir, falling back to DefaultConfig
// when the home directory has not been initialized.
func LoadConfig(homeDir string) (*config.Config, error) {
	exists, err := config.HomeDirExists(homeDir)
	if err != nil {
		return nil, errors.Wrap(err, "error checking home directory")
	}
	if !exists {
		cfg := config.DefaultConfig
		return &cfg, nil
	}
	return config.ReadConfigFile(homeDir)
}

func ConfigureLogging(cfg *config.Config) error {
	lvl, err := log.NewLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	log.SetLevel(lvl)
	return log.SetFormat(cfg.LogFormat)
}
