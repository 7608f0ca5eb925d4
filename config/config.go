package config

import (
	"io"

	"bootsect/addr"

	"github.com/pelletier/go-toml"
	"github.com/pkg/errors"
)

type Config struct {
	LogLevel  string         `mapstructure:"log_level"`
	LogFormat string         `mapstructure:"log_format"`
	Image     ImageConfig    `mapstructure:"image"`
	Ledger    LedgerConfig   `mapstructure:"ledger"`
	Firmware  FirmwareConfig `mapstructure:"firmware"`
}

type ImageConfig struct {
	SectorSize  uint   `mapstructure:"sector_size"`
	Signature   uint16 `mapstructure:"signature"`
	LoadAddress uint   `mapstructure:"load_address"`
	Bias        string `mapstructure:"bias"`
}

type LedgerConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	Compression string `mapstructure:"compression"`
}

type FirmwareConfig struct {
	MaxSteps int `mapstructure:"max_steps"`
}

func ReadConfig(r io.Reader) (*Config, error) {
	decoder := toml.NewDecoder(r)
	decoder.SetTagName("mapstructure")
	config := &Config{}
	if err := decoder.Decode(config); err != nil {
		return nil, errors.Wrap(err, "error decoding config file")
	}
	return config, nil
}

// Model returns the addressing model the image section describes.
func (i ImageConfig) Model() (addr.Model, error) {
	policy, err := addr.NewPolicy(i.Bias)
	if err != nil {
		return addr.Model{}, err
	}
	return addr.NewModel(i.LoadAddress, policy)
}
