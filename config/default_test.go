package config

import (
	"bytes"
	"testing"

	"bootsect/addr"

	"github.com/stretchr/testify/require"
)

func TestGenerateDefaultConfigFile(t *testing.T) {
	generatedCfg := GenerateDefaultConfigFile()
	cfg, err := ReadConfig(bytes.NewReader(generatedCfg))
	require.NoError(t, err)
	require.EqualValues(t, DefaultConfig, *cfg)
}

func TestReadConfig_Overrides(t *testing.T) {
	cfg, err := ReadConfig(bytes.NewReader([]byte(`
log_level = "debug"

[image]
  bias = "runtime"
  load_address = 4096
  sector_size = 1024
  signature = 4660
`)))
	require.NoError(t, err)
	require.Equal(t, "debug", cfg.LogLevel)
	require.EqualValues(t, 1024, cfg.Image.SectorSize)
	require.EqualValues(t, 0x1234, cfg.Image.Signature)

	model, err := cfg.Image.Model()
	require.NoError(t, err)
	require.Equal(t, addr.Model{LoadAddress: 0x1000, Policy: addr.PolicyRuntime}, model)
}

func TestReadConfig_Invalid(t *testing.T) {
	_, err := ReadConfig(bytes.NewReader([]byte("log_level = ")))
	require.Error(t, err)
}

func TestImageConfig_Model(t *testing.T) {
	model, err := DefaultConfig.Image.Model()
	require.NoError(t, err)
	require.Equal(t, addr.DefaultModel(), model)

	_, err = ImageConfig{LoadAddress: 0x7C00, Bias: "org"}.Model()
	require.Error(t, err)
}
