package config

import (
	"bytes"
	"io"
	"os"
	"path"
	"text/template"

	"bootsect/addr"
	"bootsect/firmware"
	"bootsect/image"
	"bootsect/ledger"
	"bootsect/log"

	"github.com/pkg/errors"
)

const ConfigFilename = "config.toml"

var DefaultConfig = Config{
	LogLevel:  log.LevelInfo.String(),
	LogFormat: log.FormatText,
	Image: ImageConfig{
		SectorSize:  image.SectorSize,
		Signature:   image.Signature,
		LoadAddress: addr.DefaultLoadAddress,
		Bias:        addr.PolicyBuild.String(),
	},
	Ledger: LedgerConfig{
		Enabled:     true,
		Compression: ledger.CodecS2,
	},
	Firmware: FirmwareConfig{
		MaxSteps: firmware.DefaultMaxSteps,
	},
}

const defaultConfigTemplateText = `# bootsect Config File

# Sets the log level. Can be one of the following values:
# - error
# - warn
# - info
# - debug
# - trace
log_level = "{{.LogLevel}}"

# Sets the log format. Can be "text" or "json".
log_format = "{{.LogFormat}}"

# Configures the boot sector images bootsect builds.
[image]
  # Sets how label references are biased by the load address:
  # - build: the assembler adds the load address (like [org 0x7c00])
  # - runtime: the code adds the load address before dereferencing
  # - none: never biased; reads land in low memory
  bias = "{{.Image.Bias}}"
  # Sets where firmware places the boot sector. BIOS firmware uses
  # 0x7C00 (31744).
  load_address = {{.Image.LoadAddress}}
  # Sets the size of a built image in bytes. BIOS firmware loads 512.
  sector_size = {{.Image.SectorSize}}
  # Sets the boot signature word. It is written low byte first, so the
  # default of 0xAA55 (43605) ends every image with 0x55 0xAA.
  signature = {{.Image.Signature}}

# Configures the build ledger stored under the home directory.
[ledger]
  # Sets how stored images are compressed. Can be "s2", "lz4" or "none".
  compression = "{{.Ledger.Compression}}"
  # Records every named build when set.
  enabled = {{.Ledger.Enabled}}

# Configures the firmware simulator used by the boot command.
[firmware]
  # Sets how many instructions run before the simulator gives up.
  max_steps = {{.Firmware.MaxSteps}}
`

var defaultConfigTemplate *template.Template

func GenerateDefaultConfigFile() []byte {
	buf := new(bytes.Buffer)
	if err := defaultConfigTemplate.Execute(buf, DefaultConfig); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

func ReadConfigFile(homeDir string) (*Config, error) {
	f, err := os.OpenFile(path.Join(homeDir, ConfigFilename), os.O_RDONLY, 0755)
	if err != nil {
		return nil, errors.Wrap(err, "error opening config file for reading")
	}
	defer f.Close()
	cfg, err := ReadConfig(f)
	if err != nil {
		return nil, errors.Wrap(err, "error reading config file")
	}
	return cfg, nil
}

func WriteDefaultConfigFile(homeDir string) error {
	f, err := os.OpenFile(path.Join(homeDir, ConfigFilename), os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return errors.Wrap(err, "error opening config file for writing")
	}
	defer f.Close()
	rd := bytes.NewReader(GenerateDefaultConfigFile())
	if _, err := io.Copy(f, rd); err != nil {
		return errors.Wrap(err, "error writing config file")
	}
	return nil
}

func init() {
	tmpl := template.New("defaultConfig")
	t, err := tmpl.Parse(defaultConfigTemplateText)
	if err != nil {
		panic(err)
	}
	defaultConfigTemplate = t
}
