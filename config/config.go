package config

import (
	"os"

	"gopkg.in/yaml.v3"
	"tlog.app/go/errors"
)

type (
	Config struct {
		// Output is where compile writes bytecode.
		Output string `yaml:"output"`

		// Color is one of auto, always, never.
		Color string `yaml:"color"`

		// Verbosity is a tlog topic filter.
		Verbosity string `yaml:"verbosity"`

		VM VM `yaml:"vm"`
	}

	VM struct {
		MaxDepth int `yaml:"max_depth"`
	}
)

const FileName = "nenc.yaml"

func Default() Config {
	return Config{
		Output: "out.nenc",
		Color:  "auto",
	}
}

// Load reads path on top of Default.
// A missing file is not an error when missingOK is set.
func Load(path string, missingOK bool) (c Config, err error) {
	c = Default()

	data, err := os.ReadFile(path)
	if missingOK && errors.Is(err, os.ErrNotExist) {
		return c, nil
	}
	if err != nil {
		return c, errors.Wrap(err, "read config")
	}

	err = yaml.Unmarshal(data, &c)
	if err != nil {
		return c, errors.Wrap(err, "parse %v", path)
	}

	err = c.Validate()
	if err != nil {
		return c, errors.Wrap(err, "%v", path)
	}

	return c, nil
}

func (c Config) Validate() error {
	switch c.Color {
	case "auto", "always", "never":
	default:
		return errors.New("color: unexpected value %q, want auto, always or never", c.Color)
	}

	if c.VM.MaxDepth < 0 {
		return errors.New("vm.max_depth: must not be negative")
	}

	return nil
}
