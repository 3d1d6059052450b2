package pipeline

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/spacecol/pkg/errors"
)

// LoadConfig reads run options from a TOML or YAML file, chosen by
// extension. Keys use the snake_case names of the Options tags; unknown keys
// are rejected.
func LoadConfig(path string) (Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Options{}, errors.Wrap(errors.ErrCodeResourceUnavailable, err, "read config %s", path)
	}
	var opts Options
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		err = DecodeTOML(data, &opts)
	case ".yaml", ".yml":
		err = DecodeYAML(data, &opts)
	default:
		return Options{}, errors.New(errors.ErrCodeInvalidFormat, "config %s: unsupported extension %q (want .toml, .yaml or .yml)", path, ext)
	}
	if err != nil {
		return Options{}, errors.Wrap(errors.ErrCodeConfiguration, err, "config %s", path)
	}
	return opts, nil
}

// DecodeTOML decodes TOML data into opts, overwriting only the keys present.
func DecodeTOML(data []byte, opts *Options) error {
	raw := map[string]any{}
	if _, err := toml.NewDecoder(bytes.NewReader(data)).Decode(&raw); err != nil {
		return err
	}
	return DecodeMap(raw, opts)
}

// DecodeYAML decodes YAML data into opts, overwriting only the keys present.
func DecodeYAML(data []byte, opts *Options) error {
	raw := map[string]any{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return err
	}
	return DecodeMap(raw, opts)
}

// DecodeMap decodes a generic key/value map into opts. Numbers and strings
// are converted loosely ("800" decodes into an int field).
func DecodeMap(raw map[string]any, opts *Options) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "mapstructure",
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           opts,
	})
	if err != nil {
		return err
	}
	return dec.Decode(raw)
}
