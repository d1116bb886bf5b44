package definition

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Format is a definition file syntax.
type Format string

// Supported formats.
const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
	FormatHCL  Format = "hcl"
)

// FormatFor picks the format from a file extension.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	case ".hcl":
		return FormatHCL, nil
	}
	return "", NewLoadError(ErrCodeFormatUnsupported,
		fmt.Sprintf("unsupported definition file extension %q", filepath.Ext(path))).
		WithContext(path).
		WithSuggestion("Use a .yaml, .yml, .toml or .hcl file")
}

// Load reads, parses and validates the definition at path.
func Load(path string) (*Definition, error) {
	format, err := FormatFor(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, NewLoadError(ErrCodeFileNotFound, "definition file not found").
				WithContext(path).
				WithUnderlying(err)
		}
		return nil, NewLoadError(ErrCodeFileRead, "cannot read definition file").
			WithContext(path).
			WithUnderlying(err)
	}

	def, err := Parse(data, format, path)
	if err != nil {
		return nil, err
	}
	return def, nil
}

// Parse decodes and validates a definition. filename is used for error
// locations and HCL diagnostics and may be empty.
func Parse(data []byte, format Format, filename string) (*Definition, error) {
	def := &Definition{}
	var err error
	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		err = dec.Decode(def)
		if errors.Is(err, io.EOF) {
			err = nil
		}
	case FormatTOML:
		err = toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields().Decode(def)
	case FormatHCL:
		err = decodeHCL(data, filename, def)
	default:
		return nil, NewLoadError(ErrCodeFormatUnsupported, fmt.Sprintf("unsupported format %q", format))
	}
	if err != nil {
		return nil, NewLoadError(ErrCodeParse, fmt.Sprintf("cannot parse %s definition", format)).
			WithContext(filename).
			WithUnderlying(err)
	}

	def.Path = filename
	if def.Version == "" {
		def.Version = CurrentVersion
	}
	if err := def.Validate(); err != nil {
		return nil, err
	}
	return def, nil
}

func decodeHCL(data []byte, filename string, def *Definition) error {
	if filename == "" {
		filename = "definition.hcl"
	}
	file, diags := hclparse.NewParser().ParseHCL(data, filename)
	if diags.HasErrors() {
		return diags
	}
	if diags := gohcl.DecodeBody(file.Body, nil, def); diags.HasErrors() {
		return diags
	}
	return nil
}
