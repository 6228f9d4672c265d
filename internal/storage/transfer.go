package storage

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/sjzar/advshortcut/internal/errors"
	"github.com/sjzar/advshortcut/internal/model"
)

const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// FormatOf guesses the transfer format from a file name, defaulting to json.
func FormatOf(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	}
	return FormatJSON
}

// Export writes data in format. YAML goes through the JSON encoding so the
// action "type" tags and field names are identical in both formats.
func Export(w io.Writer, data *model.AppData, format string) error {
	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return errors.Storage("encode app data", err)
	}
	switch strings.ToLower(format) {
	case FormatJSON, "":
		if _, err := w.Write(append(raw, '\n')); err != nil {
			return errors.Storage("write export", err)
		}
		return nil
	case FormatYAML, "yml":
		var v interface{}
		if err := json.Unmarshal(raw, &v); err != nil {
			return errors.Storage("encode app data", err)
		}
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return errors.Storage("write export", err)
		}
		return enc.Close()
	}
	return errors.InvalidParam("format", "unsupported format "+format)
}

// Import reads app data written by Export.
func Import(r io.Reader, format string) (*model.AppData, error) {
	var raw []byte
	switch strings.ToLower(format) {
	case FormatJSON, "":
		b, err := io.ReadAll(r)
		if err != nil {
			return nil, errors.Storage("read import", err)
		}
		raw = b
	case FormatYAML, "yml":
		var v interface{}
		if err := yaml.NewDecoder(r).Decode(&v); err != nil {
			return nil, errors.Validation("invalid yaml document", err)
		}
		b, err := json.Marshal(v)
		if err != nil {
			return nil, errors.Validation("invalid yaml document", err)
		}
		raw = b
	default:
		return nil, errors.InvalidParam("format", "unsupported format "+format)
	}

	var data model.AppData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, errors.Validation("invalid app data", err)
	}
	for i, sc := range data.Shortcuts {
		if strings.TrimSpace(sc.ID) == "" {
			return nil, errors.Validation(fmt.Sprintf("shortcut without id at position %d", i), nil)
		}
	}
	data.Normalize()
	return &data, nil
}
