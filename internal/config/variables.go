package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/afero"

	apperrors "viewdeploy/pkg/errors"
)

// Variables is the template substitution context read from the configuration
// file. It is loaded once per run and never modified afterwards.
type Variables map[string]interface{}

// LoadVariables reads the JSON object at path. A missing or malformed file is
// fatal for the run.
func LoadVariables(fsys afero.Fs, path string) (Variables, error) {
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.New(apperrors.ErrCodeConfigNotFound, fmt.Sprintf("configuration file %s not found", path)).
				WithSeverity(apperrors.SeverityCritical).
				WithContext("file", path).
				WithSuggestions("Create " + path + " with the template variables as a JSON object")
		}
		return nil, apperrors.Wrap(err, apperrors.ErrCodeFileOperation, "Failed to read configuration file").
			WithContext("file", path)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw map[string]interface{}
	if err := dec.Decode(&raw); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeConfigInvalid, fmt.Sprintf("configuration file %s is not a JSON object", path)).
			WithSeverity(apperrors.SeverityCritical).
			WithContext("file", path)
	}

	return Variables(normalize(raw).(map[string]interface{})), nil
}

// normalize turns json.Number into int64 when integral and float64 otherwise,
// so templates print 10 rather than 10.000000
func normalize(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		for k, item := range t {
			t[k] = normalize(item)
		}
		return t
	case []interface{}:
		for i, item := range t {
			t[i] = normalize(item)
		}
		return t
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i
		}
		if f, err := t.Float64(); err == nil {
			return f
		}
		return t.String()
	default:
		return v
	}
}
