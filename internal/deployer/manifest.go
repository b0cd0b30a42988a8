package deployer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	apperrors "viewdeploy/pkg/errors"
)

// Entry maps a template base name to the view it deploys
type Entry struct {
	Template string
	View     string
}

// ParseManifest decodes a flat JSON object of template base name to view
// name, keeping the order of the document. A repeated key keeps its first
// position and its last value.
func ParseManifest(data []byte) ([]Entry, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return nil, manifestError(err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, manifestError(fmt.Errorf("expected an object, got %v", tok))
	}

	var entries []Entry
	index := make(map[string]int)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, manifestError(err)
		}
		key := tok.(string)

		var view string
		if err := dec.Decode(&view); err != nil {
			return nil, manifestError(fmt.Errorf("value of %q: %w", key, err))
		}

		if i, ok := index[key]; ok {
			entries[i].View = view
			continue
		}
		index[key] = len(entries)
		entries = append(entries, Entry{Template: key, View: view})
	}

	if _, err := dec.Token(); err != nil {
		return nil, manifestError(err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, manifestError(fmt.Errorf("unexpected data after the manifest object"))
	}
	return entries, nil
}

func manifestError(cause error) error {
	return apperrors.Wrap(cause, apperrors.ErrCodeManifestInvalid, "Invalid deployment manifest").
		WithSeverity(apperrors.SeverityCritical).
		WithSuggestions(`The manifest must be a JSON object like {"daily_orders": "daily_orders_view"}`)
}
