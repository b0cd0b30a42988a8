package testutil

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/spf13/afero"

	"viewdeploy/internal/common"
	"viewdeploy/internal/ui"
)

// CaptureUI redirects console output into the returned buffer, uncolored,
// until the test ends
func CaptureUI(t *testing.T) *bytes.Buffer {
	t.Helper()

	var buf bytes.Buffer
	prevOut := ui.SetOutput(&buf)
	prevColor := ui.SetColor(false)
	t.Cleanup(func() {
		ui.SetOutput(prevOut)
		ui.SetColor(prevColor)
	})
	return &buf
}

// Project is an in-memory project tree laid out like a real checkout
type Project struct {
	t  *testing.T
	Fs afero.Fs
}

// NewProject creates a project with a configuration file and nothing else
func NewProject(t *testing.T) *Project {
	t.Helper()

	p := &Project{t: t, Fs: afero.NewMemMapFs()}
	p.WriteJSON("configuration/configuration.json", map[string]interface{}{
		"project":       "mydata",
		"dataset":       "sales",
		"lookback_days": 7,
	})
	return p
}

// WriteFile writes content at path, creating parent directories
func (p *Project) WriteFile(path, content string) {
	p.t.Helper()

	if err := afero.WriteFile(p.Fs, path, []byte(content), common.FilePermissionNormal); err != nil {
		p.t.Fatalf("Failed to write file %s: %v", path, err)
	}
}

// WriteJSON writes v as JSON at path
func (p *Project) WriteJSON(path string, v interface{}) {
	p.t.Helper()

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		p.t.Fatalf("Failed to marshal %s: %v", path, err)
	}
	p.WriteFile(path, string(data))
}

// AddMetric writes metrics/<dir>/<base>.sql.j2 and its <view>.json description
// with one STRING field per name
func (p *Project) AddMetric(dir, base, view, body string, fields ...string) {
	p.t.Helper()

	p.WriteFile("metrics/"+dir+"/"+base+".sql.j2", body)

	specs := make([]map[string]string, 0, len(fields))
	for _, f := range fields {
		specs = append(specs, map[string]string{
			"field":       f,
			"type":        "STRING",
			"description": "The " + f,
		})
	}
	p.WriteJSON("metrics/"+dir+"/"+view+".json", map[string]interface{}{
		"metric_description": "Metric " + view,
		"fields":             specs,
	})
}

// ReadFile returns the content at path
func (p *Project) ReadFile(path string) string {
	p.t.Helper()

	data, err := afero.ReadFile(p.Fs, path)
	if err != nil {
		p.t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(data)
}
