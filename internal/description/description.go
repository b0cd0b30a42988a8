package description

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/afero"

	"viewdeploy/internal/common"
	"viewdeploy/internal/ui"
	"viewdeploy/internal/warehouse"
	apperrors "viewdeploy/pkg/errors"
)

// Field describes one column of a view
type Field struct {
	Field       string `json:"field"`
	Type        string `json:"type"`
	Mode        string `json:"mode,omitempty"`
	Description string `json:"description"`
}

// ViewDescription is the content of a <view>.json file
type ViewDescription struct {
	MetricDescription string  `json:"metric_description"`
	Fields            []Field `json:"fields"`
}

// Resolver finds view descriptions anywhere below a root directory
type Resolver struct {
	fs   afero.Fs
	root string
}

// NewResolver creates a resolver searching below root
func NewResolver(fsys afero.Fs, root string) *Resolver {
	return &Resolver{fs: fsys, root: root}
}

// Resolve loads <view>.json. The file is read on every call.
func (r *Resolver) Resolve(view string) (*ViewDescription, error) {
	name := view + ".json"

	path, found, err := common.FindFile(r.fs, r.root, name)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeFileOperation, "Failed to search for view description")
	}
	if !found {
		return nil, apperrors.NotFoundError("view description", name, r.root)
	}

	ui.Detail("Found the description file at --> " + path)

	data, err := afero.ReadFile(r.fs, path)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeFileOperation, fmt.Sprintf("Failed to read %s", path))
	}

	var desc ViewDescription
	if err := json.Unmarshal(data, &desc); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeDescriptionInvalid, fmt.Sprintf("%s is not a valid view description", path)).
			WithSeverity(apperrors.SeverityCritical).
			WithContext("file", path)
	}
	return &desc, nil
}

// SchemaFields maps the description fields 1:1, in order, defaulting the
// mode to NULLABLE
func (d *ViewDescription) SchemaFields() []warehouse.Field {
	fields := make([]warehouse.Field, 0, len(d.Fields))
	for _, f := range d.Fields {
		mode := strings.ToUpper(f.Mode)
		if mode == "" {
			mode = warehouse.ModeNullable
		}
		fields = append(fields, warehouse.Field{
			Name:        f.Field,
			Type:        strings.ToUpper(f.Type),
			Mode:        mode,
			Description: f.Description,
		})
	}
	return fields
}
