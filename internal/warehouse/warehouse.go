// Package warehouse publishes views to a data warehouse backend.
package warehouse

import (
	"context"
	"fmt"

	apperrors "viewdeploy/pkg/errors"
	"viewdeploy/pkg/models"
)

// ErrViewNotFound is matched (errors.Is) by backend errors for a missing view
var ErrViewNotFound = apperrors.New(apperrors.ErrCodeViewNotFound, "view not found")

// Field modes
const (
	ModeNullable = "NULLABLE"
	ModeRequired = "REQUIRED"
	ModeRepeated = "REPEATED"
)

// ViewRef identifies a view. On Snowflake the project is the database and the
// dataset is the schema.
type ViewRef struct {
	Project string
	Dataset string
	Name    string
}

func (r ViewRef) String() string {
	return fmt.Sprintf("%s.%s.%s", r.Project, r.Dataset, r.Name)
}

// Field is the metadata attached to one view column
type Field struct {
	Name        string
	Type        string
	Mode        string
	Description string
}

// ViewSpec is everything needed to create a view
type ViewSpec struct {
	Query       string
	Description string
	Labels      map[string]string
}

// Warehouse is the set of remote operations the publisher needs. Calls are
// independent; nothing spans delete, create and update.
type Warehouse interface {
	// DeleteView removes the view; a missing view yields ErrViewNotFound
	DeleteView(ctx context.Context, ref ViewRef) error
	// CreateView creates the view with a standard SQL body
	CreateView(ctx context.Context, ref ViewRef, spec ViewSpec) error
	// UpdateSchema replaces only the view's column metadata, in order
	UpdateSchema(ctx context.Context, ref ViewRef, fields []Field) error
	Close() error
}

// Opener connects to the warehouse for one project
type Opener func(ctx context.Context, project string) (Warehouse, error)

// ForSettings selects the opener for the configured backend
func ForSettings(settings *models.Settings) (Opener, error) {
	switch settings.Warehouse.Backend {
	case models.BackendBigQuery, "":
		return OpenBigQuery(), nil
	case models.BackendSnowflake:
		return OpenSnowflake(settings.Snowflake), nil
	default:
		return nil, apperrors.ConfigError(fmt.Sprintf("Unknown warehouse backend %q", settings.Warehouse.Backend), "warehouse.backend")
	}
}

func notFound(ref ViewRef, cause error) error {
	return apperrors.Wrap(cause, apperrors.ErrCodeViewNotFound, fmt.Sprintf("view %s does not exist", ref)).
		WithSeverity(apperrors.SeverityWarning).
		WithContext("view", ref.String())
}
