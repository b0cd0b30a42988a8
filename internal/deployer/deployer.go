// Package deployer renders and publishes every view listed in the deployment
// manifest.
package deployer

import (
	"context"
	"fmt"

	"github.com/spf13/afero"

	"viewdeploy/internal/common"
	"viewdeploy/internal/observability"
	"viewdeploy/internal/publisher"
	"viewdeploy/internal/template"
	"viewdeploy/internal/ui"
	apperrors "viewdeploy/pkg/errors"
	"viewdeploy/pkg/models"
)

// Selector lets the operator narrow the manifest entries to deploy
type Selector func(message string, options []string) ([]string, error)

// Result is the outcome of one manifest entry
type Result struct {
	Entry   Entry
	Target  string
	Created bool
}

// Deployer deploys manifest entries one after another
type Deployer struct {
	fs        afero.Fs
	settings  *models.Settings
	renderer  *template.Renderer
	publisher *publisher.Publisher
	selector  Selector
	logger    *observability.Logger
}

// Option configures a Deployer
type Option func(*Deployer)

// WithSelector enables interactive selection of entries
func WithSelector(s Selector) Option {
	return func(d *Deployer) {
		d.selector = s
	}
}

// WithLogger sets the deployer's logger
func WithLogger(logger *observability.Logger) Option {
	return func(d *Deployer) {
		d.logger = logger
	}
}

// New creates a deployer
func New(fsys afero.Fs, settings *models.Settings, renderer *template.Renderer, pub *publisher.Publisher, opts ...Option) *Deployer {
	d := &Deployer{
		fs:        fsys,
		settings:  settings,
		renderer:  renderer,
		publisher: pub,
		logger:    observability.Discard(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// LoadManifest finds and parses the manifest below the search root
func (d *Deployer) LoadManifest() ([]Entry, error) {
	name := d.settings.Paths.Manifest
	root := d.settings.Paths.SearchRoot

	path, found, err := common.FindFile(d.fs, root, name)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeFileOperation, "Failed to search for deployment manifest")
	}
	if !found {
		return nil, apperrors.NotFoundError("deployment manifest", name, root)
	}

	data, err := afero.ReadFile(d.fs, path)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeFileOperation, fmt.Sprintf("Failed to read %s", path))
	}
	return ParseManifest(data)
}

// DeployAll renders <template>.sql.j2 to <template>.sql and publishes it for
// each manifest entry, in manifest order. A view that fails to create does not
// stop the batch; a missing file or a schema update failure does.
func (d *Deployer) DeployAll(ctx context.Context, dataset string) ([]Result, error) {
	entries, err := d.LoadManifest()
	if err != nil {
		return nil, err
	}

	entries, err = d.selectEntries(entries)
	if err != nil {
		return nil, err
	}

	project := d.settings.Deployment.Project
	target := project + "." + dataset
	d.logger.InfoWithFields("Deploying manifest", map[string]interface{}{
		"entries": len(entries),
		"target":  target,
	})

	results := make([]Result, 0, len(entries))
	for _, e := range entries {
		d.logger.DebugWithFields("Deploying entry", map[string]interface{}{
			"template": e.Template,
			"view":     e.View,
		})

		sql, err := d.renderer.Render(e.Template+".sql.j2", e.Template+".sql")
		if err != nil {
			return results, err
		}

		created, err := d.publisher.Publish(ctx, dataset, e.View, project, sql)
		results = append(results, Result{Entry: e, Target: target, Created: created})
		if err != nil {
			return results, err
		}
		if !created {
			d.logger.WarnWithFields("View not created", map[string]interface{}{"view": e.View})
		}
	}

	showSummary(results)
	return results, nil
}

func (d *Deployer) selectEntries(entries []Entry) ([]Entry, error) {
	if d.selector == nil || len(entries) == 0 {
		return entries, nil
	}

	options := make([]string, 0, len(entries))
	for _, e := range entries {
		options = append(options, e.Template)
	}

	chosen, err := d.selector("Select the views to deploy:", options)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInvalidInput, "Selection cancelled")
	}

	keep := make(map[string]bool, len(chosen))
	for _, c := range chosen {
		keep[c] = true
	}

	selected := make([]Entry, 0, len(chosen))
	for _, e := range entries {
		if keep[e.Template] {
			selected = append(selected, e)
		}
	}
	return selected, nil
}

func showSummary(results []Result) {
	rows := make([]ui.DeploymentRow, 0, len(results))
	for _, r := range results {
		rows = append(rows, ui.DeploymentRow{
			Template: r.Entry.Template,
			View:     r.Entry.View,
			Target:   r.Target,
			Success:  r.Created,
		})
	}
	ui.ShowHeader("Deployment summary")
	ui.ShowDeploymentSummary(rows)
}
