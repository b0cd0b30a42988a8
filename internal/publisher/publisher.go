// Package publisher replaces a warehouse view with freshly rendered SQL and
// applies the column descriptions from the view's description file.
package publisher

import (
	"context"
	"errors"
	"fmt"

	"viewdeploy/internal/description"
	"viewdeploy/internal/observability"
	"viewdeploy/internal/ui"
	"viewdeploy/internal/warehouse"
)

// Publisher runs the delete, create, update-schema sequence for one view at a
// time. The steps are not atomic: a failed create leaves the view deleted.
type Publisher struct {
	open     warehouse.Opener
	resolver *description.Resolver
	labels   map[string]string
	logger   *observability.Logger
}

// Option configures a Publisher
type Option func(*Publisher)

// WithLabels attaches labels to every created view
func WithLabels(labels map[string]string) Option {
	return func(p *Publisher) {
		p.labels = labels
	}
}

// WithLogger sets the logger for warehouse failures
func WithLogger(logger *observability.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

// New creates a publisher
func New(open warehouse.Opener, resolver *description.Resolver, opts ...Option) *Publisher {
	p := &Publisher{
		open:     open,
		resolver: resolver,
		logger:   observability.Discard(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Publish replaces project.dataset.view with sql. It reports whether the view
// was created. Errors are returned only for a missing or malformed
// description and for a failed schema update.
func (p *Publisher) Publish(ctx context.Context, dataset, view, project, sql string) (bool, error) {
	ui.Banner(view)

	desc, err := p.resolver.Resolve(view)
	if err != nil {
		return false, err
	}

	ref := warehouse.ViewRef{Project: project, Dataset: dataset, Name: view}
	log := p.logger.WithField("view", ref.String())

	wh, err := p.open(ctx, project)
	if err != nil {
		log.ErrorWithFields("Failed to connect to warehouse", map[string]interface{}{"error": err.Error()})
		ui.ShowError(err)
		ui.Failure("Error: Couldn't create view")
		return false, nil
	}
	defer wh.Close()

	err = wh.DeleteView(ctx, ref)
	switch {
	case errors.Is(err, warehouse.ErrViewNotFound):
		ui.Failure("View doesn't exist")
	case err != nil:
		log.WarnWithFields("Failed to delete existing view", map[string]interface{}{"error": err.Error()})
		ui.ShowWarning(fmt.Sprintf("Couldn't delete %s: %v", ref, err))
	default:
		log.Info("Existing view deleted")
		ui.Step("Existing view deleted")
	}

	spec := warehouse.ViewSpec{
		Query:       sql,
		Description: desc.MetricDescription,
		Labels:      p.labels,
	}
	if err := wh.CreateView(ctx, ref, spec); err != nil {
		log.ErrorWithFields("Failed to create view", map[string]interface{}{"error": err.Error()})
		ui.Println(err)
		ui.Failure("Error: Couldn't create view")
		return false, nil
	}
	log.Info("View created")
	ui.Step("View created : " + ref.String())

	ui.Step("Getting the view schema from the description json file")
	if err := wh.UpdateSchema(ctx, ref, desc.SchemaFields()); err != nil {
		log.ErrorWithFields("Failed to update view schema", map[string]interface{}{"error": err.Error()})
		return true, err
	}
	ui.Step("Updated the view schema descriptions")

	return true, nil
}
