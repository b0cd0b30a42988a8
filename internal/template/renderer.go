package template

import (
	"fmt"
	"path/filepath"
	"regexp"
	"sort"

	"github.com/flosch/pongo2/v6"
	"github.com/spf13/afero"

	"viewdeploy/internal/common"
	"viewdeploy/internal/config"
	"viewdeploy/internal/observability"
	"viewdeploy/internal/ui"
	apperrors "viewdeploy/pkg/errors"
)

// pongo2 rejects a whole context when any key is not an identifier
var reIdentifier = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

func init() {
	// Rendered text is SQL, never HTML
	pongo2.SetAutoescape(false)
}

// Renderer renders *.sql.j2 templates with the configuration variables
type Renderer struct {
	fs        afero.Fs
	templates string
	build     string
	context   pongo2.Context
	logger    *observability.Logger
}

// Option configures a Renderer
type Option func(*Renderer)

// WithLogger sets the logger used for skipped variables and render traces
func WithLogger(logger *observability.Logger) Option {
	return func(r *Renderer) {
		r.logger = logger
	}
}

// NewRenderer creates a renderer rooted at templatesDir that writes output
// files under buildDir. Variables whose names are not identifiers cannot be
// referenced from a template; they are left out of the context with a warning.
func NewRenderer(fsys afero.Fs, templatesDir, buildDir string, vars config.Variables, opts ...Option) *Renderer {
	r := &Renderer{
		fs:        fsys,
		templates: templatesDir,
		build:     buildDir,
		logger:    observability.Discard(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.context = r.templateContext(vars)
	return r
}

func (r *Renderer) templateContext(vars config.Variables) pongo2.Context {
	keys := make([]string, 0, len(vars))
	for k := range vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	ctx := make(pongo2.Context, len(vars))
	for _, k := range keys {
		if !reIdentifier.MatchString(k) {
			r.logger.Warn(fmt.Sprintf("Skipping configuration key %q: not a valid template variable name", k))
			continue
		}
		ctx[k] = vars[k]
	}
	return ctx
}

// Render locates templateFile under the templates root and renders it. With
// an outputFile the text is written to <build>/<outputFile>; otherwise it is
// printed highlighted. The rendered text is returned either way.
func (r *Renderer) Render(templateFile, outputFile string) (string, error) {
	path, found, err := common.FindFile(r.fs, r.templates, templateFile)
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.ErrCodeFileOperation, "Failed to search for template")
	}
	if !found {
		return "", apperrors.NotFoundError("template", templateFile, r.templates)
	}

	rel, err := filepath.Rel(r.templates, path)
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.ErrCodeInternal, "Failed to resolve template path")
	}

	ui.Detail("Going to render template file at --> " + rel)
	ui.Detail("Rendered SQL --> ")

	text, err := r.execute(rel)
	if err != nil {
		return "", apperrors.TemplateError(rel, err)
	}

	if outputFile == "" {
		if err := ui.HighlightSQL(text); err != nil {
			return "", err
		}
		return text, nil
	}

	if err := r.write(outputFile, text); err != nil {
		return "", err
	}
	return text, nil
}

// BuildPath returns where an output file is written
func (r *Renderer) BuildPath(outputFile string) (string, error) {
	return common.JoinPath(r.build, outputFile)
}

func (r *Renderer) execute(name string) (string, error) {
	set := pongo2.NewSet("viewdeploy", newLoader(r.fs, r.templates))

	tpl, err := set.FromFile(name)
	if err != nil {
		return "", err
	}

	text, err := tpl.Execute(r.context)
	if err != nil {
		return "", err
	}

	r.logger.Debugf("Rendered %s (%d bytes)", name, len(text))
	return text, nil
}

func (r *Renderer) write(outputFile, text string) error {
	target, err := r.BuildPath(outputFile)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeInvalidInput, "Invalid output file").
			WithContext("output_file", outputFile)
	}

	if err := r.fs.MkdirAll(filepath.Dir(target), common.DirPermissionNormal); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeFileOperation, fmt.Sprintf("Failed to create %s", filepath.Dir(target)))
	}

	if err := afero.WriteFile(r.fs, target, []byte(text), common.FilePermissionNormal); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeFileOperation, fmt.Sprintf("Failed to write %s", target))
	}
	return nil
}
