package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"viewdeploy/internal/common"
	"viewdeploy/internal/config"
	"viewdeploy/internal/ui"
	apperrors "viewdeploy/pkg/errors"
	"viewdeploy/pkg/models"
)

type initOptions struct {
	force   bool
	backend string
}

func newInitCmd() *cobra.Command {
	opts := &initOptions{}

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default settings file and project layout",
		Long: `Write .viewdeploy.yaml with the default settings and create the
configuration file, templates directory and deployment manifest when they are
missing. Existing project files are never touched.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.force, "force", "f", false, "overwrite an existing settings file")
	cmd.Flags().StringVar(&opts.backend, "backend", models.BackendBigQuery, "warehouse backend: bigquery or snowflake")
	return cmd
}

func runInit(opts *initOptions) error {
	settings := models.DefaultSettings()
	settings.Warehouse.Backend = opts.backend
	if err := config.Validate(&settings); err != nil {
		return err
	}

	if config.Exists(fsys, config.SettingsFileName) && !opts.force {
		return apperrors.New(apperrors.ErrCodeInvalidInput, fmt.Sprintf("%s already exists", config.SettingsFileName)).
			WithSuggestions("Use --force to overwrite it")
	}

	if err := config.Save(fsys, config.SettingsFileName, &settings); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeFileOperation, "Failed to write settings")
	}
	ui.ShowSuccess("Wrote " + config.SettingsFileName)

	if err := scaffold(&settings); err != nil {
		return err
	}
	return nil
}

// scaffold creates the project files the settings point at, leaving existing
// ones alone
func scaffold(settings *models.Settings) error {
	for _, path := range []string{settings.Paths.Configuration, settings.Paths.Manifest} {
		if config.Exists(fsys, path) {
			continue
		}
		if err := fsys.MkdirAll(filepath.Dir(path), common.DirPermissionNormal); err != nil {
			return apperrors.Wrap(err, apperrors.ErrCodeFileOperation, "Failed to create "+filepath.Dir(path))
		}
		if err := afero.WriteFile(fsys, path, []byte("{}\n"), common.FilePermissionNormal); err != nil {
			return apperrors.Wrap(err, apperrors.ErrCodeFileOperation, "Failed to write "+path)
		}
		ui.ShowInfo("Created " + path)
	}

	if !config.Exists(fsys, settings.Paths.Templates) {
		if err := fsys.MkdirAll(settings.Paths.Templates, common.DirPermissionNormal); err != nil {
			return apperrors.Wrap(err, apperrors.ErrCodeFileOperation, "Failed to create "+settings.Paths.Templates)
		}
		ui.ShowInfo("Created " + settings.Paths.Templates + "/")
	}
	return nil
}
