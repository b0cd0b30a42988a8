package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"viewdeploy/internal/common"
	apperrors "viewdeploy/pkg/errors"
	"viewdeploy/pkg/models"
)

// SettingsFileName is the settings file looked up in the working directory
// and in ~/.viewdeploy
const SettingsFileName = ".viewdeploy.yaml"

// EnvPrefix prefixes environment overrides, e.g. VIEWDEPLOY_WAREHOUSE_BACKEND
const EnvPrefix = "VIEWDEPLOY"

// Load reads the settings. An explicit settingsFile must exist; otherwise a
// missing settings file leaves the defaults in place.
func Load(fsys afero.Fs, settingsFile string) (*models.Settings, error) {
	v := viper.New()
	v.SetFs(fsys)
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if settingsFile != "" {
		v.SetConfigFile(settingsFile)
	} else {
		v.SetConfigName(strings.TrimSuffix(SettingsFileName, ".yaml"))
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".viewdeploy"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if settingsFile != "" || !errors.As(err, &notFound) {
			return nil, apperrors.Wrap(err, apperrors.ErrCodeConfigInvalid, "Failed to read settings").
				WithContext("file", settingsFile)
		}
	}

	var settings models.Settings
	if err := v.Unmarshal(&settings); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeConfigInvalid, "Failed to decode settings")
	}

	if err := Validate(&settings); err != nil {
		return nil, err
	}
	return &settings, nil
}

// Validate checks the settings that have a closed set of values
func Validate(settings *models.Settings) error {
	switch settings.Warehouse.Backend {
	case models.BackendBigQuery, models.BackendSnowflake:
	default:
		return apperrors.ConfigError(
			fmt.Sprintf("unknown warehouse backend %q (expected %s or %s)",
				settings.Warehouse.Backend, models.BackendBigQuery, models.BackendSnowflake),
			"warehouse.backend",
		)
	}

	if settings.Paths.Templates == "" {
		return apperrors.ConfigError("templates path must not be empty", "paths.templates")
	}
	return nil
}

// Save writes settings as YAML to path
func Save(fsys afero.Fs, path string, settings *models.Settings) error {
	data, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := fsys.MkdirAll(dir, common.DirPermissionNormal); err != nil {
			return fmt.Errorf("failed to create settings directory: %w", err)
		}
	}

	if err := afero.WriteFile(fsys, path, data, common.FilePermissionSecure); err != nil {
		return fmt.Errorf("failed to write settings file: %w", err)
	}
	return nil
}

// Exists reports whether a file exists at path
func Exists(fsys afero.Fs, path string) bool {
	ok, err := afero.Exists(fsys, path)
	return err == nil && ok
}

func setDefaults(v *viper.Viper) {
	d := models.DefaultSettings()

	v.SetDefault("paths.configuration", d.Paths.Configuration)
	v.SetDefault("paths.templates", d.Paths.Templates)
	v.SetDefault("paths.build", d.Paths.Build)
	v.SetDefault("paths.search_root", d.Paths.SearchRoot)
	v.SetDefault("paths.manifest", d.Paths.Manifest)
	v.SetDefault("warehouse.backend", d.Warehouse.Backend)
	v.SetDefault("deployment.project", d.Deployment.Project)
	v.SetDefault("deployment.revision_label", d.Deployment.RevisionLabel)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.file", d.Log.File)

	// Registered so AutomaticEnv can see them
	v.SetDefault("snowflake.account", "")
	v.SetDefault("snowflake.username", "")
	v.SetDefault("snowflake.password", "")
	v.SetDefault("snowflake.role", "")
	v.SetDefault("snowflake.warehouse", "")
}
