package config

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "viewdeploy/pkg/errors"
	"viewdeploy/pkg/models"
)

func TestLoadDefaultsWithoutSettingsFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	settings, err := Load(afero.NewMemMapFs(), "")
	require.NoError(t, err)

	assert.Equal(t, models.DefaultSettings(), *settings)
}

func TestLoadExplicitSettingsFile(t *testing.T) {
	fsys := afero.NewMemMapFs()
	content := `
paths:
  templates: sql
  build: out
warehouse:
  backend: snowflake
deployment:
  project: analytics-prod
  revision_label: false
snowflake:
  account: xy12345.us-east-1
  username: deploy_user
`
	require.NoError(t, afero.WriteFile(fsys, "settings.yaml", []byte(content), 0600))

	settings, err := Load(fsys, "settings.yaml")
	require.NoError(t, err)

	assert.Equal(t, "sql", settings.Paths.Templates)
	assert.Equal(t, "out", settings.Paths.Build)
	assert.Equal(t, "configuration/configuration.json", settings.Paths.Configuration)
	assert.Equal(t, models.BackendSnowflake, settings.Warehouse.Backend)
	assert.Equal(t, "analytics-prod", settings.Deployment.Project)
	assert.False(t, settings.Deployment.RevisionLabel)
	assert.Equal(t, "deploy_user", settings.Snowflake.Username)
}

func TestLoadEnvironmentOverride(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("VIEWDEPLOY_DEPLOYMENT_PROJECT", "from-env")
	t.Setenv("VIEWDEPLOY_SNOWFLAKE_PASSWORD", "s3cret")

	settings, err := Load(afero.NewMemMapFs(), "")
	require.NoError(t, err)

	assert.Equal(t, "from-env", settings.Deployment.Project)
	assert.Equal(t, "s3cret", settings.Snowflake.Password)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(afero.NewMemMapFs(), "nope.yaml")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeConfigInvalid, apperrors.GetErrorCode(err))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*models.Settings)
		wantError string
	}{
		{name: "defaults", mutate: func(*models.Settings) {}},
		{name: "snowflake", mutate: func(s *models.Settings) { s.Warehouse.Backend = models.BackendSnowflake }},
		{name: "unknown backend", mutate: func(s *models.Settings) { s.Warehouse.Backend = "redshift" }, wantError: "unknown warehouse backend"},
		{name: "empty templates", mutate: func(s *models.Settings) { s.Paths.Templates = "" }, wantError: "templates path"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := models.DefaultSettings()
			tt.mutate(&s)

			err := Validate(&s)
			if tt.wantError == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantError)
		})
	}
}

func TestSaveAndLoad(t *testing.T) {
	fsys := afero.NewMemMapFs()
	s := models.DefaultSettings()
	s.Deployment.Project = "saved-project"

	require.NoError(t, Save(fsys, "conf/.viewdeploy.yaml", &s))
	assert.True(t, Exists(fsys, "conf/.viewdeploy.yaml"))

	loaded, err := Load(fsys, "conf/.viewdeploy.yaml")
	require.NoError(t, err)
	assert.Equal(t, s, *loaded)
}

func TestLoadVariables(t *testing.T) {
	fsys := afero.NewMemMapFs()
	content := `{"project": "mydata", "lookback_days": 30, "ratio": 0.5, "regions": ["eu", "us"], "nested": {"limit": 10}}`
	require.NoError(t, afero.WriteFile(fsys, "configuration/configuration.json", []byte(content), 0644))

	vars, err := LoadVariables(fsys, "configuration/configuration.json")
	require.NoError(t, err)

	assert.Equal(t, "mydata", vars["project"])
	assert.Equal(t, int64(30), vars["lookback_days"])
	assert.Equal(t, 0.5, vars["ratio"])
	assert.Equal(t, []interface{}{"eu", "us"}, vars["regions"])
	assert.Equal(t, map[string]interface{}{"limit": int64(10)}, vars["nested"])
}

func TestLoadVariablesErrors(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "bad.json", []byte(`{"project": `), 0644))
	require.NoError(t, afero.WriteFile(fsys, "array.json", []byte(`["a"]`), 0644))

	_, err := LoadVariables(fsys, "missing.json")
	assert.Equal(t, apperrors.ErrCodeConfigNotFound, apperrors.GetErrorCode(err))

	_, err = LoadVariables(fsys, "bad.json")
	assert.Equal(t, apperrors.ErrCodeConfigInvalid, apperrors.GetErrorCode(err))

	_, err = LoadVariables(fsys, "array.json")
	assert.Equal(t, apperrors.ErrCodeConfigInvalid, apperrors.GetErrorCode(err))
}
