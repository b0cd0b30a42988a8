package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestDefaultSettings(t *testing.T) {
	s := DefaultSettings()

	assert.Equal(t, "configuration/configuration.json", s.Paths.Configuration)
	assert.Equal(t, "metrics", s.Paths.Templates)
	assert.Equal(t, "build", s.Paths.Build)
	assert.Equal(t, "deployment.json", s.Paths.Manifest)
	assert.Equal(t, BackendBigQuery, s.Warehouse.Backend)
	assert.Equal(t, "mydata-1470162410749", s.Deployment.Project)
	assert.True(t, s.Deployment.RevisionLabel)
}

func TestSettingsYAMLRoundTrip(t *testing.T) {
	s := DefaultSettings()
	s.Warehouse.Backend = BackendSnowflake
	s.Snowflake = Snowflake{
		Account:   "xy12345.us-east-1",
		Username:  "deploy_user",
		Role:      "DEPLOYMENT_ROLE",
		Warehouse: "DEPLOY_WH",
	}

	data, err := yaml.Marshal(s)
	require.NoError(t, err)
	assert.Contains(t, string(data), "search_root: .")
	assert.Contains(t, string(data), "revision_label: true")

	var loaded Settings
	require.NoError(t, yaml.Unmarshal(data, &loaded))
	assert.Equal(t, s, loaded)
}
