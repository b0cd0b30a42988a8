package models

// Settings holds the tool's own configuration. Template variables live in a
// separate JSON file and are not part of it.
type Settings struct {
	Paths      Paths      `yaml:"paths" mapstructure:"paths"`
	Warehouse  Warehouse  `yaml:"warehouse" mapstructure:"warehouse"`
	Deployment Deployment `yaml:"deployment" mapstructure:"deployment"`
	Snowflake  Snowflake  `yaml:"snowflake" mapstructure:"snowflake"`
	Log        Log        `yaml:"log" mapstructure:"log"`
}

// Paths locates the project's inputs and outputs, relative to the working directory
type Paths struct {
	Configuration string `yaml:"configuration" mapstructure:"configuration"` // Template variables JSON
	Templates     string `yaml:"templates" mapstructure:"templates"`         // Root searched for *.sql.j2
	Build         string `yaml:"build" mapstructure:"build"`                 // Rendered SQL output directory
	SearchRoot    string `yaml:"search_root" mapstructure:"search_root"`     // Root searched for descriptions and the manifest
	Manifest      string `yaml:"manifest" mapstructure:"manifest"`           // Manifest file name
}

// Warehouse selects the backend views are published to
type Warehouse struct {
	Backend string `yaml:"backend" mapstructure:"backend"` // "bigquery" or "snowflake"
}

// Deployment contains batch deployment settings
type Deployment struct {
	Project       string `yaml:"project" mapstructure:"project"`               // Project used by batch deployments
	RevisionLabel bool   `yaml:"revision_label" mapstructure:"revision_label"` // Label views with the git revision
}

type Snowflake struct {
	Account   string `yaml:"account" mapstructure:"account"`
	Username  string `yaml:"username" mapstructure:"username"`
	Password  string `yaml:"password" mapstructure:"password"`
	Role      string `yaml:"role" mapstructure:"role"`
	Warehouse string `yaml:"warehouse" mapstructure:"warehouse"`
}

type Log struct {
	Level string `yaml:"level" mapstructure:"level"`
	File  string `yaml:"file" mapstructure:"file"`
}

const (
	BackendBigQuery  = "bigquery"
	BackendSnowflake = "snowflake"
)

// DefaultSettings returns the settings used when no settings file is present
func DefaultSettings() Settings {
	return Settings{
		Paths: Paths{
			Configuration: "configuration/configuration.json",
			Templates:     "metrics",
			Build:         "build",
			SearchRoot:    ".",
			Manifest:      "deployment.json",
		},
		Warehouse: Warehouse{
			Backend: BackendBigQuery,
		},
		Deployment: Deployment{
			Project:       "mydata-1470162410749",
			RevisionLabel: true,
		},
		Log: Log{
			Level: "warn",
		},
	}
}
