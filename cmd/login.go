package cmd

import (
	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"

	"viewdeploy/internal/config"
	"viewdeploy/internal/ui"
	"viewdeploy/internal/warehouse"
	apperrors "viewdeploy/pkg/errors"
)

// Replaced in tests
var askPassword = func(user string) (string, error) {
	var password string
	prompt := &survey.Password{Message: "Snowflake password for " + user + ":"}
	err := survey.AskOne(prompt, &password, survey.WithValidator(survey.Required))
	return password, err
}

func newLoginCmd() *cobra.Command {
	var user string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Store the Snowflake password in the OS keyring",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			settingsFile, _ := cmd.Flags().GetString("settings")
			return runLogin(settingsFile, user)
		},
	}

	cmd.Flags().StringVarP(&user, "user", "u", "", "Snowflake user (default is snowflake.username from the settings)")
	return cmd
}

func runLogin(settingsFile, user string) error {
	if user == "" {
		settings, err := config.Load(fsys, settingsFile)
		if err != nil {
			return err
		}
		user = settings.Snowflake.Username
	}
	if user == "" {
		return apperrors.ConfigError("No Snowflake user given", "snowflake.username").
			WithSuggestions("Pass --user")
	}

	password, err := askPassword(user)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeInvalidInput, "Password prompt cancelled")
	}

	if err := warehouse.StorePassword(user, password); err != nil {
		return err
	}
	ui.ShowSuccess("Stored password for " + user + " in the keyring")
	return nil
}
