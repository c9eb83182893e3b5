package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
	"github.com/spf13/cobra"

	"github.com/alf-academy/enroll/internal/auth"
)

var loginFlags struct {
	email string
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Save an API token for submissions",
	Long: `Save the bearer token used to submit enrollments.

The token is written to <data_dir>/session.json, readable only by you.
Pass --token to skip the prompt. ENROLL_AUTH_TOKEN and --token on other
commands take precedence over the saved login.`,
	RunE: runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove the saved API token",
	RunE: func(cmd *cobra.Command, args []string) error {
		store := auth.NewStore(cfg.DataDir)
		if err := store.Clear(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
		return nil
	},
}

func init() {
	loginCmd.Flags().StringVar(&loginFlags.email, "email", "", "Account email to remember with the token")
}

func runLogin(cmd *cobra.Command, args []string) error {
	token := rootFlags.token
	email := loginFlags.email

	if token == "" {
		if email == "" {
			if err := survey.AskOne(&survey.Input{Message: "Account email (optional):"}, &email); err != nil {
				return promptErr(err)
			}
		}
		prompt := &survey.Password{Message: "API token:", Help: "Ask the academy office for a staff token."}
		if err := survey.AskOne(prompt, &token, survey.WithValidator(survey.Required)); err != nil {
			return promptErr(err)
		}
	}

	store := auth.NewStore(cfg.DataDir)
	err := store.Save(auth.Session{
		Token:    strings.TrimSpace(token),
		Email:    strings.TrimSpace(email),
		Endpoint: cfg.Endpoint,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Logged in. Token saved to %s\n", store.Path())
	return nil
}

func promptErr(err error) error {
	if errors.Is(err, terminal.InterruptErr) {
		return errors.New("login cancelled")
	}
	return fmt.Errorf("prompt failed: %w", err)
}
