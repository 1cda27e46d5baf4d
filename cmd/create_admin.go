package cmd

import (
	"errors"

	"github.com/ecoreport/api-go/auth"
	"github.com/ecoreport/api-go/services"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var adminOpts struct {
	name     string
	email    string
	password string
}

// Registration never grants the admin role; operators use this command.
var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Create an admin account, or promote an existing one and reset its password",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if adminOpts.email == "" || adminOpts.password == "" {
			return errors.New("--email and --password are required")
		}

		cfg, log, db, err := bootstrap()
		if err != nil {
			return err
		}
		defer log.Sync() //nolint:errcheck

		tokens := auth.NewTokenService([]byte(cfg.JWTSecret), cfg.TokenTTL)
		users := services.NewUserService(db, nil, tokens, log)

		user, err := users.EnsureAdmin(cmd.Context(), adminOpts.name, adminOpts.email, adminOpts.password)
		if err != nil {
			return err
		}

		log.Info("admin account ready", zap.Uint("user_id", user.ID), zap.String("email", user.Email))
		return nil
	},
}

func init() {
	createAdminCmd.Flags().StringVar(&adminOpts.name, "name", "Administrator", "display name")
	createAdminCmd.Flags().StringVar(&adminOpts.email, "email", "", "login email")
	createAdminCmd.Flags().StringVar(&adminOpts.password, "password", "", "login password")
}
