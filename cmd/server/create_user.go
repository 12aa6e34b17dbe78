package main

import (
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/iliyamo/incident-report-tracker/internal/config"
	"github.com/iliyamo/incident-report-tracker/internal/database"
	"github.com/iliyamo/incident-report-tracker/internal/model"
	"github.com/iliyamo/incident-report-tracker/internal/repository"
)

type createUserFlags struct {
	Name     string
	Email    string
	Password string
	Role     string
}

// newCreateUserCommand seeds a user, by default the first admin.  An
// existing email is left untouched.
func newCreateUserCommand() *cobra.Command {
	f := createUserFlags{Name: "Admin", Email: "admin@example.com", Role: model.RoleAdmin}
	cmd := &cobra.Command{
		Use:   "create-user",
		Short: "Create a user account (an admin by default)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if f.Password == "" {
				return errors.New("--password is required")
			}
			if !model.IsValidRole(f.Role) {
				return errors.Errorf("unknown role %q", f.Role)
			}
			cfg := config.LoadDatabase()
			db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
			if err != nil {
				return err
			}
			defer db.Close()
			if err := database.EnsureSchema(cmd.Context(), db); err != nil {
				return err
			}

			users := repository.NewUserRepo(db)
			u := &model.User{Name: f.Name, Email: f.Email, Role: f.Role}
			err = users.Create(cmd.Context(), u, f.Password, cfg.BcryptCost)
			if errors.Is(err, repository.ErrEmailExists) {
				log.WithField("email", repository.NormalizeEmail(f.Email)).Info("user already exists")
				return nil
			}
			if err != nil {
				return err
			}
			log.WithFields(log.Fields{"id": u.ID, "email": u.Email, "role": u.Role}).Info("user created")
			return nil
		},
	}
	cmd.Flags().StringVar(&f.Name, "name", f.Name, "Display name")
	cmd.Flags().StringVar(&f.Email, "email", f.Email, "Login email")
	cmd.Flags().StringVar(&f.Password, "password", "", "Login password (required)")
	cmd.Flags().StringVar(&f.Role, "role", f.Role, "Role: user or admin")
	return cmd
}
