package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"todo-api/internal/repository/sqlite"
	"todo-api/internal/service"
)

const superuserPasswordEnv = "TODO_SUPERUSER_PASSWORD"

func init() {
	CreateSuperuserCommand.Flags().String("username", "", "username of the new superuser")
	CreateSuperuserCommand.Flags().String("email", "", "email of the new superuser")
	CreateSuperuserCommand.Flags().String("password", "", "password (defaults to $"+superuserPasswordEnv+")")
	_ = CreateSuperuserCommand.MarkFlagRequired("username")
	_ = CreateSuperuserCommand.MarkFlagRequired("email")

	RootCmd.AddCommand(&CreateSuperuserCommand)
}

var CreateSuperuserCommand = cobra.Command{
	Use:   "createsuperuser",
	Short: "Create an active staff superuser",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		username, _ := cmd.Flags().GetString("username")
		email, _ := cmd.Flags().GetString("email")
		password, _ := cmd.Flags().GetString("password")
		if password == "" {
			password = os.Getenv(superuserPasswordEnv)
		}
		if password == "" {
			return errors.New("a password is required: pass --password or set " + superuserPasswordEnv)
		}

		db, err := openDatabase(cmd)
		if err != nil {
			return err
		}
		defer db.Close()

		users := service.NewUserService(sqlite.NewUserRepository(db), service.UserConfig{
			MinPasswordLength: cfg.Auth.MinPasswordLength,
		})
		user, err := users.CreateSuperuser(cmd.Context(), username, email, password)
		if err != nil {
			return err
		}

		logger.WithField("user_id", user.ID).Info("superuser created")
		fmt.Fprintf(cmd.OutOrStdout(), "created superuser %s (id %d)\n", user.Username, user.ID)
		return nil
	},
}
