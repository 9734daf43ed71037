package main

import (
	"database/sql"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"todo-api/internal/config"
	"todo-api/internal/repository/sqlite"
)

var (
	// flags
	configFile string
	verbose    bool

	cfg    config.Config
	logger = logrus.New()
)

func init() {
	RootCmd.PersistentFlags().StringVar(&configFile, "config", "", "configuration file")
	RootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
}

var RootCmd = cobra.Command{
	Use:           "taskctl",
	Short:         "Administration commands for the task API",
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
		if verbose {
			logger.SetLevel(logrus.DebugLevel)
		}

		loaded, err := config.Load(configFile)
		if err != nil {
			return err
		}
		cfg = loaded
		return nil
	},
}

// openDatabase opens the configured sqlite file and makes sure the schema exists.
func openDatabase(cmd *cobra.Command) (*sql.DB, error) {
	db, err := sqlite.Open(cfg.Database.Path)
	if err != nil {
		return nil, err
	}

	ctx := cmd.Context()
	if err := sqlite.NewUserRepository(db).Init(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("init user repository: %w", err)
	}
	if err := sqlite.NewTaskRepository(db).Init(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("init task repository: %w", err)
	}
	return db, nil
}
