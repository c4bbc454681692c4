package command

import (
	"errors"

	"github.com/alwitt/reporter/db"
	"github.com/apex/log"
	"github.com/spf13/cobra"
)

func migrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or upgrade the database tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) (runErr error) {
			cfg, persistence, err := loadPersistence(cmd.Context())
			if err != nil {
				return err
			}
			defer func() {
				if err := persistence.Close(); err != nil {
					runErr = errors.Join(runErr, err)
				}
			}()

			if err := persistence.RunSQLInTransaction(cmd.Context(), db.DefineTables); err != nil {
				return err
			}
			log.WithField("dialect", cfg.Database.Dialect).Info("Tables prepared")
			return nil
		},
	}
}
