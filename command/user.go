package command

import (
	"errors"
	"os"

	"github.com/alwitt/reporter/store"
	"github.com/spf13/cobra"
)

func userCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "User commands",
	}
	cmd.AddCommand(userCreateCommand())
	return cmd
}

func userCreateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "create NAME",
		Short: "Create user",
		Long: "Creates a user account for the provided username and password. Passwords may be\n" +
			"provided via stdin or through the interactive prompt.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (runErr error) {
			cfg, persistence, err := loadPersistence(cmd.Context())
			if err != nil {
				return err
			}
			defer func() {
				if err := persistence.Close(); err != nil {
					runErr = errors.Join(runErr, err)
				}
			}()

			passwd, err := prompt(os.Stdin, cmd.ErrOrStderr(), "password: ", true)
			if err != nil {
				return err
			}

			users := store.NewUserStore(persistence, cfg.Store.ReadRetry.RetryParams())
			_, err = users.CreateUser(cmd.Context(), args[0], string(passwd), nil)
			return err
		},
	}
}
