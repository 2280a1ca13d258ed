package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/giovaniif/instrument-closet/cmd/api"
	"github.com/giovaniif/instrument-closet/infra/auth"
	"github.com/giovaniif/instrument-closet/infra/config"
	"github.com/giovaniif/instrument-closet/use_cases/accounts"
)

func newAddUserCommand(rt *runtime) *cobra.Command {
	var input accounts.RegisterInput
	cmd := &cobra.Command{
		Use:   "adduser <username> <password>",
		Short: "Create an account directly in the store",
		Long:  "Create an account directly in the store. This is how the first admin is made.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := rt.load(); err != nil {
				return err
			}
			defer rt.close()
			if rt.cfg.StoreDriver == config.StoreMemory {
				return fmt.Errorf("STORE_DRIVER is memory, the account would not outlive this command")
			}
			stores, err := api.OpenStores(cmd.Context(), rt.cfg)
			if err != nil {
				return err
			}
			defer stores.SQL.Close()

			input.Username, input.Password = args[0], args[1]
			out, err := accounts.NewAccounts(stores.Users, auth.NewBcryptHasher(rt.cfg.BcryptCost), auth.NewTokens(rt.cfg.SecretKey, 0)).
				Register(cmd.Context(), input)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created user %s (id %d, admin %t)\n", out.User.Username, out.User.Id, out.User.IsAdmin)
			return nil
		},
	}
	cmd.Flags().BoolVar(&input.IsAdmin, "admin", false, "grant administrator rights")
	cmd.Flags().StringVar(&input.FirstName, "first", "", "first name")
	cmd.Flags().StringVar(&input.LastName, "last", "", "last name")
	cmd.Flags().StringVar(&input.Email, "email", "", "email address")
	return cmd
}
