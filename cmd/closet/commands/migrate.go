package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/giovaniif/instrument-closet/cmd/api"
	"github.com/giovaniif/instrument-closet/infra/config"
)

func newMigrateCommand(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply SQL migrations for the configured store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := rt.load(); err != nil {
				return err
			}
			defer rt.close()
			if rt.cfg.StoreDriver == config.StoreMemory {
				return fmt.Errorf("STORE_DRIVER is memory, nothing to migrate")
			}
			// opening the store applies pending migrations
			stores, err := api.OpenStores(cmd.Context(), rt.cfg)
			if err != nil {
				return err
			}
			defer stores.SQL.Close()
			fmt.Fprintf(cmd.OutOrStdout(), "migrations applied (%s)\n", rt.cfg.StoreDriver)
			return nil
		},
	}
}
