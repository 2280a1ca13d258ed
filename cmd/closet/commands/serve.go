package commands

import (
	"github.com/spf13/cobra"

	"github.com/giovaniif/instrument-closet/cmd/api"
)

func newServeCommand(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := rt.load(); err != nil {
				return err
			}
			defer rt.close()
			return api.StartServer(cmd.Context(), rt.cfg, rt.logger)
		},
	}
}
