package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/giovaniif/instrument-closet/domain/instant"
)

func newInstantCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "instant <local> <zone>",
		Short:   "Print the Unix instant for a local date-time in an IANA zone",
		Example: "  closet instant 2021-01-01T09:30:00 America/New_York",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			unix, err := instant.ToInstant(args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), unix)
			return nil
		},
	}
}
