package commands

import (
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/giovaniif/instrument-closet/infra/config"
	"github.com/giovaniif/instrument-closet/infra/logging"
	"github.com/giovaniif/instrument-closet/infra/loki"
)

type runtime struct {
	configPath string
	getenv     func(string) string
	cfg        config.Config
	logger     *slog.Logger
	lokiWriter *loki.Writer
}

// load resolves configuration and logging once per invocation.
func (r *runtime) load() error {
	cfg, err := config.Load(r.configPath, r.getenv)
	if err != nil {
		return err
	}
	r.cfg = cfg
	var sinks []io.Writer
	sinks = append(sinks, os.Stdout)
	if w := loki.NewWriter(cfg.LokiURL, map[string]string{"job": "instrument-closet", "service": "closet"}); w != nil {
		r.lokiWriter = w
		sinks = append(sinks, w)
	}
	r.logger = logging.New(logging.ParseLevel(cfg.LogLevel), sinks...)
	slog.SetDefault(r.logger)
	return nil
}

func (r *runtime) close() {
	if r.lokiWriter != nil {
		_ = r.lokiWriter.Close()
	}
}

func NewRootCommand() *cobra.Command {
	return newRootCommand(os.Getenv)
}

func newRootCommand(getenv func(string) string) *cobra.Command {
	rt := &runtime{getenv: getenv}
	root := &cobra.Command{
		Use:   "closet",
		Short: "Instrument Closet - reservations for shared instruments",
		Long: `Instrument Closet lends a finite stock of instruments for bounded time
windows and never commits more units than exist at any instant.`,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	root.PersistentFlags().StringVar(&rt.configPath, "config", "", "path to a YAML config file")

	root.AddCommand(
		newServeCommand(rt),
		newMigrateCommand(rt),
		newInstantCommand(),
		newAddUserCommand(rt),
	)
	return root
}
