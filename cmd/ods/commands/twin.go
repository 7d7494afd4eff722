package commands

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/fivetwenty-io/ods-client/internal/constants"
	"github.com/fivetwenty-io/ods-client/internal/twin"
)

// NewTwinCommand creates the twin command group.
func NewTwinCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "twin",
		Short: "Run a local ordered data stores twin",
		Long:  "Run an in-memory stand-in for the ordered data stores API, for local development and testing",
	}

	cmd.AddCommand(newTwinServeCommand())

	return cmd
}

func newTwinServeCommand() *cobra.Command {
	config := &twin.Config{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the twin over HTTP",
		Long: `Serve the twin until interrupted. Point the CLI at it with
--base-url http://localhost:<port>.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			config.Verbose = viper.GetBool(KeyVerbose)
			config.Logger = slog.New(slog.NewJSONHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
				Level: twinLogLevel(config.Verbose),
			}))

			tw, err := twin.New(config)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return tw.Serve(ctx)
		},
	}

	cmd.Flags().IntVarP(&config.Port, "port", "p", constants.DefaultTwinPort, "HTTP listen port")
	cmd.Flags().StringVar(&config.APIKey, "accept-key", "", "only accept this API key (default: any non-empty key)")
	cmd.Flags().StringVar(&config.SeedFile, "seed-file", "", "snapshot to load on start (.zst files are decompressed)")
	cmd.Flags().StringVar(&config.SnapshotFile, "snapshot-file", "", "write the store to this file on shutdown (.zst to compress)")

	return cmd
}

func twinLogLevel(verbose bool) slog.Level {
	if verbose {
		return slog.LevelDebug
	}

	return slog.LevelInfo
}
