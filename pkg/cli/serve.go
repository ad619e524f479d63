package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"phonecleaner/pkg/app"
	"phonecleaner/pkg/config"
)

func newServeCommand(v *viper.Viper, version string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the channel server",
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			return bindFlags(v, cmd.Flags(), map[string]string{
				"listen":           "listen",
				"home_dir":         "home-dir",
				"shutdown_timeout": "shutdown-timeout",
				"plugins.disabled": "disable-plugin",
			})
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(v)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return app.New(cfg, version).Launch(ctx)
		},
	}

	cmd.Flags().StringP("listen", "l", ":8080", "address to listen on")
	cmd.Flags().String("home-dir", "", "directory whose volume is reported (default is the user's home directory)")
	cmd.Flags().Duration("shutdown-timeout", 0, "graceful shutdown timeout (default 10s)")
	cmd.Flags().StringSlice("disable-plugin", nil, "plugin names to skip during registration")

	return cmd
}
