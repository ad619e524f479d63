// Package cli defines the storaged command tree.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"phonecleaner/pkg/config"
	"phonecleaner/pkg/log"
)

// NewRootCommand builds the command tree around a fresh viper instance.
func NewRootCommand(version string) *cobra.Command {
	v := config.NewViper()
	var cfgFile string

	root := &cobra.Command{
		Use:           "storaged",
		Short:         "Storage channel daemon",
		Long:          `storaged hosts the com.phonecleaner.app/storage channel and answers total disk space queries over HTTP and WebSocket.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := config.ReadFile(v, cfgFile); err != nil {
				return err
			}
			if used := v.ConfigFileUsed(); used != "" {
				log.Debug().Str("config_file", used).Msg("Using config file")
			}
			log.SetLevel(v.GetString("log_level"))
			return nil
		},
	}

	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.phonecleaner.yaml)")
	root.PersistentFlags().String("log-level", "info", "log level: debug, info, warn, error")
	if err := bindFlags(v, root.PersistentFlags(), map[string]string{"log_level": "log-level"}); err != nil {
		panic(err)
	}

	root.AddCommand(
		newServeCommand(v, version),
		newQueryCommand(v, version),
		newVersionCommand(version),
	)
	return root
}

// Execute runs the command tree with os.Args.
func Execute(version string) error {
	return NewRootCommand(version).Execute()
}

// bindFlags binds viper keys to flags of the command being run. Several
// commands share keys, so binding happens when a command runs, not when it is built.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet, keys map[string]string) error {
	for key, name := range keys {
		if err := v.BindPFlag(key, flags.Lookup(name)); err != nil {
			return fmt.Errorf("bind flag --%s: %w", name, err)
		}
	}
	return nil
}
