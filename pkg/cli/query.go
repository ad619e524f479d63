package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"phonecleaner/pkg/app"
	"phonecleaner/pkg/channel"
	"phonecleaner/pkg/client"
	"phonecleaner/pkg/config"
	"phonecleaner/pkg/storage"
)

func newQueryCommand(v *viper.Viper, version string) *cobra.Command {
	var (
		remote bool
		human  bool
		method string
	)

	cmd := &cobra.Command{
		Use:   "query",
		Short: "Call a storage channel method and print the result",
		Long: `query invokes a method on the storage channel, in-process by default or on a
running storaged with --remote. Any method other than getTotalDiskSpace fails with
"method not implemented".`,
		Args: cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			return bindFlags(v, cmd.Flags(), map[string]string{
				"client.url": "url",
				"home_dir":   "home-dir",
			})
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(v)
			if err != nil {
				return err
			}

			call := channel.MethodCall{Method: method}

			var raw json.RawMessage
			if remote {
				raw, err = queryRemote(cmd.Context(), cfg, call)
			} else {
				raw, err = queryLocal(cmd.Context(), cfg, version, call)
			}
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), formatResult(raw, human))
			return nil
		},
	}

	cmd.Flags().BoolVar(&remote, "remote", false, "query a running server at --url instead of in-process")
	cmd.Flags().BoolVar(&human, "human", false, "print byte counts in human-readable form")
	cmd.Flags().StringVar(&method, "method", storage.MethodGetTotalDiskSpace, "method name to invoke")
	cmd.Flags().String("url", "http://localhost:8080", "base URL of the server for --remote")
	cmd.Flags().String("home-dir", "", "directory whose volume is reported in-process")

	return cmd
}

func queryLocal(ctx context.Context, cfg *config.Config, version string, call channel.MethodCall) (json.RawMessage, error) {
	application := app.New(cfg, version)
	application.Initialize()

	result, err := application.Messenger().Invoke(ctx, storage.ChannelName, call)
	if err != nil {
		return nil, err
	}
	return json.Marshal(result)
}

func queryRemote(ctx context.Context, cfg *config.Config, call channel.MethodCall) (json.RawMessage, error) {
	c := client.New(cfg.Client.URL, client.Options{
		RetryMax:     cfg.Client.RetryMax,
		RetryWaitMin: cfg.Client.RetryWaitMin,
		RetryWaitMax: cfg.Client.RetryWaitMax,
		Timeout:      cfg.Client.Timeout,
	})
	return c.Invoke(ctx, storage.ChannelName, call)
}

// formatResult prints integers as plain bytes or, with human, as SI units.
func formatResult(raw json.RawMessage, human bool) string {
	var n int64
	if err := json.Unmarshal(raw, &n); err != nil {
		return string(raw)
	}
	if human && n >= 0 {
		return humanize.Bytes(uint64(n))
	}
	return fmt.Sprintf("%d", n)
}
