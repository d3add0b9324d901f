package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/vitalvas/deeplink/deeplink"
	"github.com/vitalvas/deeplink/linkconfig"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

type rootOptions struct {
	configPath string
	logLevel   string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "deeplink",
		Short: "Match and resolve deep links against a route table",
		Long: `deeplink resolves URLs against a YAML route table.

Routes are tried in order. The first route whose template matches the
URL and whose required variables are set claims it, and its target is
rendered with the captured variables.

Examples:
  deeplink match https://example.com/artist/metallica/1
  deeplink routes --config links.yaml
  deeplink serve --addr :8080`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "links.yaml", "Route table file")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(
		matchCmd(opts),
		routesCmd(opts),
		encodeCmd(opts),
		serveCmd(opts),
		versionCmd(),
	)

	return rootCmd
}

// logger returns a text logger writing to the error stream of cmd.
func (o *rootOptions) logger(cmd *cobra.Command) (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(o.logLevel)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", o.logLevel, err)
	}

	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})), nil
}

// table loads the route table and compiles it with the dispatcher logger
// and opts.
func (o *rootOptions) table(cmd *cobra.Command, opts ...deeplink.Option) (*linkconfig.Table, error) {
	logger, err := o.logger(cmd)
	if err != nil {
		return nil, err
	}

	cfg, err := linkconfig.LoadFile(o.configPath)
	if err != nil {
		return nil, err
	}

	return cfg.Table(append([]deeplink.Option{deeplink.WithLogger(logger)}, opts...)...)
}
