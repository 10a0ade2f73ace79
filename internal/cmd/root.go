// Package cmd wires the lipidgenesis command line: the web server, the MCP
// stdio server and the offline blend, report, oils and import commands.
package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"lipidgenesis/internal/config"
	applog "lipidgenesis/internal/log"
)

// Dependencies swapped by tests.
var (
	loadConfigFunc       = config.Load
	configureLoggingFunc = applog.Configure
)

type rootOptions struct {
	logLevel  string
	logFormat string
}

// NewRootCmd creates the root command with every subcommand attached.
func NewRootCmd(version string) *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "lipidgenesis",
		Short: "Design and document vegetable-oil blends",
		Long: `LipidGenesis computes the fatty-acid profile of an oil blend, estimates its
environmental footprint, suggests a sensory recipe and exports batch reports.

Run "lipidgenesis serve" for the web dashboard or "lipidgenesis mcp" to expose
the calculators to an agent over stdio.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn or error (overrides LOG_LEVEL)")
	cmd.PersistentFlags().StringVar(&opts.logFormat, "log-format", "", "log format: text or json (overrides LOG_FORMAT)")

	cmd.AddCommand(
		newServeCmd(opts),
		newBlendCmd(opts),
		newReportCmd(opts),
		newOilsCmd(opts),
		newImportCmd(opts),
		newMCPCmd(opts, version),
	)
	return cmd
}

// Execute runs the command line with args and returns the first error.
func Execute(ctx context.Context, version string, args []string) error {
	root := NewRootCmd(version)
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

// setup loads the configuration and installs the logger writing to logOut.
// Flag values override the environment.
func (o *rootOptions) setup(logOut io.Writer) (config.Config, error) {
	cfg, err := loadConfigFunc()
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	if strings.TrimSpace(o.logLevel) != "" {
		cfg.Logging.Level = o.logLevel
	}
	if strings.TrimSpace(o.logFormat) != "" {
		cfg.Logging.Format = o.logFormat
	}

	if err := configureLoggingFunc(applog.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: logOut,
	}); err != nil {
		return config.Config{}, fmt.Errorf("configure logging: %w", err)
	}
	return cfg, nil
}
