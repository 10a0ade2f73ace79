package cmd

import (
	"github.com/spf13/cobra"

	"lipidgenesis/internal/mcptools"
)

func newMCPCmd(opts *rootOptions, version string) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the blend calculators as MCP tools over stdio",
		Long: `Serve the calculators to an MCP client over stdin and stdout.

Tools: list_oils, compute_blend_profile, compute_esg_profile,
compute_esg_totals and get_sensory_recipe. Logs go to stderr so they never
interfere with the protocol stream.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.setup(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			cat, err := loadCatalog(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			return mcptools.NewServer(cat, version).ServeStdio()
		},
	}
}
