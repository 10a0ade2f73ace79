package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"lipidgenesis/internal/importer"
)

var runImportFunc = importer.Run

func newImportCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Load oil reference data from a CSV or Parquet file into the catalogue database",
		Long: `Import reads one row per oil and fatty acid (columns oil, aliases, acid, share,
origin, certification, impact, co2, water) and upserts the
oils into the database named by DATABASE_URL. An empty database is seeded with
the built-in catalogue first.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := opts.setup(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			database, err := openDatabase(ctx, cfg.Database)
			if err != nil {
				return err
			}
			if database == nil {
				return errNoDatabase
			}
			if _, err := catalogFromDatabase(ctx, database, cfg.Catalog); err != nil {
				return err
			}

			summary, err := runImportFunc(ctx, database, args[0])
			if err != nil {
				return fmt.Errorf("import %s: %w", args[0], err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d oils from %d rows (%d skipped)\n", summary.Oils, summary.Rows, summary.Skipped)
			return nil
		},
	}
}
