package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"lipidgenesis/internal/formulation"
	applog "lipidgenesis/internal/log"
	"lipidgenesis/internal/report"
)

func newReportCmd(opts *rootOptions) *cobra.Command {
	flags := &blendFlags{}
	var (
		format     string
		out        string
		title      string
		noKeywords bool
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Export a batch report for a blend",
		Example: `  lipidgenesis report --oil "Palm Oil=50" --oil "Palm Stearin=50" --line Ardor --out batch.pdf
  lipidgenesis report --from batch.pdf --format csv`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			format = strings.ToLower(strings.TrimSpace(format))
			if format == "pdf" && out == "" {
				return errors.New("--out is required for pdf reports")
			}

			cfg, err := opts.setup(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			renderer, err := report.ForFormat(format, report.Options{Locale: cfg.Report.Locale, OmitKeywords: noKeywords})
			if err != nil {
				return fmt.Errorf("%w; expected one of %s", err, strings.Join(report.Formats(), ", "))
			}
			cat, err := loadCatalog(ctx, cfg)
			if err != nil {
				return err
			}
			in, err := flags.input(ctx, cat)
			if err != nil {
				return err
			}

			if title == "" {
				title = cfg.Report.Title
			}
			doc := report.Build(formulation.Evaluate(cat, in), title, nowFunc())

			if out == "" {
				return renderer.Render(ctx, cmd.OutOrStdout(), doc)
			}
			var buf bytes.Buffer
			if err := renderer.Render(ctx, &buf, doc); err != nil {
				return err
			}
			if err := os.WriteFile(out, buf.Bytes(), 0o644); err != nil {
				return fmt.Errorf("write report: %w", err)
			}
			applog.Info(ctx, "report written", "file", out, "format", format, "fingerprint", doc.Fingerprint)
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d bytes)\n", out, buf.Len())
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVar(&format, "format", "pdf", "report format: "+strings.Join(report.Formats(), ", "))
	cmd.Flags().StringVarP(&out, "out", "o", "", "write the report to this file instead of stdout")
	cmd.Flags().StringVar(&title, "title", "", "report title (defaults to REPORT_TITLE)")
	cmd.Flags().BoolVar(&noKeywords, "no-keywords", false, "leave the blend out of the pdf metadata")
	return cmd
}
