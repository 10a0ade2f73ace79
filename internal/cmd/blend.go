package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"lipidgenesis/internal/formulation"
	applog "lipidgenesis/internal/log"
	"lipidgenesis/internal/refdata"
	"lipidgenesis/internal/report"
	"lipidgenesis/internal/sensory"
)

var nowFunc = time.Now

// blendFlags are shared by the blend and report commands.
type blendFlags struct {
	oils     []string
	line     string
	occasion string
	from     string
}

func (f *blendFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringArrayVar(&f.oils, "oil", nil, `oil share as "Name=percent"; repeat for every oil`)
	cmd.Flags().StringVar(&f.line, "line", "", "sensory line, e.g. Vitalis")
	cmd.Flags().StringVar(&f.occasion, "occasion", "", "usage occasion, e.g. Bath")
	cmd.Flags().StringVar(&f.from, "from", "", "start from the blend stored in an exported PDF report")
}

// input builds the formulation input from the flags. Oils given with --oil
// are added on top of a blend read with --from.
func (f *blendFlags) input(ctx context.Context, cat *refdata.Catalog) (formulation.Input, error) {
	in := formulation.Input{}
	if f.from != "" {
		imported, err := readReportFile(f.from)
		if err != nil {
			return formulation.Input{}, err
		}
		in = imported.Input()
		applog.Debug(ctx, "blend restored from report", "file", f.from, "oils", len(in.Percentages))
	}

	shares, err := formulation.ParseShares(f.oils)
	if err != nil {
		return formulation.Input{}, err
	}
	if in.Percentages == nil {
		in.Percentages = shares
	} else {
		for name, value := range shares {
			in.Percentages[name] = value
		}
	}
	if f.line != "" {
		in.Line = f.line
	}
	if f.occasion != "" {
		in.Occasion = f.occasion
	}

	library := cat.Sensory()
	if in.Occasion != "" && !library.ValidOccasion(in.Occasion) {
		return formulation.Input{}, fmt.Errorf("unknown occasion %q; expected one of %s", in.Occasion, strings.Join(library.Occasions(), ", "))
	}
	if in.Line != "" {
		if _, ok := library.Recipe(in.Line, in.Occasion); !ok {
			return formulation.Input{}, fmt.Errorf("unknown sensory line %q; expected one of %s", in.Line, strings.Join(library.Lines(), ", "))
		}
	}
	for name := range in.Percentages {
		if _, ok := cat.Canonical(name); !ok {
			applog.Warn(ctx, "oil not in catalog; environmental defaults apply", "oil", name)
		}
	}
	return in, nil
}

func readReportFile(path string) (report.ImportedBlend, error) {
	file, err := os.Open(path)
	if err != nil {
		return report.ImportedBlend{}, err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return report.ImportedBlend{}, err
	}
	imported, err := report.ReadPDF(file, info.Size())
	if err != nil {
		return report.ImportedBlend{}, fmt.Errorf("read %s: %w", path, err)
	}
	return imported, nil
}

// blendOutput is the JSON shape of the blend command, matching the API
// responses.
type blendOutput struct {
	Profile formulation.ProfileSummary `json:"profile"`
	ESG     formulation.ESGSummary     `json:"esg"`
	Totals  formulation.TotalsSummary  `json:"totals"`
	Sensory *sensory.Recipe            `json:"sensory,omitempty"`
	Accords []sensory.Accord           `json:"accords,omitempty"`
}

func newBlendCmd(opts *rootOptions) *cobra.Command {
	flags := &blendFlags{}
	var format string

	cmd := &cobra.Command{
		Use:   "blend",
		Short: "Evaluate a blend and print its profile",
		Example: `  lipidgenesis blend --oil "Palm Oil=60" --oil "Palm Kernel Oil=40"
  lipidgenesis blend --oil "Palma=100" --line Vitalis --occasion Hair --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg, err := opts.setup(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			cat, err := loadCatalog(ctx, cfg)
			if err != nil {
				return err
			}
			in, err := flags.input(ctx, cat)
			if err != nil {
				return err
			}
			eval := formulation.Evaluate(cat, in)
			return writeBlend(ctx, cmd.OutOrStdout(), format, eval, cfg.Report.Locale)
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVar(&format, "format", "table", "output format: table, json or csv")
	return cmd
}

func writeBlend(ctx context.Context, w io.Writer, format string, eval formulation.Evaluation, locale string) error {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json":
		out := blendOutput{
			Profile: eval.ProfileSummary(),
			ESG:     eval.ESGSummary(),
			Totals:  eval.TotalsSummary(),
			Accords: eval.Accords,
		}
		if eval.HasRecipe {
			recipe := eval.Recipe
			out.Sensory = &recipe
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	case "table", "csv":
		renderer, err := report.ForFormat(format, report.Options{Locale: locale})
		if err != nil {
			return err
		}
		return renderer.Render(ctx, w, report.Build(eval, "", nowFunc()))
	default:
		return fmt.Errorf("unknown format %q; expected table, json or csv", format)
	}
}
