package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"lipidgenesis/internal/formulation"
)

var (
	oilsHeaderStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	oilsCellStyle   = lipgloss.NewStyle().Padding(0, 1)
	oilsNumberStyle = oilsCellStyle.Align(lipgloss.Right)
)

func newOilsCmd(opts *rootOptions) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "oils",
		Short: "List the oils of the reference catalogue",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.setup(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			cat, err := loadCatalog(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			return writeOils(cmd.OutOrStdout(), format, formulation.OilSummaries(cat))
		},
	}
	cmd.Flags().StringVar(&format, "format", "table", "output format: table or json")
	return cmd
}

func writeOils(w io.Writer, format string, oils []formulation.OilSummary) error {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(oils)
	case "table":
		_, err := io.WriteString(w, oilsTable(oils)+"\n")
		return err
	default:
		return fmt.Errorf("unknown format %q; expected table or json", format)
	}
}

func oilsTable(oils []formulation.OilSummary) string {
	headers := []string{"Oil", "Aliases", "Acids", "Origin", "Certification", "Impact", "CO2/kg", "Water L/kg"}
	rows := make([][]string, 0, len(oils))
	for _, oil := range oils {
		row := []string{oil.Name, strings.Join(oil.Aliases, ", "), strconv.Itoa(len(oil.Profile)), "-", "-", "-", "-", "-"}
		if oil.Factor != nil {
			row[3] = oil.Factor.Origin
			row[4] = oil.Factor.Certification
			row[5] = strconv.FormatFloat(oil.Factor.ImpactCoefficient, 'f', 2, 64)
			if fp := oil.Factor.Footprint; fp != nil {
				row[6] = strconv.FormatFloat(fp.CO2PerKg, 'f', 2, 64)
				row[7] = strconv.FormatFloat(fp.WaterLitresPerKg, 'f', 0, 64)
			}
		}
		rows = append(rows, row)
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("240"))).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return oilsHeaderStyle
			case col == 2 || col >= 5:
				return oilsNumberStyle
			default:
				return oilsCellStyle
			}
		}).
		String()
}
