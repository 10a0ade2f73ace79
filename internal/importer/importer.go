// Package importer loads oil reference data from CSV or Parquet files into the
// catalogue store. Files are read through DuckDB so both formats share one
// code path.
package importer

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	_ "github.com/marcboeker/go-duckdb/v2"
	"gorm.io/gorm"

	"lipidgenesis/internal/blend"
	"lipidgenesis/internal/esg"
	applog "lipidgenesis/internal/log"
	"lipidgenesis/internal/refdata"
)

var (
	// ErrUnsupportedFormat is returned for files that are neither CSV nor Parquet.
	ErrUnsupportedFormat = errors.New("importer: unsupported file format")
	// ErrMissingColumn is returned when the oil column is absent.
	ErrMissingColumn = errors.New("importer: missing required column")

	bracketPattern  = regexp.MustCompile(`\[[^\]]*\]`)
	numberPattern   = regexp.MustCompile(`[-+]?\d*[.,]?\d+`)
	cleanWhitespace = regexp.MustCompile(`\s+`)
)

// Summary reports what an import changed.
type Summary struct {
	Oils    int
	Rows    int
	Skipped int
}

// Row is one normalised line of an import file. Optional numeric columns
// are nil when blank.
type Row struct {
	Oil           string
	Aliases       []string
	Acid          string
	Share         *float64
	Origin        string
	Certification string
	Impact        *float64
	CO2           *float64
	Water         *float64
}

// Run reads path and upserts one oil per distinct name, each in its own
// transaction. Names are resolved against the aliases already stored.
func Run(ctx context.Context, db *gorm.DB, path string) (Summary, error) {
	if db == nil {
		return Summary{}, fmt.Errorf("database handle is nil")
	}

	rows, skipped, err := ReadFile(ctx, path)
	if err != nil {
		return Summary{}, err
	}

	current, err := refdata.FromDB(ctx, db)
	if err != nil {
		return Summary{}, fmt.Errorf("load current catalog: %w", err)
	}

	entries, err := Group(rows, current.Canonical)
	if err != nil {
		return Summary{}, err
	}

	summary := Summary{Rows: len(rows), Skipped: skipped}
	for _, entry := range entries {
		if err := refdata.SaveOil(ctx, db, entry); err != nil {
			return summary, fmt.Errorf("oil %q: %w", entry.Name, err)
		}
		summary.Oils++
	}

	applog.Info(ctx, "catalog import finished",
		"file", filepath.Base(path),
		"oils", summary.Oils,
		"rows", summary.Rows,
		"skipped", summary.Skipped,
	)
	return summary, nil
}

// ReadFile loads and normalises every row of a CSV or Parquet file. Rows
// without an oil name are skipped and counted.
func ReadFile(ctx context.Context, path string) ([]Row, int, error) {
	if strings.TrimSpace(path) == "" {
		return nil, 0, fmt.Errorf("import path must not be empty")
	}
	if _, err := os.Stat(path); err != nil {
		return nil, 0, fmt.Errorf("locate import file: %w", err)
	}

	var query string
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".tsv", ".txt":
		query = `SELECT * FROM read_csv_auto(?, header = true, all_varchar = true)`
	case ".parquet", ".pq":
		query = `SELECT * FROM read_parquet(?)`
	default:
		return nil, 0, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}

	duck, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, 0, fmt.Errorf("open duckdb: %w", err)
	}
	defer duck.Close()

	result, err := duck.QueryContext(ctx, query, path)
	if err != nil {
		return nil, 0, fmt.Errorf("query %s: %w", filepath.Base(path), err)
	}
	defer result.Close()

	columns, err := result.Columns()
	if err != nil {
		return nil, 0, fmt.Errorf("read columns: %w", err)
	}
	index := make(map[string]int, len(columns))
	for i, column := range columns {
		index[strings.ToLower(strings.TrimSpace(column))] = i
	}
	if _, ok := index["oil"]; !ok {
		return nil, 0, fmt.Errorf("%w: oil", ErrMissingColumn)
	}

	var (
		rows    []Row
		skipped int
		line    = 1
	)
	values := make([]any, len(columns))
	pointers := make([]any, len(columns))
	for i := range values {
		pointers[i] = &values[i]
	}

	for result.Next() {
		line++
		if err := result.Scan(pointers...); err != nil {
			return nil, 0, fmt.Errorf("scan row %d: %w", line, err)
		}
		record := make(map[string]string, len(columns))
		for name, i := range index {
			record[name] = stringify(values[i])
		}
		row, ok, err := buildRow(record)
		if err != nil {
			return nil, 0, fmt.Errorf("row %d: %w", line, err)
		}
		if !ok {
			skipped++
			continue
		}
		rows = append(rows, row)
	}
	if err := result.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate rows: %w", err)
	}
	return rows, skipped, nil
}

func buildRow(record map[string]string) (Row, bool, error) {
	row := Row{
		Oil:           normalizeText(record["oil"]),
		Aliases:       splitAliases(record["aliases"] + "," + record["alias"]),
		Origin:        normalizeText(record["origin"]),
		Certification: normalizeText(record["certification"]),
	}
	if row.Oil == "" {
		return Row{}, false, nil
	}

	if acid := normalizeValue(record["acid"]); acid != "" {
		code, err := blend.ParseAcidCode(acid)
		if err != nil {
			return Row{}, false, err
		}
		row.Acid = code.String()

		share, ok, err := parseNumber(record["share"])
		if err != nil || !ok {
			return Row{}, false, fmt.Errorf("acid %s of %q needs a numeric share", row.Acid, row.Oil)
		}
		if share < 0 || share > 100 {
			return Row{}, false, fmt.Errorf("acid %s of %q: share %v outside [0,100]", row.Acid, row.Oil, share)
		}
		row.Share = &share
	}

	for column, target := range map[string]**float64{"impact": &row.Impact, "co2": &row.CO2, "water": &row.Water} {
		value, ok, err := parseNumber(record[column])
		if err != nil {
			return Row{}, false, fmt.Errorf("%s of %q: %w", column, row.Oil, err)
		}
		if !ok {
			continue
		}
		if value < 0 {
			return Row{}, false, fmt.Errorf("%s of %q must not be negative", column, row.Oil)
		}
		v := value
		*target = &v
	}
	return row, true, nil
}

// Group merges rows into one catalogue entry per oil. Names already known to
// the catalogue (directly or by alias) are rewritten to their canonical form.
// An oil gets a factor record when any of its rows carries an impact, and a
// footprint only when both CO2 and water are present.
func Group(rows []Row, canonical func(string) (string, bool)) ([]refdata.OilEntry, error) {
	entries := make(map[string]*refdata.OilEntry)
	keys := make(map[string]string)

	for _, row := range rows {
		name := row.Oil
		if canonical != nil {
			if resolved, ok := canonical(name); ok {
				name = resolved
			}
		}
		key := strings.ToLower(name)
		if existing, ok := keys[key]; ok {
			name = existing
		} else {
			keys[key] = name
		}

		entry, ok := entries[name]
		if !ok {
			entry = &refdata.OilEntry{Name: name, Profile: make(blend.Profile)}
			entries[name] = entry
		}
		if !strings.EqualFold(row.Oil, name) {
			entry.Aliases = appendUnique(entry.Aliases, row.Oil)
		}
		for _, alias := range row.Aliases {
			if !strings.EqualFold(alias, name) {
				entry.Aliases = appendUnique(entry.Aliases, alias)
			}
		}

		if row.Share != nil {
			if previous, dup := entry.Profile[row.Acid]; dup && previous != *row.Share {
				return nil, fmt.Errorf("oil %q lists %s twice with different shares", name, row.Acid)
			}
			entry.Profile[row.Acid] = *row.Share
		}

		if row.Impact != nil {
			entry.HasFactor = true
			entry.Factor.ImpactCoefficient = *row.Impact
		}
		if row.Origin != "" {
			entry.Factor.Origin = row.Origin
		}
		if row.Certification != "" {
			entry.Factor.Certification = row.Certification
		}
		if row.CO2 != nil && row.Water != nil {
			entry.Factor.Footprint = &esg.Footprint{CO2PerKg: *row.CO2, WaterLitresPerKg: *row.Water}
		}
	}

	names := make([]string, 0, len(entries))
	for name := range entries {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]refdata.OilEntry, 0, len(names))
	for _, name := range names {
		entry := entries[name]
		if !entry.HasFactor && entry.Factor.Footprint != nil {
			return nil, fmt.Errorf("oil %q has a footprint but no impact coefficient", name)
		}
		if entry.HasFactor {
			defaults := esg.StandardDefaults(name)
			if entry.Factor.Origin == "" {
				entry.Factor.Origin = defaults.Origin
			}
			if entry.Factor.Certification == "" {
				entry.Factor.Certification = defaults.Certification
			}
		}
		out = append(out, *entry)
	}
	return out, nil
}

func stringify(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case interface{ Float64() float64 }:
		return strconv.FormatFloat(v.Float64(), 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

func normalizeValue(value string) string {
	value = strings.TrimSpace(value)
	if value == "" || strings.EqualFold(value, "N/A") {
		return ""
	}
	return value
}

func normalizeText(value string) string {
	value = normalizeValue(value)
	if value == "" {
		return value
	}
	value = cleanWhitespace.ReplaceAllString(value, " ")
	return strings.TrimSpace(value)
}

// parseNumber reads the first number in value, accepting a decimal comma.
// The boolean is false for blank values.
func parseNumber(value string) (float64, bool, error) {
	value = normalizeValue(value)
	if value == "" {
		return 0, false, nil
	}
	match := numberPattern.FindString(value)
	if match == "" {
		return 0, false, fmt.Errorf("%q is not a number", value)
	}
	parsed, err := strconv.ParseFloat(strings.Replace(match, ",", ".", 1), 64)
	if err != nil {
		return 0, false, err
	}
	return parsed, true, nil
}

func splitAliases(value string) []string {
	value = strings.ReplaceAll(value, ";", ",")
	parts := strings.Split(value, ",")
	aliases := make([]string, 0, len(parts))
	for _, part := range parts {
		clean := normalizeText(bracketPattern.ReplaceAllString(part, ""))
		if clean == "" {
			continue
		}
		aliases = appendUnique(aliases, clean)
	}
	return aliases
}

func appendUnique(values []string, value string) []string {
	for _, existing := range values {
		if strings.EqualFold(existing, value) {
			return values
		}
	}
	return append(values, value)
}
