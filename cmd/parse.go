package main

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Kaczor4444/kompas-seniora/internal/export"
	"github.com/Kaczor4444/kompas-seniora/internal/fetcher"
	"github.com/Kaczor4444/kompas-seniora/internal/model"
	"github.com/Kaczor4444/kompas-seniora/internal/parser"
	"github.com/Kaczor4444/kompas-seniora/internal/validate"
)

var (
	parseInputs    []string
	parseYear      int
	parseSourceURL string
	parseOutput    string
	parseSheet     int
	parseSkipRows  int
	parseDelimiter string
	parseValidate  bool
	parseDryRun    bool
)

var parseCmd = &cobra.Command{
	Use:   "parse",
	Short: "Recover cost records from extracted raw tables",
	Long: `Reads raw table exports (XLSX or CSV), recovers structured cost
records via the price-anchored column heuristic, and writes them as
semicolon-delimited CSV.

Examples:
  # Parse one county resolution export
  kompas parse --input malopolska_2025.xlsx --year 2025 --source-url http://bip.malopolska.pl/... --output cleaned.csv

  # Parse several exports and validate in the same pass
  kompas parse --input a.xlsx --input b.csv --year 2025 --validate --output cleaned.csv

  # Inspect recovered records without writing anything
  kompas parse --input a.xlsx --year 2025 --dry-run`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		// Read all inputs, bounded concurrency, order preserved by index.
		rowsPerInput := make([][]model.RawRow, len(parseInputs))
		g, _ := errgroup.WithContext(ctx)
		g.SetLimit(cfg.Parse.Concurrency)

		var mu sync.Mutex
		for i, path := range parseInputs {
			g.Go(func() error {
				rows, err := readRawTable(ctx, path)
				if err != nil {
					return err
				}
				mu.Lock()
				rowsPerInput[i] = rows
				mu.Unlock()
				zap.L().Info("parse: input read", zap.String("path", path), zap.Int("rows", len(rows)))
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return eris.Wrap(err, "parse: read inputs")
		}

		var rows []model.RawRow
		for _, r := range rowsPerInput {
			rows = append(rows, r...)
		}
		if len(rows) == 0 {
			return eris.New("parse: no rows extracted from input, nothing to export")
		}

		recovery := parser.NewColumnRecovery(cfg.Parse.HeaderKeywords, cfg.Parse.MinFilledCells)
		records, stats := parser.Transform(rows, parseYear, parseSourceURL, recovery)

		if parseValidate {
			vcfg := validate.Config{
				AbsoluteMin:       cfg.Validate.AbsoluteMin,
				AbsoluteMax:       cfg.Validate.AbsoluteMax,
				DeviationFraction: cfg.Validate.DeviationFraction,
			}
			records = validate.Prices(records, vcfg)
		}

		if parseDryRun {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(records)
		}

		if err := writeRecords(parseOutput, records); err != nil {
			return err
		}

		zap.L().Info("parse: complete",
			zap.Int("rows_in", stats.RowsIn),
			zap.Int("records_out", stats.RecordsOut),
			zap.String("output", parseOutput),
		)
		return nil
	},
}

func init() {
	parseCmd.Flags().StringSliceVar(&parseInputs, "input", nil, "raw table file or URL, .xlsx or .csv (repeatable, required)")
	parseCmd.Flags().IntVar(&parseYear, "year", 0, "data vintage year (required)")
	parseCmd.Flags().StringVar(&parseSourceURL, "source-url", "", "provenance URL of the source document")
	parseCmd.Flags().StringVar(&parseOutput, "output", "cleaned.csv", "output CSV path")
	parseCmd.Flags().IntVar(&parseSheet, "sheet", 0, "XLSX sheet index")
	parseCmd.Flags().IntVar(&parseSkipRows, "skip-rows", 0, "leading rows to skip per input")
	parseCmd.Flags().StringVar(&parseDelimiter, "delimiter", ",", "CSV input delimiter")
	parseCmd.Flags().BoolVar(&parseValidate, "validate", false, "run anomaly validation before writing")
	parseCmd.Flags().BoolVar(&parseDryRun, "dry-run", false, "print recovered records as JSON, write nothing")
	_ = parseCmd.MarkFlagRequired("input")
	_ = parseCmd.MarkFlagRequired("year")
	rootCmd.AddCommand(parseCmd)
}

// readRawTable dispatches on file extension: .xlsx goes through the
// workbook reader, everything else is treated as CSV. http(s) inputs
// are downloaded first.
func readRawTable(ctx context.Context, path string) ([]model.RawRow, error) {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		local, err := fetcher.Download(ctx, path, os.TempDir(), fetcher.DefaultDownloadOptions())
		if err != nil {
			return nil, err
		}
		defer os.Remove(local) //nolint:errcheck
		path = local
	}

	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return fetcher.ReadXLSX(path, fetcher.XLSXOptions{
			SheetIndex: parseSheet,
			SkipRows:   parseSkipRows,
		})
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "parse: open %s", path)
	}
	defer f.Close()

	delim := ','
	if parseDelimiter != "" {
		delim = rune(parseDelimiter[0])
	}
	return fetcher.ReadCSV(f, fetcher.CSVOptions{Delimiter: delim, SkipRows: parseSkipRows})
}

// writeRecords writes the record CSV to path, or stdout when path is "-".
func writeRecords(path string, records []model.CostRecord) error {
	if path == "-" {
		return export.WriteRecordsCSV(os.Stdout, records)
	}

	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "parse: create output %s", path)
	}
	defer f.Close() //nolint:errcheck
	return export.WriteRecordsCSV(f, records)
}
