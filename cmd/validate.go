package main

import (
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Kaczor4444/kompas-seniora/internal/export"
	"github.com/Kaczor4444/kompas-seniora/internal/validate"
)

var (
	validateInput     string
	validateOutput    string
	validateMin       float64
	validateMax       float64
	validateDeviation float64
	validateTop       int
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Flag anomalous prices in a parsed record file",
	Long: `Reads a previously parsed record CSV, applies the absolute range
check and the per-care-type deviation check, and writes the records back
with their validation status finalized. Flagged records are printed as a
review table.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		applyValidateDefaults(cmd.Flags().Changed)

		f, err := os.Open(validateInput)
		if err != nil {
			return eris.Wrapf(err, "validate: open %s", validateInput)
		}
		records, err := export.ReadRecordsCSV(f)
		f.Close()
		if err != nil {
			return eris.Wrap(err, "validate: read records")
		}

		vcfg := validate.Config{
			AbsoluteMin:       validateMin,
			AbsoluteMax:       validateMax,
			DeviationFraction: validateDeviation,
		}
		validated := validate.Prices(records, vcfg)

		out, err := os.Create(validateOutput)
		if err != nil {
			return eris.Wrapf(err, "validate: create output %s", validateOutput)
		}
		defer out.Close() //nolint:errcheck
		if err := export.WriteRecordsCSV(out, validated); err != nil {
			return err
		}

		anomalies := validate.Anomalies(validated)
		if report := export.AnomalyReport(validated, validateTop); report != "" {
			fmt.Fprint(os.Stderr, report)
		}

		zap.L().Info("validate: complete",
			zap.Int("records", len(validated)),
			zap.Int("anomalies", len(anomalies)),
			zap.String("output", validateOutput),
		)
		return nil
	},
}

func init() {
	validateCmd.Flags().StringVar(&validateInput, "input", "", "parsed record CSV (required)")
	validateCmd.Flags().StringVar(&validateOutput, "output", "validated.csv", "output CSV path")
	validateCmd.Flags().Float64Var(&validateMin, "min", 0, "absolute minimum price")
	validateCmd.Flags().Float64Var(&validateMax, "max", 0, "absolute maximum price")
	validateCmd.Flags().Float64Var(&validateDeviation, "deviation", 0, "deviation fraction from the category mean")
	validateCmd.Flags().IntVar(&validateTop, "top", 0, "max review rows to print (0 = config default)")
	_ = validateCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(validateCmd)
}

// applyValidateDefaults fills threshold flags the user did not set from
// config. changed reports whether a flag was passed explicitly, so an
// explicit zero (disable a bound) is honored rather than overwritten.
func applyValidateDefaults(changed func(name string) bool) {
	if !changed("min") {
		validateMin = cfg.Validate.AbsoluteMin
	}
	if !changed("max") {
		validateMax = cfg.Validate.AbsoluteMax
	}
	if !changed("deviation") {
		validateDeviation = cfg.Validate.DeviationFraction
	}
	if !changed("top") {
		validateTop = cfg.Validate.ReportTop
	}
}
