package main

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Kaczor4444/kompas-seniora/internal/export"
	"github.com/Kaczor4444/kompas-seniora/internal/model"
	"github.com/Kaczor4444/kompas-seniora/internal/store"
)

var mergeInputs []string

var mergeCmd = &cobra.Command{
	Use:   "merge",
	Short: "Merge validated record files into the production dataset",
	Long: `Reads validated record CSVs and upserts them into the facility
store by record id, so re-importing a region replaces its rows instead
of duplicating them. Each invocation is recorded as an import run.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "merge: migrate store")
		}

		run, err := st.CreateImportRun(ctx, strings.Join(mergeInputs, ","))
		if err != nil {
			return eris.Wrap(err, "merge: create import run")
		}

		now := time.Now().UTC()
		var rowsIn int
		var facilities []model.Facility
		for _, path := range mergeInputs {
			f, err := os.Open(path)
			if err != nil {
				return failRun(ctx, st, run.ID, eris.Wrapf(err, "merge: open %s", path))
			}
			records, err := export.ReadRecordsCSV(f)
			f.Close()
			if err != nil {
				return failRun(ctx, st, run.ID, eris.Wrapf(err, "merge: read %s", path))
			}

			rowsIn += len(records)
			for _, r := range records {
				facilities = append(facilities, model.FacilityFromRecord(r, now))
			}
			zap.L().Info("merge: input read", zap.String("path", path), zap.Int("records", len(records)))
		}

		written, err := st.UpsertFacilities(ctx, facilities)
		if err != nil {
			return failRun(ctx, st, run.ID, eris.Wrap(err, "merge: upsert facilities"))
		}

		if err := st.CompleteImportRun(ctx, run.ID, rowsIn, written, model.ImportRunComplete); err != nil {
			return eris.Wrap(err, "merge: complete import run")
		}

		zap.L().Info("merge: complete",
			zap.String("run_id", run.ID),
			zap.Int("records_in", rowsIn),
			zap.Int("facilities_written", written),
		)
		return nil
	},
}

func init() {
	mergeCmd.Flags().StringSliceVar(&mergeInputs, "input", nil, "validated record CSV (repeatable, required)")
	_ = mergeCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(mergeCmd)
}

// openStore builds the configured store backend.
func openStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL)
	case "sqlite", "":
		return store.NewSQLite(cfg.Store.DatabaseURL)
	default:
		return nil, eris.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

// failRun marks the import run failed before surfacing the cause.
func failRun(ctx context.Context, st store.Store, runID string, cause error) error {
	if err := st.CompleteImportRun(ctx, runID, 0, 0, model.ImportRunFailed); err != nil {
		zap.L().Error("merge: mark run failed", zap.String("run_id", runID), zap.Error(err))
	}
	return cause
}
