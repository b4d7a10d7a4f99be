package main

import (
	"context"
	"fmt"
	"os"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/soaringjerry/stylus/internal/api"
	"github.com/soaringjerry/stylus/internal/services"
)

var importCmd = &cobra.Command{
	Use:   "import <file>...",
	Short: "Load exported preference files into the configured store",
	Long: `Each file must hold one survey response as written by the export
endpoint. Ids and completion times in the file are ignored; the store assigns
fresh ones. Sessions that already exist are skipped.

Only useful with STYLUS_STORE=sqlite, since the memory store ends with the
process.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore(cfg, logger)
		if err != nil {
			return err
		}
		defer func() {
			if cerr := store.Close(); cerr != nil {
				logger.Warn("failed to close store", zap.Error(cerr))
			}
		}()

		res, err := importFiles(cmd.Context(), store, args, logger)
		fmt.Fprintf(cmd.OutOrStdout(), "imported %d, skipped %d, failed %d\n", res.Created, res.Skipped, res.Failed)
		return err
	},
}

type importResult struct {
	Created int
	Skipped int
	Failed  int
}

// importFiles creates one record per file. A bad file does not stop the run;
// every failure is collected into the returned error.
func importFiles(ctx context.Context, store api.Store, paths []string, log *zap.Logger) (importResult, error) {
	var (
		res    importResult
		result *multierror.Error
	)
	surveys := services.NewSurveyService(store)
	for _, path := range paths {
		body, err := os.ReadFile(path)
		if err != nil {
			res.Failed++
			result = multierror.Append(result, fmt.Errorf("%s: %w", path, err))
			continue
		}
		in, err := services.ValidateSurveyCreate(body)
		if err != nil {
			res.Failed++
			result = multierror.Append(result, fmt.Errorf("%s: %w", path, describeImportError(err)))
			continue
		}
		rec, err := surveys.Create(ctx, in)
		if se, ok := services.AsServiceError(err); ok && se.Code == services.ErrorConflict {
			res.Skipped++
			log.Info("session already exists, skipping", zap.String("file", path), zap.String("session_id", in.SessionID))
			continue
		}
		if err != nil {
			res.Failed++
			result = multierror.Append(result, fmt.Errorf("%s: %w", path, err))
			continue
		}
		res.Created++
		log.Info("imported survey response", zap.String("file", path), zap.String("session_id", rec.SessionID), zap.Int64("id", rec.ID))
	}
	return res, result.ErrorOrNil()
}

// describeImportError spells out validation issues, which ServiceError.Error
// alone reduces to "Validation error".
func describeImportError(err error) error {
	se, ok := services.AsServiceError(err)
	if !ok || len(se.Issues) == 0 {
		return err
	}
	var result *multierror.Error
	for _, is := range se.Issues {
		result = multierror.Append(result, fmt.Errorf("%v: %s", is.Path, is.Message))
	}
	return fmt.Errorf("%s: %w", se.Error(), result)
}
