package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/listing-cleaner/app/config"
	"github.com/listing-cleaner/app/services"
	"github.com/listing-cleaner/internal/bootstrap"
)

var (
	seedMongo bool
	seedMeili bool
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Đẩy dữ liệu hành chính tham chiếu lên MongoDB và/hoặc Meilisearch",
	Example: `  worker seed --mongo --meili
  worker seed --meili --config config/cleaner.yaml`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if !seedMongo && !seedMeili {
			return eris.New("seed: chọn ít nhất một trong --mongo, --meili")
		}
		ctx := cmd.Context()
		logger := zap.L()

		deps, err := bootstrap.Build(ctx, config.C, bootstrap.Options{Mongo: seedMongo, Meili: seedMeili}, logger)
		if err != nil {
			return err
		}
		defer deps.Close(ctx)

		refs := services.NewReferenceService(deps.Standardizer, deps.Index, deps.Mongo, logger)
		res, err := refs.Seed(ctx, seedMongo, seedMeili)
		if err != nil {
			return eris.Wrap(err, "seed")
		}
		logger.Info("Seed finished",
			zap.Int("mongo_units", res.MongoUnits),
			zap.Int("index_documents", res.IndexDocuments),
			zap.Int64("processing_time_ms", res.ProcessingTimeMs))
		return printJSON(cmd.OutOrStdout(), res)
	},
}

func init() {
	seedCmd.Flags().BoolVar(&seedMongo, "mongo", false, "ghi vào collection admin_units")
	seedCmd.Flags().BoolVar(&seedMeili, "meili", false, "nạp lại index Meilisearch")
}
