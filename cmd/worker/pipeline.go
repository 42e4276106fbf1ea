package main

import (
	"encoding/json"
	"io"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/listing-cleaner/app/config"
	"github.com/listing-cleaner/app/services"
	"github.com/listing-cleaner/internal/bootstrap"
)

var (
	inputPath  string
	outputPath string
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Làm sạch tin đăng và ghi bảng thuộc tính",
	Example: `  worker clean --input listings.json --output cleaned.csv
  worker clean --input listings.xlsx --output cleaned.xlsx --workers 8`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runClean(cmd, false)
	},
}

var featureCmd = &cobra.Command{
	Use:     "feature",
	Short:   "Tính đặc trưng trên bảng đã làm sạch",
	Example: `  worker feature --input cleaned.csv --output final.xlsx`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		// giai đoạn feature không cần dữ liệu tham chiếu
		runner, err := services.NewRunner(config.C, nil, true, zap.L())
		if err != nil {
			return err
		}
		return runner.FeatureFile(ctx, inputPath, outputPath)
	},
}

var runCmd = &cobra.Command{
	Use:     "run",
	Short:   "Làm sạch và tính đặc trưng trong một lượt",
	Example: `  worker run --input listings.jsonl --output final.csv`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runClean(cmd, true)
	},
}

func init() {
	for _, c := range []*cobra.Command{cleanCmd, featureCmd, runCmd} {
		c.Flags().StringVarP(&inputPath, "input", "i", "", "file đầu vào (.json, .jsonl, .csv, .xlsx)")
		c.Flags().StringVarP(&outputPath, "output", "o", "", "file kết quả (.csv, .xlsx)")
		_ = c.MarkFlagRequired("input")
		_ = c.MarkFlagRequired("output")
	}
}

func runClean(cmd *cobra.Command, withFeatures bool) error {
	ctx := cmd.Context()
	logger := zap.L()

	deps, err := bootstrap.Build(ctx, config.C, bootstrap.Options{}, logger)
	if err != nil {
		return err
	}
	defer deps.Close(ctx)

	runner, err := services.NewRunner(config.C, deps.Standardizer, withFeatures, logger)
	if err != nil {
		return err
	}
	sum, err := runner.CleanFile(ctx, inputPath, outputPath)
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), sum)
}

func printJSON(w io.Writer, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return eris.Wrap(err, "encode summary")
	}
	_, err = w.Write(append(b, '\n'))
	return err
}

