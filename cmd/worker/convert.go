package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/listing-cleaner/internal/standardizer"
)

var (
	convertInput  string
	convertOutput string
)

var convertCmd = &cobra.Command{
	Use:     "convert-reference",
	Short:   "Chuyển danh mục hành chính dạng phẳng (id, parent_id, unit_level) sang file tham chiếu",
	Example: `  worker convert-reference --input storage/address.json --output data/reference.json`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		items, err := standardizer.ReadFlatFile(convertInput)
		if err != nil {
			return err
		}
		ref, stats := standardizer.ConvertFlat(items)
		if err := ref.WriteFile(convertOutput); err != nil {
			return err
		}
		zap.L().Info("Reference converted",
			zap.String("output", convertOutput),
			zap.Int("provinces", stats.Provinces),
			zap.Int("districts", stats.Districts),
			zap.Int("wards", stats.Wards),
			zap.Int("orphans", stats.Orphans),
			zap.Int("skipped", stats.Skipped))
		return printJSON(cmd.OutOrStdout(), stats)
	},
}

func init() {
	convertCmd.Flags().StringVarP(&convertInput, "input", "i", "", "danh mục phẳng (mảng JSON)")
	convertCmd.Flags().StringVarP(&convertOutput, "output", "o", "", "file tham chiếu đầu ra")
	_ = convertCmd.MarkFlagRequired("input")
	_ = convertCmd.MarkFlagRequired("output")
}
