package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/listing-cleaner/app/config"
	"github.com/listing-cleaner/internal/bootstrap"
)

var (
	configPath string
	workers    int
)

var rootCmd = &cobra.Command{
	Use:   "worker",
	Short: "Làm sạch tin đăng bất động sản theo lô",
	Long: `Đọc tin đăng thô (JSON, JSONL, CSV, XLSX), trích xuất thuộc tính, chuẩn hóa địa chỉ
và ghi bảng kết quả. Luồng hai bước: clean rồi feature; hoặc run để chạy cả hai.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if _, err := bootstrap.Init(configPath); err != nil {
			return eris.Wrap(err, "init")
		}
		if workers > 0 {
			config.C.Workers = workers
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, _ []string) {
		_ = zap.L().Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "file cấu hình pipeline (mặc định app.cleaner_config)")
	rootCmd.PersistentFlags().IntVar(&workers, "workers", 0, "số worker song song (mặc định theo cấu hình hoặc số CPU)")
	rootCmd.AddCommand(cleanCmd, featureCmd, runCmd, seedCmd, convertCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		zap.L().Error("worker failed", zap.Error(err))
		os.Exit(1)
	}
}
