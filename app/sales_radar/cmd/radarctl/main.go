// radarctl 命令行工具：在终端直接查询 D365 销售数据和销售助手
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/spf13/cobra"

	"github.com/iWorld-y/sales_radar/app/sales_radar/internal/data"
	"github.com/iWorld-y/sales_radar/app/sales_radar/pkg/config"
	"github.com/iWorld-y/sales_radar/app/sales_radar/pkg/llm"
	"github.com/iWorld-y/sales_radar/app/sales_radar/pkg/logger"
	"github.com/iWorld-y/sales_radar/app/sales_radar/pkg/odata"
)

var (
	flagconf string
	raw      bool
	timeout  time.Duration

	cfg *config.Config
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "radarctl",
	Short: "Query D365 F&O sales data and the sales assistant from the terminal",
	Long: `radarctl talks to Dynamics 365 Finance & Operations over OData and to the
local LLM directly, without the HTTP services.

Available subcommands:
  ask              - Ask the sales assistant a question
  sales-summary    - Aggregate invoiced sales lines by customer, product and category
  status-breakdown - Count sales orders by status and list backorders`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.LoadConfig(flagconf)
		if err != nil {
			return fmt.Errorf("load config failed: %w", err)
		}
		if err := logger.InitLogger(c.Log.Level, ""); err != nil {
			return err
		}
		// stdout 只输出结果
		logger.Log.SetOutput(cmd.ErrOrStderr())
		cfg = c
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagconf, "conf", "c", "app/sales_radar/configs/assistant.yaml", "config path")
	rootCmd.PersistentFlags().BoolVar(&raw, "raw", false, "print markdown without terminal rendering")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Minute, "operation timeout")

	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(salesSummaryCmd)
	rootCmd.AddCommand(statusBreakdownCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// kratosLogger 复用服务端 provider 时使用的日志记录器，输出到 stderr
func kratosLogger() log.Logger {
	return log.With(log.NewStdLogger(os.Stderr), "ts", log.DefaultTimestamp)
}

func newODataClient() (*odata.Client, error) {
	return data.NewODataClient(cfg, kratosLogger())
}

func newLLMClient() (*llm.Client, func(), error) {
	return data.NewLLMClient(cfg, kratosLogger())
}

func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), timeout)
}
