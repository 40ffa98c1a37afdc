package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/RecoveryAshes/RosenkaFetch/internal/core"
	"github.com/RecoveryAshes/RosenkaFetch/internal/utils"
	"github.com/spf13/cobra"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

// 命令行参数
var (
	// 全局参数
	configFile string
	verbose    bool
	logLevel   string

	// HTTP头部参数
	headers        []string
	validateConfig bool

	// 检索参数
	input       string
	inputFile   string
	debug       bool
	driver      string
	outputDir   string
	maxTabs     int
	adaptive    bool
	metricsFile string

	// 批量处理参数
	batchDelay      int
	continueOnError bool
)

// appConfig 由 PersistentPreRunE 加载
var appConfig *core.Config

var rootCmd = &cobra.Command{
	Use:   "rosenka",
	Short: "国税厅路線価図PDF检索下载工具",
	Long: `RosenkaFetch - 按地址检索并下载国税厅路線価図 (https://www.rosenka.nta.go.jp/)

按 都道府県 → 路線価図 → 市区町村 → 町丁目 的顺序, 以地址前缀逐级匹配,
最后并发下载地名一览中该行的全部PDF到输出目录 (<output>/<番号>.pdf)。

示例:
  # 使用默认地址 (東京都千代田区千代田１−１)
  rosenka

  # 指定地址, 或通过环境变量 INPUT
  rosenka -i "大阪府大阪市北区梅田１"
  INPUT="京都府京都市中京区" rosenka

  # 显示浏览器窗口并放慢操作 (等同 DEBUG=true)
  rosenka --debug

  # 批量检索, 每行一个地址
  rosenka -f addresses.txt --continue-on-error

  # 自定义HTTP请求头 (用于PDF下载与static驱动)
  rosenka -H "User-Agent: MyBot/1.0"

  # 验证配置文件
  rosenka --validate-config

版本: ` + Version + `
构建时间: ` + BuildTime,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config, err := core.LoadConfig(configFile)
		if err != nil {
			return fmt.Errorf("加载配置失败: %w", err)
		}
		appConfig = config

		logConfig := config.LogConfig()
		if logLevel != "" {
			logConfig.Level = logLevel
		}
		if err := utils.InitLogger(logConfig); err != nil {
			return fmt.Errorf("初始化日志系统失败: %w", err)
		}

		if verbose {
			utils.Info("详细模式已启用")
		}
		return nil
	},
	RunE: run,
}

func run(cmd *cobra.Command, args []string) error {
	// Ctrl+C 取消检索, 浏览器照常关闭
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	headerManager, err := core.NewHeaderManager(appConfig.Output.HeadersFile, headers)
	if err != nil {
		return fmt.Errorf("创建HTTP头部管理器失败: %w", err)
	}

	if validateConfig {
		return runValidateConfig(headerManager)
	}

	if err := ValidateFlags(driver, maxTabs, batchDelay, inputFile); err != nil {
		return err
	}

	appConfig.MergeCLIFlags(core.Overrides{
		Input:       input,
		Debug:       debug,
		Driver:      driver,
		OutputDir:   outputDir,
		MaxTabs:     maxTabs,
		Adaptive:    adaptive,
		LogLevel:    logLevel,
		MetricsFile: metricsFile,
	})
	if err := appConfig.Validate(); err != nil {
		return err
	}

	// 提前加载并校验头部, 避免在下载阶段才失败
	if _, err := headerManager.GetHeaders(); err != nil {
		return fmt.Errorf("HTTP头部配置无效: %w", err)
	}

	var metrics *utils.Metrics
	if appConfig.Output.MetricsFile != "" {
		metrics = utils.NewMetrics()
		defer func() {
			if err := metrics.WriteToFile(appConfig.Output.MetricsFile); err != nil {
				utils.Warnf("写入指标文件失败: %v", err)
			}
		}()
	}

	fetchConfig := appConfig.FetchConfig()
	utils.Infof("浏览器驱动: %s, 输出目录: %s", fetchConfig.Driver, fetchConfig.OutputDir)
	if fetchConfig.Debug {
		utils.Infof("调试模式: 显示浏览器窗口, 操作间隔 %dms", fetchConfig.SlowMotion)
	}

	finder := core.NewFinder(fetchConfig, appConfig.Site, headerManager, metrics)
	finder.ShowProgress = true

	if inputFile != "" {
		inputs, err := utils.ReadInputsFromFile(inputFile)
		if err != nil {
			return err
		}

		summary := core.NewBatchFinder(finder, batchDelay, continueOnError).FindBatch(ctx, inputs)
		if summary.FailCount > 0 {
			return fmt.Errorf("%d/%d 个地址检索失败", summary.FailCount, summary.TotalInputs)
		}
		utils.Info("✨ 批量检索完成!")
		return nil
	}

	report, err := finder.Find(ctx, appConfig.Input)
	utils.PrintSummary(os.Stdout, report)
	return err
}

func runValidateConfig(headerManager *core.HeaderManager) error {
	utils.Info("🔍 验证配置...")

	if err := appConfig.Validate(); err != nil {
		return fmt.Errorf("配置验证失败: %w", err)
	}
	if err := headerManager.LoadConfig(); err != nil {
		return fmt.Errorf("加载HTTP头部配置失败: %w", err)
	}
	if err := headerManager.Validate(); err != nil {
		return fmt.Errorf("HTTP头部验证失败: %w", err)
	}

	safeHeaders := headerManager.GetSafeHeaders()
	utils.Info("✅ 配置验证通过!")
	utils.Infof("站点: %s", appConfig.Site.TopURL)
	utils.Infof("当前有效的HTTP头部 (%d个):", len(safeHeaders))
	for name, value := range safeHeaders {
		utils.Infof("  %s: %s", name, value)
	}
	return nil
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "显示版本信息",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("RosenkaFetch %s\n", Version)
		fmt.Printf("构建时间: %s\n", BuildTime)
	},
}

func init() {
	// 全局参数
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "配置文件路径")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "详细输出模式")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "日志级别 (trace|debug|info|warn|error)")

	// HTTP头部参数
	rootCmd.PersistentFlags().StringArrayVarP(&headers, "header", "H", []string{}, "自定义HTTP头部,格式: 'Name: Value',可多次指定")
	rootCmd.PersistentFlags().BoolVar(&validateConfig, "validate-config", false, "验证配置文件正确性")

	// 检索参数
	rootCmd.Flags().StringVarP(&input, "input", "i", "", "检索地址 (默认读取环境变量 INPUT)")
	rootCmd.Flags().StringVarP(&inputFile, "input-file", "f", "", "包含地址列表的文件路径")
	rootCmd.Flags().BoolVar(&debug, "debug", false, "显示浏览器窗口并放慢操作 (等同 DEBUG=true)")
	rootCmd.Flags().StringVar(&driver, "driver", "", "浏览器驱动 (rod|chromedp|static)")
	rootCmd.Flags().StringVarP(&outputDir, "output", "o", "", "输出目录 (默认 output)")
	rootCmd.Flags().IntVar(&maxTabs, "tabs", 0, "下载阶段并发标签页上限, 0表示不限制")
	rootCmd.Flags().BoolVar(&adaptive, "adaptive", false, "根据系统内存自动限制并发标签页")
	rootCmd.Flags().StringVar(&metricsFile, "metrics-file", "", "运行结束后写入Prometheus文本格式指标")

	// 批量处理参数
	rootCmd.Flags().IntVar(&batchDelay, "batch-delay", 1, "批量处理地址间延迟(秒)")
	rootCmd.Flags().BoolVar(&continueOnError, "continue-on-error", false, "遇到错误继续处理下一个地址")

	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		os.Exit(1)
	}
}
