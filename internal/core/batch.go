package core

import (
	"context"
	"time"

	"github.com/RecoveryAshes/RosenkaFetch/internal/models"
	"github.com/RecoveryAshes/RosenkaFetch/internal/utils"
)

// BatchFinder 依次检索多个地址, 每个地址使用独立的浏览器会话
// 每个地址的PDF写入 <输出目录>/<报告ID>/
type BatchFinder struct {
	finder        *Finder
	batchDelay    time.Duration
	continueOnErr bool
}

// BatchResult 单个地址的检索结果
type BatchResult struct {
	Input  string
	Report *models.RunReport
	Error  error
}

// BatchSummary 批量检索摘要
type BatchSummary struct {
	TotalInputs   int
	SuccessCount  int
	FailCount     int
	TotalFiles    int
	TotalSize     int64
	TotalDuration float64
	Results       []BatchResult
}

// NewBatchFinder 创建批量检索器, batchDelay单位为秒
func NewBatchFinder(finder *Finder, batchDelay int, continueOnErr bool) *BatchFinder {
	return &BatchFinder{
		finder:        finder,
		batchDelay:    time.Duration(batchDelay) * time.Second,
		continueOnErr: continueOnErr,
	}
}

// FindBatch 依次检索inputs
// continueOnErr为false时遇到第一个失败即停止, 剩余地址不处理
func (bf *BatchFinder) FindBatch(ctx context.Context, inputs []string) *BatchSummary {
	utils.Infof("🚀 开始批量检索: %d个地址", len(inputs))

	summary := &BatchSummary{
		TotalInputs: len(inputs),
		Results:     make([]BatchResult, 0, len(inputs)),
	}
	startTime := time.Now()

	for i, input := range inputs {
		if ctx.Err() != nil {
			utils.Warn("批量检索被取消")
			break
		}

		utils.Infof("==================== [%d/%d] ====================", i+1, len(inputs))

		report, err := bf.finder.findInto(ctx, input, true)
		summary.Results = append(summary.Results, BatchResult{Input: input, Report: report, Error: err})
		summary.TotalFiles += report.SucceededCount()
		summary.TotalSize += report.TotalSize()

		if err == nil {
			summary.SuccessCount++
		} else {
			summary.FailCount++
			if !bf.continueOnErr {
				utils.Warn("批量检索中止 (--continue-on-error=false)")
				break
			}
		}

		if i < len(inputs)-1 && bf.batchDelay > 0 {
			utils.Debugf("等待 %.0f 秒后处理下一个地址...", bf.batchDelay.Seconds())
			select {
			case <-ctx.Done():
			case <-time.After(bf.batchDelay):
			}
		}
	}

	summary.TotalDuration = time.Since(startTime).Seconds()
	bf.printSummary(summary)
	return summary
}

func (bf *BatchFinder) printSummary(summary *BatchSummary) {
	utils.Info("==================================================")
	utils.Info("📊 批量检索摘要")
	utils.Info("==================================================")
	utils.Infof("总地址数: %d", summary.TotalInputs)
	utils.Infof("✅ 成功: %d", summary.SuccessCount)
	utils.Infof("❌ 失败: %d", summary.FailCount)
	utils.Infof("📦 总文件数: %d", summary.TotalFiles)
	utils.Infof("📦 总大小: %.2f MB", float64(summary.TotalSize)/(1024*1024))
	utils.Infof("⏱️  总耗时: %.2f秒", summary.TotalDuration)
	for _, result := range summary.Results {
		if result.Error == nil && result.Report != nil {
			utils.Infof("  - %s → %s", result.Input, result.Report.OutputDir)
		}
	}
	utils.Info("==================================================")

	if summary.FailCount > 0 {
		utils.Warn("失败的地址:")
		for _, result := range summary.Results {
			if result.Error != nil {
				utils.Warnf("  - %s: %v", result.Input, result.Error)
			}
		}
	}
}
