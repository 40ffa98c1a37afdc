package utils

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/RecoveryAshes/RosenkaFetch/internal/models"
	"github.com/schollz/progressbar/v3"
)

// Reporter 检索报告生成器
type Reporter struct {
	reportDir string
}

// NewReporter 创建报告生成器, reportDir为空时不写报告
func NewReporter(reportDir string) *Reporter {
	return &Reporter{reportDir: reportDir}
}

// Enabled 是否会写入报告文件
func (r *Reporter) Enabled() bool {
	return r.reportDir != ""
}

// SaveReport 将检索记录保存为 <reportDir>/<id>.json, 返回文件路径
func (r *Reporter) SaveReport(report *models.RunReport) (string, error) {
	if !r.Enabled() {
		return "", nil
	}

	if err := os.MkdirAll(r.reportDir, 0755); err != nil {
		return "", fmt.Errorf("创建报告目录失败: %w", err)
	}

	jsonData, err := report.ToJSON()
	if err != nil {
		return "", fmt.Errorf("序列化JSON失败: %w", err)
	}

	path := filepath.Join(r.reportDir, report.ID+".json")
	if err := os.WriteFile(path, jsonData, 0644); err != nil {
		return "", fmt.Errorf("写入报告文件失败: %w", err)
	}

	Debugf("保存报告: %s", path)
	return path, nil
}

// PrintSummary 输出检索结果摘要
func PrintSummary(w io.Writer, report *models.RunReport) {
	fmt.Fprintln(w, "\n==================================================")
	fmt.Fprintln(w, "📊 路線価図检索结果")
	fmt.Fprintln(w, "==================================================")
	fmt.Fprintf(w, "输入地址: %s\n", report.Input)
	if report.Prefecture != nil {
		fmt.Fprintf(w, "都道府县: %s\n", report.Prefecture.Text)
	}
	if report.City != nil {
		fmt.Fprintf(w, "市区町村: %s\n", report.City.Text)
	}
	if report.Place != nil {
		fmt.Fprintf(w, "地名: %s\n", report.Place.Text)
	}
	if report.OutputDir != "" {
		fmt.Fprintf(w, "输出目录: %s\n", report.OutputDir)
	}
	fmt.Fprintf(w, "✅ 下载成功: %d\n", report.SucceededCount())
	fmt.Fprintf(w, "❌ 下载失败: %d\n", report.FailedCount())
	fmt.Fprintf(w, "📦 总大小: %.2f MB\n", float64(report.TotalSize())/(1024*1024))
	fmt.Fprintf(w, "剩余输入: %s\n", report.RemainingInput)
	fmt.Fprintf(w, "⏱️  总耗时: %.2f秒\n", report.Duration)
	fmt.Fprintln(w, "==================================================")
}

// NewProgressBar 创建进度条
func NewProgressBar(max int, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(max,
		progressbar.OptionSetDescription(description),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
}
