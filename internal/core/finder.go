package core

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/RecoveryAshes/RosenkaFetch/internal/crawlers"
	"github.com/RecoveryAshes/RosenkaFetch/internal/models"
	"github.com/RecoveryAshes/RosenkaFetch/internal/utils"
)

// Finder 一次完整检索的协调器: 启动浏览器 → 导航 → 并发下载 → 关闭浏览器
type Finder struct {
	config   models.FetchConfig
	site     models.SiteConfig
	headers  models.HeaderProvider
	metrics  *utils.Metrics
	reporter *utils.Reporter

	// ShowProgress 下载阶段显示进度条
	ShowProgress bool

	newBrowser func(models.BrowserOptions) (models.Browser, error)
}

// NewFinder 创建检索器, headers与metrics可以为nil
func NewFinder(config models.FetchConfig, site models.SiteConfig, headers models.HeaderProvider, metrics *utils.Metrics) *Finder {
	return &Finder{
		config:   config,
		site:     site,
		headers:  headers,
		metrics:  metrics,
		reporter: utils.NewReporter(config.ReportDir),
		newBrowser: func(opts models.BrowserOptions) (models.Browser, error) {
			return crawlers.NewBrowser(opts)
		},
	}
}

// Find 检索input对应的路線価図并下载到输出目录
// 返回的报告总是非nil; 已下载的文件在失败时同样保留
func (f *Finder) Find(ctx context.Context, input string) (*models.RunReport, error) {
	return f.findInto(ctx, input, false)
}

// findInto perRunDir为true时写入 <OutputDir>/<报告ID>/, 批量检索中不同地址的同名图号互不覆盖
func (f *Finder) findInto(ctx context.Context, input string, perRunDir bool) (*models.RunReport, error) {
	report := models.NewRunReport(input)
	report.OutputDir = f.config.OutputDir
	if perRunDir {
		report.OutputDir = filepath.Join(f.config.OutputDir, report.ID)
	}
	utils.Infof("🚀 开始检索: %s", input)

	err := f.find(ctx, input, report)
	report.Finish(err)
	f.metrics.ObserveRun(report)

	if path, saveErr := f.reporter.SaveReport(report); saveErr != nil {
		utils.Warnf("保存报告失败: %v", saveErr)
	} else if path != "" {
		utils.Infof("报告已保存: %s", path)
	}

	if err != nil {
		utils.Errorf("❌ 检索失败: %v", err)
		return report, err
	}

	utils.Infof("✅ 检索完成: %d个文件, 剩余输入: %s", report.SucceededCount(), report.RemainingInput)
	return report, nil
}

func (f *Finder) find(ctx context.Context, input string, report *models.RunReport) error {
	browser, err := f.newBrowser(f.config.BrowserOptions(f.site, f.headers))
	if err != nil {
		return fmt.Errorf("启动浏览器失败: %w", err)
	}
	session, ok := browser.(*crawlers.Session)
	if !ok {
		session = crawlers.NewSession(browser)
	}
	defer func() {
		if err := session.Close(); err != nil {
			utils.Warnf("关闭浏览器失败: %v", err)
		}
	}()

	navigator := NewNavigator(f.site, f.metrics)
	place, _, err := navigator.Navigate(ctx, session, input, report)
	if err != nil {
		return err
	}

	fanout := NewFanout(session, NewDownloader(f.config, f.headers), report.OutputDir, f.maxTabs(), f.metrics)
	fanout.ShowProgress = f.ShowProgress

	results, err := fanout.Run(ctx, place.Links)
	report.Downloads = results
	if err != nil {
		return fmt.Errorf("部分路線価図下载失败: %w", err)
	}
	return nil
}

// maxTabs 并发标签页上限, 0表示不限制
// 同时指定固定上限与自适应时取较小值
func (f *Finder) maxTabs() int {
	limit := f.config.MaxTabs
	if f.config.Adaptive {
		adaptive := crawlers.NewResourceMonitor(crawlers.DefaultResourceMonitorConfig()).CalculateMaxTabs()
		if limit == 0 || adaptive < limit {
			limit = adaptive
		}
	}
	return limit
}
