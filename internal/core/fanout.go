package core

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/RecoveryAshes/RosenkaFetch/internal/models"
	"github.com/RecoveryAshes/RosenkaFetch/internal/utils"
	"github.com/schollz/progressbar/v3"
	"golang.org/x/sync/errgroup"
)

// Fanout 为每个最终链接打开独立标签页, 读取查看器地址并下载PDF
// 各链接互不影响, 一个失败不会取消其他链接
type Fanout struct {
	browser    models.Browser
	downloader *Downloader
	outputDir  string
	maxTabs    int
	metrics    *utils.Metrics

	// ShowProgress 在终端显示进度条
	ShowProgress bool
}

// NewFanout 创建下载协调器, maxTabs<=0 表示不限制并发
func NewFanout(browser models.Browser, downloader *Downloader, outputDir string, maxTabs int, metrics *utils.Metrics) *Fanout {
	return &Fanout{
		browser:    browser,
		downloader: downloader,
		outputDir:  outputDir,
		maxTabs:    maxTabs,
		metrics:    metrics,
	}
}

// Run 并发处理所有链接, 等待全部结束后返回结果(与links顺序一致)和合并后的错误
func (f *Fanout) Run(ctx context.Context, links []models.Link) ([]models.DownloadResult, error) {
	results := make([]models.DownloadResult, len(links))
	errs := make([]error, len(links))

	var bar *progressbar.ProgressBar
	if f.ShowProgress && len(links) > 0 {
		bar = utils.NewProgressBar(len(links), "下载路線価図")
	}

	var g errgroup.Group
	if f.maxTabs > 0 {
		g.SetLimit(f.maxTabs)
		utils.Debugf("并发标签页上限: %d", f.maxTabs)
	}

	for i, link := range links {
		g.Go(func() error {
			results[i], errs[i] = f.fetch(ctx, link)
			f.metrics.ObserveDownload(results[i])
			if bar != nil {
				_ = bar.Add(1)
			}
			return nil
		})
	}
	_ = g.Wait()

	if bar != nil {
		_ = bar.Finish()
	}
	return results, errors.Join(errs...)
}

// fetch 处理单个链接: 打开标签页 → 读取 #pdfload[src] → 下载到 <outputDir>/<text>.pdf
func (f *Fanout) fetch(ctx context.Context, link models.Link) (models.DownloadResult, error) {
	result := models.DownloadResult{
		Label:   link.Text,
		PageURL: link.Link,
	}

	err := func() error {
		utils.Debugf("打开查看页 [%s]: %s", link.Text, link.Link)
		tab, err := f.browser.Open(ctx, link.Link)
		if err != nil {
			return err
		}
		defer tab.Close()

		src, err := tab.ViewerSource(ctx)
		if err != nil {
			return err
		}
		result.SourceURL = src

		destination := filepath.Join(f.outputDir, link.Text+".pdf")
		transfer, err := f.downloader.Download(ctx, src, destination)
		result.StatusCode = transfer.StatusCode
		result.Size = transfer.Size
		result.FilePath = transfer.Path
		return err
	}()

	result.FinishedAt = time.Now()
	if err != nil {
		result.Error = err.Error()
		utils.Warnf("下载失败 [%s]: %v", link.Text, err)
		return result, fmt.Errorf("%s: %w", link.Text, err)
	}

	utils.Infof("已保存: %s (%d 字节)", result.FilePath, result.Size)
	return result, nil
}
