package crawlers

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/RecoveryAshes/RosenkaFetch/internal/models"
	"github.com/RecoveryAshes/RosenkaFetch/internal/utils"
	"github.com/chromedp/chromedp"
)

// ChromedpBrowser 基于 chromedp 的浏览器会话
type ChromedpBrowser struct {
	allocCancel context.CancelFunc
	ctx         context.Context
	cancel      context.CancelFunc
	site        models.SiteConfig
	pacer       *Pacer
}

// NewChromedpBrowser 启动Chrome
func NewChromedpBrowser(opts models.BrowserOptions) (*ChromedpBrowser, error) {
	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
	)
	if opts.Bin != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(opts.Bin))
	}
	if opts.InsecureSkipVerify {
		allocOpts = append(allocOpts, chromedp.Flag("ignore-certificate-errors", true))
		utils.Warnf("浏览器已配置为跳过HTTPS证书验证")
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), allocOpts...)
	ctx, cancel := chromedp.NewContext(allocCtx)

	// 第一次Run时才真正启动浏览器
	if err := chromedp.Run(ctx); err != nil {
		cancel()
		allocCancel()
		return nil, fmt.Errorf("启动浏览器失败: %w", err)
	}

	utils.Debugf("浏览器已启动 (chromedp, headless=%v)", opts.Headless)

	return &ChromedpBrowser{
		allocCancel: allocCancel,
		ctx:         ctx,
		cancel:      cancel,
		site:        opts.Site,
		pacer:       NewPacer(time.Duration(opts.SlowMotion) * time.Millisecond),
	}, nil
}

// Open 实现 models.Browser
func (b *ChromedpBrowser) Open(ctx context.Context, url string) (models.Tab, error) {
	tabCtx, cancel := chromedp.NewContext(b.ctx)
	tab := &chromedpTab{ctx: tabCtx, cancel: cancel, site: b.site, pacer: b.pacer}

	// 标签页由第一次Run创建, 必须直接使用NewContext返回的ctx
	if err := chromedp.Run(tabCtx); err != nil {
		cancel()
		return nil, fmt.Errorf("打开标签页失败: %w", err)
	}

	if err := tab.Navigate(ctx, url); err != nil {
		_ = tab.Close()
		return nil, err
	}
	return tab, nil
}

// Close 实现 models.Browser
func (b *ChromedpBrowser) Close() error {
	err := chromedp.Cancel(b.ctx)
	b.cancel()
	b.allocCancel()
	utils.Debugf("浏览器已关闭")
	return err
}

type chromedpTab struct {
	ctx    context.Context
	cancel context.CancelFunc
	site   models.SiteConfig
	pacer  *Pacer
	url    string
}

// run 在标签页上执行动作, 调用方ctx结束时中止本次执行(不关闭标签页)
func (t *chromedpTab) run(ctx context.Context, actions ...chromedp.Action) error {
	if err := t.pacer.Wait(ctx); err != nil {
		return err
	}

	runCtx, cancel := context.WithCancel(t.ctx)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	return chromedp.Run(runCtx, actions...)
}

func (t *chromedpTab) Navigate(ctx context.Context, url string) error {
	var location string
	if err := t.run(ctx, chromedp.Navigate(url), chromedp.Location(&location)); err != nil {
		return fmt.Errorf("导航失败 [%s]: %w", url, err)
	}

	t.url = url
	if location != "" {
		t.url = location
	}
	return nil
}

func (t *chromedpTab) URL() string {
	return t.url
}

// eval 以 (fn)(args...) 形式执行提取脚本
func (t *chromedpTab) eval(ctx context.Context, fn string, args ...interface{}) (string, error) {
	encoded := make([]string, 0, len(args))
	for _, arg := range args {
		b, err := json.Marshal(arg)
		if err != nil {
			return "", err
		}
		encoded = append(encoded, string(b))
	}
	expr := fmt.Sprintf("(%s)(%s)", fn, strings.Join(encoded, ", "))

	var raw string
	if err := t.run(ctx, chromedp.Evaluate(expr, &raw)); err != nil {
		return "", fmt.Errorf("执行页面脚本失败 [%s]: %w", t.url, err)
	}
	return raw, nil
}

func (t *chromedpTab) Links(ctx context.Context) ([]models.Link, error) {
	raw, err := t.eval(ctx, linksScript)
	if err != nil {
		return nil, err
	}
	return decodeLinks(t.url, raw)
}

func (t *chromedpTab) PlaceRows(ctx context.Context) ([]models.PlaceRow, error) {
	raw, err := t.eval(ctx, placesScript, t.site.TableClass)
	if err != nil {
		return nil, err
	}
	return decodePlaceRows(t.url, raw)
}

func (t *chromedpTab) ViewerSource(ctx context.Context) (string, error) {
	raw, err := t.eval(ctx, viewerScript, t.site.ViewerID)
	if err != nil {
		return "", err
	}
	return decodeViewerSource(t.url, t.site.ViewerID, raw)
}

func (t *chromedpTab) Close() error {
	err := chromedp.Cancel(t.ctx)
	t.cancel()
	return err
}
