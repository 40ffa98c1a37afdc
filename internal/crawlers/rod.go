package crawlers

import (
	"context"
	"fmt"
	"time"

	"github.com/RecoveryAshes/RosenkaFetch/internal/models"
	"github.com/RecoveryAshes/RosenkaFetch/internal/utils"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// RodBrowser 基于 go-rod 的浏览器会话
type RodBrowser struct {
	launcher *launcher.Launcher
	browser  *rod.Browser
	site     models.SiteConfig
	pacer    *Pacer
}

// NewRodBrowser 启动Chrome并建立连接
func NewRodBrowser(opts models.BrowserOptions) (*RodBrowser, error) {
	l := launcher.New().Headless(opts.Headless)
	if opts.Bin != "" {
		l = l.Bin(opts.Bin)
	}
	if opts.InsecureSkipVerify {
		l = l.Set("ignore-certificate-errors")
		utils.Warnf("浏览器已配置为跳过HTTPS证书验证")
	}

	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("启动浏览器失败: %w", err)
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("连接浏览器失败: %w", err)
	}

	utils.Debugf("浏览器已启动: %s (headless=%v)", controlURL, opts.Headless)

	return &RodBrowser{
		launcher: l,
		browser:  browser,
		site:     opts.Site,
		pacer:    NewPacer(time.Duration(opts.SlowMotion) * time.Millisecond),
	}, nil
}

// Open 实现 models.Browser
func (b *RodBrowser) Open(ctx context.Context, url string) (models.Tab, error) {
	page, err := b.browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("打开标签页失败: %w", err)
	}

	tab := &rodTab{page: page, site: b.site, pacer: b.pacer}
	if err := tab.Navigate(ctx, url); err != nil {
		_ = tab.Close()
		return nil, err
	}
	return tab, nil
}

// Close 实现 models.Browser
func (b *RodBrowser) Close() error {
	err := b.browser.Close()
	b.launcher.Cleanup()
	utils.Debugf("浏览器已关闭")
	return err
}

type rodTab struct {
	page  *rod.Page
	site  models.SiteConfig
	pacer *Pacer
	url   string
}

func (t *rodTab) Navigate(ctx context.Context, url string) error {
	if err := t.pacer.Wait(ctx); err != nil {
		return err
	}

	page := t.page.Context(ctx)
	if err := page.Navigate(url); err != nil {
		return fmt.Errorf("导航失败 [%s]: %w", url, err)
	}
	if err := page.WaitLoad(); err != nil {
		return fmt.Errorf("等待页面加载失败 [%s]: %w", url, err)
	}

	t.url = url
	if info, err := page.Info(); err == nil && info.URL != "" {
		t.url = info.URL
	}
	return nil
}

func (t *rodTab) URL() string {
	return t.url
}

// eval 执行返回字符串的提取脚本
func (t *rodTab) eval(ctx context.Context, js string, args ...interface{}) (string, error) {
	if err := t.pacer.Wait(ctx); err != nil {
		return "", err
	}

	res, err := t.page.Context(ctx).Eval(js, args...)
	if err != nil {
		return "", fmt.Errorf("执行页面脚本失败 [%s]: %w", t.url, err)
	}
	return res.Value.Str(), nil
}

func (t *rodTab) Links(ctx context.Context) ([]models.Link, error) {
	raw, err := t.eval(ctx, linksScript)
	if err != nil {
		return nil, err
	}
	return decodeLinks(t.url, raw)
}

func (t *rodTab) PlaceRows(ctx context.Context) ([]models.PlaceRow, error) {
	raw, err := t.eval(ctx, placesScript, t.site.TableClass)
	if err != nil {
		return nil, err
	}
	return decodePlaceRows(t.url, raw)
}

func (t *rodTab) ViewerSource(ctx context.Context) (string, error) {
	raw, err := t.eval(ctx, viewerScript, t.site.ViewerID)
	if err != nil {
		return "", err
	}
	return decodeViewerSource(t.url, t.site.ViewerID, raw)
}

func (t *rodTab) Close() error {
	return t.page.Close()
}
