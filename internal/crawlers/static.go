package crawlers

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/RecoveryAshes/RosenkaFetch/internal/models"
	"github.com/RecoveryAshes/RosenkaFetch/internal/utils"
	"github.com/gocolly/colly/v2"
	"golang.org/x/net/html"
)

// StaticBrowser 不启动浏览器, 用colly抓取HTML后在本地解析DOM
// 适用于不依赖JavaScript渲染的页面
type StaticBrowser struct {
	collector *colly.Collector
	site      models.SiteConfig
	headers   http.Header
	pacer     *Pacer
}

// NewStaticBrowser 创建静态"浏览器"
func NewStaticBrowser(opts models.BrowserOptions) (*StaticBrowser, error) {
	var headers http.Header
	if opts.Headers != nil {
		h, err := opts.Headers.GetHeaders()
		if err != nil {
			return nil, fmt.Errorf("获取HTTP头部失败: %w", err)
		}
		headers = h.Clone()
		// 压缩协商交给colly处理
		headers.Del("Accept-Encoding")
	}

	c := colly.NewCollector(
		colly.AllowURLRevisit(),
		colly.DetectCharset(),
	)
	// 不设请求超时
	c.SetRequestTimeout(0)

	if opts.InsecureSkipVerify {
		c.WithTransport(&http.Transport{
			Proxy:           http.ProxyFromEnvironment,
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		})
		utils.Warnf("静态驱动: TLS证书验证已禁用")
	}

	return &StaticBrowser{
		collector: c,
		site:      opts.Site,
		headers:   headers,
		pacer:     NewPacer(time.Duration(opts.SlowMotion) * time.Millisecond),
	}, nil
}

// Open 实现 models.Browser
func (b *StaticBrowser) Open(ctx context.Context, url string) (models.Tab, error) {
	tab := &staticTab{browser: b}
	if err := tab.Navigate(ctx, url); err != nil {
		return nil, err
	}
	return tab, nil
}

// Close 实现 models.Browser, 静态驱动没有需要释放的进程
func (b *StaticBrowser) Close() error {
	return nil
}

type staticTab struct {
	browser *StaticBrowser
	base    *url.URL
	doc     *html.Node
}

func (t *staticTab) Navigate(ctx context.Context, target string) error {
	if err := t.browser.pacer.Wait(ctx); err != nil {
		return err
	}

	c := t.browser.collector.Clone()
	colly.StdlibContext(ctx)(c)

	var (
		body     []byte
		finalURL *url.URL
		fetchErr error
	)

	c.OnRequest(func(r *colly.Request) {
		for name, values := range t.browser.headers {
			if len(values) > 0 {
				r.Headers.Set(name, values[0])
			}
		}
	})
	c.OnResponse(func(r *colly.Response) {
		body = r.Body
		finalURL = r.Request.URL
	})
	c.OnError(func(r *colly.Response, err error) {
		fetchErr = err
	})

	if err := c.Visit(target); err != nil {
		return fmt.Errorf("导航失败 [%s]: %w", target, err)
	}
	c.Wait()

	if fetchErr != nil {
		return fmt.Errorf("导航失败 [%s]: %w", target, fetchErr)
	}
	if finalURL == nil {
		return fmt.Errorf("导航失败 [%s]: 没有收到响应", target)
	}

	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("解析HTML失败 [%s]: %w", target, err)
	}

	t.base = finalURL
	t.doc = doc
	return nil
}

func (t *staticTab) URL() string {
	if t.base == nil {
		return ""
	}
	return t.base.String()
}

func (t *staticTab) Links(ctx context.Context) ([]models.Link, error) {
	return ExtractLinks(t.doc, t.base)
}

func (t *staticTab) PlaceRows(ctx context.Context) ([]models.PlaceRow, error) {
	return ExtractPlaceRows(t.doc, t.base, t.browser.site.TableClass)
}

func (t *staticTab) ViewerSource(ctx context.Context) (string, error) {
	return ExtractViewerSource(t.doc, t.base, t.browser.site.ViewerID)
}

func (t *staticTab) Close() error {
	t.doc = nil
	return nil
}
