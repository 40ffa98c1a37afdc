package core

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/RecoveryAshes/RosenkaFetch/internal/models"
)

const fakeTop = "https://rosenka.test/"

// fakePage 模拟页面的提取结果
type fakePage struct {
	links  []models.Link
	rows   []models.PlaceRow
	viewer string
}

// fakeBrowser 实现 models.Browser, 记录导航与标签页数量
type fakeBrowser struct {
	pages map[string]fakePage
	delay time.Duration // ViewerSource 的模拟耗时

	mu         sync.Mutex
	visited    []string
	openTabs   int
	maxOpen    int
	closedTabs int
	closed     int
}

func (b *fakeBrowser) Open(ctx context.Context, url string) (models.Tab, error) {
	tab := &fakeTab{browser: b}
	if err := tab.Navigate(ctx, url); err != nil {
		return nil, err
	}

	b.mu.Lock()
	b.openTabs++
	if b.openTabs > b.maxOpen {
		b.maxOpen = b.openTabs
	}
	b.mu.Unlock()
	return tab, nil
}

func (b *fakeBrowser) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed++
	return nil
}

func (b *fakeBrowser) Visited() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.visited...)
}

type fakeTab struct {
	browser *fakeBrowser
	url     string
	page    fakePage
}

func (t *fakeTab) Navigate(ctx context.Context, url string) error {
	t.browser.mu.Lock()
	defer t.browser.mu.Unlock()
	t.browser.visited = append(t.browser.visited, url)

	page, ok := t.browser.pages[url]
	if !ok {
		return fmt.Errorf("404: %s", url)
	}
	t.url = url
	t.page = page
	return nil
}

func (t *fakeTab) URL() string { return t.url }

func (t *fakeTab) Links(ctx context.Context) ([]models.Link, error) {
	if len(t.page.links) == 0 {
		return nil, &models.ExtractionError{URL: t.url, Target: "a", Reason: "页面没有锚点"}
	}
	return t.page.links, nil
}

func (t *fakeTab) PlaceRows(ctx context.Context) ([]models.PlaceRow, error) {
	if t.page.rows == nil {
		return nil, &models.ExtractionError{URL: t.url, Target: "table.tbl_list", Reason: "表格不存在"}
	}
	return t.page.rows, nil
}

func (t *fakeTab) ViewerSource(ctx context.Context) (string, error) {
	if t.browser.delay > 0 {
		time.Sleep(t.browser.delay)
	}
	if t.page.viewer == "" {
		return "", &models.ExtractionError{URL: t.url, Target: "#pdfload", Reason: "查看器元素不存在"}
	}
	return t.page.viewer, nil
}

func (t *fakeTab) Close() error {
	t.browser.mu.Lock()
	defer t.browser.mu.Unlock()
	t.browser.openTabs--
	t.browser.closedTabs++
	return nil
}

func link(text, path string) models.Link {
	return models.Link{Text: text, Link: fakeTop + path}
}

// newFakeSite 构造 東京都 → 路線価図 → 千代田区 → 千代田(1, 2) 的站点
// pdfBase为PDF所在的服务地址
func newFakeSite(pdfBase string) *fakeBrowser {
	return &fakeBrowser{pages: map[string]fakePage{
		fakeTop: {links: []models.Link{
			link("北海道", "hokkaido"),
			link("東京都", "tokyo"),
		}},
		fakeTop + "tokyo": {links: []models.Link{
			link("評価倍率表", "tokyo/bairitsu"),
			link("路線価図", "tokyo/city"),
		}},
		fakeTop + "tokyo/city": {links: []models.Link{
			link("中央区", "tokyo/chuo"),
			link("千代田区", "tokyo/chiyoda"),
		}},
		fakeTop + "tokyo/chiyoda": {rows: []models.PlaceRow{
			{Text: "丸の内", Links: []models.Link{link("3", "view/3")}},
			{Text: "千代田", Links: []models.Link{link("1", "view/1"), link("2", "view/2")}},
		}},
		fakeTop + "view/1": {viewer: pdfBase + "/1.pdf"},
		fakeTop + "view/2": {viewer: pdfBase + "/2.pdf"},
		fakeTop + "view/3": {viewer: pdfBase + "/3.pdf"},
	}}
}

func fakeSiteConfig() models.SiteConfig {
	site := models.DefaultSiteConfig()
	site.TopURL = fakeTop
	return site
}
