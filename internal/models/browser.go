package models

import "context"

// Page 已加载页面上的只读提取能力
// 具体实现可以是真实浏览器(rod/chromedp)或静态HTML解析
type Page interface {
	// Links 按文档顺序返回所有锚点, 保留重复项
	// 页面没有任何锚点时返回 *ExtractionError
	Links(ctx context.Context) ([]Link, error)

	// PlaceRows 提取地名一览表(跳过表头行)
	PlaceRows(ctx context.Context) ([]PlaceRow, error)

	// ViewerSource 读取PDF查看器元素的src属性
	ViewerSource(ctx context.Context) (string, error)
}

// Tab 浏览器中的一个标签页
type Tab interface {
	Page

	// Navigate 导航到指定URL并等待加载完成
	Navigate(ctx context.Context, url string) error

	// URL 当前已加载页面的地址
	URL() string

	// Close 关闭标签页
	Close() error
}

// Browser 浏览器会话
// 所有标签页共享同一个浏览器进程
type Browser interface {
	// Open 打开新标签页并导航到url
	Open(ctx context.Context, url string) (Tab, error)

	// Close 关闭浏览器进程
	Close() error
}

// BrowserOptions 启动浏览器的参数
type BrowserOptions struct {
	Driver     string // rod | chromedp | static
	Headless   bool
	SlowMotion int    // 每个操作之间的延迟(毫秒), 0表示不延迟
	Bin        string // 浏览器可执行文件路径, 为空时自动查找
	Site       SiteConfig
	Headers    HeaderProvider

	// InsecureSkipVerify 忽略证书错误(浏览器 --ignore-certificate-errors)
	InsecureSkipVerify bool
}
