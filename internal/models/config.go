package models

import "fmt"

// 支持的浏览器驱动
const (
	DriverRod      = "rod"
	DriverChromedp = "chromedp"
	DriverStatic   = "static"
)

// FetchConfig 一次检索所需的运行参数
type FetchConfig struct {
	Debug      bool   `json:"debug"`          // 显示浏览器窗口并放慢操作
	Driver     string `json:"driver"`         // rod | chromedp | static
	SlowMotion int    `json:"slow_motion_ms"` // 调试模式下每个操作的延迟(毫秒)
	BrowserBin string `json:"bin,omitempty"`  // 浏览器可执行文件路径

	MaxTabs  int  `json:"max_tabs"` // 并发标签页上限, 0表示不限制
	Adaptive bool `json:"adaptive"` // 根据系统内存计算标签页上限

	DownloadTimeout    int  `json:"download_timeout"`     // 单个下载超时(秒), 0表示不超时
	FailOnHTTPStatus   bool `json:"fail_on_http_status"`  // 非2xx视为下载失败
	InsecureSkipVerify bool `json:"insecure_skip_verify"` // 跳过TLS证书验证

	OutputDir string `json:"output_dir"`
	ReportDir string `json:"report_dir,omitempty"`
}

// Validate 验证配置
func (c *FetchConfig) Validate() error {
	switch c.Driver {
	case DriverRod, DriverChromedp, DriverStatic:
	default:
		return fmt.Errorf("无效的浏览器驱动: %s (有效值: rod, chromedp, static)", c.Driver)
	}
	if c.SlowMotion < 0 || c.SlowMotion > 10000 {
		return fmt.Errorf("操作延迟必须在0-10000毫秒之间")
	}
	if c.MaxTabs < 0 || c.MaxTabs > 64 {
		return fmt.Errorf("标签页上限必须在0-64之间")
	}
	if c.DownloadTimeout < 0 || c.DownloadTimeout > 3600 {
		return fmt.Errorf("下载超时必须在0-3600秒之间")
	}
	if c.OutputDir == "" {
		return fmt.Errorf("输出目录不能为空")
	}
	return nil
}

// BrowserOptions 由配置生成启动浏览器的参数
// 非调试模式下无头运行且不延迟
func (c *FetchConfig) BrowserOptions(site SiteConfig, headers HeaderProvider) BrowserOptions {
	opts := BrowserOptions{
		Driver:             c.Driver,
		Headless:           !c.Debug,
		Bin:                c.BrowserBin,
		Site:               site,
		Headers:            headers,
		InsecureSkipVerify: c.InsecureSkipVerify,
	}
	if c.Debug {
		opts.SlowMotion = c.SlowMotion
	}
	return opts
}
