package crawlers

import (
	"fmt"

	"github.com/RecoveryAshes/RosenkaFetch/internal/models"
)

// NewBrowser 按驱动名启动浏览器, 返回的会话保证只关闭一次
func NewBrowser(opts models.BrowserOptions) (*Session, error) {
	var (
		browser models.Browser
		err     error
	)

	switch opts.Driver {
	case models.DriverRod, "":
		browser, err = NewRodBrowser(opts)
	case models.DriverChromedp:
		browser, err = NewChromedpBrowser(opts)
	case models.DriverStatic:
		browser, err = NewStaticBrowser(opts)
	default:
		return nil, fmt.Errorf("不支持的浏览器驱动: %s", opts.Driver)
	}
	if err != nil {
		return nil, err
	}

	return NewSession(browser), nil
}
