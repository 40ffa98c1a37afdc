package crawlers

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/RecoveryAshes/RosenkaFetch/internal/models"
	"github.com/RecoveryAshes/RosenkaFetch/internal/testsite"
	"github.com/go-rod/rod/lib/launcher"
)

// newRodSession 启动本地Chrome, 没有浏览器时跳过
func newRodSession(t *testing.T, site *testsite.Site) *Session {
	t.Helper()
	if testing.Short() {
		t.Skip("-short 模式跳过浏览器测试")
	}
	bin, found := launcher.LookPath()
	if !found {
		t.Skip("未找到Chrome/Chromium")
	}

	cfg := models.DefaultSiteConfig()
	cfg.TopURL = site.TopURL()

	session, err := NewBrowser(models.BrowserOptions{
		Driver:   models.DriverRod,
		Headless: true,
		Bin:      bin,
		Site:     cfg,
	})
	if err != nil {
		t.Fatalf("NewBrowser() error = %v", err)
	}
	t.Cleanup(func() { _ = session.Close() })
	return session
}

func TestRodBrowser_PageScripts(t *testing.T) {
	site := testsite.New(t)
	session := newRodSession(t, site)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	tab, err := session.Open(ctx, site.TopURL())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer tab.Close()

	t.Run("锚点", func(t *testing.T) {
		links, err := tab.Links(ctx)
		if err != nil {
			t.Fatalf("Links() error = %v", err)
		}
		if len(links) != 4 || links[2].Text != "東京都" {
			t.Fatalf("顶页锚点 = %+v", links)
		}
		if links[2].Link != site.URL+"/main/tokyo/pref.htm" {
			t.Errorf("锚点地址应为绝对地址, 得到 %q", links[2].Link)
		}
	})

	t.Run("没有地名表", func(t *testing.T) {
		if _, err := tab.PlaceRows(ctx); !errors.Is(err, models.ErrExtraction) {
			t.Errorf("期望ErrExtraction, 得到 %v", err)
		}
	})

	t.Run("地名表", func(t *testing.T) {
		if err := tab.Navigate(ctx, site.URL+"/main/tokyo/chiyoda.htm"); err != nil {
			t.Fatalf("Navigate() error = %v", err)
		}
		rows, err := tab.PlaceRows(ctx)
		if err != nil {
			t.Fatalf("PlaceRows() error = %v", err)
		}
		if len(rows) != 2 || rows[0].Text != "千代田" || rows[1].Text != "丸の内" {
			t.Fatalf("地名一览 = %+v", rows)
		}
		if len(rows[0].Links) != 2 || rows[0].Links[0].Text != "1" {
			t.Errorf("千代田的链接 = %+v", rows[0].Links)
		}
		if rows[0].Links[0].Link != site.URL+"/main/tokyo/view/1.htm" {
			t.Errorf("链接应为绝对地址, 得到 %q", rows[0].Links[0].Link)
		}
	})

	tests := []struct {
		name    string
		path    string
		want    string
		wantErr bool
	}{
		{"相对src", "/main/tokyo/view/1.htm", site.URL + "/pdf/1.pdf", false},
		{"iframe", "/main/tokyo/view/3.htm", site.URL + "/pdf/3.pdf", false},
		{"没有查看器", "/main/tokyo/view/4.htm", "", true},
	}
	for _, tt := range tests {
		t.Run("查看器-"+tt.name, func(t *testing.T) {
			if err := tab.Navigate(ctx, site.URL+tt.path); err != nil {
				t.Fatalf("Navigate() error = %v", err)
			}
			src, err := tab.ViewerSource(ctx)
			if tt.wantErr {
				if !errors.Is(err, models.ErrExtraction) {
					t.Errorf("期望ErrExtraction, 得到 %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ViewerSource() error = %v", err)
			}
			if src != tt.want {
				t.Errorf("ViewerSource() = %q, want %q", src, tt.want)
			}
		})
	}
}
