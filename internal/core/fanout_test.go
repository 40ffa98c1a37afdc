package core

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/RecoveryAshes/RosenkaFetch/internal/models"
)

func newFanoutServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("%PDF " + r.URL.Path))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFanout_Run(t *testing.T) {
	srv := newFanoutServer(t)
	browser := newFakeSite(srv.URL)
	out := t.TempDir()

	fanout := NewFanout(browser, NewDownloader(models.FetchConfig{}, nil), out, 0, nil)
	results, err := fanout.Run(context.Background(), []models.Link{link("1", "view/1"), link("2", "view/2")})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	for i, name := range []string{"1", "2"} {
		path := filepath.Join(out, name+".pdf")
		if got := readFile(t, path); got != "%PDF /"+name+".pdf" {
			t.Errorf("%s 内容 %q", path, got)
		}
		if results[i].Label != name || !results[i].Succeeded() || results[i].FilePath != path {
			t.Errorf("results[%d] = %+v", i, results[i])
		}
	}
	if browser.openTabs != 0 || browser.closedTabs != 2 {
		t.Errorf("标签页未全部关闭: open=%d closed=%d", browser.openTabs, browser.closedTabs)
	}
}

func TestFanout_Independence(t *testing.T) {
	srv := newFanoutServer(t)
	browser := newFakeSite(srv.URL)
	// 4: 查看器元素缺失; 5: 页面不存在
	browser.pages[fakeTop+"view/4"] = fakePage{}
	out := t.TempDir()

	links := []models.Link{
		link("4", "view/4"),
		link("1", "view/1"),
		link("5", "view/5"),
		link("2", "view/2"),
	}
	results, err := NewFanout(browser, NewDownloader(models.FetchConfig{}, nil), out, 0, nil).Run(context.Background(), links)

	if !errors.Is(err, models.ErrExtraction) {
		t.Errorf("合并错误中应包含ErrExtraction, 得到 %v", err)
	}
	for _, name := range []string{"1", "2"} {
		if _, statErr := os.Stat(filepath.Join(out, name+".pdf")); statErr != nil {
			t.Errorf("%s.pdf 应不受其他链接失败影响: %v", name, statErr)
		}
	}
	for _, name := range []string{"4", "5"} {
		if _, statErr := os.Stat(filepath.Join(out, name+".pdf")); !os.IsNotExist(statErr) {
			t.Errorf("%s.pdf 不应存在", name)
		}
	}

	failed := 0
	for _, r := range results {
		if !r.Succeeded() {
			failed++
		}
	}
	if failed != 2 {
		t.Errorf("失败数 %d, want 2", failed)
	}
}

func TestFanout_MaxTabs(t *testing.T) {
	srv := newFanoutServer(t)
	browser := newFakeSite(srv.URL)
	browser.delay = 20 * time.Millisecond

	links := make([]models.Link, 0, 6)
	for i := 0; i < 6; i++ {
		l := link("1", "view/1")
		l.Text = string(rune('a' + i))
		links = append(links, l)
	}

	fanout := NewFanout(browser, NewDownloader(models.FetchConfig{}, nil), t.TempDir(), 2, nil)
	if _, err := fanout.Run(context.Background(), links); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if browser.maxOpen > 2 {
		t.Errorf("同时打开了 %d 个标签页, 上限为2", browser.maxOpen)
	}
}

func TestFanout_Unbounded(t *testing.T) {
	srv := newFanoutServer(t)
	browser := newFakeSite(srv.URL)
	browser.delay = 100 * time.Millisecond

	links := make([]models.Link, 0, 5)
	for i := 0; i < 5; i++ {
		l := link("1", "view/1")
		l.Text = string(rune('a' + i))
		links = append(links, l)
	}

	if _, err := NewFanout(browser, NewDownloader(models.FetchConfig{}, nil), t.TempDir(), 0, nil).Run(context.Background(), links); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if browser.maxOpen != 5 {
		t.Errorf("不限制时应同时打开全部 5 个标签页, 实际最多 %d", browser.maxOpen)
	}
}

func TestFanout_Empty(t *testing.T) {
	results, err := NewFanout(newFakeSite("http://pdf.test"), nil, t.TempDir(), 0, nil).Run(context.Background(), nil)
	if err != nil || len(results) != 0 {
		t.Errorf("Run(nil) = %v, %v", results, err)
	}
}
