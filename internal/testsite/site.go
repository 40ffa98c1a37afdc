// Package testsite 提供模拟国税厅路线价网站的HTTP服务, 供各包测试使用
package testsite

import (
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

// PDF内容, 按下载后的文件名索引
var PDFs = map[string][]byte{
	"1": []byte("%PDF-1.4 chiyoda-1"),
	"2": []byte("%PDF-1.4 chiyoda-2"),
	"3": []byte("%PDF-1.4 marunouchi-3"),

	// 中央区銀座的图号同样是"1"
	"ginza-1": []byte("%PDF-1.4 ginza-1"),
}

// Site 模拟站点
//
//	/                         都道府县一览
//	/main/tokyo/pref.htm      分类(评价倍率表 / 路線価図)
//	/main/tokyo/city.htm      市区町村一览
//	/main/tokyo/chiyoda.htm   地名一览(tbl_list)
//	/main/tokyo/chuo.htm      地名一览, 图号与千代田区重复
//	/main/tokyo/view/N.htm    PDF查看页(#pdfload)
//	/pdf/N.pdf                PDF本体
type Site struct {
	*httptest.Server

	// DeadURL 指向已关闭端口的地址, 访问时连接被拒绝
	DeadURL string

	mu   sync.Mutex
	hits []string
}

// New 启动模拟站点, 测试结束时自动关闭
func New(t testing.TB) *Site {
	t.Helper()

	s := &Site{DeadURL: deadURL(t)}
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.record(s.top))
	mux.HandleFunc("/main/tokyo/pref.htm", s.record(s.prefecture))
	mux.HandleFunc("/main/tokyo/city.htm", s.record(s.cities))
	mux.HandleFunc("/main/tokyo/chiyoda.htm", s.record(s.places))
	mux.HandleFunc("/main/tokyo/chuo.htm", s.record(s.chuoPlaces))
	mux.HandleFunc("/main/tokyo/view/", s.record(s.viewer))
	mux.HandleFunc("/pdf/", s.record(s.pdf))

	s.Server = httptest.NewServer(mux)
	t.Cleanup(s.Close)
	return s
}

// TopURL 顶页地址
func (s *Site) TopURL() string {
	return s.URL + "/"
}

// Hits 按顺序返回已访问的路径
func (s *Site) Hits() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.hits...)
}

func (s *Site) record(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.hits = append(s.hits, r.URL.Path)
		s.mu.Unlock()
		h(w, r)
	}
}

func writeHTML(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w, "<!DOCTYPE html><html><head><meta charset=\"utf-8\"></head><body>%s</body></html>", body)
}

func (s *Site) top(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	writeHTML(w, `
<a href="/index.htm">トップ</a>
<a href="/main/hokkaido/pref.htm">北海道</a>
<a href="/main/tokyo/pref.htm">東京都</a>
<a href="/main/osaka/pref.htm">大阪府</a>`)
}

func (s *Site) prefecture(w http.ResponseWriter, r *http.Request) {
	writeHTML(w, `
<a href="/main/tokyo/bairitsu.htm">評価倍率表</a>
<a href="/main/tokyo/city.htm">路線価図</a>`)
}

func (s *Site) cities(w http.ResponseWriter, r *http.Request) {
	writeHTML(w, `
<a href="/main/tokyo/chuo.htm">中央区</a>
<a href="/main/tokyo/chiyoda.htm">千代田区</a>`)
}

func (s *Site) places(w http.ResponseWriter, r *http.Request) {
	writeHTML(w, `
<table class="tbl_list">
<tr><th>番号</th><th>町丁目</th><th>路線価図</th></tr>
<tr><th>あ</th><th>千代田</th><td><a href="view/1.htm">1</a></td><td><a href="view/2.htm">2</a></td></tr>
<tr><th>ま</th><th>丸の内</th><td><a href="view/3.htm">3</a></td><td><a href="view/4.htm">4</a></td><td><a href="view/dead.htm">5</a></td></tr>
</table>`)
}

func (s *Site) chuoPlaces(w http.ResponseWriter, r *http.Request) {
	writeHTML(w, `
<table class="tbl_list">
<tr><th>番号</th><th>町丁目</th><th>路線価図</th></tr>
<tr><th>き</th><th>銀座</th><td><a href="view/ginza-1.htm">1</a></td></tr>
</table>`)
}

func (s *Site) viewer(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/main/tokyo/view/1.htm":
		writeHTML(w, `<embed id="pdfload" src="../../../pdf/1.pdf" type="application/pdf">`)
	case "/main/tokyo/view/2.htm":
		writeHTML(w, `<embed id="pdfload" src="/pdf/2.pdf" type="application/pdf">`)
	case "/main/tokyo/view/3.htm":
		writeHTML(w, `<iframe id="pdfload" src="/pdf/3.pdf"></iframe>`)
	case "/main/tokyo/view/ginza-1.htm":
		writeHTML(w, `<embed id="pdfload" src="/pdf/ginza-1.pdf" type="application/pdf">`)
	case "/main/tokyo/view/4.htm":
		// 没有查看器元素
		writeHTML(w, `<p>準備中</p>`)
	case "/main/tokyo/view/dead.htm":
		writeHTML(w, fmt.Sprintf(`<embed id="pdfload" src="%s/pdf/5.pdf">`, s.DeadURL))
	default:
		http.NotFound(w, r)
	}
}

func (s *Site) pdf(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Path[len("/pdf/"):]
	if len(name) > 4 {
		name = name[:len(name)-4]
	}
	body, ok := PDFs[name]
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Write(body)
}

// deadURL 先监听再关闭, 得到一个必然拒绝连接的地址
func deadURL(t testing.TB) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("监听失败: %v", err)
	}
	addr := l.Addr().String()
	l.Close()
	return "http://" + addr
}
